// Package render turns flow graphs into diagrams.
//
// # Overview
//
// [Render] is the single entry point used by the CLI and the HTTP API. It
// dispatches on the output format:
//
//   - dot: Graphviz source from [nodelink.ToDOT]
//   - svg: laid out in-process by Graphviz ([nodelink.RenderSVG])
//   - png, pdf: the SVG converted by rsvg-convert ([ToPNG], [ToPDF])
//   - json: the node-link document of [flow.MarshalGraph]
//
//	svg, err := render.Render(ctx, g, render.FormatSVG, nodelink.Options{})
//
// # Format Conversion
//
// PNG and PDF output shell out to rsvg-convert (from librsvg), which must be
// on PATH.
//
// [nodelink]: github.com/matzehuels/recipeflow/pkg/render/nodelink
package render
