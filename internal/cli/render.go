package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/recipeflow/pkg/pipeline"
	"github.com/matzehuels/recipeflow/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	flattenOpts
	formats  []string // output formats: svg, png, pdf, dot, json
	output   string   // output file (single format) or base path (several)
	detailed bool     // add in/out rates to node labels
	rankDir  string   // graphviz rank direction
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render ITEM",
		Short: "Render the flow graph of an item as a diagram",
		Example: `  recipeflow render electronic-circuit
  recipeflow render plastic-bar -f svg,png -o out/plastic
  recipeflow render sulfur --barrels --detailed -f pdf`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeItems,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			opts.barrels = c.barrels(cmd, opts.barrels)
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", render.FormatSVG, "output format(s): svg, png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show in/out rates on nodes")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "", "graph direction: LR (default), TB, RL, BT")
	cmd.Flags().BoolVar(&opts.barrels, "barrels", false, "count liquids in barrels (50 units each)")
	cmd.Flags().BoolVar(&opts.detectCycles, "detect-cycles", false, "fail on cyclic recipes")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "reject non-positive yields and amounts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (o renderOpts) pipelineOptions(item string) pipeline.Options {
	p := o.flattenOpts.pipelineOptions(item)
	p.Formats = o.formats
	p.Detailed = o.detailed
	p.RankDir = strings.ToUpper(o.rankDir)
	return p
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, item string, opts renderOpts) error {
	if err := validateRankDir(opts.rankDir); err != nil {
		return err
	}
	db, err := c.loadDatabase()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", item))
	spinner.Start()
	result, err := runner.Execute(ctx, db, opts.pipelineOptions(item))
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, item)
	if err != nil {
		return err
	}

	printSuccess(w, "Rendered %s", StyleHighlight.Render(item))
	for _, p := range paths {
		printFile(w, p)
	}
	printStats(w, result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.FlattenHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes one file per format. A single format is written to
// output as given; several formats use output (or item) as a base path and
// append the format as extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, item string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		path := artifactPath(output, item, f, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactPath(output, item, format string, single bool) string {
	if output == "" {
		return item + "." + format
	}
	if single {
		return output
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
}

var rankDirs = []string{"LR", "RL", "TB", "BT"}

func validateRankDir(s string) error {
	if s == "" || slices.Contains(rankDirs, strings.ToUpper(s)) {
		return nil
	}
	return fmt.Errorf("invalid rankdir: %s (must be LR, RL, TB or BT)", s)
}
