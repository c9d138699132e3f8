// Package pipeline runs the flatten → render pipeline with caching.
//
// The CLI and the HTTP server both go through a [Runner], so a flow graph
// computed by one is served from cache to the other when they share a
// backend.
//
// # Stages
//
//  1. Flatten: walk the recipe database from one item ([flow.Flatten])
//  2. Render: produce DOT, SVG, PNG, PDF or JSON from the graph
//
// Each stage is cached separately. Flow keys hash the database content, the
// item and the walk options; artifact keys hash the serialized graph and the
// format. Editing the database therefore invalidates every dependent entry
// without an explicit purge.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, catalog, pipeline.Options{
//	    Item:    "electronic-circuit",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/recipeflow/pkg/cache"
	"github.com/matzehuels/recipeflow/pkg/errors"
	"github.com/matzehuels/recipeflow/pkg/flow"
	"github.com/matzehuels/recipeflow/pkg/recipe"
	"github.com/matzehuels/recipeflow/pkg/render"
	"github.com/matzehuels/recipeflow/pkg/render/nodelink"
)

// DefaultConcurrency bounds the number of items flattened at once by
// [Runner.FlattenEach].
const DefaultConcurrency = 8

// Database is a recipe database with a content hash for cache keys.
// *recipe.Catalog implements it.
type Database interface {
	recipe.Database
	Hash() string
}

// Options configures one pipeline run.
type Options struct {
	Item string `json:"item"`

	LiquidInBarrels bool `json:"barrels,omitempty"`
	DetectCycles    bool `json:"detect_cycles,omitempty"`
	Validate        bool `json:"validate,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	RankDir  string   `json:"rankdir,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"-"`
}

// ValidateForFlatten checks that the root item exists in db. Any
// identifier the database holds is a valid root; the shape of untrusted
// identifiers is checked at the HTTP boundary with [errors.ValidateItemID].
func (o Options) ValidateForFlatten(db recipe.Database) error {
	if o.Item == "" {
		return errors.New(errors.ErrCodeInvalidItemID, "item ID cannot be empty")
	}
	_, err := db.Item(o.Item)
	return err
}

// ValidateForRender checks the options needed by the render stage.
func (o Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	for _, f := range o.Formats {
		if !slices.Contains(render.Formats, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
		}
	}
	return nil
}

// FlowOptions returns the engine options.
func (o Options) FlowOptions() flow.Options {
	return flow.Options{
		LiquidInBarrels: o.LiquidInBarrels,
		DetectCycles:    o.DetectCycles,
		Validate:        o.Validate,
	}
}

// FlowKeyOpts returns the options that are part of a flow cache key.
func (o Options) FlowKeyOpts() cache.FlowKeyOpts {
	return cache.FlowKeyOpts{
		LiquidInBarrels: o.LiquidInBarrels,
		DetectCycles:    o.DetectCycles,
		Validate:        o.Validate,
	}
}

// RenderOptions returns the diagram options.
func (o Options) RenderOptions() nodelink.Options {
	return nodelink.Options{Detailed: o.Detailed, RankDir: o.RankDir}
}

// artifactKeyOpts returns the options that are part of an artifact key.
func (o Options) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	f := format
	if o.Detailed {
		f += "+detailed"
	}
	if o.RankDir != "" {
		f += "+" + o.RankDir
	}
	return cache.ArtifactKeyOpts{Format: f}
}

// Result is the output of [Runner.Execute].
type Result struct {
	Graph     *flow.Graph
	GraphHash string
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timing and size information.
type Stats struct {
	FlattenTime time.Duration
	RenderTime  time.Duration
	NodeCount   int
	EdgeCount   int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	FlattenHit bool
	RenderHit  bool
}
