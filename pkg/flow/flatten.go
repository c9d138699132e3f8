package flow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/recipeflow/pkg/errors"
	"github.com/matzehuels/recipeflow/pkg/recipe"
)

// BarrelCapacity is the number of liquid units held by one barrel.
const BarrelCapacity = 50.0

// Options configures a flattening walk. The zero value reproduces the plain
// algorithm: liquids in bulk units, no cycle guard, no input validation.
type Options struct {
	// LiquidInBarrels divides the rate of every liquid ingredient by
	// BarrelCapacity at the point its edge is recorded.
	LiquidInBarrels bool

	// DetectCycles makes Flatten fail with CYCLE_DETECTED when an item
	// depends on itself. Without it a cyclic database recurses until the
	// stack is exhausted.
	DetectCycles bool

	// Validate makes Flatten fail with INVALID_RECIPE on non-positive
	// yields or amounts instead of producing infinite or NaN rates.
	Validate bool
}

// Flatten walks the recipe database from rootID down through every
// transitive ingredient and returns the merged rate graph.
//
// Each edge (s, t) carries the throughput of s needed per unit throughput
// of t, summed over every path from rootID that ends in that edge, with
// per-edge rates multiplied along the path. An ingredient's rate is its
// amount divided by the yield of the recipe that consumes it.
//
// Flatten either returns a complete graph or an error, never a partial
// graph. Unknown identifiers fail with ITEM_NOT_FOUND. The database is only
// read, so concurrent calls against the same database are safe.
func Flatten(rootID string, db recipe.Database, opts Options) (*Graph, error) {
	f := &flattener{
		db:   db,
		opts: opts,
		done: make(map[string]*Graph),
	}
	if opts.DetectCycles {
		f.onPath = make(map[string]bool)
	}
	return f.flatten(rootID)
}

// flattener holds the state of a single Flatten call.
type flattener struct {
	db   recipe.Database
	opts Options

	// done holds finished subgraphs. A subgraph only depends on its root
	// item, so it is computed once per call and merged read-only.
	done map[string]*Graph

	path   []string
	onPath map[string]bool
}

func (f *flattener) flatten(id string) (*Graph, error) {
	if g, ok := f.done[id]; ok {
		return g, nil
	}

	item, err := f.db.Item(id)
	if err != nil {
		return nil, err
	}

	if f.opts.DetectCycles {
		if f.onPath[id] {
			return nil, f.cycleError(id)
		}
		f.onPath[id] = true
		f.path = append(f.path, id)
		defer func() {
			f.path = f.path[:len(f.path)-1]
			delete(f.onPath, id)
		}()
	}

	if f.opts.Validate {
		if err := validateRecipe(item); err != nil {
			return nil, err
		}
	}

	g := NewGraph()
	g.AddNode(Node{ID: id, Name: item.DisplayName()})

	for _, ing := range item.Recipe.Ingredients {
		src, err := f.db.Item(ing.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}

		rate := ing.Amount / item.Recipe.Yield
		if f.opts.LiquidInBarrels && src.IsLiquid() {
			rate /= BarrelCapacity
		}
		g.AddEdge(Edge{Source: ing.ID, Target: id, Value: rate})

		child, err := f.flatten(ing.ID)
		if err != nil {
			if errors.Is(err, errors.ErrCodeCycleDetected) {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		g.MergeScaled(child, rate)
	}

	f.done[id] = g
	return g, nil
}

func (f *flattener) cycleError(id string) error {
	start := slices.Index(f.path, id)
	cycle := append(slices.Clone(f.path[start:]), id)
	return errors.New(errors.ErrCodeCycleDetected, "recipe cycle: %s", strings.Join(cycle, " -> "))
}

func validateRecipe(it recipe.Item) error {
	if it.Recipe.IsRaw() {
		return nil
	}
	if !(it.Recipe.Yield > 0) {
		return errors.New(errors.ErrCodeInvalidRecipe, "item %q: yield must be positive, got %v", it.ID, it.Recipe.Yield)
	}
	for _, ing := range it.Recipe.Ingredients {
		if !(ing.Amount > 0) {
			return errors.New(errors.ErrCodeInvalidRecipe, "item %q: ingredient %q amount must be positive, got %v", it.ID, ing.ID, ing.Amount)
		}
	}
	return nil
}
