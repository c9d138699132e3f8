// Package flow flattens a recipe tree into a weighted production-flow graph.
//
// # Overview
//
// Starting from a target item, [Flatten] walks the recipe database through
// every transitive ingredient and produces a [Graph]: one [Node] per item
// and one [Edge] per (ingredient, consumer) pair. An edge value is a rate,
// the throughput of the ingredient required per unit throughput of the
// consumer, already scaled to the target item:
//
//	g, err := flow.Flatten("electronic-circuit", catalog, flow.Options{})
//	e, _ := g.Edge("copper-ore", "copper-cable")
//	fmt.Println(e.Value) // copper ore per circuit spent on cables
//
// # Merging
//
// A shared ingredient reached along several paths contributes once per
// path. Contributions for the same ordered pair are summed into one edge,
// so a consumer never has to deduplicate. [Graph.MergeScaled] is the merge
// step on its own: it folds a child graph into a parent after multiplying
// every child edge by the rate of the ingredient that led to it.
//
// # Liquids
//
// With [Options.LiquidInBarrels] the rate of a liquid ingredient is divided
// by [BarrelCapacity] before its edge is recorded. Rates propagated further
// up the chain carry the conversion with them.
//
// # Malformed Databases
//
// The walk assumes an acyclic database with positive amounts and yields.
// By default it does not check: a cycle recurses until the stack runs out
// and a zero yield produces infinite rates. [Options.DetectCycles] and
// [Options.Validate] turn those into CYCLE_DETECTED and INVALID_RECIPE
// errors without changing results for well-formed input.
//
// # Serialization
//
// [MarshalGraph] and [ReadGraph] use a sorted node-link JSON layout:
//
//	{
//	  "nodes": [{"id": "copper-ore", "name": "Copper ore"}],
//	  "edges": [{"source": "copper-ore", "target": "copper-cable", "value": 0.5}]
//	}
package flow
