package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/recipeflow/pkg/flow"
	"github.com/matzehuels/recipeflow/pkg/pipeline"
)

// flattenOpts holds the command-line flags for the flatten command.
type flattenOpts struct {
	barrels      bool   // count liquids in barrels of 50
	jsonOut      bool   // write graph JSON instead of a table
	output       string // JSON output file (stdout if empty)
	detectCycles bool   // fail on recipe cycles
	validate     bool   // reject non-positive yields and amounts
	noCache      bool   // bypass the cache entirely
	refresh      bool   // ignore cached graphs but store the new one
}

func (o flattenOpts) pipelineOptions(item string) pipeline.Options {
	return pipeline.Options{
		Item:            item,
		LiquidInBarrels: o.barrels,
		DetectCycles:    o.detectCycles,
		Validate:        o.validate,
		Refresh:         o.refresh,
	}
}

// flattenCommand creates the flatten command.
func (c *CLI) flattenCommand() *cobra.Command {
	var opts flattenOpts

	cmd := &cobra.Command{
		Use:   "flatten ITEM",
		Short: "Print the production flow graph of an item",
		Long: `Flatten walks the recipe of ITEM down to raw resources and prints one row
per flow: how many of the source item are consumed per unit of the target.
The totals below the table sum every flow out of each item.`,
		Example: `  recipeflow flatten electronic-circuit
  recipeflow flatten concrete --barrels
  recipeflow flatten engine-unit --json -o engine-unit.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeItems,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.barrels = c.barrels(cmd, opts.barrels)
			return c.runFlatten(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.barrels, "barrels", false, "count liquids in barrels (50 units each)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "write the graph as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "JSON output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detectCycles, "detect-cycles", false, "fail on cyclic recipes")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "reject non-positive yields and amounts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runFlatten(ctx context.Context, w io.Writer, item string, opts flattenOpts) error {
	db, err := c.loadDatabase()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	g, hit, err := runner.FlattenWithCacheInfo(ctx, db, opts.pipelineOptions(item))
	if err != nil {
		return err
	}

	if opts.jsonOut {
		if opts.output == "" {
			return flow.WriteGraph(g, w)
		}
		if err := flow.WriteGraphFile(g, opts.output); err != nil {
			return err
		}
		printSuccess(os.Stderr, "Flow graph for %s", StyleHighlight.Render(item))
		printFile(os.Stderr, opts.output)
		return nil
	}

	printEdgeTable(w, g)
	printRequirements(w, g, item)
	printStats(w, g.NodeCount(), g.EdgeCount(), hit)
	printNextStep(w, "Draw it", appName+" render "+item)
	return nil
}
