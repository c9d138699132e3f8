package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/matzehuels/recipeflow/pkg/flow"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts flattenOpts
	var concurrency int

	cmd := &cobra.Command{
		Use:   "export DIR",
		Short: "Flatten every craftable item into DIR/<item>.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.barrels = c.barrels(cmd, opts.barrels)
			if !cmd.Flags().Changed("concurrency") {
				if cfg, err := c.config(); err == nil {
					concurrency = cfg.Server.Concurrency
				}
			}
			return c.runExport(cmd.Context(), cmd.OutOrStdout(), args[0], opts, concurrency)
		},
	}

	cmd.Flags().BoolVar(&opts.barrels, "barrels", false, "count liquids in barrels (50 units each)")
	cmd.Flags().BoolVar(&opts.detectCycles, "detect-cycles", false, "fail on cyclic recipes")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "reject non-positive yields and amounts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 8, "items flattened in parallel")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, w io.Writer, dir string, opts flattenOpts, concurrency int) error {
	db, err := c.loadDatabase()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	if cycle := db.FindCycle(); cycle != nil && !opts.detectCycles {
		c.Logger.Warn("recipe database has a cycle, cycle detection forced on", "cycle", strings.Join(cycle, " -> "))
		opts.detectCycles = true
	}

	ids := db.Craftable()
	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Flattening %d items...", len(ids)))
	spinner.Start()

	var written atomic.Int64
	err = runner.FlattenEach(ctx, db, ids, opts.pipelineOptions(""), concurrency, func(id string, g *flow.Graph) error {
		if err := flow.WriteGraphFile(g, filepath.Join(dir, exportFileName(id))); err != nil {
			return fmt.Errorf("write %s: %w", id, err)
		}
		written.Add(1)
		return nil
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Exported %d items", written.Load()))
	printSuccess(w, "Exported %s flow graphs", StyleNumber.Render(fmt.Sprint(written.Load())))
	printFile(w, dir)
	return nil
}

// exportFileName maps an item ID to a file name inside the export
// directory. IDs may hold spaces or slashes, so they are path-escaped.
func exportFileName(id string) string {
	return url.PathEscape(id) + ".json"
}
