package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/recipeflow/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, origin string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve flow graphs and diagrams over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			db, err := c.loadDatabase()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, db, c.Logger, server.Config{
				Barrels:       cfg.Barrels,
				Concurrency:   cfg.Server.Concurrency,
				AllowedOrigin: origin,
			})
			c.Logger.Info("serving recipe database", "path", cfg.Database, "items", db.Len(), "cache", cfg.Cache.Backend)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&origin, "cors-origin", "", "Access-Control-Allow-Origin value (disabled if empty)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
