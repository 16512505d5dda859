package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/smdgraph/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve path and expansion queries over HTTP",
		Long: `Load the graph once and answer queries over HTTP until interrupted.

Endpoints:
  GET  /api/v1/paths?from=&to=&paths=&depth=&format=
  GET  /api/v1/expand?center=&level=&fanout=&closure=&format=
  GET  /api/v1/nodes/{id}
  GET  /api/v1/stats
  POST /api/v1/reload
  GET  /healthz
  GET  /metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			metrics := server.NewMetrics()
			metrics.Install()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, server.Options{
				Paths:   cfg.PathParams(),
				Expand:  cfg.ExpandParams(),
				Metrics: metrics,
				Logger:  c.Logger,
			})
			printSuccess("Serving %s on %s", runner.Source.Name(), StyleHighlight.Render(addr))
			return srv.ListenAndServe(ctx, addr, cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}
