package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/astrostats/astrowheel/internal/server"
)

// shutdownGrace bounds how long in-flight requests may run after an interrupt.
const shutdownGrace = 10 * time.Second

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and renders over HTTP",
		Long: `Serve the layout pipeline over HTTP until interrupted.

  POST /v1/layout   chart in, layout JSON out
  POST /v1/render   chart in, artifact out (?format=svg|json|dot|chain.svg)

Results are cached in the configured backend (file, redis or mongo).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg := server.Config{
				Addr:         c.cfg.Server.Addr,
				ReadTimeout:  c.cfg.Server.ReadTimeout,
				WriteTimeout: c.cfg.Server.WriteTimeout,
				MaxBodyBytes: c.cfg.Server.MaxBodyBytes,
				Defaults:     c.cfg.PipelineOptions(),
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			return server.New(runner, c.Logger, cfg).Run(ctx, shutdownGrace)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
