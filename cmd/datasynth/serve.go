package main

import (
	"os"
	"os/signal"
	"syscall"

	"datasynth/adapters/api"
	"datasynth/adapters/rng"
	"datasynth/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd(currentConfig func() *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated datasets over HTTP",
		Long: `Start an HTTP server that generates datasets on request.

  GET /healthz
  GET /api/algorithms
  GET /api/dataset?seed=0&rows=100&algorithm=mt19937&format=csv
  GET /api/dataset/profile?seed=0&rows=100&alpha=0.05`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := currentConfig()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(rng.NewRNGAdapter(), newLogger(cmd, cfg))
			return server.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (overrides DATASYNTH_ADDR)")
	return cmd
}
