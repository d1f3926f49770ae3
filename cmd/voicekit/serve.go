package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/voicekit/internal/config"
	"github.com/example/voicekit/internal/httpapi"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the voicekit HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, err := buildSynthesizer(ctx, cfg)
			if err != nil {
				return err
			}

			srv := httpapi.New(cfg.Server.ListenAddr, engine,
				httpapi.WithWorkers(cfg.Server.Workers),
				httpapi.WithRequestTimeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
			).WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			return srv.Start(ctx)
		},
	}

	config.RegisterFlags(cmd.Flags(), config.DefaultConfig())

	return cmd
}
