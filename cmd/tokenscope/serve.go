package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenScope/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := newSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.String("api_url", cfg.APIURL),
		zap.String("chain", cfg.Chain),
		zap.Duration("timeout", cfg.Timeout),
		zap.Float64("rate_limit", cfg.RateLimit),
	)

	srv := server.New(newFetcher(cfg, logger),
		server.WithLogger(logger.Named("server")),
		server.WithAnalytics(sink),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	return srv.Run(ctx, cfg.Listen)
}
