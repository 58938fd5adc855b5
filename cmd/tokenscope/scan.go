package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tokenScope/internal/address"
	"tokenScope/internal/analytics"
	"tokenScope/internal/lifecycle"
	"tokenScope/internal/model"
)

func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addresses, err := address.ParseAddresses(append(cfg.Addresses, args...))
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return fmt.Errorf("address list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := newSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	out, err := newJSONLWriter(cfg.Out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer out.Close()

	logger.Info("scan start",
		zap.Int("addresses", len(addresses)),
		zap.Int("concurrency", cfg.Concurrency),
		zap.String("chain", cfg.Chain),
		zap.String("out", cfg.Out),
	)

	fetcher := newFetcher(cfg, logger)
	results, err := scanAddresses(ctx, fetcher, sink, logger.Named("lifecycle"), addresses, cfg.Concurrency)
	if err != nil {
		return err
	}

	var failed int
	for _, result := range results {
		if result.Error != nil {
			failed++
		}
		if err := out.Write(result); err != nil {
			return err
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}

	logger.Info("scan complete",
		zap.Int("total", len(results)),
		zap.Int("ok", len(results)-failed),
		zap.Int("failed", failed),
	)
	return nil
}

// scanAddresses runs one independent lookup per address and returns results in
// input order. Lookup failures are results; only interruption is an error.
func scanAddresses(ctx context.Context, fetcher lifecycle.Fetcher, sink analytics.Sink, logger *zap.Logger, addresses []string, concurrency int) ([]model.LookupResult, error) {
	results := make([]model.LookupResult, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			ctrl := lifecycle.New(fetcher, lifecycle.WithLogger(logger), lifecycle.WithAnalytics(sink))
			state := ctrl.Lookup(gctx, addr)
			if state.Status == lifecycle.StatusIdle {
				if err := gctx.Err(); err != nil {
					return err
				}
				return fmt.Errorf("lookup %s interrupted", addr)
			}
			results[i] = state.Result()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return results, nil
}
