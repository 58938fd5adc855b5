package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tokenScope/internal/lifecycle"
)

func runLookup(cmd *cobra.Command, args []string) error {
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

	ctrl := lifecycle.New(newFetcher(cfg, logger),
		lifecycle.WithLogger(logger.Named("lifecycle")),
		lifecycle.WithAnalytics(sink),
	)
	state := ctrl.Lookup(ctx, args[0])

	if state.Status == lifecycle.StatusIdle {
		if err := ctx.Err(); err != nil {
			return err
		}
		return errors.New("lookup interrupted")
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state.Result()); err != nil {
		return err
	}

	if state.Status == lifecycle.StatusError {
		return errors.New(state.Error)
	}
	return nil
}
