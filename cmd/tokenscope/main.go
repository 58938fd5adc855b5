package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"tokenScope/internal/analytics"
	"tokenScope/internal/config"
	"tokenScope/internal/dexscreener"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tokenscope",
		Short:        "Token risk context from live DEX market data",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("api-url", dexscreener.DefaultBaseURL, "market data API base URL")
	flags.String("chain", dexscreener.DefaultChain, "supported chain id")
	flags.Duration("timeout", dexscreener.DefaultTimeout, "per-request timeout")
	flags.Float64("rate-limit", 0, "max outbound requests per second (0 disables)")
	flags.Int("rate-burst", 1, "outbound request burst")
	flags.String("analytics-out", "", "optional analytics events JSONL path")
	flags.String("pg-dsn", "", "optional Postgres DSN for analytics events")

	lookupCmd := &cobra.Command{
		Use:   "lookup <address>",
		Short: "Look up one token and print its risk context",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookup,
	}
	root.AddCommand(lookupCmd)

	scanCmd := &cobra.Command{
		Use:   "scan [address...]",
		Short: "Look up many tokens and write JSONL results",
		RunE:  runScan,
	}
	scanCmd.Flags().StringSlice("address", nil, "contract addresses (comma-separated)")
	scanCmd.Flags().Int("concurrency", 4, "max concurrent lookups")
	scanCmd.Flags().String("out", "-", "output JSONL path (- for stdout)")
	root.AddCommand(scanCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and WebSocket API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	root.AddCommand(serveCmd)

	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func newFetcher(cfg config.Config, logger *zap.Logger) *dexscreener.Client {
	opts := []dexscreener.Option{
		dexscreener.WithBaseURL(cfg.APIURL),
		dexscreener.WithChain(cfg.Chain),
		dexscreener.WithTimeout(cfg.Timeout),
		dexscreener.WithLogger(logger.Named("dexscreener")),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, dexscreener.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))
	}
	return dexscreener.NewClient(opts...)
}

// newSink builds the analytics fan-out. The returned close func is never nil.
func newSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (analytics.Sink, func(), error) {
	sinks := analytics.Multi{analytics.NewLogSink(logger.Named("analytics"))}
	closeFn := func() {}

	if cfg.AnalyticsOut != "" {
		sinks = append(sinks, analytics.NewJSONLSink(cfg.AnalyticsOut))
	}

	if cfg.PGDSN != "" {
		pg, err := analytics.NewPostgresSink(ctx, cfg.PGDSN)
		if err != nil {
			return nil, closeFn, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, closeFn, err
		}
		sinks = append(sinks, pg)
		closeFn = pg.Close
		logger.Info("analytics postgres enabled", zap.String("dsn", redactDSN(cfg.PGDSN)))
	}

	return sinks, closeFn, nil
}

var dsnPassword = regexp.MustCompile(`(?i)(password=)\S+`)

func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			return u.String()
		}
		return dsn
	}
	return dsnPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
