package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TOKENSCOPE"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	APIURL          string
	Chain           string
	Timeout         time.Duration
	RateLimit       float64
	RateBurst       int
	LogLevel        string
	AnalyticsOut    string
	PGDSN           string
	Listen          string
	Addresses       []string
	Concurrency     int
	Out             string
	ShutdownTimeout time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api-url", "https://api.dexscreener.com")
	v.SetDefault("chain", "ethereum")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("rate-limit", 0.0)
	v.SetDefault("rate-burst", 1)
	v.SetDefault("log-level", "info")
	v.SetDefault("listen", ":8080")
	v.SetDefault("concurrency", 4)
	v.SetDefault("out", "-")
	v.SetDefault("shutdown-timeout", 5*time.Second)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	addresses, err := getStringSlice(v, "address")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:          strings.TrimRight(v.GetString("api-url"), "/"),
		Chain:           strings.ToLower(strings.TrimSpace(v.GetString("chain"))),
		Timeout:         v.GetDuration("timeout"),
		RateLimit:       v.GetFloat64("rate-limit"),
		RateBurst:       v.GetInt("rate-burst"),
		LogLevel:        v.GetString("log-level"),
		AnalyticsOut:    v.GetString("analytics-out"),
		PGDSN:           v.GetString("pg-dsn"),
		Listen:          v.GetString("listen"),
		Addresses:       addresses,
		Concurrency:     v.GetInt("concurrency"),
		Out:             v.GetString("out"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api-url is required")
	}
	if c.Chain == "" {
		return fmt.Errorf("chain is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate-limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate-burst must be at least 1")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	return nil
}

// getStringSlice reads a list or comma-separated value. YAML decodes unquoted
// 0x scalars as integers, so non-string list entries are rejected rather than
// reformatted.
func getStringSlice(v *viper.Viper, key string) ([]string, error) {
	if !v.IsSet(key) {
		return nil, nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed), nil
	case string:
		return splitAndClean(typed), nil
	case []interface{}:
		items := make([]string, 0, len(typed))
		for i, item := range typed {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s entry %d must be a quoted string, got %v", key, i, item)
			}
			items = append(items, str)
		}
		return cleanStrings(items), nil
	default:
		return nil, fmt.Errorf("%s must be a list of quoted strings", key)
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
