package dexscreener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tokenScope/internal/address"
	"tokenScope/internal/model"
)

const (
	DefaultBaseURL = "https://api.dexscreener.com"
	DefaultChain   = "ethereum"
	DefaultTimeout = 10 * time.Second

	tokensPath   = "/latest/dex/tokens/"
	maxBodyBytes = 4 << 20

	fallbackSymbol = "N/A"
	fallbackName   = "Unknown"
)

// Client fetches token snapshots from the DexScreener public API.
type Client struct {
	baseURL string
	chain   string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API origin.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithChain sets the single supported chain id.
func WithChain(chain string) Option {
	return func(c *Client) {
		c.chain = strings.ToLower(strings.TrimSpace(chain))
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed through
// WithHTTPClient is copied, never mutated.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimiter throttles outbound lookups. A nil limiter disables throttling.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now for FetchedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a Client with defaults applied before opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		chain:   DefaultChain,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chain == "" {
		c.chain = DefaultChain
	}
	if c.timeout > 0 && c.timeout != c.http.Timeout {
		httpClient := *c.http
		httpClient.Timeout = c.timeout
		c.http = &httpClient
	}
	return c
}

// Chain returns the supported chain id.
func (c *Client) Chain() string {
	return c.chain
}

// FetchSnapshot looks up contractAddress and normalizes its best pair on the
// supported chain. It issues at most one request and never retries. When ctx is
// cancelled the context error is returned as is.
func (c *Client) FetchSnapshot(ctx context.Context, contractAddress string) (model.TokenSnapshot, error) {
	addr := strings.TrimSpace(contractAddress)
	if !address.IsValidContractAddress(addr) {
		return model.TokenSnapshot{}, ErrInvalidAddress
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.TokenSnapshot{}, ctxErr
			}
			return model.TokenSnapshot{}, newError(KindRateLimited, msgLocalLimit, err)
		}
	}

	body, err := c.get(ctx, addr)
	if err != nil {
		return model.TokenSnapshot{}, err
	}

	pairs, err := parsePairs(body)
	if err != nil {
		c.logger.Warn("parse token pairs", zap.String("address", addr), zap.Error(err))
		return model.TokenSnapshot{}, newError(KindParseError, msgParse, err)
	}

	return c.snapshotFromPairs(addr, pairs)
}

func (c *Client) get(ctx context.Context, addr string) ([]byte, error) {
	endpoint := c.baseURL + tokensPath + url.PathEscape(addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newError(KindNetworkError, msgNetwork, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	c.logger.Debug("fetch token pairs", zap.String("address", addr), zap.String("chain", c.chain))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("token pairs request failed", zap.String("address", addr), zap.Error(err))
		return nil, newError(KindNetworkError, msgNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("provider rate limited", zap.String("address", addr))
		return nil, &Error{Kind: KindRateLimited, Message: msgRateLimited, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("provider error", zap.String("address", addr), zap.Int("status", resp.StatusCode))
		return nil, apiError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError(KindNetworkError, msgNetwork, fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, newError(KindParseError, msgParse, fmt.Errorf("response exceeds %d bytes", maxBodyBytes))
	}
	return body, nil
}

func (c *Client) snapshotFromPairs(addr string, pairs []pairRecord) (model.TokenSnapshot, error) {
	if len(pairs) == 0 {
		return model.TokenSnapshot{}, newError(KindNotFound, msgNotFound, nil)
	}

	best, ok := selectBestPair(pairs, c.chain)
	if !ok {
		found := "unknown"
		if chains := foundChains(pairs); len(chains) > 0 {
			found = strings.Join(chains, ", ")
		}
		return model.TokenSnapshot{}, newError(KindUnsupportedChain,
			fmt.Sprintf("Unsupported chain for this token. Supported: %s. Found: %s.", c.chain, found), nil)
	}

	if !address.IsValidContractAddress(best.BaseAddress) || best.PairAddress == "" || best.DexID == "" {
		c.logger.Debug("best pair missing identifiers", zap.String("address", addr), zap.String("pair", best.PairAddress))
		return model.TokenSnapshot{}, newError(KindNotFound, msgNotUsable, nil)
	}

	symbol := best.BaseSymbol
	if symbol == "" {
		symbol = fallbackSymbol
	}
	name := best.BaseName
	if name == "" {
		name = fallbackName
	}

	return model.TokenSnapshot{
		ChainID:     c.chain,
		DexID:       best.DexID,
		PairAddress: best.PairAddress,
		URL:         best.URL,
		BaseToken: model.BaseToken{
			Address: best.BaseAddress,
			Symbol:  symbol,
			Name:    name,
		},
		PriceUSD:     best.PriceUSD,
		LiquidityUSD: best.LiquidityUSD,
		FDVUSD:       best.FDV,
		Volume24hUSD: best.Volume24h,
		FetchedAt:    c.now().UTC(),
	}, nil
}
