// Package lifecycle drives interactive token lookups: one live request per
// session, newer requests supersede older ones, and user cancellation is
// silent.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tokenScope/internal/address"
	"tokenScope/internal/analytics"
	"tokenScope/internal/dexscreener"
	"tokenScope/internal/model"
	"tokenScope/internal/risk"
)

const msgUnexpected = "Unexpected error. Please try again."

// Fetcher loads a token snapshot. dexscreener.Client satisfies it.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, address string) (model.TokenSnapshot, error)
}

// Option configures Controller.
type Option func(*Controller)

// WithLogger sets the logger for lookup lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAnalytics sets the sink that receives one event per successful lookup.
func WithAnalytics(sink analytics.Sink) Option {
	return func(c *Controller) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithOnChange registers a callback for every visible state change. It runs
// while the controller lock is held, in change order, and must not call back
// into the controller.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// Controller owns the lookup state of one session.
type Controller struct {
	fetcher  Fetcher
	sink     analytics.Sink
	logger   *zap.Logger
	onChange func(State)
	now      func() time.Time

	mu          sync.Mutex
	requestID   uint64
	cancel      context.CancelFunc
	lastAddress string
	state       State
}

// New returns an idle Controller that loads snapshots through fetcher.
func New(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		sink:    analytics.Nop{},
		logger:  zap.NewNop(),
		now:     time.Now,
		state:   State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the visible state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lookup starts a new request for addr, superseding any request in flight, and
// blocks until it settles. The returned state is the controller's visible state
// at that point, which belongs to a newer request if this one was superseded.
func (c *Controller) Lookup(ctx context.Context, addr string) State {
	addr = strings.TrimSpace(addr)

	c.mu.Lock()
	c.abortLocked()
	c.requestID++
	id := c.requestID
	c.lastAddress = addr

	if !address.IsValidContractAddress(addr) {
		c.failLocked(id, addr, dexscreener.ErrInvalidAddress)
		state := c.state
		c.mu.Unlock()
		return state
	}

	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.setLocked(State{Status: StatusLoading, RequestID: id, Address: addr})
	c.mu.Unlock()

	c.logger.Debug("lookup start", zap.Uint64("request_id", id), zap.String("address", addr))
	snapshot, err := c.fetcher.FetchSnapshot(reqCtx, addr)

	c.mu.Lock()
	if c.requestID != id {
		state := c.state
		c.mu.Unlock()
		cancel()
		c.logger.Debug("stale lookup dropped", zap.Uint64("request_id", id), zap.Uint64("current", state.RequestID))
		return state
	}
	c.cancel = nil
	cancel()

	if err != nil {
		if isCancellation(err) {
			c.setLocked(State{Status: StatusIdle, RequestID: id, Address: addr})
			c.logger.Debug("lookup cancelled", zap.Uint64("request_id", id))
		} else {
			c.failLocked(id, addr, err)
		}
		state := c.state
		c.mu.Unlock()
		return state
	}

	rc := risk.Compute(snapshot)
	c.setLocked(State{
		Status:    StatusSuccess,
		RequestID: id,
		Address:   addr,
		Snapshot:  &snapshot,
		Risk:      &rc,
	})
	state := c.state
	c.mu.Unlock()

	c.logger.Info("lookup complete",
		zap.Uint64("request_id", id),
		zap.String("address", addr),
		zap.Int("score", rc.Score),
		zap.String("risk_level", string(rc.RiskLevel)),
	)
	c.track(ctx, rc.RiskLevel)
	return state
}

// Retry re-issues the last lookup. It only acts from the error state.
func (c *Controller) Retry(ctx context.Context) State {
	c.mu.Lock()
	if c.state.Status != StatusError {
		state := c.state
		c.mu.Unlock()
		return state
	}
	addr := c.lastAddress
	c.mu.Unlock()

	return c.Lookup(ctx, addr)
}

// Clear aborts any request in flight and resets to idle.
func (c *Controller) Clear() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortLocked()
	c.requestID++
	c.lastAddress = ""
	c.setLocked(State{Status: StatusIdle, RequestID: c.requestID})
	return c.state
}

// Input records new draft input. Like Clear, it aborts any request in flight.
func (c *Controller) Input(addr string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortLocked()
	c.requestID++
	c.lastAddress = strings.TrimSpace(addr)
	c.setLocked(State{Status: StatusIdle, RequestID: c.requestID, Address: c.lastAddress})
	return c.state
}

func (c *Controller) abortLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) failLocked(id uint64, addr string, err error) {
	message := msgUnexpected
	var kind string
	var fetchErr *dexscreener.Error
	if errors.As(err, &fetchErr) {
		message = fetchErr.Error()
		kind = string(fetchErr.Kind)
	}

	c.logger.Warn("lookup failed", zap.Uint64("request_id", id), zap.String("address", addr), zap.Error(err))
	c.setLocked(State{
		Status:    StatusError,
		RequestID: id,
		Address:   addr,
		Error:     message,
		ErrorKind: kind,
	})
}

func (c *Controller) setLocked(state State) {
	c.state = state
	if c.onChange != nil {
		c.onChange(state)
	}
}

func (c *Controller) track(ctx context.Context, level model.RiskLevel) {
	event := analytics.NewRiskContextViewed(level, c.now())
	if err := c.sink.Track(context.WithoutCancel(ctx), event); err != nil {
		c.logger.Warn("analytics event failed", zap.Error(err))
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
