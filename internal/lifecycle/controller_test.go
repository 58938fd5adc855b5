package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tokenScope/internal/dexscreener"
	"tokenScope/internal/model"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type result struct {
	snap model.TokenSnapshot
	err  error
}

type call struct {
	ctx     context.Context
	address string
	release chan result
}

type fakeFetcher struct {
	calls chan *call
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(chan *call, 8)}
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context, address string) (model.TokenSnapshot, error) {
	c := &call{ctx: ctx, address: address, release: make(chan result, 1)}
	f.calls <- c
	r := <-c.release
	return r.snap, r.err
}

func (f *fakeFetcher) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch was not issued")
		return nil
	}
}

type countingSink struct {
	mu     sync.Mutex
	events []model.Event
}

func (s *countingSink) Track(_ context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func liquidSnapshot(addr string) model.TokenSnapshot {
	liq, fdv, vol := 2_000_000.0, 10_000_000.0, 1_000_000.0
	return model.TokenSnapshot{
		ChainID:      "ethereum",
		DexID:        "uniswap",
		PairAddress:  "0xpair",
		BaseToken:    model.BaseToken{Address: addr, Symbol: "TKN", Name: "Token"},
		LiquidityUSD: &liq,
		FDVUSD:       &fdv,
		Volume24hUSD: &vol,
	}
}

func lookupAsync(ctrl *Controller, ctx context.Context, addr string) <-chan State {
	done := make(chan State, 1)
	go func() { done <- ctrl.Lookup(ctx, addr) }()
	return done
}

func wait(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("lookup did not settle")
		return State{}
	}
}

func TestLookupSuccess(t *testing.T) {
	fetcher := newFakeFetcher()
	sink := &countingSink{}
	var seen []Status
	ctrl := New(fetcher, WithAnalytics(sink), WithOnChange(func(s State) { seen = append(seen, s.Status) }))

	done := lookupAsync(ctrl, context.Background(), "  "+addrA+" ")
	c := fetcher.next(t)
	require.Equal(t, addrA, c.address)
	require.Equal(t, StatusLoading, ctrl.State().Status)

	c.release <- result{snap: liquidSnapshot(addrA)}
	state := wait(t, done)

	require.Equal(t, StatusSuccess, state.Status)
	require.Equal(t, uint64(1), state.RequestID)
	require.NotNil(t, state.Snapshot)
	require.NotNil(t, state.Risk)
	require.Equal(t, model.RiskLow, state.Risk.RiskLevel)
	require.Empty(t, state.Error)
	require.Equal(t, []Status{StatusLoading, StatusSuccess}, seen)
	require.Equal(t, 1, sink.count())
	require.Equal(t, model.RiskLow, sink.events[0].RiskLevel)
}

func TestLookupLastRequestWins(t *testing.T) {
	fetcher := newFakeFetcher()
	sink := &countingSink{}
	ctrl := New(fetcher, WithAnalytics(sink))

	doneA := lookupAsync(ctrl, context.Background(), addrA)
	callA := fetcher.next(t)

	doneB := lookupAsync(ctrl, context.Background(), addrB)
	callB := fetcher.next(t)

	select {
	case <-callA.ctx.Done():
	default:
		t.Fatalf("issuing B must cancel A")
	}

	callB.release <- result{snap: liquidSnapshot(addrB)}
	stateB := wait(t, doneB)
	require.Equal(t, StatusSuccess, stateB.Status)
	require.Equal(t, addrB, stateB.Address)

	// A's response shows up after B's and must be dropped.
	callA.release <- result{snap: liquidSnapshot(addrA)}
	stateA := wait(t, doneA)
	require.Equal(t, addrB, stateA.Address)
	require.Equal(t, uint64(2), stateA.RequestID)

	final := ctrl.State()
	require.Equal(t, StatusSuccess, final.Status)
	require.Equal(t, addrB, final.Snapshot.BaseToken.Address)
	require.Equal(t, 1, sink.count())
}

func TestLookupStaleErrorDropped(t *testing.T) {
	fetcher := newFakeFetcher()
	ctrl := New(fetcher)

	doneA := lookupAsync(ctrl, context.Background(), addrA)
	callA := fetcher.next(t)
	doneB := lookupAsync(ctrl, context.Background(), addrB)
	callB := fetcher.next(t)

	callA.release <- result{err: &dexscreener.Error{Kind: dexscreener.KindAPIError, Message: "Data provider error (500)."}}
	wait(t, doneA)
	require.Equal(t, StatusLoading, ctrl.State().Status)

	callB.release <- result{snap: liquidSnapshot(addrB)}
	require.Equal(t, StatusSuccess, wait(t, doneB).Status)
}

func TestLookupErrorAndRetry(t *testing.T) {
	fetcher := newFakeFetcher()
	sink := &countingSink{}
	ctrl := New(fetcher, WithAnalytics(sink))

	done := lookupAsync(ctrl, context.Background(), addrA)
	fetcher.next(t).release <- result{err: &dexscreener.Error{
		Kind:    dexscreener.KindRateLimited,
		Message: "Rate limited by the data provider. Please wait a moment and try again.",
	}}
	state := wait(t, done)

	require.Equal(t, StatusError, state.Status)
	require.Equal(t, string(dexscreener.KindRateLimited), state.ErrorKind)
	require.Equal(t, "Rate limited by the data provider. Please wait a moment and try again.", state.Error)
	require.Nil(t, state.Snapshot)
	require.Equal(t, 0, sink.count())

	retried := make(chan State, 1)
	go func() { retried <- ctrl.Retry(context.Background()) }()
	c := fetcher.next(t)
	require.Equal(t, addrA, c.address)
	require.Equal(t, StatusLoading, ctrl.State().Status)
	c.release <- result{snap: liquidSnapshot(addrA)}

	state = wait(t, retried)
	require.Equal(t, StatusSuccess, state.Status)
	require.Equal(t, uint64(2), state.RequestID)
	require.Equal(t, 1, sink.count())
}

func TestRetryOutsideErrorIsNoop(t *testing.T) {
	fetcher := newFakeFetcher()
	ctrl := New(fetcher)

	state := ctrl.Retry(context.Background())
	require.Equal(t, StatusIdle, state.Status)
	require.Empty(t, fetcher.calls)
}

func TestLookupUnexpectedErrorIsGeneric(t *testing.T) {
	fetcher := newFakeFetcher()
	ctrl := New(fetcher)

	done := lookupAsync(ctrl, context.Background(), addrA)
	fetcher.next(t).release <- result{err: errors.New("dial tcp 10.0.0.1:443: secret internals")}
	state := wait(t, done)

	require.Equal(t, StatusError, state.Status)
	require.Equal(t, msgUnexpected, state.Error)
	require.Empty(t, state.ErrorKind)
}

func TestLookupInvalidAddress(t *testing.T) {
	fetcher := newFakeFetcher()
	ctrl := New(fetcher)

	state := ctrl.Lookup(context.Background(), "0xZZZ")
	require.Equal(t, StatusError, state.Status)
	require.Equal(t, string(dexscreener.KindInvalidAddress), state.ErrorKind)
	require.Equal(t, dexscreener.ErrInvalidAddress.Error(), state.Error)
	require.Empty(t, fetcher.calls)
}

func TestLookupParentCancelReturnsIdle(t *testing.T) {
	fetcher := newFakeFetcher()
	ctrl := New(fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := lookupAsync(ctrl, ctx, addrA)
	c := fetcher.next(t)

	cancel()
	<-c.ctx.Done()
	c.release <- result{err: c.ctx.Err()}

	state := wait(t, done)
	require.Equal(t, StatusIdle, state.Status)
	require.Empty(t, state.Error)
}

func TestClearAbortsInFlight(t *testing.T) {
	fetcher := newFakeFetcher()
	sink := &countingSink{}
	ctrl := New(fetcher, WithAnalytics(sink))

	done := lookupAsync(ctrl, context.Background(), addrA)
	c := fetcher.next(t)

	cleared := ctrl.Clear()
	require.Equal(t, StatusIdle, cleared.Status)
	require.Equal(t, uint64(2), cleared.RequestID)

	select {
	case <-c.ctx.Done():
	default:
		t.Fatalf("clear must cancel the in-flight request")
	}

	c.release <- result{snap: liquidSnapshot(addrA)}
	wait(t, done)

	state := ctrl.State()
	require.Equal(t, StatusIdle, state.Status)
	require.Nil(t, state.Snapshot)
	require.Equal(t, 0, sink.count())
}

func TestInputAbortsAndKeepsDraft(t *testing.T) {
	fetcher := newFakeFetcher()
	ctrl := New(fetcher)

	done := lookupAsync(ctrl, context.Background(), addrA)
	c := fetcher.next(t)

	state := ctrl.Input(" 0xbbbb ")
	require.Equal(t, StatusIdle, state.Status)
	require.Equal(t, "0xbbbb", state.Address)
	<-c.ctx.Done()

	c.release <- result{err: c.ctx.Err()}
	wait(t, done)
	require.Equal(t, StatusIdle, ctrl.State().Status)
}

func TestControllersAreIndependent(t *testing.T) {
	fetcher := newFakeFetcher()
	first := New(fetcher)
	second := New(fetcher)

	doneFirst := lookupAsync(first, context.Background(), addrA)
	callFirst := fetcher.next(t)
	doneSecond := lookupAsync(second, context.Background(), addrB)
	callSecond := fetcher.next(t)

	select {
	case <-callFirst.ctx.Done():
		t.Fatalf("a lookup on another controller must not cancel this one")
	default:
	}

	callFirst.release <- result{snap: liquidSnapshot(addrA)}
	callSecond.release <- result{snap: liquidSnapshot(addrB)}
	require.Equal(t, addrA, wait(t, doneFirst).Address)
	require.Equal(t, addrB, wait(t, doneSecond).Address)
	require.Equal(t, uint64(1), first.State().RequestID)
	require.Equal(t, uint64(1), second.State().RequestID)
}
