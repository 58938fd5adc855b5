// Package analytics receives the single engagement signal emitted after a risk
// context is computed. Sinks only ever see the calculator and risk level.
package analytics

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"tokenScope/internal/model"
)

// EventRiskContextViewed is the name of the only event the core emits.
const EventRiskContextViewed = "risk_context_viewed"

// Sink records analytics events.
type Sink interface {
	Track(ctx context.Context, event model.Event) error
}

// NewRiskContextViewed builds the event for a computed risk level.
func NewRiskContextViewed(level model.RiskLevel, at time.Time) model.Event {
	return model.Event{
		Name:       EventRiskContextViewed,
		Calculator: model.CalculatorTokenPrice,
		RiskLevel:  level,
		OccurredAt: at.UTC(),
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Track(context.Context, model.Event) error { return nil }

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Track(_ context.Context, event model.Event) error {
	s.logger.Info("analytics event",
		zap.String("event", event.Name),
		zap.String("calculator", event.Calculator),
		zap.String("risk_level", string(event.RiskLevel)),
	)
	return nil
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Track(ctx context.Context, event model.Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Track(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
