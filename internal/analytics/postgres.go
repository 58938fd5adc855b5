package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokenScope/internal/model"
)

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS analytics_events (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		calculator TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresSink stores events in the analytics_events table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresSink{pool: pool}, nil
}

func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the events table if it is missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create analytics_events: %w", err)
	}
	return nil
}

func (s *PostgresSink) Track(ctx context.Context, event model.Event) error {
	return s.TrackBatch(ctx, []model.Event{event})
}

// TrackBatch inserts events in a single round trip.
func (s *PostgresSink) TrackBatch(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(`
			INSERT INTO analytics_events (name, calculator, risk_level, occurred_at)
			VALUES ($1, $2, $3, $4)
		`,
			e.Name,
			e.Calculator,
			string(e.RiskLevel),
			e.OccurredAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert analytics event: %w", err)
		}
	}
	return nil
}
