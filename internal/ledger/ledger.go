// Package ledger keeps an append-only record of payment reconciliation
// attempts from both entry points. The webhook acknowledges Paystack even
// when processing fails, so this table is what out-of-band monitoring uses
// to find references that were paid but never activated.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"subscriptionAPI/internal/types/payment"
)

type Entry struct {
	ID        string          `json:"id"`
	Path      payment.Path    `json:"path"`
	Reference string          `json:"reference"`
	UserID    string          `json:"userId,omitempty"`
	Plan      string          `json:"plan,omitempty"`
	Amount    int64           `json:"amount"`
	Outcome   payment.Outcome `json:"outcome"`
	Detail    string          `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards entries. Used when no DATABASE_URL is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

const schema = `
CREATE TABLE IF NOT EXISTS payment_events (
	id          UUID PRIMARY KEY,
	path        TEXT NOT NULL,
	reference   TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	plan        TEXT NOT NULL DEFAULT '',
	amount      BIGINT NOT NULL DEFAULT 0,
	outcome     TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS payment_events_reference_idx ON payment_events (reference);
CREATE INDEX IF NOT EXISTS payment_events_outcome_idx ON payment_events (outcome, created_at);
`

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Connect opens a pool with the same limits the API has always used and pings it.
func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func (l *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create payment_events table: %w", err)
	}
	return nil
}

func (l *Postgres) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
	INSERT INTO payment_events (id, path, reference, user_id, plan, amount, outcome, detail)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := l.db.Exec(ctx, query,
		e.ID,
		string(e.Path),
		e.Reference,
		e.UserID,
		e.Plan,
		e.Amount,
		string(e.Outcome),
		e.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment event: %w", err)
	}
	return nil
}

// ListByReference returns every recorded attempt for a reference, oldest first.
func (l *Postgres) ListByReference(ctx context.Context, reference string) ([]Entry, error) {
	query := `
	SELECT id, path, reference, user_id, plan, amount, outcome, detail, created_at
	FROM payment_events
	WHERE reference = $1
	ORDER BY created_at ASC
	`

	rows, err := l.db.Query(ctx, query, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var path, outcome string
		if err := rows.Scan(&e.ID, &path, &e.Reference, &e.UserID, &e.Plan, &e.Amount, &outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Path = payment.Path(path)
		e.Outcome = payment.Outcome(outcome)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (l *Postgres) Ping(ctx context.Context) error {
	return l.db.Ping(ctx)
}
