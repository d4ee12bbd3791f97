// Package journal optionally records submitted triggers in PostgreSQL. It is
// additive: the trigger client never depends on it, and journal failures must
// not alter operation results.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Journal struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*Journal, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Journal{pool: pool}, nil
}

func (j *Journal) Close() { j.pool.Close() }

// ExecSQL executes raw SQL (used for schema bootstrap).
// Caller is responsible for idempotency (schema.sql should be).
func (j *Journal) ExecSQL(ctx context.Context, sql string) error {
	_, err := j.pool.Exec(ctx, sql)
	return err
}

// Entry is one journaled trigger submission.
type Entry struct {
	ID     string
	Agent  string
	Env    string
	Mode   string // sync or async
	Status string
	RunID  string
}

// Start inserts a submission row and returns its ID.
func (j *Journal) Start(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := j.pool.Exec(ctx, `
		INSERT INTO bob.trigger_runs (id, agent, env, mode, status, platform_run_id)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.ID, e.Agent, e.Env, e.Mode, e.Status, nullIfEmpty(e.RunID))
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// Finish records the terminal status and result payload for a submission.
func (j *Journal) Finish(ctx context.Context, id, status string, runID string, resultJSON []byte) error {
	_, err := j.pool.Exec(ctx, `
		UPDATE bob.trigger_runs
		SET status=$2, platform_run_id=COALESCE($3, platform_run_id), finished_at=now(), result=$4::jsonb
		WHERE id=$1
	`, id, status, nullIfEmpty(runID), jsonOrEmpty(resultJSON))
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func jsonOrEmpty(b []byte) string {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}
