// Package audit records runs and their per-row outcomes in Postgres.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/batch"
	"github.com/gyeh/chargeflow/internal/db"
	"github.com/gyeh/chargeflow/internal/model"
	embedsql "github.com/gyeh/chargeflow/internal/sql"
)

// Run statuses stored in chargeflow.runs.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// RunRecord is a row of chargeflow.runs.
type RunRecord struct {
	RunID      uuid.UUID
	InputFile  string
	Status     string
	StartedAt  time.Time
	TotalRows  int
	FailedRows int
}

// Ledger writes to the run ledger.
type Ledger struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New returns a Ledger over pool. The schema must already be migrated.
func New(pool *pgxpool.Pool, log zerolog.Logger) *Ledger {
	return &Ledger{pool: pool, log: log.With().Str("component", "ledger").Logger()}
}

// Start registers a run before any row is processed.
func (l *Ledger) Start(ctx context.Context, runID uuid.UUID, inputFile, sha string, startedAt time.Time) error {
	if _, err := l.pool.Exec(ctx, embedsql.InsertRun, runID, inputFile, sha, startedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Fail marks a run that aborted before producing results.
func (l *Ledger) Fail(ctx context.Context, runID uuid.UUID) error {
	if _, err := l.pool.Exec(ctx, embedsql.FinishRun, runID, StatusFailed, 0, 0, 0, 0, 0, int64(0)); err != nil {
		return fmt.Errorf("mark run failed: %w", err)
	}
	return nil
}

// Finish replaces the run's row results and stores its counters in one
// transaction. Row results are streamed with COPY.
func (l *Ledger) Finish(ctx context.Context, summary *model.RunSummary, rows []*model.Row) error {
	runID, err := uuid.Parse(summary.RunID)
	if err != nil {
		return fmt.Errorf("run id %q: %w", summary.RunID, err)
	}

	err = db.WithTx(ctx, l.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, embedsql.DeleteRowResults, runID); err != nil {
			return fmt.Errorf("delete old row results: %w", err)
		}

		ch := make(chan *model.ResultRecord, 256)
		go func() {
			defer close(ch)
			for _, row := range rows {
				select {
				case ch <- model.NewResultRecord(runID, row, batch.Failed(row.Message())):
				case <-ctx.Done():
					return
				}
			}
		}()

		src := db.NewChannelSource(ch)
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"chargeflow", "row_results"}, model.ResultColumns(), src)
		// Drain so the producer exits if COPY stopped early.
		for range ch {
		}
		if err != nil {
			return fmt.Errorf("copy row results: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := tx.Exec(ctx, embedsql.FinishRun, runID, statusOf(summary),
			summary.TotalRows, summary.EncounterGroups, summary.EncountersCreated,
			summary.PaymentsPosted, summary.FailedRows, summary.DurationTotal.Milliseconds()); err != nil {
			return fmt.Errorf("update run: %w", err)
		}

		l.log.Info().Str("run_id", summary.RunID).Int64("rows", n).Msg("run recorded")
		return nil
	})
	return err
}

func statusOf(s *model.RunSummary) string {
	if s.FailedRows > 0 {
		return StatusPartial
	}
	return StatusCompleted
}

// RunsForFile lists earlier runs of the same input, newest first.
func (l *Ledger) RunsForFile(ctx context.Context, sha string) ([]RunRecord, error) {
	rows, err := l.pool.Query(ctx, embedsql.RunsBySHA, sha)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.InputFile, &r.Status, &r.StartedAt, &r.TotalRows, &r.FailedRows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FailedRows returns the failed row results of a run in row order.
func (l *Ledger) FailedRows(ctx context.Context, runID uuid.UUID) ([]model.RowResult, error) {
	rows, err := l.pool.Query(ctx, embedsql.FailedRows, runID)
	if err != nil {
		return nil, fmt.Errorf("query failed rows: %w", err)
	}
	defer rows.Close()

	var out []model.RowResult
	for rows.Next() {
		var r model.RowResult
		if err := rows.Scan(&r.RowNumber, &r.PracticeName, &r.PatientID, &r.Results); err != nil {
			return nil, fmt.Errorf("scan row result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
