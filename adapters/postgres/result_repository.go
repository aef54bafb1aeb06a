// Package postgres persists run output to Postgres for presentation
// collaborators that prefer SQL over files. The engine never requires it.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"simbench/domain/core"
	"simbench/domain/study"
	"simbench/ports"
)

// ResultRepository implements ports.ResultSink on Postgres.
type ResultRepository struct {
	db *sqlx.DB
}

var _ ports.ResultSink = (*ResultRepository)(nil)

// NewResultRepository creates a PostgreSQL result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Connect opens and pings a Postgres connection.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the three output tables when absent.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS simulation_results (
			run_id           TEXT NOT NULL,
			replication      INTEGER NOT NULL,
			sample_size      INTEGER NOT NULL,
			scenario         TEXT NOT NULL,
			comparison       TEXT NOT NULL,
			statistical_test TEXT NOT NULL,
			statistic        DOUBLE PRECISION NOT NULL,
			p_value          DOUBLE PRECISION NOT NULL,
			method           TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS rejection_rates (
			run_id           TEXT NOT NULL,
			scenario         TEXT NOT NULL,
			statistical_test TEXT NOT NULL,
			sample_size      INTEGER NOT NULL,
			comparison       TEXT NOT NULL,
			rejection_rate   DOUBLE PRECISION
		);
		CREATE TABLE IF NOT EXISTS agreement_rates (
			run_id         TEXT NOT NULL,
			scenario       TEXT NOT NULL,
			sample_size    INTEGER NOT NULL,
			comparison     TEXT NOT NULL,
			test_subset    TEXT NOT NULL,
			agreement_rate DOUBLE PRECISION
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun stores the unified result set and both aggregate tables in one
// transaction. Missing aggregate cells are stored as NULL, never zero.
func (r *ResultRepository) SaveRun(ctx context.Context, runID core.RunID,
	records []study.ReplicationRecord,
	rejection []study.RejectionRateRow,
	agreement []study.AgreementRateRow) error {

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO simulation_results (
				run_id, replication, sample_size, scenario, comparison,
				statistical_test, statistic, p_value, method
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID.String(), rec.Replication, rec.SampleSize, rec.Scenario,
			rec.Comparison, rec.Test, rec.Statistic, rec.PValue, rec.Method)
		if err != nil {
			return fmt.Errorf("insert result row: %w", err)
		}
	}

	for _, row := range rejection {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rejection_rates (
				run_id, scenario, statistical_test, sample_size, comparison, rejection_rate
			) VALUES ($1, $2, $3, $4, $5, $6)`,
			runID.String(), row.Scenario, row.Test, row.SampleSize, row.Comparison,
			nullableRate(row.Rate, row.Missing))
		if err != nil {
			return fmt.Errorf("insert rejection row: %w", err)
		}
	}

	for _, row := range agreement {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO agreement_rates (
				run_id, scenario, sample_size, comparison, test_subset, agreement_rate
			) VALUES ($1, $2, $3, $4, $5, $6)`,
			runID.String(), row.Scenario, row.SampleSize, row.Comparison, row.Subset,
			nullableRate(row.Rate, row.Missing))
		if err != nil {
			return fmt.Errorf("insert agreement row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullableRate(rate float64, missing bool) interface{} {
	if missing {
		return nil
	}
	return rate
}
