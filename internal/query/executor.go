// Package query executes validated SQL against PostgreSQL and normalizes
// results into a uniform row representation.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/sqlguard"
)

// Sentinel errors for query execution.
var (
	// ErrRejected indicates the statement failed safety validation and
	// was never sent to the database.
	ErrRejected = errors.New("query rejected by safety gate")

	// ErrExecution indicates the database failed to execute the statement.
	// The underlying driver error is wrapped, never surfaced to end users.
	ErrExecution = errors.New("query execution failed")
)

// Row is one normalized result record, keyed by column name. Values are
// whatever the driver produced (text, numbers, timestamps, nil); the
// executor makes no assumption about the schema.
type Row map[string]any

// Outcome is the result of executing a single statement: either a
// materialized result set or an affected-row count. Only result sets are
// reachable through the validated session path, but the executor itself is
// statement-agnostic.
type Outcome struct {
	Rows     []Row
	Affected int64
	HasRows  bool // true when the statement produced a result descriptor
}

// Executor runs single statements against a connection pool, each in its
// own transaction. Safe for concurrent use.
type Executor struct {
	pool   *pgxpool.Pool
	gate   *sqlguard.Gate
	logger *slog.Logger
}

// New creates an Executor. A nil logger falls back to slog.Default().
func New(pool *pgxpool.Pool, gate *sqlguard.Gate, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{pool: pool, gate: gate, logger: logger}
}

// Execute runs a single statement and materializes the outcome. The
// statement gets a dedicated transaction that is committed on success and
// rolled back on every error path, so no connection is ever left holding
// state. Driver errors are logged with the statement text and wrapped in
// ErrExecution.
func (e *Executor) Execute(ctx context.Context, sql string, args ...any) (Outcome, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		e.logger.Error("beginning transaction", "error", err)
		return Outcome{}, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	// Rollback is a no-op after a successful commit.
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		e.logger.Error("executing statement", "error", err, "sql", sql)
		return Outcome{}, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	fields := rows.FieldDescriptions()
	outcome := Outcome{HasRows: len(fields) > 0}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			rows.Close()
			e.logger.Error("reading row values", "error", err, "sql", sql)
			return Outcome{}, fmt.Errorf("%w: %w", ErrExecution, err)
		}

		row := make(Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		outcome.Rows = append(outcome.Rows, row)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		e.logger.Error("iterating result set", "error", err, "sql", sql)
		return Outcome{}, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	if !outcome.HasRows {
		outcome.Affected = rows.CommandTag().RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		e.logger.Error("committing transaction", "error", err, "sql", sql)
		return Outcome{}, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	e.logger.Debug("executed statement", "rows", len(outcome.Rows), "has_rows", outcome.HasRows)
	return outcome, nil
}

// ExecuteSafe validates the statement against the safety gate before
// executing it. Rejected statements never reach the database.
func (e *Executor) ExecuteSafe(ctx context.Context, sql string) (Outcome, error) {
	if err := e.gate.Check(sql); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return e.Execute(ctx, sql)
}
