package records

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the repository needs. It is satisfied
// by *pgxpool.Pool and by pgxmock in tests.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository persists records keyed on their business identifier.
type Repository interface {
	// UpsertBatch inserts or updates every record by source_id. Applying the
	// same batch twice leaves storage unchanged after the second call.
	UpsertBatch(ctx context.Context, recs []Record) error

	// ListByDate returns all records ordered by date descending.
	ListByDate(ctx context.Context) ([]Record, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgreSQL record repository
func NewPostgresRepository(db Querier, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

const upsertQuery = `
	INSERT INTO records (source_id, date, category, amount, status, description)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (source_id) DO UPDATE SET
		date = EXCLUDED.date,
		category = EXCLUDED.category,
		amount = EXCLUDED.amount,
		status = EXCLUDED.status,
		description = EXCLUDED.description,
		updated_at = now()`

// UpsertBatch writes all records in one transaction so a storage failure never
// leaves a partially applied batch behind.
func (r *PostgresRepository) UpsertBatch(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, rec := range recs {
		if _, err := tx.Exec(ctx, upsertQuery,
			rec.SourceID,
			rec.Date,
			rec.Category,
			rec.Amount,
			rec.Status,
			rec.Description,
		); err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.SourceID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert transaction: %w", err)
	}

	r.logger.Info("records upserted", slog.Int("count", len(recs)))
	return nil
}

// ListByDate retrieves all records, newest first
func (r *PostgresRepository) ListByDate(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, source_id, date, category, amount, status, description, created_at, updated_at
		FROM records
		ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.SourceID,
			&rec.Date,
			&rec.Category,
			&rec.Amount,
			&rec.Status,
			&rec.Description,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return recs, nil
}
