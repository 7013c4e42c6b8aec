package records

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecord(sourceID string, amount int64) Record {
	desc := "Pago por servicios de consultoria"
	return Record{
		SourceID:    sourceID,
		Date:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Category:    "Servicios",
		Amount:      decimal.NewFromInt(amount),
		Status:      "pendiente",
		Description: &desc,
	}
}

func TestPostgresRepository_UpsertBatch(t *testing.T) {
	t.Run("upserts every record in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		recs := []Record{
			sampleRecord("INV-2026-001", 150000),
			sampleRecord("INV-2026-002", 80000),
		}

		mock.ExpectBegin()
		for _, rec := range recs {
			mock.ExpectExec("INSERT INTO records").
				WithArgs(rec.SourceID, rec.Date, rec.Category, rec.Amount, rec.Status, rec.Description).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mock.ExpectCommit()

		repo := NewPostgresRepository(mock, testLogger())
		require.NoError(t, repo.UpsertBatch(context.Background(), recs))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-applying the same batch issues identical upserts", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rec := sampleRecord("INV-2026-001", 150000)

		for i := 0; i < 2; i++ {
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO records").
				WithArgs(rec.SourceID, rec.Date, rec.Category, rec.Amount, rec.Status, rec.Description).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
			mock.ExpectCommit()
		}

		repo := NewPostgresRepository(mock, testLogger())
		require.NoError(t, repo.UpsertBatch(context.Background(), []Record{rec}))
		require.NoError(t, repo.UpsertBatch(context.Background(), []Record{rec}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a record fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rec := sampleRecord("INV-2026-001", 150000)
		execErr := errors.New("numeric field overflow")

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO records").
			WithArgs(rec.SourceID, rec.Date, rec.Category, rec.Amount, rec.Status, rec.Description).
			WillReturnError(execErr)
		mock.ExpectRollback()

		repo := NewPostgresRepository(mock, testLogger())
		err = repo.UpsertBatch(context.Background(), []Record{rec})

		require.Error(t, err)
		assert.ErrorIs(t, err, execErr)
		assert.Contains(t, err.Error(), "INV-2026-001")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch touches nothing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPostgresRepository(mock, testLogger())
		require.NoError(t, repo.UpsertBatch(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_ListByDate(t *testing.T) {
	t.Run("returns records ordered by the query", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		desc := "Venta mayorista"
		rows := pgxmock.NewRows([]string{
			"id", "source_id", "date", "category", "amount", "status", "description", "created_at", "updated_at",
		}).AddRow(
			int64(2), "INV-2026-002", time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
			"Ventas", decimal.NewFromInt(80000), "activo", &desc, now, now,
		).AddRow(
			int64(1), "INV-2026-001", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			"Servicios", decimal.NewFromInt(150000), "pendiente", (*string)(nil), now, now,
		)

		mock.ExpectQuery("SELECT (.+) FROM records").WillReturnRows(rows)

		repo := NewPostgresRepository(mock, testLogger())
		recs, err := repo.ListByDate(context.Background())

		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "INV-2026-002", recs[0].SourceID)
		assert.Equal(t, "INV-2026-001", recs[1].SourceID)
		require.NotNil(t, recs[0].Description)
		assert.Equal(t, "Venta mayorista", *recs[0].Description)
		assert.Nil(t, recs[1].Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates query failures", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT (.+) FROM records").WillReturnError(errors.New("connection refused"))

		repo := NewPostgresRepository(mock, testLogger())
		_, err = repo.ListByDate(context.Background())
		require.Error(t, err)
	})
}
