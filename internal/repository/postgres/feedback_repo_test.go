package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"quickagenda/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO feedback \(text, source, user_agent, share_code, created_at\)`).
		WithArgs("love it", "share_page", "Mozilla/5.0", "ABC123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

	repo := NewFeedbackRepository(db)
	fb := &domain.Feedback{Text: "love it", Source: "share_page", UserAgent: "Mozilla/5.0", ShareCode: "ABC123"}
	require.NoError(t, repo.Create(ctx, fb))
	require.Equal(t, int64(11), fb.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("second page", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectQuery(`SELECT id, text, source, user_agent, share_code, created_at`).
			WithArgs(2, 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "text", "source", "user_agent", "share_code", "created_at"}).
				AddRow(int64(3), "middle", "", nil, nil, now).
				AddRow(int64(2), "older", "share_page", "Mozilla/5.0", "ABC123", now.Add(-time.Hour)))

		repo := NewFeedbackRepository(db)
		items, total, err := repo.ListRecent(ctx, domain.PaginationParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Len(t, items, 2)
		require.Empty(t, items[0].UserAgent)
		require.Equal(t, "ABC123", items[1].ShareCode)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback`).
			WillReturnError(sql.ErrConnDone)

		repo := NewFeedbackRepository(db)
		_, _, err = repo.ListRecent(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
		require.Error(t, err)
	})
}
