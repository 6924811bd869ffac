package postgres

import (
	"context"
	"database/sql"

	"quickagenda/internal/domain"
)

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepository(db *sql.DB) domain.FeedbackRepository {
	return &feedbackRepository{
		DB: db,
	}
}

func (r *feedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	query := `
		INSERT INTO feedback (text, source, user_agent, share_code, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		fb.Text, fb.Source, fb.UserAgent, fb.ShareCode,
	).Scan(&fb.ID, &fb.CreatedAt)
}

func (r *feedbackRepository) ListRecent(ctx context.Context, params domain.PaginationParams) ([]*domain.Feedback, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, text, source, user_agent, share_code, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]*domain.Feedback, 0)
	for rows.Next() {
		fb := &domain.Feedback{}
		var uaNull, codeNull sql.NullString
		if err := rows.Scan(&fb.ID, &fb.Text, &fb.Source, &uaNull, &codeNull, &fb.CreatedAt); err != nil {
			return nil, 0, err
		}
		if uaNull.Valid {
			fb.UserAgent = uaNull.String
		}
		if codeNull.Valid {
			fb.ShareCode = codeNull.String
		}
		items = append(items, fb)
	}
	return items, total, rows.Err()
}
