package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quickagenda/internal/domain"
)

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (event_id, title, start_time, end_time, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		s.EventID, s.Title, s.StartTime, s.EndTime, s.Location, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func (r *sessionRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	query := `
		SELECT id, event_id, title, start_time, end_time, location, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`
	s := &domain.Session{}
	var locNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.EventID, &s.Title, &s.StartTime, &s.EndTime, &locNull, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if locNull.Valid {
		s.Location = locNull.String
	}
	return s, nil
}

func (r *sessionRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Session, error) {
	query := `
		SELECT id, event_id, title, start_time, end_time, location, created_at, updated_at
		FROM sessions
		WHERE event_id = $1
		ORDER BY start_time, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s := &domain.Session{}
		var locNull sql.NullString
		if err := rows.Scan(&s.ID, &s.EventID, &s.Title, &s.StartTime, &s.EndTime, &locNull, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if locNull.Valid {
			s.Location = locNull.String
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) UpdateTimes(ctx context.Context, id int64, start, end time.Time) error {
	query := `
		UPDATE sessions
		SET start_time = $1, end_time = $2, updated_at = NOW()
		WHERE id = $3
	`
	res, err := r.DB.ExecContext(ctx, query, start, end, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
