package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"quickagenda/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, event_date, share_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.EventDate.Time, e.ShareCode, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		// share_code collision
		return domain.ErrConflict
	}
	return err
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var eventDate sql.NullTime
	var descNull sql.NullString
	err := row.Scan(&e.ID, &e.Name, &descNull, &eventDate, &e.ShareCode, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if descNull.Valid {
		e.Description = descNull.String
	}
	if eventDate.Valid {
		e.EventDate = domain.NewDate(eventDate.Time.Date())
	}
	return e, nil
}

func (r *eventRepository) GetByShareCode(ctx context.Context, shareCode string) (*domain.Event, error) {
	code := strings.ToUpper(strings.TrimSpace(shareCode))
	query := `
		SELECT id, name, description, event_date, share_code, created_at, updated_at
		FROM events
		WHERE share_code = $1
	`
	return scanEvent(r.DB.QueryRowContext(ctx, query, code))
}

func (r *eventRepository) Update(ctx context.Context, eventID int64, name, description *string, eventDate *domain.Date) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if eventDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("event_date = $%d", n))
		args = append(args, eventDate.Time)
		n++
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING id, name, description, event_date, share_code, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}
