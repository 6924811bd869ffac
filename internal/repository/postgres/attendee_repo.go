package postgres

import (
	"context"
	"database/sql"

	"quickagenda/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func (r *attendeeRepository) Upsert(ctx context.Context, att *domain.Attendee) error {
	query := `
		INSERT INTO attendees (event_id, email, rsvp, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (event_id, email)
		DO UPDATE SET rsvp = EXCLUDED.rsvp, updated_at = NOW()
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		att.EventID, att.Email, string(att.RSVP),
	).Scan(&att.ID, &att.CreatedAt)
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Attendee, error) {
	query := `
		SELECT id, event_id, email, rsvp, created_at, updated_at
		FROM attendees
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a := &domain.Attendee{}
		var rsvp string
		if err := rows.Scan(&a.ID, &a.EventID, &a.Email, &rsvp, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.RSVP = domain.RSVPStatus(rsvp)
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *attendeeRepository) CountsByEventID(ctx context.Context, eventID int64) (domain.RSVPCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE rsvp = 'YES'),
			COUNT(*) FILTER (WHERE rsvp = 'NO'),
			COUNT(*) FILTER (WHERE rsvp = 'MAYBE')
		FROM attendees
		WHERE event_id = $1
	`
	var c domain.RSVPCounts
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&c.Yes, &c.No, &c.Maybe)
	return c, err
}
