package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date with no time component. It marshals to and from
// the wire as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate returns a Date for the given year, month, and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Before reports whether d falls strictly before other, comparing dates only.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Event represents a single-day shareable event. ShareCode is the public
// identifier embedded in the guest-facing URL; it is assigned at creation
// and never changes.
type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EventDate   Date      `json:"eventDate"`
	ShareCode   string    `json:"shareCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Session is a timed block on the event's agenda. StartTime and EndTime carry
// the event's date; the invariant EndTime > StartTime holds for every
// persisted session.
type Session struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"-"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DraftSession is a session held only in client memory before the parent
// event exists. Times are wall-clock "HH:mm" strings on the event's date.
type DraftSession struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
}

// EventDetail bundles an event with its sessions ordered by start time. It is
// the payload of GET /api/events/{code} and of every session mutation.
type EventDetail struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	EventDate   Date       `json:"eventDate"`
	ShareCode   string     `json:"shareCode"`
	Sessions    []*Session `json:"sessions"`
}

// ShareLinks holds the guest-facing URLs derived from an event: the share
// page itself and a prefilled Google Calendar link built from the first
// session (nil when the event has no sessions).
type ShareLinks struct {
	URL            string  `json:"url"`
	GoogleCalendar *string `json:"googleCalendarUrl"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByShareCode(ctx context.Context, shareCode string) (*Event, error)
	Update(ctx context.Context, eventID int64, name, description *string, eventDate *Date) (*Event, error)
}

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id int64) (*Session, error)
	ListByEventID(ctx context.Context, eventID int64) ([]*Session, error)
	UpdateTimes(ctx context.Context, id int64, start, end time.Time) error
	Delete(ctx context.Context, id int64) error
}

// EventService defines the business logic for events and their sessions.
type EventService interface {
	// CreateEvent persists the event and its draft sessions. The event date
	// must be today or later and at least one draft session is required.
	CreateEvent(ctx context.Context, name, description string, eventDate Date, drafts []DraftSession) (*Event, error)
	GetEventByShareCode(ctx context.Context, shareCode string) (*EventDetail, error)
	UpdateEvent(ctx context.Context, shareCode string, name, description *string, eventDate *Date) (*EventDetail, error)
	AddSession(ctx context.Context, shareCode string, draft DraftSession) (*EventDetail, error)
	// UpdateSessionTimes sets exact wall-clock times ("HH:mm") on a session.
	UpdateSessionTimes(ctx context.Context, shareCode string, sessionID int64, start, end string) (*EventDetail, error)
	// MoveSession relocates a session to the hour bucket destHour, preserving
	// its duration. Dropping a session on its own start hour is a no-op.
	MoveSession(ctx context.Context, shareCode string, sessionID int64, destHour int) (*EventDetail, error)
	// ResizeSession converts a vertical pointer displacement in pixels into a
	// new end time in half-hour steps.
	ResizeSession(ctx context.Context, shareCode string, sessionID int64, deltaY int) (*EventDetail, error)
	DeleteSession(ctx context.Context, shareCode string, sessionID int64) (*EventDetail, error)
	// BuildICS renders the event's agenda as an iCalendar file.
	BuildICS(ctx context.Context, shareCode string) ([]byte, error)
	ShareLinks(ctx context.Context, shareCode string) (*ShareLinks, error)
}
