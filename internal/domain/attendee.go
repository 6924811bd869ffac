package domain

import (
	"context"
	"strings"
	"time"
)

// RSVPStatus is an attendee's yes/no/maybe reply.
type RSVPStatus string

const (
	RSVPYes   RSVPStatus = "YES"
	RSVPNo    RSVPStatus = "NO"
	RSVPMaybe RSVPStatus = "MAYBE"
)

// ParseRSVPStatus accepts the status case-insensitively.
func ParseRSVPStatus(s string) (RSVPStatus, bool) {
	switch RSVPStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case RSVPYes:
		return RSVPYes, true
	case RSVPNo:
		return RSVPNo, true
	case RSVPMaybe:
		return RSVPMaybe, true
	}
	return "", false
}

// Attendee records one email's RSVP for an event. One row per event+email;
// a repeat RSVP replaces the previous answer.
type Attendee struct {
	ID        int64      `json:"id"`
	EventID   int64      `json:"-"`
	Email     string     `json:"email"`
	RSVP      RSVPStatus `json:"rsvp"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"-"`
}

// RSVPCounts is the yes/no/maybe tally for an event.
type RSVPCounts struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`
}

// AttendeeList bundles an event's attendees with their RSVP tally.
type AttendeeList struct {
	Attendees []*Attendee `json:"attendees"`
	RSVPCounts
}

// AttendeeRepository defines the interface for attendee storage.
type AttendeeRepository interface {
	Upsert(ctx context.Context, att *Attendee) error
	ListByEventID(ctx context.Context, eventID int64) ([]*Attendee, error)
	CountsByEventID(ctx context.Context, eventID int64) (RSVPCounts, error)
}

// AttendeeService defines the RSVP flow.
type AttendeeService interface {
	SetRSVP(ctx context.Context, shareCode, email string, status RSVPStatus) error
	ListAttendees(ctx context.Context, shareCode string) (*AttendeeList, error)
}
