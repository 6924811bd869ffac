package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quickagenda/internal/domain"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	contextTimeout time.Duration
}

// NewAttendeeService wires the RSVP logic.
func NewAttendeeService(eventRepo domain.EventRepository, attendeeRepo domain.AttendeeRepository, timeout time.Duration) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) SetRSVP(ctx context.Context, shareCode, email string, status domain.RSVPStatus) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidEmail(email) {
		return fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	parsed, ok := domain.ParseRSVPStatus(string(status))
	if !ok {
		return fmt.Errorf("%w: rsvp must be YES, NO or MAYBE", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByShareCode(ctx, shareCode)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	att := &domain.Attendee{
		EventID: event.ID,
		Email:   strings.ToLower(strings.TrimSpace(email)),
		RSVP:    parsed,
	}
	if err := s.attendeeRepo.Upsert(ctx, att); err != nil {
		return fmt.Errorf("upsert attendee: %w", err)
	}
	return nil
}

func (s *attendeeService) ListAttendees(ctx context.Context, shareCode string) (*domain.AttendeeList, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	attendees, err := s.attendeeRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}

	counts, err := s.attendeeRepo.CountsByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count attendees: %w", err)
	}

	return &domain.AttendeeList{Attendees: attendees, RSVPCounts: counts}, nil
}
