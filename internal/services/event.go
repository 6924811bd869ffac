package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"quickagenda/internal/domain"
	"quickagenda/internal/timeslot"
)

type eventService struct {
	eventRepo      domain.EventRepository
	sessionRepo    domain.SessionRepository
	baseURL        string
	contextTimeout time.Duration
}

// NewEventService wires the event business logic. baseURL is the public
// origin share links are built against, without a trailing slash.
func NewEventService(eventRepo domain.EventRepository, sessionRepo domain.SessionRepository, baseURL string, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		sessionRepo:    sessionRepo,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		contextTimeout: timeout,
	}
}

const shareCodeLength = 6

var shareCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func generateShareCode() (string, error) {
	b := make([]rune, shareCodeLength)
	max := big.NewInt(int64(len(shareCodeAlphabet)))
	for i := 0; i < shareCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// parseDraft turns an "HH:mm" draft into clamped window clocks.
func parseDraft(draft domain.DraftSession) (timeslot.Clock, timeslot.Clock, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return 0, 0, fmt.Errorf("%w: session title is required", domain.ErrInvalidInput)
	}
	start, ok := timeslot.ParseClock(draft.Start)
	if !ok {
		return 0, 0, fmt.Errorf("%w: invalid session start %q", domain.ErrInvalidInput, draft.Start)
	}
	end, ok := timeslot.ParseClock(draft.End)
	if !ok {
		return 0, 0, fmt.Errorf("%w: invalid session end %q", domain.ErrInvalidInput, draft.End)
	}
	start, end = timeslot.ClampExact(start, end)
	return start, end, nil
}

func (s *eventService) CreateEvent(ctx context.Context, name, description string, eventDate domain.Date, drafts []domain.DraftSession) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if eventDate.IsZero() {
		return nil, fmt.Errorf("%w: event date is required", domain.ErrInvalidInput)
	}
	today := domain.NewDate(time.Now().Date())
	if eventDate.Before(today) {
		return nil, fmt.Errorf("%w: event date cannot be in the past", domain.ErrInvalidInput)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: at least one session is required", domain.ErrInvalidInput)
	}

	// Validate every draft before touching storage so a bad session never
	// leaves behind a half-created event.
	type plannedSession struct {
		title    string
		location string
		start    timeslot.Clock
		end      timeslot.Clock
	}
	planned := make([]plannedSession, 0, len(drafts))
	for _, draft := range drafts {
		start, end, err := parseDraft(draft)
		if err != nil {
			return nil, err
		}
		planned = append(planned, plannedSession{
			title:    draft.Title,
			location: draft.Location,
			start:    start,
			end:      end,
		})
	}

	now := time.Now()
	event := &domain.Event{
		Name:        name,
		Description: description,
		EventDate:   eventDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// A code collision is a 1-in-36^6 event; one retry covers it.
	for attempt := 0; ; attempt++ {
		code, err := generateShareCode()
		if err != nil {
			return nil, fmt.Errorf("generate share code: %w", err)
		}
		event.ShareCode = code
		err = s.eventRepo.Create(ctx, event)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("create event: %w", err)
	}

	for _, p := range planned {
		sess := &domain.Session{
			EventID:   event.ID,
			Title:     p.title,
			StartTime: p.start.On(eventDate.Time),
			EndTime:   p.end.On(eventDate.Time),
			Location:  p.location,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.sessionRepo.Create(ctx, sess); err != nil {
			return nil, fmt.Errorf("create session %q: %w", p.title, err)
		}
	}

	return event, nil
}

func (s *eventService) getEvent(ctx context.Context, shareCode string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByShareCode(ctx, shareCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) detail(ctx context.Context, event *domain.Event) (*domain.EventDetail, error) {
	sessions, err := s.sessionRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return &domain.EventDetail{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		EventDate:   event.EventDate,
		ShareCode:   event.ShareCode,
		Sessions:    sessions,
	}, nil
}

func (s *eventService) GetEventByShareCode(ctx context.Context, shareCode string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, event)
}

func (s *eventService) UpdateEvent(ctx context.Context, shareCode string, name, description *string, eventDate *domain.Date) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, fmt.Errorf("%w: event name cannot be empty", domain.ErrInvalidInput)
	}
	if eventDate != nil {
		today := domain.NewDate(time.Now().Date())
		if eventDate.Before(today) {
			return nil, fmt.Errorf("%w: event date cannot be in the past", domain.ErrInvalidInput)
		}
	}

	updated, err := s.eventRepo.Update(ctx, event.ID, name, description, eventDate)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	// Session times carry the event date; moving the date shifts every
	// session onto it, keeping wall-clock times.
	if eventDate != nil && !eventDate.Equal(event.EventDate.Time) {
		sessions, err := s.sessionRepo.ListByEventID(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		for _, sess := range sessions {
			start := timeslot.FromTime(sess.StartTime).On(eventDate.Time)
			end := timeslot.FromTime(sess.EndTime).On(eventDate.Time)
			if err := s.sessionRepo.UpdateTimes(ctx, sess.ID, start, end); err != nil {
				return nil, fmt.Errorf("shift session %d: %w", sess.ID, err)
			}
		}
	}

	return s.detail(ctx, updated)
}

func (s *eventService) AddSession(ctx context.Context, shareCode string, draft domain.DraftSession) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	start, end, err := parseDraft(draft)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sess := &domain.Session{
		EventID:   event.ID,
		Title:     draft.Title,
		StartTime: start.On(event.EventDate.Time),
		EndTime:   end.On(event.EventDate.Time),
		Location:  draft.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s.detail(ctx, event)
}

// getOwnedSession loads a session and verifies it belongs to the event.
func (s *eventService) getOwnedSession(ctx context.Context, event *domain.Event, sessionID int64) (*domain.Session, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.EventID != event.ID {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

func (s *eventService) UpdateSessionTimes(ctx context.Context, shareCode string, sessionID int64, start, end string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	sess, err := s.getOwnedSession(ctx, event, sessionID)
	if err != nil {
		return nil, err
	}

	startClock, ok := timeslot.ParseClock(start)
	if !ok {
		return nil, fmt.Errorf("%w: invalid start %q", domain.ErrInvalidInput, start)
	}
	endClock, ok := timeslot.ParseClock(end)
	if !ok {
		return nil, fmt.Errorf("%w: invalid end %q", domain.ErrInvalidInput, end)
	}
	startClock, endClock = timeslot.ClampExact(startClock, endClock)

	date := event.EventDate.Time
	if err := s.sessionRepo.UpdateTimes(ctx, sess.ID, startClock.On(date), endClock.On(date)); err != nil {
		return nil, fmt.Errorf("update session times: %w", err)
	}
	return s.detail(ctx, event)
}

func (s *eventService) MoveSession(ctx context.Context, shareCode string, sessionID int64, destHour int) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	sess, err := s.getOwnedSession(ctx, event, sessionID)
	if err != nil {
		return nil, err
	}

	newStart, newEnd, ok := timeslot.PlanMove(timeslot.FromTime(sess.StartTime), timeslot.FromTime(sess.EndTime), destHour)
	if !ok {
		// Dropped back on its own hour: nothing to persist.
		return s.detail(ctx, event)
	}
	date := event.EventDate.Time
	if err := s.sessionRepo.UpdateTimes(ctx, sess.ID, newStart.On(date), newEnd.On(date)); err != nil {
		return nil, fmt.Errorf("move session: %w", err)
	}
	return s.detail(ctx, event)
}

func (s *eventService) ResizeSession(ctx context.Context, shareCode string, sessionID int64, deltaY int) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	sess, err := s.getOwnedSession(ctx, event, sessionID)
	if err != nil {
		return nil, err
	}

	start := timeslot.FromTime(sess.StartTime)
	newEnd := timeslot.PlanResize(start, timeslot.FromTime(sess.EndTime), deltaY)
	if newEnd == timeslot.FromTime(sess.EndTime) {
		return s.detail(ctx, event)
	}
	if err := s.sessionRepo.UpdateTimes(ctx, sess.ID, sess.StartTime, newEnd.On(event.EventDate.Time)); err != nil {
		return nil, fmt.Errorf("resize session: %w", err)
	}
	return s.detail(ctx, event)
}

func (s *eventService) DeleteSession(ctx context.Context, shareCode string, sessionID int64) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	if _, err := s.getOwnedSession(ctx, event, sessionID); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return s.detail(ctx, event)
}

func (s *eventService) BuildICS(ctx context.Context, shareCode string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetProductId("-//Quickagenda//Go//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	for _, sess := range sessions {
		ev := cal.AddEvent(fmt.Sprintf("session-%d@%s", sess.ID, strings.ToLower(event.ShareCode)))
		ev.SetDtStampTime(event.UpdatedAt)
		ev.SetStartAt(sess.StartTime)
		ev.SetEndAt(sess.EndTime)
		ev.SetSummary(sess.Title)
		if strings.TrimSpace(sess.Location) != "" {
			ev.SetLocation(sess.Location)
		}
	}
	return []byte(cal.Serialize()), nil
}

const googleDateFormat = "20060102T150405"

func (s *eventService) ShareLinks(ctx context.Context, shareCode string) (*domain.ShareLinks, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	links := &domain.ShareLinks{URL: s.shareURL(event.ShareCode)}

	sessions, err := s.sessionRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return links, nil
	}

	first := sessions[0]
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", event.Name)
	params.Set("dates", first.StartTime.Format(googleDateFormat)+"/"+first.EndTime.Format(googleDateFormat))
	params.Set("details", links.URL)
	google := "https://www.google.com/calendar/render?" + params.Encode()
	links.GoogleCalendar = &google
	return links, nil
}

func (s *eventService) shareURL(shareCode string) string {
	return s.baseURL + "/s/" + shareCode
}
