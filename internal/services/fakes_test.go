package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"quickagenda/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[int64]*domain.Event
	byCode    map[string]*domain.Event
	nextID    int64
	createErr error
	getErr    error
	updateErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[int64]*domain.Event),
		byCode: make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = f.nextID
	f.nextID++
	f.byID[event.ID] = event
	f.byCode[event.ShareCode] = event
	return nil
}

func (f *fakeEventRepo) GetByShareCode(ctx context.Context, shareCode string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	ev, ok := f.byCode[shareCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID int64, name, description *string, eventDate *domain.Date) (*domain.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	ev, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if name != nil {
		ev.Name = *name
	}
	if description != nil {
		ev.Description = *description
	}
	if eventDate != nil {
		ev.EventDate = *eventDate
	}
	ev.UpdatedAt = time.Now()
	return ev, nil
}

// addEvent seeds an event directly, bypassing Create.
func (f *fakeEventRepo) addEvent(code string, date domain.Date) *domain.Event {
	ev := &domain.Event{
		ID:        f.nextID,
		Name:      "Event " + code,
		EventDate: date,
		ShareCode: code,
	}
	f.nextID++
	f.byID[ev.ID] = ev
	f.byCode[code] = ev
	return ev
}

// fakeSessionRepo is an in-memory SessionRepository for tests.
type fakeSessionRepo struct {
	sessions  map[int64]*domain.Session
	nextID    int64
	createErr error
	listErr   error
	updateErr error
	deleteErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]*domain.Session), nextID: 1}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = f.nextID
	f.nextID++
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Session
	for _, s := range f.sessions {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if out == nil {
		return []*domain.Session{}, nil
	}
	return out, nil
}

func (f *fakeSessionRepo) UpdateTimes(ctx context.Context, id int64, start, end time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.StartTime = start
	s.EndTime = end
	s.UpdatedAt = time.Now()
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

// fakeFormRepo is an in-memory FormRepository for tests.
type fakeFormRepo struct {
	byEventID map[int64]*domain.FormSchema
	nextID    int64
	getErr    error
	upsertErr error
	upserts   int
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{byEventID: make(map[int64]*domain.FormSchema), nextID: 1}
}

func (f *fakeFormRepo) GetByEventID(ctx context.Context, eventID int64) (*domain.FormSchema, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byEventID[eventID], nil
}

func (f *fakeFormRepo) Upsert(ctx context.Context, schema *domain.FormSchema) error {
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byEventID[schema.EventID]; ok {
		schema.ID = existing.ID
	} else {
		schema.ID = f.nextID
		f.nextID++
	}
	f.byEventID[schema.EventID] = schema
	return nil
}

// fakeResponseRepo is an in-memory FormResponseRepository for tests.
type fakeResponseRepo struct {
	byKey     map[string]*domain.FormResponse
	upsertErr error
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{byKey: make(map[string]*domain.FormResponse)}
}

func responseKey(formID int64, email string) string {
	return fmt.Sprintf("%d/%s", formID, strings.ToLower(email))
}

func (f *fakeResponseRepo) Upsert(ctx context.Context, formID int64, email string, answers domain.Answers) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	key := responseKey(formID, email)
	if r, ok := f.byKey[key]; ok {
		r.Answers = answers
		r.UpdatedAt = time.Now()
		return nil
	}
	f.byKey[key] = &domain.FormResponse{
		ID:        int64(len(f.byKey) + 1),
		FormID:    formID,
		Email:     email,
		Answers:   answers,
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeResponseRepo) ListByFormID(ctx context.Context, formID int64) ([]*domain.FormResponse, error) {
	var out []*domain.FormResponse
	for _, r := range f.byKey {
		if r.FormID == formID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeResponseRepo) CountByFormID(ctx context.Context, formID int64) (int, error) {
	n := 0
	for _, r := range f.byKey {
		if r.FormID == formID {
			n++
		}
	}
	return n, nil
}

// fakeFeedbackRepo is an in-memory FeedbackRepository for tests.
type fakeFeedbackRepo struct {
	items     []*domain.Feedback
	createErr error
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	if f.createErr != nil {
		return f.createErr
	}
	fb.ID = int64(len(f.items) + 1)
	fb.CreatedAt = time.Now()
	f.items = append(f.items, fb)
	return nil
}

func (f *fakeFeedbackRepo) ListRecent(ctx context.Context, params domain.PaginationParams) ([]*domain.Feedback, int, error) {
	out := make([]*domain.Feedback, len(f.items))
	copy(out, f.items)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

// fakeAttendeeRepo is an in-memory AttendeeRepository for tests.
type fakeAttendeeRepo struct {
	byKey     map[string]*domain.Attendee
	upsertErr error
}

func newFakeAttendeeRepo() *fakeAttendeeRepo {
	return &fakeAttendeeRepo{byKey: make(map[string]*domain.Attendee)}
}

func attendeeKey(eventID int64, email string) string {
	return fmt.Sprintf("%d/%s", eventID, strings.ToLower(email))
}

func (f *fakeAttendeeRepo) Upsert(ctx context.Context, att *domain.Attendee) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	key := attendeeKey(att.EventID, att.Email)
	if existing, ok := f.byKey[key]; ok {
		existing.RSVP = att.RSVP
		existing.UpdatedAt = time.Now()
		return nil
	}
	att.ID = int64(len(f.byKey) + 1)
	att.CreatedAt = time.Now()
	f.byKey[key] = att
	return nil
}

func (f *fakeAttendeeRepo) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Attendee, error) {
	var out []*domain.Attendee
	for _, a := range f.byKey {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeAttendeeRepo) CountsByEventID(ctx context.Context, eventID int64) (domain.RSVPCounts, error) {
	var c domain.RSVPCounts
	for _, a := range f.byKey {
		if a.EventID != eventID {
			continue
		}
		switch a.RSVP {
		case domain.RSVPYes:
			c.Yes++
		case domain.RSVPNo:
			c.No++
		case domain.RSVPMaybe:
			c.Maybe++
		}
	}
	return c, nil
}
