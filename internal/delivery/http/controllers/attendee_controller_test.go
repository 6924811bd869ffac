package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickagenda/internal/domain"
	"quickagenda/internal/stats"
)

// fakeAttendeeService implements domain.AttendeeService for handler tests.
type fakeAttendeeService struct {
	list *domain.AttendeeList
	err  error

	lastEmail  string
	lastStatus domain.RSVPStatus
}

func (f *fakeAttendeeService) SetRSVP(ctx context.Context, shareCode, email string, status domain.RSVPStatus) error {
	f.lastEmail = email
	f.lastStatus = status
	return f.err
}

func (f *fakeAttendeeService) ListAttendees(ctx context.Context, shareCode string) (*domain.AttendeeList, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

// Stub repos backing the stats refresher in controller tests.
type stubFormRepo struct{ schema *domain.FormSchema }

func (s *stubFormRepo) GetByEventID(ctx context.Context, eventID int64) (*domain.FormSchema, error) {
	return s.schema, nil
}
func (s *stubFormRepo) Upsert(ctx context.Context, schema *domain.FormSchema) error { return nil }

type stubResponseRepo struct{ count int }

func (s *stubResponseRepo) Upsert(ctx context.Context, formID int64, email string, answers domain.Answers) error {
	return nil
}
func (s *stubResponseRepo) ListByFormID(ctx context.Context, formID int64) ([]*domain.FormResponse, error) {
	return nil, nil
}
func (s *stubResponseRepo) CountByFormID(ctx context.Context, formID int64) (int, error) {
	return s.count, nil
}

type stubAttendeeRepo struct{ counts domain.RSVPCounts }

func (s *stubAttendeeRepo) Upsert(ctx context.Context, att *domain.Attendee) error { return nil }
func (s *stubAttendeeRepo) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Attendee, error) {
	return nil, nil
}
func (s *stubAttendeeRepo) CountsByEventID(ctx context.Context, eventID int64) (domain.RSVPCounts, error) {
	return s.counts, nil
}

func newTestRefresher(counts domain.RSVPCounts, responses int) *stats.Refresher {
	return stats.NewRefresher(
		&stubFormRepo{schema: &domain.FormSchema{ID: 1}},
		&stubResponseRepo{count: responses},
		&stubAttendeeRepo{counts: counts},
		testLogger,
		time.Second,
	)
}

func TestAttendeeController_SetRSVP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"email":"grace@example.com","rsvp":"YES"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "lowercase answer accepted",
			body:       `{"email":"grace@example.com","rsvp":"maybe"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:           "unknown answer",
			body:           `{"email":"grace@example.com","rsvp":"PERHAPS"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "rsvp must be YES, NO or MAYBE",
		},
		{
			name:           "missing email",
			body:           `{"rsvp":"YES"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "email is required",
		},
		{
			name:           "unknown event",
			body:           `{"email":"grace@example.com","rsvp":"YES"}`,
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAttendeeService{err: tt.fakeErr}
			c := NewAttendeeController(testLogger, svc, &fakeEventService{detail: sampleDetail()}, newTestRefresher(domain.RSVPCounts{}, 0))

			req := httptest.NewRequest(http.MethodPatch, "/api/events/ABC123/rsvp", bytes.NewBufferString(tt.body))
			req.SetPathValue("code", "ABC123")
			w := httptest.NewRecorder()
			c.SetRSVP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBodySubstr != "" {
				assert.Contains(t, w.Body.String(), tt.wantBodySubstr)
			}
		})
	}
}

func TestAttendeeController_ListAttendees(t *testing.T) {
	svc := &fakeAttendeeService{list: &domain.AttendeeList{
		Attendees: []*domain.Attendee{
			{Email: "grace@example.com", RSVP: domain.RSVPYes},
			{Email: "niklaus@example.com", RSVP: domain.RSVPMaybe},
		},
		RSVPCounts: domain.RSVPCounts{Yes: 1, Maybe: 1},
	}}
	c := NewAttendeeController(testLogger, svc, &fakeEventService{detail: sampleDetail()}, newTestRefresher(domain.RSVPCounts{}, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/events/ABC123/attendees", nil)
	req.SetPathValue("code", "ABC123")
	w := httptest.NewRecorder()
	c.ListAttendees(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data domain.AttendeeList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Attendees, 2)
	assert.Equal(t, 1, resp.Data.Yes)
	assert.Equal(t, 1, resp.Data.Maybe)
}

func TestAttendeeController_GetSummary(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := NewAttendeeController(
			testLogger,
			&fakeAttendeeService{},
			&fakeEventService{detail: sampleDetail()},
			newTestRefresher(domain.RSVPCounts{Yes: 3, No: 1, Maybe: 2}, 4),
		)

		req := httptest.NewRequest(http.MethodGet, "/api/events/ABC123/attendees/summary", nil)
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.GetSummary(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data stats.Snapshot `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Data.RSVP.Yes)
		assert.Equal(t, 4, resp.Data.Responses)
		assert.False(t, resp.Data.RefreshedAt.IsZero())
	})

	t.Run("unknown event", func(t *testing.T) {
		c := NewAttendeeController(
			testLogger,
			&fakeAttendeeService{},
			&fakeEventService{err: domain.ErrNotFound},
			newTestRefresher(domain.RSVPCounts{}, 0),
		)

		req := httptest.NewRequest(http.MethodGet, "/api/events/NOPE99/attendees/summary", nil)
		req.SetPathValue("code", "NOPE99")
		w := httptest.NewRecorder()
		c.GetSummary(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
