package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickagenda/internal/domain"
)

// fakeFormService implements domain.FormService for handler tests.
type fakeFormService struct {
	schema    *domain.FormSchema
	responses []*domain.FormResponse
	err       error

	lastSchema  *domain.FormSchema
	lastEmail   string
	lastAnswers domain.Answers
}

func (f *fakeFormService) GetAdminForm(ctx context.Context, shareCode string) (*domain.FormSchema, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.schema, nil
}

func (f *fakeFormService) UpsertForm(ctx context.Context, shareCode string, schema *domain.FormSchema) error {
	f.lastSchema = schema
	return f.err
}

func (f *fakeFormService) GetPublicForm(ctx context.Context, shareCode, email string) (*domain.FormSchema, error) {
	f.lastEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.schema, nil
}

func (f *fakeFormService) Submit(ctx context.Context, shareCode, email string, answers domain.Answers) error {
	f.lastEmail = email
	f.lastAnswers = answers
	return f.err
}

func (f *fakeFormService) ListResponses(ctx context.Context, shareCode string) ([]*domain.FormResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.responses, nil
}

func TestFormController_GetForm(t *testing.T) {
	t.Run("no form yet returns null data", func(t *testing.T) {
		c := NewFormController(testLogger, &fakeFormService{})
		req := httptest.NewRequest(http.MethodGet, "/api/events/ABC123/form/admin", nil)
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.GetForm(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":null`)
	})

	t.Run("saved form", func(t *testing.T) {
		schema := &domain.FormSchema{Title: "Guest details", Active: true}
		c := NewFormController(testLogger, &fakeFormService{schema: schema})
		req := httptest.NewRequest(http.MethodGet, "/api/events/ABC123/form/admin", nil)
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.GetForm(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Guest details")
	})
}

func TestFormController_UpsertForm(t *testing.T) {
	body := `{"title":"Guest details","active":true,"fields":[` +
		`{"type":"short_text","label":"Name","required":true},` +
		`{"type":"single_select","label":"Diet","options":["Meat","Veggie"]}]}`

	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:           "success",
			body:           body,
			wantStatus:     http.StatusOK,
			wantBodySubstr: "Guest details",
		},
		{
			name:           "conflict gets the dedicated message",
			body:           body,
			fakeErr:        domain.ErrConflict,
			wantStatus:     http.StatusConflict,
			wantBodySubstr: "a form already exists for this event",
		},
		{
			name:           "invalid schema",
			body:           body,
			fakeErr:        fmt.Errorf("%w: field 2: at least one option is required", domain.ErrInvalidInput),
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "at least one option is required",
		},
		{
			name:           "storage error",
			body:           body,
			fakeErr:        errors.New("db down"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "internal_error",
		},
		{
			name:           "unknown event",
			body:           body,
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeFormService{err: tt.fakeErr}
			c := NewFormController(testLogger, svc)

			req := httptest.NewRequest(http.MethodPut, "/api/events/ABC123/form/admin", bytes.NewBufferString(tt.body))
			req.SetPathValue("code", "ABC123")
			w := httptest.NewRecorder()
			c.UpsertForm(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBodySubstr)
		})
	}

	t.Run("field order follows the request body", func(t *testing.T) {
		svc := &fakeFormService{}
		c := NewFormController(testLogger, svc)

		req := httptest.NewRequest(http.MethodPut, "/api/events/ABC123/form/admin", bytes.NewBufferString(body))
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.UpsertForm(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.lastSchema)
		require.Len(t, svc.lastSchema.Fields, 2)
		assert.Equal(t, 0, svc.lastSchema.Fields[0].OrderIndex)
		assert.Equal(t, domain.FieldShortText, svc.lastSchema.Fields[0].Type)
		assert.Equal(t, 1, svc.lastSchema.Fields[1].OrderIndex)
		assert.Equal(t, []string{"Meat", "Veggie"}, svc.lastSchema.Fields[1].Options)
	})
}

func TestFormController_GetPublicForm(t *testing.T) {
	t.Run("passes the email query through", func(t *testing.T) {
		svc := &fakeFormService{schema: &domain.FormSchema{Title: "Guest details", Active: true}}
		c := NewFormController(testLogger, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/events/ABC123/form?email=grace%40example.com", nil)
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.GetPublicForm(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "grace@example.com", svc.lastEmail)
	})

	t.Run("closed form reads as not found", func(t *testing.T) {
		c := NewFormController(testLogger, &fakeFormService{err: domain.ErrNotFound})
		req := httptest.NewRequest(http.MethodGet, "/api/events/ABC123/form?email=grace%40example.com", nil)
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.GetPublicForm(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFormController_SubmitResponse(t *testing.T) {
	t.Run("success is 204 with no body", func(t *testing.T) {
		svc := &fakeFormService{}
		c := NewFormController(testLogger, svc)

		body := `{"email":"grace@example.com","answers":{"1":"Grace","2":"Veggie"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/events/ABC123/form/submit", bytes.NewBufferString(body))
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.SubmitResponse(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "grace@example.com", svc.lastEmail)
		assert.Equal(t, domain.Answers{"1": "Grace", "2": "Veggie"}, svc.lastAnswers)
	})

	t.Run("missing email", func(t *testing.T) {
		c := NewFormController(testLogger, &fakeFormService{})
		req := httptest.NewRequest(http.MethodPost, "/api/events/ABC123/form/submit", bytes.NewBufferString(`{"answers":{}}`))
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.SubmitResponse(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email is required")
	})

	t.Run("invalid answers surface per-field messages", func(t *testing.T) {
		svc := &fakeFormService{err: &domain.AnswerValidationError{Fields: map[string]string{
			"1": "this field is required",
			"3": "must be a number",
		}}}
		c := NewFormController(testLogger, svc)

		body := `{"email":"grace@example.com","answers":{"3":"abc"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/events/ABC123/form/submit", bytes.NewBufferString(body))
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.SubmitResponse(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error struct {
				Code    string            `json:"code"`
				Message string            `json:"message"`
				Fields  map[string]string `json:"fields"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "bad_request", resp.Error.Code)
		assert.Equal(t, "invalid answers", resp.Error.Message)
		assert.Equal(t, "this field is required", resp.Error.Fields["1"])
		assert.Equal(t, "must be a number", resp.Error.Fields["3"])
	})

	t.Run("closed window is forbidden", func(t *testing.T) {
		c := NewFormController(testLogger, &fakeFormService{err: domain.ErrForbidden})
		body := `{"email":"grace@example.com","answers":{}}`
		req := httptest.NewRequest(http.MethodPost, "/api/events/ABC123/form/submit", bytes.NewBufferString(body))
		req.SetPathValue("code", "ABC123")
		w := httptest.NewRecorder()
		c.SubmitResponse(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "forbidden")
	})
}

func TestFormController_ListResponses(t *testing.T) {
	svc := &fakeFormService{responses: []*domain.FormResponse{
		{Email: "grace@example.com", Answers: domain.Answers{"1": "Grace"}},
		{Email: "niklaus@example.com", Answers: domain.Answers{"1": "Niklaus"}},
	}}
	c := NewFormController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/events/ABC123/form/admin/responses", nil)
	req.SetPathValue("code", "ABC123")
	w := httptest.NewRecorder()
	c.ListResponses(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []*domain.FormResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "grace@example.com", resp.Data[0].Email)
}
