package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"quickagenda/internal/delivery/http/helpers"
	"quickagenda/internal/domain"
)

// FormFieldRequest is one field definition in the form upsert body.
type FormFieldRequest struct {
	Type     string               `json:"type"`
	Label    string               `json:"label"`
	Required bool                 `json:"required"`
	Options  []string             `json:"options"`
	Config   *domain.NumberConfig `json:"config"`
}

// UpsertFormRequest is the request body for PUT /api/events/{code}/form/admin.
// Field order in the request is the display order.
type UpsertFormRequest struct {
	Title   string             `json:"title"`
	Active  bool               `json:"active"`
	OpenAt  *time.Time         `json:"openAt"`
	CloseAt *time.Time         `json:"closeAt"`
	Fields  []FormFieldRequest `json:"fields"`
}

func (u UpsertFormRequest) schema() *domain.FormSchema {
	s := &domain.FormSchema{
		Title:   u.Title,
		Active:  u.Active,
		OpenAt:  u.OpenAt,
		CloseAt: u.CloseAt,
	}
	for i, f := range u.Fields {
		s.Fields = append(s.Fields, domain.FormField{
			Type:       domain.FieldType(f.Type),
			Label:      f.Label,
			Required:   f.Required,
			OrderIndex: i,
			Options:    f.Options,
			Config:     f.Config,
		})
	}
	return s
}

// SubmitResponseRequest is the request body for a guest answer submission.
type SubmitResponseRequest struct {
	Email   string         `json:"email"`
	Answers domain.Answers `json:"answers"`
}

func (s SubmitResponseRequest) Validate() []string {
	var errs []string
	if s.Email == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// FormSuccessResponse wraps a form schema payload.
type FormSuccessResponse struct {
	Data  *domain.FormSchema `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type FormController struct {
	Logger  *slog.Logger
	Service domain.FormService
}

func NewFormController(logger *slog.Logger, svc domain.FormService) *FormController {
	return &FormController{
		Logger:  logger,
		Service: svc,
	}
}

// GetForm godoc
// @Summary Get the event's guest form as its organizer sees it
// @Description Returns the saved schema, or data null when no form has been created yet.
// @Tags forms
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} controllers.FormSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/form/admin [get]
func (c *FormController) GetForm(w http.ResponseWriter, r *http.Request) {
	schema, err := c.Service.GetAdminForm(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, schema)
}

// UpsertForm godoc
// @Summary Create or replace the event's guest form
// @Description Validates the whole schema before saving: non-empty title and labels, at least one option per select field, min not above max on number fields. An event holds at most one form.
// @Tags forms
// @Accept json
// @Produce json
// @Param code path string true "Share code"
// @Param form body UpsertFormRequest true "Form schema"
// @Success 200 {object} controllers.FormSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/events/{code}/form/admin [put]
func (c *FormController) UpsertForm(w http.ResponseWriter, r *http.Request) {
	var req UpsertFormRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	schema := req.schema()
	if err := c.Service.UpsertForm(r.Context(), r.PathValue("code"), schema); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "a form already exists for this event")
			return
		}
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, schema)
}

// GetPublicForm godoc
// @Summary Get the guest-facing form
// @Description Guests must present a syntactically valid email. A form that is inactive or outside its open window is reported as not found.
// @Tags forms
// @Produce json
// @Param code path string true "Share code"
// @Param email query string true "Guest email"
// @Success 200 {object} controllers.FormSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/form [get]
func (c *FormController) GetPublicForm(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	schema, err := c.Service.GetPublicForm(r.Context(), r.PathValue("code"), email)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, schema)
}

// SubmitResponse godoc
// @Summary Submit guest answers
// @Description Revalidates every answer against the schema on each submission. A guest resubmitting with the same email replaces their previous answers. Submissions outside the form's open window are forbidden.
// @Tags forms
// @Accept json
// @Produce json
// @Param code path string true "Share code"
// @Param submission body SubmitResponseRequest true "Email and answers keyed by field id"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request; error.fields maps field id to message"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/form/submit [post]
func (c *FormController) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Service.Submit(r.Context(), r.PathValue("code"), req.Email, req.Answers)
	if err != nil {
		var vErr *domain.AnswerValidationError
		if errors.As(err, &vErr) {
			helpers.WriteJSONFieldErrors(w, vErr.Fields)
			return
		}
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListResponsesSuccessResponse wraps the submitted responses list.
type ListResponsesSuccessResponse struct {
	Data  []*domain.FormResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListResponses godoc
// @Summary List submitted guest responses
// @Tags forms
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} controllers.ListResponsesSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/form/admin/responses [get]
func (c *FormController) ListResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := c.Service.ListResponses(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, responses)
}
