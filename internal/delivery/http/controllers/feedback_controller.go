package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"quickagenda/internal/delivery/http/helpers"
	"quickagenda/internal/domain"
)

// CreateFeedbackRequest is the request body for POST /api/feedback.
type CreateFeedbackRequest struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	ShareCode string `json:"shareCode"`
}

func (c CreateFeedbackRequest) Validate() []string {
	var errs []string
	if c.Text == "" {
		errs = append(errs, "text is required")
	}
	if utf8.RuneCountInString(c.Text) > domain.FeedbackMaxLength {
		errs = append(errs, fmt.Sprintf("text must be at most %d characters", domain.FeedbackMaxLength))
	}
	return errs
}

// FeedbackListResponse is the paginated feedback payload.
type FeedbackListResponse struct {
	Items []*domain.Feedback     `json:"items"`
	Meta  helpers.PaginationMeta `json:"meta"`
}

type FeedbackController struct {
	Logger  *slog.Logger
	Service domain.FeedbackService
}

func NewFeedbackController(logger *slog.Logger, svc domain.FeedbackService) *FeedbackController {
	return &FeedbackController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateFeedback godoc
// @Summary Leave feedback about the app
// @Description The submitting browser's User-Agent is recorded alongside the text.
// @Tags feedback
// @Accept json
// @Produce json
// @Param feedback body CreateFeedbackRequest true "Feedback text, optional source and share code"
// @Success 201 {object} helpers.APIResponse "data contains the stored feedback"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Router /api/feedback [post]
func (c *FeedbackController) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req CreateFeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	fb := &domain.Feedback{
		Text:      req.Text,
		Source:    req.Source,
		ShareCode: req.ShareCode,
		UserAgent: r.UserAgent(),
	}
	if err := c.Service.Submit(r.Context(), fb); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, fb)
}

// ListFeedback godoc
// @Summary List recent feedback, newest first
// @Tags feedback
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and meta"
// @Router /api/feedback [get]
func (c *FeedbackController) ListFeedback(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListRecent(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FeedbackListResponse{
		Items: items,
		Meta:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
