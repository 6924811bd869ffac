package controllers

import (
	"log/slog"
	"net/http"

	"quickagenda/internal/delivery/http/helpers"
	"quickagenda/internal/domain"
	"quickagenda/internal/stats"
)

// RSVPRequest is the request body for PATCH /api/events/{code}/rsvp.
type RSVPRequest struct {
	Email string `json:"email"`
	RSVP  string `json:"rsvp"`
}

func (r RSVPRequest) Validate() []string {
	var errs []string
	if r.Email == "" {
		errs = append(errs, "email is required")
	}
	if _, ok := domain.ParseRSVPStatus(r.RSVP); !ok {
		errs = append(errs, "rsvp must be YES, NO or MAYBE")
	}
	return errs
}

// AttendeeListSuccessResponse wraps the attendee list with its tally.
type AttendeeListSuccessResponse struct {
	Data  *domain.AttendeeList `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type AttendeeController struct {
	Logger    *slog.Logger
	Service   domain.AttendeeService
	EventSvc  domain.EventService
	Refresher *stats.Refresher
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService, eventSvc domain.EventService, refresher *stats.Refresher) *AttendeeController {
	return &AttendeeController{
		Logger:    logger,
		Service:   svc,
		EventSvc:  eventSvc,
		Refresher: refresher,
	}
}

// SetRSVP godoc
// @Summary Record an RSVP for an event
// @Description One answer per email; repeating replaces the previous answer.
// @Tags attendees
// @Accept json
// @Produce json
// @Param code path string true "Share code"
// @Param rsvp body RSVPRequest true "Email and answer"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/rsvp [patch]
func (c *AttendeeController) SetRSVP(w http.ResponseWriter, r *http.Request) {
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	code := r.PathValue("code")
	if err := c.Service.SetRSVP(r.Context(), code, req.Email, domain.RSVPStatus(req.RSVP)); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	c.invalidateSnapshot(r, code)
	w.WriteHeader(http.StatusNoContent)
}

// invalidateSnapshot drops the cached summary after an RSVP write so the next
// summary read reflects it.
func (c *AttendeeController) invalidateSnapshot(r *http.Request, code string) {
	detail, err := c.EventSvc.GetEventByShareCode(r.Context(), code)
	if err != nil {
		return
	}
	c.Refresher.Invalidate(detail.ID)
}

// ListAttendees godoc
// @Summary List attendees with their RSVP tally
// @Tags attendees
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} controllers.AttendeeListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/attendees [get]
func (c *AttendeeController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	list, err := c.Service.ListAttendees(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// SummarySuccessResponse wraps the attendance snapshot.
type SummarySuccessResponse struct {
	Data  *stats.Snapshot   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetSummary godoc
// @Summary Get the cached attendance summary for an event
// @Description Served from a snapshot refreshed on a schedule, not recomputed per request. refreshedAt marks the snapshot time.
// @Tags attendees
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} controllers.SummarySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/attendees/summary [get]
func (c *AttendeeController) GetSummary(w http.ResponseWriter, r *http.Request) {
	detail, err := c.EventSvc.GetEventByShareCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	snap, err := c.Refresher.Summary(r.Context(), detail.ID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, snap)
}
