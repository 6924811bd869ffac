package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"quickagenda/internal/delivery/http/helpers"
	"quickagenda/internal/domain"
	"quickagenda/internal/timeslot"
)

// DraftSessionRequest is one agenda entry in the event creation body.
type DraftSessionRequest struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
}

// CreateEventRequest is the request body for POST /api/events.
type CreateEventRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	EventDate   string                `json:"eventDate"`
	Sessions    []DraftSessionRequest `json:"sessions"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.EventDate == "" {
		errs = append(errs, "eventDate is required")
	} else if _, err := domain.ParseDate(c.EventDate); err != nil {
		errs = append(errs, "eventDate must be YYYY-MM-DD")
	}
	if len(c.Sessions) == 0 {
		errs = append(errs, "at least one session is required")
	}
	for i, s := range c.Sessions {
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, fmt.Sprintf("sessions[%d].title is required", i))
		}
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /api/events/{code}.
// Absent fields are left unchanged.
type UpdateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	EventDate   *string `json:"eventDate"`
}

func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.EventDate != nil {
		if _, err := domain.ParseDate(*u.EventDate); err != nil {
			errs = append(errs, "eventDate must be YYYY-MM-DD")
		}
	}
	return errs
}

// UpdateSessionRequest is the request body for PATCH /api/events/{code}/sessions/{sessionID}.
// Exactly one mutation is accepted per call: exact times (start and end), a
// drag-and-drop hour (destHour), or a resize displacement (deltaY).
type UpdateSessionRequest struct {
	Start    *string `json:"start"`
	End      *string `json:"end"`
	DestHour *int    `json:"destHour"`
	DeltaY   *int    `json:"deltaY"`
}

func (u UpdateSessionRequest) Validate() []string {
	var errs []string
	exact := u.Start != nil || u.End != nil
	modes := 0
	if exact {
		modes++
	}
	if u.DestHour != nil {
		modes++
	}
	if u.DeltaY != nil {
		modes++
	}
	switch {
	case modes == 0:
		errs = append(errs, "one of start/end, destHour or deltaY is required")
	case modes > 1:
		errs = append(errs, "start/end, destHour and deltaY are mutually exclusive")
	case exact && (u.Start == nil || u.End == nil):
		errs = append(errs, "start and end must be set together")
	}
	return errs
}

// EventDetailSuccessResponse is the success envelope wrapping an event with
// its sessions.
type EventDetailSuccessResponse struct {
	Data  *domain.EventDetail `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event with its first agenda sessions
// @Description Creates a single-day event. The share code in the response is the only handle to the event; there are no accounts. Session times are "HH:mm" and are clamped to the 08:00-20:00 agenda window.
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventDetailSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	date, err := domain.ParseDate(req.EventDate)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "eventDate must be YYYY-MM-DD")
		return
	}
	drafts := make([]domain.DraftSession, 0, len(req.Sessions))
	for _, s := range req.Sessions {
		drafts = append(drafts, domain.DraftSession{
			Title:    s.Title,
			Start:    s.Start,
			End:      s.End,
			Location: s.Location,
		})
	}
	event, err := c.Service.CreateEvent(r.Context(), req.Name, req.Description, date, drafts)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by share code
// @Description Returns the event and its sessions ordered by start time. Appending ".ics" to the code downloads the agenda as an iCalendar file instead.
// @Tags events
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} controllers.EventDetailSuccessResponse "data contains the event and sessions"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{code} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if suffix, ok := strings.CutSuffix(code, ".ics"); ok {
		c.serveICS(w, r, suffix)
		return
	}
	detail, err := c.Service.GetEventByShareCode(r.Context(), code)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

func (c *EventController) serveICS(w http.ResponseWriter, r *http.Request, code string) {
	data, err := c.Service.BuildICS(r.Context(), code)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", code+".ics"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UpdateEvent godoc
// @Summary Update an event's name, description or date
// @Description Moving the date shifts every session onto the new day, keeping wall-clock times. Dates in the past are rejected.
// @Tags events
// @Accept json
// @Produce json
// @Param code path string true "Share code"
// @Param event body UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.EventDetailSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	var date *domain.Date
	if req.EventDate != nil {
		d, err := domain.ParseDate(*req.EventDate)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "eventDate must be YYYY-MM-DD")
			return
		}
		date = &d
	}
	detail, err := c.Service.UpdateEvent(r.Context(), r.PathValue("code"), req.Name, req.Description, date)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// AddSession godoc
// @Summary Add a session to the agenda
// @Tags sessions
// @Accept json
// @Produce json
// @Param code path string true "Share code"
// @Param session body DraftSessionRequest true "Session data"
// @Success 201 {object} controllers.EventDetailSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/sessions [post]
func (c *EventController) AddSession(w http.ResponseWriter, r *http.Request) {
	var req DraftSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	detail, err := c.Service.AddSession(r.Context(), r.PathValue("code"), domain.DraftSession{
		Title:    req.Title,
		Start:    req.Start,
		End:      req.End,
		Location: req.Location,
	})
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, detail)
}

// UpdateSession godoc
// @Summary Move, resize or retime a session
// @Description Accepts exactly one mutation: {start,end} sets exact times, {destHour} drops the session on an hour row keeping its duration, {deltaY} resizes in half-hour steps per 22px of travel. A drop on the session's own hour changes nothing.
// @Tags sessions
// @Accept json
// @Produce json
// @Param code path string true "Share code"
// @Param sessionID path int true "Session id"
// @Param mutation body UpdateSessionRequest true "One mutation"
// @Success 200 {object} controllers.EventDetailSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/sessions/{sessionID} [patch]
func (c *EventController) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("sessionID"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "sessionID must be an integer")
		return
	}
	var req UpdateSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	code := r.PathValue("code")

	var detail *domain.EventDetail
	switch {
	case req.DestHour != nil:
		detail, err = c.Service.MoveSession(r.Context(), code, sessionID, *req.DestHour)
	case req.DeltaY != nil:
		detail, err = c.Service.ResizeSession(r.Context(), code, sessionID, *req.DeltaY)
	default:
		detail, err = c.Service.UpdateSessionTimes(r.Context(), code, sessionID, *req.Start, *req.End)
	}
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// DeleteSession godoc
// @Summary Remove a session from the agenda
// @Tags sessions
// @Produce json
// @Param code path string true "Share code"
// @Param sessionID path int true "Session id"
// @Success 200 {object} controllers.EventDetailSuccessResponse "data contains the remaining agenda"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/sessions/{sessionID} [delete]
func (c *EventController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("sessionID"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "sessionID must be an integer")
		return
	}
	detail, err := c.Service.DeleteSession(r.Context(), r.PathValue("code"), sessionID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// ShareLinksSuccessResponse wraps the share links payload.
type ShareLinksSuccessResponse struct {
	Data  *domain.ShareLinks `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GetShareLinks godoc
// @Summary Get the share URL and calendar links for an event
// @Tags share
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} controllers.ShareLinksSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/share [get]
func (c *EventController) GetShareLinks(w http.ResponseWriter, r *http.Request) {
	links, err := c.Service.ShareLinks(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, links)
}

// GetShareQR godoc
// @Summary Get a QR code image for the event's share URL
// @Tags share
// @Produce png
// @Param code path string true "Share code"
// @Success 200 {file} file "PNG image"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{code}/qr.png [get]
func (c *EventController) GetShareQR(w http.ResponseWriter, r *http.Request) {
	links, err := c.Service.ShareLinks(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	png, err := qrcode.Encode(links.URL, qrcode.Medium, 256)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// AgendaWindowResponse describes the calendar window clients must render.
type AgendaWindowResponse struct {
	Hours       []int `json:"hours"`
	DefaultHour int   `json:"defaultHour"`
}

// GetAgendaWindow godoc
// @Summary Get the agenda window definition
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains hours and defaultHour"
// @Router /api/agenda-window [get]
func (c *EventController) GetAgendaWindow(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, AgendaWindowResponse{
		Hours:       timeslot.WindowHours(),
		DefaultHour: timeslot.DefaultHour,
	})
}
