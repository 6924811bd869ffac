package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"quickagenda/internal/delivery/http/controllers"
	"quickagenda/internal/delivery/http/middleware"
)

// NewRouter initializes the HTTP router with all application routes.
// Public write endpoints (guest submissions, RSVPs, feedback) go through the
// per-IP rate limiter.
func NewRouter(
	eventController *controllers.EventController,
	formController *controllers.FormController,
	attendeeController *controllers.AttendeeController,
	feedbackController *controllers.FeedbackController,
	limiter *middleware.RateLimiter,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Events and sessions
	mux.HandleFunc("POST /api/events", eventController.CreateEvent)
	mux.HandleFunc("GET /api/events/{code}", eventController.GetEvent)
	mux.HandleFunc("PATCH /api/events/{code}", eventController.UpdateEvent)
	mux.HandleFunc("POST /api/events/{code}/sessions", eventController.AddSession)
	mux.HandleFunc("PATCH /api/events/{code}/sessions/{sessionID}", eventController.UpdateSession)
	mux.HandleFunc("DELETE /api/events/{code}/sessions/{sessionID}", eventController.DeleteSession)
	mux.HandleFunc("GET /api/agenda-window", eventController.GetAgendaWindow)

	// Sharing
	mux.HandleFunc("GET /api/events/{code}/share", eventController.GetShareLinks)
	mux.HandleFunc("GET /api/events/{code}/qr.png", eventController.GetShareQR)

	// Guest forms. The bare /form path is the guest-facing schema behind the
	// email gate; organizer CRUD and response listing live under /form/admin.
	mux.HandleFunc("GET /api/events/{code}/form/admin", formController.GetForm)
	mux.HandleFunc("PUT /api/events/{code}/form/admin", formController.UpsertForm)
	mux.HandleFunc("GET /api/events/{code}/form", formController.GetPublicForm)
	mux.HandleFunc("POST /api/events/{code}/form/submit", middleware.RateLimit(limiter, formController.SubmitResponse))
	mux.HandleFunc("GET /api/events/{code}/form/admin/responses", formController.ListResponses)

	// RSVPs
	mux.HandleFunc("PATCH /api/events/{code}/rsvp", middleware.RateLimit(limiter, attendeeController.SetRSVP))
	mux.HandleFunc("GET /api/events/{code}/attendees", attendeeController.ListAttendees)
	mux.HandleFunc("GET /api/events/{code}/attendees/summary", attendeeController.GetSummary)

	// Feedback
	mux.HandleFunc("POST /api/feedback", middleware.RateLimit(limiter, feedbackController.CreateFeedback))
	mux.HandleFunc("GET /api/feedback", feedbackController.ListFeedback)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
