package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"quickagenda/config"
	_ "quickagenda/docs"
	delivery "quickagenda/internal/delivery/http"
	"quickagenda/internal/delivery/http/controllers"
	"quickagenda/internal/delivery/http/middleware"
	"quickagenda/internal/repository/postgres"
	"quickagenda/internal/services"
	"quickagenda/internal/stats"
)

const serviceTimeout = 5 * time.Second

// @title Quickagenda API
// @version 1.0
// @description Shareable single-day event agendas with guest forms, RSVPs and calendar export. Events are addressed by share code only; there are no accounts.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("pinging database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")

	// repositories
	eventRepo := postgres.NewEventRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	formRepo := postgres.NewFormRepository(db)
	responseRepo := postgres.NewFormResponseRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	feedbackRepo := postgres.NewFeedbackRepository(db)

	// services
	eventSvc := services.NewEventService(eventRepo, sessionRepo, cfg.BaseURL, serviceTimeout)
	formSvc := services.NewFormService(eventRepo, formRepo, responseRepo, serviceTimeout)
	attendeeSvc := services.NewAttendeeService(eventRepo, attendeeRepo, serviceTimeout)
	feedbackSvc := services.NewFeedbackService(feedbackRepo, serviceTimeout)

	refresher := stats.NewRefresher(formRepo, responseRepo, attendeeRepo, logger, serviceTimeout)
	if err := refresher.Start(cfg.StatsRefreshSpec); err != nil {
		logger.Error("starting stats refresher", "error", err)
		os.Exit(1)
	}
	defer refresher.Stop()

	// controllers
	eventController := controllers.NewEventController(logger, eventSvc)
	formController := controllers.NewFormController(logger, formSvc)
	attendeeController := controllers.NewAttendeeController(logger, attendeeSvc, eventSvc, refresher)
	feedbackController := controllers.NewFeedbackController(logger, feedbackSvc)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()
	mux := delivery.NewRouter(eventController, formController, attendeeController, feedbackController, limiter)

	handler := middleware.RequestID(
		middleware.Logging(logger,
			middleware.CORS(cfg.AllowedOrigins, mux)))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
