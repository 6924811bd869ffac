// Package stats maintains periodically refreshed attendance snapshots so the
// share page summary endpoint never fans out to count queries per request.
package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"quickagenda/internal/domain"
)

// Snapshot is one event's attendance tally at RefreshedAt.
type Snapshot struct {
	RSVP        domain.RSVPCounts `json:"rsvp"`
	Responses   int               `json:"responses"`
	RefreshedAt time.Time         `json:"refreshedAt"`
}

// Refresher caches per-event snapshots and refreshes them on a cron
// schedule. An event enters the refresh set the first time its summary is
// requested. Scheduled runs that catch a previous run still in flight are
// skipped rather than stacked.
type Refresher struct {
	formRepo     domain.FormRepository
	responseRepo domain.FormResponseRepository
	attendeeRepo domain.AttendeeRepository
	logger       *slog.Logger
	timeout      time.Duration

	mu        sync.RWMutex
	snapshots map[int64]Snapshot

	cron *cron.Cron
}

func NewRefresher(formRepo domain.FormRepository, responseRepo domain.FormResponseRepository, attendeeRepo domain.AttendeeRepository, logger *slog.Logger, timeout time.Duration) *Refresher {
	return &Refresher{
		formRepo:     formRepo,
		responseRepo: responseRepo,
		attendeeRepo: attendeeRepo,
		logger:       logger,
		timeout:      timeout,
		snapshots:    make(map[int64]Snapshot),
	}
}

// Start begins scheduled refreshes. spec is a cron expression, for example
// "@every 1m".
func (r *Refresher) Start(spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, r.RefreshAll); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop halts the schedule and waits for an in-flight refresh to finish.
func (r *Refresher) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// Summary returns the cached snapshot for the event, computing one
// synchronously on first request.
func (r *Refresher) Summary(ctx context.Context, eventID int64) (Snapshot, error) {
	r.mu.RLock()
	snap, ok := r.snapshots[eventID]
	r.mu.RUnlock()
	if ok {
		return snap, nil
	}
	return r.refresh(ctx, eventID)
}

// Invalidate forces the next summary request to recompute.
func (r *Refresher) Invalidate(eventID int64) {
	r.mu.Lock()
	delete(r.snapshots, eventID)
	r.mu.Unlock()
}

// RefreshAll recomputes every tracked snapshot.
func (r *Refresher) RefreshAll() {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.snapshots))
	for id := range r.snapshots {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if _, err := r.refresh(ctx, id); err != nil {
			r.logger.Error("stats refresh failed", "eventID", id, "error", err)
		}
		cancel()
	}
}

func (r *Refresher) refresh(ctx context.Context, eventID int64) (Snapshot, error) {
	counts, err := r.attendeeRepo.CountsByEventID(ctx, eventID)
	if err != nil {
		return Snapshot{}, err
	}

	responses := 0
	schema, err := r.formRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return Snapshot{}, err
	}
	if schema != nil {
		responses, err = r.responseRepo.CountByFormID(ctx, schema.ID)
		if err != nil {
			return Snapshot{}, err
		}
	}

	snap := Snapshot{RSVP: counts, Responses: responses, RefreshedAt: time.Now()}
	r.mu.Lock()
	r.snapshots[eventID] = snap
	r.mu.Unlock()
	return snap, nil
}
