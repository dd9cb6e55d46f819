// Package watch periodically refreshes the client state and publishes it as metrics.
package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eventdesk/eventdesk/internal/client"
	"github.com/eventdesk/eventdesk/internal/metrics"
	"github.com/eventdesk/eventdesk/internal/state"
	"github.com/eventdesk/eventdesk/internal/stats"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSchedule refreshes every 30 seconds.
const DefaultSchedule = "@every 30s"

// ErrNotConnected is reported when the health probe fails and no reload is attempted.
var ErrNotConnected = errors.New("server not reachable")

// Prober checks that the API is reachable.
type Prober interface {
	TestConnection(ctx context.Context) client.ConnectionResult
}

// SnapshotSaver persists a loaded snapshot.
type SnapshotSaver interface {
	Save(ctx context.Context, snap state.Snapshot) error
}

// Config holds refresher settings.
type Config struct {
	// Schedule is a cron expression or descriptor such as "@every 1m".
	Schedule string
}

// Deps are the collaborators of a Refresher. Snapshots and Metrics may be nil.
type Deps struct {
	Prober    Prober
	Loader    *state.Loader
	Store     *state.Store
	Snapshots SnapshotSaver
	Metrics   *metrics.Metrics
}

// Result is the outcome of one refresh.
type Result struct {
	Connected bool
	Stats     stats.Stats
	Err       error
}

// Refresher reloads the state on a cron schedule.
type Refresher struct {
	config Config
	deps   Deps
	cron   *cron.Cron
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
	entry   cron.EntryID
	ctx     context.Context

	// refreshing is held for the whole of a refresh.
	refreshing sync.Mutex
}

// New creates a Refresher. Overlapping runs are skipped.
func New(config Config, deps Deps, logger zerolog.Logger) *Refresher {
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	logger = logger.With().Str("component", "refresher").Logger()
	cl := cronLogger{logger: logger}
	return &Refresher{
		config: config,
		deps:   deps,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the schedule and starts the cron runner. Scheduled
// refreshes run under ctx.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	if r.entry == 0 {
		id, err := r.cron.AddFunc(r.config.Schedule, r.scheduledRefresh)
		if err != nil {
			return err
		}
		r.entry = id
	}

	r.ctx = ctx
	r.running = true
	r.cron.Start()
	r.logger.Info().Str("schedule", r.config.Schedule).Msg("refresher started")
	return nil
}

// Stop stops the scheduler. The returned context is done when running refreshes finish.
func (r *Refresher) Stop() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	r.running = false
	r.logger.Info().Msg("stopping refresher")
	return r.cron.Stop()
}

func (r *Refresher) runContext() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx
}

// scheduledRefresh is the cron job. A tick that finds a refresh in
// progress is skipped.
func (r *Refresher) scheduledRefresh() {
	if !r.refreshing.TryLock() {
		r.logger.Debug().Msg("refresh in progress, skipping tick")
		return
	}
	defer r.refreshing.Unlock()
	r.refresh(r.runContext())
}

// RefreshNow probes the server, reloads both collections, publishes the
// counters and saves a snapshot when everything loaded. It waits for a
// scheduled refresh in progress to finish first.
func (r *Refresher) RefreshNow(ctx context.Context) Result {
	r.refreshing.Lock()
	defer r.refreshing.Unlock()
	return r.refresh(ctx)
}

func (r *Refresher) refresh(ctx context.Context) Result {
	probe := r.deps.Prober.TestConnection(ctx)
	if r.deps.Metrics != nil {
		r.deps.Metrics.SetProbe(probe.Connected, probe.Duration)
	}
	if !probe.Connected {
		err := ErrNotConnected
		if probe.Error != nil {
			err = errors.Join(ErrNotConnected, probe.Error)
		}
		r.logger.Warn().Err(err).Dur("duration", probe.Duration).Msg("skipping refresh")
		return Result{Err: err}
	}

	loadErr := r.deps.Loader.Load(ctx)
	now := r.now()
	snap := r.deps.Store.Snapshot()
	counters := snap.Stats(now)

	if r.deps.Metrics != nil {
		r.deps.Metrics.SetDashboard(counters)
	}
	if loadErr != nil {
		r.logger.Warn().Err(loadErr).Msg("partial refresh")
		return Result{Connected: true, Stats: counters, Err: loadErr}
	}

	if r.deps.Metrics != nil {
		r.deps.Metrics.MarkRefreshed(now)
	}
	if r.deps.Snapshots != nil {
		if err := r.deps.Snapshots.Save(ctx, snap); err != nil {
			r.logger.Error().Err(err).Msg("save snapshot failed")
			return Result{Connected: true, Stats: counters, Err: err}
		}
	}

	r.logger.Info().
		Int("events", counters.TotalEvents).
		Int("participants", counters.TotalParticipants).
		Int("upcoming", counters.UpcomingEvents).
		Msg("state refreshed")
	return Result{Connected: true, Stats: counters}
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
