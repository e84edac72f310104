package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"tabtime/internal/activity"
	"tabtime/internal/config"
	"tabtime/internal/encryption"
	"tabtime/internal/settings"
	"tabtime/internal/store"
	"tabtime/internal/tracker"
	"tabtime/internal/urlfilter"
)

// App is the application layer between the CLI and the tracker.
// It constructs all dependencies from config, exposes the dashboard
// operations, runs the native messaging host, and releases the store on Close.
type App struct {
	cfg      *config.Config
	store    store.Store
	settings *settings.Adapter
	activity *activity.Log
	filter   *urlfilter.Filter
	logger   *slog.Logger
	log      tracker.Logger
	clock    tracker.Clock
	op       *Operation
	logFile  *os.File

	// running is the live tracker while RunHost is serving.
	mu      sync.Mutex
	running *tracker.Tracker
}

// New creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "host", "export").
// The caller must call Close when done.
func New(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}
	if err := sealer.Setup(); err != nil {
		return nil, fmt.Errorf("setting up sealer: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir, cfg.HostID, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	s, err := store.NewStoreFromConfig(ctx, cfg.Store, cfg.HostID)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	a := newApp(cfg, s, sealer, logger, tracker.RealClock{}, operation)
	a.logFile = logFile
	return a, nil
}

func newApp(cfg *config.Config, s store.Store, sealer encryption.Sealer, logger *slog.Logger, clock tracker.Clock, operation string) *App {
	a := &App{
		cfg:      cfg,
		store:    s,
		settings: settings.NewAdapter(s, sealer),
		activity: activity.NewLog(s),
		filter:   urlfilter.New(cfg.Tracking.Ignore),
		logger:   logger,
		log:      &slogAdapter{l: logger},
		clock:    clock,
		op:       NewOperation(operation, clock.Now()),
	}
	a.logger.Debug("starting operation", "operation", operation, "store", cfg.Store.Type)
	return a
}

// Close logs the outcome of the operation and closes all resources.
func (a *App) Close() error {
	a.logger.Debug("finished operation", "operation", a.op.Name, "status", a.op.Status,
		"elapsed", a.op.Elapsed(a.clock.Now()))

	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// Fail marks the current operation as failed for the closing log line.
func (a *App) Fail() {
	a.op.Fail()
}

func (a *App) setRunning(t *tracker.Tracker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = t
}

func (a *App) tracker() *tracker.Tracker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
