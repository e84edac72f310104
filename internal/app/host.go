package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"tabtime/internal/nativemsg"
	"tabtime/internal/provider"
	"tabtime/internal/tracker"
)

// hostOptions lets tests shorten timers and inject fakes.
type hostOptions struct {
	ids        tracker.IDGenerator
	sched      tracker.Scheduler
	classifier tracker.Classifier
	msgOpts    []nativemsg.Option
}

// RunHost serves the native messaging protocol on r/w until the extension
// disconnects or ctx is cancelled. A clean disconnect returns nil.
func (a *App) RunHost(ctx context.Context, r io.Reader, w io.Writer) error {
	return a.runHost(ctx, r, w, hostOptions{})
}

func (a *App) runHost(ctx context.Context, r io.Reader, w io.Writer, o hostOptions) error {
	initial, err := a.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if o.ids == nil {
		o.ids = tracker.UUIDGenerator{}
	}
	if o.classifier == nil {
		o.classifier = provider.New(a.settings, provider.OptionsFromConfig(a.cfg.Provider))
	}

	host := nativemsg.NewHost(r, w, o.ids, a.log, o.msgOpts...)
	queue := tracker.NewQueue(a.log)
	trk := tracker.NewTracker(tracker.Deps{
		Browser:  host,
		Page:     host,
		Activity: a.activity,
		Settings: a.settings,
		Queue:    queue,
		Clock:    a.clock,
		Sched:    o.sched,
		IDs:      o.ids,
		Logger:   a.log,
	}, initial)
	rec := tracker.NewReconciler(trk, host, host, o.classifier, a.activity, a.filter, a.clock, a.log)

	a.setRunning(trk)
	defer a.setRunning(nil)

	a.logger.Info("host started", "paused", initial.IsPaused, "interval_s", initial.CheckIntervalSeconds)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The reader is not part of the group: a blocked stdin read must not
	// keep the host alive after ctx is cancelled.
	served := make(chan error, 1)
	go func() {
		defer cancel()
		served <- host.Serve(ctx, trk, a)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return trk.Run(gctx) })
	g.Go(func() error { return queue.Run(gctx, rec) })
	g.Go(func() error {
		a.startup(gctx, host, trk)
		return nil
	})

	err = g.Wait()
	select {
	case serr := <-served:
		if serr != nil && !errors.Is(serr, context.Canceled) {
			err = serr
		}
	default:
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		a.Fail()
		a.logger.Error("host stopped", "error", err)
		return err
	}
	a.logger.Info("host stopped", "pending_jobs", queue.Len())
	return nil
}

// startup shows the one-time missing key notice and starts tracking
// whatever tab is active.
func (a *App) startup(ctx context.Context, n tracker.Notifier, t *tracker.Tracker) {
	has, err := a.settings.HasAPIKey(ctx)
	if err != nil {
		a.logger.Warn("checking api key failed", "error", err)
	}
	if err == nil && !has {
		a.logger.Warn("no api key configured, classification will fail until one is set")
		if err := n.MissingCredential(ctx); err != nil {
			a.logger.Warn("sending api key prompt failed", "error", err)
		}
	}
	t.Post(tracker.Resync{})
}
