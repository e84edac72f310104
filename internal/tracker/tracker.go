package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tabtime/internal/model"
)

// MinClassifiedDuration is the shortest visit that produces a final
// classification job when tracking stops.
const MinClassifiedDuration = 5 * time.Second

// Deps bundles the collaborators of a Tracker.
type Deps struct {
	Browser  Browser
	Page     Page
	Activity ActivityLog
	Settings SettingsStore
	Queue    *Queue
	Clock    Clock
	Sched    Scheduler
	IDs      IDGenerator
	Logger   Logger
}

// Tracker is the tab-activity state machine. It owns State; every mutation
// happens inside Handle, which is serialized by mu. Timer callbacks and
// transport readers only Post events.
type Tracker struct {
	browser  Browser
	page     Page
	activity ActivityLog
	settings SettingsStore
	queue    *Queue
	clock    Clock
	sched    Scheduler
	ids      IDGenerator
	logger   Logger

	inbox *fifo[Event]

	mu           sync.Mutex
	state        State
	ticker       Timer
	tickGen      uint64
	countdowns   map[TabID]countdown
	countdownGen uint64
}

// NewTracker creates an idle Tracker using the given initial settings.
func NewTracker(d Deps, initial model.Settings) *Tracker {
	if d.Clock == nil {
		d.Clock = RealClock{}
	}
	if d.Sched == nil {
		d.Sched = RealScheduler{}
	}
	if d.IDs == nil {
		d.IDs = UUIDGenerator{}
	}
	if d.Logger == nil {
		d.Logger = NewNopLogger()
	}
	return &Tracker{
		browser:    d.Browser,
		page:       d.Page,
		activity:   d.Activity,
		settings:   d.Settings,
		queue:      d.Queue,
		clock:      d.Clock,
		sched:      d.Sched,
		ids:        d.IDs,
		logger:     d.Logger,
		inbox:      newFIFO[Event](),
		state:      State{Settings: initial, Prompts: make(map[TabID]OpenPrompt)},
		countdowns: make(map[TabID]countdown),
	}
}

// Post enqueues an event for the event loop. It never blocks.
func (t *Tracker) Post(ev Event) {
	t.inbox.push(ev)
}

// Run handles posted events in order until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		t.Pump(ctx)
		select {
		case <-ctx.Done():
			t.shutdown()
			return ctx.Err()
		case <-t.inbox.signal:
		}
	}
}

// Pump handles every event currently posted and returns how many it handled.
func (t *Tracker) Pump(ctx context.Context) int {
	n := 0
	for {
		ev, ok := t.inbox.pop()
		if !ok {
			return n
		}
		t.Handle(ctx, ev)
		n++
	}
}

// UpdateSettings posts a settings change and waits for the event loop to apply it.
func (t *Tracker) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	result := make(chan SettingsResult, 1)
	t.Post(SettingsChanged{Patch: patch, Result: result})
	select {
	case <-ctx.Done():
		return model.Settings{}, ctx.Err()
	case r := <-result:
		return r.Settings, r.Err
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// Settings returns the settings currently in effect.
func (t *Tracker) Settings() model.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Settings
}

// Pending returns the cached decision for (tab, url) if it is still valid:
// the tab is the tracked tab and the URL is the one the decision was made for.
func (t *Tracker) Pending(tab TabID, url string) (model.Judgment, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pendingLocked(tab, url)
}

func (t *Tracker) pendingLocked(tab TabID, url string) (model.Judgment, bool) {
	p, s := t.state.Pending, t.state.Session
	if p == nil || s == nil || s.TabID != tab || p.TabID != tab || p.URL != url {
		return model.Judgment{}, false
	}
	return p.Decision, true
}

// OpenPrompt records a clarification shown on a tab and arms its countdown.
func (t *Tracker) OpenPrompt(ctx context.Context, p OpenPrompt) {
	t.Handle(ctx, promptOpened{prompt: p})
}

// Handle applies one event. It is the only place State changes.
func (t *Tracker) Handle(ctx context.Context, ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case TabActivated:
		t.state.CurrentTab, t.state.HasCurrentTab = e.TabID, true
		t.startTracking(ctx, e.TabID)
	case TabUpdated:
		t.tabUpdated(ctx, e)
	case TabRemoved:
		t.tabRemoved(e.TabID)
	case WindowFocusChanged:
		if e.WindowID == WindowNone {
			t.logger.Debug("window lost focus")
			t.stopTracking("window blur", true)
			return
		}
		t.resync(ctx)
	case Resync:
		t.resync(ctx)
	case UserDecision:
		decision := model.Judgment{IsProductive: e.IsProductive, Confidence: 1.0, Reason: UserReason}
		t.resolvePrompt(ctx, e.TabID, decision, e.URL, e.Title)
	case PromptHover:
		t.promptHover(e)
	case SettingsChanged:
		t.applySettings(ctx, e)
	case periodicTick:
		t.tick(ctx, e.generation)
	case promptExpired:
		t.promptExpired(ctx, e)
	case promptOpened:
		t.promptOpened(e.prompt)
	default:
		t.logger.Warn("unhandled tracker event", "type", fmt.Sprintf("%T", ev))
	}
}

// startTracking moves Idle -> Tracking(tab), refreshes an existing session
// for the same tab, or switches sessions for a different tab.
func (t *Tracker) startTracking(ctx context.Context, tab TabID) {
	if t.state.Settings.IsPaused {
		t.logger.Debug("tracking paused, not starting", "tab", tab)
		return
	}

	active, err := t.browser.ActiveTab(ctx)
	if err != nil {
		t.logger.Debug("active tab query failed", "tab", tab, "error", err)
		return
	}
	if active.ID != tab || !active.WindowFocused {
		t.logger.Debug("tab is not the active tab of a focused window", "tab", tab, "active", active.ID)
		return
	}

	now := t.clock.Now()
	if s := t.state.Session; s != nil && s.TabID == tab {
		t.state.Session = &TrackingSession{
			ID:             s.ID,
			TabID:          s.TabID,
			StartTime:      s.StartTime,
			LastActiveTime: later(s.LastActiveTime, now),
		}
		return
	}

	if t.state.Session != nil {
		t.stopTracking("tab switch", true)
	}
	if p := t.state.Pending; p != nil && p.TabID != tab {
		t.state.Pending = nil
	}

	if err := t.page.Activated(ctx, tab); err != nil {
		t.logger.Warn("notifying page of activation failed", "tab", tab, "error", err)
	}
	t.cancelCountdown(tab)
	delete(t.state.Prompts, tab)

	now = t.clock.Now()
	t.state.Session = &TrackingSession{
		ID:             t.ids.New(),
		TabID:          tab,
		StartTime:      now,
		LastActiveTime: now,
	}
	t.armTicker()
	t.logger.Info("started tracking", "tab", tab, "session", t.state.Session.ID)
}

// stopTracking moves Tracking -> Idle. When activeUntilNow is set the session
// counts as active up to this instant; otherwise the last observed activity
// bounds it.
func (t *Tracker) stopTracking(reason string, activeUntilNow bool) {
	s := t.state.Session
	if s == nil {
		return
	}
	t.disarmTicker()

	last := s.LastActiveTime
	now := t.clock.Now()
	if activeUntilNow {
		last = later(last, now)
	}
	ended := TrackingSession{ID: s.ID, TabID: s.TabID, StartTime: s.StartTime, LastActiveTime: last}
	elapsed := ended.Elapsed()

	if elapsed >= MinClassifiedDuration {
		t.queue.Enqueue(Job{TabID: s.TabID, Duration: elapsed, EnqueuedAt: now})
	}

	t.state.Pending = nil
	t.state.Session = nil
	t.logger.Info("stopped tracking", "tab", s.TabID, "session", s.ID, "reason", reason,
		"duration_s", int64(elapsed.Round(time.Second)/time.Second))
}

func (t *Tracker) tabUpdated(ctx context.Context, e TabUpdated) {
	if p := t.state.Pending; p != nil && p.TabID == e.TabID && e.URL != "" && p.URL != e.URL {
		t.logger.Debug("tracked tab navigated, clearing cached decision", "tab", e.TabID)
		t.state.Pending = nil
	}
	if e.Complete && e.Active {
		t.state.CurrentTab, t.state.HasCurrentTab = e.TabID, true
		t.startTracking(ctx, e.TabID)
	}
}

func (t *Tracker) tabRemoved(tab TabID) {
	if t.state.HasCurrentTab && t.state.CurrentTab == tab {
		t.state.HasCurrentTab = false
	}
	t.cancelCountdown(tab)
	delete(t.state.Prompts, tab)
	if s := t.state.Session; s != nil && s.TabID == tab {
		t.stopTracking("tab closed", true)
	}
}

func (t *Tracker) resync(ctx context.Context) {
	active, err := t.browser.ActiveTab(ctx)
	if err != nil {
		t.logger.Debug("active tab query failed", "error", err)
		return
	}
	t.state.CurrentTab, t.state.HasCurrentTab = active.ID, true
	t.startTracking(ctx, active.ID)
}

// tick is the periodic check: it verifies the tracked tab is still active in
// a focused window and enqueues a job with the cumulative duration.
func (t *Tracker) tick(ctx context.Context, generation uint64) {
	s := t.state.Session
	if s == nil || generation != t.tickGen {
		return
	}

	active, err := t.browser.ActiveTab(ctx)
	if err != nil || active.ID != s.TabID || !active.WindowFocused {
		t.stopTracking("no longer active", false)
		return
	}

	now := t.clock.Now()
	refreshed := &TrackingSession{
		ID:             s.ID,
		TabID:          s.TabID,
		StartTime:      s.StartTime,
		LastActiveTime: later(s.LastActiveTime, now),
	}
	t.state.Session = refreshed
	elapsed := refreshed.Elapsed()
	t.logger.Debug("periodic check", "tab", s.TabID, "duration_s", int64(elapsed/time.Second))
	t.queue.Enqueue(Job{TabID: s.TabID, Duration: elapsed, EnqueuedAt: now})
}

func (t *Tracker) applySettings(ctx context.Context, e SettingsChanged) {
	old := t.state.Settings
	updated, err := t.settings.Save(ctx, e.Patch)
	if e.Result != nil {
		defer func() { e.Result <- SettingsResult{Settings: updated, Err: err} }()
	}
	if err != nil {
		t.logger.Warn("settings update rejected", "error", err)
		return
	}
	t.state.Settings = updated

	switch {
	case !old.IsPaused && updated.IsPaused:
		t.logger.Info("tracking paused")
		t.stopTracking("paused", true)
	case old.IsPaused && !updated.IsPaused:
		t.logger.Info("tracking resumed")
		if t.state.HasCurrentTab {
			t.startTracking(ctx, t.state.CurrentTab)
		}
	case old.CheckIntervalSeconds != updated.CheckIntervalSeconds && t.state.Session != nil:
		t.logger.Info("check interval changed", "seconds", updated.CheckIntervalSeconds)
		t.armTicker()
	}
}

func (t *Tracker) armTicker() {
	t.disarmTicker()
	t.tickGen++
	gen := t.tickGen
	t.ticker = t.sched.Every(t.state.Settings.CheckInterval(), func() {
		t.Post(periodicTick{generation: gen})
	})
}

func (t *Tracker) disarmTicker() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
	t.tickGen++
}

func (t *Tracker) shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarmTicker()
	for tab := range t.countdowns {
		t.cancelCountdown(tab)
	}
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
