package tracker_test

import (
	"context"
	"testing"
	"time"

	"tabtime/internal/activity"
	"tabtime/internal/model"
	"tabtime/internal/testutil"
	"tabtime/internal/tracker"
	"tabtime/internal/urlfilter"
)

// env wires a Tracker, Queue and Reconciler over in-memory fakes. Events are
// handled synchronously: post pumps the inbox, drain runs the worker.
type env struct {
	t          *testing.T
	ctx        context.Context
	clock      *testutil.StubClock
	sched      *testutil.FakeScheduler
	browser    *testutil.FakeBrowser
	page       *testutil.FakePage
	classifier *testutil.FakeClassifier
	log        *activity.Log
	logger     *testutil.RecordingLogger
	queue      *tracker.Queue
	tracker    *tracker.Tracker
	reconciler *tracker.Reconciler
}

func newEnv(t *testing.T, s model.Settings) *env {
	t.Helper()

	st := testutil.NewTestStore()
	e := &env{
		t:          t,
		ctx:        context.Background(),
		clock:      testutil.FixedClock(),
		sched:      testutil.NewFakeScheduler(),
		browser:    testutil.NewFakeBrowser(),
		page:       testutil.NewFakePage(),
		classifier: testutil.NewFakeClassifier(model.Judgment{IsProductive: true, Confidence: 0.9, Reason: "documentation"}),
		log:        testutil.NewTestActivityLog(st),
		logger:     testutil.NewRecordingLogger(),
		queue:      tracker.NewQueue(nil),
	}
	e.tracker = tracker.NewTracker(tracker.Deps{
		Browser:  e.browser,
		Page:     e.page,
		Activity: e.log,
		Settings: testutil.NewTestSettings(t, st, s),
		Queue:    e.queue,
		Clock:    e.clock,
		Sched:    e.sched,
		IDs:      testutil.NewPrefixedIDGenerator("session"),
		Logger:   e.logger,
	}, s)
	e.reconciler = tracker.NewReconciler(e.tracker, e.browser, e.page, e.classifier, e.log, urlfilter.New(nil), e.clock, e.logger)
	return e
}

func (e *env) post(ev tracker.Event) {
	e.tracker.Post(ev)
	e.tracker.Pump(e.ctx)
}

// open adds a tab to the browser, makes it active and tells the tracker.
func (e *env) open(id tracker.TabID, url, title string) {
	e.browser.OpenTab(id, url, title)
	e.browser.Activate(id)
	e.post(tracker.TabActivated{TabID: id})
}

func (e *env) tick() {
	e.sched.FireTicks()
	e.tracker.Pump(e.ctx)
}

func (e *env) expire() {
	e.sched.FireOneShots()
	e.tracker.Pump(e.ctx)
}

func (e *env) drain() int {
	n := e.queue.Drain(e.ctx, e.reconciler)
	e.tracker.Pump(e.ctx)
	return n
}

func (e *env) apply(p model.SettingsPatch) (model.Settings, error) {
	res := make(chan tracker.SettingsResult, 1)
	e.post(tracker.SettingsChanged{Patch: p, Result: res})
	r := <-res
	return r.Settings, r.Err
}

func (e *env) records() []model.ActivityRecord {
	e.t.Helper()
	recs, err := e.log.List(e.ctx)
	if err != nil {
		e.t.Fatalf("List() error = %v", err)
	}
	return recs
}

func (e *env) session() *tracker.TrackingSession {
	return e.tracker.Snapshot().Session
}

func ptr[T any](v T) *T { return &v }

func millis(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }
