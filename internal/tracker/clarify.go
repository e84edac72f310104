package tracker

import (
	"context"
	"time"

	"tabtime/internal/model"
)

// AutoResponseDelay is how long a clarification prompt waits before
// accepting the suggested judgment on the user's behalf.
const AutoResponseDelay = 6 * time.Second

// Reasons recorded for clarified activity.
const (
	UserReason         = "Based on user response"
	AutoAcceptedPrefix = "Auto-accepted: "
)

type countdown struct {
	timer      Timer
	generation uint64
}

func (t *Tracker) armCountdown(tab TabID) {
	t.cancelCountdown(tab)
	t.countdownGen++
	gen := t.countdownGen
	timer := t.sched.AfterFunc(AutoResponseDelay, func() {
		t.Post(promptExpired{TabID: tab, generation: gen})
	})
	t.countdowns[tab] = countdown{timer: timer, generation: gen}
}

func (t *Tracker) cancelCountdown(tab TabID) {
	if c, ok := t.countdowns[tab]; ok {
		c.timer.Stop()
		delete(t.countdowns, tab)
	}
}

func (t *Tracker) promptOpened(p OpenPrompt) {
	if _, ok := t.pendingLocked(p.TabID, p.URL); ok {
		// Answered while the prompt was being shown.
		return
	}
	t.state.Prompts[p.TabID] = p
	t.armCountdown(p.TabID)
	t.logger.Info("clarification requested", "tab", p.TabID, "confidence", p.Suggestion.Confidence)
}

// promptHover pauses the countdown while the pointer is over the prompt and
// restarts it from the full delay when the pointer leaves.
func (t *Tracker) promptHover(e PromptHover) {
	if _, ok := t.state.Prompts[e.TabID]; !ok {
		return
	}
	if e.Entered {
		t.cancelCountdown(e.TabID)
		return
	}
	t.armCountdown(e.TabID)
}

func (t *Tracker) promptExpired(ctx context.Context, e promptExpired) {
	c, ok := t.countdowns[e.TabID]
	if !ok || c.generation != e.generation {
		return
	}
	delete(t.countdowns, e.TabID)

	p, ok := t.state.Prompts[e.TabID]
	if !ok {
		return
	}
	decision := model.Judgment{
		IsProductive: p.Suggestion.IsProductive,
		Confidence:   p.Suggestion.Confidence,
		Reason:       AutoAcceptedPrefix + p.Suggestion.Reason,
	}
	t.logger.Debug("clarification timed out, accepting suggestion", "tab", e.TabID)
	t.resolvePrompt(ctx, e.TabID, decision, p.URL, p.Title)
	if err := t.page.HideClarification(ctx, e.TabID); err != nil {
		t.logger.Warn("hiding expired clarification failed", "tab", e.TabID, "error", err)
	}
}

// resolvePrompt records a user (or auto-accepted) decision. The decision is
// cached for the tracked tab so later jobs skip the classifier, and the
// session restarts its duration window so the clarified interval is not
// counted twice. A decision with no open prompt is dropped when the tab
// already holds a cached decision for the page.
func (t *Tracker) resolvePrompt(ctx context.Context, tab TabID, decision model.Judgment, url, title string) {
	if t.state.Settings.IsPaused {
		t.logger.Info("tracking paused, ignoring clarification", "tab", tab)
		return
	}

	prompt, hadPrompt := t.state.Prompts[tab]
	if !hadPrompt && t.decidedLocked(tab, url) {
		t.logger.Info("clarification already resolved, ignoring late decision", "tab", tab)
		return
	}

	t.cancelCountdown(tab)
	delete(t.state.Prompts, tab)
	if url == "" && hadPrompt {
		url, title = prompt.URL, prompt.Title
	}

	now := t.clock.Now()
	s := t.state.Session
	tracking := s != nil && s.TabID == tab

	var d time.Duration
	switch {
	case tracking:
		d = now.Sub(s.StartTime)
		t.state.Pending = &PendingDecision{TabID: tab, URL: url, Decision: decision}
	case hadPrompt:
		d = prompt.Duration
	}

	rec := model.NewActivityRecord(decision, model.NewMetadata(url, title, d, now), true)
	if err := t.activity.Append(ctx, rec); err != nil {
		t.logger.Error("storing clarified activity failed", "tab", tab, "error", err)
	}
	t.logger.Info("clarification recorded", "tab", tab, "productive", decision.IsProductive,
		"duration_s", rec.Metadata.Duration/1000)

	if tracking {
		t.state.Session = &TrackingSession{ID: s.ID, TabID: tab, StartTime: now, LastActiveTime: now}
	}
}

// decidedLocked reports whether the tracked tab holds a cached decision for
// url. An empty url matches whatever page the tab is on.
func (t *Tracker) decidedLocked(tab TabID, url string) bool {
	p, s := t.state.Pending, t.state.Session
	if p == nil || s == nil || s.TabID != tab || p.TabID != tab {
		return false
	}
	return url == "" || p.URL == url
}
