package tracker

import (
	"time"

	"tabtime/internal/model"
)

// TrackingSession is the bounded interval of continuous tracking of one tab.
type TrackingSession struct {
	ID             string
	TabID          TabID
	StartTime      time.Time
	LastActiveTime time.Time
}

// Elapsed returns LastActiveTime - StartTime, never negative.
func (s TrackingSession) Elapsed() time.Duration {
	d := s.LastActiveTime.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// PendingDecision caches the latest resolved decision for the tracked tab's
// current URL so later jobs in the same visit skip the classifier.
type PendingDecision struct {
	TabID    TabID
	URL      string
	Decision model.Judgment
}

// OpenPrompt is an outstanding clarification shown on a tab.
type OpenPrompt struct {
	TabID      TabID
	URL        string
	Title      string
	Suggestion model.Judgment
	// Duration accompanied the judgment when it was dispatched.
	Duration time.Duration
	ShownAt  time.Time
}

// State is everything the tracker owns. Session and Pending are replaced
// wholesale on every change, never updated in place.
type State struct {
	Session       *TrackingSession
	Pending       *PendingDecision
	CurrentTab    TabID
	HasCurrentTab bool
	Settings      model.Settings
	Prompts       map[TabID]OpenPrompt
}

// Tracking reports whether a session is active.
func (s State) Tracking() bool { return s.Session != nil }

func (s State) clone() State {
	out := s
	if s.Session != nil {
		sess := *s.Session
		out.Session = &sess
	}
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	out.Prompts = make(map[TabID]OpenPrompt, len(s.Prompts))
	for k, v := range s.Prompts {
		out.Prompts[k] = v
	}
	return out
}
