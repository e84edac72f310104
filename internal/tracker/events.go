package tracker

import "tabtime/internal/model"

// Event is a closed set of inputs to the tracking state machine. Every
// variant is handled in Tracker.Handle.
type Event interface {
	event()
}

// TabActivated is sent when a tab becomes the active tab of its window.
type TabActivated struct {
	TabID TabID
}

// TabUpdated is sent when a tab's load state or URL changes.
type TabUpdated struct {
	TabID    TabID
	URL      string
	Complete bool
	Active   bool
}

// TabRemoved is sent when a tab is closed.
type TabRemoved struct {
	TabID TabID
}

// WindowFocusChanged is sent when window focus moves. WindowID is WindowNone
// when the browser lost focus entirely.
type WindowFocusChanged struct {
	WindowID int
}

// Resync asks the tracker to re-query the active tab and track it if possible.
type Resync struct{}

// UserDecision is an explicit answer to a clarification prompt.
type UserDecision struct {
	TabID        TabID
	IsProductive bool
	URL          string
	Title        string
}

// PromptHover reports the pointer entering or truly leaving a prompt.
type PromptHover struct {
	TabID   TabID
	Entered bool
}

// SettingsChanged applies a settings patch. Result, if set, receives the outcome.
type SettingsChanged struct {
	Patch  model.SettingsPatch
	Result chan<- SettingsResult
}

// SettingsResult is the reply to SettingsChanged.
type SettingsResult struct {
	Settings model.Settings
	Err      error
}

type periodicTick struct {
	generation uint64
}

type promptExpired struct {
	TabID      TabID
	generation uint64
}

type promptOpened struct {
	prompt OpenPrompt
}

func (TabActivated) event()       {}
func (TabUpdated) event()         {}
func (TabRemoved) event()         {}
func (WindowFocusChanged) event() {}
func (Resync) event()             {}
func (UserDecision) event()       {}
func (PromptHover) event()        {}
func (SettingsChanged) event()    {}
func (periodicTick) event()       {}
func (promptExpired) event()      {}
func (promptOpened) event()       {}
