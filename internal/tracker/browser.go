package tracker

import "context"

// TabID identifies a browser tab.
type TabID int

// WindowNone is the window ID reported when every browser window lost focus.
const WindowNone = -1

// Tab is a point-in-time view of a browser tab.
type Tab struct {
	ID            TabID
	WindowID      int
	URL           string
	Title         string
	Active        bool
	WindowFocused bool
}

// Browser answers tab queries. Implementations talk to the browser
// asynchronously; every call is a suspension point for the caller.
type Browser interface {
	// ActiveTab returns the active tab of the last focused window.
	// Returns ErrNoActiveTab when there is none.
	ActiveTab(ctx context.Context) (Tab, error)

	// Tab returns the current state of a tab. Returns ErrTabGone if it was closed.
	Tab(ctx context.Context, id TabID) (Tab, error)
}
