package tracker

import "errors"

var (
	// ErrTabGone is returned by a Browser when the requested tab no longer exists.
	ErrTabGone = errors.New("tab no longer exists")

	// ErrNoActiveTab is returned by a Browser when no window has an active tab.
	ErrNoActiveTab = errors.New("no active tab")
)
