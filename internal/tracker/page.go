package tracker

import (
	"context"

	"tabtime/internal/model"
)

// Clarification is what the page shows when asking the user to confirm a judgment.
type Clarification struct {
	Suggestion model.Judgment `json:"suggestion"`
	Metadata   model.Metadata `json:"metadata"`
}

// Page is the per-tab collaborator living in the web page.
type Page interface {
	// Activated tells the page its tab became the tracked tab so it can reset
	// local state and hide any stale prompt.
	Activated(ctx context.Context, tab TabID) error

	// ExtractSnippet returns the beginning of the page's visible text.
	ExtractSnippet(ctx context.Context, tab TabID) (string, error)

	// ShowClarification displays the confirm/override prompt.
	ShowClarification(ctx context.Context, tab TabID, c Clarification) error

	// HideClarification removes a prompt the host resolved on the user's behalf.
	HideClarification(ctx context.Context, tab TabID) error
}

// Notifier surfaces one-time notices to the user.
type Notifier interface {
	MissingCredential(ctx context.Context) error
}
