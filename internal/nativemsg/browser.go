package nativemsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tabtime/internal/tracker"
)

// wireTab is a tab as reported by the extension.
type wireTab struct {
	ID            tracker.TabID `json:"id"`
	WindowID      int           `json:"windowId"`
	URL           string        `json:"url"`
	Title         string        `json:"title"`
	Active        bool          `json:"active"`
	WindowFocused bool          `json:"windowFocused"`
}

func (w wireTab) tab() tracker.Tab {
	return tracker.Tab{
		ID:            w.ID,
		WindowID:      w.WindowID,
		URL:           w.URL,
		Title:         w.Title,
		Active:        w.Active,
		WindowFocused: w.WindowFocused,
	}
}

type tabReply struct {
	Tab *wireTab `json:"tab"`
}

// ActiveTab asks for the active tab of the last focused window.
func (h *Host) ActiveTab(ctx context.Context) (tracker.Tab, error) {
	data, err := h.request(ctx, TypeQueryActiveTab, nil)
	if err != nil {
		return tracker.Tab{}, err
	}
	var r tabReply
	if err := json.Unmarshal(data, &r); err != nil {
		return tracker.Tab{}, fmt.Errorf("decoding %s reply: %w", TypeQueryActiveTab, err)
	}
	if r.Tab == nil {
		return tracker.Tab{}, tracker.ErrNoActiveTab
	}
	return r.Tab.tab(), nil
}

// Tab asks for the current state of one tab.
func (h *Host) Tab(ctx context.Context, id tracker.TabID) (tracker.Tab, error) {
	data, err := h.request(ctx, TypeGetTab, tabPayload{TabID: id})
	if err != nil {
		var re *RemoteError
		if errors.As(err, &re) && re.Message == ErrCodeTabNotFound {
			return tracker.Tab{}, fmt.Errorf("tab %d: %w", id, tracker.ErrTabGone)
		}
		return tracker.Tab{}, err
	}
	var r tabReply
	if err := json.Unmarshal(data, &r); err != nil {
		return tracker.Tab{}, fmt.Errorf("decoding %s reply: %w", TypeGetTab, err)
	}
	if r.Tab == nil {
		return tracker.Tab{}, fmt.Errorf("tab %d: %w", id, tracker.ErrTabGone)
	}
	return r.Tab.tab(), nil
}

// Activated tells the tab's page it became the tracked tab.
func (h *Host) Activated(ctx context.Context, tab tracker.TabID) error {
	_, err := h.request(ctx, TypeTabActivated, tabPayload{TabID: tab})
	return err
}

type snippetReply struct {
	Text string `json:"text"`
}

// ExtractSnippet asks the page for its visible text.
func (h *Host) ExtractSnippet(ctx context.Context, tab tracker.TabID) (string, error) {
	data, err := h.request(ctx, TypeExtractSnippet, tabPayload{TabID: tab})
	if err != nil {
		return "", err
	}
	var r snippetReply
	if err := json.Unmarshal(data, &r); err != nil {
		return "", fmt.Errorf("decoding %s reply: %w", TypeExtractSnippet, err)
	}
	return r.Text, nil
}

type clarificationRequest struct {
	TabID tracker.TabID `json:"tabId"`
	tracker.Clarification
}

// ShowClarification asks the page to display the confirm/override prompt.
func (h *Host) ShowClarification(ctx context.Context, tab tracker.TabID, c tracker.Clarification) error {
	_, err := h.request(ctx, TypeShowClarification, clarificationRequest{TabID: tab, Clarification: c})
	return err
}

// HideClarification asks the page to remove a prompt that timed out.
func (h *Host) HideClarification(ctx context.Context, tab tracker.TabID) error {
	_, err := h.request(ctx, TypeHideClarification, tabPayload{TabID: tab})
	return err
}

// MissingCredential asks the extension to prompt for an API key.
func (h *Host) MissingCredential(context.Context) error {
	return h.notify(TypeShowAPIKeyPrompt, nil)
}
