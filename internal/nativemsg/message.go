package nativemsg

import (
	"encoding/json"
	"fmt"

	"tabtime/internal/model"
	"tabtime/internal/tracker"
)

// Message types sent by the extension.
const (
	TypeTabActivated       = "TAB_ACTIVATED"
	TypeTabUpdated         = "TAB_UPDATED"
	TypeTabRemoved         = "TAB_REMOVED"
	TypeWindowFocusChanged = "WINDOW_FOCUS_CHANGED"
	TypeUserClarification  = "USER_CLARIFICATION"
	TypePromptHover        = "PROMPT_HOVER"
	TypeUpdateSettings     = "UPDATE_SETTINGS"
	TypeGetStats           = "GET_STATS"
	TypeGetSummary         = "GET_SUMMARY"
	TypeGetSettings        = "GET_SETTINGS"
	TypeCheckAPIKey        = "CHECK_API_KEY"
	TypeClearData          = "CLEAR_DATA"
	TypeResponse           = "RESPONSE"
)

// Message types sent by the host. TAB_ACTIVATED is also sent host to
// extension, addressed to the page of the newly tracked tab.
const (
	TypeQueryActiveTab    = "QUERY_ACTIVE_TAB"
	TypeGetTab            = "GET_TAB"
	TypeExtractSnippet    = "EXTRACT_SNIPPET"
	TypeShowClarification = "SHOW_CLARIFICATION"
	TypeHideClarification = "HIDE_CLARIFICATION"
	TypeShowAPIKeyPrompt  = "SHOW_API_KEY_PROMPT"
)

// ErrCodeTabNotFound is the error string the extension replies with when a
// tab no longer exists.
const ErrCodeTabNotFound = "TAB_NOT_FOUND"

// Envelope is the JSON object carried by every frame.
type Envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	ReplyTo string          `json:"replyTo,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Inbound is a decoded message from the extension. The set of variants is
// closed: EventMessage, DashboardRequest and Response.
type Inbound interface {
	inbound()
}

// EventMessage carries a browser or page event for the tracker.
type EventMessage struct {
	Event tracker.Event
}

// DashboardRequest asks the host for data and expects a RESPONSE with
// replyTo set to ID.
type DashboardRequest struct {
	ID    string
	Type  string
	Patch model.SettingsPatch // UPDATE_SETTINGS only
}

// Response answers a request the host sent.
type Response struct {
	ReplyTo string
	Data    json.RawMessage
	Error   string
}

func (EventMessage) inbound()     {}
func (DashboardRequest) inbound() {}
func (Response) inbound()         {}

type tabPayload struct {
	TabID tracker.TabID `json:"tabId"`
}

type tabUpdatedPayload struct {
	TabID  tracker.TabID `json:"tabId"`
	URL    string        `json:"url"`
	Status string        `json:"status"`
	Active bool          `json:"active"`
}

type windowPayload struct {
	WindowID int `json:"windowId"`
}

type clarificationPayload struct {
	TabID        tracker.TabID `json:"tabId"`
	IsProductive bool          `json:"isProductive"`
	URL          string        `json:"url"`
	Title        string        `json:"title"`
}

type hoverPayload struct {
	TabID   tracker.TabID `json:"tabId"`
	Entered bool          `json:"entered"`
}

type settingsPayload struct {
	Settings model.SettingsPatch `json:"settings"`
}

// Decode converts an envelope into its Inbound variant.
func Decode(env Envelope) (Inbound, error) {
	switch env.Type {
	case TypeTabActivated:
		var p tabPayload
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		return EventMessage{Event: tracker.TabActivated{TabID: p.TabID}}, nil
	case TypeTabUpdated:
		var p tabUpdatedPayload
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		return EventMessage{Event: tracker.TabUpdated{
			TabID:    p.TabID,
			URL:      p.URL,
			Complete: p.Status == "complete",
			Active:   p.Active,
		}}, nil
	case TypeTabRemoved:
		var p tabPayload
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		return EventMessage{Event: tracker.TabRemoved{TabID: p.TabID}}, nil
	case TypeWindowFocusChanged:
		var p windowPayload
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		return EventMessage{Event: tracker.WindowFocusChanged{WindowID: p.WindowID}}, nil
	case TypeUserClarification:
		var p clarificationPayload
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		return EventMessage{Event: tracker.UserDecision{
			TabID:        p.TabID,
			IsProductive: p.IsProductive,
			URL:          p.URL,
			Title:        p.Title,
		}}, nil
	case TypePromptHover:
		var p hoverPayload
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		return EventMessage{Event: tracker.PromptHover{TabID: p.TabID, Entered: p.Entered}}, nil
	case TypeUpdateSettings:
		var p settingsPayload
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		return DashboardRequest{ID: env.ID, Type: env.Type, Patch: p.Settings}, nil
	case TypeGetStats, TypeGetSummary, TypeGetSettings, TypeCheckAPIKey, TypeClearData:
		return DashboardRequest{ID: env.ID, Type: env.Type}, nil
	case TypeResponse:
		if env.ReplyTo == "" {
			return nil, fmt.Errorf("RESPONSE without replyTo")
		}
		return Response{ReplyTo: env.ReplyTo, Data: env.Data, Error: env.Error}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}

func unmarshalData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%s: missing data", env.Type)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%s: decoding data: %w", env.Type, err)
	}
	return nil
}
