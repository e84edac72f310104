package nativemsg

import (
	"encoding/json"
	"reflect"
	"testing"

	"tabtime/internal/tracker"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		want Inbound
	}{
		{
			name: "tab activated",
			env:  Envelope{Type: TypeTabActivated, Data: json.RawMessage(`{"tabId":7}`)},
			want: EventMessage{Event: tracker.TabActivated{TabID: 7}},
		},
		{
			name: "tab updated complete",
			env:  Envelope{Type: TypeTabUpdated, Data: json.RawMessage(`{"tabId":7,"url":"https://a.com","status":"complete","active":true}`)},
			want: EventMessage{Event: tracker.TabUpdated{TabID: 7, URL: "https://a.com", Complete: true, Active: true}},
		},
		{
			name: "tab updated loading",
			env:  Envelope{Type: TypeTabUpdated, Data: json.RawMessage(`{"tabId":7,"status":"loading"}`)},
			want: EventMessage{Event: tracker.TabUpdated{TabID: 7}},
		},
		{
			name: "tab removed",
			env:  Envelope{Type: TypeTabRemoved, Data: json.RawMessage(`{"tabId":3}`)},
			want: EventMessage{Event: tracker.TabRemoved{TabID: 3}},
		},
		{
			name: "window blur",
			env:  Envelope{Type: TypeWindowFocusChanged, Data: json.RawMessage(`{"windowId":-1}`)},
			want: EventMessage{Event: tracker.WindowFocusChanged{WindowID: tracker.WindowNone}},
		},
		{
			name: "user clarification",
			env:  Envelope{Type: TypeUserClarification, Data: json.RawMessage(`{"tabId":7,"isProductive":true,"url":"u","title":"t"}`)},
			want: EventMessage{Event: tracker.UserDecision{TabID: 7, IsProductive: true, URL: "u", Title: "t"}},
		},
		{
			name: "prompt hover",
			env:  Envelope{Type: TypePromptHover, Data: json.RawMessage(`{"tabId":7,"entered":true}`)},
			want: EventMessage{Event: tracker.PromptHover{TabID: 7, Entered: true}},
		},
		{
			name: "user clarification without page data",
			env:  Envelope{Type: TypeUserClarification, Data: json.RawMessage(`{"tabId":7,"isProductive":false}`)},
			want: EventMessage{Event: tracker.UserDecision{TabID: 7}},
		},
		{
			name: "get stats",
			env:  Envelope{Type: TypeGetStats, ID: "r1"},
			want: DashboardRequest{ID: "r1", Type: TypeGetStats},
		},
		{
			name: "response",
			env:  Envelope{Type: TypeResponse, ReplyTo: "h1", Data: json.RawMessage(`{"text":"hi"}`)},
			want: Response{ReplyTo: "h1", Data: json.RawMessage(`{"text":"hi"}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.env)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecode_UpdateSettings(t *testing.T) {
	got, err := Decode(Envelope{
		Type: TypeUpdateSettings,
		ID:   "r2",
		Data: json.RawMessage(`{"settings":{"checkInterval":60,"isPaused":true}}`),
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	req, ok := got.(DashboardRequest)
	if !ok {
		t.Fatalf("Decode() = %T, want DashboardRequest", got)
	}
	p := req.Patch
	if p.CheckIntervalSeconds == nil || *p.CheckIntervalSeconds != 60 {
		t.Errorf("CheckIntervalSeconds = %v, want 60", p.CheckIntervalSeconds)
	}
	if p.IsPaused == nil || !*p.IsPaused {
		t.Errorf("IsPaused = %v, want true", p.IsPaused)
	}
	if p.APIKey != nil {
		t.Errorf("APIKey = %q, want unset", *p.APIKey)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{name: "unknown type", env: Envelope{Type: "SELF_DESTRUCT"}},
		{name: "missing data", env: Envelope{Type: TypeTabActivated}},
		{name: "bad data", env: Envelope{Type: TypeTabRemoved, Data: json.RawMessage(`{"tabId":"x"}`)}},
		{name: "response without replyTo", env: Envelope{Type: TypeResponse}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.env); err == nil {
				t.Error("Decode() expected error")
			}
		})
	}
}
