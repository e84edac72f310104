package main

import (
	"strings"
	"testing"
	"time"

	"tabtime/internal/activity"
)

func TestRenderSummary(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := renderSummary(activity.Summary{}); !strings.Contains(got, "No activity") {
			t.Errorf("renderSummary() = %q", got)
		}
	})

	t.Run("totals and domains", func(t *testing.T) {
		s := activity.Summary{
			Entries:         3,
			ProductiveCount: 2,
			WastedCount:     1,
			Productive:      90 * time.Second,
			Wasted:          30 * time.Second,
			TopDomains: []activity.DomainTotal{
				{Domain: "go.dev", Productive: 90 * time.Second},
				{Domain: "video.example.com", Wasted: 30 * time.Second},
			},
		}
		got := renderSummary(s)
		for _, want := range []string{"75% productive", "1m 30s", "go.dev", "video.example.com", "30s"} {
			if !strings.Contains(got, want) {
				t.Errorf("renderSummary() missing %q in:\n%s", want, got)
			}
		}
	})
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := confirm(strings.NewReader(tt.input), ""); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
