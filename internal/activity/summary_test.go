package activity

import (
	"fmt"
	"testing"
	"time"

	"tabtime/internal/model"
)

func TestSummarize(t *testing.T) {
	records := []model.ActivityRecord{
		record("https://github.com/x", true, 10*time.Minute),
		record("https://github.com/y", true, 5*time.Minute),
		record("https://news.ycombinator.com/", false, 3*time.Minute),
		record("https://github.com/z", false, time.Minute),
		record("::not a url", false, time.Minute),
	}

	s := Summarize(records)

	if s.Entries != 5 {
		t.Errorf("Entries = %d, want 5", s.Entries)
	}
	if s.ProductiveCount != 2 || s.WastedCount != 3 {
		t.Errorf("counts = %d/%d, want 2/3", s.ProductiveCount, s.WastedCount)
	}
	if s.Productive != 15*time.Minute {
		t.Errorf("Productive = %v, want 15m", s.Productive)
	}
	if s.Wasted != 5*time.Minute {
		t.Errorf("Wasted = %v, want 5m", s.Wasted)
	}
	if len(s.TopDomains) != 2 {
		t.Fatalf("len(TopDomains) = %d, want 2", len(s.TopDomains))
	}
	gh := s.TopDomains[0]
	if gh.Domain != "github.com" || gh.Productive != 15*time.Minute || gh.Wasted != time.Minute {
		t.Errorf("TopDomains[0] = %+v", gh)
	}
	if s.ProductivePercent() != 75 {
		t.Errorf("ProductivePercent() = %d, want 75", s.ProductivePercent())
	}
}

func TestSummarize_TopFive(t *testing.T) {
	var records []model.ActivityRecord
	for i := 1; i <= 7; i++ {
		records = append(records, record(fmt.Sprintf("https://site%d.com", i), true, time.Duration(i)*time.Minute))
	}

	s := Summarize(records)
	if len(s.TopDomains) != TopDomainCount {
		t.Fatalf("len(TopDomains) = %d, want %d", len(s.TopDomains), TopDomainCount)
	}
	if s.TopDomains[0].Domain != "site7.com" {
		t.Errorf("TopDomains[0] = %q, want site7.com", s.TopDomains[0].Domain)
	}
	if s.TopDomains[4].Domain != "site3.com" {
		t.Errorf("TopDomains[4] = %q, want site3.com", s.TopDomains[4].Domain)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Entries != 0 || len(s.TopDomains) != 0 || s.ProductivePercent() != 0 {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{499 * time.Millisecond, "0s"},
		{500 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{59500 * time.Millisecond, "1m 0s"},
		{65 * time.Second, "1m 5s"},
		{2 * time.Hour, "120m 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
