package activity

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"tabtime/internal/model"
	"tabtime/internal/store"
)

func record(url string, productive bool, d time.Duration) model.ActivityRecord {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return model.NewActivityRecord(
		model.Judgment{IsProductive: productive, Confidence: 0.9, Reason: "r"},
		model.NewMetadata(url, "title", d, at),
		false,
	)
}

func TestLog_AppendList(t *testing.T) {
	ctx := context.Background()
	l := NewLog(store.NewMemoryStore())

	got, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("List() on empty store = %d records, want 0", len(got))
	}

	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	for _, u := range urls {
		if err := l.Append(ctx, record(u, true, time.Minute)); err != nil {
			t.Fatalf("Append(%s) error = %v", u, err)
		}
	}

	got, err = l.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != len(urls) {
		t.Fatalf("List() = %d records, want %d", len(got), len(urls))
	}
	for i, u := range urls {
		if got[i].Metadata.URL != u {
			t.Errorf("record %d URL = %q, want %q", i, got[i].Metadata.URL, u)
		}
	}
}

func TestLog_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	l := NewLog(store.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Append(ctx, record("https://a.com", false, time.Second)); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := l.List(ctx)
	if len(got) != 20 {
		t.Errorf("List() = %d records, want 20", len(got))
	}
}

func TestLog_ClearKeepsSettings(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	l := NewLog(s)

	settings := json.RawMessage(`{"checkInterval":60}`)
	if err := s.Set(ctx, map[string]json.RawMessage{store.KeySettings: settings}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := l.Append(ctx, record("https://a.com", true, time.Minute)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := l.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	values, _ := s.Get(ctx, store.KeySettings, store.KeyActivityLog)
	if string(values[store.KeyActivityLog]) != "[]" {
		t.Errorf("activityLog = %s, want []", values[store.KeyActivityLog])
	}
	if string(values[store.KeySettings]) != string(settings) {
		t.Errorf("settings = %s, want %s", values[store.KeySettings], settings)
	}
}

func TestLog_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	l := NewLog(s)

	if err := l.Append(ctx, record("https://a.com", true, 65*time.Second)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	values, _ := s.Get(ctx, store.KeyActivityLog)
	var raw []map[string]any
	if err := json.Unmarshal(values[store.KeyActivityLog], &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	md, ok := raw[0]["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("metadata missing from %v", raw[0])
	}
	if md["duration"] != float64(65000) {
		t.Errorf("metadata.duration = %v, want 65000", md["duration"])
	}
	if _, ok := raw[0]["isUserClarified"]; ok {
		t.Error("isUserClarified present for unclarified record")
	}
}
