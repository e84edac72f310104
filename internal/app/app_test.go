package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tabtime/internal/config"
	"tabtime/internal/model"
	"tabtime/internal/settings"
	"tabtime/internal/testutil"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.NewConfig("test-host", t.TempDir())
	cfg.Store.Type = "memory"
	cfg.Encryption.Type = "test"
	logger := slog.New(&logHandler{w: io.Discard, hostID: cfg.HostID, level: slog.LevelDebug})
	a := newApp(cfg, testutil.NewTestStore(), testutil.NewTestSealer(), logger, testutil.FixedClock(), "test")
	t.Cleanup(func() { a.Close() })
	return a
}

func seed(t *testing.T, a *App, records ...model.ActivityRecord) {
	t.Helper()
	for _, r := range records {
		if err := a.activity.Append(context.Background(), r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func record(url string, productive bool, d time.Duration) model.ActivityRecord {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return model.NewActivityRecord(
		model.Judgment{IsProductive: productive, Confidence: 0.8, Reason: "r"},
		model.NewMetadata(url, "T", d, at), false)
}

func TestNew(t *testing.T) {
	base := t.TempDir()
	cfg := config.NewConfig("laptop", base)
	cfg.Encryption.Type = "test"

	a, err := New(context.Background(), cfg, "stats")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "log", LogFileName)); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}

func TestNew_BadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "unknown store", mutate: func(c *config.Config) { c.Store.Type = "floppy" }},
		{name: "unknown sealer", mutate: func(c *config.Config) { c.Encryption.Type = "rot13" }},
		{name: "bad log level", mutate: func(c *config.Config) { c.Log.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig("laptop", t.TempDir())
			cfg.Encryption.Type = "test"
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg, "stats"); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestApp_StatsAndSummary(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	seed(t, a,
		record("https://go.dev/doc", true, time.Minute),
		record("https://video.example.com/x", false, 2*time.Minute),
		record("https://go.dev/blog", true, 30*time.Second),
	)

	records, err := a.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Stats() = %d records, want 3", len(records))
	}

	sum, err := a.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Productive != 90*time.Second || sum.Wasted != 2*time.Minute {
		t.Errorf("Summary() productive=%v wasted=%v", sum.Productive, sum.Wasted)
	}
	if len(sum.TopDomains) != 2 || sum.TopDomains[0].Domain != "video.example.com" {
		t.Errorf("TopDomains = %+v, want video.example.com first", sum.TopDomains)
	}
}

func TestApp_Settings(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	key := "sk-secret"

	got, err := a.UpdateSettings(ctx, model.SettingsPatch{APIKey: &key})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if got.APIKey != settings.MaskedKey {
		t.Errorf("UpdateSettings() APIKey = %q, want masked", got.APIKey)
	}

	shown, err := a.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if shown.APIKey != settings.MaskedKey {
		t.Errorf("Settings() APIKey = %q, want masked", shown.APIKey)
	}

	has, err := a.CheckAPIKey(ctx)
	if err != nil || !has {
		t.Errorf("CheckAPIKey() = %v, %v, want true", has, err)
	}

	interval := 500
	if _, err := a.UpdateSettings(ctx, model.SettingsPatch{CheckIntervalSeconds: &interval}); !errors.Is(err, model.ErrInvalidSettings) {
		t.Errorf("UpdateSettings() error = %v, want ErrInvalidSettings", err)
	}
}

func TestApp_ClearLogKeepsSettings(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	seed(t, a, record("https://a.com", true, time.Minute))
	paused := true
	if _, err := a.UpdateSettings(ctx, model.SettingsPatch{IsPaused: &paused}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	if err := a.ClearLog(ctx); err != nil {
		t.Fatalf("ClearLog() error = %v", err)
	}

	records, _ := a.Stats(ctx)
	if len(records) != 0 {
		t.Errorf("Stats() = %d records after clear, want 0", len(records))
	}
	s, _ := a.Settings(ctx)
	if !s.IsPaused {
		t.Error("settings lost by ClearLog()")
	}
}

func TestApp_Export(t *testing.T) {
	a := newTestApp(t)
	seed(t, a, record("https://a.com", true, 65*time.Second))

	var buf bytes.Buffer
	name, err := a.Export(context.Background(), "csv", time.UTC, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if name != "productivity-data-2024-01-15.csv" {
		t.Errorf("Export() name = %q", name)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("Export() lines = %d, want header and one row", len(lines))
	}
	if !strings.Contains(lines[1], `"1m 5s"`) {
		t.Errorf("row = %q, want duration 1m 5s", lines[1])
	}

	if _, err := a.Export(context.Background(), "xlsx", time.UTC, &buf); err == nil {
		t.Error("Export() expected error for unknown format")
	}

	// Late evening in New York is already the next day in UTC.
	a.clock.(*testutil.StubClock).Set(time.Date(2024, 1, 15, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)))
	name, err = a.Export(context.Background(), "json", time.UTC, io.Discard)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if name != "productivity-data-2024-01-16.json" {
		t.Errorf("Export() name = %q, want UTC date", name)
	}
}
