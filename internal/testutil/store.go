package testutil

import (
	"context"
	"testing"

	"tabtime/internal/activity"
	"tabtime/internal/encryption"
	"tabtime/internal/model"
	"tabtime/internal/settings"
	"tabtime/internal/store"
)

// NewTestStore creates a new in-memory store for testing.
func NewTestStore() *store.MemoryStore {
	return store.NewMemoryStore()
}

// NewTestSealer creates a reversible sealer that needs no key material.
func NewTestSealer() *encryption.TestSealer {
	return encryption.NewTestSealer()
}

// NewTestActivityLog creates an activity log backed by s.
func NewTestActivityLog(s store.Store) *activity.Log {
	return activity.NewLog(s)
}

// NewTestSettings creates a settings adapter backed by s with initial
// persisted. The API key is sealed with a TestSealer.
func NewTestSettings(t *testing.T, s store.Store, initial model.Settings) *settings.Adapter {
	t.Helper()

	a := settings.NewAdapter(s, NewTestSealer())
	key := initial.APIKey
	thresh := initial.ConfidenceThreshold
	interval := initial.CheckIntervalSeconds
	prompt := initial.AutoPrompt
	paused := initial.IsPaused
	_, err := a.Save(context.Background(), model.SettingsPatch{
		APIKey:               &key,
		ConfidenceThreshold:  &thresh,
		CheckIntervalSeconds: &interval,
		AutoPrompt:           &prompt,
		IsPaused:             &paused,
	})
	if err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	return a
}
