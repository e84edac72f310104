package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tabtime/internal/encryption"
	"tabtime/internal/model"
	"tabtime/internal/store"
)

// MaskedKey replaces the API key in views returned to the dashboard.
const MaskedKey = "********"

// Adapter reads and writes the "settings" record. The API key is sealed
// before it is written; values stored in plaintext by older versions are
// still accepted on load.
type Adapter struct {
	store  store.Store
	sealer encryption.Sealer
	mu     sync.Mutex
}

// NewAdapter creates an Adapter over s. A nil sealer stores the key in plaintext.
func NewAdapter(s store.Store, sealer encryption.Sealer) *Adapter {
	if sealer == nil {
		sealer = encryption.NoneSealer{}
	}
	return &Adapter{store: s, sealer: sealer}
}

// Load returns the persisted settings merged over the defaults.
func (a *Adapter) Load(ctx context.Context) (model.Settings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

// Save validates p, merges it over the current settings and writes the
// complete record back. Invalid patches persist nothing.
func (a *Adapter) Save(ctx context.Context, p model.SettingsPatch) (model.Settings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.load(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if p.APIKey != nil && (*p.APIKey == "" || *p.APIKey == MaskedKey) {
		p.APIKey = nil
	}

	merged := current.Apply(p)
	if err := merged.Validate(); err != nil {
		return model.Settings{}, err
	}

	stored := merged
	if stored.APIKey != "" {
		sealed, err := a.sealer.Seal(stored.APIKey)
		if err != nil {
			return model.Settings{}, fmt.Errorf("sealing API key: %w", err)
		}
		stored.APIKey = sealed
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return model.Settings{}, fmt.Errorf("encoding settings: %w", err)
	}
	if err := a.store.Set(ctx, map[string]json.RawMessage{store.KeySettings: data}); err != nil {
		return model.Settings{}, fmt.Errorf("writing settings: %w", err)
	}
	return merged, nil
}

// HasAPIKey reports whether an API key is configured.
func (a *Adapter) HasAPIKey(ctx context.Context) (bool, error) {
	key, err := a.APIKey(ctx)
	if err != nil {
		return false, err
	}
	return key != "", nil
}

// APIKey returns the plaintext API key, or "" when none is set.
func (a *Adapter) APIKey(ctx context.Context) (string, error) {
	s, err := a.Load(ctx)
	if err != nil {
		return "", err
	}
	return s.APIKey, nil
}

// Masked returns s with a non-empty API key replaced by MaskedKey.
func Masked(s model.Settings) model.Settings {
	if s.APIKey != "" {
		s.APIKey = MaskedKey
	}
	return s
}

func (a *Adapter) load(ctx context.Context) (model.Settings, error) {
	values, err := a.store.Get(ctx, store.KeySettings)
	if err != nil {
		return model.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	s := model.DefaultSettings()
	raw, ok := values[store.KeySettings]
	if !ok || len(raw) == 0 {
		return s, nil
	}
	// Unmarshal over the defaults so absent fields keep their default.
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Settings{}, fmt.Errorf("decoding settings: %w", err)
	}

	if a.sealer.IsSealed(s.APIKey) {
		key, err := a.sealer.Open(s.APIKey)
		if err != nil {
			return model.Settings{}, fmt.Errorf("opening API key: %w", err)
		}
		s.APIKey = key
	}
	return s, nil
}
