package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Top-level keys of the persisted layout.
const (
	KeySettings    = "settings"
	KeyActivityLog = "activityLog"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is the persistent key-value store. Values are JSON documents.
// There are no transactions; the last write to a key wins.
type Store interface {
	// Get returns the values stored under keys. Missing keys are absent from the result.
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)

	// Set writes every key in values.
	Set(ctx context.Context, values map[string]json.RawMessage) error

	// Close releases the store's resources.
	Close() error
}
