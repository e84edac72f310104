package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tabtime/internal/model"
	"tabtime/internal/store"
)

// Log is the append-only activity log kept under the "activityLog" key.
// The store has no append primitive, so Append is a read-modify-write of the
// whole array, serialized within this process.
type Log struct {
	store store.Store
	mu    sync.Mutex
}

// NewLog creates a Log over s.
func NewLog(s store.Store) *Log {
	return &Log{store: s}
}

// Append adds rec to the end of the log.
func (l *Log) Append(ctx context.Context, rec model.ActivityRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read(ctx)
	if err != nil {
		return err
	}
	return l.write(ctx, append(records, rec))
}

// List returns every record in insertion order.
func (l *Log) List(ctx context.Context) ([]model.ActivityRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(ctx)
}

// Clear empties the log. Settings are left untouched.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(ctx, []model.ActivityRecord{})
}

func (l *Log) read(ctx context.Context) ([]model.ActivityRecord, error) {
	values, err := l.store.Get(ctx, store.KeyActivityLog)
	if err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	raw, ok := values[store.KeyActivityLog]
	if !ok || len(raw) == 0 {
		return []model.ActivityRecord{}, nil
	}
	var records []model.ActivityRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding activity log: %w", err)
	}
	if records == nil {
		records = []model.ActivityRecord{}
	}
	return records, nil
}

func (l *Log) write(ctx context.Context, records []model.ActivityRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding activity log: %w", err)
	}
	if err := l.store.Set(ctx, map[string]json.RawMessage{store.KeyActivityLog: data}); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}
