package tracker

import (
	"context"

	"tabtime/internal/model"
)

// ActivityLog persists classification outcomes. It is append-only.
type ActivityLog interface {
	Append(ctx context.Context, rec model.ActivityRecord) error
}

// SettingsStore loads and saves user settings.
type SettingsStore interface {
	Load(ctx context.Context) (model.Settings, error)
	// Save validates and merges the patch, persists the result and returns it.
	Save(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)
}
