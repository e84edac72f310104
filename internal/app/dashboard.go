package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"tabtime/internal/activity"
	"tabtime/internal/export"
	"tabtime/internal/model"
	"tabtime/internal/nativemsg"
	"tabtime/internal/settings"
)

var _ nativemsg.Dashboard = (*App)(nil)

// Stats returns the full activity log.
func (a *App) Stats(ctx context.Context) ([]model.ActivityRecord, error) {
	return a.activity.List(ctx)
}

// Summary returns aggregate statistics over the activity log.
func (a *App) Summary(ctx context.Context) (activity.Summary, error) {
	records, err := a.activity.List(ctx)
	if err != nil {
		return activity.Summary{}, err
	}
	return activity.Summarize(records), nil
}

// Settings returns the current settings with the API key masked.
func (a *App) Settings(ctx context.Context) (model.Settings, error) {
	s, err := a.settings.Load(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	return settings.Masked(s), nil
}

// UpdateSettings validates and persists a patch. While the host is running
// the change goes through the tracker so pause and interval changes apply
// immediately. The returned settings have the API key masked.
func (a *App) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	var (
		s   model.Settings
		err error
	)
	if t := a.tracker(); t != nil {
		s, err = t.UpdateSettings(ctx, patch)
	} else {
		s, err = a.settings.Save(ctx, patch)
	}
	if err != nil {
		return model.Settings{}, err
	}
	a.logger.Info("settings updated", "paused", s.IsPaused, "interval_s", s.CheckIntervalSeconds,
		"threshold", s.ConfidenceThreshold, "auto_prompt", s.AutoPrompt)
	return settings.Masked(s), nil
}

// CheckAPIKey reports whether an API key is configured.
func (a *App) CheckAPIKey(ctx context.Context) (bool, error) {
	return a.settings.HasAPIKey(ctx)
}

// ClearLog empties the activity log. Settings are kept.
func (a *App) ClearLog(ctx context.Context) error {
	if err := a.activity.Clear(ctx); err != nil {
		return err
	}
	a.logger.Info("activity log cleared")
	return nil
}

// Export writes the activity log to w in the given format and returns the
// default file name for it. Timestamps are rendered in loc.
func (a *App) Export(ctx context.Context, format string, loc *time.Location, w io.Writer) (string, error) {
	e, err := export.NewExporter(format, loc)
	if err != nil {
		return "", err
	}
	records, err := a.activity.List(ctx)
	if err != nil {
		return "", err
	}
	if err := e.Export(records, w); err != nil {
		return "", fmt.Errorf("exporting activity: %w", err)
	}
	a.logger.Info("exported activity", "format", format, "records", len(records))
	return export.DefaultFileName(a.clock.Now(), e), nil
}
