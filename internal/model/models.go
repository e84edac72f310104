package model

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied when a setting has never been persisted.
const (
	DefaultConfidenceThreshold  = 0.75
	DefaultCheckIntervalSeconds = 30
	MinCheckIntervalSeconds     = 10
	MaxCheckIntervalSeconds     = 300
)

// SentinelReason is the reason attached to the fallback judgment used when the
// classification provider fails.
const SentinelReason = "Error during classification"

// ErrInvalidSettings is returned when a settings update is out of range.
var ErrInvalidSettings = errors.New("invalid settings")

// Judgment is a productivity classification with a confidence score and rationale.
type Judgment struct {
	IsProductive bool    `json:"isProductive"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
}

// SentinelJudgment is the low-confidence judgment substituted for a failed
// classification. It flows through the normal confidence policy.
func SentinelJudgment() Judgment {
	return Judgment{IsProductive: false, Confidence: 0.5, Reason: SentinelReason}
}

// Clamped returns j with Confidence limited to [0,1].
func (j Judgment) Clamped() Judgment {
	switch {
	case j.Confidence < 0:
		j.Confidence = 0
	case j.Confidence > 1:
		j.Confidence = 1
	}
	return j
}

// Metadata describes the page and time window an activity record covers.
// Duration and Timestamp are milliseconds, matching the persisted layout.
type Metadata struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Duration  int64  `json:"duration"`
	Timestamp int64  `json:"timestamp"`
}

// NewMetadata builds Metadata from Go time values. Negative durations are clamped to zero.
func NewMetadata(url, title string, d time.Duration, at time.Time) Metadata {
	if d < 0 {
		d = 0
	}
	return Metadata{
		URL:       url,
		Title:     title,
		Duration:  d.Milliseconds(),
		Timestamp: at.UnixMilli(),
	}
}

// DurationValue returns the duration as a time.Duration.
func (m Metadata) DurationValue() time.Duration {
	return time.Duration(m.Duration) * time.Millisecond
}

// Time returns the record timestamp.
func (m Metadata) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// ActivityRecord is one persisted outcome. Records are append-only.
type ActivityRecord struct {
	IsProductive    bool     `json:"isProductive"`
	Confidence      float64  `json:"confidence"`
	Reason          string   `json:"reason"`
	Metadata        Metadata `json:"metadata"`
	IsUserClarified bool     `json:"isUserClarified,omitempty"`
}

// NewActivityRecord combines a judgment with fresh metadata.
func NewActivityRecord(j Judgment, md Metadata, clarified bool) ActivityRecord {
	j = j.Clamped()
	if md.Duration < 0 {
		md.Duration = 0
	}
	return ActivityRecord{
		IsProductive:    j.IsProductive,
		Confidence:      j.Confidence,
		Reason:          j.Reason,
		Metadata:        md,
		IsUserClarified: clarified,
	}
}

// Judgment returns the decision part of the record.
func (r ActivityRecord) Judgment() Judgment {
	return Judgment{IsProductive: r.IsProductive, Confidence: r.Confidence, Reason: r.Reason}
}

// Settings is the process-wide user configuration persisted under the
// "settings" key. The JSON names follow the extension's storage layout.
type Settings struct {
	APIKey               string  `json:"apiKey"`
	ConfidenceThreshold  float64 `json:"confidenceThreshold"`
	CheckIntervalSeconds int     `json:"checkInterval"`
	AutoPrompt           bool    `json:"autoPrompt"`
	IsPaused             bool    `json:"isPaused"`
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		ConfidenceThreshold:  DefaultConfidenceThreshold,
		CheckIntervalSeconds: DefaultCheckIntervalSeconds,
		AutoPrompt:           true,
	}
}

// CheckInterval returns the periodic classification interval.
func (s Settings) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalSeconds) * time.Second
}

// Validate checks the ranges of the numeric settings.
func (s Settings) Validate() error {
	if s.CheckIntervalSeconds < MinCheckIntervalSeconds || s.CheckIntervalSeconds > MaxCheckIntervalSeconds {
		return fmt.Errorf("%w: check interval %ds outside [%d,%d]",
			ErrInvalidSettings, s.CheckIntervalSeconds, MinCheckIntervalSeconds, MaxCheckIntervalSeconds)
	}
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %v outside [0,1]", ErrInvalidSettings, s.ConfidenceThreshold)
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	APIKey               *string  `json:"apiKey,omitempty"`
	ConfidenceThreshold  *float64 `json:"confidenceThreshold,omitempty"`
	CheckIntervalSeconds *int     `json:"checkInterval,omitempty"`
	AutoPrompt           *bool    `json:"autoPrompt,omitempty"`
	IsPaused             *bool    `json:"isPaused,omitempty"`
}

// Apply shallow-merges p over s.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.APIKey != nil {
		s.APIKey = *p.APIKey
	}
	if p.ConfidenceThreshold != nil {
		s.ConfidenceThreshold = *p.ConfidenceThreshold
	}
	if p.CheckIntervalSeconds != nil {
		s.CheckIntervalSeconds = *p.CheckIntervalSeconds
	}
	if p.AutoPrompt != nil {
		s.AutoPrompt = *p.AutoPrompt
	}
	if p.IsPaused != nil {
		s.IsPaused = *p.IsPaused
	}
	return s
}
