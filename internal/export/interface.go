package export

import (
	"fmt"
	"io"
	"time"

	"tabtime/internal/model"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(records []model.ActivityRecord, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format. Timestamps in
// human-readable formats are rendered in loc (time.Local when nil).
func NewExporter(format string, loc *time.Location) (Exporter, error) {
	if loc == nil {
		loc = time.Local
	}
	switch format {
	case "csv", "":
		return &CSVExporter{Location: loc}, nil
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{Location: loc}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: csv, json, yaml)", format)
	}
}

// DefaultFileName returns the download name used by the dashboard,
// productivity-data-YYYY-MM-DD.<ext>, dated in UTC.
func DefaultFileName(now time.Time, e Exporter) string {
	return fmt.Sprintf("productivity-data-%s.%s", now.UTC().Format("2006-01-02"), e.Extension())
}
