package export

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"tabtime/internal/activity"
	"tabtime/internal/model"
)

// YAMLExporter exports records as a readable YAML list.
type YAMLExporter struct {
	Location *time.Location
}

type yamlRow struct {
	URL        string  `yaml:"url"`
	Title      string  `yaml:"title"`
	Timestamp  string  `yaml:"timestamp"`
	Duration   string  `yaml:"duration"`
	Productive bool    `yaml:"productive"`
	Confidence float64 `yaml:"confidence"`
	Reason     string  `yaml:"reason"`
	Clarified  bool    `yaml:"clarified,omitempty"`
}

// Export exports records to YAML format
func (e *YAMLExporter) Export(records []model.ActivityRecord, w io.Writer) error {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}

	rows := make([]yamlRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, yamlRow{
			URL:        r.Metadata.URL,
			Title:      r.Metadata.Title,
			Timestamp:  r.Metadata.Time().In(loc).Format(TimestampLayout),
			Duration:   activity.FormatDuration(r.Metadata.DurationValue()),
			Productive: r.IsProductive,
			Confidence: r.Confidence,
			Reason:     r.Reason,
			Clarified:  r.IsUserClarified,
		})
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(rows)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
