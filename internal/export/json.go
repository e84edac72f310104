package export

import (
	"encoding/json"
	"io"

	"tabtime/internal/model"
)

// JSONExporter writes records in their persisted layout (pretty-printed).
type JSONExporter struct{}

// Export exports records to JSON format
func (e *JSONExporter) Export(records []model.ActivityRecord, w io.Writer) error {
	if records == nil {
		records = []model.ActivityRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(records)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
