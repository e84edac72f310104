package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"tabtime/internal/activity"
	"tabtime/internal/model"
)

// TimestampLayout is the CSV timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// CSVHeader is the first line of every CSV export.
const CSVHeader = "URL,Title,Timestamp,Duration,Productive,Confidence,Reason"

// CSVExporter writes the dashboard CSV. Every data field is quoted and
// embedded quotes are doubled, so commas and quotes in titles survive.
type CSVExporter struct {
	Location *time.Location
}

// Export writes the header and one row per record.
func (e *CSVExporter) Export(records []model.ActivityRecord, w io.Writer) error {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		fields := []string{
			r.Metadata.URL,
			r.Metadata.Title,
			r.Metadata.Time().In(loc).Format(TimestampLayout),
			activity.FormatDuration(r.Metadata.DurationValue()),
			yesNo(r.IsProductive),
			fmt.Sprintf("%d%%", int(math.Round(r.Confidence*100))),
			r.Reason,
		}
		if _, err := bw.WriteString(row(fields)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}

// row renders fields as one line, preceded by the newline ending the previous one.
func row(fields []string) string {
	var b strings.Builder
	b.WriteByte('\n')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(f))
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
