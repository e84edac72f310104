package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"tabtime/internal/model"
)

func testRecord() model.ActivityRecord {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return model.NewActivityRecord(
		model.Judgment{IsProductive: true, Confidence: 0.8, Reason: `He said "hi"`},
		model.NewMetadata("https://a.com", "A,B", 65*time.Second, at),
		false,
	)
}

func TestCSVExporter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	e := &CSVExporter{Location: time.UTC}

	if err := e.Export([]model.ActivityRecord{testRecord()}, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported csv: %v\n%s", err, buf.String())
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := strings.Join(rows[0], ","); got != CSVHeader {
		t.Errorf("header = %q, want %q", got, CSVHeader)
	}

	want := []string{"https://a.com", "A,B", "2024-01-15 10:30:00", "1m 5s", "Yes", "80%", `He said "hi"`}
	for i, w := range want {
		if rows[1][i] != w {
			t.Errorf("field %d = %q, want %q", i, rows[1][i], w)
		}
	}
}

func TestCSVExporter_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	e := &CSVExporter{Location: time.UTC}
	if err := e.Export([]model.ActivityRecord{testRecord()}, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	want := `"https://a.com","A,B","2024-01-15 10:30:00","1m 5s","Yes","80%","He said ""hi"""`
	if lines[1] != want {
		t.Errorf("row = %s\nwant  %s", lines[1], want)
	}
}

func TestCSVExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVExporter{}).Export(nil, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.String() != CSVHeader {
		t.Errorf("Export(nil) = %q, want header only", buf.String())
	}
}

func TestCSVExporter_ShortDurationAndNo(t *testing.T) {
	rec := testRecord()
	rec.IsProductive = false
	rec.Confidence = 0.456
	rec.Metadata.Duration = 42400

	var buf bytes.Buffer
	if err := (&CSVExporter{Location: time.UTC}).Export([]model.ActivityRecord{rec}, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported csv: %v", err)
	}
	if rows[1][3] != "42s" || rows[1][4] != "No" || rows[1][5] != "46%" {
		t.Errorf("row = %v, want 42s/No/46%%", rows[1])
	}
}

var errDiskFull = errors.New("disk full")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }

func TestCSVExporter_WriteError(t *testing.T) {
	tests := []struct {
		name    string
		records int
	}{
		{name: "fails on flush", records: 1},
		{name: "fails mid export", records: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := make([]model.ActivityRecord, tt.records)
			for i := range recs {
				recs[i] = testRecord()
			}
			err := (&CSVExporter{Location: time.UTC}).Export(recs, failingWriter{})
			if !errors.Is(err, errDiskFull) {
				t.Errorf("Export() error = %v, want %v", err, errDiskFull)
			}
		})
	}
}
