package app

import "time"

// Operation tracks the CLI command an App was opened for. It is logged when
// the App opens and again with its outcome on Close.
type Operation struct {
	Name    string
	Started time.Time
	Status  string // "success" or "error"
}

// NewOperation creates a successful operation started at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		Name:    name,
		Started: now,
		Status:  "success",
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Elapsed returns the time since the operation started, rounded to milliseconds.
func (op *Operation) Elapsed(now time.Time) time.Duration {
	return now.Sub(op.Started).Round(time.Millisecond)
}
