package app

import "time"

// Operation tracks one CLI command run. Its ID tags every log line written
// while the command runs.
type Operation struct {
	ID        string
	Name      string
	Status    string // "success" or "error"
	StartedAt time.Time
}

// NewOperation creates an operation started at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:        now.UTC().Format("20060102T150405Z"),
		Name:      name,
		Status:    "success",
		StartedAt: now,
	}
}

// Finish records the outcome of the command and returns err unchanged.
func (op *Operation) Finish(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}

// Duration returns the time elapsed since the operation started.
func (op *Operation) Duration(now time.Time) time.Duration {
	return now.Sub(op.StartedAt)
}
