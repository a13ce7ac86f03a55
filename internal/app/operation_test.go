package app

import (
	"errors"
	"testing"
	"time"
)

func TestOperation(t *testing.T) {
	start := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	t.Run("starts successful", func(t *testing.T) {
		op := NewOperation("put", start)
		if op.ID != "20240615T143045Z" {
			t.Errorf("ID = %q, want 20240615T143045Z", op.ID)
		}
		if op.Status != "success" {
			t.Errorf("Status = %q, want success", op.Status)
		}
		if d := op.Duration(start.Add(2 * time.Second)); d != 2*time.Second {
			t.Errorf("Duration() = %v, want 2s", d)
		}
	})

	t.Run("finish records failures", func(t *testing.T) {
		op := NewOperation("put", start)
		if err := op.Finish(nil); err != nil {
			t.Fatalf("Finish(nil) = %v", err)
		}
		if op.Status != "success" {
			t.Errorf("Status = %q after nil error", op.Status)
		}

		boom := errors.New("boom")
		if err := op.Finish(boom); err != boom {
			t.Errorf("Finish() = %v, want %v", err, boom)
		}
		if op.Status != "error" {
			t.Errorf("Status = %q, want error", op.Status)
		}
	})
}
