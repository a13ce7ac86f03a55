package registry

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies timestamps for created/modified times and log entries.
type Clock interface {
	Now() time.Time
}

// RealClock returns the current UTC time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator issues resource UUIDs.
type IDGenerator interface {
	New() string
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }
