package task

import (
	"time"

	"github.com/google/uuid"
)

// Info is an immutable record of one tracked user task. Instances are
// value-copied across package boundaries; nothing mutates them after Start.
type Info struct {
	ID             uuid.UUID
	RequestURL     string // originating request path with parameters, verbatim
	ClientIdentity string // caller address or identity string
	StartMs        int64  // milliseconds since epoch, UTC
}

// StartTime returns the task start as a UTC timestamp.
func (i Info) StartTime() time.Time {
	return time.UnixMilli(i.StartMs).UTC()
}
