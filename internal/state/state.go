// Package state renders a point-in-time snapshot of the tracked user tasks
// into the two supported representations: a JSON document for machine
// consumers and an aligned plain-text table for humans. It never mutates
// task data and holds nothing beyond a single render call.
package state

import (
	"taskstate/internal/task"
)

// Status labels tasks are bucketed under at render time.
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
)

// UserTaskState is an immutable snapshot of the tracked user tasks at one
// instant: the active tasks followed by the completed ones, each sequence in
// the order the manager kept them. Callers must hand in sequences that are
// not concurrently mutated; Manager.Snapshot already returns copies.
type UserTaskState struct {
	active    []task.Info
	completed []task.Info
	log       Logger
}

// Option configures a UserTaskState at construction.
type Option func(*UserTaskState)

// WithLogger sets the logger used to report table write failures.
func WithLogger(l Logger) Option {
	return func(s *UserTaskState) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a snapshot over the given sequences. No validation is performed;
// nil or empty sequences are valid and render as empty sections.
func New(active, completed []task.Info, opts ...Option) *UserTaskState {
	s := &UserTaskState{active: active, completed: completed, log: stdLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveUserTasks returns a copy of the active sequence.
func (s *UserTaskState) ActiveUserTasks() []task.Info {
	out := make([]task.Info, len(s.active))
	copy(out, s.active)
	return out
}

// CompletedUserTasks returns a copy of the completed sequence.
func (s *UserTaskState) CompletedUserTasks() []task.Info {
	out := make([]task.Info, len(s.completed))
	copy(out, s.completed)
	return out
}

// Row is one renderable record: a task together with the status bucket it
// was in when the snapshot was taken.
type Row struct {
	Info   task.Info
	Status string
}

// FilteredRows returns the records passing the filter, active rows first,
// both groups in snapshot order.
func (s *UserTaskState) FilteredRows(requested Filter) []Row {
	rows := make([]Row, 0, len(s.active)+len(s.completed))
	for _, t := range s.active {
		if requested.Match(t.ID) {
			rows = append(rows, Row{Info: t, Status: StatusActive})
		}
	}
	for _, t := range s.completed {
		if requested.Match(t.ID) {
			rows = append(rows, Row{Info: t, Status: StatusCompleted})
		}
	}
	return rows
}
