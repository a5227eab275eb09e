package task

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskstate/internal/metrics"
	"taskstate/pkg/mq"
)

var ErrTaskNotFound = errors.New("user task not found")

// DefaultRetention caps how many completed tasks the manager keeps in memory.
const DefaultRetention = 100

// Archive receives completed tasks for durable storage. Optional; the manager
// runs purely in memory without one.
type Archive interface {
	InsertCompleted(ctx context.Context, info Info, completedMs int64) error
}

// Manager tracks user tasks through their single active -> completed
// transition. Active and completed lists keep insertion order; once the
// completed list exceeds the retention cap the oldest entries are dropped
// (the archive, when set, has already seen them).
type Manager struct {
	mu        sync.RWMutex
	active    []Info
	completed []Info
	retention int

	archive  Archive
	pub      mq.Publisher
	onChange func()
}

func NewManager(retention int) *Manager {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Manager{retention: retention, pub: mq.Noop{}}
}

func (m *Manager) SetArchive(a Archive) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archive = a
}

func (m *Manager) SetPublisher(p mq.Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = mq.Noop{}
	}
	m.pub = p
}

// SetOnChange registers a callback invoked after every Start and Complete.
// The server uses it to drop stale rendered views.
func (m *Manager) SetOnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Start registers a new active task and returns its record.
func (m *Manager) Start(requestURL, clientIdentity string) Info {
	info := Info{
		ID:             uuid.New(),
		RequestURL:     requestURL,
		ClientIdentity: clientIdentity,
		StartMs:        time.Now().UnixMilli(),
	}

	m.mu.Lock()
	m.active = append(m.active, info)
	pub, onChange := m.pub, m.onChange
	m.mu.Unlock()

	metrics.StartedTotal.Inc()
	metrics.ActiveTasks.Inc()
	m.publish(pub, mq.EventTaskStarted, info, info.StartMs)
	if onChange != nil {
		onChange()
	}
	return info
}

// Complete moves an active task to the completed list. Completing an unknown
// or already-completed id returns ErrTaskNotFound.
func (m *Manager) Complete(ctx context.Context, id uuid.UUID) error {
	completedMs := time.Now().UnixMilli()

	m.mu.Lock()
	idx := -1
	for i, t := range m.active {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return ErrTaskNotFound
	}
	info := m.active[idx]
	m.active = append(m.active[:idx], m.active[idx+1:]...)
	m.completed = append(m.completed, info)
	if len(m.completed) > m.retention {
		m.completed = m.completed[len(m.completed)-m.retention:]
	}
	archive, pub, onChange := m.archive, m.pub, m.onChange
	m.mu.Unlock()

	metrics.CompletedTotal.Inc()
	metrics.ActiveTasks.Dec()
	if archive != nil {
		if err := archive.InsertCompleted(ctx, info, completedMs); err != nil {
			log.Printf("archive completed task %s: %v", info.ID, err)
		}
	}
	m.publish(pub, mq.EventTaskCompleted, info, completedMs)
	if onChange != nil {
		onChange()
	}
	return nil
}

// Snapshot returns copies of the active and completed lists, in order. The
// copies are the caller's to keep; later manager mutations do not touch them.
func (m *Manager) Snapshot() (active, completed []Info) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active = make([]Info, len(m.active))
	copy(active, m.active)
	completed = make([]Info, len(m.completed))
	copy(completed, m.completed)
	return active, completed
}

func (m *Manager) publish(pub mq.Publisher, eventType string, info Info, atMs int64) {
	ev := mq.Event{
		Type:       eventType,
		TaskID:     info.ID.String(),
		RequestURL: info.RequestURL,
		AtMs:       atMs,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := pub.Publish(mq.TopicUserTasks, payload); err != nil {
		log.Printf("publish %s for task %s: %v", eventType, info.ID, err)
	}
}
