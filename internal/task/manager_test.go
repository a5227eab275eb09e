package task

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskstate/pkg/mq"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (p *capturePublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ev mq.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	p.events = append(p.events, ev)
	return nil
}

type captureArchive struct {
	infos       []Info
	completedMs []int64
}

func (a *captureArchive) InsertCompleted(_ context.Context, info Info, completedMs int64) error {
	a.infos = append(a.infos, info)
	a.completedMs = append(a.completedMs, completedMs)
	return nil
}

func TestStartAndComplete(t *testing.T) {
	mgr := NewManager(10)

	first := mgr.Start("/rebalance?dryrun=false", "10.0.0.1")
	second := mgr.Start("/load", "10.0.0.2")

	active, completed := mgr.Snapshot()
	require.Len(t, active, 2)
	require.Empty(t, completed)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, mgr.Complete(context.Background(), first.ID))

	active, completed = mgr.Snapshot()
	require.Len(t, active, 1)
	require.Len(t, completed, 1)
	assert.Equal(t, second.ID, active[0].ID)
	assert.Equal(t, first.ID, completed[0].ID)
}

func TestCompleteUnknownID(t *testing.T) {
	mgr := NewManager(10)
	err := mgr.Complete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCompleteTwice(t *testing.T) {
	mgr := NewManager(10)
	info := mgr.Start("/a", "c")
	require.NoError(t, mgr.Complete(context.Background(), info.ID))
	assert.ErrorIs(t, mgr.Complete(context.Background(), info.ID), ErrTaskNotFound)
}

func TestSnapshotIsACopy(t *testing.T) {
	mgr := NewManager(10)
	info := mgr.Start("/a", "c")

	before, _ := mgr.Snapshot()
	require.NoError(t, mgr.Complete(context.Background(), info.ID))

	// The earlier snapshot must not see the transition.
	require.Len(t, before, 1)
	assert.Equal(t, info.ID, before[0].ID)

	// Nor do writes through a snapshot reach the manager.
	before[0].RequestURL = "/mutated"
	_, completed := mgr.Snapshot()
	require.Len(t, completed, 1)
	assert.Equal(t, "/a", completed[0].RequestURL)
}

func TestCompletedRetention(t *testing.T) {
	mgr := NewManager(2)
	ctx := context.Background()

	a := mgr.Start("/a", "c")
	b := mgr.Start("/b", "c")
	c := mgr.Start("/c", "c")
	require.NoError(t, mgr.Complete(ctx, a.ID))
	require.NoError(t, mgr.Complete(ctx, b.ID))
	require.NoError(t, mgr.Complete(ctx, c.ID))

	_, completed := mgr.Snapshot()
	require.Len(t, completed, 2)
	assert.Equal(t, b.ID, completed[0].ID)
	assert.Equal(t, c.ID, completed[1].ID)
}

func TestLifecycleEventsPublished(t *testing.T) {
	pub := &capturePublisher{}
	mgr := NewManager(10)
	mgr.SetPublisher(pub)

	info := mgr.Start("/a", "c")
	require.NoError(t, mgr.Complete(context.Background(), info.ID))

	require.Len(t, pub.events, 2)
	assert.Equal(t, mq.EventTaskStarted, pub.events[0].Type)
	assert.Equal(t, mq.EventTaskCompleted, pub.events[1].Type)
	assert.Equal(t, info.ID.String(), pub.events[0].TaskID)
	assert.Equal(t, info.ID.String(), pub.events[1].TaskID)
	assert.Equal(t, "/a", pub.events[1].RequestURL)
}

func TestArchiveReceivesCompletedTasks(t *testing.T) {
	ar := &captureArchive{}
	mgr := NewManager(10)
	mgr.SetArchive(ar)

	info := mgr.Start("/a", "c")
	require.NoError(t, mgr.Complete(context.Background(), info.ID))

	require.Len(t, ar.infos, 1)
	assert.Equal(t, info.ID, ar.infos[0].ID)
	assert.GreaterOrEqual(t, ar.completedMs[0], info.StartMs)
}

func TestOnChangeFires(t *testing.T) {
	mgr := NewManager(10)
	calls := 0
	mgr.SetOnChange(func() { calls++ })

	info := mgr.Start("/a", "c")
	require.NoError(t, mgr.Complete(context.Background(), info.ID))
	assert.Equal(t, 2, calls)
}
