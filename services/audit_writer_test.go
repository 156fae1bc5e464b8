package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-ops/live"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

type memorySink struct {
	mu      sync.Mutex
	entries []models.Log
	fail    bool
	block   chan struct{}
}

func (s *memorySink) CreateLog(_ context.Context, entry *models.Log) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store unavailable")
	}
	entry.ID = "log-" + entry.Details
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memorySink) all() []models.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Log(nil), s.entries...)
}

type recordingHub struct {
	mu       sync.Mutex
	messages []live.Message
}

func (h *recordingHub) Broadcast(msg live.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

func (h *recordingHub) events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.messages))
	for _, m := range h.messages {
		out = append(out, m.Event)
	}
	return out
}

func TestAuditWriter_PersistsAndBroadcastsInOrder(t *testing.T) {
	utils.InitLogger()
	sink := &memorySink{}
	hub := &recordingHub{}
	w := NewAuditWriter(sink, hub, nil, 8)
	w.Start()

	ctx := context.Background()
	w.Record(ctx, models.Log{Action: models.ActionCreate, Target: models.TargetRoom, UserID: "u1", Details: "a"})
	w.Record(ctx, models.Log{Action: models.ActionUpdate, Target: models.TargetIssue, UserID: "u1", Details: "b"})
	w.Record(ctx, models.Log{Action: models.ActionDelete, UserID: "u1", Details: "c"})
	w.Flush()

	entries := sink.all()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Details)
	assert.Equal(t, "c", entries[2].Details)
	assert.Equal(t, []string{"room_create", "issue_update", "delete"}, hub.events())

	require.NoError(t, w.Stop(ctx))
}

func TestAuditWriter_FailedWriteIsSwallowed(t *testing.T) {
	utils.InitLogger()
	var logged bytes.Buffer
	utils.ErrorLogger.SetOutput(&logged)

	sink := &memorySink{fail: true}
	hub := &recordingHub{}
	w := NewAuditWriter(sink, hub, nil, 4)
	w.Start()

	assert.NotPanics(t, func() {
		w.Record(context.Background(), models.Log{Action: models.ActionCreate, Details: "x"})
	})
	w.Flush()

	assert.Empty(t, sink.all())
	assert.Empty(t, hub.events(), "nothing is broadcast for an entry that was not persisted")
	require.NoError(t, w.Stop(context.Background()))

	out := logged.String()
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "Error writing audit entry (x): store unavailable")
}

func TestAuditWriter_DroppedEntryIsLogged(t *testing.T) {
	utils.InitLogger()
	var logged bytes.Buffer
	utils.ErrorLogger.SetOutput(&logged)

	w := NewAuditWriter(&memorySink{}, nil, nil, 4)
	w.Start()
	require.NoError(t, w.Stop(context.Background()))

	w.Record(context.Background(), models.Log{Action: models.ActionDelete, Target: models.TargetRoom, Details: "Deleted room 101"})
	assert.Contains(t, logged.String(), "Audit entry dropped (writer stopped)")
}

func TestAuditWriter_UserEntriesAreAdminOnly(t *testing.T) {
	utils.InitLogger()
	hub := &recordingHub{}
	w := NewAuditWriter(&memorySink{}, hub, nil, 4)
	w.Start()

	ctx := context.Background()
	w.Record(ctx, models.Log{Action: models.ActionCreate, Target: models.TargetUser, Details: "Created user: budi with role: admin"})
	w.Record(ctx, models.Log{Action: models.ActionCreate, Target: models.TargetRoom, Details: "Added room 101"})
	w.Flush()
	require.NoError(t, w.Stop(ctx))

	hub.mu.Lock()
	defer hub.mu.Unlock()
	require.Len(t, hub.messages, 2)
	assert.Equal(t, "user_create", hub.messages[0].Event)
	assert.True(t, hub.messages[0].AdminOnly)
	assert.False(t, hub.messages[1].AdminOnly)
}

func TestAuditWriter_FullBufferDropsWithoutBlocking(t *testing.T) {
	utils.InitLogger()
	sink := &memorySink{block: make(chan struct{})}
	w := NewAuditWriter(sink, nil, nil, 1)
	w.Start()

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		// first entry is picked up by the worker and blocks in the sink,
		// second fills the buffer, the rest are dropped
		for i := 0; i < 5; i++ {
			w.Record(ctx, models.Log{Action: models.ActionCreate, Details: string(rune('a' + i))})
			time.Sleep(5 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	close(sink.block)
	w.Flush()
	require.NoError(t, w.Stop(ctx))

	entries := sink.all()
	assert.GreaterOrEqual(t, len(entries), 1)
	assert.Less(t, len(entries), 5)
	assert.Equal(t, "a", entries[0].Details)
}

func TestAuditWriter_StopDrainsQueue(t *testing.T) {
	utils.InitLogger()
	sink := &memorySink{}
	w := NewAuditWriter(sink, nil, nil, 16)
	w.Start()

	for i := 0; i < 10; i++ {
		w.Record(context.Background(), models.Log{Action: models.ActionCreate, Details: "e"})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	assert.Len(t, sink.all(), 10)

	// entries after Stop are dropped, not panicking on a closed channel
	assert.NotPanics(t, func() {
		w.Record(context.Background(), models.Log{Action: models.ActionCreate, Details: "late"})
	})
	assert.Len(t, sink.all(), 10)
	assert.NoError(t, w.Stop(ctx))
}
