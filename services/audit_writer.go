package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yeremiapane/hotel-ops/live"
	"github.com/yeremiapane/hotel-ops/metrics"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

const (
	DefaultAuditBufferSize = 256
	auditWriteTimeout      = 5 * time.Second
)

// Recorder accepts audit entries for the mutation that just happened.
// Record must never block the caller or report failure to it.
type Recorder interface {
	Record(ctx context.Context, entry models.Log)
}

type LogSink interface {
	CreateLog(ctx context.Context, entry *models.Log) error
}

type Broadcaster interface {
	Broadcast(msg live.Message)
}

// AuditWriter queues audit entries on a buffered channel and persists them
// from a single background worker. Persisted entries are forwarded to the
// live hub. When the buffer is full the entry is dropped and logged.
type AuditWriter struct {
	sink    LogSink
	hub     Broadcaster
	metrics *metrics.Metrics

	queue   chan models.Log
	done    chan struct{}
	pending sync.WaitGroup

	mutex   sync.RWMutex
	started bool
	closed  bool
}

func NewAuditWriter(sink LogSink, hub Broadcaster, m *metrics.Metrics, bufferSize int) *AuditWriter {
	if bufferSize <= 0 {
		bufferSize = DefaultAuditBufferSize
	}
	return &AuditWriter{
		sink:    sink,
		hub:     hub,
		metrics: m,
		queue:   make(chan models.Log, bufferSize),
		done:    make(chan struct{}),
	}
}

func (w *AuditWriter) Start() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true

	go func() {
		defer close(w.done)
		for entry := range w.queue {
			w.write(entry)
			w.pending.Done()
		}
	}()
	utils.InfoLogger.Printf("Audit writer started (buffer=%d)", cap(w.queue))
}

func (w *AuditWriter) Record(_ context.Context, entry models.Log) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()

	if w.closed {
		w.drop(entry, "writer stopped")
		return
	}

	w.pending.Add(1)
	select {
	case w.queue <- entry:
	default:
		w.pending.Done()
		w.drop(entry, "buffer full")
	}
}

// Flush waits until every queued entry has been handled.
func (w *AuditWriter) Flush() {
	w.pending.Wait()
}

// Stop refuses new entries and waits for the queue to drain or ctx to end.
func (w *AuditWriter) Stop(ctx context.Context) error {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	started := w.started
	w.mutex.Unlock()

	if !started {
		for entry := range w.queue {
			w.pending.Done()
			w.drop(entry, "writer never started")
		}
		return nil
	}

	select {
	case <-w.done:
		utils.InfoLogger.Println("Audit writer drained")
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("audit writer did not drain in time"), ctx.Err())
	}
}

func (w *AuditWriter) write(entry models.Log) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := w.sink.CreateLog(ctx, &entry); err != nil {
		utils.ErrorLogger.Errorf("Error writing audit entry (%s): %v", entry.Details, err)
		w.metrics.ObserveAudit(metrics.AuditFailed)
		return
	}
	w.metrics.ObserveAudit(metrics.AuditWritten)

	if w.hub != nil {
		w.hub.Broadcast(live.Message{
			Event:     entry.Event(),
			Data:      entry,
			AdminOnly: entry.Target == models.TargetUser,
		})
	}
}

func (w *AuditWriter) drop(entry models.Log, reason string) {
	utils.ErrorLogger.Errorf("Audit entry dropped (%s): %s %s %s", reason, entry.Action, entry.Target, entry.Details)
	w.metrics.ObserveAudit(metrics.AuditDropped)
}
