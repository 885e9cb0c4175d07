package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/sitechat/widget-ai-platform/internal/observability/metrics"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// SessionStore is the persistence surface Tracker needs.
type SessionStore interface {
	UpsertTurn(ctx context.Context, tenantID, visitorID, message string) error
	UpsertVisitorInfo(ctx context.Context, tenantID, visitorID, name, email string) error
	UpsertVisitorIP(ctx context.Context, tenantID, visitorID, ip string) error
}

type eventKind int

const (
	eventTurn eventKind = iota
	eventStart
)

type turnEvent struct {
	kind      eventKind
	tenantID  string
	visitorID string
	message   string
	ip        string
}

const storeTimeout = 5 * time.Second

// Tracker records per-turn analytics off the reply path. Turns go through a
// buffered channel drained by a small worker pool; when the buffer is full
// the event is dropped rather than delaying the visitor's reply. Visitor
// contact info is written synchronously since it arrives at most once per
// conversation.
type Tracker struct {
	store   SessionStore
	logger  *logging.Logger
	metrics *metrics.ChatMetrics

	mu     sync.RWMutex
	closed bool
	events chan turnEvent
	wg     sync.WaitGroup
}

// NewTracker starts the worker pool. workers and buffer fall back to 2 and
// 256 when non-positive.
func NewTracker(store SessionStore, workers, buffer int, logger *logging.Logger, m *metrics.ChatMetrics) *Tracker {
	if store == nil {
		panic("analytics: session store cannot be nil")
	}
	if workers <= 0 {
		workers = 2
	}
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = logging.Default()
	}

	t := &Tracker{
		store:   store,
		logger:  logger,
		metrics: m,
		events:  make(chan turnEvent, buffer),
	}
	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go t.worker()
	}
	return t
}

// SubmitTurn enqueues one turn for recording. It never blocks; false means
// the event was dropped because the buffer was full or the tracker closed.
func (t *Tracker) SubmitTurn(tenantID, visitorID, message string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return false
	}
	return t.enqueue(turnEvent{kind: eventTurn, tenantID: tenantID, visitorID: visitorID, message: message})
}

// SubmitStart enqueues a session-start event carrying the visitor's address.
// Like SubmitTurn it never blocks.
func (t *Tracker) SubmitStart(tenantID, visitorID, ip string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return false
	}
	return t.enqueue(turnEvent{kind: eventStart, tenantID: tenantID, visitorID: visitorID, ip: ip})
}

// enqueue requires the read lock to be held.
func (t *Tracker) enqueue(ev turnEvent) bool {
	select {
	case t.events <- ev:
		t.metrics.ObserveAnalyticsEvent("enqueued")
		return true
	default:
		t.metrics.ObserveAnalyticsEvent("dropped")
		return false
	}
}

// RecordVisitorInfo writes contact details synchronously.
func (t *Tracker) RecordVisitorInfo(ctx context.Context, tenantID, visitorID, name, email string) error {
	err := t.store.UpsertVisitorInfo(ctx, tenantID, visitorID, name, email)
	if err != nil {
		t.metrics.ObserveAnalyticsEvent("failed")
		return err
	}
	t.metrics.ObserveAnalyticsEvent("recorded")
	return nil
}

// Close stops accepting new turns and waits for the workers to drain the
// buffer.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.events)
	t.mu.Unlock()

	t.wg.Wait()
}

func (t *Tracker) worker() {
	defer t.wg.Done()
	for ev := range t.events {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		var err error
		switch ev.kind {
		case eventStart:
			err = t.store.UpsertVisitorIP(ctx, ev.tenantID, ev.visitorID, ev.ip)
		default:
			err = t.store.UpsertTurn(ctx, ev.tenantID, ev.visitorID, ev.message)
		}
		cancel()
		if err != nil {
			t.metrics.ObserveAnalyticsEvent("failed")
			t.logger.Error("failed to record turn",
				"tenant_id", ev.tenantID, "visitor_id", ev.visitorID, "error", err)
			continue
		}
		t.metrics.ObserveAnalyticsEvent("recorded")
	}
}
