package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type memoryStore struct {
	mu       sync.Mutex
	turns    map[string]int
	contacts map[string]string
	ips      map[string]string
	err      error
	block    chan struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		turns:    make(map[string]int),
		contacts: make(map[string]string),
		ips:      make(map[string]string),
	}
}

func (m *memoryStore) UpsertTurn(_ context.Context, tenantID, visitorID, _ string) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.turns[tenantID+"/"+visitorID]++
	return nil
}

func (m *memoryStore) UpsertVisitorInfo(_ context.Context, tenantID, visitorID, name, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.contacts[tenantID+"/"+visitorID] = name + "/" + email
	return nil
}

func (m *memoryStore) UpsertVisitorIP(_ context.Context, tenantID, visitorID, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, seen := m.ips[tenantID+"/"+visitorID]; !seen {
		m.ips[tenantID+"/"+visitorID] = ip
	}
	return nil
}

func (m *memoryStore) turnCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turns[key]
}

func TestTrackerRecordsConcurrentTurns(t *testing.T) {
	store := newMemoryStore()
	tracker := NewTracker(store, 4, 256, nil, nil)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !tracker.SubmitTurn("tenant-1", "visitor-1", "hello") {
				t.Error("turn dropped with room in the buffer")
			}
		}()
	}
	wg.Wait()
	tracker.Close()

	if len(store.turns) != 1 {
		t.Fatalf("expected a single session key, got %d", len(store.turns))
	}
	if got := store.turnCount("tenant-1/visitor-1"); got != n {
		t.Fatalf("recorded %d turns, want %d", got, n)
	}
}

func TestTrackerDropsWhenFull(t *testing.T) {
	store := newMemoryStore()
	store.block = make(chan struct{})
	tracker := NewTracker(store, 1, 1, nil, nil)

	ok := 0
	for i := 0; i < 3; i++ {
		if tracker.SubmitTurn("tenant-1", "visitor-1", "hello") {
			ok++
		}
	}
	if ok == 3 {
		t.Error("expected at least one drop with a full buffer")
	}

	close(store.block)
	tracker.Close()
}

func TestTrackerSubmitAfterClose(t *testing.T) {
	tracker := NewTracker(newMemoryStore(), 1, 8, nil, nil)
	tracker.Close()
	if tracker.SubmitTurn("tenant-1", "visitor-1", "hello") {
		t.Error("submit accepted after close")
	}
	// Double close must not panic.
	tracker.Close()
}

func TestTrackerSubmitStart(t *testing.T) {
	store := newMemoryStore()
	tracker := NewTracker(store, 1, 8, nil, nil)

	if !tracker.SubmitStart("tenant-1", "visitor-1", "203.0.113.9") {
		t.Fatal("start event dropped")
	}
	tracker.Close()

	store.mu.Lock()
	got := store.ips["tenant-1/visitor-1"]
	store.mu.Unlock()
	if got != "203.0.113.9" {
		t.Errorf("stored ip = %q", got)
	}
}

func TestTrackerRecordVisitorInfo(t *testing.T) {
	store := newMemoryStore()
	tracker := NewTracker(store, 1, 8, nil, nil)
	defer tracker.Close()

	if err := tracker.RecordVisitorInfo(context.Background(), "tenant-1", "visitor-1", "Jane", "jane@example.com"); err != nil {
		t.Fatalf("RecordVisitorInfo returned error: %v", err)
	}
	store.mu.Lock()
	got := store.contacts["tenant-1/visitor-1"]
	store.mu.Unlock()
	if got != "Jane/jane@example.com" {
		t.Errorf("stored contact = %q", got)
	}
}

func TestTrackerRecordVisitorInfoError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("db down")
	tracker := NewTracker(store, 1, 8, nil, nil)
	defer tracker.Close()

	if err := tracker.RecordVisitorInfo(context.Background(), "tenant-1", "visitor-1", "Jane", ""); err == nil {
		t.Fatal("expected error")
	}
}
