package store

import (
	"sync"

	"clinic-queue-server/internal/models"
)

// Bus is an in-process change broadcast keyed by clinician id. Every store
// write publishes the written key and the new snapshot, so other open views
// observing the same store re-render without waiting for their next poll.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func([]models.QueueItem)
}

// NewBus creates an empty broadcast bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func([]models.QueueItem))}
}

// Subscribe registers fn for writes under doctorID and returns a cancel
// function. Cancel is idempotent.
func (b *Bus) Subscribe(doctorID string, fn func([]models.QueueItem)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	if b.subs[doctorID] == nil {
		b.subs[doctorID] = make(map[int]func([]models.QueueItem))
	}
	b.subs[doctorID][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[doctorID], id)
	}
}

// Publish delivers the new snapshot to every subscriber registered for
// doctorID. Callbacks run outside the bus lock so they may re-enter the
// store.
func (b *Bus) Publish(doctorID string, items []models.QueueItem) {
	b.mu.Lock()
	fns := make([]func([]models.QueueItem), 0, len(b.subs[doctorID]))
	for _, fn := range b.subs[doctorID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(items)
	}
}
