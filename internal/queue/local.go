package queue

import (
	"context"

	"github.com/google/uuid"

	"clinic-queue-server/internal/models"
	"clinic-queue-server/internal/store"
)

// localBackend keeps the queue in the durable per-clinician store and owns
// the ordering rules: the engine is the ordering authority in local mode.
type localBackend struct {
	store *store.Store
}

func newLocalBackend(st *store.Store) *localBackend {
	return &localBackend{store: st}
}

// Add appends a new waiting patient with the next ticket number. Tickets are
// max+1 over the current queue: unique, strictly increasing, never reused
// after removal.
func (b *localBackend) Add(_ context.Context, doctorID string, intake models.QueueIntake) (models.QueueItem, error) {
	queue := b.store.Read(doctorID)

	maxTicket := 0
	for _, it := range queue {
		if it.TicketNumber > maxTicket {
			maxTicket = it.TicketNumber
		}
	}

	item := models.QueueItem{
		TicketNumber: maxTicket + 1,
		FirstName:    intake.FirstName,
		LastName:     intake.LastName,
		Age:          intake.Age,
		Address:      intake.Address,
		Complaints:   intake.Complaints,
		ArrivalTime:  intake.ArrivalTime,
		Status:       models.QueueWaiting,
	}
	item.ID = uuid.New().String()
	item.DeriveName()

	if err := b.store.Write(doctorID, append(queue, item)); err != nil {
		return models.QueueItem{}, writeErr("add", "", err)
	}
	return item, nil
}

// SetStatus applies the transition rules. A missing item is a silent no-op:
// status changes race with concurrent removal.
func (b *localBackend) SetStatus(_ context.Context, doctorID, itemID string, status models.QueueStatus) error {
	queue := b.store.Read(doctorID)
	idx := indexOf(queue, itemID)
	if idx == -1 {
		return nil
	}

	var next []models.QueueItem
	if status == models.QueueWaiting {
		next = reinsertWaiting(queue, idx)
	} else {
		// In-place update for in-progress, hold and completed: the item keeps
		// its slot relative to everyone else.
		next = make([]models.QueueItem, len(queue))
		copy(next, queue)
		next[idx].Status = status
	}

	if err := b.store.Write(doctorID, next); err != nil {
		return writeErr("update", "", err)
	}
	return nil
}

// reinsertWaiting moves queue[idx] back to waiting with returning-patient
// priority: it lands immediately before the first item that is currently
// waiting, or at the very front of the queue when nobody is waiting.
func reinsertWaiting(queue []models.QueueItem, idx int) []models.QueueItem {
	item := queue[idx]
	item.Status = models.QueueWaiting

	rest := make([]models.QueueItem, 0, len(queue)-1)
	rest = append(rest, queue[:idx]...)
	rest = append(rest, queue[idx+1:]...)

	at := 0
	for i, it := range rest {
		if it.Status == models.QueueWaiting {
			at = i
			break
		}
	}

	next := make([]models.QueueItem, 0, len(queue))
	next = append(next, rest[:at]...)
	next = append(next, item)
	next = append(next, rest[at:]...)
	return next
}

// UpdateDetails patches the descriptive fields and re-derives the display
// name. Position never changes; a missing item is a silent no-op.
func (b *localBackend) UpdateDetails(_ context.Context, doctorID, itemID string, upd models.QueueItemUpdate) error {
	queue := b.store.Read(doctorID)
	idx := indexOf(queue, itemID)
	if idx == -1 {
		return nil
	}

	next := make([]models.QueueItem, len(queue))
	copy(next, queue)
	upd.ApplyDetails(&next[idx])

	if err := b.store.Write(doctorID, next); err != nil {
		return writeErr("update", "", err)
	}
	return nil
}

// Remove deletes the item; everyone else keeps their relative order.
func (b *localBackend) Remove(_ context.Context, doctorID, itemID string) error {
	queue := b.store.Read(doctorID)
	idx := indexOf(queue, itemID)
	if idx == -1 {
		return nil
	}

	next := make([]models.QueueItem, 0, len(queue)-1)
	next = append(next, queue[:idx]...)
	next = append(next, queue[idx+1:]...)

	if err := b.store.Write(doctorID, next); err != nil {
		return writeErr("remove", "", err)
	}
	return nil
}

// Snapshot is a fresh read of the durable store.
func (b *localBackend) Snapshot(doctorID string) []models.QueueItem {
	return b.store.Read(doctorID)
}

// Load is equivalent to Snapshot in local mode.
func (b *localBackend) Load(_ context.Context, doctorID string) ([]models.QueueItem, error) {
	return b.store.Read(doctorID), nil
}

func indexOf(queue []models.QueueItem, itemID string) int {
	for i, it := range queue {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}
