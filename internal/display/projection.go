// Package display holds the read-side projections the reception screen and
// the waiting-room display derive from a queue snapshot. These are pure
// functions over the ordered list; the engine guarantees none of them.
package display

import "clinic-queue-server/internal/models"

// Current returns the patient being seen now: the first in-progress item.
func Current(queue []models.QueueItem) (models.QueueItem, bool) {
	for _, it := range queue {
		if it.Status == models.QueueInProgress {
			return it, true
		}
	}
	return models.QueueItem{}, false
}

// Next returns the first waiting patient.
func Next(queue []models.QueueItem) (models.QueueItem, bool) {
	for _, it := range queue {
		if it.Status == models.QueueWaiting {
			return it, true
		}
	}
	return models.QueueItem{}, false
}

// WaitingList returns all waiting and on-hold patients in queue order, as
// shown on the waiting-room display.
func WaitingList(queue []models.QueueItem) []models.QueueItem {
	out := make([]models.QueueItem, 0, len(queue))
	for _, it := range queue {
		if it.Status == models.QueueWaiting || it.Status == models.QueueHold {
			out = append(out, it)
		}
	}
	return out
}

// LastCompleted returns the most recently listed completed patient.
func LastCompleted(queue []models.QueueItem) (models.QueueItem, bool) {
	for i := len(queue) - 1; i >= 0; i-- {
		if queue[i].Status == models.QueueCompleted {
			return queue[i], true
		}
	}
	return models.QueueItem{}, false
}
