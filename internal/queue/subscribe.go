package queue

import (
	"context"
	"sync"
	"time"

	"clinic-queue-server/internal/models"
)

// Subscribe registers onUpdate for periodic snapshot delivery and returns an
// unsubscribe function.
//
// There is no push transport. In local mode the subscription fires on every
// store write from any view plus a short fixed tick; in remote mode it polls
// the server on a longer tick (a network round trip each time). Delivery is
// not diffed: an unchanged snapshot is still redelivered on every tick. Each
// subscription delivers snapshots in non-decreasing recency order; nothing
// is guaranteed between two different subscriptions.
//
// Unsubscribe is idempotent, stops the timer and the store listener, and
// suppresses delivery of any in-flight fetch that completes afterwards.
func (e *Engine) Subscribe(doctorID string, onUpdate func([]models.QueueItem)) func() {
	stop := make(chan struct{})
	var once sync.Once

	// deliverMu serializes deliveries from the tick goroutine and the store
	// listener, which also keeps each delivered snapshot at least as recent
	// as the previous one.
	var deliverMu sync.Mutex
	deliver := func(items []models.QueueItem) {
		deliverMu.Lock()
		defer deliverMu.Unlock()
		select {
		case <-stop:
			return
		default:
		}
		onUpdate(items)
	}

	// Store writes from other views land here. The payload is ignored in
	// favor of a fresh read so a slow listener can never deliver a snapshot
	// older than one a tick already delivered.
	cancelBus := e.store.Subscribe(doctorID, func([]models.QueueItem) {
		deliver(e.store.Read(doctorID))
	})

	go func() {
		for {
			timer := time.NewTimer(e.pollInterval())
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C:
			}

			if e.Mode() == ModeRemote {
				items, err := e.LoadFromServer(context.Background(), doctorID)
				if err != nil {
					e.log.Warn().Err(err).Str("doctor", doctorID).Msg("queue poll failed")
					continue
				}
				deliver(items)
			} else {
				deliver(e.Get(doctorID))
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
			cancelBus()
		})
	}
}

// pollInterval follows the current mode: remote polling is slower because
// every tick is a network round trip.
func (e *Engine) pollInterval() time.Duration {
	if e.Mode() == ModeRemote {
		if e.cfg.RemotePollInterval > 0 {
			return e.cfg.RemotePollInterval
		}
		return 5 * time.Second
	}
	if e.cfg.LocalPollInterval > 0 {
		return e.cfg.LocalPollInterval
	}
	return 2 * time.Second
}
