package queue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-queue-server/internal/models"
	"clinic-queue-server/internal/queue"
)

func collect(e *queue.Engine) (<-chan []models.QueueItem, func()) {
	updates := make(chan []models.QueueItem, 64)
	cancel := e.Subscribe(doc, func(items []models.QueueItem) {
		select {
		case updates <- items:
		default:
		}
	})
	return updates, cancel
}

func waitForUpdate(t *testing.T, updates <-chan []models.QueueItem) []models.QueueItem {
	t.Helper()
	select {
	case items := <-updates:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestSubscribeDeliversOnTick(t *testing.T) {
	e := newLocalEngine(t)
	add(t, e, "A", "A")

	updates, cancel := collect(e)
	defer cancel()

	got := waitForUpdate(t, updates)
	require.Len(t, got, 1)
	assert.Equal(t, models.QueueWaiting, got[0].Status)
}

func TestSubscribeRedeliversUnchangedSnapshot(t *testing.T) {
	e := newLocalEngine(t)
	add(t, e, "A", "A")

	updates, cancel := collect(e)
	defer cancel()

	// No writes between ticks; delivery is not diffed
	first := waitForUpdate(t, updates)
	second := waitForUpdate(t, updates)
	assert.Equal(t, first, second)
}

func TestSubscribeFiresOnCrossViewWrite(t *testing.T) {
	e := newLocalEngine(t)

	updates, cancel := collect(e)
	defer cancel()

	// A write lands on the next delivery without waiting a full tick
	added := add(t, e, "A", "A")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case items := <-updates:
			if len(items) == 1 && items[0].ID == added.ID {
				return
			}
		case <-deadline:
			t.Fatal("write never reached the subscriber")
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	e := newLocalEngine(t)
	add(t, e, "A", "A")

	updates, cancel := collect(e)
	waitForUpdate(t, updates)

	cancel()
	cancel() // idempotent

	// Drain anything delivered before the cancel took effect, then verify
	// silence across several poll intervals.
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case <-updates:
			continue
		default:
		}
		break
	}

	add(t, e, "B", "B")
	time.Sleep(150 * time.Millisecond)
	select {
	case items := <-updates:
		t.Fatalf("delivery after unsubscribe: %d items", len(items))
	default:
	}
}

func TestTwoSubscribersAreIndependent(t *testing.T) {
	e := newLocalEngine(t)
	add(t, e, "A", "A")

	first, cancelFirst := collect(e)
	second, cancelSecond := collect(e)
	defer cancelSecond()

	waitForUpdate(t, first)
	waitForUpdate(t, second)

	cancelFirst()
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case <-first:
			continue
		default:
		}
		break
	}

	// The remaining subscription keeps receiving
	add(t, e, "B", "B")
	got := waitForUpdate(t, second)
	for len(got) != 2 {
		got = waitForUpdate(t, second)
	}
	require.Len(t, got, 2)
}
