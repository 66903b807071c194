package display_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-queue-server/internal/display"
	"clinic-queue-server/internal/models"
)

func item(id string, status models.QueueStatus) models.QueueItem {
	it := models.QueueItem{Status: status}
	it.ID = id
	return it
}

func TestProjectionsOnEmptyQueue(t *testing.T) {
	var queue []models.QueueItem

	_, ok := display.Current(queue)
	assert.False(t, ok)
	_, ok = display.Next(queue)
	assert.False(t, ok)
	_, ok = display.LastCompleted(queue)
	assert.False(t, ok)
	assert.Empty(t, display.WaitingList(queue))
}

func TestProjections(t *testing.T) {
	queue := []models.QueueItem{
		item("done1", models.QueueCompleted),
		item("cur", models.QueueInProgress),
		item("w1", models.QueueWaiting),
		item("h1", models.QueueHold),
		item("done2", models.QueueCompleted),
		item("w2", models.QueueWaiting),
	}

	cur, ok := display.Current(queue)
	require.True(t, ok)
	assert.Equal(t, "cur", cur.ID)

	next, ok := display.Next(queue)
	require.True(t, ok)
	assert.Equal(t, "w1", next.ID)

	last, ok := display.LastCompleted(queue)
	require.True(t, ok)
	assert.Equal(t, "done2", last.ID)

	waiting := display.WaitingList(queue)
	require.Len(t, waiting, 3)
	assert.Equal(t, "w1", waiting[0].ID)
	assert.Equal(t, "h1", waiting[1].ID)
	assert.Equal(t, "w2", waiting[2].ID)
}

// The queue model allows more than one in-progress item; the display simply
// shows the first.
func TestCurrentTakesFirstInProgress(t *testing.T) {
	queue := []models.QueueItem{
		item("a", models.QueueInProgress),
		item("b", models.QueueInProgress),
	}
	cur, ok := display.Current(queue)
	require.True(t, ok)
	assert.Equal(t, "a", cur.ID)
}
