package queue

import (
	"context"

	"clinic-queue-server/internal/models"
)

// BackendMode says which persistence backend is currently active. It is
// derived state, recomputed on every operation: remote when a service base
// URL is configured and a session token is available, local otherwise. A
// clinician can therefore move from local to remote mid-session (after
// login) without the engine migrating data.
type BackendMode string

const (
	ModeLocal  BackendMode = "local"
	ModeRemote BackendMode = "remote"
)

// backend is the operation set both persistence backends implement. The
// engine owns mode selection and delegates everything else here.
type backend interface {
	Add(ctx context.Context, doctorID string, intake models.QueueIntake) (models.QueueItem, error)
	SetStatus(ctx context.Context, doctorID, itemID string, status models.QueueStatus) error
	UpdateDetails(ctx context.Context, doctorID, itemID string, upd models.QueueItemUpdate) error
	Remove(ctx context.Context, doctorID, itemID string) error
	Snapshot(doctorID string) []models.QueueItem
	Load(ctx context.Context, doctorID string) ([]models.QueueItem, error)
}
