// Package queue implements the patient queue engine: ordering and
// status-transition rules, ticket issuance, backend selection between a
// remote queue service and a local durable store, and snapshot delivery to
// subscribers.
package queue

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"clinic-queue-server/internal/config"
	"clinic-queue-server/internal/models"
	"clinic-queue-server/internal/store"
)

// TokenSource supplies the current session credential. An empty string means
// no session, which keeps the engine in local mode.
type TokenSource func() string

// Engine is the public queue API. One engine serves one clinician session;
// operations are safe for concurrent use.
type Engine struct {
	cfg    config.QueueConfig
	tokens TokenSource
	store  *store.Store
	client *http.Client
	log    zerolog.Logger
	cache  *remoteCache
}

// New creates an engine over the given local store. tokens may be nil for a
// local-only engine.
func New(cfg config.QueueConfig, st *store.Store, tokens TokenSource, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		tokens: tokens,
		store:  st,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
		cache:  newRemoteCache(),
	}
}

// Mode recomputes the active backend mode. It is evaluated per operation,
// never cached, so login mid-session switches the engine to remote without
// restart.
func (e *Engine) Mode() BackendMode {
	if e.cfg.APIBaseURL != "" && e.tokens != nil && e.tokens() != "" {
		return ModeRemote
	}
	return ModeLocal
}

// backend picks the concrete backend for the current mode. Remote backends
// are per-call values carrying the current token; the cache they share is
// engine state.
func (e *Engine) backend() backend {
	if e.Mode() == ModeRemote {
		return &remoteBackend{
			baseURL: e.cfg.APIBaseURL,
			token:   e.tokens(),
			client:  e.client,
			cache:   e.cache,
		}
	}
	return newLocalBackend(e.store)
}

// Add creates a new waiting patient at the end of the queue and returns it.
// The ticket number is issued client-side in local mode and server-side in
// remote mode.
func (e *Engine) Add(ctx context.Context, doctorID string, intake models.QueueIntake) (models.QueueItem, error) {
	return e.backend().Add(ctx, doctorID, intake)
}

// SetStatus transitions one item. Moving to waiting reinserts the item with
// returning-patient priority; the other targets keep its position. A missing
// item is silently ignored.
func (e *Engine) SetStatus(ctx context.Context, doctorID, itemID string, status models.QueueStatus) error {
	return e.backend().SetStatus(ctx, doctorID, itemID, status)
}

// UpdateDetails partially updates an item's descriptive fields; the display
// name follows the name fields. A missing item is silently ignored.
func (e *Engine) UpdateDetails(ctx context.Context, doctorID, itemID string, upd models.QueueItemUpdate) error {
	return e.backend().UpdateDetails(ctx, doctorID, itemID, upd)
}

// Remove deletes one item; relative order of the rest is preserved.
func (e *Engine) Remove(ctx context.Context, doctorID, itemID string) error {
	return e.backend().Remove(ctx, doctorID, itemID)
}

// Get returns the current snapshot. It never fails: unreadable state is an
// empty queue. In remote mode this is the in-memory cache, which is empty
// until the first LoadFromServer.
func (e *Engine) Get(doctorID string) []models.QueueItem {
	return e.backend().Snapshot(doctorID)
}

// LoadFromServer refreshes the snapshot from the active backend. In remote
// mode it fetches the full list and replaces the cache wholesale; in local
// mode it is equivalent to Get.
func (e *Engine) LoadFromServer(ctx context.Context, doctorID string) ([]models.QueueItem, error) {
	return e.backend().Load(ctx, doctorID)
}

// remoteCache is the engine-owned in-memory snapshot per clinician used in
// remote mode. All access goes through its methods; snapshots returned to
// callers are copies.
type remoteCache struct {
	mu    sync.Mutex
	items map[string][]models.QueueItem
}

func newRemoteCache() *remoteCache {
	return &remoteCache{items: make(map[string][]models.QueueItem)}
}

func (c *remoteCache) snapshot(doctorID string) []models.QueueItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.QueueItem, len(c.items[doctorID]))
	copy(out, c.items[doctorID])
	return out
}

func (c *remoteCache) replace(doctorID string, items []models.QueueItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[doctorID] = items
}

// upsert merges one server-returned item by id: identity is preserved and
// in-place updates keep their slot, while unknown items are appended.
// Reordering is delegated to the server and picked up on the next full load.
func (c *remoteCache) upsert(doctorID string, item models.QueueItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.items[doctorID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return
		}
	}
	c.items[doctorID] = append(items, item)
}

func (c *remoteCache) drop(doctorID, itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.items[doctorID]
	for i := range items {
		if items[i].ID == itemID {
			c.items[doctorID] = append(items[:i], items[i+1:]...)
			return
		}
	}
}
