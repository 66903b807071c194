package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"clinic-queue-server/internal/models"
)

// Fallback messages when the server fails without saying why.
const (
	msgLoadFailed   = "queue could not be loaded"
	msgAddFailed    = "adding to queue failed"
	msgUpdateFailed = "updating queue item failed"
	msgRemoveFailed = "removing from queue failed"
)

// remoteBackend is a thin client to the server-held queue. The server is the
// ordering authority; this side only mirrors what it returns into the
// engine-owned cache, merging by item id.
type remoteBackend struct {
	baseURL string
	token   string
	client  *http.Client
	cache   *remoteCache
}

// apiEnvelope matches the queue service's response shape.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do performs one API call and decodes the envelope's data into out (when
// out is non-nil). A 404 maps to errItemNotFound; any other failure carries
// the server's message when it sent one.
func (b *remoteBackend) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.token)

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding queue service response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errItemNotFound
	}
	if !env.Success || resp.StatusCode >= 400 {
		msg := ""
		if env.Error != nil {
			msg = env.Error.Message
		}
		return &WriteError{Op: method, Message: msg}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding queue service data: %w", err)
		}
	}
	return nil
}

func (b *remoteBackend) Add(ctx context.Context, doctorID string, intake models.QueueIntake) (models.QueueItem, error) {
	var item models.QueueItem
	if err := b.do(ctx, http.MethodPost, "/auth/queue/add/", intake, &item); err != nil {
		return models.QueueItem{}, remoteWriteErr("add", msgAddFailed, err)
	}
	b.cache.upsert(doctorID, item)
	return item, nil
}

func (b *remoteBackend) SetStatus(ctx context.Context, doctorID, itemID string, status models.QueueStatus) error {
	var item models.QueueItem
	upd := models.QueueItemUpdate{Status: &status}
	err := b.do(ctx, http.MethodPatch, "/auth/queue/"+itemID+"/", upd, &item)
	if err == errItemNotFound {
		return nil
	}
	if err != nil {
		return remoteWriteErr("update", msgUpdateFailed, err)
	}
	b.cache.upsert(doctorID, item)
	return nil
}

func (b *remoteBackend) UpdateDetails(ctx context.Context, doctorID, itemID string, upd models.QueueItemUpdate) error {
	upd.Status = nil
	var item models.QueueItem
	err := b.do(ctx, http.MethodPatch, "/auth/queue/"+itemID+"/", upd, &item)
	if err == errItemNotFound {
		return nil
	}
	if err != nil {
		return remoteWriteErr("update", msgUpdateFailed, err)
	}
	b.cache.upsert(doctorID, item)
	return nil
}

func (b *remoteBackend) Remove(ctx context.Context, doctorID, itemID string) error {
	err := b.do(ctx, http.MethodDelete, "/auth/queue/"+itemID+"/", nil, nil)
	if err == errItemNotFound {
		return nil
	}
	if err != nil {
		return remoteWriteErr("remove", msgRemoveFailed, err)
	}
	b.cache.drop(doctorID, itemID)
	return nil
}

// Snapshot serves reads from the engine-owned cache. It is empty until the
// first Load.
func (b *remoteBackend) Snapshot(doctorID string) []models.QueueItem {
	return b.cache.snapshot(doctorID)
}

// Load fetches the full list and replaces the cache wholesale.
func (b *remoteBackend) Load(ctx context.Context, doctorID string) ([]models.QueueItem, error) {
	var items []models.QueueItem
	if err := b.do(ctx, http.MethodGet, "/auth/queue/", nil, &items); err != nil {
		return nil, remoteWriteErr("load", msgLoadFailed, err)
	}
	if items == nil {
		items = []models.QueueItem{}
	}
	b.cache.replace(doctorID, items)
	return b.cache.snapshot(doctorID), nil
}

// remoteWriteErr normalizes any failure into a WriteError carrying the best
// available message: the server's own when present, the generic fallback
// otherwise. The cache is never touched on failure.
func remoteWriteErr(op, fallback string, err error) error {
	if we, ok := err.(*WriteError); ok {
		if we.Message == "" {
			we.Message = fallback
		}
		we.Op = op
		return we
	}
	return &WriteError{Op: op, Message: fallback, Err: err}
}
