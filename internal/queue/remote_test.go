package queue_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-queue-server/internal/config"
	"clinic-queue-server/internal/models"
	"clinic-queue-server/internal/queue"
	"clinic-queue-server/internal/store"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeErrEnvelope(w http.ResponseWriter, status int, msg string) {
	env := envelope{Success: false}
	env.Error = &struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: status, Message: msg}
	writeEnvelope(w, status, env)
}

// fakeQueueService mimics the remote queue service: ordered list, server
// tickets, partial PATCH.
type fakeQueueService struct {
	items    []models.QueueItem
	failWith string // when set, every mutation fails with this message
}

func (s *fakeQueueService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/queue/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			writeErrEnvelope(w, http.StatusUnauthorized, "missing token")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/auth/queue/")
		switch {
		case rest == "" && r.Method == http.MethodGet:
			writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: s.items})

		case rest == "add/" && r.Method == http.MethodPost:
			if s.failWith != "" {
				writeErrEnvelope(w, http.StatusInternalServerError, s.failWith)
				return
			}
			var intake models.QueueIntake
			if err := json.NewDecoder(r.Body).Decode(&intake); err != nil {
				writeErrEnvelope(w, http.StatusBadRequest, err.Error())
				return
			}
			max := 0
			for _, it := range s.items {
				if it.TicketNumber > max {
					max = it.TicketNumber
				}
			}
			item := models.QueueItem{
				TicketNumber: max + 1,
				FirstName:    intake.FirstName,
				LastName:     intake.LastName,
				Age:          intake.Age,
				Status:       models.QueueWaiting,
			}
			item.ID = "srv-" + intake.FirstName
			item.DeriveName()
			s.items = append(s.items, item)
			writeEnvelope(w, http.StatusCreated, envelope{Success: true, Data: item})

		default:
			id := strings.TrimSuffix(rest, "/")
			idx := -1
			for i, it := range s.items {
				if it.ID == id {
					idx = i
				}
			}
			if s.failWith != "" {
				writeErrEnvelope(w, http.StatusInternalServerError, s.failWith)
				return
			}
			if idx == -1 {
				writeErrEnvelope(w, http.StatusNotFound, "not found")
				return
			}
			switch r.Method {
			case http.MethodPatch:
				var upd models.QueueItemUpdate
				if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
					writeErrEnvelope(w, http.StatusBadRequest, err.Error())
					return
				}
				if upd.Status != nil {
					s.items[idx].Status = *upd.Status
				}
				upd.ApplyDetails(&s.items[idx])
				writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: s.items[idx]})
			case http.MethodDelete:
				s.items = append(s.items[:idx], s.items[idx+1:]...)
				writeEnvelope(w, http.StatusOK, envelope{Success: true})
			default:
				writeErrEnvelope(w, http.StatusMethodNotAllowed, "method not allowed")
			}
		}
	})
	return mux
}

func newRemoteEngine(t *testing.T, baseURL string) *queue.Engine {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	cfg := config.QueueConfig{
		APIBaseURL:         baseURL,
		LocalPollInterval:  20 * time.Millisecond,
		RemotePollInterval: 20 * time.Millisecond,
	}
	return queue.New(cfg, st, func() string { return "token-123" }, zerolog.Nop())
}

func TestRemoteModeSelection(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)

	token := ""
	e := queue.New(config.QueueConfig{APIBaseURL: "http://example.test"}, st,
		func() string { return token }, zerolog.Nop())

	// No session credential yet: local. Mode is re-evaluated per call, so
	// logging in flips the engine without restart.
	assert.Equal(t, queue.ModeLocal, e.Mode())
	token = "token-123"
	assert.Equal(t, queue.ModeRemote, e.Mode())
	token = ""
	assert.Equal(t, queue.ModeLocal, e.Mode())
}

func TestRemoteLoadAndGet(t *testing.T) {
	svc := &fakeQueueService{items: []models.QueueItem{}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	e := newRemoteEngine(t, srv.URL)
	ctx := context.Background()

	// Cache starts empty until the first full load
	assert.Empty(t, e.Get(doc))

	_, err := e.Add(ctx, doc, models.QueueIntake{FirstName: "Ali", LastName: "Valiyev", Age: "30"})
	require.NoError(t, err)
	_, err = e.Add(ctx, doc, models.QueueIntake{FirstName: "Bobur", LastName: "Karimov", Age: "41"})
	require.NoError(t, err)

	loaded, err := e.LoadFromServer(ctx, doc)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 1, loaded[0].TicketNumber, "ticket comes from the server")
	assert.Equal(t, 2, loaded[1].TicketNumber)
	assert.Equal(t, loaded, e.Get(doc))
}

func TestRemoteSetStatusMergesById(t *testing.T) {
	svc := &fakeQueueService{}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	e := newRemoteEngine(t, srv.URL)
	ctx := context.Background()

	a, err := e.Add(ctx, doc, models.QueueIntake{FirstName: "A", LastName: "A", Age: "1"})
	require.NoError(t, err)
	b, err := e.Add(ctx, doc, models.QueueIntake{FirstName: "B", LastName: "B", Age: "2"})
	require.NoError(t, err)

	require.NoError(t, e.SetStatus(ctx, doc, a.ID, models.QueueInProgress))

	got := e.Get(doc)
	require.Len(t, got, 2)
	assert.Equal(t, []string{a.ID, b.ID}, ids(got), "merge by id keeps cache order")
	assert.Equal(t, models.QueueInProgress, got[0].Status)
}

func TestRemoteUpdateDetails(t *testing.T) {
	svc := &fakeQueueService{}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	e := newRemoteEngine(t, srv.URL)
	ctx := context.Background()

	a, err := e.Add(ctx, doc, models.QueueIntake{FirstName: "Ali", LastName: "Valiyev", Age: "30"})
	require.NoError(t, err)

	first := "Olim"
	require.NoError(t, e.UpdateDetails(ctx, doc, a.ID, models.QueueItemUpdate{FirstName: &first}))

	got := e.Get(doc)
	require.Len(t, got, 1)
	assert.Equal(t, "Olim", got[0].FirstName)
	assert.Equal(t, "Valiyev Olim", got[0].PatientName)
}

func TestRemoteRemove(t *testing.T) {
	svc := &fakeQueueService{}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	e := newRemoteEngine(t, srv.URL)
	ctx := context.Background()

	a, err := e.Add(ctx, doc, models.QueueIntake{FirstName: "A", LastName: "A", Age: "1"})
	require.NoError(t, err)
	b, err := e.Add(ctx, doc, models.QueueIntake{FirstName: "B", LastName: "B", Age: "2"})
	require.NoError(t, err)

	require.NoError(t, e.Remove(ctx, doc, a.ID))
	assert.Equal(t, []string{b.ID}, ids(e.Get(doc)))
}

func TestRemoteNotFoundIsSilent(t *testing.T) {
	svc := &fakeQueueService{}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	e := newRemoteEngine(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, e.SetStatus(ctx, doc, "ghost", models.QueueHold))
	require.NoError(t, e.Remove(ctx, doc, "ghost"))
}

func TestRemoteWriteFailurePropagatesMessageAndKeepsCache(t *testing.T) {
	svc := &fakeQueueService{}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	e := newRemoteEngine(t, srv.URL)
	ctx := context.Background()

	a, err := e.Add(ctx, doc, models.QueueIntake{FirstName: "A", LastName: "A", Age: "1"})
	require.NoError(t, err)
	before := e.Get(doc)

	svc.failWith = "queue is closed for today"

	_, err = e.Add(ctx, doc, models.QueueIntake{FirstName: "B", LastName: "B", Age: "2"})
	require.Error(t, err)
	var we *queue.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "queue is closed for today", we.Message)

	err = e.SetStatus(ctx, doc, a.ID, models.QueueHold)
	require.Error(t, err)
	assert.EqualError(t, err, "queue is closed for today")

	assert.Equal(t, before, e.Get(doc), "cache unchanged after failed writes")
}

func TestRemoteWriteFailureFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Failure without a server-provided message
		writeEnvelope(w, http.StatusInternalServerError, envelope{Success: false})
	}))
	defer srv.Close()

	e := newRemoteEngine(t, srv.URL)

	_, err := e.Add(context.Background(), doc, models.QueueIntake{FirstName: "A", LastName: "A", Age: "1"})
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
	assert.EqualError(t, err, "adding to queue failed")
}
