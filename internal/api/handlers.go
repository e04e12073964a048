package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/technosupport/ts-sentinel/internal/analytics"
	"github.com/technosupport/ts-sentinel/internal/broadcast"
	"github.com/technosupport/ts-sentinel/internal/cameras"
	"github.com/technosupport/ts-sentinel/internal/classify"
	"github.com/technosupport/ts-sentinel/internal/crowd"
	"github.com/technosupport/ts-sentinel/internal/data"
)

// EventStore is the store surface the API needs.
type EventStore interface {
	Create(ctx context.Context, e *data.Event) (*data.Event, error)
	Find(ctx context.Context, f data.EventFilter, p data.Page) ([]data.Event, int, error)
	UpdateStatus(ctx context.Context, id string, status data.Status) (*data.Event, error)
}

// Handler is the read/write facade over store, buffer, aggregator, and
// broadcast.
type Handler struct {
	Store      EventStore
	Agg        *analytics.Aggregator
	Buffer     *crowd.Buffer
	Cache      *crowd.LatestCache // optional
	Registry   *cameras.Registry
	Bcast      *broadcast.Broadcaster
	Classifier *classify.Classifier
	Log        *slog.Logger

	// OfflineAfter bounds how stale a camera's latest sample may be before
	// the status endpoint reports it offline.
	OfflineAfter time.Duration
}

const defaultOfflineAfter = 30 * time.Second

func NewHandler(store EventStore, agg *analytics.Aggregator, buf *crowd.Buffer, cache *crowd.LatestCache,
	reg *cameras.Registry, bcast *broadcast.Broadcaster, cls *classify.Classifier, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Store: store, Agg: agg, Buffer: buf, Cache: cache,
		Registry: reg, Bcast: bcast, Classifier: cls, Log: log,
		OfflineAfter: defaultOfflineAfter,
	}
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
