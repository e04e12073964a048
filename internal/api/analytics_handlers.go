package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/technosupport/ts-sentinel/internal/analytics"
	"github.com/technosupport/ts-sentinel/internal/cameras"
	"github.com/technosupport/ts-sentinel/internal/data"
)

// GET /api/v1/analytics?period=1h|24h|7d|30d
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = string(analytics.WindowDay)
	}
	window, err := analytics.ParseWindow(period)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recentN := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("recent")); err == nil && v > 0 && v <= 100 {
		recentN = v
	}

	summary, err := h.Agg.Aggregate(r.Context(), window, recentN)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GET /api/v1/crowd?limit=n
func (h *Handler) GetCrowdData(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		if v > h.Buffer.Cap() {
			v = h.Buffer.Cap()
		}
		limit = v
	}
	respondJSON(w, http.StatusOK, h.Buffer.Recent(limit))
}

// GET /api/v1/cameras: registry plus synthesized liveness from recent crowd
// activity.
func (h *Handler) GetCameraStatus(w http.ResponseWriter, r *http.Request) {
	latest := h.latestByCamera(r)

	now := time.Now()
	out := make([]cameras.CameraStatus, 0, h.Registry.Len())
	for _, desc := range h.Registry.All() {
		st := cameras.CameraStatus{CameraDescriptor: desc}
		if s, ok := latest[desc.ID]; ok {
			ts := s.Timestamp
			st.LastSeen = &ts
			st.CrowdCount = s.Count
			st.Online = now.Sub(ts) <= h.OfflineAfter
		}
		out = append(out, st)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) latestByCamera(r *http.Request) map[string]data.CrowdSample {
	latest := map[string]data.CrowdSample{}

	if h.Cache != nil {
		for _, desc := range h.Registry.All() {
			if s, err := h.Cache.Get(r.Context(), desc.ID); err == nil && s != nil {
				latest[desc.ID] = *s
			}
		}
		if len(latest) > 0 {
			return latest
		}
	}

	// cache disabled or empty: scan retained history newest-first
	for _, s := range h.Buffer.Recent(h.Buffer.Cap()) {
		if _, ok := latest[s.CameraID]; !ok {
			latest[s.CameraID] = s
		}
	}
	return latest
}

// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": h.Bcast.Hub.SubscriberCount(),
		"crowdBuffer": h.Buffer.Len(),
	})
}
