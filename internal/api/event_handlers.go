package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/technosupport/ts-sentinel/internal/classify"
	"github.com/technosupport/ts-sentinel/internal/data"
	"github.com/technosupport/ts-sentinel/internal/store"
)

type eventListResponse struct {
	Events      []data.Event `json:"events"`
	Total       int          `json:"total"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
}

// GET /api/v1/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	limit := 20
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	filter := data.EventFilter{CameraID: q.Get("cameraId")}

	if s := q.Get("severity"); s != "" {
		sev := data.Severity(s)
		if !sev.Valid() {
			respondError(w, http.StatusBadRequest, "invalid severity")
			return
		}
		filter.Severity = sev
	}
	if s := q.Get("status"); s != "" {
		st := data.Status(s)
		if !st.Valid() {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = st
	}
	if s := q.Get("startDate"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		filter.Start = &ts
	}
	if s := q.Get("endDate"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		filter.End = &ts
	}

	events, total, err := h.Store.Find(r.Context(), filter, data.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	totalPages := (total + limit - 1) / limit
	respondJSON(w, http.StatusOK, eventListResponse{
		Events:      events,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	})
}

type createEventRequest struct {
	// ID is optional. A client that supplies its own uuid can safely retry
	// the create: the insert is idempotent on id and the duplicate is
	// broadcast once.
	ID         string          `json:"id"`
	Action     data.ActionKind `json:"action"`
	CameraID   string          `json:"cameraId"`
	Location   string          `json:"location"`
	Severity   data.Severity   `json:"severity"`
	Confidence float64         `json:"confidence"`
	CrowdCount *int            `json:"crowdCount"`
	Metadata   map[string]any  `json:"metadata"`
}

// POST /api/v1/events: manual injection. Takes the same store+broadcast path
// as generator-created events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, known := classify.Actions[req.Action]; !known {
		respondError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if req.ID != "" {
		if _, err := uuid.Parse(req.ID); err != nil {
			respondError(w, http.StatusBadRequest, "id must be a uuid")
			return
		}
	}

	e := &data.Event{
		ID:          req.ID,
		Action:      req.Action,
		Timestamp:   time.Now().UTC(),
		CameraID:    req.CameraID,
		Location:    req.Location,
		Severity:    req.Severity,
		Confidence:  req.Confidence,
		Description: classify.DescriptionFor(req.Action),
		Status:      data.StatusActive,
		Metadata:    req.Metadata,
	}
	if e.Severity == "" {
		e.Severity = classify.SeverityFor(req.Action)
	}
	if req.CrowdCount != nil {
		if *req.CrowdCount < 0 {
			respondError(w, http.StatusBadRequest, "crowdCount must be non-negative")
			return
		}
		density := h.Classifier.DensityOf(*req.CrowdCount)
		e.CrowdCount = req.CrowdCount
		e.DensityLevel = &density
	}

	if err := e.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Store.Create(r.Context(), e)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	h.Bcast.Event(created)

	respondJSON(w, http.StatusCreated, created)
}

// PATCH /api/v1/events/{id}
func (h *Handler) PatchEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status data.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	updated, err := h.Store.UpdateStatus(r.Context(), id, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if errors.Is(err, store.ErrUnavailable) {
		respondError(w, http.StatusServiceUnavailable, "event store unavailable, retry later")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
