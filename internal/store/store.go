package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/technosupport/ts-sentinel/internal/data"
	"github.com/technosupport/ts-sentinel/internal/metrics"
)

// EventStore persists detection events in Postgres with transparent degraded
// mode: read failures become empty-but-valid results, create failures return
// the event unpersisted. Only UpdateStatus surfaces backend errors, so the
// caller can tell "doesn't exist" from "can't tell right now".
type EventStore struct {
	DB  *sql.DB
	Log *slog.Logger
}

func New(db *sql.DB, log *slog.Logger) *EventStore {
	if log == nil {
		log = slog.Default()
	}
	return &EventStore{DB: db, Log: log}
}

const eventColumns = `id, action, occurred_at, camera_id, location, severity, confidence,
	description, status, crowd_count, density_level, metadata, created_at`

// Create writes the event through, assigning its id first so the degraded
// path hands back the same id the durable row would have carried. A backend
// failure is logged and swallowed; generation and broadcast must continue.
func (s *EventStore) Create(ctx context.Context, e *data.Event) (*data.Event, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	e.CreatedAt = time.Now().UTC()

	var meta []byte
	if len(e.Metadata) > 0 {
		meta, _ = json.Marshal(e.Metadata)
	}

	metrics.StoreWrites.Inc()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO detection_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Action, e.Timestamp, e.CameraID, e.Location, e.Severity, e.Confidence,
		e.Description, e.Status, e.CrowdCount, e.DensityLevel, meta, e.CreatedAt,
	)
	if err != nil {
		metrics.StoreDegraded.WithLabelValues("create").Inc()
		s.Log.Warn("event write failed, continuing unpersisted", "event_id", e.ID, "error", err)
	}
	return e, nil
}

// Find returns a filtered page sorted by timestamp descending plus the total
// match count. A backend failure degrades to an empty page with total 0.
func (s *EventStore) Find(ctx context.Context, f data.EventFilter, p data.Page) ([]data.Event, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM detection_events`+where, args...).Scan(&total); err != nil {
		metrics.StoreDegraded.WithLabelValues("find").Inc()
		s.Log.Warn("event count failed, returning empty page", "error", err)
		return []data.Event{}, 0, nil
	}

	if p.Limit <= 0 {
		p.Limit = 20
	}
	q := fmt.Sprintf(`SELECT `+eventColumns+` FROM detection_events%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		metrics.StoreDegraded.WithLabelValues("find").Inc()
		s.Log.Warn("event query failed, returning empty page", "error", err)
		return []data.Event{}, 0, nil
	}
	defer rows.Close()

	events := []data.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return []data.Event{}, 0, nil
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreDegraded.WithLabelValues("find").Inc()
		s.Log.Warn("event iteration failed, returning empty page", "error", err)
		return []data.Event{}, 0, nil
	}
	return events, total, nil
}

// UpdateStatus is the one mutation the workflow allows.
func (s *EventStore) UpdateStatus(ctx context.Context, id string, status data.Status) (*data.Event, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE detection_events SET status = $1 WHERE id = $2
		RETURNING `+eventColumns, status, id)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.StoreDegraded.WithLabelValues("update").Inc()
		return nil, fmt.Errorf("update status for %s: %w", id, ErrUnavailable)
	}
	return e, nil
}

// CountBy groups matching events by severity or status. Degraded mode yields
// an empty map so the aggregator always gets a valid shape.
func (s *EventStore) CountBy(ctx context.Context, field string, f data.EventFilter) (map[string]int, error) {
	// column whitelist; field never comes from user input but keep it closed
	switch field {
	case "severity", "status":
	default:
		return nil, fmt.Errorf("countby: unsupported field %q", field)
	}

	where, args := buildWhere(f)
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+field+`, COUNT(*) FROM detection_events`+where+` GROUP BY `+field, args...)
	if err != nil {
		metrics.StoreDegraded.WithLabelValues("countby").Inc()
		s.Log.Warn("event aggregation failed, returning empty breakdown", "field", field, "error", err)
		return map[string]int{}, nil
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return map[string]int{}, nil
		}
		out[key] = n
	}
	return out, nil
}

func buildWhere(f data.EventFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CameraID != "" {
		add("camera_id = $%d", f.CameraID)
	}
	if f.Severity != "" {
		add("severity = $%d", f.Severity)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Start != nil {
		add("occurred_at >= $%d", *f.Start)
	}
	if f.End != nil {
		add("occurred_at <= $%d", *f.End)
	}

	if len(conds) == 0 {
		return "", nil
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (*data.Event, error) {
	var e data.Event
	var crowdCount sql.NullInt64
	var density sql.NullString
	var meta []byte

	err := r.Scan(&e.ID, &e.Action, &e.Timestamp, &e.CameraID, &e.Location, &e.Severity,
		&e.Confidence, &e.Description, &e.Status, &crowdCount, &density, &meta, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if crowdCount.Valid {
		n := int(crowdCount.Int64)
		e.CrowdCount = &n
	}
	if density.Valid {
		d := data.DensityLevel(density.String)
		e.DensityLevel = &d
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &e.Metadata)
	}
	return &e, nil
}
