package detect

import (
	"context"
	"log/slog"

	"github.com/technosupport/ts-sentinel/internal/broadcast"
	"github.com/technosupport/ts-sentinel/internal/crowd"
	"github.com/technosupport/ts-sentinel/internal/data"
	"github.com/technosupport/ts-sentinel/internal/metrics"
)

// EventWriter is the slice of the store the generator needs.
type EventWriter interface {
	Create(ctx context.Context, e *data.Event) (*data.Event, error)
}

// Generator runs produced detections through the pipeline:
// store (events) or buffer (samples), then broadcast. Store failures are
// logged and never stop generation; broadcast is initiated after the
// persistence attempt regardless of its outcome.
type Generator struct {
	Producer Producer
	Store    EventWriter
	Buffer   *crowd.Buffer
	Cache    *crowd.LatestCache // optional
	Bcast    *broadcast.Broadcaster
	Log      *slog.Logger
}

func NewGenerator(p Producer, store EventWriter, buf *crowd.Buffer, cache *crowd.LatestCache, b *broadcast.Broadcaster, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{Producer: p, Store: store, Buffer: buf, Cache: cache, Bcast: b, Log: log}
}

// GenerateEvent produces and dispatches one event.
func (g *Generator) GenerateEvent(ctx context.Context) {
	e, err := g.Producer.ProduceEvent(ctx)
	if err != nil {
		g.Log.Error("event production failed", "error", err)
		return
	}

	stored, err := g.Store.Create(ctx, e)
	if err != nil {
		// Store.Create swallows backend errors itself; anything surfacing
		// here is unexpected but still must not stop the broadcast.
		g.Log.Error("event store rejected event", "event_id", e.ID, "error", err)
		stored = e
	}

	metrics.EventsGenerated.WithLabelValues(string(stored.Action)).Inc()
	g.Bcast.Event(stored)
	g.Log.Debug("event generated", "event_id", stored.ID, "action", stored.Action, "severity", stored.Severity)
}

// SampleCrowd produces and dispatches one crowd sample.
func (g *Generator) SampleCrowd(ctx context.Context) {
	s, err := g.Producer.ProduceSample(ctx)
	if err != nil {
		g.Log.Error("crowd sampling failed", "error", err)
		return
	}

	g.Buffer.Append(*s)
	if g.Cache != nil {
		if err := g.Cache.Put(ctx, *s); err != nil {
			g.Log.Debug("crowd cache write failed", "camera_id", s.CameraID, "error", err)
		}
	}

	metrics.SamplesGenerated.Inc()
	g.Bcast.Crowd(*s)
}
