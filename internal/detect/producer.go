package detect

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/technosupport/ts-sentinel/internal/cameras"
	"github.com/technosupport/ts-sentinel/internal/classify"
	"github.com/technosupport/ts-sentinel/internal/data"
)

// Producer yields one candidate detection at a time. This is the extension
// point for a real detector: swap the implementation, keep scheduling,
// classification, storage, and broadcast unchanged.
type Producer interface {
	ProduceEvent(ctx context.Context) (*data.Event, error)
	ProduceSample(ctx context.Context) (*data.CrowdSample, error)
}

// SyntheticProducer stands in for real sensor inference. Cameras are picked
// uniformly, action kinds by their declared weights, confidence uniform in
// [0.6, 1.0). Crowd-related actions carry a synthesized count classified by
// the live thresholds.
type SyntheticProducer struct {
	Registry   *cameras.Registry
	Classifier *classify.Classifier

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSyntheticProducer(reg *cameras.Registry, cls *classify.Classifier, rng *rand.Rand) *SyntheticProducer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SyntheticProducer{Registry: reg, Classifier: cls, rng: rng}
}

func (p *SyntheticProducer) ProduceEvent(ctx context.Context) (*data.Event, error) {
	p.mu.Lock()
	cam := p.Registry.At(p.rng.Intn(p.Registry.Len()))
	kind := p.pickAction()
	confidence := 0.6 + p.rng.Float64()*0.4
	var crowdCount int
	if classify.IsCrowdAction(kind) {
		crowdCount = 10 + p.rng.Intn(50)
	}
	latency := 40 + p.rng.Intn(160)
	p.mu.Unlock()

	meta := map[string]any{
		"model":                 "synthetic-v1",
		"processing_latency_ms": latency,
	}
	e := &data.Event{
		Action:      kind,
		Timestamp:   time.Now().UTC(),
		CameraID:    cam.ID,
		Location:    cam.Location,
		Severity:    classify.SeverityFor(kind),
		Confidence:  confidence,
		Description: classify.DescriptionFor(kind),
		Status:      data.StatusActive,
		Metadata:    meta,
	}
	if classify.IsCrowdAction(kind) {
		density := p.Classifier.DensityOf(crowdCount)
		e.CrowdCount = &crowdCount
		e.DensityLevel = &density
		meta["zone"] = string(cam.Type)
	}
	return e, nil
}

func (p *SyntheticProducer) ProduceSample(ctx context.Context) (*data.CrowdSample, error) {
	p.mu.Lock()
	cam := p.Registry.At(p.rng.Intn(p.Registry.Len()))
	count := 1 + p.rng.Intn(50)
	p.mu.Unlock()

	return &data.CrowdSample{
		Timestamp: time.Now().UTC(),
		Count:     count,
		Density:   p.Classifier.DensityOf(count),
		CameraID:  cam.ID,
		Location:  cam.Location,
		Metadata: map[string]any{
			"zone": string(cam.Type),
		},
	}, nil
}

// pickAction draws from the raw weight table via cumulative scan over the
// actual weight sum. Relative bias matches the declared weights; no
// renormalization is assumed. Caller holds p.mu.
func (p *SyntheticProducer) pickAction() data.ActionKind {
	r := p.rng.Float64() * classify.TotalWeight()
	for _, kind := range classify.ActionOrder {
		r -= classify.Actions[kind].Weight
		if r < 0 {
			return kind
		}
	}
	// float rounding on the last step
	return classify.ActionOrder[len(classify.ActionOrder)-1]
}
