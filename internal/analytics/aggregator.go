package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/technosupport/ts-sentinel/internal/crowd"
	"github.com/technosupport/ts-sentinel/internal/data"
)

// Window is the relative range analytics are computed over.
type Window string

const (
	WindowHour  Window = "1h"
	WindowDay   Window = "24h"
	WindowWeek  Window = "7d"
	WindowMonth Window = "30d"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowHour, WindowDay, WindowWeek, WindowMonth:
		return Window(s), nil
	}
	return "", fmt.Errorf("unknown analytics period %q", s)
}

func (w Window) Duration() time.Duration {
	switch w {
	case WindowHour:
		return time.Hour
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// CrowdSummary covers whatever history the bounded buffer retains. For long
// windows this is a known limitation, not an error.
type CrowdSummary struct {
	Current  int     `json:"current"`
	Peak     int     `json:"peak"`
	Average  float64 `json:"average"`
	PeakHour int     `json:"peakHour"`
}

// Summary is always well-formed: in degraded mode every count is at its zero
// value and breakdowns are empty maps, never nil.
type Summary struct {
	Window      Window         `json:"period"`
	Total       int            `json:"total"`
	BySeverity  map[string]int `json:"severityBreakdown"`
	ByStatus    map[string]int `json:"statusBreakdown"`
	Recent      []data.Event   `json:"recentEvents"`
	Crowd       CrowdSummary   `json:"crowd"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// EventSource is the slice of the store the aggregator reads.
type EventSource interface {
	Find(ctx context.Context, f data.EventFilter, p data.Page) ([]data.Event, int, error)
	CountBy(ctx context.Context, field string, f data.EventFilter) (map[string]int, error)
}

type Aggregator struct {
	Store  EventSource
	Buffer *crowd.Buffer
	Now    func() time.Time // injectable for tests
}

func New(store EventSource, buffer *crowd.Buffer) *Aggregator {
	return &Aggregator{Store: store, Buffer: buffer, Now: time.Now}
}

// Aggregate computes the windowed roll-up. Store degradation surfaces as zero
// counts, never as an error.
func (a *Aggregator) Aggregate(ctx context.Context, w Window, recentN int) (*Summary, error) {
	now := a.Now().UTC()
	start := now.Add(-w.Duration())
	filter := data.EventFilter{Start: &start}

	if recentN <= 0 {
		recentN = 10
	}

	recent, total, err := a.Store.Find(ctx, filter, data.Page{Limit: recentN})
	if err != nil {
		return nil, err
	}
	bySeverity, err := a.Store.CountBy(ctx, "severity", filter)
	if err != nil {
		return nil, err
	}
	byStatus, err := a.Store.CountBy(ctx, "status", filter)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Window:      w,
		Total:       total,
		BySeverity:  bySeverity,
		ByStatus:    byStatus,
		Recent:      recent,
		Crowd:       a.crowdSummary(),
		GeneratedAt: now,
	}, nil
}

func (a *Aggregator) crowdSummary() CrowdSummary {
	var cs CrowdSummary

	if latest, ok := a.Buffer.Latest(); ok {
		cs.Current = latest.Count
	}

	history := a.Buffer.Recent(a.Buffer.Cap())
	if len(history) == 0 {
		return cs
	}

	var sum int
	hourTotals := map[int]int{}
	for _, s := range history {
		if s.Count > cs.Peak {
			cs.Peak = s.Count
		}
		sum += s.Count
		hourTotals[s.Timestamp.Hour()] += s.Count
	}
	cs.Average = float64(sum) / float64(len(history))

	best := -1
	for hour, total := range hourTotals {
		if total > best || (total == best && hour < cs.PeakHour) {
			best = total
			cs.PeakHour = hour
		}
	}
	return cs
}
