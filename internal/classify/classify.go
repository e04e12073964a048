package classify

import (
	"fmt"
	"sync"

	"github.com/technosupport/ts-sentinel/internal/data"
)

// Thresholds are the density breakpoints. A count strictly above a breakpoint
// moves to the next level: count > Critical -> critical, > High -> high,
// > Medium -> medium, else low.
type Thresholds struct {
	Medium   int `yaml:"medium" json:"medium"`
	High     int `yaml:"high" json:"high"`
	Critical int `yaml:"critical" json:"critical"`
}

// DefaultThresholds suit a mid-size venue; operators tune per capacity.
var DefaultThresholds = Thresholds{Medium: 10, High: 20, Critical: 30}

func (t Thresholds) Valid() bool {
	return t.Medium > 0 && t.High > t.Medium && t.Critical > t.High
}

// DensityWith classifies count against explicit thresholds.
// A negative count is a programmer error and panics.
func DensityWith(t Thresholds, count int) data.DensityLevel {
	if count < 0 {
		panic(fmt.Sprintf("classify: negative crowd count %d", count))
	}
	switch {
	case count > t.Critical:
		return data.DensityCritical
	case count > t.High:
		return data.DensityHigh
	case count > t.Medium:
		return data.DensityMedium
	default:
		return data.DensityLow
	}
}

// Classifier holds the live thresholds. SetThresholds is called by the config
// watcher; DensityOf by the generator and validation paths.
type Classifier struct {
	mu sync.RWMutex
	t  Thresholds
}

func New(t Thresholds) *Classifier {
	if !t.Valid() {
		t = DefaultThresholds
	}
	return &Classifier{t: t}
}

func (c *Classifier) Thresholds() Thresholds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

func (c *Classifier) SetThresholds(t Thresholds) error {
	if !t.Valid() {
		return fmt.Errorf("classify: thresholds must be ascending and positive, got %+v", t)
	}
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
	return nil
}

func (c *Classifier) DensityOf(count int) data.DensityLevel {
	return DensityWith(c.Thresholds(), count)
}
