package detect

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Scheduler fires a task after a uniformly random delay in [Min, Max] and
// re-arms only after the task returns, so slow downstream work never piles
// up overlapping runs. Each loop is independently stoppable.
type Scheduler struct {
	Name string
	Min  time.Duration
	Max  time.Duration
	Task func(ctx context.Context)
	Log  *slog.Logger

	rng    *rand.Rand
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(name string, min, max time.Duration, task func(ctx context.Context), log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if max < min {
		max = min
	}
	return &Scheduler{
		Name: name,
		Min:  min,
		Max:  max,
		Task: task,
		Log:  log,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand injects a deterministic source for tests. Call before Start.
func (s *Scheduler) SetRand(rng *rand.Rand) { s.rng = rng }

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)
	s.Log.Info("scheduler started", "name", s.Name, "min", s.Min, "max", s.Max)
}

// Stop cancels the loop and waits for the current firing, if any, to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.Log.Info("scheduler stopped", "name", s.Name)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(s.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.Task(ctx)
			timer.Reset(s.nextDelay())
		}
	}
}

func (s *Scheduler) nextDelay() time.Duration {
	if s.Max == s.Min {
		return s.Min
	}
	return s.Min + time.Duration(s.rng.Int63n(int64(s.Max-s.Min)))
}
