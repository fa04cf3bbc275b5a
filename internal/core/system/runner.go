package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. It stands in for the
// single-threaded dispatcher: every map mutation happens inside Tick.
type Runner struct {
	systems  []System
	sorted   bool
	ticks    uint64
	observer PhaseObserver
	now      func() time.Time
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

// Observe reports per-phase timings of every following tick to fn.
func (r *Runner) Observe(fn PhaseObserver) { r.observer = fn }

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	if r.observer == nil {
		for _, s := range r.systems {
			s.Update(dt)
		}
		r.ticks++
		return
	}

	now := r.now
	if now == nil {
		now = time.Now
	}
	for i := 0; i < len(r.systems); {
		phase := r.systems[i].Phase()
		start := now()
		for ; i < len(r.systems) && r.systems[i].Phase() == phase; i++ {
			r.systems[i].Update(dt)
		}
		r.observer(phase, now().Sub(start))
	}
	r.ticks++
}

// Ticks returns how many full ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
