package system

import "time"

// Phase orders systems within a tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: deliver last tick's events
	PhasePreUpdate               // 1: cache invalidation
	PhaseUpdate                  // 2: movement and AI
	PhasePostUpdate              // 3: map maintenance
	PhaseOutput                  // 4: outbound notifications
	PhasePersist                 // 5: house saves
	PhaseCleanup                 // 6: despawn queued entities
)

var phaseNames = [...]string{"input", "pre_update", "update", "post_update", "output", "persist", "cleanup"}

// String returns the metric label of p.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is a unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// PhaseObserver receives the wall time each phase took during a tick.
// Phases without systems are not reported.
type PhaseObserver func(p Phase, took time.Duration)
