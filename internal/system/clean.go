package system

import (
	"time"

	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/world"
)

// CleanSystem sweeps loose items off the map every interval ticks.
// Phase 3 (PostUpdate).
type CleanSystem struct {
	m        *world.Map
	interval int
	ticks    int
}

func NewCleanSystem(m *world.Map, intervalTicks int) *CleanSystem {
	return &CleanSystem{m: m, interval: intervalTicks}
}

func (s *CleanSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CleanSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	s.m.Clean()
}
