package system

import (
	"time"

	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/world"
)

// SpectatorCacheSystem drops both spectator caches every interval ticks,
// before anything moves. Phase 1 (PreUpdate).
type SpectatorCacheSystem struct {
	m        *world.Map
	interval int
	ticks    int
}

func NewSpectatorCacheSystem(m *world.Map, intervalTicks int) *SpectatorCacheSystem {
	return &SpectatorCacheSystem{m: m, interval: max(intervalTicks, 1)}
}

func (s *SpectatorCacheSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *SpectatorCacheSystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	s.m.ClearSpectatorCache(true)
}
