package system

import (
	"time"

	"github.com/l1jgo/worldcore/internal/core/ecs"
	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/creature"
	"github.com/l1jgo/worldcore/internal/world"
)

// CleanupSystem takes despawned creatures off the map, then flushes the
// deferred entity destruction queue at tick end. Phase 6 (Cleanup).
type CleanupSystem struct {
	world     *ecs.World
	creatures *creature.Registry
	m         *world.Map
}

func NewCleanupSystem(w *ecs.World, creatures *creature.Registry, m *world.Map) *CleanupSystem {
	return &CleanupSystem{world: w, creatures: creatures, m: m}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for _, id := range s.world.Pending() {
		if c, ok := s.creatures.Get(id); ok {
			s.m.RemoveEntity(c)
		}
	}
	s.world.FlushDestroyQueue()
}
