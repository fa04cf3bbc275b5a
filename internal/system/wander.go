package system

import (
	"math/rand"
	"time"

	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/creature"
	"github.com/l1jgo/worldcore/internal/pathfind"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
)

// WanderSystem walks idle monsters around their home position: pick a
// random goal within the radius, ask the map for a path, take one step per
// interval. Phase 2 (Update).
type WanderSystem struct {
	m         *world.Map
	creatures *creature.Registry
	rng       *rand.Rand
	log       *zap.Logger
	interval  int
}

func NewWanderSystem(m *world.Map, creatures *creature.Registry, rng *rand.Rand, log *zap.Logger, intervalTicks int) *WanderSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &WanderSystem{
		m:         m,
		creatures: creatures,
		rng:       rng,
		log:       log,
		interval:  max(intervalTicks, 1),
	}
}

func (s *WanderSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *WanderSystem) Update(_ time.Duration) {
	s.creatures.EachWandering(func(c *creature.Creature, w *creature.Wander) {
		if w.Cooldown > 0 {
			w.Cooldown--
			return
		}
		w.Cooldown = s.interval - 1
		if s.m.TileAt(c.Position()) == nil {
			return // not placed yet
		}
		if len(w.Path) == 0 && !s.plan(c, w) {
			return
		}
		s.step(c, w)
	})
}

// plan picks a goal around home and stores the path to it.
func (s *WanderSystem) plan(c *creature.Creature, w *creature.Wander) bool {
	if w.Radius <= 0 {
		return false
	}
	goal := w.Home
	goal.X = clampAdd(goal.X, s.rng.Intn(2*w.Radius+1)-w.Radius)
	goal.Y = clampAdd(goal.Y, s.rng.Intn(2*w.Radius+1)-w.Radius)
	if goal == c.Position() {
		return false
	}

	path, ok := s.m.GetPathTo(c, goal, pathfind.Params{
		FullPathSearch: true,
		MaxSearchDist:  2*w.Radius + 1,
		MaxTargetDist:  1,
	})
	if !ok || len(path) == 0 {
		return false
	}
	w.Path = path
	return true
}

// step takes the next direction off the path. A step the map refuses drops
// the rest of the path and is remembered as blocked.
func (s *WanderSystem) step(c *creature.Creature, w *creature.Wander) {
	dir := w.Path[len(w.Path)-1]
	w.Path = w.Path[:len(w.Path)-1]

	next := c.Position().Moved(dir)
	to := s.m.CanWalkTo(c, next)
	if to == nil {
		c.RememberWalkable(next, false)
		w.Path = nil
		s.log.Debug("wander step blocked", zap.String("creature", c.Name()), zap.Stringer("pos", next))
		return
	}
	if len(to.Entities()) > 0 {
		w.Path = nil
		return
	}
	s.m.MoveEntity(c, to, false)
}

func clampAdd(v uint16, d int) uint16 {
	return uint16(min(max(int(v)+d, 0), 0xFFFF))
}
