package world

import (
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/pathfind"
	"github.com/l1jgo/worldcore/internal/thing"
)

// CanWalkTo returns the tile at pos if e could path through it.
func (m *Map) CanWalkTo(e thing.Entity, pos geo.Position) thing.Tile {
	return m.finder.CanWalkTo(e, pos)
}

// GetPathMatching searches for a tile accepted by cond. The directions are
// in reverse: the last one is the first step.
func (m *Map) GetPathMatching(e thing.Entity, target geo.Position, cond pathfind.Condition, p pathfind.Params) ([]geo.Direction, bool) {
	return m.finder.PathMatching(e, target, cond, p)
}

// GetPathMatchingCond is GetPathMatching bounded by MaxSearchDist and,
// with KeepDistance, by cond's range.
func (m *Map) GetPathMatchingCond(e thing.Entity, target geo.Position, cond pathfind.Condition, p pathfind.Params) ([]geo.Direction, bool) {
	return m.finder.PathMatchingCond(e, target, cond, p)
}

// GetPathTo searches a path ending within p's target distances of target.
func (m *Map) GetPathTo(e thing.Entity, target geo.Position, p pathfind.Params) ([]geo.Direction, bool) {
	cond := pathfind.FrozenCondition{Target: target, Sight: m}
	return m.finder.PathMatchingCond(e, target, cond, p)
}
