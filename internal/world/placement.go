package world

import (
	"slices"

	"github.com/l1jgo/worldcore/internal/core/event"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
	"go.uber.org/zap"
)

var normalRing = [8]geo.Delta{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// extendedRing is the normal ring followed by the four cells two steps
// away on each axis. Both parts are shuffled separately so closer cells
// are always tried first.
var extendedRing = [12]geo.Delta{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
	{X: 0, Y: -2}, {X: -2, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2},
}

// PlaceEntity puts e on the map at center, or on a random free cell around
// it when center does not admit e. Entities placed from a protection zone
// stay in one, and the extended ring also needs a clear line of sight to
// center. force skips the admission check on center itself.
func (m *Map) PlaceEntity(center geo.Position, e thing.Entity, extended, force bool) bool {
	t := m.TileAt(center)
	found, inPZ := false, false
	if t != nil {
		inPZ = t.HasFlag(thing.ProtectionZone)
		ret := t.QueryAdd(e, thing.FlagIgnoreBlockItem)
		found = force || ret == thing.NoError || ret == thing.PlayerIsNotInvited
	}

	if !found {
		var ring []geo.Delta
		if extended {
			r := extendedRing
			m.rng.Shuffle(8, func(i, j int) { r[i], r[j] = r[j], r[i] })
			m.rng.Shuffle(4, func(i, j int) { r[8+i], r[8+j] = r[8+j], r[8+i] })
			ring = r[:]
		} else {
			r := normalRing
			m.rng.Shuffle(len(r), func(i, j int) { r[i], r[j] = r[j], r[i] })
			ring = r[:]
		}

		for _, d := range ring {
			x, y := int(center.X)+d.X, int(center.Y)+d.Y
			if x < 0 || y < 0 || x > 0xFFFF || y > 0xFFFF {
				continue
			}
			try := geo.Pos(uint16(x), uint16(y), center.Z)
			t = m.TileAt(try)
			if t == nil || (inPZ && !t.HasFlag(thing.ProtectionZone)) {
				continue
			}
			if t.QueryAdd(e, 0) == thing.NoError && (!extended || m.IsSightClear(center, try, false)) {
				found = true
				break
			}
		}
		if !found {
			m.stats.Placement(false)
			return false
		}
	}

	dest := t.QueryDestination(e)
	dest.AddEntity(e)
	pos := dest.Position()
	m.SectorAt(pos.X, pos.Y).addEntity(e)

	m.stats.Placement(true)
	event.Emit(m.bus, event.EntityPlaced{Entity: e.ID(), Pos: pos})
	return true
}

// MoveEntity moves e from its tile onto newTile and tells everybody who
// could see it. A move to a non-adjacent tile, another layer or a tile
// without ground is a teleport.
func (m *Map) MoveEntity(e thing.Entity, newTile thing.Tile, forceTeleport bool) {
	oldPos := e.Position()
	oldTile := m.TileAt(oldPos)
	if oldTile == nil {
		m.log.DPanic("moving entity without a tile", zap.String("entity", e.Name()), zap.Stringer("pos", oldPos))
		return
	}
	newPos := newTile.Position()

	teleport := forceTeleport || newTile.Ground() == nil || !geo.InRange(oldPos, newPos, 1, 1, 0)

	var spectators []thing.Entity
	if !teleport {
		// A step reveals one extra row or column on the side it heads to.
		r := defaultRange
		if oldPos.Y > newPos.Y {
			r.MinY++
		} else if oldPos.Y < newPos.Y {
			r.MaxY++
		}
		if oldPos.X < newPos.X {
			r.MaxX++
		} else if oldPos.X > newPos.X {
			r.MinX++
		}
		spectators = m.GetSpectators(oldPos, true, false, r)
	} else {
		spectators = m.Spectators(oldPos, true, false)
		for _, s := range m.Spectators(newPos, true, false) {
			if !slices.Contains(spectators, s) {
				spectators = append(spectators, s)
			}
		}
	}

	stackIndex := make([]int, len(spectators))
	for i, s := range spectators {
		stackIndex[i] = -1
		if s.IsPlayer() && s.CanSeeEntity(e) {
			stackIndex[i] = oldTile.StackIndexOf(s, e)
		}
	}

	oldTile.RemoveEntity(e)
	oldSector := m.SectorAt(oldPos.X, oldPos.Y)
	newSector := m.SectorAt(newPos.X, newPos.Y)
	if oldSector != newSector {
		if !oldSector.removeEntity(e) {
			m.log.DPanic("entity missing from its sector", zap.String("entity", e.Name()), zap.Stringer("pos", oldPos))
		}
		newSector.addEntity(e)
	}
	newTile.AddEntity(e)

	if !teleport && (oldPos.X != newPos.X || oldPos.Y != newPos.Y) {
		e.SetDirection(geo.DirectionTo(oldPos, newPos))
	}

	for i, s := range spectators {
		if s.IsPlayer() && stackIndex[i] != -1 {
			event.Emit(m.bus, event.EntityMoved{
				Observer:      s.ID(),
				Mover:         e.ID(),
				OldPos:        oldPos,
				NewPos:        newPos,
				OldStackIndex: stackIndex[i],
				Teleport:      teleport,
			})
		}
		s.OnEntityMove(e, newPos, oldPos, teleport)
	}

	oldTile.PostRemoveNotification(e, newTile)
	newTile.PostAddNotification(e, oldTile)
}

// RemoveEntity takes e off the map. It reports false when e was not on
// its tile.
func (m *Map) RemoveEntity(e thing.Entity) bool {
	pos := e.Position()
	t := m.TileAt(pos)
	if t == nil || !t.RemoveEntity(e) {
		return false
	}
	if !m.SectorAt(pos.X, pos.Y).removeEntity(e) {
		m.log.DPanic("entity missing from its sector", zap.String("entity", e.Name()), zap.Stringer("pos", pos))
	}
	t.PostRemoveNotification(e, nil)
	event.Emit(m.bus, event.EntityRemoved{Entity: e.ID(), Pos: pos})
	return true
}
