package world

import (
	"slices"

	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
)

// Half extents of the area a client renders, and of the area in which
// entities are told about each other.
const (
	MaxViewportX       = 11
	MaxViewportY       = 11
	MaxClientViewportX = 8
	MaxClientViewportY = 6
)

// ViewRange is how far a spectator query reaches from its center in each
// direction. Zero fields mean the default viewport.
type ViewRange struct {
	MinX, MaxX int
	MinY, MaxY int
}

var defaultRange = ViewRange{MaxViewportX, MaxViewportX, MaxViewportY, MaxViewportY}

func (r ViewRange) withDefaults() ViewRange {
	if r.MinX == 0 {
		r.MinX = MaxViewportX
	}
	if r.MaxX == 0 {
		r.MaxX = MaxViewportX
	}
	if r.MinY == 0 {
		r.MinY = MaxViewportY
	}
	if r.MaxY == 0 {
		r.MaxY = MaxViewportY
	}
	return r
}

// Spectators is GetSpectators with the default viewport.
func (m *Map) Spectators(center geo.Position, multifloor, onlyPlayers bool) []thing.Entity {
	return m.GetSpectators(center, multifloor, onlyPlayers, ViewRange{})
}

// GetSpectators returns the entities (or only the players) that can see
// center. Multi-floor queries with the default viewport are cached per
// center until ClearSpectatorCache; everything else walks the sectors.
// The returned slice belongs to the caller.
func (m *Map) GetSpectators(center geo.Position, multifloor, onlyPlayers bool, r ViewRange) []thing.Entity {
	if center.Z >= geo.MaxLayers {
		return nil
	}
	r = r.withDefaults()

	cacheResult := false
	if r == defaultRange && multifloor {
		if onlyPlayers {
			if cached, ok := m.playersSpectatorCache[center]; ok {
				m.stats.SpectatorHit()
				return slices.Clone(cached)
			}
		}
		if cached, ok := m.spectatorCache[center]; ok {
			m.stats.SpectatorHit()
			if !onlyPlayers {
				return slices.Clone(cached)
			}
			players := make([]thing.Entity, 0, len(cached))
			for _, e := range cached {
				if e.IsPlayer() {
					players = append(players, e)
				}
			}
			return players
		}
		m.stats.SpectatorMiss()
		cacheResult = true
	} else {
		m.stats.SpectatorBypass()
	}

	minZ, maxZ := floorSpan(center.Z, multifloor)
	spectators := m.collectSpectators(center, r, minZ, maxZ, onlyPlayers)
	if cacheResult {
		if onlyPlayers {
			m.playersSpectatorCache[center] = slices.Clone(spectators)
		} else {
			m.spectatorCache[center] = slices.Clone(spectators)
		}
	}
	return spectators
}

// ClearSpectatorCache drops the all-entities cache, and the players cache
// too when clearPlayers is set.
func (m *Map) ClearSpectatorCache(clearPlayers bool) {
	clear(m.spectatorCache)
	if clearPlayers {
		clear(m.playersSpectatorCache)
	}
}

// floorSpan is the range of layers visible from z. Underground only the
// two layers up and down are visible; on and above the surface everything
// down to the surface is, and the two lowest surface layers also see the
// top of the caves.
func floorSpan(z uint8, multifloor bool) (minZ, maxZ int) {
	if !multifloor {
		return int(z), int(z)
	}
	switch {
	case z > geo.SurfaceLayer:
		return max(int(z)-2, 0), min(int(z)+2, geo.MaxLayers-1)
	case z == 6:
		return 0, 8
	case z == 7:
		return 0, 9
	}
	return 0, geo.SurfaceLayer
}

// collectSpectators walks the sectors covering the viewport. Each layer
// away from center shifts the viewport one tile diagonally, so the walked
// area is widened by the layer span.
func (m *Map) collectSpectators(center geo.Position, r ViewRange, minZ, maxZ int, onlyPlayers bool) []thing.Entity {
	minX := int(center.X) - r.MinX
	minY := int(center.Y) - r.MinY
	maxX := int(center.X) + r.MaxX
	maxY := int(center.Y) + r.MaxY

	width := uint32(maxX - minX)
	height := uint32(maxY - minY)
	depth := uint32(maxZ - minZ)

	minOffset := int(center.Z) - maxZ
	maxOffset := int(center.Z) - minZ
	x1, y1 := clampCoord(minX+minOffset), clampCoord(minY+minOffset)
	x2, y2 := clampCoord(maxX+maxOffset), clampCoord(maxY+maxOffset)

	spectators := make([]thing.Entity, 0, 32)
	m.walkSectors(x1, y1, x2, y2, func(s *Sector, _, _ int) {
		list := s.entities
		if onlyPlayers {
			list = s.players
		}
		for _, e := range list {
			cpos := e.Position()
			if uint32(int(cpos.Z)-minZ) > depth {
				continue
			}
			offsetZ := geo.OffsetZ(center, cpos)
			if uint32(int(cpos.X)-offsetZ-minX) <= width && uint32(int(cpos.Y)-offsetZ-minY) <= height {
				spectators = append(spectators, e)
			}
		}
	})
	return spectators
}
