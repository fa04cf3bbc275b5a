package world

import (
	"slices"

	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
)

const (
	SectorSize = 32
	sectorMask = SectorSize - 1
)

type floor [SectorSize][SectorSize]thing.Tile

// Sector is a SectorSize x SectorSize column of tiles through every layer,
// plus the entities standing in it. Floors are allocated on first write.
type Sector struct {
	floors    [geo.MaxLayers]*floor
	floorBits uint16

	// Neighbour links, nil while no sector exists there.
	east  *Sector
	south *Sector

	entities []thing.Entity
	players  []thing.Entity
}

func sectorKey(x, y uint16) uint32 {
	return uint32(x/SectorSize) | uint32(y/SectorSize)<<16
}

func (s *Sector) East() *Sector  { return s.east }
func (s *Sector) South() *Sector { return s.south }

// Entities returns the entities in the sector, most recently added first.
func (s *Sector) Entities() []thing.Entity { return s.entities }

// Players is the subset of Entities controlled by players.
func (s *Sector) Players() []thing.Entity { return s.players }

func (s *Sector) HasFloor(z uint8) bool {
	return z < geo.MaxLayers && s.floorBits&(1<<z) != 0
}

func (s *Sector) createFloor(z uint8) {
	if s.floors[z] == nil {
		s.floors[z] = new(floor)
	}
	s.floorBits |= 1 << z
}

func (s *Sector) tile(x, y uint16, z uint8) thing.Tile {
	f := s.floors[z]
	if f == nil {
		return nil
	}
	return f[x&sectorMask][y&sectorMask]
}

func (s *Sector) addEntity(e thing.Entity) {
	s.entities = slices.Insert(s.entities, 0, e)
	if e.IsPlayer() {
		s.players = slices.Insert(s.players, 0, e)
	}
}

// removeEntity reports false when e was not a member.
func (s *Sector) removeEntity(e thing.Entity) bool {
	i := slices.Index(s.entities, e)
	if i < 0 {
		return false
	}
	j := -1
	if e.IsPlayer() {
		if j = slices.Index(s.players, e); j < 0 {
			return false
		}
	}
	s.entities = slices.Delete(s.entities, i, i+1)
	if j >= 0 {
		s.players = slices.Delete(s.players, j, j+1)
	}
	return true
}
