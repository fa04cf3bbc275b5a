// Package world is the spatial index of the game: tiles grouped into
// sectors, the entities standing on them, and the queries built on top of
// that (spectators, line of sight, path finding).
// Single-goroutine access only (game loop).
package world

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/l1jgo/worldcore/internal/core/event"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/metrics"
	"github.com/l1jgo/worldcore/internal/pathfind"
	"github.com/l1jgo/worldcore/internal/thing"
	"go.uber.org/zap"
)

// Options carries the optional collaborators of a Map. Every field may be
// left zero.
type Options struct {
	Bus   *event.Bus
	Stats *metrics.Stats
	Rand  *rand.Rand
}

// Map owns every sector and, through them, every tile.
type Map struct {
	Name   string
	Width  uint16
	Height uint16

	sectors map[uint32]*Sector
	houses  map[uint32]*House

	spectatorCache        map[geo.Position][]thing.Entity
	playersSpectatorCache map[geo.Position][]thing.Entity

	finder *pathfind.Finder
	rng    *rand.Rand
	bus    *event.Bus
	stats  *metrics.Stats
	log    *zap.Logger
}

func NewMap(log *zap.Logger, opts Options) *Map {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Map{
		sectors:               make(map[uint32]*Sector),
		houses:                make(map[uint32]*House),
		spectatorCache:        make(map[geo.Position][]thing.Entity),
		playersSpectatorCache: make(map[geo.Position][]thing.Entity),
		rng:                   rng,
		bus:                   opts.Bus,
		stats:                 opts.Stats,
		log:                   log,
	}
	m.finder = pathfind.NewFinder(m, opts.Stats)
	return m
}

// sectorAt takes signed coordinates so callers can look one sector past
// the map edge without wrapping.
func (m *Map) sectorAt(x, y int) *Sector {
	if x < 0 || y < 0 || x > 0xFFFF || y > 0xFFFF {
		return nil
	}
	return m.sectors[sectorKey(uint16(x), uint16(y))]
}

// SectorAt returns the sector holding x, y or nil.
func (m *Map) SectorAt(x, y uint16) *Sector {
	return m.sectors[sectorKey(x, y)]
}

func (m *Map) SectorCount() int { return len(m.sectors) }

// GetTile returns the tile at x, y, z or nil. The result is a nil
// interface, not a typed nil, when nothing is there.
func (m *Map) GetTile(x, y uint16, z uint8) thing.Tile {
	if z >= geo.MaxLayers {
		return nil
	}
	s := m.sectors[sectorKey(x, y)]
	if s == nil {
		return nil
	}
	return s.tile(x, y, z)
}

func (m *Map) TileAt(pos geo.Position) thing.Tile {
	return m.GetTile(pos.X, pos.Y, pos.Z)
}

// SetTile stores t at its own position. If a tile is already there, t's
// ground and items move onto it and t is dropped.
func (m *Map) SetTile(t thing.Tile) error {
	pos := t.Position()
	if pos.Z >= geo.MaxLayers {
		return fmt.Errorf("set tile %s: %w", pos, ErrInvalidLayer)
	}

	s := m.sectors[sectorKey(pos.X, pos.Y)]
	if s == nil {
		s = m.createSector(pos.X, pos.Y)
	}
	s.createFloor(pos.Z)

	slot := &s.floors[pos.Z][pos.X&sectorMask][pos.Y&sectorMask]
	existing := *slot
	if existing == nil {
		*slot = t
		return nil
	}
	for _, it := range t.TakeItems() {
		existing.AddItem(it)
	}
	if g := t.Ground(); g != nil {
		existing.SetGround(g)
		t.SetGround(nil)
	}
	return nil
}

// createSector adds an empty sector and links it with the sectors around
// it: north and west point at the new one, it points at south and east.
func (m *Map) createSector(x, y uint16) *Sector {
	s := &Sector{}
	m.sectors[sectorKey(x, y)] = s

	ix, iy := int(x), int(y)
	if north := m.sectorAt(ix, iy-SectorSize); north != nil {
		north.south = s
	}
	if west := m.sectorAt(ix-SectorSize, iy); west != nil {
		west.east = s
	}
	s.south = m.sectorAt(ix, iy+SectorSize)
	s.east = m.sectorAt(ix+SectorSize, iy)
	return s
}

// walkSectors visits every existing sector overlapping the rectangle
// x1,y1 - x2,y2 (inclusive), following neighbour links instead of hashing
// each sector's coordinates. fn receives the sector's origin.
func (m *Map) walkSectors(x1, y1, x2, y2 int, fn func(s *Sector, ox, oy int)) {
	startX := x1 - x1&sectorMask
	startY := y1 - y1&sectorMask
	endX := x2 - x2&sectorMask
	endY := y2 - y2&sectorMask

	sectorS := m.sectorAt(startX, startY)
	for ny := startY; ny <= endY; ny += SectorSize {
		sectorE := sectorS
		for nx := startX; nx <= endX; nx += SectorSize {
			if sectorE != nil {
				fn(sectorE, nx, ny)
				sectorE = sectorE.east
			} else {
				sectorE = m.sectorAt(nx+SectorSize, ny)
			}
		}
		if sectorS != nil {
			sectorS = sectorS.south
		} else {
			sectorS = m.sectorAt(startX, ny+SectorSize)
		}
	}
}

// GetFloorTiles returns the width x height block of layer z starting at
// x, y. The slice is column major: the tile at x+i, y+j is at
// i*height+j, nil where no tile exists.
func (m *Map) GetFloorTiles(x, y, width, height int, z uint8) []thing.Tile {
	if width <= 0 || height <= 0 || z >= geo.MaxLayers {
		return nil
	}
	tiles := make([]thing.Tile, width*height)

	x1, y1 := clampCoord(x), clampCoord(y)
	x2, y2 := clampCoord(x+width), clampCoord(y+height)
	m.walkSectors(x1, y1, x2, y2, func(s *Sector, ox, oy int) {
		f := s.floors[z]
		if f == nil || !s.HasFloor(z) {
			return
		}
		for i := 0; i < SectorSize; i++ {
			tx := ox + i - x
			if tx < 0 || tx >= width {
				continue
			}
			for j := 0; j < SectorSize; j++ {
				ty := oy + j - y
				if ty < 0 || ty >= height {
					continue
				}
				tiles[tx*height+ty] = f[i][j]
			}
		}
	})
	return tiles
}

// EachTile calls fn for every tile of the map, sector by sector.
func (m *Map) EachTile(fn func(thing.Tile)) {
	for _, s := range m.sectors {
		for z := uint8(0); z < uint8(geo.MaxLayers); z++ {
			f := s.floors[z]
			if f == nil {
				continue
			}
			for i := range f {
				for _, t := range f[i] {
					if t != nil {
						fn(t)
					}
				}
			}
		}
	}
}

func clampCoord(v int) int {
	return min(0xFFFF, max(0, v))
}
