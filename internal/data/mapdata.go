package data

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/l1jgo/worldcore/internal/tile"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNoMaps is returned when a map list yields no tile data at all.
var ErrNoMaps = errors.New("data: no map areas loaded")

// AreaInfo describes one rectangular area of one layer, loaded from the map
// list. Its tiles come from {name}.txt in the tile directory.
type AreaInfo struct {
	Name     string `yaml:"name"`
	Floor    uint8  `yaml:"floor"`
	StartX   uint16 `yaml:"start_x"`
	EndX     uint16 `yaml:"end_x"`
	StartY   uint16 `yaml:"start_y"`
	EndY     uint16 `yaml:"end_y"`
	GroundID uint16 `yaml:"ground_id"`
}

// Point is a yaml friendly position.
type Point struct {
	X uint16 `yaml:"x"`
	Y uint16 `yaml:"y"`
	Z uint8  `yaml:"z"`
}

func (p Point) Pos() geo.Position { return geo.Pos(p.X, p.Y, p.Z) }

// HouseEntry is a house declared in the map list. Every existing tile in
// its rectangle joins the house.
type HouseEntry struct {
	ID     uint32 `yaml:"id"`
	Name   string `yaml:"name"`
	Rent   uint32 `yaml:"rent"`
	Entry  Point  `yaml:"entry"`
	Floor  uint8  `yaml:"floor"`
	StartX uint16 `yaml:"start_x"`
	EndX   uint16 `yaml:"end_x"`
	StartY uint16 `yaml:"start_y"`
	EndY   uint16 `yaml:"end_y"`
}

// ActionEntry binds a tile to a movement script.
type ActionEntry struct {
	Point    `yaml:",inline"`
	ActionID uint16 `yaml:"action_id"`
}

type area struct {
	info   AreaInfo
	tiles  []byte // flat array [x * height + y], row-major by X
	width  int
	height int
}

// MapDataTable is a parsed map list with the tile data of its areas.
type MapDataTable struct {
	Name    string
	areas   []*area
	houses  []HouseEntry
	actions []ActionEntry
}

// Tile byte layout.
const (
	tileGround      byte = 0x01
	tileSolid       byte = 0x02
	tileProjectile  byte = 0x04
	tileZoneMask    byte = 0x30
	tileZoneNormal  byte = 0x00
	tileZoneSafety  byte = 0x10
	tileZoneNoQuit  byte = 0x20
	tileFloorChange byte = 0x40
	tileBlockPath   byte = 0x80
)

// wallItemID is the item standing on tiles marked solid or blocking
// projectiles in the tile files.
const wallItemID = 1026

type mapListFile struct {
	Name    string        `yaml:"name"`
	Areas   []AreaInfo    `yaml:"maps"`
	Houses  []HouseEntry  `yaml:"houses"`
	Actions []ActionEntry `yaml:"actions"`
}

// LoadMapData loads the map list from YAML and tile data from text files.
// yamlPath: path to the map list
// tileDir: directory containing {name}.txt tile files
// Areas with bad bounds or an unreadable tile file are skipped with a warning.
func LoadMapData(yamlPath, tileDir string, log *zap.Logger) (*MapDataTable, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", yamlPath, err)
	}
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	table := &MapDataTable{
		Name:    file.Name,
		areas:   make([]*area, 0, len(file.Areas)),
		houses:  file.Houses,
		actions: file.Actions,
	}
	for _, info := range file.Areas {
		if info.EndX < info.StartX || info.EndY < info.StartY || info.Floor >= geo.MaxLayers {
			log.Warn("map area out of bounds, skipped", zap.String("area", info.Name), zap.Uint8("floor", info.Floor))
			continue
		}
		width := int(info.EndX-info.StartX) + 1
		height := int(info.EndY-info.StartY) + 1

		tiles, err := loadTileFile(tileDir, info.Name, width, height)
		if err != nil {
			log.Warn("map area has no tile data, skipped", zap.String("area", info.Name), zap.Error(err))
			continue
		}
		table.areas = append(table.areas, &area{info: info, tiles: tiles, width: width, height: height})
	}
	if len(table.areas) == 0 {
		return nil, fmt.Errorf("load %s: %w", yamlPath, ErrNoMaps)
	}
	return table, nil
}

// loadTileFile reads a CSV tile file: each line is a row of comma-separated
// byte values, file rows = Y lines, columns = X values.
func loadTileFile(dir, name string, xSize, ySize int) ([]byte, error) {
	f, err := os.Open(filepath.Join(dir, name+".txt"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tiles := make([]byte, xSize*ySize)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	y := 0
	for scanner.Scan() && y < ySize {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		x := 0
		for _, tok := range strings.Split(line, ",") {
			if x >= xSize {
				break
			}
			val, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 8)
			if err != nil {
				val = 0
			}
			tiles[x*ySize+y] = byte(val)
			x++
		}
		y++
	}

	return tiles, scanner.Err()
}

// Count returns the number of areas loaded with tile data.
func (t *MapDataTable) Count() int { return len(t.areas) }

// Areas returns the metadata of every loaded area.
func (t *MapDataTable) Areas() []AreaInfo {
	out := make([]AreaInfo, len(t.areas))
	for i, a := range t.areas {
		out[i] = a.info
	}
	return out
}

// Populate builds the tiles of every area into m, then the houses and the
// action tiles. Action tiles report to scripts, which may be nil. It
// returns the number of tiles created.
func (t *MapDataTable) Populate(m *world.Map, scripts tile.StepListener) (int, error) {
	m.Name = t.Name
	count := 0
	for _, a := range t.areas {
		for lx := 0; lx < a.width; lx++ {
			for ly := 0; ly < a.height; ly++ {
				pos := geo.Pos(a.info.StartX+uint16(lx), a.info.StartY+uint16(ly), a.info.Floor)
				tl := buildTile(pos, a.tiles[lx*a.height+ly], a.info.GroundID)
				if tl == nil {
					continue
				}
				if err := m.SetTile(tl); err != nil {
					return count, fmt.Errorf("area %s: %w", a.info.Name, err)
				}
				count++
			}
		}
		m.Width = max(m.Width, a.info.EndX+1)
		m.Height = max(m.Height, a.info.EndY+1)
	}

	for _, he := range t.houses {
		h := world.NewHouse(he.ID, he.Name, he.Entry.Pos())
		h.Rent = he.Rent
		for x := int(he.StartX); x <= int(he.EndX); x++ {
			for y := int(he.StartY); y <= int(he.EndY); y++ {
				if tl, ok := m.GetTile(uint16(x), uint16(y), he.Floor).(*tile.Tile); ok {
					h.AddTile(tl)
				}
			}
		}
		m.AddHouse(h)
	}

	if scripts != nil {
		for _, ae := range t.actions {
			if tl, ok := m.TileAt(ae.Pos()).(*tile.Tile); ok {
				tl.SetActionID(ae.ActionID, scripts)
			}
		}
	}
	return count, nil
}

// buildTile turns a tile byte into a tile, or nil for void.
func buildTile(pos geo.Position, b byte, groundID uint16) *tile.Tile {
	if b&tileGround == 0 {
		return nil
	}

	var flags thing.TileFlags
	switch b & tileZoneMask {
	case tileZoneSafety:
		flags |= thing.ProtectionZone
	case tileZoneNoQuit:
		flags |= thing.NoLogout
	}
	if b&tileFloorChange != 0 {
		flags |= thing.FloorChange
	}
	if b&tileBlockPath != 0 {
		flags |= thing.BlockPath
	}
	t := tile.NewWithGround(pos, groundID, flags)

	var wall thing.TileFlags
	if b&tileSolid != 0 {
		wall |= thing.BlockSolid
	}
	if b&tileProjectile != 0 {
		wall |= thing.BlockProjectile
	}
	if wall != 0 {
		t.AddItem(&tile.Item{TypeID: wallItemID, Amount: 1, TileFlags: wall, OnTop: true, Fixed: true})
	}
	return t
}
