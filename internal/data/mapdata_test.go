package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l1jgo/worldcore/internal/creature"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/l1jgo/worldcore/internal/tile"
	"github.com/l1jgo/worldcore/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const mapList = `name: harbour
maps:
  - name: town
    floor: 7
    start_x: 100
    end_x: 103
    start_y: 200
    end_y: 202
    ground_id: 102
  - name: missing
    floor: 8
    start_x: 0
    end_x: 9
    start_y: 0
    end_y: 9
houses:
  - id: 3
    name: Fisher Hut
    rent: 500
    entry: { x: 101, y: 202, z: 7 }
    floor: 7
    start_x: 102
    end_x: 103
    start_y: 200
    end_y: 201
actions:
  - { x: 100, y: 200, z: 7, action_id: 2000 }
`

// Columns are x 100..103, rows are y 200..202.
const townTiles = `# town
17,1,1,1
1,7,1,65
0,1,129,33
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type scriptCounter struct{ in int }

func (s *scriptCounter) OnStepIn(*tile.Tile, thing.Entity, thing.Tile)  { s.in++ }
func (s *scriptCounter) OnStepOut(*tile.Tile, thing.Entity, thing.Tile) {}

func TestLoadMapData(t *testing.T) {
	dir := t.TempDir()
	listPath := writeFile(t, dir, "map_list.yaml", mapList)
	writeFile(t, dir, "town.txt", townTiles)

	core, logs := observer.New(zapcore.WarnLevel)
	table, err := LoadMapData(listPath, dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Count(), "area without a tile file is skipped")
	skipped := logs.FilterMessage("map area has no tile data, skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "missing", skipped[0].ContextMap()["area"])
	assert.Equal(t, "town", table.Areas()[0].Name)

	m := world.NewMap(zap.NewNop(), world.Options{})
	scripts := &scriptCounter{}
	n, err := table.Populate(m, scripts)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "harbour", m.Name)
	assert.Equal(t, uint16(104), m.Width)
	assert.Equal(t, uint16(203), m.Height)

	assert.Nil(t, m.GetTile(100, 202, 7), "void")

	safe := m.GetTile(100, 200, 7)
	require.NotNil(t, safe)
	assert.True(t, safe.HasFlag(thing.ProtectionZone))
	assert.Equal(t, uint16(102), safe.Ground().ID())

	wall := m.GetTile(101, 201, 7)
	assert.True(t, wall.HasFlag(thing.BlockSolid))
	assert.True(t, wall.HasFlag(thing.BlockProjectile))
	require.Len(t, wall.Items(), 1)
	assert.False(t, wall.Items()[0].Movable(), "map walls are not house items")

	assert.True(t, m.GetTile(103, 201, 7).HasFlag(thing.FloorChange))
	assert.True(t, m.GetTile(102, 202, 7).HasFlag(thing.BlockPath))
	assert.True(t, m.GetTile(103, 202, 7).HasFlag(thing.NoLogout))

	h := m.House(3)
	require.NotNil(t, h)
	assert.Equal(t, "Fisher Hut", h.Name)
	assert.Equal(t, uint32(500), h.Rent)
	assert.Equal(t, geo.Pos(101, 202, 7), h.Entry)
	assert.Len(t, h.Tiles(), 4)
	assert.Same(t, h, m.GetTile(102, 200, 7).House())

	c := creature.New(1, "alice", creature.KindPlayer)
	require.True(t, m.PlaceEntity(geo.Pos(101, 200, 7), c, false, false))
	m.MoveEntity(c, m.GetTile(100, 200, 7), false)
	assert.Equal(t, 1, scripts.in)
}

func TestLoadMapDataErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMapData(filepath.Join(dir, "absent.yaml"), dir, zap.NewNop())
	assert.Error(t, err)

	listPath := writeFile(t, dir, "map_list.yaml", mapList)
	_, err = LoadMapData(listPath, dir, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoMaps)

	bad := writeFile(t, dir, "bad.yaml", "maps: [")
	_, err = LoadMapData(bad, dir, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadSpawnList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "spawn_list.yaml", `spawns:
  - { name: rat, x: 10, y: 12, z: 7, count: 3, radius: 4 }
  - { name: guard, kind: npc, x: 20, y: 20, z: 7 }
`)
	spawns, err := LoadSpawnList(path)
	require.NoError(t, err)
	require.Len(t, spawns, 2)
	assert.Equal(t, SpawnEntry{Name: "rat", Kind: "monster", X: 10, Y: 12, Z: 7, Count: 3, Radius: 4}, spawns[0])
	assert.Equal(t, "npc", spawns[1].Kind)
	assert.Equal(t, 1, spawns[1].Count)
}

func TestPortals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "portal_list.yaml", `- src: { x: 2, y: 2, z: 7 }
  dst: { x: 8, y: 8, z: 7 }
  note: stairs
- src: { x: 3, y: 3, z: 7 }
  dst: { x: 60, y: 60, z: 7 }
- src: { x: 90, y: 90, z: 7 }
  dst: { x: 1, y: 1, z: 7 }
`)
	portals, err := LoadPortalTable(path)
	require.NoError(t, err)
	assert.Equal(t, 3, portals.Count())
	assert.Equal(t, "stairs", portals.Get(geo.Pos(2, 2, 7)).Note)

	m := world.NewMap(zap.NewNop(), world.Options{})
	for x := uint16(0); x < 10; x++ {
		for y := uint16(0); y < 10; y++ {
			require.NoError(t, m.SetTile(tile.NewWithGround(geo.Pos(x, y, 7), grassID, 0)))
		}
	}
	assert.Equal(t, 2, portals.Bind(m, zap.NewNop()))
	assert.True(t, m.GetTile(2, 2, 7).HasFlag(thing.Teleport))

	c := creature.New(1, "alice", creature.KindPlayer)
	require.True(t, m.PlaceEntity(geo.Pos(1, 1, 7), c, false, true))
	m.MoveEntity(c, m.GetTile(2, 2, 7), false)
	assert.Equal(t, geo.Pos(8, 8, 7), c.Position())
	assert.Empty(t, m.GetTile(2, 2, 7).Entities())

	m.MoveEntity(c, m.GetTile(3, 3, 7), true)
	assert.Equal(t, geo.Pos(3, 3, 7), c.Position(), "destination without a tile")
}

func TestTwoWayPortals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "portal_list.yaml", `- src: { x: 5, y: 5, z: 7 }
  dst: { x: 8, y: 8, z: 7 }
  note: up
- src: { x: 8, y: 8, z: 7 }
  dst: { x: 5, y: 5, z: 7 }
  note: down
`)
	portals, err := LoadPortalTable(path)
	require.NoError(t, err)

	m := world.NewMap(zap.NewNop(), world.Options{})
	for x := uint16(0); x < 10; x++ {
		for y := uint16(0); y < 10; y++ {
			require.NoError(t, m.SetTile(tile.NewWithGround(geo.Pos(x, y, 7), grassID, 0)))
		}
	}
	core, logs := observer.New(zapcore.WarnLevel)
	assert.Equal(t, 2, portals.Bind(m, zap.New(core)))
	assert.Equal(t, 2, logs.FilterMessage("portal leads onto another portal").Len())

	c := creature.New(1, "alice", creature.KindPlayer)
	require.True(t, m.PlaceEntity(geo.Pos(4, 5, 7), c, false, true))

	m.MoveEntity(c, m.GetTile(5, 5, 7), false)
	assert.Equal(t, geo.Pos(8, 8, 7), c.Position())
	assert.Empty(t, m.GetTile(5, 5, 7).Entities())

	m.MoveEntity(c, m.GetTile(9, 8, 7), false)
	m.MoveEntity(c, m.GetTile(8, 8, 7), false)
	assert.Equal(t, geo.Pos(5, 5, 7), c.Position(), "the way back still works")
	assert.Len(t, m.GetTile(5, 5, 7).Entities(), 1)
}

func TestGenerateIsDeterministic(t *testing.T) {
	opts := GenerateOptions{Seed: 42, OriginX: 1000, OriginY: 1000, Width: 40, Height: 30, Floor: 7}
	a := world.NewMap(zap.NewNop(), world.Options{})
	b := world.NewMap(zap.NewNop(), world.Options{})

	n, err := Generate(a, opts)
	require.NoError(t, err)
	assert.Equal(t, 1200, n)
	_, err = Generate(b, opts)
	require.NoError(t, err)

	kinds := map[uint16]int{}
	for x := uint16(1000); x < 1040; x++ {
		for y := uint16(1000); y < 1030; y++ {
			ta, tb := a.GetTile(x, y, 7), b.GetTile(x, y, 7)
			require.NotNil(t, ta)
			assert.Equal(t, ta.Ground().ID(), tb.Ground().ID())
			assert.Equal(t, len(ta.Items()), len(tb.Items()))
			kinds[ta.Ground().ID()]++
		}
	}
	assert.NotZero(t, kinds[grassID])

	_, err = Generate(a, GenerateOptions{Width: 0, Height: 5})
	assert.Error(t, err)
	_, err = Generate(a, GenerateOptions{OriginX: 0xFFF0, Width: 100, Height: 5})
	assert.Error(t, err)
}
