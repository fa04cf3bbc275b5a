package tile

import (
	"testing"

	"github.com/l1jgo/worldcore/internal/creature"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/stretchr/testify/assert"
)

type house struct {
	owner string
}

func (h house) HouseID() uint32              { return 1 }
func (h house) CanEnter(e thing.Entity) bool { return e.Name() == h.owner }

type steps struct {
	in, out int
}

func (s *steps) OnStepIn(*Tile, thing.Entity, thing.Tile)  { s.in++ }
func (s *steps) OnStepOut(*Tile, thing.Entity, thing.Tile) { s.out++ }

func TestQueryAdd(t *testing.T) {
	pos := geo.Pos(10, 10, 7)
	player := creature.New(1, "alice", creature.KindPlayer)
	monster := creature.New(2, "rat", creature.KindMonster)
	other := creature.New(3, "bob", creature.KindPlayer)

	t.Run("no ground", func(t *testing.T) {
		assert.Equal(t, thing.NotPossible, New(pos, 0).QueryAdd(player, 0))
	})

	t.Run("occupied", func(t *testing.T) {
		tl := NewWithGround(pos, 100, 0)
		tl.AddEntity(other)
		assert.Equal(t, thing.NotEnoughRoom, tl.QueryAdd(player, 0))
		assert.Equal(t, thing.NoError, tl.QueryAdd(player, thing.FlagIgnoreBlockCreature))
		assert.Equal(t, thing.NoError, tl.QueryAdd(player, thing.FlagPathFinding))
	})

	t.Run("ghost does not block", func(t *testing.T) {
		tl := NewWithGround(pos, 100, 0)
		g := creature.New(4, "gm", creature.KindPlayer)
		g.SetGhost(true)
		tl.AddEntity(g)
		assert.Equal(t, thing.NoError, tl.QueryAdd(player, 0))
	})

	t.Run("blocking item", func(t *testing.T) {
		tl := NewWithGround(pos, 100, 0)
		tl.AddItem(&Item{TypeID: 1987, TileFlags: thing.BlockSolid})
		assert.Equal(t, thing.NotPossible, tl.QueryAdd(player, 0))
		assert.Equal(t, thing.NoError, tl.QueryAdd(player, thing.FlagIgnoreBlockItem))
	})

	t.Run("wall ground", func(t *testing.T) {
		tl := New(pos, 0)
		tl.SetGround(&Item{TypeID: 1, TileFlags: thing.BlockSolid | thing.BlockProjectile})
		assert.Equal(t, thing.NotPossible, tl.QueryAdd(player, thing.FlagIgnoreBlockItem))
	})

	t.Run("monster and protection zone", func(t *testing.T) {
		tl := NewWithGround(pos, 100, thing.ProtectionZone)
		assert.Equal(t, thing.NotPossible, tl.QueryAdd(monster, 0))
		assert.Equal(t, thing.NoError, tl.QueryAdd(player, 0))
	})

	t.Run("pathfinding avoids floor change", func(t *testing.T) {
		tl := NewWithGround(pos, 100, thing.FloorChange)
		assert.Equal(t, thing.NotPossible, tl.QueryAdd(monster, thing.FlagPathFinding))
		assert.Equal(t, thing.NoError, tl.QueryAdd(monster, 0))
	})

	t.Run("field damage", func(t *testing.T) {
		tl := NewWithGround(pos, 100, 0)
		tl.AddItem(&Item{TypeID: 1492, FieldKind: thing.FieldFire})
		assert.Equal(t, thing.NotPossible, tl.QueryAdd(monster, 0))
		assert.Equal(t, thing.NoError, tl.QueryAdd(monster, thing.FlagIgnoreFieldDamage))
		assert.Equal(t, thing.NoError, tl.QueryAdd(player, 0))
	})

	t.Run("house", func(t *testing.T) {
		tl := NewWithGround(pos, 100, 0)
		tl.SetHouse(house{owner: "alice"})
		assert.Equal(t, thing.NoError, tl.QueryAdd(player, 0))
		assert.Equal(t, thing.PlayerIsNotInvited, tl.QueryAdd(other, 0))
	})
}

func TestEntityStack(t *testing.T) {
	pos := geo.Pos(3, 4, 7)
	tl := NewWithGround(pos, 100, 0)
	tl.AddItem(&Item{TypeID: 5, OnTop: true})
	tl.AddItem(&Item{TypeID: 6})

	viewer := creature.New(1, "viewer", creature.KindPlayer)
	a := creature.New(2, "a", creature.KindMonster)
	b := creature.New(3, "b", creature.KindMonster)
	g := creature.New(4, "g", creature.KindPlayer)
	g.SetGhost(true)

	tl.AddEntity(a)
	tl.AddEntity(g)
	tl.AddEntity(b)
	assert.Equal(t, pos, a.Position())

	// ground + top item, then b, then the invisible ghost, then a
	assert.Equal(t, 2, tl.StackIndexOf(viewer, b))
	assert.Equal(t, 3, tl.StackIndexOf(viewer, a))
	assert.Equal(t, -1, tl.StackIndexOf(viewer, viewer))
	assert.Equal(t, 6, tl.ThingCount())
	assert.Equal(t, thing.Entity(b), tl.TopVisibleEntity(viewer))

	assert.True(t, tl.RemoveEntity(b))
	assert.False(t, tl.RemoveEntity(b))
	assert.Equal(t, thing.Entity(a), tl.TopVisibleEntity(viewer))
	assert.Equal(t, thing.Entity(g), tl.TopVisibleEntity(nil))
}

func TestFlagsMerge(t *testing.T) {
	tl := NewWithGround(geo.Pos(0, 0, 7), 100, thing.NoLogout)
	assert.False(t, tl.HasFlag(thing.BlockProjectile))
	wall := &Item{TypeID: 1050, TileFlags: thing.BlockProjectile | thing.BlockSolid}
	tl.AddItem(wall)
	assert.True(t, tl.HasFlag(thing.BlockProjectile))
	assert.True(t, tl.HasFlag(thing.NoLogout))
	assert.True(t, tl.RemoveItem(wall))
	assert.False(t, tl.HasFlag(thing.BlockProjectile))

	tl.AddItem(&Item{TypeID: 1})
	assert.Len(t, tl.TakeItems(), 1)
	assert.Empty(t, tl.Items())
}

func TestStepNotificationsNeedActionID(t *testing.T) {
	tl := NewWithGround(geo.Pos(0, 0, 7), 100, 0)
	c := creature.New(1, "a", creature.KindPlayer)
	s := &steps{}

	tl.SetActionID(0, s)
	tl.PostAddNotification(c, nil)
	assert.Zero(t, s.in)

	tl.SetActionID(1000, s)
	tl.PostAddNotification(c, nil)
	tl.PostRemoveNotification(c, nil)
	assert.Equal(t, 1, s.in)
	assert.Equal(t, 1, s.out)
}
