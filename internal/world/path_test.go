package world

import (
	"testing"

	"github.com/l1jgo/worldcore/internal/creature"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/pathfind"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathToAroundWall(t *testing.T) {
	m := newTestMap(nil)
	ground(t, m, 0, 0, 12, 12, 7)
	for y := uint16(0); y <= 8; y++ {
		block(m, 5, y, 7, thing.BlockSolid)
	}
	rat := creature.New(1, "rat", creature.KindMonster)
	place(t, m, rat, 2, 2, 7)

	target := geo.Pos(9, 2, 7)
	dirs, ok := m.GetPathTo(rat, target, pathfind.Params{FullPathSearch: true, MaxSearchDist: 20})
	require.True(t, ok)

	pos := rat.Position()
	for i := len(dirs) - 1; i >= 0; i-- {
		pos = pos.Moved(dirs[i])
		require.NotNil(t, m.CanWalkTo(rat, pos), "blocked step at %s", pos)
	}
	assert.Equal(t, target, pos)
}

func TestCanWalkTo(t *testing.T) {
	m := newTestMap(nil)
	ground(t, m, 0, 0, 3, 3, 7)
	block(m, 1, 1, 7, thing.BlockSolid)
	rat := creature.New(1, "rat", creature.KindMonster)

	assert.NotNil(t, m.CanWalkTo(rat, geo.Pos(2, 2, 7)))
	assert.Nil(t, m.CanWalkTo(rat, geo.Pos(1, 1, 7)))
	assert.Nil(t, m.CanWalkTo(rat, geo.Pos(9, 9, 7)))
}
