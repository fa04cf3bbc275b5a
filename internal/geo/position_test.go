package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistances(t *testing.T) {
	a := Pos(100, 200, 7)
	b := Pos(103, 198, 5)

	assert.Equal(t, -3, OffsetX(a, b))
	assert.Equal(t, 2, OffsetY(a, b))
	assert.Equal(t, 2, OffsetZ(a, b))
	assert.Equal(t, 3, DistanceX(a, b))
	assert.Equal(t, 2, DistanceY(a, b))
	assert.Equal(t, 3, Chebyshev(a, b))
	assert.True(t, InRange(a, b, 3, 2, 2))
	assert.False(t, InRange(a, b, 3, 2, 1))
	assert.False(t, InRange2D(a, b, 2, 2))
}

func TestMovedMatchesDelta(t *testing.T) {
	start := Pos(50, 50, 7)
	for d := North; d <= NorthEast; d++ {
		next := start.Moved(d)
		delta := d.Delta()
		assert.Equal(t, delta.X, OffsetX(next, start), d.String())
		assert.Equal(t, delta.Y, OffsetY(next, start), d.String())
		assert.Equal(t, d.Diagonal(), delta.X != 0 && delta.Y != 0, d.String())
	}
}

func TestDirectionTo(t *testing.T) {
	c := Pos(10, 10, 7)
	tests := []struct {
		to   Position
		want Direction
	}{
		{Pos(10, 9, 7), North},
		{Pos(10, 11, 7), South},
		{Pos(11, 10, 7), East},
		{Pos(9, 10, 7), West},
		{Pos(11, 9, 7), East},
		{Pos(9, 11, 7), West},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DirectionTo(c, tt.to), tt.to.String())
	}
}

func TestUnderground(t *testing.T) {
	assert.False(t, Pos(0, 0, 7).Underground())
	assert.True(t, Pos(0, 0, 8).Underground())
}
