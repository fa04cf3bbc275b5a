package world

import (
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
)

// CanThrowObjectTo reports whether something thrown from from can land on
// to. Throws never cross between the surface and the caves and reach at
// most two layers; every layer of difference buys one tile of range.
func (m *Map) CanThrowObjectTo(from, to geo.Position, checkLineOfSight bool, rangeX, rangeY int) bool {
	if from.Underground() != to.Underground() {
		return false
	}
	dz := geo.DistanceZ(from, to)
	if dz > 2 {
		return false
	}
	if geo.DistanceX(from, to)-dz > rangeX || geo.DistanceY(from, to)-dz > rangeY {
		return false
	}
	if !checkLineOfSight {
		return true
	}
	return m.IsSightClear(from, to, false)
}

// CanThrow is CanThrowObjectTo with line of sight and the client viewport.
func (m *Map) CanThrow(from, to geo.Position) bool {
	return m.CanThrowObjectTo(from, to, true, MaxClientViewportX, MaxClientViewportY)
}

// IsSightClear reports whether a projectile can travel between the two
// positions. With floorCheck both must be on the same layer.
func (m *Map) IsSightClear(from, to geo.Position, floorCheck bool) bool {
	ok := m.isSightClear(from, to, floorCheck)
	m.stats.SightCheck(ok)
	return ok
}

func (m *Map) isSightClear(from, to geo.Position, floorCheck bool) bool {
	if floorCheck && from.Z != to.Z {
		return false
	}
	if t := m.GetTile(to.X, to.Y, min(from.Z, to.Z)); t != nil && t.HasFlag(thing.BlockProjectile) {
		return false
	}
	if from.Z == to.Z && geo.InRange2D(from, to, 1, 1) {
		return true
	}
	// Integer lines are not symmetric; either direction being clear is
	// enough.
	return m.CheckSightLine(from, to) || m.CheckSightLine(to, from)
}

// CheckSightLine casts one ray from the lower of the two positions to the
// higher one and reports whether it reaches. The planar part stops at
// tiles that block projectiles; the vertical part needs every layer above
// the destination to be empty.
func (m *Map) CheckSightLine(from, to geo.Position) bool {
	if from == to {
		return true
	}

	start, dest := from, to
	if from.Z > to.Z {
		start, dest = to, from
	}
	distX := geo.DistanceX(start, dest)
	distY := geo.DistanceY(start, dest)
	stepX := sign(geo.OffsetX(dest, start))
	stepY := sign(geo.OffsetY(dest, start))
	x, y := int(start.X), int(start.Y)

	switch {
	case start.Y == dest.Y, start.X == dest.X, distX == distY:
		// Straight lines visit every cell between the endpoints.
		for i := 1; i < max(distX, distY); i++ {
			x += stepX
			y += stepY
			if m.blocksProjectile(x, y, start.Z) {
				return false
			}
		}

	default:
		dist, delta := distX, 2*distY-distX
		d1, d2 := 2*distY, 2*(distY-distX)
		x1, x2, y1, y2 := stepX, stepX, 0, stepY
		if distX < distY {
			dist, delta = distY, 2*distX-distY
			d1, d2 = 2*distX, 2*(distX-distY)
			x1, x2, y1, y2 = 0, stepX, stepY, stepY
		}

		for i := 1; i < dist; i++ {
			incX, incY := x2, y2
			if delta < 0 {
				delta += d1
				incX, incY = x1, y1
			} else {
				delta += d2
			}

			if m.blocksProjectile(x+incX, y+incY, start.Z) {
				cur := geo.Pos(uint16(x), uint16(y), start.Z)
				if geo.InRange2D(cur, dest, 1, 1) {
					break
				}
				return false
			}
			x += incX
			y += incY
		}
	}

	for z := start.Z; z != dest.Z; z++ {
		if t := m.GetTile(dest.X, dest.Y, z); t != nil && t.ThingCount() > 0 {
			return false
		}
	}
	return true
}

func (m *Map) blocksProjectile(x, y int, z uint8) bool {
	if x < 0 || y < 0 || x > 0xFFFF || y > 0xFFFF {
		return false
	}
	t := m.GetTile(uint16(x), uint16(y), z)
	return t != nil && t.HasFlag(thing.BlockProjectile)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
