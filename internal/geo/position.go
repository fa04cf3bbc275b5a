package geo

import "fmt"

// MaxLayers is the number of vertical layers. Layers 0..7 are surface
// (7 is ground level), 8..15 are underground.
const MaxLayers = 16

// SurfaceLayer is the ground-level layer.
const SurfaceLayer = 7

// Position addresses a single tile.
type Position struct {
	X uint16
	Y uint16
	Z uint8
}

func Pos(x, y uint16, z uint8) Position {
	return Position{X: x, Y: y, Z: z}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Underground reports whether p is below ground level.
func (p Position) Underground() bool { return p.Z > SurfaceLayer }

// OffsetX returns a.X - b.X.
func OffsetX(a, b Position) int { return int(a.X) - int(b.X) }

// OffsetY returns a.Y - b.Y.
func OffsetY(a, b Position) int { return int(a.Y) - int(b.Y) }

// OffsetZ returns a.Z - b.Z.
func OffsetZ(a, b Position) int { return int(a.Z) - int(b.Z) }

func DistanceX(a, b Position) int { return abs(OffsetX(a, b)) }
func DistanceY(a, b Position) int { return abs(OffsetY(a, b)) }
func DistanceZ(a, b Position) int { return abs(OffsetZ(a, b)) }

// Chebyshev returns the larger of the X and Y distances.
func Chebyshev(a, b Position) int {
	return max(DistanceX(a, b), DistanceY(a, b))
}

// InRange2D reports whether a and b are within dx, dy of each other on the plane.
func InRange2D(a, b Position, dx, dy int) bool {
	return DistanceX(a, b) <= dx && DistanceY(a, b) <= dy
}

// InRange reports whether a and b are within dx, dy, dz of each other.
func InRange(a, b Position, dx, dy, dz int) bool {
	return InRange2D(a, b, dx, dy) && DistanceZ(a, b) <= dz
}

// Moved returns p shifted one step in dir. Coordinates wrap at the
// uint16 boundary; callers stepping off the map get a tile lookup miss.
func (p Position) Moved(dir Direction) Position {
	d := dir.Delta()
	return Position{X: uint16(int(p.X) + d.X), Y: uint16(int(p.Y) + d.Y), Z: p.Z}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
