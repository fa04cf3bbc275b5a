package geo

// Direction is an 8-way compass heading. The numbering is load-bearing:
// pathfinding neighbour tables are indexed by it.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
	SouthWest
	SouthEast
	NorthWest
	NorthEast
)

// Delta is a unit step on the plane. North is -Y.
type Delta struct {
	X, Y int
}

var directionDeltas = [8]Delta{
	North:     {0, -1},
	East:      {1, 0},
	South:     {0, 1},
	West:      {-1, 0},
	SouthWest: {-1, 1},
	SouthEast: {1, 1},
	NorthWest: {-1, -1},
	NorthEast: {1, -1},
}

var directionNames = [8]string{"north", "east", "south", "west", "southwest", "southeast", "northwest", "northeast"}

func (d Direction) Delta() Delta {
	if int(d) >= len(directionDeltas) {
		return Delta{}
	}
	return directionDeltas[d]
}

func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// Diagonal reports whether d moves on both axes.
func (d Direction) Diagonal() bool { return d >= SouthWest }

// DirectionTo returns the heading an entity stepping from a to b faces.
// Vertical movement is applied first and horizontal overrides it, so a
// diagonal step faces east or west.
func DirectionTo(a, b Position) Direction {
	dir := South
	if a.Y > b.Y {
		dir = North
	} else if a.Y < b.Y {
		dir = South
	}
	if a.X < b.X {
		dir = East
	} else if a.X > b.X {
		dir = West
	}
	return dir
}
