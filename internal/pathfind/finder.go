// Package pathfind is a bounded A* over the tile grid. Each search owns a
// fixed pool of MaxNodes nodes, so the memory of a search never grows with
// the distance to the goal.
package pathfind

import (
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/metrics"
	"github.com/l1jgo/worldcore/internal/thing"
)

const (
	NormalWalkCost   = 10
	DiagonalWalkCost = 25

	// closedBudget caps a search without a max search distance.
	closedBudget = 100
)

// SightChecker answers line-of-sight queries.
type SightChecker interface {
	IsSightClear(from, to geo.Position, floorCheck bool) bool
}

// Grid is the map as seen by the pathfinder.
type Grid interface {
	SightChecker
	GetTile(x, y uint16, z uint8) thing.Tile
}

// Params tune a search.
type Params struct {
	FullPathSearch bool
	ClearSight     bool
	KeepDistance   bool
	MaxSearchDist  int
	MinTargetDist  int
	MaxTargetDist  int
}

// Condition accepts or rejects reached positions. Match may lower
// *bestMatch to 0 to stop the search at the current node.
type Condition interface {
	Match(start, test geo.Position, p Params, bestMatch *int) bool
	InRange(start, test geo.Position, p Params) bool
}

// Neighbour offsets. A node reached from a parent only expands the five
// cells not adjacent to the parent; the table is picked by the parent's
// side and indexed by geo.Direction.
var dirNeighbors = [8][5][2]int32{
	geo.North:     {{-1, 0}, {0, 1}, {1, 0}, {1, 1}, {-1, 1}},
	geo.East:      {{-1, 0}, {0, 1}, {0, -1}, {-1, -1}, {-1, 1}},
	geo.South:     {{-1, 0}, {1, 0}, {0, -1}, {-1, -1}, {1, -1}},
	geo.West:      {{0, 1}, {1, 0}, {0, -1}, {1, -1}, {1, 1}},
	geo.SouthWest: {{1, 0}, {0, -1}, {-1, -1}, {1, -1}, {1, 1}},
	geo.SouthEast: {{-1, 0}, {0, -1}, {-1, -1}, {1, -1}, {-1, 1}},
	geo.NorthWest: {{0, 1}, {1, 0}, {1, -1}, {1, 1}, {-1, 1}},
	geo.NorthEast: {{-1, 0}, {0, 1}, {-1, -1}, {1, 1}, {-1, 1}},
}

var allNeighbors = [8][2]int32{
	{-1, 0}, {0, 1}, {1, 0}, {0, -1}, {-1, -1}, {1, -1}, {1, 1}, {-1, 1},
}

// parentSide maps the offset from a node to its parent onto the
// neighbour table to use.
func parentSide(offsetX, offsetY int32) geo.Direction {
	switch {
	case offsetY == 0:
		if offsetX == -1 {
			return geo.West
		}
		return geo.East
	case offsetX == 0:
		if offsetY == -1 {
			return geo.North
		}
		return geo.South
	case offsetY == -1:
		if offsetX == -1 {
			return geo.NorthWest
		}
		return geo.NorthEast
	case offsetX == -1:
		return geo.SouthWest
	}
	return geo.SouthEast
}

// Finder runs searches against one grid. It keeps no per-search state and
// is safe to share between goroutines as long as the grid is.
type Finder struct {
	grid  Grid
	stats *metrics.Stats
}

func NewFinder(grid Grid, stats *metrics.Stats) *Finder {
	return &Finder{grid: grid, stats: stats}
}

// CanWalkTo returns the tile at pos when e may path through it. The
// entity's walk cache answers first when it has an opinion.
func (f *Finder) CanWalkTo(e thing.Entity, pos geo.Position) thing.Tile {
	if wc, ok := e.(thing.WalkCacher); ok {
		switch wc.WalkCache(pos) {
		case 0:
			return nil
		case 1:
			return f.grid.GetTile(pos.X, pos.Y, pos.Z)
		}
	}
	t := f.grid.GetTile(pos.X, pos.Y, pos.Z)
	if t == nil || t.QueryAdd(e, thing.FlagPathFinding|thing.FlagIgnoreFieldDamage) != thing.NoError {
		return nil
	}
	return t
}

// PathMatching searches from e's position for a tile accepted by cond,
// heading towards target. The returned directions run from the goal back
// to the start: the last element is the first step.
func (f *Finder) PathMatching(e thing.Entity, target geo.Position, cond Condition, p Params) ([]geo.Direction, bool) {
	return f.search(e, target, cond, p, false)
}

// PathMatchingCond is PathMatching that additionally skips neighbours
// farther than MaxSearchDist from the start and, with KeepDistance, those
// outside the condition's range.
func (f *Finder) PathMatchingCond(e thing.Entity, target geo.Position, cond Condition, p Params) ([]geo.Direction, bool) {
	return f.search(e, target, cond, p, true)
}

func (f *Finder) search(e thing.Entity, target geo.Position, cond Condition, p Params, bounded bool) ([]geo.Direction, bool) {
	start := e.Position()
	var startCost int32
	if t := f.grid.GetTile(start.X, start.Y, start.Z); t != nil {
		startCost = TileWalkCost(e, t)
	}
	nodes := acquirePool(int32(start.X), int32(start.Y), startCost)
	defer releasePool(nodes)

	tx, ty := int32(target.X), int32(target.Y)
	sX := abs32(tx - int32(start.X))
	sY := abs32(ty - int32(start.Y))

	bestMatch := 0
	found := noNode
	var endPos geo.Position
	pos := start

	for p.MaxSearchDist != 0 || nodes.closed < closedBudget {
		n := nodes.best()
		if n == noNode {
			if found != noNode {
				break
			}
			f.stats.PathSearch(false, int(nodes.cur))
			return nil, false
		}

		cur := &nodes.nodes[n]
		x, y := cur.x, cur.y
		pos.X, pos.Y = uint16(x), uint16(y)
		if cond.Match(start, pos, p, &bestMatch) {
			found = n
			endPos = pos
			if bestMatch == 0 {
				break
			}
		}

		neighbors := allNeighbors[:]
		if cur.parent != noNode {
			parent := &nodes.nodes[cur.parent]
			neighbors = dirNeighbors[parentSide(parent.x-x, parent.y-y)][:]
		}

		fCost := cur.f
		for _, d := range neighbors {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx > 0xFFFF || ny > 0xFFFF {
				continue
			}
			pos.X, pos.Y = uint16(nx), uint16(ny)

			if bounded {
				if p.MaxSearchDist != 0 && (geo.DistanceX(start, pos) > p.MaxSearchDist || geo.DistanceY(start, pos) > p.MaxSearchDist) {
					continue
				}
				if p.KeepDistance && !cond.InRange(start, pos, p) {
					continue
				}
			}

			var extraCost int32
			existing := nodes.lookup(nx, ny)
			if existing != noNode {
				extraCost = nodes.nodes[existing].c
			} else {
				t := f.CanWalkTo(e, pos)
				if t == nil {
					continue
				}
				extraCost = TileWalkCost(e, t)
			}

			newf := fCost + MapWalkCost(x, y, nx, ny) + extraCost
			if existing != noNode {
				nb := &nodes.nodes[existing]
				if nb.f <= newf {
					continue
				}
				nb.f = newf
				nb.parent = n
				nodes.reopen(existing)
				continue
			}

			dX := abs32(tx - nx)
			dY := abs32(ty - ny)
			heuristic := ((dX - sX) << 3) + ((dY - sY) << 3) + (max(dX, dY) << 3)
			if !nodes.createOpen(n, nx, ny, newf, heuristic, extraCost) {
				if found != noNode {
					break
				}
				f.stats.PathSearch(false, int(nodes.cur))
				return nil, false
			}
		}
		nodes.close(n)
	}

	if found == noNode {
		f.stats.PathSearch(false, int(nodes.cur))
		return nil, false
	}
	f.stats.PathSearch(true, int(nodes.cur))
	return nodes.directions(found, endPos), true
}

// directions walks the parent chain of found back to the start.
func (p *nodePool) directions(found int32, end geo.Position) []geo.Direction {
	dirs := make([]geo.Direction, 0, 16)
	prevX, prevY := int32(end.X), int32(end.Y)
	for i := p.nodes[found].parent; i != noNode; i = p.nodes[i].parent {
		x, y := p.nodes[i].x, p.nodes[i].y
		dx, dy := x-prevX, y-prevY
		prevX, prevY = x, y

		switch {
		case dx == 1 && dy == 1:
			dirs = append(dirs, geo.NorthWest)
		case dx == 1 && dy == -1:
			dirs = append(dirs, geo.SouthWest)
		case dx == 1:
			dirs = append(dirs, geo.West)
		case dx == -1 && dy == 1:
			dirs = append(dirs, geo.NorthEast)
		case dx == -1 && dy == -1:
			dirs = append(dirs, geo.SouthEast)
		case dx == -1:
			dirs = append(dirs, geo.East)
		case dy == 1:
			dirs = append(dirs, geo.North)
		case dy == -1:
			dirs = append(dirs, geo.South)
		}
	}
	return dirs
}

// MapWalkCost is the cost of one step; diagonals pay a surcharge.
func MapWalkCost(x, y, nx, ny int32) int32 {
	return ((abs32(x-nx)+abs32(y-ny))-1)*DiagonalWalkCost + NormalWalkCost
}

// TileWalkCost is the extra cost of entering t: an occupant that has to be
// pushed or killed, or a field that would hurt a monster.
func TileWalkCost(e thing.Entity, t thing.Tile) int32 {
	var cost int32
	if t.TopVisibleEntity(e) != nil {
		cost += NormalWalkCost * 4
	}
	if k := t.Field(); k != thing.FieldNone && e.IsMonster() {
		if fw, ok := e.(thing.FieldWalker); ok && !fw.IsImmune(k) && !fw.HasCondition(k) && !fw.CanWalkOnField(k) {
			cost += NormalWalkCost * 18
		}
	}
	return cost
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
