package pathfind

import "github.com/l1jgo/worldcore/internal/geo"

// FrozenCondition accepts positions at a preferred distance from a fixed
// target. It is what chasing and fleeing creatures search with.
type FrozenCondition struct {
	Target geo.Position
	Sight  SightChecker
}

var _ Condition = FrozenCondition{}

// InRange reports whether test lies in the box around the target the
// search may end in. Without a full path search the box only extends
// towards the side the searcher starts from.
func (c FrozenCondition) InRange(start, test geo.Position, p Params) bool {
	tx, ty := int(c.Target.X), int(c.Target.Y)
	x, y := int(test.X), int(test.Y)
	if p.FullPathSearch {
		return x <= tx+p.MaxTargetDist && x >= tx-p.MaxTargetDist &&
			y <= ty+p.MaxTargetDist && y >= ty-p.MaxTargetDist
	}

	dx := geo.OffsetX(start, c.Target)
	dxMax, dxMin := 0, 0
	if dx >= 0 {
		dxMax = p.MaxTargetDist
	}
	if dx <= 0 {
		dxMin = p.MaxTargetDist
	}
	if x > tx+dxMax || x < tx-dxMin {
		return false
	}

	dy := geo.OffsetY(start, c.Target)
	dyMax, dyMin := 0, 0
	if dy >= 0 {
		dyMax = p.MaxTargetDist
	}
	if dy <= 0 {
		dyMin = p.MaxTargetDist
	}
	return y <= ty+dyMax && y >= ty-dyMin
}

// Match accepts test when it is in range, optionally in sight of the
// target, and between MinTargetDist and MaxTargetDist. Reaching exactly
// MaxTargetDist is a perfect match and sets *bestMatch to 0; otherwise the
// farthest distance seen so far wins.
func (c FrozenCondition) Match(start, test geo.Position, p Params, bestMatch *int) bool {
	if !c.InRange(start, test, p) {
		return false
	}
	if p.ClearSight && (c.Sight == nil || !c.Sight.IsSightClear(test, c.Target, true)) {
		return false
	}

	dist := geo.Chebyshev(c.Target, test)
	if p.MaxTargetDist == 1 {
		return dist >= p.MinTargetDist && dist <= p.MaxTargetDist
	}
	if dist > p.MaxTargetDist || dist < p.MinTargetDist {
		return false
	}
	if dist == p.MaxTargetDist {
		*bestMatch = 0
		return true
	}
	if dist > *bestMatch {
		*bestMatch = dist
		return true
	}
	return false
}
