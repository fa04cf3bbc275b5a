package creature

import (
	"github.com/l1jgo/worldcore/internal/core/ecs"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
)

// Kind classifies a creature.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindMonster
	KindNPC
)

// MoveObserver is told about every move a creature witnesses.
type MoveObserver func(self *Creature, mover thing.Entity, newPos, oldPos geo.Position, teleport bool)

// Creature is the concrete entity placed on the map.
// Accessed only from the game loop goroutine, no locks.
type Creature struct {
	id    ecs.EntityID
	name  string
	kind  Kind
	pos   geo.Position
	dir   geo.Direction
	ghost bool

	// bitsets indexed by thing.FieldKind
	immunities uint8
	conditions uint8
	fieldWalk  uint8

	// Positions are absolute; the cache is dropped whenever the creature moves.
	walkCache map[geo.Position]bool

	observer MoveObserver
}

var (
	_ thing.Entity      = (*Creature)(nil)
	_ thing.WalkCacher  = (*Creature)(nil)
	_ thing.FieldWalker = (*Creature)(nil)
)

func New(id ecs.EntityID, name string, kind Kind) *Creature {
	return &Creature{id: id, name: name, kind: kind, dir: geo.South}
}

func (c *Creature) ID() ecs.EntityID { return c.id }
func (c *Creature) Name() string     { return c.name }
func (c *Creature) Kind() Kind       { return c.kind }

func (c *Creature) Position() geo.Position     { return c.pos }
func (c *Creature) SetPosition(p geo.Position) { c.pos = p }

func (c *Creature) Direction() geo.Direction     { return c.dir }
func (c *Creature) SetDirection(d geo.Direction) { c.dir = d }

func (c *Creature) IsPlayer() bool  { return c.kind == KindPlayer }
func (c *Creature) IsMonster() bool { return c.kind == KindMonster }
func (c *Creature) IsGhost() bool   { return c.ghost }

func (c *Creature) SetGhost(ghost bool) { c.ghost = ghost }

// CanSeeEntity hides ghosts from everyone but themselves.
func (c *Creature) CanSeeEntity(other thing.Entity) bool {
	if other == nil {
		return false
	}
	if other.IsGhost() {
		return other == thing.Entity(c)
	}
	return true
}

func (c *Creature) SetMoveObserver(fn MoveObserver) { c.observer = fn }

func (c *Creature) OnEntityMove(mover thing.Entity, newPos, oldPos geo.Position, teleport bool) {
	if mover == thing.Entity(c) {
		c.ResetWalkCache()
	}
	if c.observer != nil {
		c.observer(c, mover, newPos, oldPos, teleport)
	}
}

func (c *Creature) WalkCache(pos geo.Position) int {
	walkable, ok := c.walkCache[pos]
	switch {
	case !ok:
		return -1
	case walkable:
		return 1
	default:
		return 0
	}
}

// RememberWalkable records the outcome of a step attempt at pos.
func (c *Creature) RememberWalkable(pos geo.Position, walkable bool) {
	if c.walkCache == nil {
		c.walkCache = make(map[geo.Position]bool, 8)
	}
	c.walkCache[pos] = walkable
}

func (c *Creature) ResetWalkCache() {
	clear(c.walkCache)
}

func (c *Creature) SetImmune(kind thing.FieldKind)      { c.immunities |= 1 << kind }
func (c *Creature) SetCondition(kind thing.FieldKind)   { c.conditions |= 1 << kind }
func (c *Creature) ClearCondition(kind thing.FieldKind) { c.conditions &^= 1 << kind }
func (c *Creature) AllowFieldWalk(kind thing.FieldKind) { c.fieldWalk |= 1 << kind }

func (c *Creature) IsImmune(kind thing.FieldKind) bool       { return c.immunities&(1<<kind) != 0 }
func (c *Creature) HasCondition(kind thing.FieldKind) bool   { return c.conditions&(1<<kind) != 0 }
func (c *Creature) CanWalkOnField(kind thing.FieldKind) bool { return c.fieldWalk&(1<<kind) != 0 }
