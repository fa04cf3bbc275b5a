package tile

import (
	"slices"

	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
)

// StepListener receives post-mutation notifications for tiles carrying an
// action id (pressure plates, scripted floors).
type StepListener interface {
	OnStepIn(t *Tile, e thing.Entity, from thing.Tile)
	OnStepOut(t *Tile, e thing.Entity, to thing.Tile)
}

// Tile is the concrete world cell. Entities are kept top-first: the most
// recently added entity is at index 0.
// Accessed only from the game loop goroutine, no locks.
type Tile struct {
	pos      geo.Position
	flags    thing.TileFlags
	ground   thing.Item
	items    []thing.Item
	entities []thing.Entity
	house    thing.HouseAccess
	actionID uint16
	listener StepListener
}

var _ thing.Tile = (*Tile)(nil)

func New(pos geo.Position, flags thing.TileFlags) *Tile {
	return &Tile{pos: pos, flags: flags}
}

// NewWithGround is a shorthand for a walkable tile.
func NewWithGround(pos geo.Position, groundID uint16, flags thing.TileFlags) *Tile {
	t := New(pos, flags)
	t.ground = NewGround(groundID)
	return t
}

func (t *Tile) Position() geo.Position { return t.pos }

// Flags returns the tile's own flags merged with those of its ground and items.
func (t *Tile) Flags() thing.TileFlags {
	f := t.flags
	if t.ground != nil {
		f |= t.ground.Flags()
	}
	for _, it := range t.items {
		f |= it.Flags()
	}
	return f
}

func (t *Tile) HasFlag(flag thing.TileFlags) bool { return t.Flags()&flag != 0 }

func (t *Tile) SetFlags(flag thing.TileFlags)   { t.flags |= flag }
func (t *Tile) ResetFlags(flag thing.TileFlags) { t.flags &^= flag }

func (t *Tile) Ground() thing.Item     { return t.ground }
func (t *Tile) SetGround(g thing.Item) { t.ground = g }

func (t *Tile) Items() []thing.Item { return t.items }

func (t *Tile) AddItem(it thing.Item) {
	t.items = append(t.items, it)
}

func (t *Tile) RemoveItem(it thing.Item) bool {
	i := slices.Index(t.items, it)
	if i < 0 {
		return false
	}
	t.items = slices.Delete(t.items, i, i+1)
	return true
}

func (t *Tile) TakeItems() []thing.Item {
	items := t.items
	t.items = nil
	return items
}

func (t *Tile) Entities() []thing.Entity { return t.entities }

func (t *Tile) AddEntity(e thing.Entity) {
	t.entities = slices.Insert(t.entities, 0, e)
	e.SetPosition(t.pos)
}

func (t *Tile) RemoveEntity(e thing.Entity) bool {
	i := slices.Index(t.entities, e)
	if i < 0 {
		return false
	}
	t.entities = slices.Delete(t.entities, i, i+1)
	return true
}

func (t *Tile) ThingCount() int {
	n := len(t.items) + len(t.entities)
	if t.ground != nil {
		n++
	}
	return n
}

// TopVisibleEntity returns the topmost entity viewer can see. A nil viewer
// sees everything.
func (t *Tile) TopVisibleEntity(viewer thing.Entity) thing.Entity {
	for _, e := range t.entities {
		if viewer == nil || viewer.CanSeeEntity(e) {
			return e
		}
	}
	return nil
}

func (t *Tile) Field() thing.FieldKind {
	for _, it := range t.items {
		if k := it.Field(); k != thing.FieldNone {
			return k
		}
	}
	return thing.FieldNone
}

func (t *Tile) House() thing.HouseAccess     { return t.house }
func (t *Tile) SetHouse(h thing.HouseAccess) { t.house = h }

func (t *Tile) ActionID() uint16 { return t.actionID }

// SetActionID binds the tile to a movement script.
func (t *Tile) SetActionID(id uint16, l StepListener) {
	t.actionID = id
	t.listener = l
}

// QueryAdd checks whether e may be put on this tile.
func (t *Tile) QueryAdd(e thing.Entity, flags thing.QueryFlags) thing.ReturnValue {
	if t.ground == nil {
		return thing.NotPossible
	}
	if t.ground.Flags()&thing.BlockSolid != 0 {
		return thing.NotPossible
	}
	if h := t.house; h != nil && e.IsPlayer() && !h.CanEnter(e) {
		return thing.PlayerIsNotInvited
	}

	f := t.Flags()
	if flags&thing.FlagPathFinding != 0 && f&(thing.FloorChange|thing.Teleport|thing.BlockPath) != 0 {
		return thing.NotPossible
	}
	if e.IsMonster() {
		if f&thing.ProtectionZone != 0 {
			return thing.NotPossible
		}
		if flags&thing.FlagIgnoreFieldDamage == 0 {
			if k := t.Field(); k != thing.FieldNone {
				if fw, ok := e.(thing.FieldWalker); ok && !fw.IsImmune(k) && !fw.CanWalkOnField(k) {
					return thing.NotPossible
				}
			}
		}
	}

	// Pathfinding prices occupied tiles instead of rejecting them.
	if flags&(thing.FlagIgnoreBlockCreature|thing.FlagPathFinding) == 0 {
		for _, o := range t.entities {
			if o != e && !o.IsGhost() {
				return thing.NotEnoughRoom
			}
		}
	}

	if flags&thing.FlagIgnoreBlockItem == 0 {
		for _, it := range t.items {
			if it.Flags()&thing.BlockSolid != 0 {
				return thing.NotPossible
			}
		}
	}
	return thing.NoError
}

func (t *Tile) QueryDestination(thing.Entity) thing.Tile { return t }

// StackIndexOf counts the ground, the always-on-top items and every entity
// above e that viewer can see.
func (t *Tile) StackIndexOf(viewer, e thing.Entity) int {
	n := 0
	if t.ground != nil {
		n++
	}
	for _, it := range t.items {
		if it.AlwaysOnTop() {
			n++
		}
	}
	for _, o := range t.entities {
		if o == e {
			return n
		}
		if viewer.CanSeeEntity(o) {
			n++
		}
	}
	return -1
}

func (t *Tile) PostAddNotification(e thing.Entity, from thing.Tile) {
	if t.listener != nil && t.actionID != 0 {
		t.listener.OnStepIn(t, e, from)
	}
}

func (t *Tile) PostRemoveNotification(e thing.Entity, to thing.Tile) {
	if t.listener != nil && t.actionID != 0 {
		t.listener.OnStepOut(t, e, to)
	}
}
