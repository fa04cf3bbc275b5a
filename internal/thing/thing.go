// Package thing defines the contracts the spatial index consumes: entities
// that occupy tiles, the tiles themselves and the items stacked on them.
// Concrete implementations live in the tile and creature packages.
package thing

import (
	"github.com/l1jgo/worldcore/internal/core/ecs"
	"github.com/l1jgo/worldcore/internal/geo"
)

// ReturnValue is the admission verdict of a tile query.
type ReturnValue uint8

const (
	NoError ReturnValue = iota
	NotPossible
	NotEnoughRoom
	PlayerIsNotInvited
)

func (r ReturnValue) String() string {
	switch r {
	case NoError:
		return "no error"
	case NotPossible:
		return "not possible"
	case NotEnoughRoom:
		return "not enough room"
	case PlayerIsNotInvited:
		return "player is not invited"
	}
	return "unknown"
}

// QueryFlags modify tile admission checks.
type QueryFlags uint32

const (
	FlagNoLimit QueryFlags = 1 << iota
	FlagIgnoreBlockItem
	FlagIgnoreBlockCreature
	FlagPathFinding
	FlagIgnoreFieldDamage
)

// TileFlags describe what a tile (or something on it) does to occupants
// and projectiles.
type TileFlags uint32

const (
	ProtectionZone TileFlags = 1 << iota
	NoLogout
	BlockSolid
	BlockProjectile
	BlockPath
	FloorChange
	Teleport
)

// FieldKind is the damage type of a magic field lying on a tile.
type FieldKind uint8

const (
	FieldNone FieldKind = iota
	FieldFire
	FieldPoison
	FieldEnergy
)

// Entity is anything that stands on a tile and can observe the world.
type Entity interface {
	ID() ecs.EntityID
	Name() string
	Position() geo.Position
	SetPosition(geo.Position)
	Direction() geo.Direction
	SetDirection(geo.Direction)
	IsPlayer() bool
	IsMonster() bool
	IsGhost() bool
	CanSeeEntity(other Entity) bool
	// OnEntityMove is called on every spectator after mover changed tiles.
	OnEntityMove(mover Entity, newPos, oldPos geo.Position, teleport bool)
}

// WalkCacher is implemented by entities that remember the walkability of
// tiles around them. WalkCache returns 0 for blocked, 1 for walkable and
// any other value when the position is not cached.
type WalkCacher interface {
	WalkCache(pos geo.Position) int
}

// FieldWalker is implemented by entities whose path cost depends on the
// magic fields in their way.
type FieldWalker interface {
	IsImmune(kind FieldKind) bool
	HasCondition(kind FieldKind) bool
	CanWalkOnField(kind FieldKind) bool
}

// HouseAccess decides whether an entity may enter a house tile.
type HouseAccess interface {
	HouseID() uint32
	CanEnter(e Entity) bool
}

// Item is a thing lying on a tile.
type Item interface {
	ID() uint16
	Count() uint16
	Flags() TileFlags
	Field() FieldKind
	Cleanable() bool
	AlwaysOnTop() bool
	// Movable is false for items that are part of the map itself.
	Movable() bool
}

// Tile is a single cell of the world.
type Tile interface {
	Position() geo.Position
	HasFlag(flag TileFlags) bool

	Ground() Item
	SetGround(Item)
	Items() []Item
	AddItem(Item)
	RemoveItem(Item) bool
	// TakeItems empties the item stack and returns what it held.
	TakeItems() []Item

	Entities() []Entity
	// AddEntity puts e on top of the entity stack and moves it to this tile.
	AddEntity(e Entity)
	RemoveEntity(e Entity) bool
	ThingCount() int
	TopVisibleEntity(viewer Entity) Entity
	Field() FieldKind
	House() HouseAccess

	QueryAdd(e Entity, flags QueryFlags) ReturnValue
	// QueryDestination returns the tile e actually ends up on when added here.
	QueryDestination(e Entity) Tile
	// StackIndexOf returns e's index in the stack viewer sees, or -1.
	StackIndexOf(viewer, e Entity) int

	PostAddNotification(e Entity, from Tile)
	PostRemoveNotification(e Entity, to Tile)
}
