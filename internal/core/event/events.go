package event

import (
	"github.com/l1jgo/worldcore/internal/core/ecs"
	"github.com/l1jgo/worldcore/internal/geo"
)

// EntityMoved is emitted once per player that could see the mover before
// the move. OldStackIndex is the mover's index in that player's view of the
// old tile, so the client can move the sprite instead of re-creating it.
type EntityMoved struct {
	Observer      ecs.EntityID
	Mover         ecs.EntityID
	OldPos        geo.Position
	NewPos        geo.Position
	OldStackIndex int
	Teleport      bool
}

// EntityPlaced is emitted when an entity enters the map.
type EntityPlaced struct {
	Entity ecs.EntityID
	Pos    geo.Position
}

// EntityRemoved is emitted when an entity leaves the map.
type EntityRemoved struct {
	Entity ecs.EntityID
	Pos    geo.Position
}

// MapCleaned is emitted after a clean pass.
type MapCleaned struct {
	Items int
	Tiles int
}
