package tile

import "github.com/l1jgo/worldcore/internal/thing"

// Item is a plain stackable thing. Ground pieces, walls, decorations,
// magic fields and loot all use it; the flags decide what it does.
type Item struct {
	TypeID      uint16
	Amount      uint16
	TileFlags   thing.TileFlags
	FieldKind   thing.FieldKind
	IsCleanable bool
	OnTop       bool
	// Fixed items come with the map and are never saved with a house.
	Fixed bool
}

var _ thing.Item = (*Item)(nil)

func NewGround(typeID uint16) *Item {
	return &Item{TypeID: typeID, Amount: 1}
}

func (i *Item) ID() uint16 { return i.TypeID }

func (i *Item) Count() uint16 {
	if i.Amount == 0 {
		return 1
	}
	return i.Amount
}

func (i *Item) Flags() thing.TileFlags { return i.TileFlags }
func (i *Item) Field() thing.FieldKind { return i.FieldKind }
func (i *Item) Cleanable() bool        { return i.IsCleanable }
func (i *Item) AlwaysOnTop() bool      { return i.OnTop }
func (i *Item) Movable() bool          { return !i.Fixed }
