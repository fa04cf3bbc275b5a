package world

import (
	"context"
	"fmt"
	"slices"

	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/metrics"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/l1jgo/worldcore/internal/tile"
	"go.uber.org/zap"
)

const defaultSaveRetries = 3

// House is a group of tiles only its owner and guests may enter.
type House struct {
	ID    uint32
	Name  string
	Entry geo.Position
	Rent  uint32

	owner  string
	guests []string
	tiles  []*tile.Tile
}

var _ thing.HouseAccess = (*House)(nil)

func NewHouse(id uint32, name string, entry geo.Position) *House {
	return &House{ID: id, Name: name, Entry: entry}
}

func (h *House) HouseID() uint32 { return h.ID }

func (h *House) Owner() string         { return h.owner }
func (h *House) SetOwner(name string)  { h.owner = name }
func (h *House) Guests() []string      { return h.guests }
func (h *House) Tiles() []*tile.Tile   { return h.tiles }
func (h *House) SetGuests(g []string)  { h.guests = slices.Clone(g) }
func (h *House) IsGuest(n string) bool { return slices.Contains(h.guests, n) }

func (h *House) AddGuest(name string) {
	if !h.IsGuest(name) {
		h.guests = append(h.guests, name)
	}
}

// CanEnter lets non-players through; players need to own the house or be
// on its guest list.
func (h *House) CanEnter(e thing.Entity) bool {
	if !e.IsPlayer() {
		return true
	}
	name := e.Name()
	return name == h.owner || h.IsGuest(name)
}

// AddTile makes t part of the house.
func (h *House) AddTile(t *tile.Tile) {
	h.tiles = append(h.tiles, t)
	t.SetHouse(h)
}

// HouseInfo is the persisted ownership record of a house.
type HouseInfo struct {
	ID     uint32
	Name   string
	Owner  string
	Rent   uint32
	Guests []string
}

// HouseItem is one item lying inside a house. Index keeps the stack order.
type HouseItem struct {
	HouseID uint32
	Pos     geo.Position
	Index   int
	ItemID  uint16
	Count   uint16
}

// HouseSnapshot is a copy of every house, safe to hand to another
// goroutine.
type HouseSnapshot struct {
	Info  []HouseInfo
	Items []HouseItem
}

// HouseStore persists houses.
type HouseStore interface {
	SaveHouseInfo(ctx context.Context, info []HouseInfo) error
	SaveHouseItems(ctx context.Context, items []HouseItem) error
	LoadHouseInfo(ctx context.Context) ([]HouseInfo, error)
	LoadHouseItems(ctx context.Context) ([]HouseItem, error)
}

// AddHouse registers h. A house with the same id is replaced.
func (m *Map) AddHouse(h *House) { m.houses[h.ID] = h }

func (m *Map) House(id uint32) *House { return m.houses[id] }

func (m *Map) HouseCount() int { return len(m.houses) }

// SnapshotHouses copies the state of every house, ordered by id.
func (m *Map) SnapshotHouses() HouseSnapshot {
	ids := make([]uint32, 0, len(m.houses))
	for id := range m.houses {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var snap HouseSnapshot
	for _, id := range ids {
		h := m.houses[id]
		snap.Info = append(snap.Info, HouseInfo{
			ID:     h.ID,
			Name:   h.Name,
			Owner:  h.owner,
			Rent:   h.Rent,
			Guests: slices.Clone(h.guests),
		})
		for _, t := range h.tiles {
			i := 0
			for _, it := range t.Items() {
				if !it.Movable() {
					continue
				}
				snap.Items = append(snap.Items, HouseItem{
					HouseID: h.ID,
					Pos:     t.Position(),
					Index:   i,
					ItemID:  it.ID(),
					Count:   it.Count(),
				})
				i++
			}
		}
	}
	return snap
}

// Save writes every house to store. See SaveHouses.
func (m *Map) Save(ctx context.Context, store HouseStore, retries int) error {
	return SaveHouses(ctx, m.log, m.stats, store, m.SnapshotHouses(), retries)
}

// SaveHouses writes the ownership records and then the items of snap, each
// stage tried up to retries times. Items are only written after the
// records went through. It does not touch the map and may run off the game
// loop.
func SaveHouses(ctx context.Context, log *zap.Logger, stats *metrics.Stats, store HouseStore, snap HouseSnapshot, retries int) error {
	if retries <= 0 {
		retries = defaultSaveRetries
	}

	stages := []struct {
		name string
		save func() error
	}{
		{"info", func() error { return store.SaveHouseInfo(ctx, snap.Info) }},
		{"items", func() error { return store.SaveHouseItems(ctx, snap.Items) }},
	}
	for _, st := range stages {
		var err error
		for attempt := 1; attempt <= retries; attempt++ {
			err = st.save()
			stats.SaveAttempt(st.name, err == nil)
			if err == nil {
				break
			}
			log.Warn("house save attempt failed",
				zap.String("stage", st.name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		if err != nil {
			return fmt.Errorf("save house %s: %w: %w", st.name, ErrSaveFailed, err)
		}
	}
	return nil
}

// LoadHouses restores owners, guests and items of the registered houses.
// Records of houses the map does not know are skipped.
func (m *Map) LoadHouses(ctx context.Context, store HouseStore) error {
	infos, err := store.LoadHouseInfo(ctx)
	if err != nil {
		return fmt.Errorf("load house info: %w", err)
	}
	for _, info := range infos {
		h := m.houses[info.ID]
		if h == nil {
			m.log.Warn("unknown house in store", zap.Uint32("house", info.ID))
			continue
		}
		h.owner = info.Owner
		h.Rent = info.Rent
		h.SetGuests(info.Guests)
	}

	items, err := store.LoadHouseItems(ctx)
	if err != nil {
		return fmt.Errorf("load house items: %w", err)
	}
	slices.SortStableFunc(items, func(a, b HouseItem) int { return a.Index - b.Index })
	restored := 0
	for _, it := range items {
		t := m.TileAt(it.Pos)
		if t == nil || m.houses[it.HouseID] == nil {
			continue
		}
		t.AddItem(&tile.Item{TypeID: it.ItemID, Amount: it.Count})
		restored++
	}
	m.log.Info("houses loaded", zap.Int("houses", len(infos)), zap.Int("items", restored))
	return nil
}
