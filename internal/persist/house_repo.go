package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/world"
)

// HouseRepo stores house ownership and the items lying in houses.
type HouseRepo struct {
	db *DB
}

var _ world.HouseStore = (*HouseRepo)(nil)

func NewHouseRepo(db *DB) *HouseRepo {
	return &HouseRepo{db: db}
}

// SaveHouseInfo upserts every house and replaces its guest list.
func (r *HouseRepo) SaveHouseInfo(ctx context.Context, info []world.HouseInfo) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, h := range info {
		if _, err := tx.Exec(ctx,
			`INSERT INTO houses (id, name, owner, rent, updated_at)
			 VALUES ($1, $2, $3, $4, now())
			 ON CONFLICT (id) DO UPDATE
			 SET name = EXCLUDED.name, owner = EXCLUDED.owner, rent = EXCLUDED.rent, updated_at = now()`,
			int64(h.ID), h.Name, h.Owner, int64(h.Rent),
		); err != nil {
			return fmt.Errorf("house %d: %w", h.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM house_guests WHERE house_id = $1`, int64(h.ID)); err != nil {
			return err
		}
		for _, g := range h.Guests {
			if _, err := tx.Exec(ctx,
				`INSERT INTO house_guests (house_id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				int64(h.ID), g,
			); err != nil {
				return fmt.Errorf("house %d guest %s: %w", h.ID, g, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// SaveHouseItems replaces the whole item table with items.
func (r *HouseRepo) SaveHouseItems(ctx context.Context, items []world.HouseItem) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM house_items`); err != nil {
		return err
	}
	if len(items) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"house_items"},
			[]string{"house_id", "x", "y", "z", "idx", "item_id", "count"},
			pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
				return itemRow(items[i]), nil
			}),
		); err != nil {
			return fmt.Errorf("copy house items: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// LoadHouseInfo returns every stored house with its guests.
func (r *HouseRepo) LoadHouseInfo(ctx context.Context) ([]world.HouseInfo, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, owner, rent FROM houses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []world.HouseInfo
	index := make(map[uint32]int)
	for rows.Next() {
		var (
			id, rent int64
			h        world.HouseInfo
		)
		if err := rows.Scan(&id, &h.Name, &h.Owner, &rent); err != nil {
			return nil, err
		}
		h.ID = uint32(id)
		h.Rent = uint32(rent)
		index[h.ID] = len(result)
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	guests, err := r.db.Pool.Query(ctx, `SELECT house_id, name FROM house_guests ORDER BY house_id, name`)
	if err != nil {
		return nil, err
	}
	defer guests.Close()

	for guests.Next() {
		var (
			id   int64
			name string
		)
		if err := guests.Scan(&id, &name); err != nil {
			return nil, err
		}
		if i, ok := index[uint32(id)]; ok {
			result[i].Guests = append(result[i].Guests, name)
		}
	}
	return result, guests.Err()
}

// LoadHouseItems returns every stored house item in stack order.
func (r *HouseRepo) LoadHouseItems(ctx context.Context) ([]world.HouseItem, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT house_id, x, y, z, idx, item_id, count
		 FROM house_items ORDER BY house_id, z, y, x, idx`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []world.HouseItem
	for rows.Next() {
		var (
			houseID       int64
			x, y, idx     int32
			z             int16
			itemID, count int32
		)
		if err := rows.Scan(&houseID, &x, &y, &z, &idx, &itemID, &count); err != nil {
			return nil, err
		}
		result = append(result, world.HouseItem{
			HouseID: uint32(houseID),
			Pos:     geo.Pos(uint16(x), uint16(y), uint8(z)),
			Index:   int(idx),
			ItemID:  uint16(itemID),
			Count:   uint16(count),
		})
	}
	return result, rows.Err()
}

// itemRow flattens an item into house_items column order.
func itemRow(it world.HouseItem) []any {
	return []any{
		int64(it.HouseID),
		int32(it.Pos.X), int32(it.Pos.Y), int16(it.Pos.Z),
		int32(it.Index), int32(it.ItemID), int32(it.Count),
	}
}
