package world

import (
	"time"

	"github.com/l1jgo/worldcore/internal/core/event"
	"github.com/l1jgo/worldcore/internal/thing"
	"go.uber.org/zap"
)

// Clean removes every cleanable item lying outside protection zones and
// returns how many were removed.
func (m *Map) Clean() int {
	start := time.Now()
	type cleanable struct {
		t  thing.Tile
		it thing.Item
	}
	var toRemove []cleanable
	tiles := 0
	m.EachTile(func(t thing.Tile) {
		if t.HasFlag(thing.ProtectionZone) {
			return
		}
		items := t.Items()
		if len(items) == 0 {
			return
		}
		tiles++
		for _, it := range items {
			if it.Cleanable() {
				toRemove = append(toRemove, cleanable{t, it})
			}
		}
	})

	for _, r := range toRemove {
		r.t.RemoveItem(r.it)
	}

	count := len(toRemove)
	m.stats.Cleaned(count)
	event.Emit(m.bus, event.MapCleaned{Items: count, Tiles: tiles})
	m.log.Info("map cleaned",
		zap.Int("items", count),
		zap.Int("tiles", tiles),
		zap.Duration("took", time.Since(start)),
	)
	return count
}
