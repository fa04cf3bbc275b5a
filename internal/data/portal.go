package data

import (
	"fmt"
	"os"

	"github.com/l1jgo/worldcore/internal/core/ecs"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/l1jgo/worldcore/internal/tile"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// PortalActionID marks tiles that teleport whoever steps on them.
const PortalActionID uint16 = 1

// PortalEntry defines a portal (stairs, holes, dungeon entrances) with
// source and destination.
type PortalEntry struct {
	Src  Point  `yaml:"src"`
	Dst  Point  `yaml:"dst"`
	Note string `yaml:"note"`
}

// PortalTable provides lookup of portal destinations by source position.
type PortalTable struct {
	portals map[geo.Position]*PortalEntry
	m       *world.Map
	log     *zap.Logger

	// entities currently being carried by a portal
	moving map[ecs.EntityID]struct{}
}

// LoadPortalTable loads portal_list.yaml.
func LoadPortalTable(path string) (*PortalTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portal list: %w", err)
	}
	var entries []PortalEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse portal list: %w", err)
	}
	t := &PortalTable{
		portals: make(map[geo.Position]*PortalEntry, len(entries)),
		moving:  make(map[ecs.EntityID]struct{}),
	}
	for i := range entries {
		e := &entries[i]
		t.portals[e.Src.Pos()] = e
	}
	return t, nil
}

// Get returns the portal at the given source position, or nil if none.
func (t *PortalTable) Get(pos geo.Position) *PortalEntry {
	return t.portals[pos]
}

// Count returns the total number of portals loaded.
func (t *PortalTable) Count() int {
	return len(t.portals)
}

// Bind marks every portal source tile on m as a teleport and starts
// moving entities that step on one. Sources without a tile are skipped.
// It returns the number of portals bound.
func (t *PortalTable) Bind(m *world.Map, log *zap.Logger) int {
	t.m = m
	t.log = log
	n := 0
	for pos, p := range t.portals {
		tl, ok := m.TileAt(pos).(*tile.Tile)
		if !ok {
			continue
		}
		if t.portals[p.Dst.Pos()] != nil {
			// Entities arriving there stay put; see OnStepIn.
			log.Warn("portal leads onto another portal",
				zap.Stringer("src", pos), zap.Stringer("dst", p.Dst.Pos()), zap.String("note", p.Note))
		}
		tl.SetFlags(thing.Teleport)
		tl.SetActionID(PortalActionID, t)
		n++
	}
	return n
}

// OnStepIn carries e to the portal destination. An entity is carried by
// one portal at a time, so it comes to rest on a destination that is
// itself a portal.
func (t *PortalTable) OnStepIn(tl *tile.Tile, e thing.Entity, _ thing.Tile) {
	p := t.portals[tl.Position()]
	if p == nil {
		return
	}
	if _, busy := t.moving[e.ID()]; busy {
		return
	}
	dst := t.m.TileAt(p.Dst.Pos())
	if dst == nil {
		t.log.Warn("portal leads nowhere", zap.Stringer("src", tl.Position()), zap.Stringer("dst", p.Dst.Pos()))
		return
	}
	t.moving[e.ID()] = struct{}{}
	defer delete(t.moving, e.ID())
	t.m.MoveEntity(e, dst, true)
}

func (t *PortalTable) OnStepOut(*tile.Tile, thing.Entity, thing.Tile) {}
