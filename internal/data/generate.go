package data

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/l1jgo/worldcore/internal/tile"
	"github.com/l1jgo/worldcore/internal/world"
)

// Item ids used by generated terrain.
const (
	grassID = 102
	waterID = 4608
	rockID  = 1285
)

// Terrain thresholds on noise mapped to 0..1.
const (
	waterLevel = 0.30
	rockLevel  = 0.72
	noiseScale = 0.08
)

// GenerateOptions describe a generated area.
type GenerateOptions struct {
	Seed    int64
	OriginX uint16
	OriginY uint16
	Width   int
	Height  int
	Floor   uint8
}

// Generate fills a rectangle of m with Perlin terrain: water that cannot
// be entered, grass, and rocks that block movement and sight. The same
// seed always produces the same terrain. It returns the number of tiles
// created.
func Generate(m *world.Map, opts GenerateOptions) (int, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return 0, fmt.Errorf("generate %dx%d: empty area", opts.Width, opts.Height)
	}
	if int(opts.OriginX)+opts.Width > 0x10000 || int(opts.OriginY)+opts.Height > 0x10000 {
		return 0, fmt.Errorf("generate %dx%d at %d,%d: area leaves the map", opts.Width, opts.Height, opts.OriginX, opts.OriginY)
	}

	noise := perlin.NewPerlin(2.0, 2.0, 3, opts.Seed)
	count := 0
	for x := 0; x < opts.Width; x++ {
		for y := 0; y < opts.Height; y++ {
			v := (noise.Noise2D(float64(x)*noiseScale, float64(y)*noiseScale) + 1.0) / 2.0
			pos := geo.Pos(opts.OriginX+uint16(x), opts.OriginY+uint16(y), opts.Floor)
			if err := m.SetTile(terrainTile(pos, v)); err != nil {
				return count, fmt.Errorf("generate: %w", err)
			}
			count++
		}
	}
	m.Width = max(m.Width, uint16(min(int(opts.OriginX)+opts.Width, 0xFFFF)))
	m.Height = max(m.Height, uint16(min(int(opts.OriginY)+opts.Height, 0xFFFF)))
	return count, nil
}

func terrainTile(pos geo.Position, v float64) *tile.Tile {
	switch {
	case v < waterLevel:
		t := tile.New(pos, 0)
		t.SetGround(&tile.Item{TypeID: waterID, Amount: 1, TileFlags: thing.BlockSolid, Fixed: true})
		return t
	case v > rockLevel:
		t := tile.NewWithGround(pos, grassID, 0)
		t.AddItem(&tile.Item{TypeID: rockID, Amount: 1, TileFlags: thing.BlockSolid | thing.BlockProjectile, OnTop: true, Fixed: true})
		return t
	}
	return tile.NewWithGround(pos, grassID, 0)
}
