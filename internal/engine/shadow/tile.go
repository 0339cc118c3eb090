package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/xrp/internal/engine/gpu"
)

const (
	// MaxTiles is the largest atlas grid (4x4).
	MaxTiles = 16
	// TileBorder is the dead border in texels kept around every tile so
	// filtering never reads a neighbouring tile.
	TileBorder = 4
)

// SplitFor returns the smallest grid dimension from {1,2,3,4} whose square
// holds tileCount tiles. Counts above 16 still get 4.
func SplitFor(tileCount int) int {
	switch {
	case tileCount <= 1:
		return 1
	case tileCount <= 4:
		return 2
	case tileCount <= 9:
		return 3
	default:
		return 4
	}
}

// Tile is one cell of an atlas grid.
type Tile struct {
	Index int
	// Offset is the grid coordinate (column, row).
	Offset   mgl32.Vec2
	Viewport gpu.Rect
	Scissor  gpu.Rect
}

// TileRect places tile index in a split x split grid of tileSize cells.
func TileRect(index, split int, tileSize float32) Tile {
	offset := mgl32.Vec2{float32(index % split), float32(index / split)}
	viewport := gpu.Rect{
		X: offset.X() * tileSize,
		Y: offset.Y() * tileSize,
		W: tileSize,
		H: tileSize,
	}
	return Tile{
		Index:    index,
		Offset:   offset,
		Viewport: viewport,
		Scissor: gpu.Rect{
			X: viewport.X + TileBorder,
			Y: viewport.Y + TileBorder,
			W: tileSize - 2*TileBorder,
			H: tileSize - 2*TileBorder,
		},
	}
}

// configure records the tile viewport and scissor.
func (t Tile) configure(cb *gpu.CommandBuffer) {
	cb.SetViewport(t.Viewport)
	cb.EnableScissorRect(t.Scissor)
}
