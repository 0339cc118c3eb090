package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/xrp/internal/engine/shadow"
)

// MaxSnapshotSize caps the edge of atlas snapshots in pixels.
const MaxSnapshotSize = 512

var (
	atlasBackground = color.RGBA{24, 24, 32, 255}
	viewportColor   = color.RGBA{90, 90, 110, 255}
	scissorColor    = color.RGBA{240, 200, 60, 255}
	labelColor      = color.RGBA{255, 255, 255, 255}
)

// tilePalette colors tiles by light index.
var tilePalette = []color.RGBA{
	{66, 135, 245, 255},
	{235, 87, 87, 255},
	{111, 207, 151, 255},
	{187, 107, 217, 255},
	{242, 153, 74, 255},
	{86, 204, 242, 255},
}

// AtlasSnapshot draws an atlas layout: one filled cell per assigned tile,
// its viewport and scissor outlines, and the light (and cascade) it holds.
// Row 0 of the atlas is drawn at the bottom, as the GPU stores it.
func AtlasSnapshot(layout shadow.Layout, cascaded bool) *image.RGBA {
	size := layout.Size
	scale := 1.0
	if size > MaxSnapshotSize {
		scale = float64(MaxSnapshotSize) / float64(size)
	}
	edge := int(math.Round(float64(size) * scale))
	if edge < 1 {
		edge = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: atlasBackground}, image.Point{}, draw.Src)

	toImage := func(x, y, w, h float32) image.Rectangle {
		x0 := int(math.Round(float64(x) * scale))
		x1 := int(math.Round(float64(x+w) * scale))
		y0 := edge - int(math.Round(float64(y+h)*scale))
		y1 := edge - int(math.Round(float64(y)*scale))
		return image.Rect(x0, y0, x1, y1)
	}

	for _, a := range layout.Tiles {
		vp := a.Tile.Viewport
		sc := a.Tile.Scissor
		cell := toImage(vp.X, vp.Y, vp.W, vp.H)

		c := tilePalette[a.Light%len(tilePalette)]
		fill := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 160}
		draw.Draw(img, toImage(sc.X, sc.Y, sc.W, sc.H), &image.Uniform{C: fill}, image.Point{}, draw.Over)
		outline(img, cell, viewportColor)
		outline(img, toImage(sc.X, sc.Y, sc.W, sc.H), scissorColor)

		label := fmt.Sprintf("L%d", a.Light)
		if cascaded {
			label = fmt.Sprintf("L%d C%d", a.Light, a.Cascade)
		}
		drawLabel(img, cell.Min.Add(image.Pt(4, 14)), label)
	}
	return img
}

// DepthImage converts a depth readback (row 0 at the bottom) to grayscale.
func DepthImage(depth []float32, width, height int) (*image.Gray16, error) {
	if len(depth) != width*height {
		return nil, fmt.Errorf("depth data size mismatch: expected %d, got %d", width*height, len(depth))
	}
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := depth[(height-1-y)*width : (height-y)*width]
		for x, d := range row {
			v := math.Max(0, math.Min(1, float64(d)))
			img.SetGray16(x, y, color.Gray16{Y: uint16(v * 0xffff)})
		}
	}
	return img, nil
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

func drawLabel(img *image.RGBA, at image.Point, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(at.X, at.Y),
	}
	d.DrawString(text)
}
