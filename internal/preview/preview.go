// Package preview renders top-down heightmaps of terrain for quick inspection.
package preview

import (
	"errors"
	"image"
	"image/color"
	"io"

	"mini-terrain/internal/world"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Heightmap renders the column heights of every chunk within radius
// (square, in chunks) of center. Brightness is height / d.Y; north is up.
func Heightmap(t world.Terrain, center world.ChunkCoord, radius int, d world.Dims) *image.Gray {
	side := 2*radius + 1
	img := image.NewGray(image.Rect(0, 0, side*d.X, side*d.Z))
	baseX := (center.X - radius) * d.X
	baseZ := (center.Z - radius) * d.Z

	for pz := 0; pz < side*d.Z; pz++ {
		for px := 0; px < side*d.X; px++ {
			h := t.HeightAt(baseX+px, baseZ+pz)
			h = min(max(h, 0), d.Y)
			img.SetGray(px, pz, color.Gray{Y: uint8(h * 255 / d.Y)})
		}
	}
	return img
}

// WriteBMP encodes img as BMP, upscaled by scale with nearest-neighbour
// sampling so single columns stay visible.
func WriteBMP(w io.Writer, img image.Image, scale int) error {
	if scale < 1 {
		return errors.New("preview: scale must be positive")
	}
	if scale == 1 {
		return bmp.Encode(w, img)
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return bmp.Encode(w, dst)
}
