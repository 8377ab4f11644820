// Package text bakes a glyph atlas and lays out overlay text as quads.
// It has no GL dependency; the graphics package uploads what it produces.
package text

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	firstRune = rune(32)
	lastRune  = rune(126)
	padding   = 1
	atlasW    = 512
)

// Glyph describes a single character's placement and metrics within the atlas.
type Glyph struct {
	// Pixel coordinates of the glyph in the atlas (top-left origin)
	AtlasX, AtlasY float32
	Width, Height  float32
	// Offset from the pen position to the glyph's top-left corner
	BearingX, BearingY float32
	Advance            int
}

// Atlas is a single-channel glyph sheet plus per-glyph metrics.
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph
	// LineHeight is the font's ascent plus descent, in pixels.
	LineHeight int
}

// Size returns the atlas dimensions in pixels.
func (a *Atlas) Size() (int, int) {
	b := a.Image.Bounds()
	return b.Dx(), b.Dy()
}

// BakeDefault bakes the embedded Go Regular font.
func BakeDefault(pixels int) (*Atlas, error) {
	return Bake(goregular.TTF, pixels)
}

// Bake rasterizes the printable ASCII range of a TrueType/OpenType font.
func Bake(ttf []byte, pixels int) (*Atlas, error) {
	if pixels <= 0 {
		return nil, fmt.Errorf("text: invalid font size %d", pixels)
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(pixels), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("text: new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	// First pass: pack rows to find the needed height
	offsetX, offsetY, rowHeight := 0, 0, 0
	for r := firstRune; r <= lastRune; r++ {
		dr, _, _, _, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok || dr.Empty() {
			continue
		}
		if offsetX+dr.Dx() > atlasW {
			offsetX = 0
			offsetY += rowHeight + padding
			rowHeight = 0
		}
		offsetX += dr.Dx() + padding
		rowHeight = max(rowHeight, dr.Dy())
	}
	atlasH := nextPow2(offsetY + rowHeight + padding)

	img := image.NewAlpha(image.Rect(0, 0, atlasW, atlasH))
	glyphs := make(map[rune]Glyph, int(lastRune-firstRune)+1)

	offsetX, offsetY, rowHeight = 0, 0, 0
	for r := firstRune; r <= lastRune; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		g := Glyph{
			BearingX: float32(dr.Min.X),
			BearingY: float32(-dr.Min.Y),
			Advance:  int(math.Round(float64(advance) / 64.0)),
		}
		if dr.Empty() {
			// Space and friends only advance the pen
			glyphs[r] = g
			continue
		}
		if offsetX+dr.Dx() > atlasW {
			offsetX = 0
			offsetY += rowHeight + padding
			rowHeight = 0
		}
		dst := image.Rect(offsetX, offsetY, offsetX+dr.Dx(), offsetY+dr.Dy())
		draw.Draw(img, dst, mask, maskp, draw.Src)

		g.AtlasX, g.AtlasY = float32(offsetX), float32(offsetY)
		g.Width, g.Height = float32(dr.Dx()), float32(dr.Dy())
		glyphs[r] = g

		offsetX += dr.Dx() + padding
		rowHeight = max(rowHeight, dr.Dy())
	}

	m := face.Metrics()
	return &Atlas{
		Image:      img,
		Glyphs:     glyphs,
		LineHeight: (m.Ascent + m.Descent).Ceil(),
	}, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
