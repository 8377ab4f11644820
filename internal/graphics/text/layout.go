package text

// FloatsPerGlyph is six vertices of (x, y, u, v).
const FloatsPerGlyph = 6 * 4

// Measure returns the width and tallest glyph height of s at scale.
func (a *Atlas) Measure(s string, scale float32) (float32, float32) {
	var width, maxH float32
	for _, r := range s {
		g := a.glyph(r)
		width += float32(g.Advance) * scale
		maxH = max(maxH, g.Height*scale)
	}
	return width, maxH
}

// Layout appends the quads for s with its baseline starting at (x, y) in a
// y-down pixel space. Runes missing from the atlas advance like a space.
func (a *Atlas) Layout(dst []float32, s string, x, y, scale float32) []float32 {
	w, h := a.Size()
	aw, ah := float32(w), float32(h)
	for _, r := range s {
		g := a.glyph(r)
		if g.Width > 0 && g.Height > 0 {
			xPos := x + g.BearingX*scale
			yPos := y - g.BearingY*scale
			gw := g.Width * scale
			gh := g.Height * scale
			u0, v0 := g.AtlasX/aw, g.AtlasY/ah
			u1, v1 := (g.AtlasX+g.Width)/aw, (g.AtlasY+g.Height)/ah
			dst = append(dst,
				xPos, yPos+gh, u0, v1,
				xPos, yPos, u0, v0,
				xPos+gw, yPos, u1, v0,

				xPos, yPos+gh, u0, v1,
				xPos+gw, yPos, u1, v0,
				xPos+gw, yPos+gh, u1, v1,
			)
		}
		x += float32(g.Advance) * scale
	}
	return dst
}

// LayoutLines lays out each line lineStep pixels below the previous one.
func (a *Atlas) LayoutLines(lines []string, x, y, lineStep, scale float32) []float32 {
	n := 0
	for _, l := range lines {
		n += len(l)
	}
	out := make([]float32, 0, n*FloatsPerGlyph)
	for _, l := range lines {
		out = a.Layout(out, l, x, y, scale)
		y += lineStep
	}
	return out
}

func (a *Atlas) glyph(r rune) Glyph {
	if g, ok := a.Glyphs[r]; ok {
		return g
	}
	return a.Glyphs[' ']
}
