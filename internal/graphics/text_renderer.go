package graphics

import (
	"fmt"

	"mini-terrain/internal/graphics/text"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// TextRenderer draws overlay text from a baked atlas in pixel coordinates.
type TextRenderer struct {
	atlas      *text.Atlas
	shader     *Shader
	texture    uint32
	projection mgl32.Mat4
	vao        uint32
	vbo        uint32
	scratch    []float32
}

// NewTextRenderer bakes the default font at pixels and uploads it.
func NewTextRenderer(pixels, width, height int) (*TextRenderer, error) {
	atlas, err := text.BakeDefault(pixels)
	if err != nil {
		return nil, err
	}
	shader, err := NewShaderFromSource(textVertSrc, textFragSrc)
	if err != nil {
		return nil, fmt.Errorf("text shader: %w", err)
	}
	tr := &TextRenderer{atlas: atlas, shader: shader}
	tr.Resize(width, height)
	tr.initGL()
	return tr, nil
}

func (tr *TextRenderer) initGL() {
	w, h := tr.atlas.Size()
	gl.GenTextures(1, &tr.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tr.texture)
	// Ensure tight byte alignment for single-channel upload
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(w), int32(h), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(tr.atlas.Image.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenVertexArrays(1, &tr.vao)
	gl.GenBuffers(1, &tr.vbo)
	gl.BindVertexArray(tr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 256*text.FloatsPerGlyph*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 4, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Resize updates the pixel projection for a new framebuffer size.
func (tr *TextRenderer) Resize(width, height int) {
	tr.projection = mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}

// LineHeight returns the baked font's line height in pixels.
func (tr *TextRenderer) LineHeight() float32 {
	return float32(tr.atlas.LineHeight)
}

// RenderLines draws lines starting with the first baseline at (x, y),
// each lineStep pixels below the previous one.
func (tr *TextRenderer) RenderLines(lines []string, x, y, lineStep, scale float32, color mgl32.Vec3) {
	tr.scratch = tr.atlas.LayoutLines(lines, x, y, lineStep, scale)
	if len(tr.scratch) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	tr.shader.Use()
	tr.shader.SetVector3("textColor", color)
	tr.shader.SetMatrix4("projection", tr.projection)
	tr.shader.SetInt("text", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tr.texture)
	gl.BindVertexArray(tr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbo)

	// Orphan before the update to avoid stalls
	size := len(tr.scratch) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(tr.scratch))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(tr.scratch)/4))

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
}

// Delete releases GL objects.
func (tr *TextRenderer) Delete() {
	gl.DeleteTextures(1, &tr.texture)
	gl.DeleteBuffers(1, &tr.vbo)
	gl.DeleteVertexArrays(1, &tr.vao)
	tr.shader.Delete()
}
