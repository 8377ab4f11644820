package graphics

import (
	"sort"

	"mini-terrain/internal/graphics/camera"
	"mini-terrain/internal/meshing"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type chunkDrawable struct {
	vao, vbo, ebo uint32
	indexCount    int32
	transform     mgl32.Mat4
	lo, hi        mgl32.Vec3
}

func (d *chunkDrawable) release() {
	if d.ebo != 0 {
		gl.DeleteBuffers(1, &d.ebo)
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
	}
	*d = chunkDrawable{}
}

// ChunkRenderer draws meshed chunks. It receives meshes from the streamer
// and must only be used on the GL thread.
type ChunkRenderer struct {
	shader     *Shader
	dims       world.Dims
	drawables  map[world.ChunkCoord]*chunkDrawable
	lightDir   mgl32.Vec3
	fogColor   mgl32.Vec3
	fogDist    float32
	drawn      int
	wireframe  bool
	visibleBuf []world.ChunkCoord
}

// NewChunkRenderer compiles the terrain program. fogDistance is in voxels.
func NewChunkRenderer(dims world.Dims, fogColor mgl32.Vec3, fogDistance float32) (*ChunkRenderer, error) {
	shader, err := NewShaderFromSource(terrainVertSrc, terrainFragSrc)
	if err != nil {
		return nil, err
	}
	return &ChunkRenderer{
		shader:    shader,
		dims:      dims,
		drawables: make(map[world.ChunkCoord]*chunkDrawable),
		lightDir:  mgl32.Vec3{0.3, 1.0, 0.3}.Normalize(),
		fogColor:  fogColor,
		fogDist:   fogDistance,
	}, nil
}

// Upsert uploads mesh as the drawable for coord, replacing any previous one.
func (r *ChunkRenderer) Upsert(coord world.ChunkCoord, mesh *meshing.Mesh, transform mgl32.Mat4) {
	defer profiling.Track("graphics.upload")()

	d, ok := r.drawables[coord]
	if !ok {
		d = &chunkDrawable{}
		gl.GenVertexArrays(1, &d.vao)
		gl.GenBuffers(1, &d.vbo)
		gl.GenBuffers(1, &d.ebo)
		r.drawables[coord] = d
	}
	d.transform = transform
	origin := transform.Col(3).Vec3()
	d.lo = origin
	d.hi = origin.Add(mgl32.Vec3{float32(r.dims.X), float32(r.dims.Y), float32(r.dims.Z)})
	d.indexCount = int32(len(mesh.Triangles))

	gl.BindVertexArray(d.vao)
	if !mesh.Empty() {
		verts := mesh.Interleave()
		gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Triangles)*4, gl.Ptr(mesh.Triangles), gl.STATIC_DRAW)

		stride := int32(meshing.VertexStride * 4)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
	}
	gl.BindVertexArray(0)
}

// Dispose frees the drawable for coord.
func (r *ChunkRenderer) Dispose(coord world.ChunkCoord) {
	if d, ok := r.drawables[coord]; ok {
		d.release()
		delete(r.drawables, coord)
	}
}

// Len returns the number of uploaded drawables.
func (r *ChunkRenderer) Len() int { return len(r.drawables) }

// Drawn returns how many chunks passed the frustum test in the last Draw.
func (r *ChunkRenderer) Drawn() int { return r.drawn }

// ToggleWireframe switches between filled and line rendering.
func (r *ChunkRenderer) ToggleWireframe() { r.wireframe = !r.wireframe }

// Draw renders every uploaded chunk inside the view frustum, front to back
// from eye.
func (r *ChunkRenderer) Draw(view, proj mgl32.Mat4, eye mgl32.Vec3) {
	defer profiling.Track("graphics.drawChunks")()

	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	// Greedy quads wind clockwise seen from outside
	gl.FrontFace(gl.CW)

	r.shader.Use()
	r.shader.SetMatrix4("view", view)
	r.shader.SetMatrix4("proj", proj)
	r.shader.SetVector3("lightDir", r.lightDir)
	r.shader.SetVector3("fogColor", r.fogColor)
	r.shader.SetFloat("fogDistance", r.fogDist)

	frustum := camera.NewFrustum(proj.Mul4(view))
	r.visibleBuf = r.visibleBuf[:0]
	for coord, d := range r.drawables {
		if d.indexCount > 0 && frustum.IntersectsAABB(d.lo, d.hi) {
			r.visibleBuf = append(r.visibleBuf, coord)
		}
	}
	eyeCoord := world.ChunkCoordAt(eye, r.dims)
	sort.Slice(r.visibleBuf, func(i, j int) bool {
		return world.ManhattanDistance(eyeCoord, r.visibleBuf[i]) < world.ManhattanDistance(eyeCoord, r.visibleBuf[j])
	})

	for _, coord := range r.visibleBuf {
		d := r.drawables[coord]
		r.shader.SetMatrix4("model", d.transform)
		gl.BindVertexArray(d.vao)
		gl.DrawElements(gl.TRIANGLES, d.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
	gl.FrontFace(gl.CCW)
	r.drawn = len(r.visibleBuf)
}

// Delete releases every drawable and the program.
func (r *ChunkRenderer) Delete() {
	for coord, d := range r.drawables {
		d.release()
		delete(r.drawables, coord)
	}
	r.shader.Delete()
}
