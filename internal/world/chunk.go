package world

import "fmt"

// Dims are the voxel dimensions shared by every chunk of a world.
type Dims struct {
	X, Y, Z int
}

// DefaultDims is the reference chunk size: 32 wide, 80 tall, 32 deep.
var DefaultDims = Dims{X: 32, Y: 80, Z: 32}

// Volume returns the number of voxels in one chunk.
func (d Dims) Volume() int {
	return d.X * d.Y * d.Z
}

// Axis returns the size along axis 0 (x), 1 (y) or 2 (z).
func (d Dims) Axis(i int) int {
	switch i {
	case 0:
		return d.X
	case 1:
		return d.Y
	case 2:
		return d.Z
	}
	panic(fmt.Sprintf("world: axis %d out of range", i))
}

// Validate rejects non-positive dimensions.
func (d Dims) Validate() error {
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return fmt.Errorf("world: invalid chunk dimensions %dx%dx%d", d.X, d.Y, d.Z)
	}
	return nil
}

// Contains reports whether (x, y, z) lies inside a chunk of these dimensions.
func (d Dims) Contains(x, y, z int) bool {
	return x >= 0 && x < d.X && y >= 0 && y < d.Y && z >= 0 && z < d.Z
}

// Index converts local coordinates to a flat voxel index.
// This is the only flattening formula in the module.
func (d Dims) Index(x, y, z int) int {
	return z*(d.X*d.Y) + y*d.X + x
}

// Unflatten is the inverse of Index.
func (d Dims) Unflatten(i int) (x, y, z int) {
	layer := d.X * d.Y
	z = i / layer
	rem := i % layer
	y = rem / d.X
	x = rem % d.X
	return x, y, z
}

// Chunk is a fixed-size voxel volume stored as one flat slice.
type Chunk struct {
	coord  ChunkCoord
	dims   Dims
	voxels []Voxel
}

// NewChunk allocates an all-air chunk. Invalid dimensions panic.
func NewChunk(coord ChunkCoord, dims Dims) *Chunk {
	if err := dims.Validate(); err != nil {
		panic(err)
	}
	return &Chunk{
		coord:  coord,
		dims:   dims,
		voxels: make([]Voxel, dims.Volume()),
	}
}

// Coord returns the chunk's grid position.
func (c *Chunk) Coord() ChunkCoord { return c.coord }

// Dims returns the chunk dimensions.
func (c *Chunk) Dims() Dims { return c.dims }

// At returns the voxel at local coordinates, or Air outside the chunk.
func (c *Chunk) At(x, y, z int) Voxel {
	if !c.dims.Contains(x, y, z) {
		return Air
	}
	return c.voxels[c.dims.Index(x, y, z)]
}

// AtPos is At for an indexable position, p[0]=x, p[1]=y, p[2]=z.
func (c *Chunk) AtPos(p [3]int) Voxel {
	return c.At(p[0], p[1], p[2])
}

// Set writes a voxel. Out-of-bounds writes are programming errors and panic.
func (c *Chunk) Set(x, y, z int, v Voxel) {
	if !c.dims.Contains(x, y, z) {
		panic(fmt.Sprintf("world: chunk %v does not contain (%d,%d,%d)", c.coord, x, y, z))
	}
	c.voxels[c.dims.Index(x, y, z)] = v
}

// Voxels exposes the flat buffer. Callers must not modify it.
func (c *Chunk) Voxels() []Voxel {
	return c.voxels
}

// Clone returns a deep copy for copy-on-write edits.
func (c *Chunk) Clone() *Chunk {
	n := &Chunk{
		coord:  c.coord,
		dims:   c.dims,
		voxels: make([]Voxel, len(c.voxels)),
	}
	copy(n.voxels, c.voxels)
	return n
}

// SolidCount returns the number of solid voxels.
func (c *Chunk) SolidCount() int {
	n := 0
	for _, v := range c.voxels {
		if v.IsSolid() {
			n++
		}
	}
	return n
}

// Bytes serializes the voxel buffer as (material, opacity) pairs in index
// order. Used for hashing and determinism checks.
func (c *Chunk) Bytes() []byte {
	out := make([]byte, 0, len(c.voxels)*2)
	for _, v := range c.voxels {
		out = append(out, byte(v.Material), v.Opacity)
	}
	return out
}
