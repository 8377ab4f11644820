package world

// Terrain answers the two questions chunk generation asks per column.
type Terrain interface {
	// HeightAt returns the column height in voxels at world (x, z).
	HeightAt(worldX, worldZ int) int
	// SolidAt reports whether a voxel below the column height is kept.
	SolidAt(worldX, worldY, worldZ int) bool
}

// FlatTerrain is a constant-height, fully solid terrain.
type FlatTerrain struct {
	Height int
}

// NewFlatTerrain creates a flat terrain of the given height.
func NewFlatTerrain(height int) FlatTerrain {
	return FlatTerrain{Height: height}
}

func (f FlatTerrain) HeightAt(worldX, worldZ int) int { return f.Height }
func (f FlatTerrain) SolidAt(worldX, worldY, worldZ int) bool { return true }

// Generator fills chunks from a Terrain.
type Generator struct {
	terrain Terrain
	dims    Dims
}

// NewGenerator creates a generator. Invalid dimensions panic.
func NewGenerator(t Terrain, d Dims) *Generator {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	return &Generator{terrain: t, dims: d}
}

// Dims returns the chunk dimensions this generator produces.
func (g *Generator) Dims() Dims {
	return g.dims
}

// Terrain returns the underlying terrain source.
func (g *Generator) Terrain() Terrain {
	return g.terrain
}

// Generate builds the chunk at coord. It only touches its own output.
func (g *Generator) Generate(coord ChunkCoord) *Chunk {
	c := NewChunk(coord, g.dims)
	baseX := coord.X * g.dims.X
	baseZ := coord.Z * g.dims.Z

	heights := g.heightMap(baseX, baseZ)
	for z := range g.dims.Z {
		for x := range g.dims.X {
			top := min(heights[z*g.dims.X+x], g.dims.Y)
			for y := range top {
				if g.terrain.SolidAt(baseX+x, y, baseZ+z) {
					c.voxels[g.dims.Index(x, y, z)] = Grass
				}
			}
		}
	}
	return c
}

// heightMap samples every column of the chunk, row-major in z then x.
func (g *Generator) heightMap(baseX, baseZ int) []int {
	heights := make([]int, g.dims.X*g.dims.Z)
	for z := range g.dims.Z {
		for x := range g.dims.X {
			heights[z*g.dims.X+x] = g.terrain.HeightAt(baseX+x, baseZ+z)
		}
	}
	return heights
}

// Job returns the unit of work that generates coord.
func (g *Generator) Job(coord ChunkCoord) func() *Chunk {
	return func() *Chunk {
		return g.Generate(coord)
	}
}
