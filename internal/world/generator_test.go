package world

import (
	"crypto/sha256"
	"testing"
)

func TestGeneratorsImplementTerrain(t *testing.T) {
	var _ Terrain = NewFlatTerrain(10)
	var _ Terrain = NewNoiseField(DefaultNoiseParams(1, 2), DefaultDims)
}

func TestFlatTerrainHeight(t *testing.T) {
	f := NewFlatTerrain(10)
	if h := f.HeightAt(0, 0); h != 10 {
		t.Errorf("Expected height 10, got %d", h)
	}
	if h := f.HeightAt(100, -50); h != 10 {
		t.Errorf("Expected height 10, got %d", h)
	}
}

func TestFlatGeneratorPopulate(t *testing.T) {
	d := Dims{X: 8, Y: 16, Z: 8}
	g := NewGenerator(NewFlatTerrain(10), d)
	c := g.Generate(ChunkCoord{X: -3, Z: 7})

	for z := range d.Z {
		for x := range d.X {
			for y := range d.Y {
				v := c.At(x, y, z)
				if y < 10 && v != Grass {
					t.Fatalf("Expected grass at %d,%d,%d, got %+v", x, y, z, v)
				}
				if y >= 10 && v != Air {
					t.Fatalf("Expected air at %d,%d,%d, got %+v", x, y, z, v)
				}
			}
		}
	}
	if got, want := c.SolidCount(), d.X*d.Z*10; got != want {
		t.Errorf("solid count = %d, want %d", got, want)
	}
}

func TestFlatGeneratorClampsToChunkHeight(t *testing.T) {
	d := Dims{X: 2, Y: 4, Z: 2}
	c := NewGenerator(NewFlatTerrain(100), d).Generate(ChunkCoord{})
	if c.SolidCount() != d.Volume() {
		t.Errorf("expected a full chunk, got %d solid of %d", c.SolidCount(), d.Volume())
	}
}

// hashChunk computes a SHA-256 hash of a chunk's voxel buffer.
func hashChunk(c *Chunk) [32]byte {
	return sha256.Sum256(c.Bytes())
}

// TestGenerationDeterministic verifies that two independently built
// generators with the same seeds produce byte-identical chunks.
func TestGenerationDeterministic(t *testing.T) {
	d := Dims{X: 16, Y: 48, Z: 16}
	coords := []ChunkCoord{{0, 0}, {1, -1}, {-4, 9}}

	g1 := NewGenerator(NewNoiseField(DefaultNoiseParams(1337, 99), d), d)
	g2 := NewGenerator(NewNoiseField(DefaultNoiseParams(1337, 99), d), d)

	for _, coord := range coords {
		h1 := hashChunk(g1.Generate(coord))
		h2 := hashChunk(g2.Generate(coord))
		if h1 != h2 {
			t.Errorf("chunk %v not deterministic: %x != %x", coord, h1, h2)
		}
	}
}

func TestGenerationSeedsDiffer(t *testing.T) {
	d := Dims{X: 16, Y: 48, Z: 16}
	a := NewGenerator(NewNoiseField(DefaultNoiseParams(1, 99), d), d)
	b := NewGenerator(NewNoiseField(DefaultNoiseParams(2, 99), d), d)

	same := true
	for _, coord := range []ChunkCoord{{0, 0}, {5, 5}, {-7, 3}} {
		if hashChunk(a.Generate(coord)) != hashChunk(b.Generate(coord)) {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical chunks")
	}
}

// TestGeneratedVoxelsBelowHeight checks that no voxel appears above the
// column height and that every solid voxel is grass.
func TestGeneratedVoxelsBelowHeight(t *testing.T) {
	d := Dims{X: 16, Y: 48, Z: 16}
	field := NewNoiseField(DefaultNoiseParams(42, 7), d)
	coord := ChunkCoord{X: 2, Z: -1}
	c := NewGenerator(field, d).Generate(coord)

	for z := range d.Z {
		for x := range d.X {
			h := field.HeightAt(coord.X*d.X+x, coord.Z*d.Z+z)
			for y := range d.Y {
				v := c.At(x, y, z)
				if y >= h && v != Air {
					t.Fatalf("voxel above height %d at %d,%d,%d", h, x, y, z)
				}
				if v != Air && v != Grass {
					t.Fatalf("unexpected voxel %+v at %d,%d,%d", v, x, y, z)
				}
			}
		}
	}
}

func TestGeneratorJob(t *testing.T) {
	d := Dims{X: 4, Y: 4, Z: 4}
	g := NewGenerator(NewFlatTerrain(2), d)
	job := g.Job(ChunkCoord{X: 5, Z: 6})
	c := job()
	if c.Coord() != (ChunkCoord{X: 5, Z: 6}) {
		t.Errorf("job produced chunk at %v", c.Coord())
	}
	if c.SolidCount() != 4*4*2 {
		t.Errorf("solid count = %d", c.SolidCount())
	}
}
