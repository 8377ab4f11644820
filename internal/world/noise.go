package world

import (
	"math"

	perlin "github.com/aquilax/go-perlin"
)

// Perlin sampler shape shared by both noise paths.
const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0

	// Single-octave 2D gradient noise peaks at sqrt(2)/2.
	perlin2DPeak = math.Sqrt2 / 2

	// Seed offsets are folded into this range before being added to
	// sample coordinates, keeping float precision usable.
	seedOffsetRange = 50000

	// go-perlin's gradient lattice repeats every 256 units, and its
	// fractional step breaks for coordinates below -4096.
	perlinPeriod = 256
)

// wrapPeriod folds a sample coordinate into [0, perlinPeriod). The
// sampler is periodic with that period (for every octave, since beta is
// 2), so the folded sample equals the unfolded one wherever the latter
// is valid.
func wrapPeriod(v float64) float64 {
	v = math.Mod(v, perlinPeriod)
	if v < 0 {
		v += perlinPeriod
	}
	return v
}

// NoiseParams is the explicit configuration of a world's noise. Both
// samplers are seeded from here; nothing is read from global state.
type NoiseParams struct {
	Seed           int64
	HeightScale    float64
	HeightOctaves  int
	HeightFalloff  float64
	CarveSeed      int64
	CarveScale     float64
	CarveOctaves   int
	CarveThreshold float64
}

// DefaultNoiseParams returns the reference terrain shape for the given seeds.
func DefaultNoiseParams(seed, carveSeed int64) NoiseParams {
	return NoiseParams{
		Seed:           seed,
		HeightScale:    0.003,
		HeightOctaves:  5,
		HeightFalloff:  0.5,
		CarveSeed:      carveSeed,
		CarveScale:     0.05,
		CarveOctaves:   3,
		CarveThreshold: -0.05,
	}
}

// NoiseField samples terrain height and carve density. It is read-only
// after construction and safe for concurrent use by generation workers.
type NoiseField struct {
	params NoiseParams
	dims   Dims
	offset float64
	height *perlin.Perlin
	carve  *perlin.Perlin
}

// NewNoiseField builds both samplers from params.
func NewNoiseField(p NoiseParams, d Dims) *NoiseField {
	return &NoiseField{
		params: p,
		dims:   d,
		offset: float64(uint64(p.Seed) % seedOffsetRange),
		height: perlin.NewPerlin(perlinAlpha, perlinBeta, 1, p.Seed),
		carve:  perlin.NewPerlin(perlinAlpha, perlinBeta, int32(max(p.CarveOctaves, 1)), p.CarveSeed),
	}
}

// Params returns the configuration the field was built from.
func (n *NoiseField) Params() NoiseParams {
	return n.params
}

// noise01 is 2D Perlin noise remapped into [0,1].
func (n *NoiseField) noise01(x, y float64) float64 {
	v := 0.5 + 0.5*n.height.Noise2D(wrapPeriod(x), wrapPeriod(y))/perlin2DPeak
	return math.Min(1, math.Max(0, v))
}

// CombinePerlin sums octaves of noise01 where each octave's amplitude is
// the previous one times scaleFactor and its coordinates are divided by
// that amplitude. The sum is normalized by the total amplitude, so the
// result stays in [0,1] for any octave count.
func (n *NoiseField) CombinePerlin(x, y, scaleFactor float64, octaves int, seed float64) float64 {
	amplitude := 1.0
	sum := 0.0
	norm := 0.0
	for range octaves {
		sum += amplitude * n.noise01(x/amplitude+seed, y/amplitude+seed)
		norm += amplitude
		amplitude *= scaleFactor
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// HeightAt returns the terrain height in voxels of the world column (x, z),
// in [0, Dims.Y].
func (n *NoiseField) HeightAt(worldX, worldZ int) int {
	p := n.params
	v := n.CombinePerlin(float64(worldX)*p.HeightScale, float64(worldZ)*p.HeightScale,
		p.HeightFalloff, p.HeightOctaves, n.offset)
	h := int(math.Floor(v * float64(n.dims.Y)))
	return min(max(h, 0), n.dims.Y)
}

// CarveAt samples the 3D carve noise at a world voxel.
func (n *NoiseField) CarveAt(worldX, worldY, worldZ int) float64 {
	s := n.params.CarveScale
	// Folding keeps every argument non-negative; Noise3D degrades to 2D
	// for a negative third argument.
	return n.carve.Noise3D(
		wrapPeriod(float64(worldX)*s),
		wrapPeriod(float64(worldZ)*s),
		wrapPeriod(float64(worldY)*s),
	)
}

// SolidAt reports whether the carve sample at a world voxel exceeds the threshold.
func (n *NoiseField) SolidAt(worldX, worldY, worldZ int) bool {
	return n.CarveAt(worldX, worldY, worldZ) > n.params.CarveThreshold
}
