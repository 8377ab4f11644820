package world

import "image/color"

// Material identifies one entry of the fixed voxel palette.
type Material uint8

const (
	MaterialAir Material = iota
	MaterialGrass
	MaterialDirt
	MaterialStone
	MaterialCloud
)

// OpacitySolid is the opacity channel value of a solid voxel.
const OpacitySolid = 0xFF

var palette = [...]color.RGBA{
	MaterialAir:   {0, 0, 0, 0},
	MaterialGrass: {0, 100, 0, OpacitySolid},
	MaterialDirt:  {160, 82, 45, OpacitySolid},
	MaterialStone: {128, 128, 128, OpacitySolid},
	MaterialCloud: {240, 240, 240, OpacitySolid},
}

// Color returns the vertex color used for faces of this material.
func (m Material) Color() color.RGBA {
	if int(m) >= len(palette) {
		return palette[MaterialAir]
	}
	return palette[m]
}

func (m Material) String() string {
	switch m {
	case MaterialAir:
		return "air"
	case MaterialGrass:
		return "grass"
	case MaterialDirt:
		return "dirt"
	case MaterialStone:
		return "stone"
	case MaterialCloud:
		return "cloud"
	default:
		return "unknown"
	}
}

// Voxel is a material plus an opacity channel. Two voxels are equal only
// when both fields match.
type Voxel struct {
	Material Material
	Opacity  uint8
}

// Air is returned for every lookup outside a chunk.
var Air = Voxel{}

// Solid returns an opaque voxel of the given material.
func Solid(m Material) Voxel {
	return Voxel{Material: m, Opacity: OpacitySolid}
}

var (
	Grass = Solid(MaterialGrass)
	Dirt  = Solid(MaterialDirt)
	Stone = Solid(MaterialStone)
	Cloud = Solid(MaterialCloud)
)

// IsSolid reports whether the opacity channel is at its maximum.
func (v Voxel) IsSolid() bool {
	return v.Opacity == OpacitySolid
}

// Color returns the material color with the voxel's own opacity.
func (v Voxel) Color() color.RGBA {
	c := v.Material.Color()
	c.A = v.Opacity
	return c
}
