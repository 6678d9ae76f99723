package light

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// gridConfig describes a rectangular layout of point lights.
type gridConfig struct {
	columns int
	rows    int
	spacing float32
	offset  mgl32.Vec3
	radius  float32
	levels  int
	seed    uint64
}

// NewPointGrid lays point lights out on a grid in the XZ plane. Light (x, y) sits at
// offset + (x*spacing, 0, y*spacing), iterating x in the outer loop. Each color channel is an integer
// in [0, levels) drawn from a PCG source seeded with the configured seed, so a seed reproduces the
// same colors; alpha is always 1.
//
// Defaults: 8x8 lights, spacing 5, offset (1, -0.5, 1), radius 5, 4 color levels, seed 1.
//
// Parameters:
//   - options: functional options overriding the layout
//
// Returns:
//   - []PointLight: columns*rows lights
func NewPointGrid(options ...GridBuilderOption) []PointLight {
	cfg := gridConfig{
		columns: 8,
		rows:    8,
		spacing: 5,
		offset:  mgl32.Vec3{1, -0.5, 1},
		radius:  5,
		levels:  4,
		seed:    1,
	}
	for _, option := range options {
		option(&cfg)
	}
	if cfg.columns <= 0 || cfg.rows <= 0 {
		return nil
	}
	if cfg.levels <= 0 {
		cfg.levels = 1
	}

	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	channel := func() float32 {
		return float32(rng.IntN(cfg.levels))
	}

	lights := make([]PointLight, 0, cfg.columns*cfg.rows)
	for x := 0; x < cfg.columns; x++ {
		for y := 0; y < cfg.rows; y++ {
			lights = append(lights, PointLight{
				Position: cfg.offset.Add(mgl32.Vec3{float32(x) * cfg.spacing, 0, float32(y) * cfg.spacing}),
				Radius:   cfg.radius,
				Color:    mgl32.Vec4{channel(), channel(), channel(), 1},
			})
		}
	}
	return lights
}

// GridBuilderOption is a functional option for NewPointGrid.
type GridBuilderOption func(*gridConfig)

// WithGridSize sets the number of columns (along X) and rows (along Z).
//
// Parameters:
//   - columns: lights along X
//   - rows: lights along Z
//
// Returns:
//   - GridBuilderOption: a function that applies the size option
func WithGridSize(columns, rows int) GridBuilderOption {
	return func(c *gridConfig) {
		c.columns = columns
		c.rows = rows
	}
}

// WithSpacing sets the distance between neighbouring lights.
func WithSpacing(spacing float32) GridBuilderOption {
	return func(c *gridConfig) {
		c.spacing = spacing
	}
}

// WithOffset sets the position of light (0, 0).
func WithOffset(offset mgl32.Vec3) GridBuilderOption {
	return func(c *gridConfig) {
		c.offset = offset
	}
}

// WithRadius sets every light's radius.
func WithRadius(radius float32) GridBuilderOption {
	return func(c *gridConfig) {
		c.radius = radius
	}
}

// WithColorLevels sets how many integer values each color channel can take.
func WithColorLevels(levels int) GridBuilderOption {
	return func(c *gridConfig) {
		c.levels = levels
	}
}

// WithSeed sets the color generator seed.
func WithSeed(seed uint64) GridBuilderOption {
	return func(c *gridConfig) {
		c.seed = seed
	}
}
