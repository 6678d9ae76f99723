// package config loads the demo configuration from YAML or TOML. Fields missing from a file keep
// their Default values.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
	"github.com/Carmen-Shannon/oxy-passes/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for a file extension other than .yaml, .yml or .toml.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	// ErrInvalid is returned by Validate for values no range can repair.
	ErrInvalid = errors.New("config: invalid value")
)

// WindowConfig sizes and titles the window.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	VSync  bool   `yaml:"vsync" toml:"vsync"`
}

// ShadowConfig sizes the shadow map and sets the depth bias.
type ShadowConfig struct {
	Resolution int     `yaml:"resolution" toml:"resolution"`
	MinBias    float32 `yaml:"min_bias" toml:"min_bias"`
	MaxBias    float32 `yaml:"max_bias" toml:"max_bias"`
}

// MaterialConfig holds the Blinn-Phong coefficients.
type MaterialConfig struct {
	Ambient   float32 `yaml:"ambient" toml:"ambient"`
	Diffuse   float32 `yaml:"diffuse" toml:"diffuse"`
	Specular  float32 `yaml:"specular" toml:"specular"`
	Shininess float32 `yaml:"shininess" toml:"shininess"`
}

// LightConfig holds the directional light.
type LightConfig struct {
	Direction [3]float32 `yaml:"direction" toml:"direction"`
	Color     [3]float32 `yaml:"color" toml:"color"`
}

// AberrationConfig holds the post-process effect.
type AberrationConfig struct {
	Offsets [3]float32 `yaml:"offsets" toml:"offsets"`
	Enabled bool       `yaml:"enabled" toml:"enabled"`
}

// PointGridConfig lays out the deferred demo's point lights.
type PointGridConfig struct {
	Columns     int        `yaml:"columns" toml:"columns"`
	Rows        int        `yaml:"rows" toml:"rows"`
	Spacing     float32    `yaml:"spacing" toml:"spacing"`
	Offset      [3]float32 `yaml:"offset" toml:"offset"`
	Radius      float32    `yaml:"radius" toml:"radius"`
	ColorLevels int        `yaml:"color_levels" toml:"color_levels"`
	Seed        uint64     `yaml:"seed" toml:"seed"`
	ShowOrbs    bool       `yaml:"show_orbs" toml:"show_orbs"`
}

// Config is the complete demo configuration.
type Config struct {
	Backend       string           `yaml:"backend" toml:"backend"`
	Demo          string           `yaml:"demo" toml:"demo"`
	ForceSoftware bool             `yaml:"force_software" toml:"force_software"`
	Profiler      bool             `yaml:"profiler" toml:"profiler"`
	FrameLimit    float64          `yaml:"frame_limit" toml:"frame_limit"`
	Window        WindowConfig     `yaml:"window" toml:"window"`
	Shadow        ShadowConfig     `yaml:"shadow" toml:"shadow"`
	Material      MaterialConfig   `yaml:"material" toml:"material"`
	Light         LightConfig      `yaml:"light" toml:"light"`
	Aberration    AberrationConfig `yaml:"aberration" toml:"aberration"`
	PointLights   PointGridConfig  `yaml:"point_lights" toml:"point_lights"`
}

// Default returns the configuration the demos start with when no file is given.
func Default() Config {
	return Config{
		Backend: "opengl",
		Demo:    "forward",
		Window: WindowConfig{
			Title:  "oxy-passes",
			Width:  1080,
			Height: 720,
			VSync:  true,
		},
		Shadow: ShadowConfig{
			Resolution: light.ShadowMapResolution,
			MinBias:    0.007,
			MaxBias:    0.2,
		},
		Material: MaterialConfig{Ambient: 1, Diffuse: 0.5, Specular: 0.5, Shininess: 128},
		Light: LightConfig{
			Direction: [3]float32{0, -1, 0},
			Color:     [3]float32{1, 1, 1},
		},
		Aberration: AberrationConfig{Offsets: [3]float32{0.5, 0.5, 0.5}},
		PointLights: PointGridConfig{
			Columns:     8,
			Rows:        8,
			Spacing:     5,
			Offset:      [3]float32{1, -0.5, 1},
			Radius:      5,
			ColorLevels: 4,
			Seed:        1,
			ShowOrbs:    true,
		},
	}
}

// Load reads path over Default. The format follows the extension.
//
// Parameters:
//   - path: a .yaml, .yml or .toml file
//
// Returns:
//   - Config: the loaded and validated configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: read")
	}
	cfg, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Decode parses data in the format named by ext (".yaml", ".yml" or ".toml") over Default and validates it.
func Decode(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "decode yaml")
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "decode toml")
		}
	default:
		return Config{}, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes c to path in the format named by its extension.
func (c Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", filepath.Ext(path))
	}
	if err != nil {
		return errors.Wrap(err, "config: encode")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "config: write")
}

// Validate rejects an unknown demo and non-positive sizes, and clamps every tunable into the range
// the controls allow.
func (c *Config) Validate() error {
	if _, err := scene.ParseDemo(c.Demo); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Wrapf(ErrInvalid, "window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Shadow.Resolution <= 0 {
		return errors.Wrapf(ErrInvalid, "shadow resolution %d", c.Shadow.Resolution)
	}
	if c.FrameLimit < 0 {
		c.FrameLimit = 0
	}

	c.Shadow.MinBias = light.BiasRange.Clamp(c.Shadow.MinBias)
	c.Shadow.MaxBias = light.BiasRange.Clamp(c.Shadow.MaxBias)

	c.Material.Ambient = material.CoefficientRange.Clamp(c.Material.Ambient)
	c.Material.Diffuse = material.CoefficientRange.Clamp(c.Material.Diffuse)
	c.Material.Specular = material.CoefficientRange.Clamp(c.Material.Specular)
	c.Material.Shininess = material.ShininessRange.Clamp(c.Material.Shininess)

	for i := range 3 {
		c.Light.Direction[i] = light.DirectionRange.Clamp(c.Light.Direction[i])
		c.Light.Color[i] = light.ColorRange.Clamp(c.Light.Color[i])
		c.Aberration.Offsets[i] = postfx.OffsetRange.Clamp(c.Aberration.Offsets[i])
	}
	return nil
}

// DemoType returns the parsed demo.
func (c Config) DemoType() scene.Demo {
	d, _ := scene.ParseDemo(c.Demo)
	return d
}

// Parameters converts the tunables into the scene's starting parameters.
func (c Config) Parameters() scene.Parameters {
	return scene.Parameters{
		Light: light.NewDirectional(
			light.WithDirection(c.Light.Direction[0], c.Light.Direction[1], c.Light.Direction[2]),
			light.WithColor(c.Light.Color[0], c.Light.Color[1], c.Light.Color[2]),
		),
		Shadow: light.NewShadow(light.WithBias(c.Shadow.MinBias, c.Shadow.MaxBias)),
		Material: material.NewMaterial(
			material.WithAmbient(c.Material.Ambient),
			material.WithDiffuse(c.Material.Diffuse),
			material.WithSpecular(c.Material.Specular),
			material.WithShininess(c.Material.Shininess),
		),
		Aberration: postfx.NewChromaticAberration(
			postfx.WithOffsets(c.Aberration.Offsets[0], c.Aberration.Offsets[1], c.Aberration.Offsets[2]),
			postfx.WithEffect(c.Aberration.Enabled),
		),
		ShowLightOrbs: c.PointLights.ShowOrbs,
	}
}

// GridOptions converts the point-light layout into light.NewPointGrid options.
func (c Config) GridOptions() []light.GridBuilderOption {
	g := c.PointLights
	return []light.GridBuilderOption{
		light.WithGridSize(g.Columns, g.Rows),
		light.WithSpacing(g.Spacing),
		light.WithOffset(mgl32.Vec3(g.Offset)),
		light.WithRadius(g.Radius),
		light.WithColorLevels(g.ColorLevels),
		light.WithSeed(g.Seed),
	}
}
