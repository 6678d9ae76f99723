package config

import (
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, scene.DemoForward, cfg.DemoType())
	assert.Equal(t, 2048, cfg.Shadow.Resolution)
}

func TestDecodeYAMLKeepsDefaults(t *testing.T) {
	data := []byte(`
backend: wgpu
demo: deferred
window:
  width: 1280
material:
  shininess: 64
light:
  direction: [0.5, -1, 0.25]
point_lights:
  columns: 4
  rows: 2
`)
	cfg, err := Decode(data, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "wgpu", cfg.Backend)
	assert.Equal(t, scene.DemoDeferred, cfg.DemoType())
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, float32(64), cfg.Material.Shininess)
	assert.Equal(t, float32(0.5), cfg.Material.Diffuse)
	assert.Equal(t, [3]float32{0.5, -1, 0.25}, cfg.Light.Direction)
	assert.Len(t, light.NewPointGrid(cfg.GridOptions()...), 8)
}

func TestDecodeTOML(t *testing.T) {
	data := []byte(`
demo = "mech"
profiler = true

[shadow]
min_bias = 0.01
max_bias = 3.0

[aberration]
enabled = true
offsets = [0.1, 0.2, 0.3]
`)
	cfg, err := Decode(data, ".toml")
	require.NoError(t, err)
	assert.Equal(t, scene.DemoMech, cfg.DemoType())
	assert.True(t, cfg.Profiler)
	assert.Equal(t, float32(0.01), cfg.Shadow.MinBias)
	assert.Equal(t, float32(1), cfg.Shadow.MaxBias, "max bias is clamped")

	p := cfg.Parameters()
	assert.True(t, p.Aberration.EffectOn)
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, p.Aberration.Offsets)
	assert.Equal(t, float32(1), p.Shadow.MaxBias)
	assert.True(t, p.ShowLightOrbs)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte(`{}`), ".json")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Decode([]byte("demo: raytraced\n"), ".yml")
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = Decode([]byte("window:\n  height: 0\n"), ".yaml")
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = Decode([]byte("shadow = 3"), ".toml")
	assert.Error(t, err)
}

func TestValidateClampsTunables(t *testing.T) {
	cfg := Default()
	cfg.Material.Shininess = 4096
	cfg.Material.Ambient = -1
	cfg.Light.Direction = [3]float32{2, -2, 0}
	cfg.Aberration.Offsets = [3]float32{1.5, 0, -0.5}
	cfg.FrameLimit = -30
	require.NoError(t, cfg.Validate())

	assert.Equal(t, float32(1024), cfg.Material.Shininess)
	assert.Equal(t, float32(0), cfg.Material.Ambient)
	assert.Equal(t, [3]float32{1, -1, 0}, cfg.Light.Direction)
	assert.Equal(t, [3]float32{1, 0, 0}, cfg.Aberration.Offsets)
	assert.Equal(t, float64(0), cfg.FrameLimit)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Demo = "shadowless"
	cfg.Window.Title = "saved"

	for _, name := range []string{"demo.yaml", "demo.toml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.Save(path))
		loaded, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, loaded, name)
	}

	assert.True(t, errors.Is(cfg.Save(filepath.Join(dir, "demo.ini")), ErrUnsupportedFormat))
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestExampleConfigsLoad(t *testing.T) {
	deferred, err := Load(filepath.Join("..", "..", "examples", "configs", "deferred.yaml"))
	require.NoError(t, err)
	assert.Equal(t, scene.DemoDeferred, deferred.DemoType())
	assert.Equal(t, uint64(7), deferred.PointLights.Seed)

	mech, err := Load(filepath.Join("..", "..", "examples", "configs", "mech.toml"))
	require.NoError(t, err)
	assert.Equal(t, scene.DemoMech, mech.DemoType())
	assert.Equal(t, "wgpu", mech.Backend)
	assert.Equal(t, float64(120), mech.FrameLimit)
	assert.False(t, mech.Window.VSync)
}
