package scene

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-passes/engine/camera"
	"github.com/Carmen-Shannon/oxy-passes/engine/game_object"
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/model"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-passes/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrUnknownDemo is returned by ParseDemo for an unrecognized name.
var ErrUnknownDemo = errors.New("scene: unknown demo")

// Demo names one of the prepared scene layouts and the pass order it renders with.
type Demo int

const (
	// DemoForward draws one head over a floor with shadows and forward lighting.
	DemoForward Demo = iota
	// DemoDeferred draws an 8x8 grid of heads and floors lit by 64 point lights.
	DemoDeferred
	// DemoMech draws the animated rig through the deferred passes.
	DemoMech
	// DemoShadowless is DemoForward with the shadow pass skipped.
	DemoShadowless
)

var demoNames = map[Demo]string{
	DemoForward:    "forward",
	DemoDeferred:   "deferred",
	DemoMech:       "mech",
	DemoShadowless: "shadowless",
}

func (d Demo) String() string {
	if name, ok := demoNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDemo maps a configuration name to a Demo, ignoring case.
//
// Parameters:
//   - name: the configured demo name
//
// Returns:
//   - Demo: the matching demo
//   - error: ErrUnknownDemo wrapped with the name
func ParseDemo(name string) (Demo, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for d, n := range demoNames {
		if n == want {
			return d, nil
		}
	}
	return DemoForward, errors.Wrapf(ErrUnknownDemo, "%q", name)
}

// Mode returns the pass order the demo renders with.
func (d Demo) Mode() pass.Mode {
	if d == DemoDeferred || d == DemoMech {
		return pass.ModeDeferred
	}
	return pass.ModeForward
}

// Shadows reports whether the demo runs the shadow pass.
func (d Demo) Shadows() bool {
	return d != DemoShadowless
}

// PassOptions returns the sequencer options for the demo.
func (d Demo) PassOptions() []pass.SequencerBuilderOption {
	return []pass.SequencerBuilderOption{pass.WithMode(d.Mode()), pass.WithShadows(d.Shadows())}
}

// LightCamera returns the light camera framing the demo's layout.
func (d Demo) LightCamera() light.LightCamera {
	if d.Mode() == pass.ModeDeferred {
		return light.NewLightCamera()
	}
	return light.NewLightCamera(
		light.WithTarget(0, 0, 0),
		light.WithOrthoHeight(5),
		light.WithClipPlanes(0.01, 20),
		light.WithDistance(5),
	)
}

var (
	headAlbedo  = mgl32.Vec4{0.8, 0.45, 0.3, 1}
	floorAlbedo = mgl32.Vec4{0.55, 0.55, 0.55, 1}
	mechAlbedo  = mgl32.Vec4{0.7, 0.7, 0.75, 1}
)

// demoConfig holds the inputs NewDemoScene accepts.
type demoConfig struct {
	params      Parameters
	gridOptions []light.GridBuilderOption
	controller  []camera.CameraControllerOption
}

// DemoOption customizes NewDemoScene.
type DemoOption func(*demoConfig)

// WithDemoParameters overrides the starting parameters.
func WithDemoParameters(params Parameters) DemoOption {
	return func(c *demoConfig) {
		c.params = params
	}
}

// WithDemoPointGrid passes options to the point-light grid of the deferred and mech demos.
func WithDemoPointGrid(options ...light.GridBuilderOption) DemoOption {
	return func(c *demoConfig) {
		c.gridOptions = append(c.gridOptions, options...)
	}
}

// WithDemoController passes options to the fly camera controller.
func WithDemoController(options ...camera.CameraControllerOption) DemoOption {
	return func(c *demoConfig) {
		c.controller = append(c.controller, options...)
	}
}

// NewDemoScene builds the layout for a demo. Meshes are created but not uploaded.
//
// Parameters:
//   - demo: the layout to build
//   - options: functional options customizing the layout
//
// Returns:
//   - Scene: the populated scene
//   - error: ErrUnknownDemo or a rig construction error
func NewDemoScene(demo Demo, options ...DemoOption) (Scene, error) {
	if _, ok := demoNames[demo]; !ok {
		return nil, errors.Wrapf(ErrUnknownDemo, "%d", int(demo))
	}
	cfg := demoConfig{params: DefaultParameters()}
	for _, option := range options {
		option(&cfg)
	}

	cam := camera.NewCamera(
		camera.WithPosition(0, 0, 5),
		camera.WithTarget(0, 0, 0),
		camera.WithFov(60),
		camera.WithClipPlanes(0.1, 1000),
		camera.WithController(camera.NewCameraController(cfg.controller...)),
	)
	s := NewScene(
		WithName(demo.String()),
		WithDemo(demo),
		WithCamera(cam),
		WithLightCamera(demo.LightCamera()),
		WithParameters(cfg.params),
	)

	head := model.NewModel(model.WithName("head"), model.WithMeshData(model.Monkey()))
	floor := model.NewModel(model.WithName("floor"), model.WithMeshData(model.Plane(10, 10, 5)))

	switch demo {
	case DemoForward, DemoShadowless:
		for _, obj := range []game_object.GameObject{
			game_object.NewGameObject(game_object.WithModel(head), game_object.WithAlbedo(headAlbedo[0], headAlbedo[1], headAlbedo[2], 1)),
			game_object.NewGameObject(game_object.WithModel(floor), game_object.WithPosition(0, -1, 0), game_object.WithAlbedo(floorAlbedo[0], floorAlbedo[1], floorAlbedo[2], 1)),
		} {
			if _, err := s.Add(obj); err != nil {
				return nil, err
			}
		}
		s.Parameters().ShowLightOrbs = false

	case DemoDeferred:
		for x := 0; x < 8; x++ {
			for y := 0; y < 8; y++ {
				px, pz := float32(x*5), float32(y*5)
				if _, err := s.Add(game_object.NewGameObject(
					game_object.WithModel(head),
					game_object.WithPosition(px, 0, pz),
					game_object.WithAlbedo(headAlbedo[0], headAlbedo[1], headAlbedo[2], 1),
				)); err != nil {
					return nil, err
				}
				if _, err := s.Add(game_object.NewGameObject(
					game_object.WithModel(floor),
					game_object.WithPosition(px, -1, pz),
					game_object.WithAlbedo(floorAlbedo[0], floorAlbedo[1], floorAlbedo[2], 1),
				)); err != nil {
					return nil, err
				}
			}
		}
		s.SetPointLights(light.NewPointGrid(cfg.gridOptions...))

	case DemoMech:
		r := rig.NewRig()
		root, err := BuildMechRig(r)
		if err != nil {
			return nil, err
		}
		if err := s.BindRig(r, root, head, mechAlbedo); err != nil {
			return nil, err
		}
		s.SetPointLights(light.NewPointGrid(cfg.gridOptions...))
	}
	return s, nil
}
