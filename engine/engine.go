package engine

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/config"
	"github.com/Carmen-Shannon/oxy-passes/engine/controls"
	"github.com/Carmen-Shannon/oxy-passes/engine/profiler"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-passes/engine/scene"
	"github.com/Carmen-Shannon/oxy-passes/engine/window"
	"github.com/pkg/errors"
)

// engine implements the Engine interface.
// Input, update and rendering all run on the window's thread, one frame per event-loop iteration.
type engine struct {
	cfg        config.Config
	configPath string

	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene
	controls controls.Controls

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	lastTime float64
	frames   uint64
	err      error
	released bool
}

// Engine is the main entry point for the demos.
// It owns the window, the renderer, the demo scene and the keyboard controls, and drives one frame
// per window event-loop iteration.
type Engine interface {
	// Config returns the validated configuration the engine was built from.
	Config() config.Config

	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing the scene.
	Renderer() renderer.Renderer

	// Scene returns the demo scene.
	Scene() scene.Scene

	// Controls returns the keyboard controls bound to the scene's parameters.
	Controls() controls.Controls

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Step runs one frame: polls shift and camera input, advances animation by dt, builds the frame
	// and renders it.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - error: a scene or render error
	Step(dt float32) error

	// Frames returns the number of frames rendered.
	Frames() uint64

	// Run drives Step from the window's event loop until the window closes or a frame fails, then
	// releases everything.
	//
	// Returns:
	//   - error: the first frame error, if any
	Run() error

	// Quit asks the event loop to stop after the current frame.
	Quit()

	// Release frees the scene, the renderer and the window. Safe to call more than once.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates an Engine from a configuration. Unless WithWindow or WithRenderer supply them,
// the window and renderer are created for the configured backend. The engine owns both from then
// on, including when scene setup fails.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the ready engine
//   - error: a configuration, scene or upload error
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		cfg:      config.Default(),
		profiler: profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.configPath != "" {
		cfg, err := config.Load(e.configPath)
		if err != nil {
			return nil, err
		}
		e.cfg = cfg
	} else if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.cfg.Profiler {
		e.profilingEnabled = true
	}
	if e.renderFrameLimit == 0 {
		e.SetRenderFrameLimit(e.cfg.FrameLimit)
	}

	backend, err := renderer.ParseBackendType(e.cfg.Backend)
	if err != nil {
		return nil, err
	}
	demo := e.cfg.DemoType()

	if e.window == nil {
		e.window = window.NewWindow(
			window.WithTitle(e.cfg.Window.Title),
			window.WithSize(e.cfg.Window.Width, e.cfg.Window.Height),
			window.WithClientAPI(backend.ClientAPI()),
			window.WithVSync(e.cfg.Window.VSync),
		)
	}
	if e.renderer == nil {
		presentMode := renderer.PresentModeVSync
		if !e.cfg.Window.VSync {
			presentMode = renderer.PresentModeUncapped
		}
		e.renderer = renderer.NewRenderer(backend, e.window,
			renderer.WithPresentMode(presentMode),
			renderer.WithForceSoftwareRenderer(e.cfg.ForceSoftware),
			renderer.WithPassOptions(PassOptions(e.cfg)...),
		)
	}

	s, err := scene.NewDemoScene(demo,
		scene.WithDemoParameters(e.cfg.Parameters()),
		scene.WithDemoPointGrid(e.cfg.GridOptions()...),
	)
	if err != nil {
		e.abort()
		return nil, errors.Wrapf(err, "build %s scene", demo)
	}
	if err := s.Upload(e.renderer.Context()); err != nil {
		s.Release(e.renderer.Context())
		e.abort()
		return nil, errors.Wrapf(err, "upload %s scene", demo)
	}
	e.scene = s

	params := s.Parameters()
	cam := s.Camera()
	e.controls = controls.NewControls(controls.Targets{
		Material:      &params.Material,
		Light:         &params.Light,
		Shadow:        &params.Shadow,
		Aberration:    &params.Aberration,
		ShowLightOrbs: &params.ShowLightOrbs,
		ResetCamera:   cam.Reset,
	}, controls.WithVerbose(true))

	e.window.SetKeyDownCallback(func(keyCode int) {
		e.controls.HandleKey(keyCode)
	})
	e.window.SetResizeCallback(func(width, height int) {
		if width <= 0 || height <= 0 {
			return
		}
		e.renderer.Resize(width, height)
	})

	log.Printf("[engine] %s demo on %s (%s, shadows %t)", demo, backend, demo.Mode(), demo.Shadows())
	return e, nil
}

// PassOptions returns the sequencer options a configuration selects: the demo's pass order plus the
// shadow map resolution.
func PassOptions(cfg config.Config) []pass.SequencerBuilderOption {
	opts := cfg.DemoType().PassOptions()
	return append(opts, pass.WithShadowResolution(cfg.Shadow.Resolution))
}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Controls() controls.Controls {
	return e.controls
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Step(dt float32) error {
	e.controls.SetShift(e.window.KeyDown(common.KeyLeftShift) || e.window.KeyDown(common.KeyRightShift))

	cam := e.scene.Camera()
	if ctrl := cam.Controller(); ctrl != nil {
		ctrl.Move(cam, e.window, dt)
	}

	if err := e.scene.Update(dt); err != nil {
		return errors.Wrap(err, "update scene")
	}
	frame, err := e.scene.Frame(e.renderer.Viewport())
	if err != nil {
		return errors.Wrap(err, "build frame")
	}
	if err := e.renderer.RenderFrame(frame); err != nil {
		return errors.Wrapf(err, "render frame %d", e.frames)
	}
	e.frames++

	if e.profilingEnabled && e.profiler != nil {
		for _, t := range e.renderer.Timings() {
			e.profiler.RecordPass(t.Pass, t.Duration)
		}
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Run() error {
	e.lastTime = e.window.Time()
	e.window.SetUpdateCallback(e.update)
	e.window.ProcessMessages()
	e.Release()
	return e.err
}

// update is the window's per-iteration callback.
func (e *engine) update() {
	if e.err != nil {
		return
	}
	start := time.Now()
	now := e.window.Time()
	dt := float32(now - e.lastTime)
	e.lastTime = now

	if err := e.Step(dt); err != nil {
		log.Printf("[engine] stopping: %v", err)
		e.err = err
		e.window.RequestClose()
		return
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) Quit() {
	e.window.RequestClose()
}

// abort frees the renderer and window after a failed NewEngine.
func (e *engine) abort() {
	e.renderer.Release()
	if err := e.window.Close(); err != nil {
		log.Printf("[engine] close window: %v", err)
	}
}

func (e *engine) Release() {
	if e.released {
		return
	}
	e.released = true

	order := e.scene.Release(e.renderer.Context())
	if len(order) > 0 {
		log.Printf("[engine] released %d rig nodes", len(order))
	}
	e.renderer.Release()
	if err := e.window.Close(); err != nil {
		log.Printf("[engine] close window: %v", err)
	}
}
