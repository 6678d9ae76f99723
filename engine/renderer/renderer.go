package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu/gl_backend"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/target"
	"github.com/Carmen-Shannon/oxy-passes/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	ctx         gpu.Context
	targets     target.Manager
	sequencer   pass.Sequencer

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	passOptions          []pass.SequencerBuilderOption
	released             bool
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the gpu.Context for the selected backend, the off-screen target manager and the
// pass sequencer. Callers hand it one pass.Frame per frame; everything GPU-side stays behind it.
type Renderer interface {
	// BackendType returns the backend the renderer was created with.
	BackendType() RendererBackendType

	// Context returns the GPU context. Meshes are uploaded through it.
	Context() gpu.Context

	// Targets returns the off-screen target manager.
	Targets() target.Manager

	// Sequencer returns the pass sequencer.
	Sequencer() pass.Sequencer

	// RenderFrame records and presents one frame.
	//
	// Parameters:
	//   - frame: the per-frame state
	//
	// Returns:
	//   - error: the sequencer error, or an error after Release
	RenderFrame(frame *pass.Frame) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Viewport returns the viewport the next frame renders with.
	Viewport() common.Viewport

	// Timings returns the per-pass timings of the last frame.
	Timings() []pass.PassTiming

	// Release frees the sequencer, every remaining target and the context. Calling it twice is a no-op.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type rendering into the window.
// The window must have been created with backendType.ClientAPI(). Failure to initialize the backend
// is fatal.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - win: the window to present into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	width, height := win.Width(), win.Height()
	var (
		ctx gpu.Context
		err error
	)
	switch backendType {
	case BackendTypeWGPU:
		presentMode := wgpu.PresentModeFifo
		if r.presentMode == PresentModeUncapped {
			presentMode = wgpu.PresentModeImmediate
		}
		ctx, err = wgpu_backend.NewContext(win.SurfaceDescriptor(), width, height,
			wgpu_backend.WithPresentMode(presentMode),
			wgpu_backend.WithForceFallbackAdapter(r.forceFallbackAdapter),
		)
	default:
		ctx, err = gl_backend.NewContext(win, width, height)
	}
	if err != nil {
		panic(fmt.Sprintf("renderer: %s backend: %v", backendType, err))
	}

	if err := r.attach(ctx, width, height); err != nil {
		ctx.Release()
		panic(fmt.Sprintf("renderer: %v", err))
	}
	return r
}

// NewRendererWithContext builds a renderer over an existing context, e.g. a gpu.Recorder for
// headless runs. Unlike NewRenderer it returns errors instead of panicking, and Release still
// releases ctx.
//
// Parameters:
//   - ctx: the graphics context to render with
//   - backendType: the backend ctx belongs to, used for labels
//   - width, height: the starting viewport in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: a target or sequencer creation error
func NewRendererWithContext(ctx gpu.Context, backendType RendererBackendType, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	return newRendererWithContext(ctx, backendType, width, height, options...)
}

func newRendererWithContext(ctx gpu.Context, backendType RendererBackendType, width, height int, options ...RendererBuilderOption) (*renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}
	for _, opt := range options {
		opt(r)
	}
	if err := r.attach(ctx, width, height); err != nil {
		return nil, err
	}
	return r, nil
}

// attach creates the target manager and sequencer on ctx. The viewport option comes first so a
// caller-supplied WithViewport in the pass options still wins.
func (r *renderer) attach(ctx gpu.Context, width, height int) error {
	r.ctx = ctx
	r.targets = target.NewManager(ctx, target.WithLabelPrefix(r.backendType.String()))

	opts := append([]pass.SequencerBuilderOption{pass.WithViewport(width, height)}, r.passOptions...)
	seq, err := pass.NewSequencer(ctx, r.targets, opts...)
	if err != nil {
		r.targets.DestroyAll()
		return errors.Wrap(err, "create pass sequencer")
	}
	r.sequencer = seq
	return nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Context() gpu.Context {
	return r.ctx
}

func (r *renderer) Targets() target.Manager {
	return r.targets
}

func (r *renderer) Sequencer() pass.Sequencer {
	return r.sequencer
}

func (r *renderer) RenderFrame(frame *pass.Frame) error {
	r.mu.Lock()
	released := r.released
	r.mu.Unlock()
	if released {
		return pass.ErrReleased
	}
	return r.sequencer.RenderFrame(frame)
}

func (r *renderer) Resize(width, height int) {
	r.sequencer.Resize(width, height)
}

func (r *renderer) Viewport() common.Viewport {
	return r.sequencer.Viewport()
}

func (r *renderer) Timings() []pass.PassTiming {
	return r.sequencer.Timings()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.sequencer.Release()
	r.targets.DestroyAll()
	r.ctx.Release()
	r.released = true
}
