package target

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidSize is returned for non-positive target dimensions. Nothing is allocated.
	ErrInvalidSize = errors.New("target: width and height must be positive")
	// ErrNoAttachments is returned when neither color nor depth formats are requested.
	ErrNoAttachments = errors.New("target: no attachments requested")
	// ErrIncompleteFramebuffer aliases the gpu sentinel so callers need not import gpu.
	ErrIncompleteFramebuffer = gpu.ErrIncompleteFramebuffer
)

// Target is an off-screen render destination: a framebuffer plus the textures attached to it.
// Color[i] is attached at color attachment point i and DrawBuffers lists the points fragment outputs
// write to, in the same order as the requested formats.
type Target struct {
	Label        string
	Framebuffer  gpu.FramebufferHandle
	Color        []gpu.TextureHandle
	ColorFormats []gpu.TextureFormat
	Depth        gpu.TextureHandle
	DepthFormat  gpu.TextureFormat
	Width        int
	Height       int
	DrawBuffers  []int
	ReadBuffer   int

	destroyed bool
}

// Destroyed reports whether the target's resources have been released.
func (t *Target) Destroyed() bool {
	return t.destroyed
}

// manager is the implementation of the Manager interface.
type manager struct {
	mu *sync.Mutex

	ctx     gpu.Context
	targets []*Target
	prefix  string
}

// Manager creates and owns off-screen targets on a gpu.Context.
type Manager interface {
	// CreateTarget allocates a framebuffer with one texture per color format and, unless depthFormat is
	// FormatNone, one depth texture. Draw buffers are declared as [0..n-1]; with zero color formats both
	// draw and read buffers are NONE. Completeness is checked before returning.
	//
	// Parameters:
	//   - width, height: texture size in pixels
	//   - colorFormats: one entry per color attachment, in attachment order
	//   - depthFormat: depth attachment format, or gpu.FormatNone
	//   - options: label, filtering and addressing overrides
	//
	// Returns:
	//   - *Target: the complete target
	//   - error: ErrInvalidSize, ErrNoAttachments, a wrapped ErrIncompleteFramebuffer or an allocation
	//     error. On any error every resource allocated by the call has been released.
	CreateTarget(width, height int, colorFormats []gpu.TextureFormat, depthFormat gpu.TextureFormat, options ...TargetOption) (*Target, error)

	// CreateShadowTarget allocates a size x size depth-only target whose texture clamps to a white border,
	// so lookups outside the light frustum read as lit.
	CreateShadowTarget(size int, depthFormat gpu.TextureFormat, options ...TargetOption) (*Target, error)

	// CreateGBuffer allocates the deferred geometry target: position RGB32F, normal RGB16F,
	// albedo RGB16F and DEPTH16, with nearest filtering.
	CreateGBuffer(width, height int, options ...TargetOption) (*Target, error)

	// CreateComposite allocates the HDR lighting target: RGBA16 color and DEPTH16, linear filtering.
	CreateComposite(width, height int, options ...TargetOption) (*Target, error)

	// Destroy releases a target's textures and framebuffer in reverse creation order. Destroying a
	// target twice is a no-op.
	Destroy(t *Target)

	// DestroyAll destroys every live target, newest first.
	DestroyAll()

	// Targets returns the live targets in creation order.
	Targets() []*Target
}

var _ Manager = &manager{}

// NewManager creates a target Manager bound to a GPU context.
//
// Parameters:
//   - ctx: the context that allocates textures and framebuffers
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the newly created manager
func NewManager(ctx gpu.Context, options ...ManagerBuilderOption) Manager {
	m := &manager{
		mu:  &sync.Mutex{},
		ctx: ctx,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *manager) CreateTarget(width, height int, colorFormats []gpu.TextureFormat, depthFormat gpu.TextureFormat, options ...TargetOption) (*Target, error) {
	cfg := defaultTargetConfig()
	for _, option := range options {
		option(&cfg)
	}
	label := m.prefix + cfg.label

	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "%s: %dx%d", label, width, height)
	}
	if len(colorFormats) == 0 && depthFormat == gpu.FormatNone {
		return nil, errors.Wrap(ErrNoAttachments, label)
	}
	for i, f := range colorFormats {
		if f == gpu.FormatNone || f.IsDepth() {
			return nil, errors.Errorf("target: %s: color attachment %d has format %s", label, i, f)
		}
	}
	if depthFormat != gpu.FormatNone && !depthFormat.IsDepth() {
		return nil, errors.Errorf("target: %s: depth attachment has format %s", label, depthFormat)
	}

	t := &Target{
		Label:        label,
		ColorFormats: append([]gpu.TextureFormat(nil), colorFormats...),
		DepthFormat:  depthFormat,
		Width:        width,
		Height:       height,
		ReadBuffer:   gpu.NoBuffer,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.build(t, cfg); err != nil {
		m.release(t)
		return nil, err
	}
	m.targets = append(m.targets, t)
	return t, nil
}

// build allocates and attaches t's resources. On error the caller releases whatever build recorded in t.
// Caller must hold the mutex.
func (m *manager) build(t *Target, cfg targetConfig) error {
	fb, err := m.ctx.CreateFramebuffer(t.Label)
	if err != nil {
		return errors.Wrapf(err, "target: %s: create framebuffer", t.Label)
	}
	t.Framebuffer = fb

	for i, format := range t.ColorFormats {
		tex, err := m.ctx.CreateTexture(cfg.texture(fmt.Sprintf("%s.color%d", t.Label, i), t.Width, t.Height, format))
		if err != nil {
			return errors.Wrapf(err, "target: %s: color attachment %d", t.Label, i)
		}
		t.Color = append(t.Color, tex)
		if err := m.ctx.AttachColor(fb, i, tex); err != nil {
			return errors.Wrapf(err, "target: %s: attach color %d", t.Label, i)
		}
	}

	if t.DepthFormat != gpu.FormatNone {
		tex, err := m.ctx.CreateTexture(cfg.texture(t.Label+".depth", t.Width, t.Height, t.DepthFormat))
		if err != nil {
			return errors.Wrapf(err, "target: %s: depth attachment", t.Label)
		}
		t.Depth = tex
		if err := m.ctx.AttachDepth(fb, tex); err != nil {
			return errors.Wrapf(err, "target: %s: attach depth", t.Label)
		}
	}

	t.DrawBuffers = make([]int, len(t.ColorFormats))
	for i := range t.DrawBuffers {
		t.DrawBuffers[i] = i
	}
	if len(t.DrawBuffers) > 0 {
		t.ReadBuffer = 0
	}
	if err := m.ctx.SetDrawBuffers(fb, t.DrawBuffers); err != nil {
		return errors.Wrapf(err, "target: %s: draw buffers", t.Label)
	}
	if err := m.ctx.SetReadBuffer(fb, t.ReadBuffer); err != nil {
		return errors.Wrapf(err, "target: %s: read buffer", t.Label)
	}

	if err := m.ctx.CheckFramebuffer(fb); err != nil {
		log.Printf("[target] %s incomplete: %v", t.Label, err)
		return errors.Wrapf(err, "target: %s", t.Label)
	}
	return nil
}

// release frees t's resources newest first. Caller must hold the mutex.
func (m *manager) release(t *Target) {
	if t.Depth != 0 {
		m.ctx.DeleteTexture(t.Depth)
	}
	for i := len(t.Color) - 1; i >= 0; i-- {
		m.ctx.DeleteTexture(t.Color[i])
	}
	if t.Framebuffer != gpu.DefaultFramebuffer {
		m.ctx.DeleteFramebuffer(t.Framebuffer)
	}
	t.Color = nil
	t.Depth = 0
	t.Framebuffer = gpu.DefaultFramebuffer
	t.destroyed = true
}

func (m *manager) CreateShadowTarget(size int, depthFormat gpu.TextureFormat, options ...TargetOption) (*Target, error) {
	base := []TargetOption{
		WithLabel("shadow"),
		WithFilter(gpu.FilterNearest),
		WithAddressMode(gpu.AddressClampToBorder),
		WithBorderColor([4]float32{1, 1, 1, 1}),
	}
	return m.CreateTarget(size, size, nil, depthFormat, append(base, options...)...)
}

func (m *manager) CreateGBuffer(width, height int, options ...TargetOption) (*Target, error) {
	base := []TargetOption{
		WithLabel("gbuffer"),
		WithFilter(gpu.FilterNearest),
		WithAddressMode(gpu.AddressClampToBorder),
	}
	formats := []gpu.TextureFormat{gpu.FormatRGB32F, gpu.FormatRGB16F, gpu.FormatRGB16F}
	return m.CreateTarget(width, height, formats, gpu.FormatDepth16, append(base, options...)...)
}

func (m *manager) CreateComposite(width, height int, options ...TargetOption) (*Target, error) {
	base := []TargetOption{
		WithLabel("composite"),
		WithFilter(gpu.FilterLinear),
		WithAddressMode(gpu.AddressClampToEdge),
	}
	formats := []gpu.TextureFormat{gpu.FormatRGBA16}
	return m.CreateTarget(width, height, formats, gpu.FormatDepth16, append(base, options...)...)
}

func (m *manager) Destroy(t *Target) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.destroyed {
		return
	}
	m.release(t)
	for i, live := range m.targets {
		if live == t {
			m.targets = append(m.targets[:i], m.targets[i+1:]...)
			break
		}
	}
}

func (m *manager) DestroyAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.targets) - 1; i >= 0; i-- {
		m.release(m.targets[i])
	}
	m.targets = nil
}

func (m *manager) Targets() []*Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Target, len(m.targets))
	copy(out, m.targets)
	return out
}
