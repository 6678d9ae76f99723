package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// ClientAPI selects the graphics API the window's surface is created for.
type ClientAPI int

const (
	// APIOpenGL creates an OpenGL 4.3 core context and makes it current on the calling thread.
	APIOpenGL ClientAPI = iota
	// APINone creates no context; the WebGPU backend builds its surface from SurfaceDescriptor.
	APINone
)

// Window defines the interface for a platform window the engine renders into.
type Window interface {
	// SetUpdateCallback sets the function ProcessMessages calls once per iteration.
	//
	// Parameters:
	//   - callback: the per-frame function
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called with the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the function called once per key press. Repeats are not reported.
	SetKeyDownCallback(callback func(keyCode int))

	// SurfaceDescriptor returns the platform surface for WebGPU. It is nil for an OpenGL window.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// ClientAPI returns the API the window was created for.
	ClientAPI() ClientAPI

	// SwapBuffers presents the OpenGL default framebuffer.
	SwapBuffers()

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// RequestClose asks the event loop to stop after the current iteration without destroying the
	// window, so graphics resources can still be released on its context.
	RequestClose()

	// Close destroys the window.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages runs the event loop until the window closes, calling the update callback after
	// each poll.
	ProcessMessages()

	// Time returns seconds since the window was created.
	Time() float64

	// KeyDown reports whether a key is held.
	KeyDown(key int) bool

	// MouseDown reports whether a mouse button is held.
	MouseDown(button int) bool

	// CursorPosition returns the cursor position in screen coordinates.
	CursorPosition() (x, y float64)

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow holds the platform-independent window state.
type engineWindow struct {
	title  string
	width  int
	height int
	api    ClientAPI
	vsync  bool

	internalWindow any

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode int)
}

var _ Window = &engineWindow{}

// NewWindow creates the platform window. Failure to create a window is fatal.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "oxy-passes",
		width:  1080,
		height: 720,
		api:    APIOpenGL,
		vsync:  true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode int)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.api != APINone {
		return nil
	}
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) ClientAPI() ClientAPI {
	return w.api
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Time() float64 {
	return platformTime()
}

func (w *engineWindow) KeyDown(key int) bool {
	return platformKeyDown(w, key)
}

func (w *engineWindow) MouseDown(button int) bool {
	return platformMouseDown(w, button)
}

func (w *engineWindow) CursorPosition() (float64, float64) {
	return platformCursorPosition(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
