package common

// Virtual key codes used by the demo controls.
// Values match GLFW key codes so window backends can pass them through unchanged.
const (
	KeyW = 87
	KeyA = 65
	KeyS = 83
	KeyD = 68
	KeyQ = 81
	KeyE = 69
	KeyO = 79
	KeyP = 80
	KeyR = 82
	KeyX = 88

	KeySpace     = 32
	KeyTab       = 258
	KeyBackspace = 259
	KeyEsc       = 256
	KeyRight     = 262
	KeyLeft      = 263
	KeyDown      = 264
	KeyUp        = 265

	Key0 = 48
	Key1 = 49
	Key2 = 50
	Key3 = 51
	Key4 = 52
	Key5 = 53
	Key6 = 54
	Key7 = 55
	Key8 = 56
	Key9 = 57
)

// Modifier keys.
const (
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)

// Mouse buttons, GLFW numbering.
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)
