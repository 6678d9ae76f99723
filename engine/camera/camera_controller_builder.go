package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*flyController)

// WithMoveSpeed sets the translation speed in units per second.
//
// Parameters:
//   - speed: normal movement speed
//
// Returns:
//   - CameraControllerOption: functional option to set the speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(fc *flyController) {
		fc.moveSpeed = speed
	}
}

// WithSprintSpeed sets the translation speed while shift is held.
//
// Parameters:
//   - speed: sprint movement speed
//
// Returns:
//   - CameraControllerOption: functional option to set the sprint speed
func WithSprintSpeed(speed float32) CameraControllerOption {
	return func(fc *flyController) {
		fc.sprintSpeed = speed
	}
}

// WithMouseSensitivity sets degrees of yaw/pitch per pixel of cursor movement.
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(fc *flyController) {
		fc.mouseSensitivity = sensitivity
	}
}

// WithYawPitch sets the starting heading and elevation in degrees.
func WithYawPitch(yaw, pitch float32) CameraControllerOption {
	return func(fc *flyController) {
		fc.yaw = yaw
		fc.pitch = pitch
	}
}
