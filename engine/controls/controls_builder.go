package controls

// ControlsBuilderOption is a functional option for configuring Controls.
type ControlsBuilderOption func(*controls)

// WithStepFraction sets how far one Up or Down press moves a parameter, as a fraction of its range.
//
// Parameters:
//   - fraction: the step size, default 0.02; non-positive values are ignored
//
// Returns:
//   - ControlsBuilderOption: option function to apply
func WithStepFraction(fraction float32) ControlsBuilderOption {
	return func(c *controls) {
		if fraction > 0 {
			c.stepFraction = fraction
		}
	}
}

// WithVerbose logs every change.
func WithVerbose(verbose bool) ControlsBuilderOption {
	return func(c *controls) {
		c.verbose = verbose
	}
}
