package target

import "github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"

// targetConfig holds the per-call texture settings applied to every attachment of a target.
type targetConfig struct {
	label       string
	minFilter   gpu.FilterMode
	magFilter   gpu.FilterMode
	addressMode gpu.AddressMode
	borderColor [4]float32
}

func defaultTargetConfig() targetConfig {
	return targetConfig{
		label:       "target",
		minFilter:   gpu.FilterLinear,
		magFilter:   gpu.FilterLinear,
		addressMode: gpu.AddressClampToEdge,
	}
}

func (c targetConfig) texture(label string, width, height int, format gpu.TextureFormat) gpu.TextureDescriptor {
	return gpu.TextureDescriptor{
		Label:       label,
		Width:       width,
		Height:      height,
		Format:      format,
		MinFilter:   c.minFilter,
		MagFilter:   c.magFilter,
		AddressMode: c.addressMode,
		BorderColor: c.borderColor,
	}
}

// TargetOption is a functional option for a single CreateTarget call.
type TargetOption func(*targetConfig)

// WithLabel names the target and its textures for debugging.
//
// Parameters:
//   - label: the target label
//
// Returns:
//   - TargetOption: a function that sets the label
func WithLabel(label string) TargetOption {
	return func(c *targetConfig) {
		c.label = label
	}
}

// WithFilter sets both min and mag filtering for every attachment.
//
// Parameters:
//   - filter: nearest or linear
//
// Returns:
//   - TargetOption: a function that sets the filter
func WithFilter(filter gpu.FilterMode) TargetOption {
	return func(c *targetConfig) {
		c.minFilter = filter
		c.magFilter = filter
	}
}

// WithAddressMode sets the wrap mode for every attachment.
//
// Parameters:
//   - mode: repeat, clamp to edge or clamp to border
//
// Returns:
//   - TargetOption: a function that sets the address mode
func WithAddressMode(mode gpu.AddressMode) TargetOption {
	return func(c *targetConfig) {
		c.addressMode = mode
	}
}

// WithBorderColor sets the color sampled outside [0, 1] under clamp-to-border.
//
// Parameters:
//   - color: RGBA border color
//
// Returns:
//   - TargetOption: a function that sets the border color
func WithBorderColor(color [4]float32) TargetOption {
	return func(c *targetConfig) {
		c.borderColor = color
	}
}

// ManagerBuilderOption is a functional option for configuring a Manager during construction.
type ManagerBuilderOption func(*manager)

// WithLabelPrefix prepends prefix to every target label, e.g. "deferred.".
func WithLabelPrefix(prefix string) ManagerBuilderOption {
	return func(m *manager) {
		m.prefix = prefix
	}
}
