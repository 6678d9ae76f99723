package rig

// RigBuilderOption is a functional option for configuring a Rig during construction.
type RigBuilderOption func(*rig)

// WithCapacity preallocates arena slots. The rig still grows past it.
//
// Parameters:
//   - n: expected node count
//
// Returns:
//   - RigBuilderOption: a function that reserves the arena
func WithCapacity(n int) RigBuilderOption {
	return func(r *rig) {
		if n > 0 {
			r.nodes = make([]node, 0, n)
		}
	}
}
