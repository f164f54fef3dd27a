package oxy

// DefaultBlendDuration is the engine-side blend length used when a new
// heaviest clip takes over while another clip still contributes.
const DefaultBlendDuration float32 = 0.25

// BackendBuilderOption is a function that modifies the backend configuration
// before any graph is created.
type BackendBuilderOption func(*oxyBackend)

// WithPackedBinding sets the bind group index clip keyframe data is staged
// to when clips are flattened into the animator.
//
// Parameters:
//   - binding: the packed keyframe bind group index.
//
// Returns:
//   - BackendBuilderOption: the option function.
func WithPackedBinding(binding int) BackendBuilderOption {
	return func(b *oxyBackend) {
		b.packedBinding = binding
	}
}

// WithBlendDuration sets how long the animator blends when the heaviest
// mixer slot changes while other slots still contribute.
//
// Parameters:
//   - duration: blend length in seconds. Values <= 0 switch instantly.
//
// Returns:
//   - BackendBuilderOption: the option function.
func WithBlendDuration(duration float32) BackendBuilderOption {
	return func(b *oxyBackend) {
		if duration < 0 {
			duration = 0
		}
		b.blendDuration = duration
	}
}
