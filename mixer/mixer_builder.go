package mixer

const (
	// MinCapacity is the smallest allowed number of mixer input slots.
	MinCapacity = 1
	// MaxCapacity is the largest allowed number of mixer input slots.
	MaxCapacity = 8
	// DefaultCapacity is the slot count used when WithCapacity is not given.
	DefaultCapacity = 4
)

// MixerBuilderOption is a function that modifies the mixer configuration
// before the backend graph is created.
type MixerBuilderOption func(*mixer)

// WithCapacity sets the number of mixer input slots, bounding how many clips
// can play concurrently. Values outside [MinCapacity, MaxCapacity] are
// clamped.
//
// Parameters:
//   - capacity: the desired slot count.
//
// Returns:
//   - MixerBuilderOption: the option function.
func WithCapacity(capacity int) MixerBuilderOption {
	return func(m *mixer) {
		if capacity < MinCapacity {
			capacity = MinCapacity
		}
		if capacity > MaxCapacity {
			capacity = MaxCapacity
		}
		m.capacity = capacity
	}
}

// WithAutoStop controls whether a clip that completes naturally is stopped
// and its slot released, or stays connected holding its final pose. Enabled
// by default.
//
// Parameters:
//   - enabled: true to stop completed clips automatically.
//
// Returns:
//   - MixerBuilderOption: the option function.
func WithAutoStop(enabled bool) MixerBuilderOption {
	return func(m *mixer) {
		m.autoStop = enabled
	}
}

// WithIdlePause controls whether backend graph evaluation is suspended after
// the mixer has been idle for half a second. Enabled by default.
//
// Parameters:
//   - enabled: true to pause the graph while idle.
//
// Returns:
//   - MixerBuilderOption: the option function.
func WithIdlePause(enabled bool) MixerBuilderOption {
	return func(m *mixer) {
		m.idlePause = enabled
	}
}

// WithOwnerLabel sets the label passed to the backend when creating the
// graph, used for backend-side logging and debugging.
//
// Parameters:
//   - label: the owner label.
//
// Returns:
//   - MixerBuilderOption: the option function.
func WithOwnerLabel(label string) MixerBuilderOption {
	return func(m *mixer) {
		if label != "" {
			m.ownerLabel = label
		}
	}
}

// WithTarget sets the output target the blended pose is delivered to. The
// accepted target type is backend-specific.
//
// Parameters:
//   - target: the pose receiver, passed to the backend's BindOutput.
//
// Returns:
//   - MixerBuilderOption: the option function.
func WithTarget(target any) MixerBuilderOption {
	return func(m *mixer) {
		m.target = target
	}
}
