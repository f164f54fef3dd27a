package mixer

// NoHandle is the invalid value for every backend handle type. Backends
// return it when a create call fails, and the mixer stores it for released
// resources.
const NoHandle = -1

// GraphHandle identifies one animation graph inside a GraphBackend.
type GraphHandle int

// MixerHandle identifies one weighted blending node inside a graph.
type MixerHandle int

// ClipHandle identifies one clip playback node inside a graph.
type ClipHandle int

// TimeMode controls how clip-node clocks advance inside a backend graph.
type TimeMode int

const (
	// TimeModeGameTime lets the backend advance clip clocks itself using the
	// host's frame delta and the graph's root speed.
	TimeModeGameTime TimeMode = iota

	// TimeModeManual leaves clip clocks untouched until SetClipTime is
	// called. The Mixer runs its graph in this mode: its own per-clip clock
	// is authoritative and pushed down every advancing tick.
	TimeModeManual
)

// ClipSource describes one named animation data source as authored. The mixer
// treats the value as opaque beyond these two queries; the concrete type is
// whatever the active GraphBackend accepts in CreateClipNode.
type ClipSource interface {
	// Duration returns the authored clip length in seconds.
	//
	// Returns:
	//   - float32: the clip length in seconds (must be > 0 for playable clips)
	Duration() float32

	// Looping returns the authored default loop flag. Play calls may
	// override it per play.
	//
	// Returns:
	//   - bool: true if the clip is authored to loop
	Looping() bool
}

// GraphBackend is the capability set the mixer consumes from a host engine's
// low-level animation-graph primitives: clip nodes, a weighted mixer node,
// and a graph output bound to an animated target. The mixer never evaluates
// poses itself; it only orchestrates when and how much each clip contributes.
//
// Implementations must treat Disconnect on an already-disconnected slot as a
// benign no-op (the mixer disconnects defensively on every stop). Create
// calls report failure by returning NoHandle; no method returns an error.
type GraphBackend interface {
	// CreateGraph creates a new animation graph.
	//
	// Parameters:
	//   - ownerLabel: a diagnostic label identifying the owning animated target
	//
	// Returns:
	//   - GraphHandle: the new graph, or NoHandle on failure
	CreateGraph(ownerLabel string) GraphHandle

	// DestroyGraph destroys a graph and every node still inside it.
	//
	// Parameters:
	//   - graph: the graph to destroy
	DestroyGraph(graph GraphHandle)

	// SetGraphTimeMode selects how clip clocks advance inside the graph.
	//
	// Parameters:
	//   - graph: the graph to configure
	//   - mode: TimeModeGameTime or TimeModeManual
	SetGraphTimeMode(graph GraphHandle, mode TimeMode)

	// GraphPlay starts (or resumes) evaluation of the graph.
	//
	// Parameters:
	//   - graph: the graph to start
	GraphPlay(graph GraphHandle)

	// GraphStop halts evaluation of the graph. Node state is retained so a
	// later GraphPlay resumes transparently.
	//
	// Parameters:
	//   - graph: the graph to halt
	GraphStop(graph GraphHandle)

	// CreateMixer creates the weighted blending node for a graph.
	//
	// Parameters:
	//   - graph: the owning graph
	//   - capacity: the fixed number of weighted input slots
	//
	// Returns:
	//   - MixerHandle: the new mixer node, or NoHandle on failure
	CreateMixer(graph GraphHandle, capacity int) MixerHandle

	// SetInputWeight sets the blend contribution of one mixer slot.
	//
	// Parameters:
	//   - mix: the mixer node
	//   - slot: the input slot index in [0, capacity)
	//   - weight: the contribution factor, clamped by the backend to [0, 1]
	SetInputWeight(mix MixerHandle, slot int, weight float32)

	// Connect wires a clip node into a mixer input slot, replacing whatever
	// occupied the slot before.
	//
	// Parameters:
	//   - clip: the clip node to connect
	//   - mix: the mixer node
	//   - slot: the input slot index in [0, capacity)
	Connect(clip ClipHandle, mix MixerHandle, slot int)

	// Disconnect clears a mixer input slot. Disconnecting an empty slot is
	// not an error and must not be logged.
	//
	// Parameters:
	//   - mix: the mixer node
	//   - slot: the input slot index in [0, capacity)
	Disconnect(mix MixerHandle, slot int)

	// CreateClipNode creates a playback node for a clip source.
	//
	// Parameters:
	//   - graph: the owning graph
	//   - source: the authored clip data; the accepted concrete type is
	//     backend-specific
	//
	// Returns:
	//   - ClipHandle: the new clip node, or NoHandle when the source is
	//     unusable
	CreateClipNode(graph GraphHandle, source ClipSource) ClipHandle

	// SetClipTime sets a clip node's local clock in seconds.
	//
	// Parameters:
	//   - clip: the clip node
	//   - seconds: the new local time
	SetClipTime(clip ClipHandle, seconds float32)

	// SetClipSpeed sets a clip node's playback speed multiplier.
	//
	// Parameters:
	//   - clip: the clip node
	//   - speed: the speed multiplier (0 freezes the clip)
	SetClipSpeed(clip ClipHandle, speed float32)

	// SetClipDone marks a clip node as finished so self-advancing backends
	// stop moving its clock.
	//
	// Parameters:
	//   - clip: the clip node
	//   - done: the finished flag
	SetClipDone(clip ClipHandle, done bool)

	// DestroyClipNode destroys a clip node and detaches it from any mixer
	// slot it is still connected to.
	//
	// Parameters:
	//   - clip: the clip node to destroy
	DestroyClipNode(clip ClipHandle)

	// BindOutput routes a mixer node's blended result to an animated target.
	// The accepted target type is backend-specific; a nil target leaves the
	// graph unbound.
	//
	// Parameters:
	//   - graph: the owning graph
	//   - mix: the mixer node producing the output pose
	//   - target: the animated target receiving the pose
	BindOutput(graph GraphHandle, mix MixerHandle, target any)

	// RootSpeed returns the graph's root playback rate.
	//
	// Parameters:
	//   - graph: the graph to query
	//
	// Returns:
	//   - float32: the root playback rate (1 = realtime)
	RootSpeed(graph GraphHandle) float32

	// SetRootSpeed scales the entire graph's playback rate.
	//
	// Parameters:
	//   - graph: the graph to configure
	//   - speed: the root playback rate, clamped by the backend to >= 0
	SetRootSpeed(graph GraphHandle, speed float32)
}
