package oxy

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/mixer"
	"github.com/Carmen-Shannon/oxy-go/engine/model"
	"github.com/Carmen-Shannon/oxy-go/engine/renderer/animator"
)

// clipProvider is the shape a clip source must have for this backend: it has
// to expose the authored keyframe data so it can be flattened into the
// animator's packed clip format.
type clipProvider interface {
	AnimationClip() *model.AnimationClip
}

// Backend adapts an oxy-go skeletal Animator instance to the mixer's
// animation-graph contract. One Backend drives one animator instance.
//
// The animator evaluates at most two clips at once (the active animation and
// a blend target), so arbitrary slot weights are reduced to their top two
// contributors: the heaviest slot becomes the active animation, and a change
// of heaviest slot while another slot still contributes is expressed as an
// engine-side blend.
type Backend interface {
	mixer.GraphBackend

	// Instance returns the animator instance index this backend drives, for
	// wiring the same instance into rendering.
	//
	// Returns:
	//   - uint32: the animator instance index
	Instance() uint32
}

var _ Backend = &oxyBackend{}

const (
	graphHandle mixer.GraphHandle = 1
	mixerHandle mixer.MixerHandle = 1
)

type oxyClip struct {
	index uint32 // animator clip index
	speed float32
}

type oxyBackend struct {
	mu   *sync.Mutex
	anim animator.Animator

	packedBinding int
	blendDuration float32

	graphCreated bool
	instance     uint32
	mode         mixer.TimeMode
	playing      bool
	rootSpeed    float32

	nextClip int
	clips    map[mixer.ClipHandle]*oxyClip

	slots   []mixer.ClipHandle
	weights []float32
	primary mixer.ClipHandle
}

// NewBackend creates a graph backend driving the given skeletal animator.
// The animator must already carry its model's clip data bindings; clip nodes
// created through this backend are appended with AddClip.
//
// Parameters:
//   - anim: the skeletal animator, must be non-nil.
//   - options: optional configuration, see BackendBuilderOption.
//
// Returns:
//   - Backend: the new backend instance.
func NewBackend(anim animator.Animator, options ...BackendBuilderOption) Backend {
	if anim == nil {
		panic("oxy: animator is required")
	}
	b := &oxyBackend{
		mu:            &sync.Mutex{},
		anim:          anim,
		blendDuration: DefaultBlendDuration,
		rootSpeed:     1,
		clips:         make(map[mixer.ClipHandle]*oxyClip),
		primary:       mixer.NoHandle,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *oxyBackend) Instance() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instance
}

func (b *oxyBackend) CreateGraph(ownerLabel string) mixer.GraphHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.graphCreated {
		log.Printf("[OxyBackend] CreateGraph %s: backend already drives an instance", ownerLabel)
		return mixer.NoHandle
	}
	instance, err := b.anim.AddInstance()
	if err != nil {
		log.Printf("[OxyBackend] CreateGraph %s: %v", ownerLabel, err)
		return mixer.NoHandle
	}
	b.instance = instance
	b.graphCreated = true
	return graphHandle
}

func (b *oxyBackend) DestroyGraph(graph mixer.GraphHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle || !b.graphCreated {
		return
	}
	b.anim.RemoveInstance(b.instance)
	b.graphCreated = false
	b.playing = false
	b.primary = mixer.NoHandle
	b.slots = nil
	b.weights = nil
	for handle := range b.clips {
		delete(b.clips, handle)
	}
}

func (b *oxyBackend) SetGraphTimeMode(graph mixer.GraphHandle, mode mixer.TimeMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle {
		return
	}
	b.mode = mode
	b.pushSpeed()
}

func (b *oxyBackend) GraphPlay(graph mixer.GraphHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle {
		return
	}
	b.playing = true
	b.pushSpeed()
}

func (b *oxyBackend) GraphStop(graph mixer.GraphHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle {
		return
	}
	b.playing = false
	b.anim.SetAnimationSpeed(b.instance, 0)
}

func (b *oxyBackend) CreateMixer(graph mixer.GraphHandle, capacity int) mixer.MixerHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle || !b.graphCreated {
		return mixer.NoHandle
	}
	if capacity < 1 {
		return mixer.NoHandle
	}
	b.slots = make([]mixer.ClipHandle, capacity)
	for i := range b.slots {
		b.slots[i] = mixer.NoHandle
	}
	b.weights = make([]float32, capacity)
	return mixerHandle
}

func (b *oxyBackend) SetInputWeight(mix mixer.MixerHandle, slot int, weight float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mix != mixerHandle || slot < 0 || slot >= len(b.weights) {
		return
	}
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	b.weights[slot] = weight
	b.resolve()
}

func (b *oxyBackend) Connect(clip mixer.ClipHandle, mix mixer.MixerHandle, slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mix != mixerHandle || slot < 0 || slot >= len(b.slots) {
		return
	}
	if _, ok := b.clips[clip]; !ok {
		return
	}
	b.slots[slot] = clip
	b.resolve()
}

func (b *oxyBackend) Disconnect(mix mixer.MixerHandle, slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mix != mixerHandle || slot < 0 || slot >= len(b.slots) {
		return
	}
	b.slots[slot] = mixer.NoHandle
	b.weights[slot] = 0
	b.resolve()
}

func (b *oxyBackend) CreateClipNode(graph mixer.GraphHandle, source mixer.ClipSource) mixer.ClipHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle || !b.graphCreated {
		return mixer.NoHandle
	}
	provider, ok := source.(clipProvider)
	if !ok || provider.AnimationClip() == nil {
		log.Printf("[OxyBackend] CreateClipNode: source carries no animation clip")
		return mixer.NoHandle
	}
	index := b.flattenClip(provider.AnimationClip())
	b.nextClip++
	handle := mixer.ClipHandle(b.nextClip)
	b.clips[handle] = &oxyClip{index: index, speed: 1}
	return handle
}

func (b *oxyBackend) SetClipTime(clip mixer.ClipHandle, seconds float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// Only the active animation's clock lives engine-side.
	if clip == b.primary && clip != mixer.NoHandle {
		b.anim.SetAnimationTime(b.instance, seconds)
	}
}

func (b *oxyBackend) SetClipSpeed(clip mixer.ClipHandle, speed float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.clips[clip]
	if !ok {
		return
	}
	c.speed = speed
	if clip == b.primary {
		b.pushSpeed()
	}
}

func (b *oxyBackend) SetClipDone(clip mixer.ClipHandle, done bool) {
	// The animator tracks completion from its own loop flags; nothing to
	// forward.
}

func (b *oxyBackend) DestroyClipNode(clip mixer.ClipHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clips[clip]; !ok {
		return
	}
	// The animator keeps flattened clip data for its lifetime; only the
	// handle bookkeeping is dropped here.
	for i := range b.slots {
		if b.slots[i] == clip {
			b.slots[i] = mixer.NoHandle
			b.weights[i] = 0
		}
	}
	if b.primary == clip {
		b.primary = mixer.NoHandle
	}
	delete(b.clips, clip)
	b.resolve()
}

func (b *oxyBackend) BindOutput(graph mixer.GraphHandle, mix mixer.MixerHandle, target any) {
	// The blended pose flows through the animator's own GPU bind groups; the
	// instance index from Instance() is the binding callers use.
}

func (b *oxyBackend) RootSpeed(graph mixer.GraphHandle) float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle {
		return 1
	}
	return b.rootSpeed
}

func (b *oxyBackend) SetRootSpeed(graph mixer.GraphHandle, speed float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if graph != graphHandle {
		return
	}
	if speed < 0 {
		speed = 0
	}
	b.rootSpeed = speed
	b.pushSpeed()
}

// resolve maps the current slot weights onto the animator's two-clip
// evaluation: the heaviest contributing slot becomes the active animation,
// and a change of heaviest while another slot still contributes is expressed
// as an engine-side blend toward the new clip.
func (b *oxyBackend) resolve() {
	if !b.graphCreated {
		return
	}
	top := mixer.ClipHandle(mixer.NoHandle)
	var topWeight float32
	contributors := 0
	for i, clip := range b.slots {
		if clip == mixer.NoHandle || b.weights[i] <= 0 {
			continue
		}
		contributors++
		if b.weights[i] > topWeight {
			topWeight = b.weights[i]
			top = clip
		}
	}
	if top == mixer.NoHandle || top == b.primary {
		return
	}
	c := b.clips[top]
	if c == nil {
		return
	}
	if b.primary != mixer.NoHandle && contributors >= 2 {
		b.anim.BlendToAnimation(b.instance, c.index, b.blendDuration)
	} else {
		b.anim.PlayAnimation(b.instance, c.index, true)
	}
	b.primary = top
	b.pushSpeed()
}

// pushSpeed forwards the effective playback speed of the active animation.
// In manual time mode the engine clock is pinned to zero so pushed clip
// times are authoritative.
func (b *oxyBackend) pushSpeed() {
	if !b.graphCreated {
		return
	}
	if !b.playing || b.mode == mixer.TimeModeManual {
		b.anim.SetAnimationSpeed(b.instance, 0)
		return
	}
	speed := b.rootSpeed
	if c, ok := b.clips[b.primary]; ok {
		speed *= c.speed
	}
	b.anim.SetAnimationSpeed(b.instance, speed)
}

// flattenClip packs an authored clip into the animator's flat keyframe
// layout: seven uint32 per channel (bone index plus offset and count for
// each of the position, rotation, and scale tracks) indexing shared arrays.
func (b *oxyBackend) flattenClip(clip *model.AnimationClip) uint32 {
	var channels []uint32
	var times []float32
	var translations [][3]float32
	var rotations [][4]float32
	var scales [][3]float32

	for _, ch := range clip.Channels {
		posOff := uint32(len(times))
		posCnt := uint32(len(ch.PositionKeys))
		for _, k := range ch.PositionKeys {
			times = append(times, k.Time)
			translations = append(translations, k.Value)
			rotations = append(rotations, [4]float32{})
			scales = append(scales, [3]float32{1, 1, 1})
		}

		rotOff := uint32(len(times))
		rotCnt := uint32(len(ch.RotationKeys))
		for _, k := range ch.RotationKeys {
			times = append(times, k.Time)
			translations = append(translations, [3]float32{})
			rotations = append(rotations, k.Value)
			scales = append(scales, [3]float32{1, 1, 1})
		}

		scaleOff := uint32(len(times))
		scaleCnt := uint32(len(ch.ScaleKeys))
		for _, k := range ch.ScaleKeys {
			times = append(times, k.Time)
			translations = append(translations, [3]float32{})
			rotations = append(rotations, [4]float32{})
			scales = append(scales, k.Value)
		}

		channels = append(channels,
			uint32(ch.BoneIndex),
			posOff, posCnt,
			rotOff, rotCnt,
			scaleOff, scaleCnt,
		)
	}

	return b.anim.AddClip(clip.Duration, clip.TicksPerSecond, channels, times, translations, rotations, scales, b.packedBinding)
}
