package graph

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/mixer"
	"github.com/Carmen-Shannon/oxy-go/engine/model"
)

// Clip wraps an authored animation clip as a mixer clip source. The zero
// value is unusable; Anim must be non-nil.
type Clip struct {
	// Anim is the authored keyframe data.
	Anim *model.AnimationClip

	// Loop is the authored default loop flag.
	Loop bool
}

// NewClip wraps an authored animation clip for registration with a mixer.
//
// Parameters:
//   - anim: the authored keyframe data, must be non-nil.
//   - loop: the authored default loop flag.
//
// Returns:
//   - *Clip: the clip source.
func NewClip(anim *model.AnimationClip, loop bool) *Clip {
	if anim == nil {
		panic("graph: anim is required")
	}
	return &Clip{Anim: anim, Loop: loop}
}

func (c *Clip) Duration() float32 {
	if c.Anim == nil {
		return 0
	}
	return c.Anim.Duration
}

func (c *Clip) Looping() bool {
	return c.Loop
}

// AnimationClip exposes the wrapped authored data so backends can consume it
// without depending on this package's concrete type.
func (c *Clip) AnimationClip() *model.AnimationClip {
	return c.Anim
}

// Target receives the blended output pose of a graph each evaluation.
type Target interface {
	// ApplyPose delivers the blended local-space bone transforms. The slice
	// is reused between evaluations and must be copied if retained.
	//
	// Parameters:
	//   - pose: per-bone local transforms indexed by bone
	ApplyPose(pose []model.Transform)
}

// Backend is a self-contained software animation-graph backend: it evaluates
// clip nodes and weighted mixing on the CPU and delivers blended poses to a
// bound Target. It serves as the reference GraphBackend implementation and
// needs no GPU or host engine.
type Backend interface {
	mixer.GraphBackend

	// Evaluate advances every playing graph and delivers blended poses to
	// bound targets. Graphs in manual time mode only re-blend; their clip
	// clocks move exclusively through SetClipTime.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds since the last evaluation
	Evaluate(deltaTime float32)
}

var _ Backend = &backend{}

type graphState struct {
	label     string
	mode      mixer.TimeMode
	playing   bool
	rootSpeed float32
}

type mixerInput struct {
	clip   mixer.ClipHandle
	weight float32
}

type mixerState struct {
	graph  mixer.GraphHandle
	inputs []mixerInput
	target Target

	// pose and scratch are reused across evaluations.
	pose    []model.Transform
	scratch []model.Transform
}

type clipState struct {
	graph mixer.GraphHandle
	node  *clipNode
}

type backend struct {
	mu         *sync.Mutex
	nextHandle int
	graphs     map[mixer.GraphHandle]*graphState
	mixers     map[mixer.MixerHandle]*mixerState
	clips      map[mixer.ClipHandle]*clipState
}

// NewBackend creates an empty software graph backend.
//
// Returns:
//   - Backend: the new backend instance.
func NewBackend() Backend {
	return &backend{
		mu:     &sync.Mutex{},
		graphs: make(map[mixer.GraphHandle]*graphState),
		mixers: make(map[mixer.MixerHandle]*mixerState),
		clips:  make(map[mixer.ClipHandle]*clipState),
	}
}

func (b *backend) CreateGraph(ownerLabel string) mixer.GraphHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextHandle++
	handle := mixer.GraphHandle(b.nextHandle)
	b.graphs[handle] = &graphState{label: ownerLabel, rootSpeed: 1}
	return handle
}

func (b *backend) DestroyGraph(graph mixer.GraphHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.graphs[graph]; !ok {
		return
	}
	for handle, mix := range b.mixers {
		if mix.graph == graph {
			delete(b.mixers, handle)
		}
	}
	for handle, clip := range b.clips {
		if clip.graph == graph {
			delete(b.clips, handle)
		}
	}
	delete(b.graphs, graph)
}

func (b *backend) SetGraphTimeMode(graph mixer.GraphHandle, mode mixer.TimeMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.graphs[graph]; ok {
		g.mode = mode
	}
}

func (b *backend) GraphPlay(graph mixer.GraphHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.graphs[graph]; ok {
		g.playing = true
	}
}

func (b *backend) GraphStop(graph mixer.GraphHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.graphs[graph]; ok {
		g.playing = false
	}
}

func (b *backend) CreateMixer(graph mixer.GraphHandle, capacity int) mixer.MixerHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.graphs[graph]; !ok {
		log.Printf("[Graph] CreateMixer: unknown graph %d", graph)
		return mixer.NoHandle
	}
	if capacity < 1 {
		log.Printf("[Graph] CreateMixer: invalid capacity %d", capacity)
		return mixer.NoHandle
	}
	inputs := make([]mixerInput, capacity)
	for i := range inputs {
		inputs[i].clip = mixer.NoHandle
	}
	b.nextHandle++
	handle := mixer.MixerHandle(b.nextHandle)
	b.mixers[handle] = &mixerState{graph: graph, inputs: inputs}
	return handle
}

func (b *backend) SetInputWeight(mix mixer.MixerHandle, slot int, weight float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.mixers[mix]
	if !ok || slot < 0 || slot >= len(m.inputs) {
		return
	}
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	m.inputs[slot].weight = weight
}

func (b *backend) Connect(clip mixer.ClipHandle, mix mixer.MixerHandle, slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.mixers[mix]
	if !ok || slot < 0 || slot >= len(m.inputs) {
		return
	}
	if _, ok := b.clips[clip]; !ok {
		return
	}
	m.inputs[slot].clip = clip
}

func (b *backend) Disconnect(mix mixer.MixerHandle, slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.mixers[mix]
	if !ok || slot < 0 || slot >= len(m.inputs) {
		return
	}
	m.inputs[slot].clip = mixer.NoHandle
	m.inputs[slot].weight = 0
}

func (b *backend) CreateClipNode(graph mixer.GraphHandle, source mixer.ClipSource) mixer.ClipHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.graphs[graph]; !ok {
		log.Printf("[Graph] CreateClipNode: unknown graph %d", graph)
		return mixer.NoHandle
	}
	provider, ok := source.(interface{ AnimationClip() *model.AnimationClip })
	if !ok || provider.AnimationClip() == nil {
		log.Printf("[Graph] CreateClipNode: source carries no animation clip")
		return mixer.NoHandle
	}
	b.nextHandle++
	handle := mixer.ClipHandle(b.nextHandle)
	b.clips[handle] = &clipState{graph: graph, node: newClipNode(provider.AnimationClip())}
	return handle
}

func (b *backend) SetClipTime(clip mixer.ClipHandle, seconds float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.clips[clip]; ok {
		c.node.time = seconds
	}
}

func (b *backend) SetClipSpeed(clip mixer.ClipHandle, speed float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.clips[clip]; ok {
		c.node.speed = speed
	}
}

func (b *backend) SetClipDone(clip mixer.ClipHandle, done bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.clips[clip]; ok {
		c.node.done = done
	}
}

func (b *backend) DestroyClipNode(clip mixer.ClipHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clips[clip]; !ok {
		return
	}
	for _, m := range b.mixers {
		for i := range m.inputs {
			if m.inputs[i].clip == clip {
				m.inputs[i].clip = mixer.NoHandle
				m.inputs[i].weight = 0
			}
		}
	}
	delete(b.clips, clip)
}

func (b *backend) BindOutput(graph mixer.GraphHandle, mix mixer.MixerHandle, target any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.mixers[mix]
	if !ok || m.graph != graph {
		log.Printf("[Graph] BindOutput: mixer %d does not belong to graph %d", mix, graph)
		return
	}
	if target == nil {
		m.target = nil
		return
	}
	receiver, ok := target.(Target)
	if !ok {
		log.Printf("[Graph] BindOutput: target does not implement graph.Target")
		return
	}
	m.target = receiver
}

func (b *backend) RootSpeed(graph mixer.GraphHandle) float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.graphs[graph]; ok {
		return g.rootSpeed
	}
	return 1
}

func (b *backend) SetRootSpeed(graph mixer.GraphHandle, speed float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.graphs[graph]
	if !ok {
		return
	}
	if speed < 0 {
		speed = 0
	}
	g.rootSpeed = speed
}

func (b *backend) Evaluate(deltaTime float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.clips {
		g, ok := b.graphs[c.graph]
		if !ok || !g.playing || g.mode != mixer.TimeModeGameTime || c.node.done {
			continue
		}
		c.node.time += deltaTime * g.rootSpeed * c.node.speed
	}

	for _, m := range b.mixers {
		g, ok := b.graphs[m.graph]
		if !ok || !g.playing || m.target == nil {
			continue
		}
		b.blend(m)
	}
}

// blend accumulates every contributing input into the mixer's pose buffer as
// a progressive weighted average and delivers it to the bound target.
func (b *backend) blend(m *mixerState) {
	boneCount := 0
	for _, input := range m.inputs {
		if input.clip == mixer.NoHandle || input.weight <= 0 {
			continue
		}
		if c, ok := b.clips[input.clip]; ok && c.node.boneCount > boneCount {
			boneCount = c.node.boneCount
		}
	}
	if boneCount == 0 {
		return
	}

	if len(m.pose) < boneCount {
		m.pose = newPose(boneCount)
		m.scratch = newPose(boneCount)
	}
	pose := m.pose[:boneCount]
	scratch := m.scratch[:boneCount]

	var accWeight float32
	for _, input := range m.inputs {
		if input.clip == mixer.NoHandle || input.weight <= 0 {
			continue
		}
		c, ok := b.clips[input.clip]
		if !ok {
			continue
		}
		if accWeight == 0 {
			resetPose(pose)
			c.node.sample(pose)
			accWeight = input.weight
			continue
		}
		resetPose(scratch)
		c.node.sample(scratch)
		blendInto(pose, scratch, input.weight/(accWeight+input.weight))
		accWeight += input.weight
	}
	if accWeight == 0 {
		return
	}
	m.target.ApplyPose(pose)
}
