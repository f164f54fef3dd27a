package mixer

import "log"

// PlayMode selects how a playback request interacts with clips that are
// already active on the mixer.
type PlayMode int

const (
	// PlayModeSingle interrupts the current animation before starting the new
	// one. This is the default behavior of Play.
	PlayModeSingle PlayMode = iota
	// PlayModeAdditive starts the new animation alongside whatever is already
	// playing, blending by slot weight.
	PlayModeAdditive
	// PlayModeQueue defers the request until the current animation finishes.
	PlayModeQueue
)

// idlePauseThreshold is how long the mixer tolerates an empty active set
// before halting backend graph evaluation.
const idlePauseThreshold float32 = 0.5

// Mixer is the playback orchestrator for a single animated target. It maps
// named animation clips onto a fixed-capacity backend mixer node, blending
// every active clip into one output pose, and drives per-clip time, fades,
// looping, queuing, and lifecycle events from the host update loop.
//
// A Mixer is single-threaded: all methods, including Update, must be called
// from the same goroutine that drives the host's frame loop. Callbacks and
// events fire synchronously inline during the call that triggers them.
type Mixer interface {
	// AddAnimation registers a named clip with the mixer, creating a backend
	// clip node for it. Re-adding an existing name replaces the old entry,
	// stopping it first if it is playing.
	//
	// Parameters:
	//   - name: unique identifier for the clip, must be non-empty.
	//   - source: the clip data provider, must be non-nil.
	AddAnimation(name string, source ClipSource)

	// RemoveAnimation unregisters a named clip and destroys its backend clip
	// node, stopping it first if it is playing. No-op for unknown names.
	//
	// Parameters:
	//   - name: the identifier the clip was registered under.
	RemoveAnimation(name string)

	// HasAnimation reports whether a clip is registered under the given name.
	//
	// Parameters:
	//   - name: the identifier to check.
	//
	// Returns:
	//   - bool: true if the clip is registered.
	HasAnimation(name string) bool

	// AnimationNames returns the names of every registered clip, in no
	// particular order.
	//
	// Returns:
	//   - []string: the registered clip names.
	AnimationNames() []string

	// AnimationLength returns the authored duration of a registered clip.
	//
	// Parameters:
	//   - name: the identifier the clip was registered under.
	//
	// Returns:
	//   - float32: the clip duration in seconds, or 0 for unknown names.
	AnimationLength(name string) float32

	// Play starts the named clip in single mode, interrupting the current
	// animation if one is playing. Unknown names are logged and ignored.
	//
	// Parameters:
	//   - name: the clip to play.
	//   - onComplete: optional callback fired once when the clip finishes
	//     naturally. Not fired if the clip is interrupted.
	Play(name string, onComplete func())

	// PlayWithMode starts the named clip using an explicit play mode.
	//
	// Parameters:
	//   - name: the clip to play.
	//   - mode: PlayModeSingle, PlayModeAdditive, or PlayModeQueue.
	//   - onComplete: optional completion callback, see Play.
	PlayWithMode(name string, mode PlayMode, onComplete func())

	// PlayWithCrossfade starts the named clip fading in from zero weight while
	// the current animation, if different and playing, fades out over the same
	// duration and is then stopped.
	//
	// Parameters:
	//   - name: the clip to fade in.
	//   - fadeTime: crossfade duration in seconds. Values <= 0 switch
	//     instantly.
	//   - onComplete: optional completion callback, see Play.
	PlayWithCrossfade(name string, fadeTime float32, onComplete func())

	// QueueWithCrossfade defers the named clip until the current animation
	// finishes, then starts it fading in over the given duration. If nothing
	// is playing the clip starts immediately, like PlayWithCrossfade.
	//
	// Parameters:
	//   - name: the clip to queue.
	//   - fadeTime: crossfade duration in seconds once dequeued. Values <= 0
	//     switch instantly.
	//   - onComplete: optional completion callback, see Play.
	QueueWithCrossfade(name string, fadeTime float32, onComplete func())

	// PlayLooped starts the named clip looping for a bounded or unbounded
	// number of iterations, interrupting the current animation like Play.
	//
	// Parameters:
	//   - name: the clip to play.
	//   - loopCount: number of loops before the clip completes, or -1 to loop
	//     until stopped.
	//   - onComplete: optional completion callback, fired after the final
	//     loop. Never fired for unbounded loops.
	PlayLooped(name string, loopCount int, onComplete func())

	// Stop halts the named clip as an interruption, releasing its mixer slot.
	// No-op if the clip is not playing.
	//
	// Parameters:
	//   - name: the clip to stop.
	Stop(name string)

	// StopAll halts every active clip without firing interruption callbacks or
	// events, and clears the pending queue.
	StopAll()

	// Pause freezes the named clip's playback clock, keeping it connected at
	// its current weight. No-op unless the clip is playing and not paused.
	//
	// Parameters:
	//   - name: the clip to pause.
	Pause(name string)

	// Resume restores a paused clip to its stored playback speed.
	//
	// Parameters:
	//   - name: the clip to resume.
	Resume(name string)

	// PauseAll pauses every active clip.
	PauseAll()

	// ResumeAll resumes every paused active clip.
	ResumeAll()

	// SetSpeed sets the per-clip playback speed multiplier. The value applies
	// immediately unless the clip is paused, in which case it takes effect on
	// resume.
	//
	// Parameters:
	//   - name: the clip to adjust.
	//   - speed: speed multiplier, clamped to >= 0.
	SetSpeed(name string, speed float32)

	// Speed returns the named clip's speed multiplier.
	//
	// Parameters:
	//   - name: the clip to query.
	//
	// Returns:
	//   - float32: the stored speed, or 1 if the clip has never played.
	Speed(name string) float32

	// SetGlobalSpeed scales the playback rate of the entire graph, affecting
	// every clip's time advancement. Fades are unaffected.
	//
	// Parameters:
	//   - speed: root speed multiplier, clamped to >= 0.
	SetGlobalSpeed(speed float32)

	// GlobalSpeed returns the graph's root playback rate.
	//
	// Returns:
	//   - float32: the root speed, or 1 if the backend is uninitialized.
	GlobalSpeed() float32

	// IsPlaying reports whether the named clip is currently playing. Paused
	// clips still count as playing.
	//
	// Parameters:
	//   - name: the clip to query.
	//
	// Returns:
	//   - bool: true if the clip is in the active set.
	IsPlaying(name string) bool

	// IsPaused reports whether the named clip is playing and paused.
	//
	// Parameters:
	//   - name: the clip to query.
	//
	// Returns:
	//   - bool: true if the clip is paused.
	IsPaused(name string) bool

	// CurrentAnimation returns the name of the primary animation, the most
	// recently started clip or the first remaining active clip after a stop.
	//
	// Returns:
	//   - string: the primary clip name, or "" when nothing is active.
	CurrentAnimation() string

	// CurrentTime returns the named clip's playback clock.
	//
	// Parameters:
	//   - name: the clip to query.
	//
	// Returns:
	//   - float32: seconds into the clip, or 0 if it is not active.
	CurrentTime(name string) float32

	// NormalizedTime returns the named clip's playback progress in [0, 1].
	//
	// Parameters:
	//   - name: the clip to query.
	//
	// Returns:
	//   - float32: currentTime / duration, or 0 if not active or the clip has
	//     zero duration.
	NormalizedTime(name string) float32

	// LoopCount returns how many times the named clip has wrapped since it
	// started playing.
	//
	// Parameters:
	//   - name: the clip to query.
	//
	// Returns:
	//   - int: completed loop iterations, or 0 if not active.
	LoopCount(name string) int

	// ActiveCount returns the number of clips currently occupying mixer slots.
	//
	// Returns:
	//   - int: the active clip count.
	ActiveCount() int

	// QueuedCount returns the number of pending queued playback requests.
	//
	// Returns:
	//   - int: the queue length.
	QueuedCount() int

	// Subscribe registers a handler for lifecycle events. Handlers fire
	// synchronously during the operation that produces the event and may
	// safely unsubscribe themselves or start playback from inside the
	// handler.
	//
	// Parameters:
	//   - fn: the event handler, must be non-nil.
	//
	// Returns:
	//   - int: subscription id for Unsubscribe, or 0 if fn is nil.
	Subscribe(fn func(Event)) int

	// Unsubscribe removes a previously registered event handler. Safe to call
	// during event dispatch.
	//
	// Parameters:
	//   - id: the subscription id returned by Subscribe.
	Unsubscribe(id int)

	// Update advances every active clip by the frame delta, driving fades,
	// loop wrap, completion detection, and queue draining. Must be called once
	// per frame from the host update loop.
	//
	// Parameters:
	//   - deltaTime: elapsed wall-clock time in seconds since the last call.
	Update(deltaTime float32)

	// Release tears the mixer down: stops all clips, destroys every backend
	// clip node and the graph itself, and clears all event subscribers. The
	// mixer must not be used afterwards.
	Release()
}

var _ Mixer = &mixer{}

type mixer struct {
	backend GraphBackend
	graph   GraphHandle
	mix     MixerHandle
	target  any

	ownerLabel  string
	capacity    int
	autoStop    bool
	idlePause   bool
	initialized bool

	entries map[string]*clipEntry
	states  map[string]*playbackState
	active  []*playbackState
	current *playbackState
	slots   *slotTable
	queue   []queuedPlay
	events  dispatcher

	idleTime   float32
	idlePaused bool
	evicting   bool

	// scratch is the reusable active-set snapshot iterated by Update, so
	// callbacks that mutate m.active mid-tick cannot corrupt the iteration.
	scratch []*playbackState
}

// NewMixer creates a playback mixer bound to the given graph backend. The
// backend graph, mixer node, and output binding are created immediately; a
// backend that rejects graph creation leaves the mixer in a disabled state
// where every operation is a logged no-op.
//
// Parameters:
//   - backend: the animation-graph backend, must be non-nil.
//   - options: optional configuration, see MixerBuilderOption.
//
// Returns:
//   - Mixer: the new mixer instance.
func NewMixer(backend GraphBackend, options ...MixerBuilderOption) Mixer {
	if backend == nil {
		panic("mixer: backend is required")
	}

	m := &mixer{
		backend:    backend,
		ownerLabel: "oxy-anim",
		capacity:   DefaultCapacity,
		autoStop:   true,
		idlePause:  true,
		entries:    make(map[string]*clipEntry),
		states:     make(map[string]*playbackState),
	}
	for _, opt := range options {
		opt(m)
	}

	m.graph = backend.CreateGraph(m.ownerLabel)
	if m.graph == NoHandle {
		log.Printf("[Mixer] %s: backend failed to create animation graph", m.ownerLabel)
		return m
	}
	m.mix = backend.CreateMixer(m.graph, m.capacity)
	if m.mix == NoHandle {
		log.Printf("[Mixer] %s: backend failed to create mixer node", m.ownerLabel)
		backend.DestroyGraph(m.graph)
		m.graph = NoHandle
		return m
	}

	m.slots = newSlotTable(m.capacity)
	backend.SetGraphTimeMode(m.graph, TimeModeManual)
	if m.target != nil {
		backend.BindOutput(m.graph, m.mix, m.target)
	}
	backend.GraphPlay(m.graph)
	m.initialized = true
	return m
}

func (m *mixer) Play(name string, onComplete func()) {
	m.PlayWithMode(name, PlayModeSingle, onComplete)
}

func (m *mixer) PlayWithMode(name string, mode PlayMode, onComplete func()) {
	entry := m.lookup(name, "Play")
	if entry == nil {
		return
	}
	switch mode {
	case PlayModeAdditive:
		m.playState(entry, onComplete, 1, 0, -1, false)
	case PlayModeQueue:
		if m.current != nil && m.current.playing {
			m.queue = append(m.queue, queuedPlay{name: name, onComplete: onComplete})
			return
		}
		m.playState(entry, onComplete, 1, 0, -1, false)
	default:
		if m.current != nil && m.current.playing && m.current.entry != entry {
			m.stopState(m.current, true)
		}
		m.playState(entry, onComplete, 1, 0, -1, false)
	}
}

func (m *mixer) PlayWithCrossfade(name string, fadeTime float32, onComplete func()) {
	entry := m.lookup(name, "PlayWithCrossfade")
	if entry == nil {
		return
	}
	if m.current != nil && m.current.playing && m.current.entry != entry {
		m.fadeOut(m.current, fadeTime)
	}
	m.playState(entry, onComplete, 0, fadeTime, -1, false)
}

func (m *mixer) QueueWithCrossfade(name string, fadeTime float32, onComplete func()) {
	if m.lookup(name, "QueueWithCrossfade") == nil {
		return
	}
	if m.current != nil && m.current.playing {
		m.queue = append(m.queue, queuedPlay{name: name, onComplete: onComplete, fadeTime: fadeTime})
		return
	}
	m.PlayWithCrossfade(name, fadeTime, onComplete)
}

func (m *mixer) PlayLooped(name string, loopCount int, onComplete func()) {
	entry := m.lookup(name, "PlayLooped")
	if entry == nil {
		return
	}
	if m.current != nil && m.current.playing && m.current.entry != entry {
		m.stopState(m.current, true)
	}
	m.playState(entry, onComplete, 1, 0, loopCount, true)
}

func (m *mixer) Stop(name string) {
	if st, ok := m.states[name]; ok {
		m.stopState(st, true)
	}
}

func (m *mixer) StopAll() {
	m.queue = m.queue[:0]
	for i := len(m.active) - 1; i >= 0; i-- {
		m.stopState(m.active[i], false)
	}
}

func (m *mixer) Pause(name string) {
	st, ok := m.states[name]
	if !ok || !st.playing || st.paused {
		return
	}
	st.paused = true
	m.backend.SetClipSpeed(st.entry.clip, 0)
}

func (m *mixer) Resume(name string) {
	st, ok := m.states[name]
	if !ok || !st.playing || !st.paused {
		return
	}
	st.paused = false
	m.backend.SetClipSpeed(st.entry.clip, st.speed)
}

func (m *mixer) PauseAll() {
	for _, st := range m.active {
		m.Pause(st.entry.name)
	}
}

func (m *mixer) ResumeAll() {
	for _, st := range m.active {
		m.Resume(st.entry.name)
	}
}

func (m *mixer) SetSpeed(name string, speed float32) {
	st, ok := m.states[name]
	if !ok {
		log.Printf("[Mixer] SetSpeed: %q has never played", name)
		return
	}
	if speed < 0 {
		speed = 0
	}
	st.speed = speed
	if st.playing && !st.paused {
		m.backend.SetClipSpeed(st.entry.clip, speed)
	}
}

func (m *mixer) Speed(name string) float32 {
	if st, ok := m.states[name]; ok {
		return st.speed
	}
	return 1
}

func (m *mixer) SetGlobalSpeed(speed float32) {
	if !m.initialized {
		return
	}
	if speed < 0 {
		speed = 0
	}
	m.backend.SetRootSpeed(m.graph, speed)
}

func (m *mixer) GlobalSpeed() float32 {
	if !m.initialized {
		return 1
	}
	return m.backend.RootSpeed(m.graph)
}

func (m *mixer) IsPlaying(name string) bool {
	st, ok := m.states[name]
	return ok && st.playing
}

func (m *mixer) IsPaused(name string) bool {
	st, ok := m.states[name]
	return ok && st.playing && st.paused
}

func (m *mixer) CurrentAnimation() string {
	if m.current == nil {
		return ""
	}
	return m.current.entry.name
}

func (m *mixer) CurrentTime(name string) float32 {
	if st, ok := m.states[name]; ok && st.playing {
		return st.currentTime
	}
	return 0
}

func (m *mixer) NormalizedTime(name string) float32 {
	st, ok := m.states[name]
	if !ok || !st.playing || st.entry.duration <= 0 {
		return 0
	}
	return st.currentTime / st.entry.duration
}

func (m *mixer) LoopCount(name string) int {
	if st, ok := m.states[name]; ok && st.playing {
		return st.loopIteration
	}
	return 0
}

func (m *mixer) ActiveCount() int {
	return len(m.active)
}

func (m *mixer) QueuedCount() int {
	return len(m.queue)
}

func (m *mixer) Subscribe(fn func(Event)) int {
	return m.events.subscribe(fn)
}

func (m *mixer) Unsubscribe(id int) {
	m.events.unsubscribe(id)
}

func (m *mixer) Update(deltaTime float32) {
	if !m.initialized || deltaTime <= 0 {
		return
	}
	root := m.backend.RootSpeed(m.graph)

	// Iterate a snapshot: loop and completion callbacks may start or stop
	// clips, mutating m.active mid-tick.
	m.scratch = append(m.scratch[:0], m.active...)
	for _, st := range m.scratch {
		m.updateBlend(st, deltaTime)
		if !st.playing || st.paused || st.completed {
			continue
		}
		m.advanceState(st, deltaTime*root)
	}

	m.updateIdle(deltaTime)
}

func (m *mixer) Release() {
	m.StopAll()
	for name, entry := range m.entries {
		m.backend.DestroyClipNode(entry.clip)
		delete(m.entries, name)
		delete(m.states, name)
	}
	if m.graph != NoHandle {
		m.backend.DestroyGraph(m.graph)
		m.graph = NoHandle
		m.mix = NoHandle
	}
	m.events.clear()
	m.current = nil
	m.initialized = false
}

// updateIdle pauses backend graph evaluation after the active set has been
// empty past the idle threshold. Purely a performance measure, callers never
// observe it: wake restarts the graph before any new clip connects.
func (m *mixer) updateIdle(deltaTime float32) {
	if !m.idlePause || len(m.active) > 0 {
		m.idleTime = 0
		return
	}
	if m.idlePaused {
		return
	}
	m.idleTime += deltaTime
	if m.idleTime >= idlePauseThreshold {
		m.backend.GraphStop(m.graph)
		m.idlePaused = true
	}
}

func (m *mixer) wake() {
	m.idleTime = 0
	if m.idlePaused {
		m.backend.GraphPlay(m.graph)
		m.idlePaused = false
	}
}
