package mixer

import (
	"log"
	"math"

	"github.com/tanema/gween"
)

// playbackState is the transient per-clip playback record. One exists for
// every clip that is playing or has played on this mixer; its fields are
// reset on each play and cleared on stop. States never outlive their
// registry entry.
type playbackState struct {
	entry *clipEntry

	currentTime  float32
	weight       float32
	targetWeight float32
	fade         *gween.Tween // nil unless a fade is in flight

	speed float32

	playing   bool
	paused    bool
	completed bool
	fadingIn  bool
	fadingOut bool

	looping       bool
	loopIteration int
	maxLoops      int // -1 = unlimited

	slot int // -1 = unassigned

	onComplete    func()
	onInterrupted func()
}

// playState starts (or restarts) playback of entry. An already-playing clip
// is interrupted first. Slot acquisition falls back to evicting the least
// recently started active clip and retrying exactly once; a second failure
// drops the request with a warning. Returns the state, or nil when no slot
// could be obtained.
func (m *mixer) playState(entry *clipEntry, onComplete func(), initialWeight, fadeTime float32, maxLoops int, forceLoop bool) *playbackState {
	st := m.states[entry.name]
	if st == nil {
		st = &playbackState{slot: -1}
		m.states[entry.name] = st
	}
	if st.playing {
		m.stopState(st, true)
	}

	slot := m.slots.acquire()
	if slot < 0 {
		if len(m.active) > 0 {
			// Suppress queue draining during the eviction stop: the freed
			// slot belongs to this request, not to whatever is queued.
			m.evicting = true
			m.stopState(m.active[0], true)
			m.evicting = false
			slot = m.slots.acquire()
		}
		if slot < 0 {
			log.Printf("[Mixer] play %q: no free mixer slot (capacity %d)", entry.name, m.slots.capacity())
			return nil
		}
	}

	st.entry = entry
	st.currentTime = 0
	st.weight = clampWeight(initialWeight)
	st.targetWeight = 1
	st.fade = nil
	st.speed = 1
	st.playing = true
	st.paused = false
	st.completed = false
	st.fadingIn = false
	st.fadingOut = false
	st.looping = entry.looping || forceLoop
	st.loopIteration = 0
	st.maxLoops = maxLoops
	st.slot = slot
	st.onComplete = onComplete
	st.onInterrupted = nil

	m.wake()
	m.backend.SetClipDone(entry.clip, false)
	m.backend.SetClipTime(entry.clip, 0)
	m.backend.SetClipSpeed(entry.clip, 1)
	m.backend.Connect(entry.clip, m.mix, slot)
	m.backend.SetInputWeight(m.mix, slot, st.weight)

	if fadeTime > 0 || st.weight < st.targetWeight {
		// fadeIn snaps straight to full weight when fadeTime <= 0, so a
		// zero-duration crossfade still delivers the incoming clip.
		m.fadeIn(st, fadeTime)
	}

	m.active = append(m.active, st)
	m.current = st
	m.events.emit(Event{Kind: EventStart, Name: entry.name})
	return st
}

// stopState retires st: zeroes its mixer weight, releases its slot, removes
// it from the active set, and reassigns the current animation if needed. The
// structural teardown happens before any callback fires so a handler that
// immediately starts another clip sees a consistent mixer. Stopping always
// triggers queue draining.
func (m *mixer) stopState(st *playbackState, interrupted bool) {
	if st == nil || !st.playing {
		return
	}
	name := st.entry.name
	interruptedCb := st.onInterrupted
	st.onComplete = nil
	st.onInterrupted = nil

	st.playing = false
	st.paused = false
	st.fadingIn = false
	st.fadingOut = false
	st.fade = nil
	st.weight = 0
	st.targetWeight = 0

	if st.slot >= 0 {
		m.backend.SetInputWeight(m.mix, st.slot, 0)
		m.backend.Disconnect(m.mix, st.slot)
		m.slots.release(st.slot)
		st.slot = -1
	}

	for i, candidate := range m.active {
		if candidate == st {
			m.active = append(m.active[:i], m.active[i+1:]...)
			break
		}
	}
	if m.current == st {
		if len(m.active) > 0 {
			m.current = m.active[0]
		} else {
			m.current = nil
		}
	}

	if interrupted {
		if interruptedCb != nil {
			interruptedCb()
		}
		m.events.emit(Event{Kind: EventInterrupted, Name: name})
	}

	if !m.evicting {
		m.drainQueue()
	}
}

// advanceState moves st's clock forward by the root-speed-scaled delta and
// handles loop wrap and completion. Loop events fire before the wrap is
// applied; exhausting a finite loop budget completes the clip.
func (m *mixer) advanceState(st *playbackState, scaledDelta float32) {
	st.currentTime += scaledDelta * st.speed
	duration := st.entry.duration
	if duration <= 0 || st.currentTime < duration {
		m.backend.SetClipTime(st.entry.clip, st.currentTime)
		return
	}

	if st.looping {
		st.loopIteration++
		m.events.emit(Event{Kind: EventLoop, Name: st.entry.name, LoopIteration: st.loopIteration})
		if st.maxLoops <= 0 || st.loopIteration < st.maxLoops {
			st.currentTime = float32(math.Mod(float64(st.currentTime), float64(duration)))
			m.backend.SetClipTime(st.entry.clip, st.currentTime)
			return
		}
	}

	m.completeState(st)
}

// completeState finishes st: clamps its clock to the clip end, emits EventEnd,
// fires the single-shot onComplete, and auto-stops when configured. A
// completion handler restarting the clip resets its clock, which skips the
// auto-stop.
func (m *mixer) completeState(st *playbackState) {
	st.completed = true
	st.currentTime = st.entry.duration
	m.backend.SetClipTime(st.entry.clip, st.currentTime)
	m.backend.SetClipDone(st.entry.clip, true)

	completeCb := st.onComplete
	st.onComplete = nil
	m.events.emit(Event{Kind: EventEnd, Name: st.entry.name})
	if completeCb != nil {
		completeCb()
	}

	if m.autoStop && st.playing && st.completed {
		m.stopState(st, false)
	}
}

func clampWeight(weight float32) float32 {
	if weight < 0 {
		return 0
	}
	if weight > 1 {
		return 1
	}
	return weight
}
