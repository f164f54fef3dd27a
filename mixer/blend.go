package mixer

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fadeIn ramps st's mixer weight from its current value to full over
// fadeTime seconds. A non-positive fadeTime applies full weight immediately.
func (m *mixer) fadeIn(st *playbackState, fadeTime float32) {
	st.targetWeight = 1
	st.fadingOut = false
	if fadeTime <= 0 {
		st.fadingIn = false
		st.fade = nil
		st.weight = 1
		m.backend.SetInputWeight(m.mix, st.slot, 1)
		return
	}
	st.fadingIn = true
	st.fade = gween.New(st.weight, 1, fadeTime, ease.Linear)
	m.backend.SetInputWeight(m.mix, st.slot, st.weight)
}

// fadeOut ramps st's mixer weight to zero and stops it when the fade lands.
// The pending onComplete is demoted to an interruption handler because a
// faded-out clip never finishes naturally.
func (m *mixer) fadeOut(st *playbackState, fadeTime float32) {
	if !st.playing {
		return
	}
	if st.onComplete != nil {
		st.onInterrupted = st.onComplete
		st.onComplete = nil
	}
	st.targetWeight = 0
	st.fadingIn = false
	if fadeTime <= 0 {
		m.stopState(st, true)
		return
	}
	st.fadingOut = true
	st.fade = gween.New(st.weight, 0, fadeTime, ease.Linear)
}

// updateBlend advances st's fade tween by dt of wall-clock time. Fades run
// unscaled so a crossfade still resolves while global speed is zero. A
// finished fade-out retires the state.
func (m *mixer) updateBlend(st *playbackState, dt float32) {
	if st.fade == nil {
		return
	}
	value, finished := st.fade.Update(dt)
	st.weight = value
	if finished {
		st.weight = st.targetWeight
		st.fade = nil
	}
	if st.slot >= 0 {
		m.backend.SetInputWeight(m.mix, st.slot, st.weight)
	}
	if finished {
		if st.fadingOut && st.targetWeight <= 0 {
			st.fadingOut = false
			m.stopState(st, true)
			return
		}
		st.fadingIn = false
		st.fadingOut = false
	}
}
