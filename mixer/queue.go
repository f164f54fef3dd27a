package mixer

// queuedPlay is a deferred playback request waiting for the current
// animation to finish.
type queuedPlay struct {
	name       string
	onComplete func()
	fadeTime   float32
}

// drainQueue starts the next queued request once nothing is playing. Requests
// naming clips that were removed while queued are discarded, so the loop pops
// until a playback actually starts or the queue empties.
func (m *mixer) drainQueue() {
	for len(m.queue) > 0 {
		if m.current != nil && m.current.playing {
			return
		}
		next := m.queue[0]
		m.queue = m.queue[1:]
		if next.fadeTime > 0 {
			m.PlayWithCrossfade(next.name, next.fadeTime, next.onComplete)
		} else {
			m.Play(next.name, next.onComplete)
		}
	}
}
