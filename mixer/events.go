package mixer

// EventKind discriminates the playback lifecycle notifications a Mixer emits.
type EventKind int

const (
	// EventStart fires when a clip begins playing.
	EventStart EventKind = iota

	// EventEnd fires when a clip reaches its end (or exhausts its loop
	// budget) without being displaced.
	EventEnd

	// EventInterrupted fires when a playing clip is stopped before
	// completing: displaced by a Single-mode play, evicted for a slot,
	// faded out by a crossfade, or stopped explicitly.
	EventInterrupted

	// EventLoop fires each time a looping clip wraps. LoopIteration carries
	// the 1-based wrap count.
	EventLoop
)

// Event is one playback lifecycle notification.
type Event struct {
	// Kind identifies the notification.
	Kind EventKind

	// Name is the registered name of the clip the event concerns.
	Name string

	// LoopIteration is the 1-based wrap count for EventLoop, 0 otherwise.
	LoopIteration int
}

// subscriber pairs a handler with the id returned from Subscribe.
type subscriber struct {
	id int
	fn func(Event)
}

// dispatcher fans events out to an ordered subscriber list. Dispatch walks a
// snapshot of the list, so a handler may subscribe or unsubscribe (including
// itself) without corrupting the iteration.
type dispatcher struct {
	subs   []subscriber
	nextID int
}

func (d *dispatcher) subscribe(fn func(Event)) int {
	if fn == nil {
		return 0
	}
	d.nextID++
	d.subs = append(d.subs, subscriber{id: d.nextID, fn: fn})
	return d.nextID
}

func (d *dispatcher) unsubscribe(id int) {
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

func (d *dispatcher) emit(ev Event) {
	if len(d.subs) == 0 {
		return
	}
	// Handlers can trigger further emits (a completion handler starting the
	// next clip fires EventStart inline), so each dispatch needs its own
	// snapshot rather than a shared scratch slice.
	snapshot := make([]subscriber, len(d.subs))
	copy(snapshot, d.subs)
	for _, s := range snapshot {
		s.fn(ev)
	}
}

func (d *dispatcher) clear() {
	d.subs = nil
}
