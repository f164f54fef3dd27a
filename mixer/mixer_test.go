package mixer_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/mixer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClip struct {
	length float32
	loop   bool
}

func (c stubClip) Duration() float32 { return c.length }
func (c stubClip) Looping() bool     { return c.loop }

// fakeBackend is a recording GraphBackend for a single graph and mixer node.
type fakeBackend struct {
	failGraph   bool
	failMixer   bool
	rejectClips bool

	graphCreated   bool
	graphDestroyed bool
	mode           mixer.TimeMode
	playing        bool
	rootSpeed      float32
	graphPlays     int
	graphStops     int

	slots     []mixer.ClipHandle
	weights   []float32
	weightLog map[int][]float32

	nextClip  int
	clips     map[mixer.ClipHandle]mixer.ClipSource
	clipTime  map[mixer.ClipHandle]float32
	clipSpeed map[mixer.ClipHandle]float32
	clipDone  map[mixer.ClipHandle]bool
	destroyed []mixer.ClipHandle

	target any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		weightLog: make(map[int][]float32),
		clips:     make(map[mixer.ClipHandle]mixer.ClipSource),
		clipTime:  make(map[mixer.ClipHandle]float32),
		clipSpeed: make(map[mixer.ClipHandle]float32),
		clipDone:  make(map[mixer.ClipHandle]bool),
	}
}

func (f *fakeBackend) CreateGraph(ownerLabel string) mixer.GraphHandle {
	if f.failGraph {
		return mixer.NoHandle
	}
	f.graphCreated = true
	f.rootSpeed = 1
	return 1
}

func (f *fakeBackend) DestroyGraph(graph mixer.GraphHandle) {
	f.graphDestroyed = true
}

func (f *fakeBackend) SetGraphTimeMode(graph mixer.GraphHandle, mode mixer.TimeMode) {
	f.mode = mode
}

func (f *fakeBackend) GraphPlay(graph mixer.GraphHandle) {
	f.playing = true
	f.graphPlays++
}

func (f *fakeBackend) GraphStop(graph mixer.GraphHandle) {
	f.playing = false
	f.graphStops++
}

func (f *fakeBackend) CreateMixer(graph mixer.GraphHandle, capacity int) mixer.MixerHandle {
	if f.failMixer {
		return mixer.NoHandle
	}
	f.slots = make([]mixer.ClipHandle, capacity)
	for i := range f.slots {
		f.slots[i] = mixer.NoHandle
	}
	f.weights = make([]float32, capacity)
	return 1
}

func (f *fakeBackend) SetInputWeight(mix mixer.MixerHandle, slot int, weight float32) {
	f.weights[slot] = weight
	f.weightLog[slot] = append(f.weightLog[slot], weight)
}

func (f *fakeBackend) Connect(clip mixer.ClipHandle, mix mixer.MixerHandle, slot int) {
	f.slots[slot] = clip
}

func (f *fakeBackend) Disconnect(mix mixer.MixerHandle, slot int) {
	f.slots[slot] = mixer.NoHandle
}

func (f *fakeBackend) CreateClipNode(graph mixer.GraphHandle, source mixer.ClipSource) mixer.ClipHandle {
	if f.rejectClips {
		return mixer.NoHandle
	}
	f.nextClip++
	handle := mixer.ClipHandle(f.nextClip)
	f.clips[handle] = source
	f.clipSpeed[handle] = 1
	return handle
}

func (f *fakeBackend) SetClipTime(clip mixer.ClipHandle, seconds float32) {
	f.clipTime[clip] = seconds
}

func (f *fakeBackend) SetClipSpeed(clip mixer.ClipHandle, speed float32) {
	f.clipSpeed[clip] = speed
}

func (f *fakeBackend) SetClipDone(clip mixer.ClipHandle, done bool) {
	f.clipDone[clip] = done
}

func (f *fakeBackend) DestroyClipNode(clip mixer.ClipHandle) {
	f.destroyed = append(f.destroyed, clip)
	delete(f.clips, clip)
}

func (f *fakeBackend) BindOutput(graph mixer.GraphHandle, mix mixer.MixerHandle, target any) {
	f.target = target
}

func (f *fakeBackend) RootSpeed(graph mixer.GraphHandle) float32 {
	return f.rootSpeed
}

func (f *fakeBackend) SetRootSpeed(graph mixer.GraphHandle, speed float32) {
	f.rootSpeed = speed
}

// slotOf returns the mixer slot a clip handle is currently connected to.
func (f *fakeBackend) slotOf(clip mixer.ClipHandle) int {
	for i, c := range f.slots {
		if c == clip {
			return i
		}
	}
	return -1
}

type eventLog struct {
	events []mixer.Event
}

func (l *eventLog) record(ev mixer.Event) {
	l.events = append(l.events, ev)
}

func (l *eventLog) ofKind(kind mixer.EventKind) []mixer.Event {
	var out []mixer.Event
	for _, ev := range l.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func newTestMixer(t *testing.T, options ...mixer.MixerBuilderOption) (*fakeBackend, mixer.Mixer, *eventLog) {
	t.Helper()
	backend := newFakeBackend()
	m := mixer.NewMixer(backend, options...)
	log := &eventLog{}
	m.Subscribe(log.record)
	return backend, m, log
}

func TestNewMixerNilBackendPanics(t *testing.T) {
	assert.Panics(t, func() { mixer.NewMixer(nil) })
}

func TestNewMixerInitializesGraph(t *testing.T) {
	backend, m, _ := newTestMixer(t, mixer.WithCapacity(3))
	assert.True(t, backend.graphCreated)
	assert.Equal(t, mixer.TimeModeManual, backend.mode)
	assert.True(t, backend.playing)
	assert.Len(t, backend.slots, 3)
	assert.Equal(t, float32(1), m.GlobalSpeed())
}

func TestAddAnimationValidation(t *testing.T) {
	backend, m, _ := newTestMixer(t)

	m.AddAnimation("", stubClip{length: 1})
	m.AddAnimation("walk", nil)
	assert.Empty(t, m.AnimationNames())

	m.AddAnimation("walk", stubClip{length: 2})
	assert.True(t, m.HasAnimation("walk"))
	assert.Equal(t, float32(2), m.AnimationLength("walk"))
	assert.Equal(t, float32(0), m.AnimationLength("run"))
	assert.Len(t, backend.clips, 1)
}

func TestAddAnimationReplaceDestroysOldHandle(t *testing.T) {
	backend, m, _ := newTestMixer(t)
	m.AddAnimation("walk", stubClip{length: 1})
	m.AddAnimation("walk", stubClip{length: 3})

	assert.Equal(t, []mixer.ClipHandle{1}, backend.destroyed)
	assert.Equal(t, float32(3), m.AnimationLength("walk"))
	assert.Len(t, backend.clips, 1)
}

func TestRemoveAnimationStopsActiveClip(t *testing.T) {
	backend, m, log := newTestMixer(t)
	m.AddAnimation("walk", stubClip{length: 1})
	m.Play("walk", nil)
	require.True(t, m.IsPlaying("walk"))

	m.RemoveAnimation("walk")
	assert.False(t, m.IsPlaying("walk"))
	assert.False(t, m.HasAnimation("walk"))
	assert.Len(t, log.ofKind(mixer.EventInterrupted), 1)
	assert.Equal(t, []mixer.ClipHandle{1}, backend.destroyed)

	// Removing again is a no-op.
	m.RemoveAnimation("walk")
	assert.Len(t, backend.destroyed, 1)
}

func TestPlayUnknownNameIsNoOp(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.Play("missing", nil)
	assert.False(t, m.IsPlaying("missing"))
	assert.Empty(t, log.events)
	assert.Equal(t, 0, m.ActiveCount())
}

func TestSingleModeInterruptsCurrent(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})
	m.AddAnimation("b", stubClip{length: 1})

	interrupted := false
	m.Play("a", func() { t.Error("onComplete fired for interrupted clip") })
	m.Subscribe(func(ev mixer.Event) {
		if ev.Kind == mixer.EventInterrupted && ev.Name == "a" {
			interrupted = true
		}
	})
	m.Play("b", nil)

	assert.True(t, interrupted)
	assert.Empty(t, log.ofKind(mixer.EventEnd))
	assert.False(t, m.IsPlaying("a"))
	assert.True(t, m.IsPlaying("b"))
	assert.Equal(t, "b", m.CurrentAnimation())
	assert.Equal(t, 1, m.ActiveCount())
}

func TestAdditiveModePlaysAlongside(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})

	m.Play("a", nil)
	m.PlayWithMode("b", mixer.PlayModeAdditive, nil)

	assert.True(t, m.IsPlaying("a"))
	assert.True(t, m.IsPlaying("b"))
	assert.Equal(t, 2, m.ActiveCount())
	assert.Empty(t, log.ofKind(mixer.EventInterrupted))
	assert.Equal(t, "b", m.CurrentAnimation())
}

func TestQueueModeDefersUntilCompletion(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})
	m.AddAnimation("b", stubClip{length: 1})
	m.AddAnimation("c", stubClip{length: 1})

	m.Play("a", nil)
	m.PlayWithMode("b", mixer.PlayModeQueue, nil)
	m.PlayWithMode("c", mixer.PlayModeQueue, nil)
	assert.Equal(t, 2, m.QueuedCount())
	assert.False(t, m.IsPlaying("b"))

	m.Update(0.6)
	assert.Equal(t, "a", m.CurrentAnimation())
	assert.LessOrEqual(t, m.ActiveCount(), 1)

	m.Update(0.6)
	assert.Equal(t, "b", m.CurrentAnimation())
	assert.Equal(t, 1, m.QueuedCount())
	assert.LessOrEqual(t, m.ActiveCount(), 1)

	m.Update(0.6)
	m.Update(0.6)
	assert.Equal(t, "c", m.CurrentAnimation())
	assert.Equal(t, 0, m.QueuedCount())

	var starts []string
	for _, ev := range log.ofKind(mixer.EventStart) {
		starts = append(starts, ev.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, starts)
}

func TestQueueModePlaysImmediatelyWhenIdle(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})
	m.PlayWithMode("a", mixer.PlayModeQueue, nil)
	assert.True(t, m.IsPlaying("a"))
	assert.Equal(t, 0, m.QueuedCount())
}

func TestCompletionFiresEndOnceAndAutoStops(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})

	completions := 0
	m.Play("a", func() { completions++ })
	m.Update(0.5)
	assert.True(t, m.IsPlaying("a"))
	m.Update(0.5)
	m.Update(0.5)

	assert.Equal(t, 1, completions)
	assert.Len(t, log.ofKind(mixer.EventEnd), 1)
	assert.False(t, m.IsPlaying("a"))
	assert.Equal(t, 0, m.ActiveCount())
	assert.Empty(t, log.ofKind(mixer.EventInterrupted))
}

func TestCompletionWithoutAutoStopHoldsFinalPose(t *testing.T) {
	backend, m, log := newTestMixer(t, mixer.WithAutoStop(false))
	m.AddAnimation("a", stubClip{length: 1})
	m.Play("a", nil)

	m.Update(1.2)
	m.Update(0.5)
	m.Update(0.5)

	assert.Len(t, log.ofKind(mixer.EventEnd), 1)
	assert.True(t, m.IsPlaying("a"))
	assert.Equal(t, float32(1), m.CurrentTime("a"))
	assert.True(t, backend.clipDone[1])
}

func TestPlayLoopedBoundedLoops(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})

	completions := 0
	m.PlayLooped("a", 3, func() { completions++ })
	for i := 0; i < 8; i++ {
		m.Update(0.5)
	}

	loops := log.ofKind(mixer.EventLoop)
	require.Len(t, loops, 3)
	for i, ev := range loops {
		assert.Equal(t, i+1, ev.LoopIteration)
		assert.Equal(t, "a", ev.Name)
	}
	assert.Len(t, log.ofKind(mixer.EventEnd), 1)
	assert.Equal(t, 1, completions)
	assert.False(t, m.IsPlaying("a"))
}

func TestPlayLoopedInfiniteNeverEnds(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 0.5})

	m.PlayLooped("a", -1, nil)
	for i := 0; i < 20; i++ {
		m.Update(0.3)
	}

	assert.True(t, m.IsPlaying("a"))
	assert.Empty(t, log.ofKind(mixer.EventEnd))
	assert.NotEmpty(t, log.ofKind(mixer.EventLoop))
	assert.Equal(t, m.LoopCount("a"), log.ofKind(mixer.EventLoop)[len(log.ofKind(mixer.EventLoop))-1].LoopIteration)
}

func TestLoopingClipWrapsTime(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1, loop: true})
	m.Play("a", nil)

	m.Update(0.75)
	m.Update(0.75)
	assert.InDelta(t, 0.5, m.CurrentTime("a"), 1e-5)
	assert.Equal(t, 1, m.LoopCount("a"))
	assert.InDelta(t, 0.5, m.NormalizedTime("a"), 1e-5)
}

func TestCrossfadeWeightsAreMonotonicAndBounded(t *testing.T) {
	backend, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 10})
	m.AddAnimation("b", stubClip{length: 10})

	m.Play("a", nil)
	slotA := backend.slotOf(1)
	require.NotEqual(t, -1, slotA)

	m.PlayWithCrossfade("b", 0.3, nil)
	slotB := backend.slotOf(2)
	require.NotEqual(t, slotA, slotB)

	for i := 0; i < 4; i++ {
		m.Update(0.1)
	}

	assert.False(t, m.IsPlaying("a"))
	assert.True(t, m.IsPlaying("b"))
	assert.Len(t, log.ofKind(mixer.EventInterrupted), 1)
	assert.Equal(t, float32(1), backend.weights[slotB])

	prev := float32(0)
	for _, w := range backend.weightLog[slotB] {
		assert.GreaterOrEqual(t, w, prev)
		assert.LessOrEqual(t, w, float32(1))
		prev = w
	}
	for i := 1; i < len(backend.weightLog[slotA]); i++ {
		assert.LessOrEqual(t, backend.weightLog[slotA][i], backend.weightLog[slotA][i-1])
		assert.GreaterOrEqual(t, backend.weightLog[slotA][i], float32(0))
	}
}

func TestCrossfadeDemotesCompletionToInterruption(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 10})
	m.AddAnimation("b", stubClip{length: 10})

	fired := 0
	m.Play("a", func() { fired++ })
	m.PlayWithCrossfade("b", 0.2, nil)
	m.Update(0.1)
	m.Update(0.1)

	assert.Equal(t, 1, fired)
	assert.Len(t, log.ofKind(mixer.EventInterrupted), 1)
	assert.Empty(t, log.ofKind(mixer.EventEnd))
}

func TestCrossfadeToSameClipRestarts(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 10})
	m.Play("a", nil)
	m.Update(1)
	require.InDelta(t, 1, m.CurrentTime("a"), 1e-5)

	m.PlayWithCrossfade("a", 0.2, nil)
	assert.Equal(t, float32(0), m.CurrentTime("a"))
	assert.Len(t, log.ofKind(mixer.EventStart), 2)
	assert.Len(t, log.ofKind(mixer.EventInterrupted), 1)
}

func TestCrossfadeWithZeroFadeTimeSwitchesInstantly(t *testing.T) {
	backend, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})

	m.Play("a", nil)
	m.PlayWithCrossfade("b", 0, nil)

	slotB := backend.slotOf(2)
	require.NotEqual(t, -1, slotB)
	assert.Equal(t, float32(1), backend.weights[slotB])
	assert.False(t, m.IsPlaying("a"))
	assert.True(t, m.IsPlaying("b"))
	assert.Len(t, log.ofKind(mixer.EventInterrupted), 1)

	m.Update(0.5)
	assert.Equal(t, float32(1), backend.weights[slotB])
	assert.InDelta(t, 0.5, m.CurrentTime("b"), 1e-5)
}

func TestCapacityEvictionStopsOldest(t *testing.T) {
	_, m, log := newTestMixer(t, mixer.WithCapacity(2))
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})
	m.AddAnimation("c", stubClip{length: 5})

	m.PlayWithMode("a", mixer.PlayModeAdditive, nil)
	m.PlayWithMode("b", mixer.PlayModeAdditive, nil)
	m.PlayWithMode("c", mixer.PlayModeAdditive, nil)

	assert.Equal(t, 2, m.ActiveCount())
	assert.False(t, m.IsPlaying("a"))
	assert.True(t, m.IsPlaying("b"))
	assert.True(t, m.IsPlaying("c"))

	interrupted := log.ofKind(mixer.EventInterrupted)
	require.Len(t, interrupted, 1)
	assert.Equal(t, "a", interrupted[0].Name)
}

func TestEvictionKeepsFreedSlotFromQueuedRequest(t *testing.T) {
	_, m, _ := newTestMixer(t, mixer.WithCapacity(1))
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})
	m.AddAnimation("c", stubClip{length: 5})

	m.Play("a", nil)
	m.PlayWithMode("b", mixer.PlayModeQueue, nil)
	require.Equal(t, 1, m.QueuedCount())

	// Evicting "a" frees the only slot; the explicit request must win it
	// over the queued one.
	m.PlayWithMode("c", mixer.PlayModeAdditive, nil)
	assert.True(t, m.IsPlaying("c"))
	assert.False(t, m.IsPlaying("b"))
	assert.Equal(t, 1, m.QueuedCount())

	m.Stop("c")
	assert.True(t, m.IsPlaying("b"))
	assert.Equal(t, 0, m.QueuedCount())
}

func TestQueueWithCrossfadeFadesInWhenDequeued(t *testing.T) {
	backend, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})
	m.AddAnimation("b", stubClip{length: 5})

	m.Play("a", nil)
	m.QueueWithCrossfade("b", 0.2, nil)
	require.Equal(t, 1, m.QueuedCount())

	m.Update(0.6)
	m.Update(0.6)
	require.True(t, m.IsPlaying("b"))
	require.Equal(t, 0, m.QueuedCount())

	slotB := backend.slotOf(2)
	require.NotEqual(t, -1, slotB)
	assert.Less(t, backend.weights[slotB], float32(1))

	m.Update(0.1)
	m.Update(0.1)
	assert.Equal(t, float32(1), backend.weights[slotB])
}

func TestQueueWithCrossfadeStartsImmediatelyWhenIdle(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})

	m.QueueWithCrossfade("a", 0, nil)
	assert.True(t, m.IsPlaying("a"))
	assert.Equal(t, 0, m.QueuedCount())
}

func TestStopAllClearsQueueSilently(t *testing.T) {
	_, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})
	m.AddAnimation("c", stubClip{length: 5})

	m.Play("a", nil)
	m.PlayWithMode("b", mixer.PlayModeAdditive, nil)
	m.PlayWithMode("c", mixer.PlayModeQueue, nil)
	require.Equal(t, 1, m.QueuedCount())
	before := len(log.events)

	m.StopAll()
	assert.Equal(t, 0, m.ActiveCount())
	assert.Equal(t, 0, m.QueuedCount())
	assert.Equal(t, "", m.CurrentAnimation())
	assert.Len(t, log.events, before)
}

func TestGlobalSpeedZeroFreezesTime(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.Play("a", nil)
	m.Update(0.5)
	require.InDelta(t, 0.5, m.CurrentTime("a"), 1e-5)

	m.SetGlobalSpeed(0)
	m.SetGlobalSpeed(0)
	assert.Equal(t, float32(0), m.GlobalSpeed())
	m.Update(0.5)
	m.Update(0.5)
	assert.InDelta(t, 0.5, m.CurrentTime("a"), 1e-5)

	m.SetGlobalSpeed(2)
	m.Update(0.5)
	assert.InDelta(t, 1.5, m.CurrentTime("a"), 1e-5)
}

func TestCrossfadeResolvesWhileGlobalSpeedZero(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})

	m.Play("a", nil)
	m.SetGlobalSpeed(0)
	m.PlayWithCrossfade("b", 0.2, nil)
	m.Update(0.1)
	m.Update(0.1)

	assert.False(t, m.IsPlaying("a"))
	assert.True(t, m.IsPlaying("b"))
	assert.Equal(t, float32(0), m.CurrentTime("b"))
}

func TestPauseAndResume(t *testing.T) {
	backend, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.Play("a", nil)
	m.Update(0.5)

	m.Pause("a")
	assert.True(t, m.IsPaused("a"))
	assert.True(t, m.IsPlaying("a"))
	assert.Equal(t, float32(0), backend.clipSpeed[1])
	m.Update(0.5)
	assert.InDelta(t, 0.5, m.CurrentTime("a"), 1e-5)

	m.Resume("a")
	assert.False(t, m.IsPaused("a"))
	assert.Equal(t, float32(1), backend.clipSpeed[1])
	m.Update(0.5)
	assert.InDelta(t, 1.0, m.CurrentTime("a"), 1e-5)
}

func TestPauseAllResumeAll(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})
	m.Play("a", nil)
	m.PlayWithMode("b", mixer.PlayModeAdditive, nil)

	m.PauseAll()
	assert.True(t, m.IsPaused("a"))
	assert.True(t, m.IsPaused("b"))

	m.ResumeAll()
	assert.False(t, m.IsPaused("a"))
	assert.False(t, m.IsPaused("b"))
}

func TestSetSpeedClampsAndScalesAdvance(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 10})
	m.Play("a", nil)

	m.SetSpeed("a", 2)
	assert.Equal(t, float32(2), m.Speed("a"))
	m.Update(0.5)
	assert.InDelta(t, 1.0, m.CurrentTime("a"), 1e-5)

	m.SetSpeed("a", -3)
	assert.Equal(t, float32(0), m.Speed("a"))
	m.Update(0.5)
	assert.InDelta(t, 1.0, m.CurrentTime("a"), 1e-5)

	assert.Equal(t, float32(1), m.Speed("never-played"))
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})

	firstCalls, secondCalls := 0, 0
	var firstID int
	firstID = m.Subscribe(func(ev mixer.Event) {
		firstCalls++
		m.Unsubscribe(firstID)
	})
	m.Subscribe(func(ev mixer.Event) { secondCalls++ })

	m.Play("a", nil)
	m.Play("a", nil)

	assert.Equal(t, 1, firstCalls)
	assert.Greater(t, secondCalls, 1)
}

func TestReentrantCompletionRestart(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 1})

	restarted := false
	m.Play("a", func() {
		if !restarted {
			restarted = true
			m.Play("a", nil)
		}
	})
	m.Update(1.2)

	assert.True(t, restarted)
	assert.True(t, m.IsPlaying("a"))
	assert.Equal(t, float32(0), m.CurrentTime("a"))
	assert.Equal(t, "a", m.CurrentAnimation())
}

func TestIdlePauseAndTransparentResume(t *testing.T) {
	backend, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.Play("a", nil)
	m.Stop("a")

	m.Update(0.3)
	assert.True(t, backend.playing)
	m.Update(0.3)
	assert.False(t, backend.playing)
	stops := backend.graphStops

	m.Update(0.3)
	assert.Equal(t, stops, backend.graphStops)

	m.Play("a", nil)
	assert.True(t, backend.playing)
	assert.True(t, m.IsPlaying("a"))
}

func TestIdlePauseDisabled(t *testing.T) {
	backend, m, _ := newTestMixer(t, mixer.WithIdlePause(false))
	m.AddAnimation("a", stubClip{length: 5})
	m.Play("a", nil)
	m.Stop("a")

	m.Update(1)
	m.Update(1)
	assert.True(t, backend.playing)
	assert.Zero(t, backend.graphStops)
}

func TestReleaseTearsDownInOrder(t *testing.T) {
	backend, m, log := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})
	m.AddAnimation("b", stubClip{length: 5})
	m.Play("a", nil)
	before := len(log.events)

	m.Release()
	assert.Len(t, backend.destroyed, 2)
	assert.True(t, backend.graphDestroyed)
	assert.Equal(t, 0, m.ActiveCount())
	assert.Equal(t, "", m.CurrentAnimation())
	// StopAll inside Release emits nothing, and subscribers are gone after.
	assert.Len(t, log.events, before)
}

func TestFailedGraphInitDisablesMixer(t *testing.T) {
	backend := newFakeBackend()
	backend.failGraph = true
	m := mixer.NewMixer(backend)

	m.AddAnimation("a", stubClip{length: 1})
	assert.False(t, m.HasAnimation("a"))
	m.Play("a", nil)
	assert.False(t, m.IsPlaying("a"))
	m.Update(0.5)
	assert.Equal(t, float32(1), m.GlobalSpeed())
}

func TestFailedMixerInitDestroysGraph(t *testing.T) {
	backend := newFakeBackend()
	backend.failMixer = true
	m := mixer.NewMixer(backend)

	assert.True(t, backend.graphDestroyed)
	m.AddAnimation("a", stubClip{length: 1})
	assert.False(t, m.HasAnimation("a"))
}

func TestRejectedClipSourceNotRegistered(t *testing.T) {
	backend, m, _ := newTestMixer(t)
	backend.rejectClips = true
	m.AddAnimation("a", stubClip{length: 1})
	assert.False(t, m.HasAnimation("a"))
}

func TestQueriesOnInactiveClipReturnZeroValues(t *testing.T) {
	_, m, _ := newTestMixer(t)
	m.AddAnimation("a", stubClip{length: 5})

	assert.Equal(t, float32(0), m.CurrentTime("a"))
	assert.Equal(t, float32(0), m.NormalizedTime("a"))
	assert.Equal(t, 0, m.LoopCount("a"))
	assert.False(t, m.IsPlaying("a"))
	assert.False(t, m.IsPaused("a"))
	assert.Equal(t, "", m.CurrentAnimation())
}

func TestWithCapacityClamped(t *testing.T) {
	backend := newFakeBackend()
	mixer.NewMixer(backend, mixer.WithCapacity(100))
	assert.Len(t, backend.slots, mixer.MaxCapacity)

	backend = newFakeBackend()
	mixer.NewMixer(backend, mixer.WithCapacity(0))
	assert.Len(t, backend.slots, mixer.MinCapacity)
}
