package system

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTicker struct {
	frames int32
	total  int64 // accumulated delta in microseconds
}

func (c *countingTicker) Update(deltaTime float32) {
	atomic.AddInt32(&c.frames, 1)
	atomic.AddInt64(&c.total, int64(deltaTime*1e6))
}

func TestSystemUpdatesEveryTicker(t *testing.T) {
	s := NewSystem(WithWorkers(4))
	tickers := make([]*countingTicker, 8)
	for i := range tickers {
		tickers[i] = &countingTicker{}
		s.Add(tickers[i])
	}
	require.Equal(t, 8, s.Len())

	for frame := 0; frame < 5; frame++ {
		s.Update(0.25)
	}

	for _, ticker := range tickers {
		assert.Equal(t, int32(5), atomic.LoadInt32(&ticker.frames))
		assert.Equal(t, int64(5*250000), atomic.LoadInt64(&ticker.total))
	}
}

func TestSystemRemove(t *testing.T) {
	s := NewSystem(WithWorkers(2))
	kept := &countingTicker{}
	dropped := &countingTicker{}
	s.Add(kept)
	s.Add(dropped)

	s.Remove(dropped)
	assert.Equal(t, 1, s.Len())
	s.Update(0.25)

	assert.Equal(t, int32(1), atomic.LoadInt32(&kept.frames))
	assert.Zero(t, atomic.LoadInt32(&dropped.frames))

	// Removing twice is a no-op.
	s.Remove(dropped)
	assert.Equal(t, 1, s.Len())
}

func TestSystemIgnoresNilTicker(t *testing.T) {
	s := NewSystem()
	s.Add(nil)
	assert.Zero(t, s.Len())
	s.Update(0.25)
}
