package system

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Ticker is anything the system advances once per frame. Every Mixer
// satisfies it.
type Ticker interface {
	// Update advances the ticker by the frame delta.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds since the last frame
	Update(deltaTime float32)
}

// System batches the per-frame updates of many independent animated targets
// across a reusable worker pool. Each ticker owns its own state, so tickers
// update in parallel while each individual ticker still sees strictly
// serial calls.
type System interface {
	// Add registers a ticker for per-frame updates. Nil tickers are ignored.
	//
	// Parameters:
	//   - t: the ticker to register.
	Add(t Ticker)

	// Remove unregisters a ticker. No-op if it was never added.
	//
	// Parameters:
	//   - t: the ticker to unregister.
	Remove(t Ticker)

	// Len returns the number of registered tickers.
	//
	// Returns:
	//   - int: the ticker count.
	Len() int

	// Update advances every registered ticker by the frame delta, fanning
	// the work out across the pool and returning once all tickers finish.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds since the last frame.
	Update(deltaTime float32)
}

var _ System = &system{}

type system struct {
	mu      *sync.Mutex
	workers int
	pool    worker.DynamicWorkerPool
	tickers []Ticker

	// batch is the reusable per-frame snapshot of tickers.
	batch      []Ticker
	nextTaskID int
}

// NewSystem creates an update system backed by a reusable worker pool.
//
// Parameters:
//   - options: optional configuration, see SystemBuilderOption.
//
// Returns:
//   - System: the new system instance.
func NewSystem(options ...SystemBuilderOption) System {
	s := &system{
		mu:      &sync.Mutex{},
		workers: defaultWorkers(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	return s
}

func (s *system) Add(t Ticker) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers = append(s.tickers, t)
}

func (s *system) Remove(t Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.tickers {
		if existing == t {
			s.tickers = append(s.tickers[:i], s.tickers[i+1:]...)
			return
		}
	}
}

func (s *system) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

func (s *system) Update(deltaTime float32) {
	s.mu.Lock()
	s.batch = append(s.batch[:0], s.tickers...)
	s.mu.Unlock()

	// Workers are reused across frames. A WaitGroup provides the per-frame
	// barrier since pool.Wait() blocks until workers idle-exit, which is
	// unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for _, t := range s.batch {
		wg.Add(1)
		tCap := t // capture for closure
		id := s.nextTaskID
		s.nextTaskID++
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				tCap.Update(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
