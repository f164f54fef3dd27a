package system

import "runtime"

// SystemBuilderOption is a function that modifies the system configuration
// before the worker pool is created.
type SystemBuilderOption func(*system)

func defaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// WithWorkers sets the maximum number of pool workers updating tickers
// concurrently. Defaults to one less than the CPU count.
//
// Parameters:
//   - n: the worker count, must be >= 1.
//
// Returns:
//   - SystemBuilderOption: the option function.
func WithWorkers(n int) SystemBuilderOption {
	return func(s *system) {
		if n >= 1 {
			s.workers = n
		}
	}
}
