// Package metrics defines the instrumentation seam for payment and
// chain-call observations.
package metrics

import "time"

// Recorder receives gateway counters and latency observations, labeled by
// chain. Implementations must be safe for concurrent use.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
