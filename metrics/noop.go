package metrics

import "time"

// NoopRecorder drops all observations; it is the default when metrics are
// not configured.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
