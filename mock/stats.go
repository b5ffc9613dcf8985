// Package mock holds test doubles for songgraph interfaces.
package mock

import (
	"sync"
	"time"
)

// RecordingStatter records counts and timings. It is safe for concurrent use.
type RecordingStatter struct {
	mu      sync.Mutex
	counts  map[string]int64
	timings map[string]int
}

// Count implements songgraph.Statter.
func (r *RecordingStatter) Count(name string, value int64, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int64)
	}
	r.counts[name] += value
}

// Counts returns a copy of every recorded count.
func (r *RecordingStatter) Counts() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make(map[string]int64, len(r.counts))
	for k, v := range r.counts {
		ret[k] = v
	}
	return ret
}

// Timings returns how many times each timing was recorded.
func (r *RecordingStatter) Timings() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make(map[string]int, len(r.timings))
	for k, v := range r.timings {
		ret[k] = v
	}
	return ret
}

func (r *RecordingStatter) Gauge(name string, value float64, rate float64, tags ...string) {}

func (r *RecordingStatter) Histogram(name string, value float64, rate float64, tags ...string) {}

func (r *RecordingStatter) Set(name string, value string, rate float64, tags ...string) {}

// Timing implements songgraph.Statter.
func (r *RecordingStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timings == nil {
		r.timings = make(map[string]int)
	}
	r.timings[name]++
}
