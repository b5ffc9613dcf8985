// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package termstat provides a songgraph.Statter which periodically prints
// running counters to a terminal.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// Collector keeps counters and rewrites them on one line every interval.
type Collector struct {
	lock    sync.Mutex
	stats   map[string]int64
	changed bool
	out     io.Writer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewCollector starts a Collector writing to out every two seconds.
func NewCollector(out io.Writer) *Collector {
	return NewCollectorInterval(out, time.Second*2)
}

// NewCollectorInterval starts a Collector writing to out every interval.
func NewCollectorInterval(out io.Writer, interval time.Duration) *Collector {
	ts := &Collector{
		stats: make(map[string]int64),
		out:   out,
		done:  make(chan struct{}),
	}
	ts.wg.Add(1)
	go func() {
		defer ts.wg.Done()
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				ts.write()
			case <-ts.done:
				return
			}
		}
	}()
	return ts
}

// Close stops the background writer and prints the final counters on their
// own line.
func (t *Collector) Close() error {
	close(t.done)
	t.wg.Wait()
	t.write()
	_, err := fmt.Fprintln(t.out)
	return err
}

// Count adds value to the named counter. With rate < 1, only that fraction of
// calls is recorded.
func (t *Collector) Count(name string, value int64, rate float64, tags ...string) {
	if rate < 1 && rand.Float64() > rate {
		return
	}
	t.lock.Lock()
	t.stats[name] += value
	t.changed = true
	t.lock.Unlock()
}

// Get returns the current value of a counter.
func (t *Collector) Get(name string) int64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.stats[name]
}

func (t *Collector) write() {
	t.lock.Lock()
	if !t.changed {
		t.lock.Unlock()
		return
	}
	names := make([]string, 0, len(t.stats))
	for name := range t.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	sb := strings.Builder{}
	for _, name := range names {
		fmt.Fprintf(&sb, "%s: %d ", name, t.stats[name])
	}
	t.changed = false
	t.lock.Unlock()
	fmt.Fprint(t.out, "\r"+sb.String())
}

// Gauge does nothing.
func (t *Collector) Gauge(name string, value float64, rate float64, tags ...string) {}

// Histogram does nothing.
func (t *Collector) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set does nothing.
func (t *Collector) Set(name string, value string, rate float64, tags ...string) {}

// Timing does nothing.
func (t *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {}
