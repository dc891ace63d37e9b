package obs

import (
	"sort"
	"strings"
	"sync"
)

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter is a very small interface for emitting counters/histograms.
// Implementations may no-op or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// CountingMeter keeps measurements in memory, keyed by name and labels
// ("name{k=v,...}" with labels sorted by key). Safe for concurrent use.
type CountingMeter struct {
	mu       sync.Mutex
	counters map[string]float64
	samples  map[string][]float64
}

func NewCountingMeter() *CountingMeter {
	return &CountingMeter{
		counters: make(map[string]float64),
		samples:  make(map[string][]float64),
	}
}

func (m *CountingMeter) Counter(name string, value float64, labels ...Label) {
	k := SeriesKey(name, labels...)
	m.mu.Lock()
	m.counters[k] += value
	m.mu.Unlock()
}

func (m *CountingMeter) Histogram(name string, value float64, labels ...Label) {
	k := SeriesKey(name, labels...)
	m.mu.Lock()
	m.samples[k] = append(m.samples[k], value)
	m.mu.Unlock()
}

// Count returns the accumulated counter for a series key.
func (m *CountingMeter) Count(key string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

// Samples returns a copy of the histogram observations for a series key.
func (m *CountingMeter) Samples(key string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.samples[key]...)
}

// Counters returns a snapshot of every counter series.
func (m *CountingMeter) Counters() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// SeriesKey renders name and labels the way CountingMeter keys them.
func SeriesKey(name string, labels ...Label) string {
	if len(labels) == 0 {
		return name
	}
	ls := append([]Label(nil), labels...)
	sort.Slice(ls, func(i, j int) bool { return ls[i].Key < ls[j].Key })
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = l.Key + "=" + l.Value
	}
	return name + "{" + strings.Join(parts, ",") + "}"
}
