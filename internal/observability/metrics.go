package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for outbound backend calls,
// fallback decisions and gateway requests.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	fallbackCount map[string]int64
	latency       map[string]time.Duration
}

// Counter is one named counter value.
type Counter struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests  []Counter                `json:"requests"`
	Errors    []Counter                `json:"errors"`
	Fallbacks []Counter                `json:"fallbacks"`
	Latency   map[string]time.Duration `json:"latency_total"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		fallbackCount: make(map[string]int64),
		latency:       make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latency[path+"|"+method] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordFallback counts a degraded response for an endpoint.
func (m *Metrics) RecordFallback(endpoint, mode string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbackCount[endpoint+"|"+mode]++
}

// Snapshot copies the current counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Latency: map[string]time.Duration{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	latency := make(map[string]time.Duration, len(m.latency))
	for k, v := range m.latency {
		latency[k] = v
	}
	return Snapshot{
		Requests:  sortedCounters(m.requestCount),
		Errors:    sortedCounters(m.errorCount),
		Fallbacks: sortedCounters(m.fallbackCount),
		Latency:   latency,
	}
}

func sortedCounters(src map[string]int64) []Counter {
	out := make([]Counter, 0, len(src))
	for k, v := range src {
		out = append(out, Counter{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
