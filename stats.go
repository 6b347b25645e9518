package garnet

//
// Statistics registry
//
// Grounded on etalazz-vsa's internal/ratelimiter/telemetry/churn/prom_counters.go:
// package-level prometheus.New* + prometheus.MustRegister in a constructor,
// Observe*/accessor methods that are no-ops when disabled. Latency
// percentiles are computed with montanaflynn/stats, the way the teacher's
// integration_test.go reaches for that same library over a sample set.
//

import (
	"sync"

	"github.com/montanaflynn/stats"
	"github.com/prometheus/client_golang/prometheus"
)

// Stats is the statistics registry for one simulation run. The zero value
// is invalid; use [NewStats]. A Stats is safe to share across all routers
// in a [Network] — every accessor is synchronized.
type Stats struct {
	mu sync.Mutex

	warmupCycles uint64

	flitsInjected int64
	flitsEjected  int64

	bufferReads  int64
	bufferWrites int64

	crossbarActivity int64

	swInputArbiterActivity  int64
	swOutputArbiterActivity int64

	numBubbleSwizzles      int64
	numBubbleSwaps         int64
	numRoutedBubbleSwaps   int64
	invariantWarnings      int64

	latencySamples []float64

	flitsInjectedTotal prometheus.Counter
	flitsEjectedTotal  prometheus.Counter
	bubbleSwapsTotal   prometheus.Counter
	networkLatency     prometheus.Histogram
}

// NewStats creates a [Stats] registry. warmupCycles matches
// Config.WarmupCycles: samples recorded before that cycle are suppressed
// (spec.md §5).
func NewStats(warmupCycles uint64) *Stats {
	s := &Stats{
		warmupCycles: warmupCycles,
		flitsInjectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "garnet_flits_injected_total",
			Help: "Total flits injected by network interfaces",
		}),
		flitsEjectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "garnet_flits_ejected_total",
			Help: "Total flits ejected by network interfaces",
		}),
		bubbleSwapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "garnet_bubble_swaps_total",
			Help: "Total critical-bubble deflection swaps performed",
		}),
		networkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "garnet_network_latency_cycles",
			Help:    "End-to-end flit latency in cycles",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
		}),
	}
	return s
}

// Registry returns a fresh prometheus.Registry with this Stats' collectors
// registered, for callers that want to serve /metrics.
func (s *Stats) Registry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(s.flitsInjectedTotal, s.flitsEjectedTotal, s.bubbleSwapsTotal, s.networkLatency)
	return r
}

func (s *Stats) isWarmedUp(cycle uint64) bool {
	return cycle >= s.warmupCycles
}

// RecordInjection counts one flit injected at the given cycle.
func (s *Stats) RecordInjection(cycle uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isWarmedUp(cycle) {
		return
	}
	s.flitsInjected++
	s.flitsInjectedTotal.Inc()
}

// RecordEjection counts one flit ejected at the given cycle and records its
// end-to-end latency (ejectCycle - f.NetworkEntryTime).
func (s *Stats) RecordEjection(f *Flit, ejectCycle uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isWarmedUp(ejectCycle) {
		return
	}
	s.flitsEjected++
	s.flitsEjectedTotal.Inc()
	latency := float64(ejectCycle - f.NetworkEntryTime)
	s.networkLatency.Observe(latency)
	s.latencySamples = append(s.latencySamples, latency)
}

// RecordBufferRead counts one VC dequeue.
func (s *Stats) RecordBufferRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bufferReads++
}

// RecordBufferWrite counts one VC enqueue.
func (s *Stats) RecordBufferWrite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bufferWrites++
}

// RecordCrossbarActivity counts one CrossbarSwitch flit movement.
func (s *Stats) RecordCrossbarActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crossbarActivity++
}

// RecordInputArbiterActivity counts one stage-1 SwitchAllocator grant.
func (s *Stats) RecordInputArbiterActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swInputArbiterActivity++
}

// RecordOutputArbiterActivity counts one stage-2 SwitchAllocator grant.
func (s *Stats) RecordOutputArbiterActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swOutputArbiterActivity++
}

// RecordBubbleSwizzle counts one SwizzleSwap migration (case 1 or case 2).
func (s *Stats) RecordBubbleSwizzle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numBubbleSwizzles++
}

// RecordBubbleSwap counts one critical-bubble deflection swap, and — when
// routed is true — also counts it as a "mutual routing" swap (spec.md
// §4.8, §8: num_routed_bubbleSwaps + num_bubbleSwaps only ever increase).
func (s *Stats) RecordBubbleSwap(routed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numBubbleSwaps++
	s.bubbleSwapsTotal.Inc()
	if routed {
		s.numRoutedBubbleSwaps++
	}
}

// RecordInvariantWarning counts a downgraded invariant violation when
// Config.StrictInvariants is false (spec.md §9).
func (s *Stats) RecordInvariantWarning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invariantWarnings++
}

// Snapshot is a point-in-time, immutable copy of the counters in Stats.
type Snapshot struct {
	FlitsInjected           int64
	FlitsEjected            int64
	BufferReads             int64
	BufferWrites            int64
	CrossbarActivity        int64
	SwInputArbiterActivity  int64
	SwOutputArbiterActivity int64
	NumBubbleSwizzles       int64
	NumBubbleSwaps          int64
	NumRoutedBubbleSwaps    int64
	InvariantWarnings       int64
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		FlitsInjected:           s.flitsInjected,
		FlitsEjected:            s.flitsEjected,
		BufferReads:             s.bufferReads,
		BufferWrites:            s.bufferWrites,
		CrossbarActivity:        s.crossbarActivity,
		SwInputArbiterActivity:  s.swInputArbiterActivity,
		SwOutputArbiterActivity: s.swOutputArbiterActivity,
		NumBubbleSwizzles:       s.numBubbleSwizzles,
		NumBubbleSwaps:          s.numBubbleSwaps,
		NumRoutedBubbleSwaps:    s.numRoutedBubbleSwaps,
		InvariantWarnings:       s.invariantWarnings,
	}
}

// LatencySummary computes p50/p95/p99/mean over the recorded per-flit
// network latency samples using montanaflynn/stats.
func (s *Stats) LatencySummary() (p50, p95, p99, mean float64, err error) {
	s.mu.Lock()
	samples := append([]float64(nil), s.latencySamples...)
	s.mu.Unlock()

	if len(samples) == 0 {
		return 0, 0, 0, 0, nil
	}
	data := stats.LoadRawData(samples)
	if p50, err = stats.Percentile(data, 50); err != nil {
		return 0, 0, 0, 0, err
	}
	if p95, err = stats.Percentile(data, 95); err != nil {
		return 0, 0, 0, 0, err
	}
	if p99, err = stats.Percentile(data, 99); err != nil {
		return 0, 0, 0, 0, err
	}
	if mean, err = stats.Mean(data); err != nil {
		return 0, 0, 0, 0, err
	}
	return p50, p95, p99, mean, nil
}
