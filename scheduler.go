package garnet

//
// Tick scheduler
//
// Grounded on the teacher's linkForwardingState ticker-driven dispatch
// (link.go's shouldSend/onWriteDeadline), re-expressed as an explicit,
// synchronous priority queue per spec.md §5-6: no goroutines, no tickers,
// the caller drives cycles one at a time.
//

import "container/heap"

// Scheduler is the tick-source interface the core depends on (spec.md §6).
type Scheduler interface {
	// ScheduleWakeup arranges for consumer.Wakeup(cycle) to be called when
	// the scheduler reaches cycle.
	ScheduleWakeup(consumer Consumer, cycle uint64)

	// CurrentCycle returns the cycle the scheduler is currently draining.
	CurrentCycle() uint64
}

// wakeupEvent is one scheduled (cycle, consumer) pair.
type wakeupEvent struct {
	cycle    uint64
	seq      uint64
	consumer Consumer
}

// eventHeap is a min-heap of wakeupEvent ordered by cycle, then insertion
// order (seq) to keep same-cycle delivery deterministic.
type eventHeap []*wakeupEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].cycle != h[j].cycle {
		return h[i].cycle < h[j].cycle
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*wakeupEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TickScheduler is the reference [Scheduler] implementation: a priority
// queue of pending wakeups, drained one cycle at a time by [TickScheduler.Run].
// The zero value is invalid; use [NewTickScheduler].
type TickScheduler struct {
	cycle   uint64
	events  eventHeap
	nextSeq uint64
}

// NewTickScheduler creates an empty [TickScheduler] starting at cycle 0.
func NewTickScheduler() *TickScheduler {
	s := &TickScheduler{
		cycle:  0,
		events: eventHeap{},
	}
	heap.Init(&s.events)
	return s
}

// ScheduleWakeup implements Scheduler.
func (s *TickScheduler) ScheduleWakeup(consumer Consumer, cycle uint64) {
	heap.Push(&s.events, &wakeupEvent{cycle: cycle, seq: s.nextSeq, consumer: consumer})
	s.nextSeq++
}

// CurrentCycle implements Scheduler.
func (s *TickScheduler) CurrentCycle() uint64 {
	return s.cycle
}

// Tick advances to the next cycle and wakes up every consumer scheduled for
// it, draining all such consumers before returning (spec.md §5's ordering
// guarantee: effects written through a link's 1-cycle delay become visible
// only at the cycle the scheduler delivers them).
func (s *TickScheduler) Tick() {
	s.cycle++
	for s.events.Len() > 0 && s.events[0].cycle <= s.cycle {
		ev := heap.Pop(&s.events).(*wakeupEvent)
		ev.consumer.Wakeup(ev.cycle)
	}
}

// Run advances the scheduler for the given number of cycles.
func (s *TickScheduler) Run(cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		s.Tick()
	}
}

// Pending reports whether any wakeup remains queued.
func (s *TickScheduler) Pending() bool {
	return s.events.Len() > 0
}
