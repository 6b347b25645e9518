package garnet

//
// One-cycle delay lines: NetworkLink and CreditLink
//

// Consumer is a tick sink: something a [Scheduler] can wake up on a given
// cycle (spec.md §6).
type Consumer interface {
	// Wakeup is invoked by the [Scheduler] for the given cycle.
	Wakeup(cycle uint64)
}

// NetworkLink is a one-cycle delay line holding at most one in-flight flit
// at a time, per spec.md §4.1. The zero value is invalid; use
// [NewNetworkLink].
type NetworkLink struct {
	// latency is the number of cycles a flit takes to traverse this link;
	// 1 by default, matching spec.md's "one-cycle delay line".
	latency uint64

	// pending holds a flit in flight plus the cycle it becomes visible.
	pending  *Flit
	readyAt  uint64
	hasFlit  bool
	consumer Consumer
	scheduler Scheduler
}

// NewNetworkLink creates a [NetworkLink] with the given latency (in
// cycles; must be >= 1).
func NewNetworkLink(latency uint64, scheduler Scheduler) *NetworkLink {
	if latency == 0 {
		latency = 1
	}
	return &NetworkLink{
		latency:   latency,
		scheduler: scheduler,
	}
}

// SetLinkConsumer registers the [Consumer] to wake up when a flit arrives.
func (l *NetworkLink) SetLinkConsumer(c Consumer) {
	l.consumer = c
}

// InsertFlit writes a flit onto the link at the given cycle. The flit
// becomes ready for IsReady/PopFlit at cycle+latency. Schedules the
// consumer's wakeup for that cycle, mirroring the teacher's
// consumer-driven link callback design (spec.md §4.1, §9).
func (l *NetworkLink) InsertFlit(f *Flit, cycle uint64) {
	l.pending = f
	l.readyAt = cycle + l.latency
	l.hasFlit = true
	if l.consumer != nil && l.scheduler != nil {
		l.scheduler.ScheduleWakeup(l.consumer, l.readyAt)
	}
}

// IsReady reports whether a flit has arrived by the given cycle.
func (l *NetworkLink) IsReady(cycle uint64) bool {
	return l.hasFlit && cycle >= l.readyAt
}

// PopFlit removes and returns the in-flight flit. Callers must check
// IsReady first.
func (l *NetworkLink) PopFlit() *Flit {
	f := l.pending
	l.pending = nil
	l.hasFlit = false
	return f
}

// PeekFlit returns the in-flight flit without removing it, or nil.
func (l *NetworkLink) PeekFlit() *Flit {
	return l.pending
}

// CreditLink is structurally identical to [NetworkLink] but carries
// [Credit]s upstream (spec.md §4.1).
type CreditLink struct {
	latency   uint64
	pending   *Credit
	readyAt   uint64
	hasCredit bool
	consumer  Consumer
	scheduler Scheduler
}

// NewCreditLink creates a [CreditLink] with the given latency.
func NewCreditLink(latency uint64, scheduler Scheduler) *CreditLink {
	if latency == 0 {
		latency = 1
	}
	return &CreditLink{
		latency:   latency,
		scheduler: scheduler,
	}
}

// SetLinkConsumer registers the [Consumer] to wake up when a credit arrives.
func (l *CreditLink) SetLinkConsumer(c Consumer) {
	l.consumer = c
}

// InsertCredit writes a credit onto the link at the given cycle.
func (l *CreditLink) InsertCredit(c *Credit, cycle uint64) {
	l.pending = c
	l.readyAt = cycle + l.latency
	l.hasCredit = true
	if l.consumer != nil && l.scheduler != nil {
		l.scheduler.ScheduleWakeup(l.consumer, l.readyAt)
	}
}

// IsReady reports whether a credit has arrived by the given cycle.
func (l *CreditLink) IsReady(cycle uint64) bool {
	return l.hasCredit && cycle >= l.readyAt
}

// PopCredit removes and returns the in-flight credit. Callers must check
// IsReady first.
func (l *CreditLink) PopCredit() *Credit {
	c := l.pending
	l.pending = nil
	l.hasCredit = false
	return c
}
