package garnet

//
// OutputUnit: per-VC downstream state and credit accounting
//

// outputVCState is one OutputUnit-VC's bookkeeping (spec.md §4.3).
type outputVCState struct {
	state           VCState
	creditCount     int
	critical        bool
	ownerInputPort  int
	ownerInputVC    int
	lastChangeCycle uint64
}

// OutputUnit tracks per-VC downstream state (free/not, critical/not, credit
// count, current owner input/VC) and sources a [NetworkLink] (spec.md §3,
// §4.3). The zero value is invalid; use [NewOutputUnit].
type OutputUnit struct {
	portNum   int
	direction Direction

	vcs []*outputVCState

	outLink    *NetworkLink
	creditLink *CreditLink

	// outQueue holds flits the CrossbarSwitch has committed this cycle,
	// drained onto outLink by the owning Router after CrossbarSwitch.Wakeup.
	outQueue []*Flit

	stats *Stats
}

// NewOutputUnit creates an [OutputUnit] with numVCs VCs, each initialized
// with the given per-VC buffer capacity as its starting credit count (an
// OutputUnit's credit count mirrors the downstream VC's free slots, which
// at simulation start equals its full capacity).
func NewOutputUnit(portNum int, direction Direction, vcCapacities []int, stats *Stats) *OutputUnit {
	u := &OutputUnit{
		portNum:   portNum,
		direction: direction,
		vcs:       make([]*outputVCState, len(vcCapacities)),
		stats:     stats,
	}
	for i, cap := range vcCapacities {
		u.vcs[i] = &outputVCState{
			state:          VCIdle,
			creditCount:    cap,
			ownerInputPort: -1,
			ownerInputVC:   -1,
		}
	}
	return u
}

// SetOutLink registers the downstream [NetworkLink] this unit sources.
func (u *OutputUnit) SetOutLink(l *NetworkLink) {
	u.outLink = l
}

// SetCreditLink registers the [CreditLink] this unit sinks credits on.
func (u *OutputUnit) SetCreditLink(l *CreditLink) {
	u.creditLink = l
	l.SetLinkConsumer(u)
}

// Direction returns this port's direction.
func (u *OutputUnit) Direction() Direction {
	return u.direction
}

// PortNum returns this port's index.
func (u *OutputUnit) PortNum() int {
	return u.portNum
}

// NumVCs returns the number of VCs this port owns.
func (u *OutputUnit) NumVCs() int {
	return len(u.vcs)
}

// HasCredit reports whether vc has at least one free downstream slot.
func (u *OutputUnit) HasCredit(vc int) bool {
	return u.vcs[vc].creditCount > 0
}

// CreditCount returns vc's current credit count.
func (u *OutputUnit) CreditCount(vc int) int {
	return u.vcs[vc].creditCount
}

// IsVCIdle reports whether vc is IDLE (unallocated).
func (u *OutputUnit) IsVCIdle(vc int, cycle uint64) bool {
	return u.vcs[vc].state == VCIdle
}

// VCState returns vc's current allocation state.
func (u *OutputUnit) VCState(vc int) VCState {
	return u.vcs[vc].state
}

// SelectFreeVC returns the index of an IDLE, non-critical VC among [0,
// numVCs), or -1 if none is free. Never selects a VC marked critical: the
// never-grant rule that maintains the critical-VC credit invariant
// (spec.md §9 Open Question 2, DESIGN.md).
func (u *OutputUnit) SelectFreeVC() int {
	for i, s := range u.vcs {
		if s.state == VCIdle && !s.critical {
			return i
		}
	}
	return -1
}

// SetVCState transitions vc to state at the given cycle.
func (u *OutputUnit) SetVCState(state VCState, vc int, cycle uint64) {
	u.vcs[vc].state = state
	u.vcs[vc].lastChangeCycle = cycle
}

// IncrementCredit adds one free downstream slot to vc's credit count.
func (u *OutputUnit) IncrementCredit(vc int) {
	u.vcs[vc].creditCount++
}

// DecrementCredit removes one free downstream slot from vc's credit count.
func (u *OutputUnit) DecrementCredit(vc int) {
	if u.vcs[vc].creditCount > 0 {
		u.vcs[vc].creditCount--
	}
}

// SetCreditCount forces vc's credit count, used to seed the critical VC's
// credit_count=1 invariant (spec.md §3).
func (u *OutputUnit) SetCreditCount(vc int, count int) {
	u.vcs[vc].creditCount = count
}

// IsCritical reports whether vc is the SwizzleSwap-protected VC.
func (u *OutputUnit) IsCritical(vc int) bool {
	return u.vcs[vc].critical
}

// SetVCCritical sets or clears vc's critical flag. At most one VC per
// OutputUnit may be critical at a time (spec.md §3 invariant c); callers
// (Router.SwapInport) are responsible for clearing the old one first.
func (u *OutputUnit) SetVCCritical(vc int, critical bool) {
	u.vcs[vc].critical = critical
}

// Owner returns the (inputPort, inputVC) currently allocated to vc, or
// (-1, -1) if vc is unallocated.
func (u *OutputUnit) Owner(vc int) (int, int) {
	return u.vcs[vc].ownerInputPort, u.vcs[vc].ownerInputVC
}

// SetOwner records which upstream (inputPort, inputVC) holds vc's allocation.
func (u *OutputUnit) SetOwner(vc int, inputPort, inputVC int) {
	u.vcs[vc].ownerInputPort = inputPort
	u.vcs[vc].ownerInputVC = inputVC
}

// EnqueueOutgoing appends a flit the CrossbarSwitch has routed to this
// output port; Router drains outQueue onto outLink after CrossbarSwitch.Wakeup.
func (u *OutputUnit) EnqueueOutgoing(f *Flit) {
	u.outQueue = append(u.outQueue, f)
	if u.stats != nil {
		u.stats.RecordCrossbarActivity()
	}
}

// FlushOutgoing writes every queued flit onto outLink at the given cycle,
// in the order the CrossbarSwitch wrote them (spec.md §4.3, §4.6).
func (u *OutputUnit) FlushOutgoing(cycle uint64) {
	for _, f := range u.outQueue {
		u.outLink.InsertFlit(f, cycle)
	}
	u.outQueue = u.outQueue[:0]
}

// Wakeup implements Consumer: drains any arrived [Credit]; a credit with
// IsFree=true sets the VC IDLE and adds a credit, otherwise just adds a
// credit (spec.md §4.3).
func (u *OutputUnit) Wakeup(cycle uint64) {
	if u.creditLink == nil || !u.creditLink.IsReady(cycle) {
		return
	}
	c := u.creditLink.PopCredit()
	if c == nil {
		return
	}
	u.IncrementCredit(c.VC)
	if c.IsFree {
		u.SetVCState(VCIdle, c.VC, cycle)
		u.vcs[c.VC].ownerInputPort = -1
		u.vcs[c.VC].ownerInputVC = -1
	}
}

var _ Consumer = &OutputUnit{}
