package garnet

//
// InputUnit: per-port VC ownership and credit emission
//

// InputUnit holds one [VirtualChannel] per VC for a single input port, plus
// a per-VC route/outport latch and a credit-out queue (spec.md §3, §4.2).
// The zero value is invalid; use [NewInputUnit].
type InputUnit struct {
	portNum   int
	direction Direction

	vcs []*VirtualChannel

	// outportLatch[vc] is the outport decided for the HEAD flit currently
	// occupying vc; BODY/TAIL flits reuse it without recomputing route.
	outportLatch []int
	// outDirnLatch mirrors outportLatch for the decided direction.
	outDirnLatch []Direction

	inLink     *NetworkLink
	creditLink *CreditLink

	stats *Stats
}

// NewInputUnit creates an [InputUnit] with one [VirtualChannel] per entry
// in vcCapacities (vcCapacities[vc] is that VC's buffer capacity).
func NewInputUnit(portNum int, direction Direction, vcCapacities []int, stats *Stats) *InputUnit {
	u := &InputUnit{
		portNum:      portNum,
		direction:    direction,
		vcs:          make([]*VirtualChannel, len(vcCapacities)),
		outportLatch: make([]int, len(vcCapacities)),
		outDirnLatch: make([]Direction, len(vcCapacities)),
		stats:        stats,
	}
	for i, cap := range vcCapacities {
		u.vcs[i] = NewVirtualChannel(cap)
		u.outportLatch[i] = -1
		u.outDirnLatch[i] = DirUnknown
	}
	return u
}

// SetInLink registers the upstream [NetworkLink] this unit sinks.
func (u *InputUnit) SetInLink(l *NetworkLink) {
	u.inLink = l
	l.SetLinkConsumer(u)
}

// SetCreditLink registers the [CreditLink] this unit sources credits on.
func (u *InputUnit) SetCreditLink(l *CreditLink) {
	u.creditLink = l
}

// Direction returns this port's direction.
func (u *InputUnit) Direction() Direction {
	return u.direction
}

// PortNum returns this port's index.
func (u *InputUnit) PortNum() int {
	return u.portNum
}

// NumVCs returns the number of VCs this port owns.
func (u *InputUnit) NumVCs() int {
	return len(u.vcs)
}

// VC returns the [VirtualChannel] at index vc.
func (u *InputUnit) VC(vc int) *VirtualChannel {
	return u.vcs[vc]
}

// VCIsEmpty reports whether vc holds no flits.
func (u *InputUnit) VCIsEmpty(vc int) bool {
	return u.vcs[vc].IsEmpty()
}

// GetTopFlit removes and returns the head-of-line flit of vc.
func (u *InputUnit) GetTopFlit(vc int) *Flit {
	f := u.vcs[vc].Dequeue()
	if f != nil && u.stats != nil {
		u.stats.RecordBufferRead()
	}
	return f
}

// PeekTopFlit returns the head-of-line flit of vc without removing it, for
// SwizzleSwap (spec.md §4.2).
func (u *InputUnit) PeekTopFlit(vc int) *Flit {
	return u.vcs[vc].Peek()
}

// InsertFlit inserts f directly into vc, for SwizzleSwap (spec.md §4.2).
func (u *InputUnit) InsertFlit(vc int, f *Flit) bool {
	ok := u.vcs[vc].Enqueue(f)
	if ok && u.stats != nil {
		u.stats.RecordBufferWrite()
	}
	return ok
}

// OutportLatch returns the outport decided for vc's current packet, or -1.
func (u *InputUnit) OutportLatch(vc int) int {
	return u.outportLatch[vc]
}

// OutDirnLatch returns the outport direction decided for vc's current packet.
func (u *InputUnit) OutDirnLatch(vc int) Direction {
	return u.outDirnLatch[vc]
}

// SetOutportLatch records the outport/direction decided by route_compute
// for vc's current packet.
func (u *InputUnit) SetOutportLatch(vc int, outport int, dirn Direction) {
	u.outportLatch[vc] = outport
	u.outDirnLatch[vc] = dirn
}

// ClearOutportLatch resets vc's latch once its TAIL flit has traversed.
func (u *InputUnit) ClearOutportLatch(vc int) {
	u.outportLatch[vc] = -1
	u.outDirnLatch[vc] = DirUnknown
}

// SetVCActive transitions vc to ACTIVE at the given cycle.
func (u *InputUnit) SetVCActive(vc int, cycle uint64) {
	u.vcs[vc].SetState(VCActive, cycle)
}

// SetVCIdle transitions vc to IDLE at the given cycle and clears its latch.
func (u *InputUnit) SetVCIdle(vc int, cycle uint64) {
	u.vcs[vc].SetState(VCIdle, cycle)
	u.ClearOutportLatch(vc)
}

// Wakeup implements Consumer: if the inbound NetworkLink is ready, pop the
// flit, enqueue it into its declared VC, and transition VC_AB/ACTIVE
// (spec.md §4.2). Credits are emitted when a flit LEAVES a VC (by the
// SwitchAllocator), never here on enqueue.
func (u *InputUnit) Wakeup(cycle uint64) {
	if u.inLink == nil || !u.inLink.IsReady(cycle) {
		return
	}
	f := u.inLink.PopFlit()
	if f == nil {
		return
	}
	vc := f.VC
	if !u.vcs[vc].Enqueue(f) {
		// Benign contention: the VC is full. In a correctly credited
		// network this cannot happen; drop is not modeled here because
		// spec.md treats "no flit lost" as an invariant upheld by credit
		// back-pressure, not by this unit.
		return
	}
	if u.stats != nil {
		u.stats.RecordBufferWrite()
	}
	f.EnqueueTime = cycle
	if f.IsHead() {
		u.vcs[vc].SetState(VCAllocBusy, cycle)
	}
}

var _ Consumer = &InputUnit{}
