package garnet

//
// Router: per-cycle pipeline, SwizzleSwap, Critical-Bubble Deflection
//
// Grounded on original_source/Router.cc's wakeup() (assert-then-pipeline
// ordering) and its addInPort/addOutPort shape, re-expressed as a
// synchronous Consumer.Wakeup(cycle) per spec.md §5, and generalized from
// the gem5 stub (swapInport() that always returns 0) into the full
// MINIMAL-policy implementation spec.md §4.8 describes.
//

import (
	"fmt"
	"math/rand"
)

// criticalInportRecord is the per-router critical-inport bookkeeping
// (spec.md §3). id == -1 means no critical inport has been established yet.
type criticalInportRecord struct {
	id        int
	direction Direction
}

// Router composes the pipeline stages and owns the SwizzleSwap and
// Critical-Bubble Deflection extensions (spec.md §2, §4.7-4.9). The zero
// value is invalid; use [NewRouter].
type Router struct {
	id int

	config    *Config
	scheduler Scheduler
	stats     *Stats
	logger    Logger
	network   *Network

	inputUnits  []*InputUnit
	outputUnits []*OutputUnit
	routingUnit *RoutingUnit
	swAlloc     *SwitchAllocator
	crossbar    *CrossbarSwitch

	criticalInport criticalInportRecord
	criticalActive bool

	routerOccupancy int

	rng *rand.Rand
}

// NewRouter creates a [Router] with the given id, in a mesh/torus of
// numRows x numCols (numRows <= 0 for a non-mesh topology such as a ring).
// rngSeed makes SwizzleSwap's random port choice reproducible across runs
// with the same seed, unlike the teacher's wall-clock-seeded
// linkLossesManager in link.go.
func NewRouter(id, numRows, numCols int, torus bool, config *Config, scheduler Scheduler, stats *Stats, logger Logger, rngSeed int64) *Router {
	r := &Router{
		id:             id,
		config:         config,
		scheduler:      scheduler,
		stats:          stats,
		logger:         logger,
		routingUnit:    NewRoutingUnit(id, numRows, numCols, torus, config.RoutingAlgorithm),
		criticalInport: criticalInportRecord{id: -1, direction: DirUnknown},
		rng:            rand.New(rand.NewSource(rngSeed)),
	}
	r.swAlloc = NewSwitchAllocator(r)
	r.crossbar = NewCrossbarSwitch(r)
	return r
}

// ID returns this router's id.
func (r *Router) ID() int {
	return r.id
}

// attachNetwork gives this router the neighbor-lookup capability described
// by spec.md §9: a router reaches its neighbor via network.RouterByID(id),
// never a back-pointer.
func (r *Router) attachNetwork(n *Network) {
	r.network = n
}

// vcCapacitiesFromConfig lays VCs out as [ctrl vnet VCs][data vnet VCs],
// each sized per Config.BuffersPerCtrlVC / BuffersPerDataVC (spec.md §3).
func vcCapacitiesFromConfig(c *Config) []int {
	caps := make([]int, 0, c.VCsPerVnet*2)
	for i := 0; i < c.VCsPerVnet; i++ {
		caps = append(caps, c.BuffersPerCtrlVC)
	}
	for i := 0; i < c.VCsPerVnet; i++ {
		caps = append(caps, c.BuffersPerDataVC)
	}
	return caps
}

// AddInPort creates an InputUnit for dirn, wires its links, and registers
// it with the RoutingUnit (spec.md §4.7, Router.cc::addInPort).
func (r *Router) AddInPort(dirn Direction, inLink *NetworkLink, creditLink *CreditLink) int {
	portNum := len(r.inputUnits)
	iu := NewInputUnit(portNum, dirn, vcCapacitiesFromConfig(r.config), r.stats)
	iu.SetInLink(inLink)
	iu.SetCreditLink(creditLink)
	r.inputUnits = append(r.inputUnits, iu)
	r.routingUnit.AddInDirection(dirn, portNum)
	return portNum
}

// AddOutPort creates an OutputUnit for dirn, wires its links, and registers
// its routing table entry (spec.md §4.7, Router.cc::addOutPort).
func (r *Router) AddOutPort(dirn Direction, outLink *NetworkLink, creditLink *CreditLink, destinations map[int]bool, weight int) int {
	portNum := len(r.outputUnits)
	ou := NewOutputUnit(portNum, dirn, vcCapacitiesFromConfig(r.config), r.stats)
	ou.SetOutLink(outLink)
	ou.SetCreditLink(creditLink)
	r.outputUnits = append(r.outputUnits, ou)
	r.routingUnit.AddOutDirection(dirn, portNum)
	if destinations != nil {
		r.routingUnit.AddRoute(portNum, destinations, weight)
	}
	return portNum
}

// InputUnitAt returns the InputUnit at the given port index.
func (r *Router) InputUnitAt(port int) *InputUnit {
	return r.inputUnits[port]
}

// OutputUnitAt returns the OutputUnit at the given port index.
func (r *Router) OutputUnitAt(port int) *OutputUnit {
	return r.outputUnits[port]
}

// NumInputPorts returns the number of input ports this router owns.
func (r *Router) NumInputPorts() int {
	return len(r.inputUnits)
}

// RoutingUnit returns this router's RoutingUnit.
func (r *Router) RoutingUnit() *RoutingUnit {
	return r.routingUnit
}

// RouterOccupancy returns the non-Local input port occupancy computed at
// the end of the last Wakeup (spec.md §4.7 step 6).
func (r *Router) RouterOccupancy() int {
	return r.routerOccupancy
}

// CriticalInportID returns the currently critical input port's index, or
// -1 if none has been established.
func (r *Router) CriticalInportID() int {
	return r.criticalInport.id
}

// InitCritical designates portIdx as the initial critical inport and marks
// its upstream OutputUnit-VC0 critical with credit_count=1, establishing
// the invariant spec.md §3 requires before SwizzleSwap runs. Must be called
// once per router after the whole Network is wired, before the first Wakeup.
func (r *Router) InitCritical(portIdx int) error {
	dirn := r.inputUnits[portIdx].Direction()
	if dirn == DirLocal {
		return ErrLocalIsNotARoute
	}
	ou, vc := r.upstreamOutputUnit(portIdx)
	if ou == nil {
		return fmt.Errorf("garnet: router %d has no upstream neighbor in direction %s", r.id, dirn)
	}
	ou.SetVCCritical(vc, true)
	ou.SetCreditCount(vc, 1)
	ou.SetVCState(VCIdle, vc, 0)
	r.criticalInport = criticalInportRecord{id: portIdx, direction: dirn}
	r.criticalActive = true
	return nil
}

// upstreamOutputUnit returns the neighbor router's OutputUnit (and its VC0)
// that mirrors the given local inport, per spec.md §4.4's direction maps
// and §9's network.RouterByID(id) neighbor-lookup convention.
func (r *Router) upstreamOutputUnit(inportIdx int) (*OutputUnit, int) {
	dirn := r.inputUnits[inportIdx].Direction()
	if r.network == nil || !dirn.IsLinkDirection() {
		return nil, 0
	}
	neighborID := r.network.Neighbor(r.id, dirn)
	if neighborID < 0 {
		return nil, 0
	}
	neighbor := r.network.RouterByID(neighborID)
	if neighbor == nil {
		return nil, 0
	}
	mirror := mirrorDirection(dirn)
	outIdx := neighbor.routingUnit.OutportForDirection(mirror)
	if outIdx < 0 {
		return nil, 0
	}
	return neighbor.outputUnits[outIdx], 0
}

// countNonLocalOccupancy counts non-Local input ports whose VC0 is
// non-empty (spec.md §4.8 step 3's "router_occupancy").
func (r *Router) countNonLocalOccupancy() int {
	n := 0
	for _, iu := range r.inputUnits {
		if iu.Direction() == DirLocal {
			continue
		}
		if !iu.VCIsEmpty(0) {
			n++
		}
	}
	return n
}

// fatalOrInvariant aborts the simulation (StrictInvariants=true, the debug
// build per spec.md §9) or counts a warning and continues
// (StrictInvariants=false, the production build) for a fatal invariant
// violation per spec.md §7.
func (r *Router) fatalOrInvariant(err *InvariantError) {
	if r.config.StrictInvariants {
		panic(err)
	}
	if r.stats != nil {
		r.stats.RecordInvariantWarning()
	}
	if r.logger != nil {
		r.logger.Warnf("garnet: %s", err.Error())
	}
}

// assertSwizzleInvariants checks spec.md §3's critical-inport record
// invariants (step 1 of spec.md §4.8).
func (r *Router) assertSwizzleInvariants(cycle uint64) {
	if !r.criticalActive {
		return
	}
	iu := r.inputUnits[r.criticalInport.id]
	if !iu.VCIsEmpty(0) {
		r.fatalOrInvariant(&InvariantError{Err: ErrCriticalInportNotEmpty, RouterID: r.id, InportID: r.criticalInport.id, Cycle: cycle})
	}
	numCritical := 0
	for i, in := range r.inputUnits {
		if in.Direction() == DirLocal {
			continue
		}
		if uo, uvc := r.upstreamOutputUnit(i); uo != nil && uo.IsCritical(uvc) {
			numCritical++
		}
	}
	ou, vc := r.upstreamOutputUnit(r.criticalInport.id)
	if ou == nil {
		return
	}
	if numCritical != 1 || !ou.IsCritical(vc) {
		r.fatalOrInvariant(&InvariantError{Err: ErrMultipleCriticalVCs, RouterID: r.id, InportID: r.criticalInport.id, Cycle: cycle})
	}
	if ou.CreditCount(vc) != 1 {
		r.fatalOrInvariant(&InvariantError{Err: ErrCriticalCreditMismatch, RouterID: r.id, InportID: r.criticalInport.id, Cycle: cycle})
	}
}

// routeCompute runs route_compute once per packet: for every VC whose
// head-of-line flit has no latched outport yet (the HEAD/HEAD_TAIL flit
// that just transitioned to VC_AB), resolve its outport and latch it.
// BODY/TAIL flits behind an already-latched HEAD reuse the latch
// untouched (spec.md §3, §4.4).
func (r *Router) routeCompute(cycle uint64) {
	for i, iu := range r.inputUnits {
		for vc := 0; vc < iu.NumVCs(); vc++ {
			if iu.OutportLatch(vc) >= 0 {
				continue
			}
			f := iu.PeekTopFlit(vc)
			if f == nil {
				continue
			}
			outport, err := r.routingUnit.OutportCompute(f.Route, i, iu.Direction())
			if err != nil {
				r.fatalOrInvariant(&InvariantError{Err: err, RouterID: r.id, InportID: i, Cycle: cycle})
				continue
			}
			f.Outport = outport
			f.OutDirection = r.routingUnit.OutportDirection(outport)
			iu.SetOutportLatch(vc, outport, f.OutDirection)
		}
	}
}

// Wakeup drives one cycle of the router pipeline: SwizzleSwap invariant
// checks, InputUnit drains, route computation, SwizzleSwap swap and
// Critical-Bubble Deflection, OutputUnit credit drains, switch allocation,
// crossbar traversal, outgoing link writes, occupancy recompute (spec.md §4.7).
func (r *Router) Wakeup(cycle uint64) {
	if r.config.SwizzleSwap && r.config.Policy == PolicyMinimal {
		r.assertSwizzleInvariants(cycle)
	}

	for _, iu := range r.inputUnits {
		iu.Wakeup(cycle)
	}

	r.routeCompute(cycle)

	if r.config.SwizzleSwap {
		switch r.config.Policy {
		case PolicyMinimal:
			r.SwapInport(cycle)
			r.chkCriticalDeflect(cycle)
		case PolicyNonMinimal:
			panic(fmt.Errorf("%w: NON_MINIMAL_ deflection policy", ErrNotImplemented))
		}
	}

	for _, ou := range r.outputUnits {
		ou.Wakeup(cycle)
	}

	r.swAlloc.Wakeup(cycle)
	r.crossbar.Wakeup(cycle)

	for _, ou := range r.outputUnits {
		ou.FlushOutgoing(cycle)
	}

	r.routerOccupancy = r.countNonLocalOccupancy()
}

var _ Consumer = &Router{}

// nonCriticalNonLocalPorts returns the indices of every input port that is
// neither Local nor the current critical inport.
func (r *Router) nonCriticalNonLocalPorts() []int {
	var ports []int
	for i, iu := range r.inputUnits {
		if iu.Direction() == DirLocal || i == r.criticalInport.id {
			continue
		}
		ports = append(ports, i)
	}
	return ports
}

// SwapInport implements the SwizzleSwap "swizzle" step (spec.md §4.8 step
// 2): pick one non-Local, non-critical input port at random (bounded
// retry) and either migrate criticality to it (if empty and its upstream
// is IDLE) or perform a critical_swap with it (if full).
func (r *Router) SwapInport(cycle uint64) SwapResult {
	if !r.criticalActive {
		return SwapNone
	}
	candidates := r.nonCriticalNonLocalPorts()
	if len(candidates) == 0 {
		return SwapNone
	}
	if r.countNonLocalOccupancy() == 0 {
		// Boundary case (spec.md §8): a completely empty router returns 0
		// immediately rather than performing a no-op shuffle.
		return SwapNone
	}

	maxRetries := r.config.SwizzleSwapMaxRetries
	for attempt := 0; attempt < maxRetries; attempt++ {
		chosen := candidates[r.rng.Intn(len(candidates))]
		if r.inputUnits[chosen].VCIsEmpty(0) {
			if !r.upstreamVCIdle(chosen) {
				continue
			}
			r.migrateCriticalEmpty(chosen)
			return SwapEmptyPort
		}
		r.criticalSwapFull(chosen, cycle)
		return SwapFullPort
	}
	return SwapNone
}

// upstreamVCIdle reports whether the upstream OutputUnit-VC0 feeding
// inportIdx is IDLE (no credit currently in flight for it).
func (r *Router) upstreamVCIdle(inportIdx int) bool {
	ou, vc := r.upstreamOutputUnit(inportIdx)
	if ou == nil {
		return false
	}
	return ou.VCState(vc) == VCIdle
}

// migrateCriticalEmpty implements SwizzleSwap case 1 (spec.md §4.8,
// scenario 3): chosen is empty, so criticality migrates to it with no flit
// movement.
func (r *Router) migrateCriticalEmpty(chosen int) {
	oldID := r.criticalInport.id

	if oldOU, oldVC := r.upstreamOutputUnit(oldID); oldOU != nil {
		oldOU.SetVCCritical(oldVC, false)
	}
	if newOU, newVC := r.upstreamOutputUnit(chosen); newOU != nil {
		newOU.SetVCCritical(newVC, true)
	}

	r.criticalInport = criticalInportRecord{id: chosen, direction: r.inputUnits[chosen].Direction()}
	if r.stats != nil {
		r.stats.RecordBubbleSwizzle()
	}
}

// criticalSwapFull implements SwizzleSwap case 2 (spec.md §4.8, scenario
// 4): chosen holds a flit, which moves into the old critical VC0; chosen
// becomes the new critical inport.
func (r *Router) criticalSwapFull(chosen int, cycle uint64) {
	oldID := r.criticalInport.id

	f := r.inputUnits[chosen].GetTopFlit(0)
	if f == nil {
		return
	}
	r.inputUnits[oldID].InsertFlit(0, f)
	r.inputUnits[oldID].VC(0).SetState(VCActive, cycle)
	r.inputUnits[chosen].VC(0).SetState(VCIdle, cycle)

	if newOU, newVC := r.upstreamOutputUnit(chosen); newOU != nil {
		newOU.IncrementCredit(newVC)
		newOU.SetVCState(VCIdle, newVC, cycle)
		newOU.SetVCCritical(newVC, true)
	}
	if oldOU, oldVC := r.upstreamOutputUnit(oldID); oldOU != nil {
		oldOU.DecrementCredit(oldVC)
		oldOU.SetVCState(VCActive, oldVC, cycle)
		oldOU.SetVCCritical(oldVC, false)
	}

	r.criticalInport = criticalInportRecord{id: chosen, direction: r.inputUnits[chosen].Direction()}

	r.recomputeRoute(oldID, f)

	if r.stats != nil {
		r.stats.RecordBubbleSwizzle()
	}
}

// recomputeRoute re-runs route_compute for f now that it sits behind
// inportIdx, and updates its latched Outport/OutDirection (spec.md §3, §4.8
// scenario 4: "F's outport is re-computed from its new inport").
func (r *Router) recomputeRoute(inportIdx int, f *Flit) {
	dirn := r.inputUnits[inportIdx].Direction()
	outport, err := r.routingUnit.OutportCompute(f.Route, inportIdx, dirn)
	if err != nil {
		panic(&InvariantError{Err: err, RouterID: r.id, InportID: inportIdx})
	}
	f.Outport = outport
	f.OutDirection = r.routingUnit.OutportDirection(outport)
	r.inputUnits[inportIdx].SetOutportLatch(0, outport, f.OutDirection)
}

// chkCriticalDeflect implements spec.md §4.8 step 3: when this router and
// every non-Local, non-critical neighbor are both at maximum non-critical
// occupancy, invoke bubbleDeflect.
func (r *Router) chkCriticalDeflect(cycle uint64) {
	if r.network == nil {
		return
	}
	maxOccupancy := r.NumInputPorts() - 2
	if maxOccupancy < 0 || r.countNonLocalOccupancy() != maxOccupancy {
		return
	}

	for _, dirn := range []Direction{DirNorth, DirSouth, DirEast, DirWest} {
		if dirn == r.criticalInport.direction {
			continue
		}
		inportIdx := r.routingUnit.InportForDirection(dirn)
		if inportIdx < 0 {
			continue
		}
		neighborID := r.network.Neighbor(r.id, dirn)
		if neighborID < 0 {
			continue
		}
		neighbor := r.network.RouterByID(neighborID)
		if neighbor == nil {
			return
		}
		neighborMax := neighbor.NumInputPorts() - 2
		if neighborMax < 0 || neighbor.countNonLocalOccupancy() != neighborMax {
			return
		}
	}

	r.bubbleDeflect(cycle)
}

// bubbleDeflect implements spec.md §4.8 step 3's exchange: for each full
// non-Local, non-critical local inport, try mutual routing with the
// upstream neighbor first, falling back to any non-Local-destined upstream
// flit.
func (r *Router) bubbleDeflect(cycle uint64) {
	for _, dirn := range []Direction{DirNorth, DirSouth, DirEast, DirWest} {
		if dirn == r.criticalInport.direction {
			continue
		}
		inportIdx := r.routingUnit.InportForDirection(dirn)
		if inportIdx < 0 || r.inputUnits[inportIdx].VCIsEmpty(0) {
			continue
		}
		neighborID := r.network.Neighbor(r.id, dirn)
		if neighborID < 0 {
			continue
		}
		neighbor := r.network.RouterByID(neighborID)
		if neighbor == nil {
			continue
		}
		mirror := mirrorDirection(dirn)

		mutualPort, anyPort := -1, -1
		for _, nIu := range neighbor.inputUnits {
			if nIu.Direction() == DirLocal || nIu.PortNum() == neighbor.criticalInport.id {
				continue
			}
			if nIu.VCIsEmpty(0) {
				continue
			}
			peek := nIu.PeekTopFlit(0)
			if peek.OutDirection == mirror && mutualPort < 0 {
				mutualPort = nIu.PortNum()
			}
			if peek.OutDirection != DirLocal && anyPort < 0 {
				anyPort = nIu.PortNum()
			}
		}

		chosen, routed := mutualPort, true
		if chosen < 0 {
			chosen, routed = anyPort, false
		}
		if chosen < 0 {
			continue
		}

		mine := r.inputUnits[inportIdx].GetTopFlit(0)
		theirs := neighbor.inputUnits[chosen].GetTopFlit(0)
		r.inputUnits[inportIdx].InsertFlit(0, theirs)
		neighbor.inputUnits[chosen].InsertFlit(0, mine)

		r.recomputeRoute(inportIdx, theirs)
		neighbor.recomputeRoute(chosen, mine)

		if r.stats != nil {
			r.stats.RecordBubbleSwap(routed)
		}
	}
}
