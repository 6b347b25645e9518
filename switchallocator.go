package garnet

//
// SwitchAllocator: two-stage per-cycle arbiter
//

// saNomination is one input port's stage-1 winner.
type saNomination struct {
	inputPort int
	vc        int
	outport   int
	flit      *Flit
}

// SwitchAllocator is the two-stage per-cycle arbiter described by spec.md
// §4.5: stage 1 picks one VC per input port by round-robin within the
// port; stage 2 resolves output-port contention by round-robin across
// input ports. Round-robin state lives across cycles, bounding starvation.
// The zero value is invalid; use [NewSwitchAllocator].
type SwitchAllocator struct {
	router *Router

	// lastGrantedVC[inputPort] is the VC index granted last time this
	// input port won stage 1, for round-robin fairness.
	lastGrantedVC []int

	// lastGrantedInputPort[outport] is the input port granted last time
	// this output port won stage 2.
	lastGrantedInputPort []int
}

// NewSwitchAllocator creates a [SwitchAllocator] for router.
func NewSwitchAllocator(router *Router) *SwitchAllocator {
	return &SwitchAllocator{
		router:                router,
		lastGrantedVC:         make([]int, len(router.inputUnits)),
		lastGrantedInputPort:  make([]int, len(router.outputUnits)),
	}
}

// Wakeup runs both arbitration stages and applies the winners: decrements
// the granted OutputUnit-VC's credit, hands the flit to the CrossbarSwitch,
// removes it from its InputUnit VC, and emits an upstream credit with
// IsFree set iff the source VC is now empty (spec.md §4.5).
func (a *SwitchAllocator) Wakeup(cycle uint64) {
	// Ports are added to the router after the allocator is created, so the
	// round-robin state grows to cover them here.
	for len(a.lastGrantedVC) < len(a.router.inputUnits) {
		a.lastGrantedVC = append(a.lastGrantedVC, 0)
	}
	for len(a.lastGrantedInputPort) < len(a.router.outputUnits) {
		a.lastGrantedInputPort = append(a.lastGrantedInputPort, 0)
	}
	nominees := a.stageOne(cycle)
	winners := a.stageTwo(nominees)
	for _, w := range winners {
		a.applyWinner(w, cycle)
	}
}

// stageOne nominates at most one VC per input port.
func (a *SwitchAllocator) stageOne(cycle uint64) []*saNomination {
	var nominees []*saNomination
	for inputPort, iu := range a.router.inputUnits {
		if iu.PortNum() == a.router.criticalInport.id && a.router.criticalActive {
			// The critical inport's VC0 must stay empty; never nominate it.
			continue
		}
		numVCs := iu.NumVCs()
		start := (a.lastGrantedVC[inputPort] + 1) % numVCs
		for i := 0; i < numVCs; i++ {
			vc := (start + i) % numVCs
			if iu.PortNum() == a.router.criticalInport.id && vc == 0 && a.router.criticalActive {
				continue
			}
			flit := iu.PeekTopFlit(vc)
			if flit == nil {
				continue
			}
			outport := iu.OutportLatch(vc)
			if outport < 0 {
				continue
			}
			ou := a.router.outputUnits[outport]
			outVC, ok := a.resolveOutVC(iu, ou, vc, flit)
			if !ok {
				continue
			}
			if ou.IsCritical(outVC) {
				// never-grant rule: the critical VC is never allocated new
				// traffic (spec.md §9 Open Question 2).
				continue
			}
			if !ou.HasCredit(outVC) {
				continue
			}
			nominees = append(nominees, &saNomination{
				inputPort: inputPort,
				vc:        vc,
				outport:   outport,
				flit:      flit,
			})
			a.lastGrantedVC[inputPort] = vc
			if a.router.stats != nil {
				a.router.stats.RecordInputArbiterActivity()
			}
			break
		}
	}
	return nominees
}

// resolveOutVC returns the downstream VC this flit should contend for. A
// HEAD/HEAD_TAIL flit not yet bound to a downstream VC must find one via
// SelectFreeVC; BODY/TAIL flits reuse the VC their HEAD was bound to
// (tracked as the OutputUnit owner of the input port/VC).
func (a *SwitchAllocator) resolveOutVC(iu *InputUnit, ou *OutputUnit, inVC int, flit *Flit) (int, bool) {
	if flit.IsHead() {
		if vc := a.findOwnedOutVC(ou, iu.PortNum(), inVC); vc >= 0 {
			return vc, true
		}
		vc := ou.SelectFreeVC()
		return vc, vc >= 0
	}
	vc := a.findOwnedOutVC(ou, iu.PortNum(), inVC)
	return vc, vc >= 0
}

// findOwnedOutVC returns the OutputUnit VC already allocated to
// (inputPort, inputVC), or -1.
func (a *SwitchAllocator) findOwnedOutVC(ou *OutputUnit, inputPort, inputVC int) int {
	for vc := 0; vc < ou.NumVCs(); vc++ {
		p, v := ou.Owner(vc)
		if p == inputPort && v == inputVC && ou.VCState(vc) != VCIdle {
			return vc
		}
	}
	return -1
}

// stageTwo resolves output-port contention among stage-1 nominees by
// round-robin across input ports.
func (a *SwitchAllocator) stageTwo(nominees []*saNomination) []*saNomination {
	byOutport := map[int][]*saNomination{}
	for _, n := range nominees {
		byOutport[n.outport] = append(byOutport[n.outport], n)
	}

	var winners []*saNomination
	for outport, candidates := range byOutport {
		numPorts := len(a.router.inputUnits)
		start := (a.lastGrantedInputPort[outport] + 1) % numPorts
		var winner *saNomination
		for i := 0; i < numPorts; i++ {
			want := (start + i) % numPorts
			for _, c := range candidates {
				if c.inputPort == want {
					winner = c
					break
				}
			}
			if winner != nil {
				break
			}
		}
		if winner == nil {
			continue
		}
		a.lastGrantedInputPort[outport] = winner.inputPort
		if a.router.stats != nil {
			a.router.stats.RecordOutputArbiterActivity()
		}
		winners = append(winners, winner)
	}
	return winners
}

// applyWinner commits one stage-2 winner: decrements the output VC credit,
// binds a fresh downstream VC on HEAD, hands the flit to the crossbar,
// dequeues it from the input VC, clears the latch on TAIL, and emits the
// upstream credit.
func (a *SwitchAllocator) applyWinner(w *saNomination, cycle uint64) {
	iu := a.router.inputUnits[w.inputPort]
	ou := a.router.outputUnits[w.outport]

	outVC, ok := a.resolveOutVC(iu, ou, w.vc, w.flit)
	if !ok {
		return
	}

	if w.flit.IsHead() {
		ou.SetOwner(outVC, w.inputPort, w.vc)
		ou.SetVCState(VCActive, outVC, cycle)
	}
	ou.DecrementCredit(outVC)

	f := iu.GetTopFlit(w.vc)
	if f == nil {
		return
	}
	f.Outport = w.outport
	f.OutDirection = ou.Direction()
	f.VC = outVC
	f.Route.Hops++

	a.router.crossbar.UpdateSwWinner(w.inputPort, f)

	becameEmpty := iu.VCIsEmpty(w.vc)
	if iu.inLink != nil && iu.creditLink != nil {
		iu.creditLink.InsertCredit(NewCredit(w.vc, becameEmpty), cycle)
	}

	if f.IsTail() {
		iu.SetVCIdle(w.vc, cycle)
	}
}
