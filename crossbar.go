package garnet

//
// CrossbarSwitch: per-cycle datapath
//

// CrossbarSwitch moves the set of (input_port -> output_port, flit) pairs
// committed by the [SwitchAllocator] into output port queues; it performs
// no further arbitration (spec.md §4.6). The zero value is invalid; use
// [NewCrossbarSwitch].
type CrossbarSwitch struct {
	router *Router

	// winners holds this cycle's committed (inputPort, flit) pairs.
	winners []crossbarWinner
}

// crossbarWinner is one flit the SwitchAllocator committed this cycle.
type crossbarWinner struct {
	inputPort int
	flit      *Flit
}

// NewCrossbarSwitch creates a [CrossbarSwitch] for router.
func NewCrossbarSwitch(router *Router) *CrossbarSwitch {
	return &CrossbarSwitch{router: router}
}

// UpdateSwWinner records one SwitchAllocator winner; f.Outport must already
// be set (spec.md §4.6).
func (x *CrossbarSwitch) UpdateSwWinner(inputPort int, f *Flit) {
	x.winners = append(x.winners, crossbarWinner{inputPort: inputPort, flit: f})
}

// Wakeup moves every recorded winner's flit into its output port's outgoing
// queue, then clears the winner list for the next cycle.
func (x *CrossbarSwitch) Wakeup(cycle uint64) {
	for _, w := range x.winners {
		ou := x.router.outputUnits[w.flit.Outport]
		ou.EnqueueOutgoing(w.flit)
	}
	x.winners = x.winners[:0]
}

var _ Consumer = &CrossbarSwitch{}
