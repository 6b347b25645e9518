package garnet

import "testing"

func TestCrossbarSwitchMovesWinnerToOutputQueue(t *testing.T) {
	r := newTestRouter(smallVCConfig())
	_, outPort := addTestPort(r, DirEast)
	ou := r.OutputUnitAt(outPort)

	f := NewFlit(1, 1, 1, RouteInfo{}, HeadTailFlit, 0)
	f.Outport = outPort

	r.crossbar.UpdateSwWinner(0, f)
	r.crossbar.Wakeup(0)

	if len(ou.outQueue) != 1 || ou.outQueue[0].ID != f.ID {
		t.Fatalf("CrossbarSwitch.Wakeup must append the winning flit to its output port's queue")
	}
}

func TestCrossbarSwitchClearsWinnersEachCycle(t *testing.T) {
	r := newTestRouter(smallVCConfig())
	_, outPort := addTestPort(r, DirEast)

	f := NewFlit(1, 1, 1, RouteInfo{}, HeadTailFlit, 0)
	f.Outport = outPort
	r.crossbar.UpdateSwWinner(0, f)
	r.crossbar.Wakeup(0)
	r.crossbar.Wakeup(1) // no new winners recorded

	if len(r.OutputUnitAt(outPort).outQueue) != 1 {
		t.Fatalf("a second Wakeup with no new winners must not re-enqueue the prior cycle's flit")
	}
}

func TestOutputUnitFlushOutgoingWritesOntoLink(t *testing.T) {
	// Stage allocation grants at most one winner per output port per cycle
	// (spec.md §4.5's per-outport stage-2 arbitration), so outQueue holds
	// at most one flit here — matching NetworkLink's one-in-flight-flit model.
	r := newTestRouter(smallVCConfig())
	_, outPort := addTestPort(r, DirEast)
	ou := r.OutputUnitAt(outPort)

	f := NewFlit(1, 1, 1, RouteInfo{}, HeadTailFlit, 0)
	f.Outport = outPort
	r.crossbar.UpdateSwWinner(0, f)
	r.crossbar.Wakeup(0)
	ou.FlushOutgoing(1)

	if !ou.outLink.IsReady(2) {
		t.Fatalf("FlushOutgoing must write the flit onto outLink, ready one cycle later")
	}
	got := ou.outLink.PopFlit()
	if got == nil || got.ID != f.ID {
		t.Fatalf("PopFlit returned %v, want flit %d", got, f.ID)
	}
	if len(ou.outQueue) != 0 {
		t.Fatalf("FlushOutgoing must clear outQueue after flushing")
	}
}
