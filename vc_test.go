package garnet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVirtualChannelFIFOOrder(t *testing.T) {
	vc := NewVirtualChannel(2)
	a := NewFlit(1, 0, 0, RouteInfo{}, HeadFlit, 0)
	b := NewFlit(2, 0, 0, RouteInfo{}, TailFlit, 0)

	if !vc.Enqueue(a) || !vc.Enqueue(b) {
		t.Fatalf("Enqueue should succeed within capacity")
	}
	if vc.Enqueue(NewFlit(3, 0, 0, RouteInfo{}, TailFlit, 0)) {
		t.Fatalf("Enqueue should fail once the VC is full")
	}

	var drained []uint64
	drained = append(drained, vc.Dequeue().ID)
	drained = append(drained, vc.Dequeue().ID)
	if diff := cmp.Diff([]uint64{a.ID, b.ID}, drained); diff != "" {
		t.Fatalf("Dequeue order mismatch (-want +got):\n%s", diff)
	}
	if !vc.IsEmpty() {
		t.Fatalf("VC should be empty after draining both flits")
	}
	if vc.Dequeue() != nil {
		t.Fatalf("Dequeue on an empty VC must return nil")
	}
}

func TestVirtualChannelStateAndCritical(t *testing.T) {
	vc := NewVirtualChannel(1)
	if vc.State() != VCIdle {
		t.Fatalf("new VC state = %s, want IDLE", vc.State())
	}
	vc.SetState(VCAllocBusy, 5)
	if vc.State() != VCAllocBusy {
		t.Fatalf("SetState didn't transition to VC_AB")
	}
	if vc.IsCritical() {
		t.Fatalf("new VC must not start critical")
	}
	vc.SetCritical(true)
	if !vc.IsCritical() {
		t.Fatalf("SetCritical(true) didn't stick")
	}
}

func TestVirtualChannelCapacityBounds(t *testing.T) {
	vc := NewVirtualChannel(3)
	if vc.Capacity() != 3 {
		t.Fatalf("Capacity() = %d, want 3", vc.Capacity())
	}
	for i := 0; i < 3; i++ {
		if !vc.Enqueue(NewFlit(uint64(i), 0, 0, RouteInfo{}, BodyFlit, 0)) {
			t.Fatalf("Enqueue %d should succeed under capacity", i)
		}
	}
	if !vc.IsFull() {
		t.Fatalf("VC at capacity should report IsFull")
	}
}
