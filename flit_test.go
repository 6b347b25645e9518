package garnet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewFlitLeavesRouteUnresolved(t *testing.T) {
	route := RouteInfo{SrcNI: 1, DstNI: 2, DstRouter: 3}
	f := NewFlit(7, 1, 2, route, HeadFlit, 5)

	if f.Outport != -1 {
		t.Fatalf("Outport = %d, want -1 (unresolved until route_compute runs)", f.Outport)
	}
	if f.OutDirection != DirUnknown {
		t.Fatalf("OutDirection = %v, want DirUnknown", f.OutDirection)
	}
	if f.EnqueueTime != 5 || f.NetworkEntryTime != 5 {
		t.Fatalf("EnqueueTime/NetworkEntryTime = %d/%d, want both 5", f.EnqueueTime, f.NetworkEntryTime)
	}
	if diff := cmp.Diff(route, f.Route); diff != "" {
		t.Fatalf("Route mismatch (-want +got):\n%s", diff)
	}
}

func TestFlitIsHeadIsTail(t *testing.T) {
	cases := []struct {
		typ      FlitType
		wantHead bool
		wantTail bool
	}{
		{HeadFlit, true, false},
		{BodyFlit, false, false},
		{TailFlit, false, true},
		{HeadTailFlit, true, true},
	}
	for _, c := range cases {
		f := NewFlit(1, 0, 0, RouteInfo{}, c.typ, 0)
		if got := f.IsHead(); got != c.wantHead {
			t.Fatalf("FlitType(%v).IsHead() = %v, want %v", c.typ, got, c.wantHead)
		}
		if got := f.IsTail(); got != c.wantTail {
			t.Fatalf("FlitType(%v).IsTail() = %v, want %v", c.typ, got, c.wantTail)
		}
	}
}

func TestFlitTypeString(t *testing.T) {
	cases := map[FlitType]string{
		HeadFlit:     "HEAD",
		BodyFlit:     "BODY",
		TailFlit:     "TAIL",
		HeadTailFlit: "HEAD_TAIL",
		FlitType(99): "UNKNOWN",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("FlitType(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestNewCredit(t *testing.T) {
	c := NewCredit(3, true)
	if c.VC != 3 || !c.IsFree {
		t.Fatalf("NewCredit(3, true) = %+v, want {VC:3 IsFree:true}", c)
	}
}
