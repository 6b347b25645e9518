package garnet

import "testing"

func TestNetworkNeighborRing(t *testing.T) {
	n := NewNetwork(0, 4, false, NewConfig(), NewTickScheduler(), NewStats(0), &NullLogger{})
	for i := 0; i < 4; i++ {
		n.AddRouter(int64(i))
	}
	if got := n.Neighbor(3, DirEast); got != 0 {
		t.Fatalf("ring Neighbor(3, East) = %d, want 0 (wraps)", got)
	}
	if got := n.Neighbor(0, DirWest); got != 3 {
		t.Fatalf("ring Neighbor(0, West) = %d, want 3 (wraps)", got)
	}
	if got := n.Neighbor(0, DirNorth); got != -1 {
		t.Fatalf("ring Neighbor(0, North) = %d, want -1 (rings have no vertical axis)", got)
	}
}

func TestNetworkNeighborTorusMesh(t *testing.T) {
	// 4x4 torus, row-major ids 0..15.
	n := NewNetwork(4, 4, true, NewConfig(), NewTickScheduler(), NewStats(0), &NullLogger{})
	for i := 0; i < 16; i++ {
		n.AddRouter(int64(i))
	}
	if got := n.Neighbor(3, DirEast); got != 0 {
		t.Fatalf("torus Neighbor(3, East) = %d, want 0 (wraps across the row)", got)
	}
	if got := n.Neighbor(12, DirNorth); got != 0 {
		t.Fatalf("torus Neighbor(12, North) = %d, want 0 (North increases id by numCols, wrapping the last row back to row 0)", got)
	}
	if got := n.Neighbor(0, DirSouth); got != 12 {
		t.Fatalf("Neighbor(0, South) = %d, want 12 (South decreases id by numCols, wrapping row 0 to the last row)", got)
	}
}

func TestNetworkNeighborMeshNoWraparound(t *testing.T) {
	n := NewNetwork(2, 2, false, NewConfig(), NewTickScheduler(), NewStats(0), &NullLogger{})
	for i := 0; i < 4; i++ {
		n.AddRouter(int64(i))
	}
	if got := n.Neighbor(1, DirEast); got != -1 {
		t.Fatalf("non-torus mesh Neighbor(1, East) = %d, want -1 (edge router, no wraparound)", got)
	}
}

func TestConnectMeshWiresBothDirections(t *testing.T) {
	n := NewNetwork(0, 2, false, NewConfig(), NewTickScheduler(), NewStats(0), &NullLogger{})
	n.AddRouter(1)
	n.AddRouter(2)
	if err := n.ConnectMesh(1); err != nil {
		t.Fatalf("ConnectMesh returned error: %v", err)
	}
	r0, r1 := n.RouterByID(0), n.RouterByID(1)
	if r0.NumInputPorts() != 1 || r1.NumInputPorts() != 1 {
		t.Fatalf("each ring router should get exactly 1 input port from a single neighbor pair, got %d and %d", r0.NumInputPorts(), r1.NumInputPorts())
	}
	if r0.RoutingUnit().OutportForDirection(DirEast) < 0 {
		t.Fatalf("router 0 should have an East outport toward router 1")
	}
	if r1.RoutingUnit().OutportForDirection(DirWest) < 0 {
		t.Fatalf("router 1 should have a West outport toward router 0")
	}
}

func TestConnectMeshInitializesCriticalInportWhenSwizzleSwapEnabled(t *testing.T) {
	cfg := NewConfig()
	cfg.SwizzleSwap = true
	cfg.Policy = PolicyMinimal
	n := NewNetwork(0, 3, false, cfg, NewTickScheduler(), NewStats(0), &NullLogger{})
	n.AddRouter(1)
	n.AddRouter(2)
	n.AddRouter(3)
	if err := n.ConnectMesh(1); err != nil {
		t.Fatalf("ConnectMesh returned error: %v", err)
	}
	for id := 0; id < 3; id++ {
		r := n.RouterByID(id)
		if r.CriticalInportID() < 0 {
			t.Fatalf("router %d should have an initial critical inport once SwizzleSwap is enabled", id)
		}
	}
}
