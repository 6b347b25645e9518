package garnet

//
// Network: harness-facing router array, neighbor lookup, NI injection
//

import (
	"fmt"
)

// FaultModel lets a harness inject synthetic per-router fault probability
// without the core depending on any concrete fault source (spec.md §6).
type FaultModel interface {
	// FaultProbability returns the probability, in [0,1], that a fault of
	// faultType affects routerID on the current cycle.
	FaultProbability(routerID int, faultType int) float64
}

// NullFaultModel is a [FaultModel] that never reports a fault, grounded on
// the teacher's internal.NullLogger no-op pattern.
type NullFaultModel struct{}

// FaultProbability always returns 0.
func (NullFaultModel) FaultProbability(routerID int, faultType int) float64 {
	return 0
}

var _ FaultModel = NullFaultModel{}

// Network is the harness-facing mesh/torus/ring container: an indexed
// router array plus neighbor lookup (spec.md §9's "array + index, no
// back-pointers" convention, generalized from the teacher's topology.go
// construction shapes). The zero value is invalid; use [NewNetwork].
type Network struct {
	numRows int
	numCols int
	torus   bool

	routers []*Router

	config     *Config
	scheduler  Scheduler
	stats      *Stats
	logger     Logger
	faultModel FaultModel
}

// NewNetwork creates an empty [Network] over a numRows x numCols mesh
// (numRows <= 0 for a non-mesh ring of numCols routers). torus enables
// wraparound for [XYRouting] and [get_router_in_dirn]-style neighbor lookup.
func NewNetwork(numRows, numCols int, torus bool, config *Config, scheduler Scheduler, stats *Stats, logger Logger) *Network {
	n := &Network{
		numRows:    numRows,
		numCols:    numCols,
		torus:      torus,
		config:     config,
		scheduler:  scheduler,
		stats:      stats,
		logger:     logger,
		faultModel: NullFaultModel{},
	}
	return n
}

// SetFaultModel wires a non-default [FaultModel] (spec.md §6).
func (n *Network) SetFaultModel(fm FaultModel) {
	n.faultModel = fm
}

// FaultModelValue returns the wired [FaultModel], or a [NullFaultModel] if none
// was set.
func (n *Network) FaultModelValue() FaultModel {
	return n.faultModel
}

// AddRouter creates and registers a new [Router] at the next available id,
// returning it for port wiring.
func (n *Network) AddRouter(rngSeed int64) *Router {
	id := len(n.routers)
	r := NewRouter(id, n.numRows, n.numCols, n.torus, n.config, n.scheduler, n.stats, n.logger, rngSeed)
	r.attachNetwork(n)
	n.routers = append(n.routers, r)
	return r
}

// NumRouters returns how many routers this network holds.
func (n *Network) NumRouters() int {
	return len(n.routers)
}

// RouterByID returns the router with the given id, or nil if out of range.
// This is the only way one router reaches another: never a direct
// back-pointer (spec.md §9).
func (n *Network) RouterByID(id int) *Router {
	if id < 0 || id >= len(n.routers) {
		return nil
	}
	return n.routers[id]
}

// Neighbor implements get_router_in_dirn (spec.md §4.9): the id of the
// router reachable from routerID by moving one hop in dirn, honoring torus
// wraparound, or -1 if dirn has no neighbor (non-mesh topology, or a
// non-torus edge router with no link in that direction).
func (n *Network) Neighbor(routerID int, dirn Direction) int {
	if n.numRows <= 0 {
		return n.ringNeighbor(routerID, dirn)
	}
	row, col := routerID/n.numCols, routerID%n.numCols
	switch dirn {
	case DirEast:
		if col+1 < n.numCols {
			return routerID + 1
		}
		if n.torus {
			return row*n.numCols + 0
		}
		return -1
	case DirWest:
		if col-1 >= 0 {
			return routerID - 1
		}
		if n.torus {
			return row*n.numCols + (n.numCols - 1)
		}
		return -1
	case DirNorth:
		if n.numRows <= 0 {
			return -1
		}
		if row+1 < n.numRows {
			return routerID + n.numCols
		}
		if n.torus {
			return col
		}
		return -1
	case DirSouth:
		if n.numRows <= 0 {
			return -1
		}
		if row-1 >= 0 {
			return routerID - n.numCols
		}
		if n.torus {
			return (n.numRows-1)*n.numCols + col
		}
		return -1
	default:
		return -1
	}
}

// ringNeighbor is the degenerate 1-D case (numRows <= 0): East/West wrap
// around a ring of NumRouters() routers; North/South have no meaning.
func (n *Network) ringNeighbor(routerID int, dirn Direction) int {
	count := len(n.routers)
	if count == 0 {
		return -1
	}
	switch dirn {
	case DirEast:
		return (routerID + 1) % count
	case DirWest:
		return (routerID - 1 + count) % count
	default:
		return -1
	}
}

// ConnectMesh wires every adjacent router pair in the numRows x numCols
// mesh/torus with a [NetworkLink]/[CreditLink] pair in both directions,
// using linkLatency cycles of delay, then establishes each router's
// initial critical inport (SwizzleSwap requires every router to start from
// a consistent state). It must be called once, after all routers have been
// created via [AddRouter] and before the [Scheduler] starts ticking.
func (n *Network) ConnectMesh(linkLatency uint64) error {
	for id, r := range n.routers {
		wired := map[int]bool{}
		for _, dirn := range []Direction{DirNorth, DirSouth, DirEast, DirWest} {
			neighborID := n.Neighbor(id, dirn)
			if neighborID < 0 || neighborID <= id || wired[neighborID] {
				// Wire each undirected pair once, from the lower id's side,
				// to avoid double-wiring (a torus ring of 2 would otherwise
				// double-link East/West onto the same pair).
				continue
			}
			wired[neighborID] = true
			neighbor := n.routers[neighborID]
			mirror := mirrorDirection(dirn)

			fwdLink := NewNetworkLink(linkLatency, n.scheduler)
			fwdCredit := NewCreditLink(linkLatency, n.scheduler)
			r.AddOutPort(dirn, fwdLink, fwdCredit, nil, 0)
			neighbor.AddInPort(mirror, fwdLink, fwdCredit)

			revLink := NewNetworkLink(linkLatency, n.scheduler)
			revCredit := NewCreditLink(linkLatency, n.scheduler)
			neighbor.AddOutPort(mirror, revLink, revCredit, nil, 0)
			r.AddInPort(dirn, revLink, revCredit)
		}
	}

	if n.config.SwizzleSwap {
		for _, r := range n.routers {
			if r.NumInputPorts() == 0 {
				continue
			}
			firstLinkPort := -1
			for i, iu := range r.inputUnits {
				if iu.Direction() != DirLocal {
					firstLinkPort = i
					break
				}
			}
			if firstLinkPort < 0 {
				continue
			}
			if err := r.InitCritical(firstLinkPort); err != nil {
				return fmt.Errorf("garnet: router %d: %w", r.id, err)
			}
		}
	}
	return nil
}

// AddLocalPort wires router id's Local (NI) port, connecting it to the
// given NI-facing links, and registers destinations (NIs reachable only by
// injecting locally at this router) for [TableRouting].
func (n *Network) AddLocalPort(routerID int, inLink *NetworkLink, inCredit *CreditLink, outLink *NetworkLink, outCredit *CreditLink, destinations map[int]bool) error {
	r := n.RouterByID(routerID)
	if r == nil {
		return fmt.Errorf("garnet: no router with id %d", routerID)
	}
	r.AddInPort(DirLocal, inLink, inCredit)
	r.AddOutPort(DirLocal, outLink, outCredit, destinations, 0)
	return nil
}

// LatencySummary aggregates p50/p95/p99/mean network latency across every
// flit ejected so far, delegating to [Stats.LatencySummary].
func (n *Network) LatencySummary() (p50, p95, p99, mean float64, err error) {
	return n.stats.LatencySummary()
}
