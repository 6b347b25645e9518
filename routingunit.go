package garnet

//
// Routing: direction enumeration, routing table, outport_compute
//

import "sort"

// Direction is a closed enumeration of link directions. Local is a sink
// and is never a SwizzleSwap candidate (spec.md §3).
type Direction int

const (
	// DirUnknown is the zero value; never a valid inport/outport direction.
	DirUnknown Direction = iota

	// DirNorth is the North link direction.
	DirNorth

	// DirSouth is the South link direction.
	DirSouth

	// DirEast is the East link direction.
	DirEast

	// DirWest is the West link direction.
	DirWest

	// DirLocal is the router's own network interface, not a link.
	DirLocal
)

// String returns the direction's canonical name, matching the strings used
// by original_source/Router.cc's PortDirection comparisons.
func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "North"
	case DirSouth:
		return "South"
	case DirEast:
		return "East"
	case DirWest:
		return "West"
	case DirLocal:
		return "Local"
	default:
		return "Unknown"
	}
}

// IsLinkDirection reports whether d names an actual inter-router link
// (excludes DirLocal and DirUnknown).
func (d Direction) IsLinkDirection() bool {
	switch d {
	case DirNorth, DirSouth, DirEast, DirWest:
		return true
	default:
		return false
	}
}

// mirrorDirection is the canonical N<->S, E<->W, Local->Local map used by
// SwizzleSwap to identify the upstream OutputUnit mirroring a downstream
// inport (spec.md §4.4).
func mirrorDirection(d Direction) Direction {
	switch d {
	case DirNorth:
		return DirSouth
	case DirSouth:
		return DirNorth
	case DirEast:
		return DirWest
	case DirWest:
		return DirEast
	case DirLocal:
		return DirLocal
	default:
		return DirUnknown
	}
}

// RoutingTableEntry is a set of destination NIs reachable through a given
// outport, plus a tie-break weight (spec.md §3).
type RoutingTableEntry struct {
	// Outport is the outport index this entry describes.
	Outport int

	// Destinations is the set of destination NIs reachable via Outport.
	Destinations map[int]bool

	// Weight breaks ties between entries that both match; lower wins.
	Weight int
}

// matches reports whether this entry reaches dstNI.
func (e *RoutingTableEntry) matches(dstNI int) bool {
	return e.Destinations[dstNI]
}

// RoutingUnit holds direction<->index maps, a routing table, and implements
// outport_compute for the TABLE_/XY_/CUSTOM_ algorithms (spec.md §4.4).
type RoutingUnit struct {
	algorithm RoutingAlgorithm

	// inDirToIdx maps an inport direction to its port index.
	inDirToIdx map[Direction]int
	// inIdxToDir is the inverse of inDirToIdx.
	inIdxToDir map[int]Direction

	// outDirToIdx maps an outport direction to its port index.
	outDirToIdx map[Direction]int
	// outIdxToDir is the inverse of outDirToIdx.
	outIdxToDir map[int]Direction

	// table holds one entry per outport, used by TableRouting.
	table []*RoutingTableEntry

	// numRows/numCols describe a mesh/torus topology (numRows <= 0 means a
	// single row such as a ring, where XY routing moves along columns only;
	// numCols <= 0 leaves only TableRouting able to resolve a route).
	numRows int
	numCols int
	routerID int
	torus    bool
}

// NewRoutingUnit creates an empty [RoutingUnit] for the router identified by
// routerID within a numRows x numCols mesh (numRows <= 0 for non-mesh).
func NewRoutingUnit(routerID, numRows, numCols int, torus bool, algorithm RoutingAlgorithm) *RoutingUnit {
	return &RoutingUnit{
		algorithm:   algorithm,
		inDirToIdx:  map[Direction]int{},
		inIdxToDir:  map[int]Direction{},
		outDirToIdx: map[Direction]int{},
		outIdxToDir: map[int]Direction{},
		table:       nil,
		numRows:     numRows,
		numCols:     numCols,
		routerID:    routerID,
		torus:       torus,
	}
}

// AddInDirection registers an inport at the given direction and index.
func (r *RoutingUnit) AddInDirection(dirn Direction, portNum int) {
	r.inDirToIdx[dirn] = portNum
	r.inIdxToDir[portNum] = dirn
}

// AddOutDirection registers an outport at the given direction and index.
func (r *RoutingUnit) AddOutDirection(dirn Direction, portNum int) {
	r.outDirToIdx[dirn] = portNum
	r.outIdxToDir[portNum] = dirn
}

// AddRoute appends a routing table entry for the outport being registered.
func (r *RoutingUnit) AddRoute(outport int, destinations map[int]bool, weight int) {
	r.table = append(r.table, &RoutingTableEntry{
		Outport:      outport,
		Destinations: destinations,
		Weight:       weight,
	})
}

// InportDirection returns the direction of the inport at the given index.
func (r *RoutingUnit) InportDirection(inport int) Direction {
	return r.inIdxToDir[inport]
}

// OutportDirection returns the direction of the outport at the given index.
func (r *RoutingUnit) OutportDirection(outport int) Direction {
	return r.outIdxToDir[outport]
}

// OutportForDirection returns the outport index registered for dirn, or -1.
func (r *RoutingUnit) OutportForDirection(dirn Direction) int {
	if idx, ok := r.outDirToIdx[dirn]; ok {
		return idx
	}
	return -1
}

// InportForDirection returns the inport index registered for dirn, or -1.
func (r *RoutingUnit) InportForDirection(dirn Direction) int {
	if idx, ok := r.inDirToIdx[dirn]; ok {
		return idx
	}
	return -1
}

// OutportCompute resolves route's outport given the inport it arrived on.
// Returns [ErrUnreachableRoute] when no algorithm can resolve a destination,
// a fatal condition per spec.md §7.
func (r *RoutingUnit) OutportCompute(route RouteInfo, inport int, inDirn Direction) (int, error) {
	if route.DstRouter == r.routerID {
		if idx, ok := r.outDirToIdx[DirLocal]; ok {
			return idx, nil
		}
		return -1, ErrUnreachableRoute
	}
	switch r.algorithm {
	case TableRouting:
		return r.tableCompute(route)
	case XYRouting:
		return r.xyCompute(route)
	case CustomRouting:
		return r.customCompute(route, inDirn)
	default:
		return -1, ErrUnreachableRoute
	}
}

// tableCompute picks the matching entry with lowest weight, then lowest
// outport index, per spec.md §4.4 TABLE_.
func (r *RoutingUnit) tableCompute(route RouteInfo) (int, error) {
	var candidates []*RoutingTableEntry
	for _, e := range r.table {
		if e.matches(route.DstNI) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return -1, ErrUnreachableRoute
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Weight != candidates[j].Weight {
			return candidates[i].Weight < candidates[j].Weight
		}
		return candidates[i].Outport < candidates[j].Outport
	})
	return candidates[0].Outport, nil
}

// xyCompute routes horizontal-first then vertical, with torus wraparound
// when wrap reduces hop count (spec.md §4.4 XY_).
func (r *RoutingUnit) xyCompute(route RouteInfo) (int, error) {
	if r.numCols <= 0 {
		return -1, ErrUnreachableRoute
	}
	myRow, myCol := r.routerID/r.numCols, r.routerID%r.numCols
	dstRow, dstCol := route.DstRouter/r.numCols, route.DstRouter%r.numCols

	if myCol != dstCol {
		dirn := r.xyStep(myCol, dstCol, r.numCols, DirEast, DirWest)
		if idx, ok := r.outDirToIdx[dirn]; ok {
			return idx, nil
		}
		return -1, ErrUnreachableRoute
	}
	if myRow != dstRow {
		dirn := r.xyStep(myRow, dstRow, r.numRows, DirNorth, DirSouth)
		if idx, ok := r.outDirToIdx[dirn]; ok {
			return idx, nil
		}
		return -1, ErrUnreachableRoute
	}
	return -1, ErrUnreachableRoute
}

// xyStep decides whether to move in the "increasing" (positive) or
// "decreasing" (negative) direction along one axis, accounting for torus
// wraparound when it yields fewer hops.
func (r *RoutingUnit) xyStep(my, dst, extent int, positive, negative Direction) Direction {
	forwardDist := (dst - my + extent) % extent
	backwardDist := (my - dst + extent) % extent
	if r.torus && backwardDist < forwardDist {
		return negative
	}
	if !r.torus && dst < my {
		return negative
	}
	return positive
}

// customCompute is a mesh-aware algorithm that never routes a flit back
// out of the side it arrived on: an outport whose direction equals the
// inport's direction leads back to the upstream router (spec.md §4.4 CUSTOM_).
func (r *RoutingUnit) customCompute(route RouteInfo, inDirn Direction) (int, error) {
	outport, err := r.xyCompute(route)
	if err != nil {
		return -1, err
	}
	if r.outIdxToDir[outport] == inDirn {
		return -1, ErrUnreachableRoute
	}
	return outport, nil
}
