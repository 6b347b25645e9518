package garnet

//
// Flit and credit data model
//

import "time"

// FlitType classifies a [Flit] within its packet.
type FlitType int

const (
	// HeadFlit is the first flit of a multi-flit packet.
	HeadFlit FlitType = iota

	// BodyFlit is a middle flit of a multi-flit packet.
	BodyFlit

	// TailFlit is the last flit of a multi-flit packet.
	TailFlit

	// HeadTailFlit is a single-flit packet (both head and tail).
	HeadTailFlit
)

// String returns a human-readable flit type name.
func (t FlitType) String() string {
	switch t {
	case HeadFlit:
		return "HEAD"
	case BodyFlit:
		return "BODY"
	case TailFlit:
		return "TAIL"
	case HeadTailFlit:
		return "HEAD_TAIL"
	default:
		return "UNKNOWN"
	}
}

// RouteInfo is the route descriptor carried by a [Flit].
type RouteInfo struct {
	// SrcNI is the injecting network interface.
	SrcNI int

	// DstNI is the ejecting network interface.
	DstNI int

	// DstRouter is the destination router id.
	DstRouter int

	// Hops counts routers traversed so far.
	Hops int
}

// Flit is the atomic transport unit. Outport/OutDirection are set only
// after [RoutingUnit.OutportCompute] has run for this flit at the current
// router (spec.md §3 invariant).
type Flit struct {
	// ID uniquely identifies this flit for the lifetime of the simulation.
	ID uint64

	// Vnet is the virtual network this flit belongs to.
	Vnet int

	// VC is the flat virtual channel index (ctrl vnet VCs first, then data
	// vnet VCs) of the VC this flit occupies or is bound to downstream.
	VC int

	// Route is this flit's route descriptor.
	Route RouteInfo

	// Type classifies this flit within its packet.
	Type FlitType

	// Outport is set by route_compute; -1 means "not yet computed".
	Outport int

	// OutDirection is set alongside Outport.
	OutDirection Direction

	// EnqueueTime is the cycle this flit entered its current VC.
	EnqueueTime uint64

	// NetworkEntryTime is the cycle this flit was injected by its NI.
	NetworkEntryTime uint64

	// CreatedAt records wall-clock creation time, for external logging
	// only; it plays no role in cycle accounting.
	CreatedAt time.Time

	// Marked flags this flit for sampled-flit statistics (sim_type=marked).
	Marked bool
}

// NewFlit creates a [Flit] with Outport left unresolved.
func NewFlit(id uint64, vnet, vc int, route RouteInfo, typ FlitType, cycle uint64) *Flit {
	return &Flit{
		ID:               id,
		Vnet:             vnet,
		VC:               vc,
		Route:            route,
		Type:             typ,
		Outport:          -1,
		OutDirection:     DirUnknown,
		EnqueueTime:      cycle,
		NetworkEntryTime: cycle,
		CreatedAt:        time.Time{},
		Marked:           false,
	}
}

// IsHead reports whether this flit starts a packet.
func (f *Flit) IsHead() bool {
	return f.Type == HeadFlit || f.Type == HeadTailFlit
}

// IsTail reports whether this flit ends a packet.
func (f *Flit) IsTail() bool {
	return f.Type == TailFlit || f.Type == HeadTailFlit
}

// Credit is sent upstream to replenish a VC buffer slot.
type Credit struct {
	// VC identifies which VC this credit replenishes.
	VC int

	// IsFree is true when the source VC became empty as a result of the
	// dequeue that generated this credit.
	IsFree bool
}

// NewCredit creates a [Credit].
func NewCredit(vc int, isFree bool) *Credit {
	return &Credit{VC: vc, IsFree: isFree}
}
