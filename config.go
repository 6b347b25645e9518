package garnet

//
// Router configuration
//

import "fmt"

// RoutingAlgorithm selects how [RoutingUnit.OutportCompute] resolves a route.
type RoutingAlgorithm int

const (
	// TableRouting picks outport(s) whose routing table entry intersects
	// the destination, breaking ties by lowest weight then lowest index.
	TableRouting RoutingAlgorithm = iota

	// XYRouting routes horizontal-first then vertical, with optional
	// torus wraparound.
	XYRouting

	// CustomRouting is a mesh-aware algorithm that avoids doubling back
	// out of the direction the flit arrived from.
	CustomRouting
)

// SwizzlePolicy selects the SwizzleSwap policy.
type SwizzlePolicy int

const (
	// PolicyUnset means SwizzleSwap is disabled or not yet configured.
	PolicyUnset SwizzlePolicy = iota

	// PolicyMinimal keeps exactly one distinguished critical inport per
	// router, as described by spec.md §4.8.
	PolicyMinimal

	// PolicyNonMinimal is reserved for deflection routing and is not
	// implemented; see DESIGN.md Open Question 1.
	PolicyNonMinimal
)

// SimType selects the injection-termination condition.
type SimType int

const (
	// SimStandard runs for a fixed number of cycles.
	SimStandard SimType = iota

	// SimMarked names the mode in which injection ends once MarkedFlits
	// marked flits have been ejected network-wide. No component in this
	// package reads SimType or counts marked flits; injection stops only
	// when the harness stops calling it.
	SimMarked
)

// Config holds the tunables documented by spec.md §6. The zero value is
// not meaningful; use [NewConfig] to obtain a defaulted Config and
// [Config.Validate] to check it.
type Config struct {
	// NumRows is the row count of a mesh/torus topology; <= 0 means a
	// non-mesh (e.g. ring) topology.
	NumRows int

	// NIFlitSize is the flit size in bytes used for NI bookkeeping.
	NIFlitSize int

	// VCsPerVnet is the number of virtual channels per virtual network.
	VCsPerVnet int

	// BuffersPerDataVC is the per-VC buffer capacity for the data vnet.
	BuffersPerDataVC int

	// BuffersPerCtrlVC is the per-VC buffer capacity for the ctrl vnet.
	BuffersPerCtrlVC int

	// RoutingAlgorithm selects outport_compute's behavior.
	RoutingAlgorithm RoutingAlgorithm

	// SwizzleSwap enables the SwizzleSwap extension.
	SwizzleSwap bool

	// Policy must be non-zero when SwizzleSwap is true.
	Policy SwizzlePolicy

	// SwizzleSwapMaxRetries bounds swap_inport's candidate search
	// (spec.md §9 Open Question 3); defaults to 50.
	SwizzleSwapMaxRetries int

	// TDM is reserved for a future TDM-based swap cadence; 0 disables it.
	TDM int

	// WarmupCycles suppresses statistics collection for this many cycles.
	WarmupCycles uint64

	// MarkedFlits is the termination target for SimMarked.
	MarkedFlits int

	// SimType selects the termination condition.
	SimType SimType

	// EnableFaultModel records whether the harness uses a fault model. No
	// component in this package reads it: a [FaultModel] is attached with
	// [Network.SetFaultModel] regardless of this flag, and [Router] does not
	// consult any FaultModel.
	EnableFaultModel bool

	// StrictInvariants panics on invariant violation (debug builds) when
	// true, or downgrades to a counted warning when false (production),
	// per spec.md §9.
	StrictInvariants bool
}

// NewConfig returns a [Config] with defaults applied, modeled on the
// teacher's LinkConfig zero-value-safe shape and etalazz-vsa's churn.Config
// clamp-and-default convention; clamping happens in [Config.Validate].
func NewConfig() *Config {
	return &Config{
		NumRows:               0,
		NIFlitSize:            16,
		VCsPerVnet:            4,
		BuffersPerDataVC:      4,
		BuffersPerCtrlVC:      4,
		RoutingAlgorithm:      XYRouting,
		SwizzleSwap:           false,
		Policy:                PolicyUnset,
		SwizzleSwapMaxRetries: 50,
		TDM:                   0,
		WarmupCycles:          0,
		MarkedFlits:           0,
		SimType:               SimStandard,
		EnableFaultModel:      false,
		StrictInvariants:      true,
	}
}

// Validate checks the configuration for unsupported combinations and
// returns a fatal error per spec.md §7's "Unsupported configuration" class.
func (c *Config) Validate() error {
	if c.SwizzleSwap && c.Policy == PolicyUnset {
		return fmt.Errorf("%w: swizzle_swap=true requires a non-zero policy", ErrNotImplemented)
	}
	if c.Policy == PolicyNonMinimal {
		return fmt.Errorf("%w: NON_MINIMAL_ deflection policy", ErrNotImplemented)
	}
	if c.SwizzleSwapMaxRetries <= 0 {
		c.SwizzleSwapMaxRetries = 50
	}
	if c.VCsPerVnet <= 0 {
		return fmt.Errorf("garnet: vcs_per_vnet must be positive")
	}
	return nil
}
