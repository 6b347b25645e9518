// Package garnet is a cycle-accurate simulation core for a 2D-mesh/torus
// Network-on-Chip router pipeline with virtual-channel flow control.
//
// The core models a conventional input-queued wormhole router — [InputUnit],
// [OutputUnit], [RoutingUnit], [SwitchAllocator], [CrossbarSwitch], all
// composed by [Router] — augmented with two congestion-relief extensions:
//
//   - SwizzleSwap: lateral rearrangement of flits between a router's own
//     input ports, implemented by [Router.SwapInport], which keeps one
//     non-Local input VC ("the critical inport") empty at all times to
//     serve as a deflection bubble;
//
//   - Critical-Bubble Deflection: a coordinated cross-router flit exchange
//     performed from [Router.Wakeup] (chkCriticalDeflect) when a router and
//     all of its non-Local, non-critical neighbors are nearly full.
//
// A [Flit] travels from a [Router]'s [InputUnit] to its [OutputUnit] by way
// of the [SwitchAllocator] (arbitration) and the [CrossbarSwitch] (the
// datapath). [Credit]s travel upstream over a [CreditLink] to replenish
// buffer slots; flits travel downstream over a [NetworkLink]. Both links are
// one-cycle delay lines: a flit or credit written in cycle N becomes visible
// to its consumer no earlier than cycle N+1.
//
// Unlike a real-time network simulator, this package never spawns
// goroutines or blocks: every component exposes a Wakeup(cycle) entry point.
// Links ask a [Scheduler] to wake their consumers when a flit or credit
// arrives, while the harness calls [Router.Wakeup] once per cycle for every
// router; Router.Wakeup itself runs the fixed per-cycle stage order
// (Router -> InputUnit -> OutputUnit -> SwitchAllocator -> CrossbarSwitch). A
// [Network] ties a set of [Router]s, [NetworkLink]s and [CreditLink]s
// together and exposes the topology queries (neighbor-by-direction, NI
// injection/ejection) that [Router] needs but does not own.
//
// For a runnable example that builds a small ring, injects traffic, and
// prints the resulting statistics, see cmd/simring.
package garnet
