package main

import (
	"math/rand"

	"github.com/nocsim/garnet"
)

// ejector sits on a router's Local OutputUnit link, ejecting flits that
// reach it and immediately returning a credit (the NI is modeled as an
// unbounded sink, per SPEC_FULL.md's reference-harness note).
type ejector struct {
	stats     *garnet.Stats
	outCredit *garnet.CreditLink
	outLink   *garnet.NetworkLink
}

// Wakeup implements garnet.Consumer.
func (e *ejector) Wakeup(cycle uint64) {
	if !e.outLink.IsReady(cycle) {
		return
	}
	f := e.outLink.PopFlit()
	if f == nil {
		return
	}
	e.stats.RecordEjection(f, cycle)
	e.outCredit.InsertCredit(garnet.NewCredit(f.VC, true), cycle)
}

var _ garnet.Consumer = &ejector{}

// trafficGenerator injects synthetic traffic on every router's Local
// inport and ejects whatever reaches each router's Local outport.
type trafficGenerator struct {
	net         *garnet.Network
	stats       *garnet.Stats
	numRouters  int
	rate        float64
	linkLatency uint64
	rng         *rand.Rand
	nextFlitID  uint64
	dataVC      int

	localIn []*garnet.NetworkLink
}

// newTrafficGenerator creates a [trafficGenerator] for net. dataVC is the
// flat VC index traffic is injected on; it must fall within the data vnet
// range (VCsPerVnet..2*VCsPerVnet), never VC0 of the ctrl vnet, which
// SwizzleSwap reserves as the critical VC.
func newTrafficGenerator(net *garnet.Network, stats *garnet.Stats, numRouters int, rate float64, linkLatency uint64, dataVC int, rng *rand.Rand) *trafficGenerator {
	return &trafficGenerator{
		net:         net,
		stats:       stats,
		numRouters:  numRouters,
		rate:        rate,
		linkLatency: linkLatency,
		dataVC:      dataVC,
		rng:         rng,
		localIn:     make([]*garnet.NetworkLink, numRouters),
	}
}

// wireLocalPorts wires every router's Local (NI) port: an injection-facing
// NetworkLink/CreditLink pair, reachable via [AddLocalPort], plus an
// ejection-facing pair backed by an [ejector].
func (t *trafficGenerator) wireLocalPorts(scheduler garnet.Scheduler) {
	for id := 0; id < t.numRouters; id++ {
		inLink := garnet.NewNetworkLink(t.linkLatency, scheduler)
		inCredit := garnet.NewCreditLink(t.linkLatency, scheduler)
		outLink := garnet.NewNetworkLink(t.linkLatency, scheduler)
		outCredit := garnet.NewCreditLink(t.linkLatency, scheduler)

		garnet.Must0(t.net.AddLocalPort(id, inLink, inCredit, outLink, outCredit, map[int]bool{id: true}))

		e := &ejector{stats: t.stats, outLink: outLink, outCredit: outCredit}
		outLink.SetLinkConsumer(e)

		t.localIn[id] = inLink
	}
}

// injectCycle offers each router's NI a chance to inject one flit destined
// for a uniformly random different router.
func (t *trafficGenerator) injectCycle(cycle uint64) {
	for src := 0; src < t.numRouters; src++ {
		if t.rng.Float64() >= t.rate {
			continue
		}
		dst := t.rng.Intn(t.numRouters - 1)
		if dst >= src {
			dst++
		}
		route := garnet.RouteInfo{SrcNI: src, DstNI: dst, DstRouter: dst}
		f := garnet.NewFlit(t.nextFlitID, 1, t.dataVC, route, garnet.HeadTailFlit, cycle)
		t.nextFlitID++
		t.localIn[src].InsertFlit(f, cycle)
		t.stats.RecordInjection(cycle)
	}
}
