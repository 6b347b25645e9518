// Command simring runs a reference NoC simulation: it builds a ring or
// mesh/torus network, injects synthetic traffic from every router's NI,
// runs the tick scheduler for a fixed number of cycles, and prints the
// statistics registry at the end.
package main

import (
	"flag"
	"fmt"
	"math/rand"

	"github.com/apex/log"

	"github.com/nocsim/garnet"
)

func main() {
	numCols := flag.Int("cols", 4, "number of routers (ring), or columns (mesh)")
	numRows := flag.Int("rows", 0, "number of rows; 0 selects a ring topology")
	torus := flag.Bool("torus", false, "enable torus wraparound")
	cycles := flag.Uint64("cycles", 1000, "number of cycles to run")
	injectionRate := flag.Float64("rate", 0.1, "per-router, per-cycle flit injection probability")
	swizzleSwap := flag.Bool("swizzle-swap", false, "enable the SwizzleSwap extension")
	linkLatency := flag.Uint64("link-latency", 1, "link latency in cycles")
	seed := flag.Int64("seed", 1, "RNG seed for traffic generation and SwizzleSwap port choice")
	flag.Parse()

	log.SetLevel(log.InfoLevel)

	cfg := garnet.NewConfig()
	cfg.NumRows = *numRows
	cfg.SwizzleSwap = *swizzleSwap
	if cfg.SwizzleSwap {
		cfg.Policy = garnet.PolicyMinimal
	}
	garnet.Must0(cfg.Validate())

	scheduler := garnet.NewTickScheduler()
	stats := garnet.NewStats(cfg.WarmupCycles)
	net := garnet.NewNetwork(*numRows, *numCols, *torus, cfg, scheduler, stats, log.Log)

	numRouters := *numCols
	if *numRows > 0 {
		numRouters = *numRows * (*numCols)
	}
	for i := 0; i < numRouters; i++ {
		net.AddRouter(*seed + int64(i))
	}
	garnet.Must0(net.ConnectMesh(*linkLatency))

	ni := newTrafficGenerator(net, stats, numRouters, *injectionRate, *linkLatency, cfg.VCsPerVnet, rand.New(rand.NewSource(*seed)))
	ni.wireLocalPorts(scheduler)

	for cycle := uint64(0); cycle < *cycles; cycle++ {
		ni.injectCycle(cycle)
		for id := 0; id < net.NumRouters(); id++ {
			net.RouterByID(id).Wakeup(cycle)
		}
		scheduler.Tick()
	}

	snap := stats.Snapshot()
	fmt.Printf("flits injected:      %d\n", snap.FlitsInjected)
	fmt.Printf("flits ejected:       %d\n", snap.FlitsEjected)
	fmt.Printf("buffer reads/writes: %d/%d\n", snap.BufferReads, snap.BufferWrites)
	fmt.Printf("crossbar activity:   %d\n", snap.CrossbarActivity)
	fmt.Printf("bubble swizzles:     %d\n", snap.NumBubbleSwizzles)
	fmt.Printf("bubble swaps:        %d (routed %d)\n", snap.NumBubbleSwaps, snap.NumRoutedBubbleSwaps)
	fmt.Printf("invariant warnings:  %d\n", snap.InvariantWarnings)

	p50, p95, p99, mean, err := net.LatencySummary()
	if err != nil {
		log.WithError(err).Warn("garnet.Network.LatencySummary")
		return
	}
	fmt.Printf("latency p50/p95/p99/mean (cycles): %.1f/%.1f/%.1f/%.1f\n", p50, p95, p99, mean)
}
