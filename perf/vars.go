package perf

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/encodeous/metric"
)

var (
	ConvergenceRounds   = metric.NewHistogram("10m10s")
	ConvergenceLatency  = metric.NewHistogram("1m1s")
	SimulationSteps     = metric.NewHistogram("10m10s")
	SimulationLatency   = metric.NewHistogram("1m1s")
	SimulationsPerSec   = metric.NewCounter("10s1s")
	LossEventsPerSec    = metric.NewCounter("10s1s")
	PacketsSentPerSec   = metric.NewCounter("10s1s")
	IncompletePerSecond = metric.NewCounter("10s1s")
)

var publish sync.Once

// Handler serves the live metric dashboard. The first call also publishes every metric to expvar.
func Handler() http.Handler {
	publish.Do(func() {
		expvar.Publish("netsim:ConvergenceRounds", ConvergenceRounds)
		expvar.Publish("netsim:ConvergenceLatency (µs)", ConvergenceLatency)
		expvar.Publish("netsim:SimulationSteps", SimulationSteps)
		expvar.Publish("netsim:SimulationLatency (µs)", SimulationLatency)
		expvar.Publish("netsim:Simulations/s", SimulationsPerSec)
		expvar.Publish("netsim:LossEvents/s", LossEventsPerSec)
		expvar.Publish("netsim:PacketsSent/s", PacketsSentPerSec)
		expvar.Publish("netsim:Incomplete/s", IncompletePerSecond)
	})
	return metric.Handler(metric.Exposed)
}

func ObserveConvergence(rounds int, elapsed time.Duration) {
	ConvergenceRounds.Add(float64(rounds))
	ConvergenceLatency.Add(float64(elapsed.Microseconds()))
}

func ObserveSimulation(steps, packetsSent, lossEvents int, complete bool, elapsed time.Duration) {
	SimulationSteps.Add(float64(steps))
	SimulationLatency.Add(float64(elapsed.Microseconds()))
	SimulationsPerSec.Add(1)
	PacketsSentPerSec.Add(float64(packetsSent))
	LossEventsPerSec.Add(float64(lossEvents))
	if !complete {
		IncompletePerSecond.Add(1)
	}
}
