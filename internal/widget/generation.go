package widget

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// op names an operation kind that owns a generation counter.
type op int

const (
	opChat op = iota
	opHealth
	opAgents
	opSwitch
	opKnowledge
	numOps
)

var opNames = [numOps]string{"chat", "health", "agents", "switch", "knowledge"}

func (o op) String() string { return opNames[o] }

var metricStale = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "agentchat",
	Subsystem: "widget",
	Name:      "stale_responses_total",
	Help:      "Responses that resolved after a newer request of the same kind started.",
}, []string{"op"})

// generations hands out one monotonically increasing token per operation
// kind. A response is current only if no newer request of its kind has
// started since it was issued.
type generations struct {
	counters [numOps]atomic.Uint64
}

func (g *generations) next(o op) uint64 {
	return g.counters[o].Add(1)
}

func (g *generations) current(o op, token uint64) bool {
	return g.counters[o].Load() == token
}
