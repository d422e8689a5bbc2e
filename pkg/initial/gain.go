package initial

import (
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
)

// GainPolicy scores the benefit of assigning v to a target block while the
// hypergraph is still partially assigned.
type GainPolicy interface {
	Gain(hg *hypergraph.Hypergraph, v, target int) int
}

// FMGain is the default policy: weight of edges that become internal to the
// target minus weight of edges newly cut by the assignment.
type FMGain struct{}

func (FMGain) Gain(hg *hypergraph.Hypergraph, v, target int) int {
	gain := 0
	for _, e := range hg.IncidentEdges(v) {
		if !hg.IsEnabledEdge(e) {
			continue
		}
		if hg.PinCountInPart(e, target) == hg.EdgeSize(e)-1 {
			gain += hg.EdgeWeight(e)
		}
		if hg.PinCountInPart(e, target) == 0 && hg.Connectivity(e) > 0 {
			gain -= hg.EdgeWeight(e)
		}
	}
	return gain
}
