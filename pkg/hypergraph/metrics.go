package hypergraph

import (
	"math"
)

// HyperedgeCut returns the summed weight of all enabled hyperedges spanning
// more than one block.
func HyperedgeCut(hg *Hypergraph) int {
	cut := 0
	for e := 0; e < hg.InitialNumEdges(); e++ {
		if hg.IsEnabledEdge(e) && hg.Connectivity(e) >= 2 {
			cut += hg.EdgeWeight(e)
		}
	}
	return cut
}

// SOED returns the sum-over-external-degrees objective: for every cut edge,
// its weight times the number of blocks it spans.
func SOED(hg *Hypergraph) int {
	soed := 0
	for e := 0; e < hg.InitialNumEdges(); e++ {
		if hg.IsEnabledEdge(e) && hg.Connectivity(e) >= 2 {
			soed += hg.Connectivity(e) * hg.EdgeWeight(e)
		}
	}
	return soed
}

// KMinus1 returns the connectivity-minus-one objective.
func KMinus1(hg *Hypergraph) int {
	km1 := 0
	for e := 0; e < hg.InitialNumEdges(); e++ {
		if hg.IsEnabledEdge(e) {
			km1 += (hg.Connectivity(e) - 1) * hg.EdgeWeight(e)
		}
	}
	return km1
}

// Imbalance returns max_p w(V_p) / ceil(w(V)/k) - 1.
func Imbalance(hg *Hypergraph) float64 {
	maxWeight := 0
	for p := 0; p < hg.K(); p++ {
		if hg.PartWeight(p) > maxWeight {
			maxWeight = hg.PartWeight(p)
		}
	}
	perfect := int(math.Ceil(float64(hg.TotalWeight()) / float64(hg.K())))
	return float64(maxWeight)/float64(perfect) - 1.0
}
