package hypergraph

import (
	"sort"
)

// VerifyEquivalence reports whether two hypergraphs describe the same
// structure: node and edge counts, weights, and pin sets. Pin order within a
// hyperedge is not significant.
func VerifyEquivalence(a, b *Hypergraph) bool {
	if a.CurrentNumNodes() != b.CurrentNumNodes() || a.CurrentNumEdges() != b.CurrentNumEdges() {
		return false
	}
	if a.InitialNumNodes() != b.InitialNumNodes() || a.InitialNumEdges() != b.InitialNumEdges() {
		return false
	}
	for v := 0; v < a.InitialNumNodes(); v++ {
		if a.IsEnabledNode(v) != b.IsEnabledNode(v) {
			return false
		}
		if a.IsEnabledNode(v) && a.NodeWeight(v) != b.NodeWeight(v) {
			return false
		}
	}
	for e := 0; e < a.InitialNumEdges(); e++ {
		if a.IsEnabledEdge(e) != b.IsEnabledEdge(e) {
			return false
		}
		if !a.IsEnabledEdge(e) {
			continue
		}
		if a.EdgeWeight(e) != b.EdgeWeight(e) || a.EdgeSize(e) != b.EdgeSize(e) {
			return false
		}
		if !samePinSet(a.Pins(e), b.Pins(e)) {
			return false
		}
	}
	return true
}

// VerifyEquivalenceWithPartitionInfo additionally compares partition ids and
// the per-part aggregates.
func VerifyEquivalenceWithPartitionInfo(a, b *Hypergraph) bool {
	if !VerifyEquivalence(a, b) {
		return false
	}
	if a.K() != b.K() {
		return false
	}
	for v := 0; v < a.InitialNumNodes(); v++ {
		if a.IsEnabledNode(v) && a.PartID(v) != b.PartID(v) {
			return false
		}
	}
	for p := 0; p < a.K(); p++ {
		if a.PartWeight(p) != b.PartWeight(p) || a.PartSize(p) != b.PartSize(p) {
			return false
		}
	}
	return true
}

func samePinSet(x, y []int) bool {
	if len(x) != len(y) {
		return false
	}
	xs := append([]int(nil), x...)
	ys := append([]int(nil), y...)
	sort.Ints(xs)
	sort.Ints(ys)
	for i := range xs {
		if xs[i] != ys[i] {
			return false
		}
	}
	return true
}
