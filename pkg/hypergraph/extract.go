package hypergraph

import (
	"fmt"
)

// ExtractBlock builds the sub-hypergraph induced by block p: its enabled
// vertices, and every enabled hyperedge restricted to pins inside the block
// as long as at least two pins remain. The returned mapping translates
// sub-hypergraph node ids back to ids in hg. k is the number of blocks the
// extracted hypergraph will be partitioned into.
func ExtractBlock(hg *Hypergraph, p, k int) (*Hypergraph, []int, error) {
	if p < 0 || p >= hg.K() {
		return nil, nil, fmt.Errorf("block %d out of range [0,%d)", p, hg.K())
	}

	subToOrig := make([]int, 0, hg.PartSize(p))
	origToSub := make(map[int]int, hg.PartSize(p))
	nodeWeights := make([]int, 0, hg.PartSize(p))
	for _, v := range hg.Nodes() {
		if hg.PartID(v) == p {
			origToSub[v] = len(subToOrig)
			subToOrig = append(subToOrig, v)
			nodeWeights = append(nodeWeights, hg.NodeWeight(v))
		}
	}
	if len(subToOrig) == 0 {
		return nil, nil, fmt.Errorf("block %d is empty", p)
	}

	indexVector := []int{0}
	edgeVector := []int{}
	edgeWeights := []int{}
	for _, e := range hg.Edges() {
		inside := 0
		for _, pin := range hg.Pins(e) {
			if hg.PartID(pin) == p {
				inside++
			}
		}
		if inside < 2 {
			continue
		}
		for _, pin := range hg.Pins(e) {
			if hg.PartID(pin) == p {
				edgeVector = append(edgeVector, origToSub[pin])
			}
		}
		indexVector = append(indexVector, len(edgeVector))
		edgeWeights = append(edgeWeights, hg.EdgeWeight(e))
	}

	sub, err := New(len(subToOrig), len(indexVector)-1, indexVector, edgeVector, k, edgeWeights, nodeWeights)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting block %d: %w", p, err)
	}
	return sub, subToOrig, nil
}
