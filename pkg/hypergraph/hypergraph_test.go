package hypergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the 7-node / 4-edge example instance used throughout the test suite
var (
	exampleIndex = []int{0, 2, 6, 9, 12}
	examplePins  = []int{0, 1, 0, 6, 4, 5, 4, 5, 3, 1, 2, 3}
)

func exampleHypergraph(t *testing.T, k int) *Hypergraph {
	t.Helper()
	hg, err := New(7, 4, exampleIndex, examplePins, k, nil, nil)
	require.NoError(t, err)
	return hg
}

// checkInvariants verifies pin-count and part-weight consistency from
// scratch after a mutation sequence.
func checkInvariants(t *testing.T, hg *Hypergraph) {
	t.Helper()
	for _, e := range hg.Edges() {
		sum := 0
		for p := 0; p < hg.K(); p++ {
			sum += hg.PinCountInPart(e, p)
			inPart := 0
			for _, pin := range hg.Pins(e) {
				if hg.PartID(pin) == p {
					inPart++
				}
			}
			require.Equal(t, inPart, hg.PinCountInPart(e, p), "pin count of edge %d in part %d", e, p)
		}
		assigned := 0
		for _, pin := range hg.Pins(e) {
			if hg.PartID(pin) != InvalidPartition {
				assigned++
			}
		}
		require.Equal(t, assigned, sum, "pin counts of edge %d", e)

		connectivity := 0
		for p := 0; p < hg.K(); p++ {
			if hg.PinCountInPart(e, p) > 0 {
				connectivity++
			}
		}
		require.Equal(t, connectivity, hg.Connectivity(e), "connectivity of edge %d", e)
	}
	for p := 0; p < hg.K(); p++ {
		weight, size := 0, 0
		for _, v := range hg.Nodes() {
			if hg.PartID(v) == p {
				weight += hg.NodeWeight(v)
				size++
			}
		}
		require.Equal(t, weight, hg.PartWeight(p), "weight of part %d", p)
		require.Equal(t, size, hg.PartSize(p), "size of part %d", p)
	}
}

func TestNewHypergraphBuildsIncidence(t *testing.T) {
	hg := exampleHypergraph(t, 2)

	assert.Equal(t, 7, hg.CurrentNumNodes())
	assert.Equal(t, 4, hg.CurrentNumEdges())
	assert.Equal(t, []int{0, 6, 4, 5}, hg.Pins(1))
	assert.Equal(t, []int{0, 1}, hg.IncidentEdges(0))
	assert.Equal(t, []int{1, 2}, hg.IncidentEdges(4))
	assert.Equal(t, 2, hg.NodeDegree(3))
	assert.Equal(t, 7, hg.TotalWeight())
}

func TestNewHypergraphRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"pin out of range", func() error {
			_, err := New(2, 1, []int{0, 2}, []int{0, 5}, 2, nil, nil)
			return err
		}},
		{"index vector mismatch", func() error {
			_, err := New(2, 2, []int{0, 2}, []int{0, 1}, 2, nil, nil)
			return err
		}},
		{"negative edge weight", func() error {
			_, err := New(2, 1, []int{0, 2}, []int{0, 1}, 2, []int{-4}, nil)
			return err
		}},
		{"negative node weight", func() error {
			_, err := New(2, 1, []int{0, 2}, []int{0, 1}, 2, nil, []int{1, -1})
			return err
		}},
		{"k too small", func() error {
			_, err := New(2, 1, []int{0, 2}, []int{0, 1}, 1, nil, nil)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.build())
		})
	}
}

func TestSetNodePartMaintainsIndices(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	for _, v := range []int{0, 1, 2} {
		require.NoError(t, hg.SetNodePart(v, 0))
	}
	for _, v := range []int{3, 4, 5, 6} {
		require.NoError(t, hg.SetNodePart(v, 1))
	}

	checkInvariants(t, hg)
	assert.Equal(t, 3, hg.PartWeight(0))
	assert.Equal(t, 4, hg.PartWeight(1))
	assert.Equal(t, 1, hg.Connectivity(0))
	assert.Equal(t, 2, hg.Connectivity(1))
	assert.Equal(t, []int{0, 1}, hg.ConnectivitySet(1))
	assert.Equal(t, 2, HyperedgeCut(hg)) // edges 1 and 3 are cut
}

func TestSetNodePartRejectsDoubleAssignment(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	require.NoError(t, hg.SetNodePart(0, 0))
	assert.Error(t, hg.SetNodePart(0, 1))
}

func TestChangeNodePartMaintainsIndices(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	for _, v := range []int{0, 1, 2} {
		require.NoError(t, hg.SetNodePart(v, 0))
	}
	for _, v := range []int{3, 4, 5, 6} {
		require.NoError(t, hg.SetNodePart(v, 1))
	}

	require.NoError(t, hg.ChangeNodePart(3, 1, 0))
	checkInvariants(t, hg)
	assert.Equal(t, 4, hg.PartWeight(0))
	assert.Equal(t, 3, hg.PartWeight(1))

	// edge 3 = {1,2,3} is now internal to part 0
	assert.Equal(t, 1, hg.Connectivity(3))

	assert.Error(t, hg.ChangeNodePart(3, 1, 0), "from part must match")
}

func TestBorderNodes(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	for _, v := range []int{0, 1, 2, 3} {
		require.NoError(t, hg.SetNodePart(v, 0))
	}
	for _, v := range []int{4, 5, 6} {
		require.NoError(t, hg.SetNodePart(v, 1))
	}

	// cut edges: 1 = {0,6,4,5} and 2 = {4,5,3}
	assert.ElementsMatch(t, []int{0, 3, 4, 5, 6}, hg.BorderNodes())
	assert.True(t, hg.IsBorderNode(0))
	assert.False(t, hg.IsBorderNode(1))
	assert.False(t, hg.IsBorderNode(2))
}

func TestContractMergesPinsAndWeights(t *testing.T) {
	hg := exampleHypergraph(t, 2)

	// 0 and 1 share edge 0; contracting them shrinks it below two pins
	memento, err := hg.Contract(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, memento.U)
	assert.Equal(t, 1, memento.V)

	assert.False(t, hg.IsEnabledNode(1))
	assert.Equal(t, 6, hg.CurrentNumNodes())
	assert.Equal(t, 2, hg.NodeWeight(0))
	assert.False(t, hg.IsEnabledEdge(0), "single-pin edge must be disabled")
	assert.Equal(t, 3, hg.CurrentNumEdges())

	// 0 took over 1's pin slot in edge 3
	assert.Contains(t, hg.Pins(3), 0)
	assert.NotContains(t, hg.Pins(3), 1)
	assert.Contains(t, hg.IncidentEdges(0), 3)
}

func TestContractPreconditions(t *testing.T) {
	hg := exampleHypergraph(t, 2)

	_, err := hg.Contract(0, 0)
	assert.Error(t, err, "self contraction")

	require.NoError(t, hg.SetNodePart(0, 0))
	require.NoError(t, hg.SetNodePart(1, 1))
	_, err = hg.Contract(0, 1)
	assert.Error(t, err, "different blocks")

	hg2 := exampleHypergraph(t, 2)
	_, err = hg2.Contract(0, 1)
	require.NoError(t, err)
	_, err = hg2.Contract(2, 1)
	assert.Error(t, err, "disabled partner")
}

func TestContractUncontractIsInvolution(t *testing.T) {
	tests := []struct {
		name  string
		pairs [][2]int
	}{
		{"single pair", [][2]int{{0, 1}}},
		{"chain onto one node", [][2]int{{0, 1}, {0, 6}, {0, 5}}},
		{"independent pairs", [][2]int{{4, 5}, {1, 2}, {0, 6}}},
		{"cascade", [][2]int{{3, 4}, {3, 5}, {1, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := exampleHypergraph(t, 2)
			reference := exampleHypergraph(t, 2)

			history := []Memento{}
			for _, pair := range tt.pairs {
				m, err := mutated.Contract(pair[0], pair[1])
				require.NoError(t, err)
				history = append(history, m)
			}
			for i := len(history) - 1; i >= 0; i-- {
				require.NoError(t, mutated.Uncontract(history[i]))
			}

			assert.True(t, VerifyEquivalenceWithPartitionInfo(mutated, reference))
			for v := 0; v < reference.InitialNumNodes(); v++ {
				assert.Equal(t, reference.NodeWeight(v), mutated.NodeWeight(v))
				assert.Equal(t, reference.NodeDegree(v), mutated.NodeDegree(v))
			}
		})
	}
}

func TestContractUncontractWithPartitionState(t *testing.T) {
	mutated := exampleHypergraph(t, 2)
	reference := exampleHypergraph(t, 2)
	for _, hg := range []*Hypergraph{mutated, reference} {
		for _, v := range []int{0, 1, 2, 3} {
			require.NoError(t, hg.SetNodePart(v, 0))
		}
		for _, v := range []int{4, 5, 6} {
			require.NoError(t, hg.SetNodePart(v, 1))
		}
	}

	m1, err := mutated.Contract(0, 1)
	require.NoError(t, err)
	checkInvariants(t, mutated)
	m2, err := mutated.Contract(4, 5)
	require.NoError(t, err)
	checkInvariants(t, mutated)

	require.NoError(t, mutated.Uncontract(m2))
	checkInvariants(t, mutated)
	require.NoError(t, mutated.Uncontract(m1))
	checkInvariants(t, mutated)

	assert.True(t, VerifyEquivalenceWithPartitionInfo(mutated, reference))
}

func TestUncontractProjectsCurrentBlock(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	for _, v := range []int{0, 1, 2, 3} {
		require.NoError(t, hg.SetNodePart(v, 0))
	}
	for _, v := range []int{4, 5, 6} {
		require.NoError(t, hg.SetNodePart(v, 1))
	}

	m, err := hg.Contract(0, 1)
	require.NoError(t, err)
	require.NoError(t, hg.ChangeNodePart(0, 0, 1))
	require.NoError(t, hg.Uncontract(m))

	assert.Equal(t, 1, hg.PartID(1), "revealed vertex follows its representative")
	checkInvariants(t, hg)
}

func TestResetPartitioning(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	for v := 0; v < 7; v++ {
		require.NoError(t, hg.SetNodePart(v, v%2))
	}
	hg.ResetPartitioning()

	for v := 0; v < 7; v++ {
		assert.Equal(t, InvalidPartition, hg.PartID(v))
	}
	assert.Equal(t, 0, hg.PartWeight(0))
	assert.Equal(t, 0, hg.PartWeight(1))
	assert.Equal(t, 0, hg.Connectivity(1))
	checkInvariants(t, hg)
}

func TestMetrics(t *testing.T) {
	hg, err := New(7, 4, exampleIndex, examplePins, 2, []int{2, 3, 8, 7}, nil)
	require.NoError(t, err)
	for _, v := range []int{0, 1, 2} {
		require.NoError(t, hg.SetNodePart(v, 0))
	}
	for _, v := range []int{3, 4, 5, 6} {
		require.NoError(t, hg.SetNodePart(v, 1))
	}

	// cut edges: 1 (weight 3) and 3 (weight 7)
	assert.Equal(t, 10, HyperedgeCut(hg))
	assert.Equal(t, 20, SOED(hg))
	assert.Equal(t, 10, KMinus1(hg))
	assert.InDelta(t, 0.0, Imbalance(hg), 1e-9)
}

func TestExtractBlock(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	for _, v := range []int{0, 1, 2, 3} {
		require.NoError(t, hg.SetNodePart(v, 0))
	}
	for _, v := range []int{4, 5, 6} {
		require.NoError(t, hg.SetNodePart(v, 1))
	}

	sub, mapping, err := ExtractBlock(hg, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.CurrentNumNodes())
	assert.Equal(t, []int{0, 1, 2, 3}, mapping)
	// only edges 0 = {0,1} and 3 = {1,2,3} survive inside block 0
	assert.Equal(t, 2, sub.CurrentNumEdges())

	sub1, mapping1, err := ExtractBlock(hg, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, sub1.CurrentNumNodes())
	assert.Equal(t, []int{4, 5, 6}, mapping1)
}
