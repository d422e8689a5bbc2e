package refinement

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

func exampleHypergraph(t *testing.T, k int) *hypergraph.Hypergraph {
	t.Helper()
	hg, err := hypergraph.New(7, 4,
		[]int{0, 2, 6, 9, 12},
		[]int{0, 1, 0, 6, 4, 5, 4, 5, 3, 1, 2, 3},
		k, nil, nil)
	require.NoError(t, err)
	return hg
}

func assignParts(t *testing.T, hg *hypergraph.Hypergraph, parts []int) {
	t.Helper()
	for v, p := range parts {
		require.NoError(t, hg.SetNodePart(v, p))
	}
}

func fruitless(n int) StoppingPolicy {
	return &FruitlessMovesStop{maxFruitlessMoves: n}
}

func TestTwoWayGainMatchesCutDelta(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	assignParts(t, hg, []int{0, 0, 0, 0, 1, 1, 1})
	r := NewTwoWayFM(hg, 7, fruitless(100), random.NewSource(1), zerolog.Nop())

	for _, v := range hg.BorderNodes() {
		from := hg.PartID(v)
		to := 1 - from
		gain := r.gain(v, from, to)

		cutBefore := hypergraph.HyperedgeCut(hg)
		require.NoError(t, hg.ChangeNodePart(v, from, to))
		cutAfter := hypergraph.HyperedgeCut(hg)
		assert.Equal(t, gain, cutBefore-cutAfter, "gain law violated for hypernode %d", v)
		require.NoError(t, hg.ChangeNodePart(v, to, from))
	}
}

func TestTwoWayRefineImprovesCut(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	// cut 3; moving hypernode 3 over yields cut 2
	assignParts(t, hg, []int{0, 0, 1, 1, 0, 0, 1})
	require.Equal(t, 3, hypergraph.HyperedgeCut(hg))

	r := NewTwoWayFM(hg, 5, fruitless(100), random.NewSource(1), zerolog.Nop())
	cut := hypergraph.HyperedgeCut(hg)
	improved, err := r.Refine(hg.BorderNodes(), &cut)
	require.NoError(t, err)

	assert.True(t, improved)
	assert.LessOrEqual(t, cut, 2)
	assert.Equal(t, cut, hypergraph.HyperedgeCut(hg), "rollback must land on the best observed cut")
	assert.Greater(t, hg.PartSize(0), 0)
	assert.Greater(t, hg.PartSize(1), 0)
}

func TestTwoWayRefineNeverRegresses(t *testing.T) {
	seeds := []int64{1, 2, 3, 4, 5}
	for _, seed := range seeds {
		hg := exampleHypergraph(t, 2)
		assignParts(t, hg, []int{0, 1, 0, 1, 0, 1, 0})
		initial := hypergraph.HyperedgeCut(hg)

		r := NewTwoWayFM(hg, 4, fruitless(100), random.NewSource(seed), zerolog.Nop())
		cut := initial
		_, err := r.Refine(hg.BorderNodes(), &cut)
		require.NoError(t, err)

		assert.LessOrEqual(t, cut, initial, "seed %d", seed)
		assert.Equal(t, cut, hypergraph.HyperedgeCut(hg), "seed %d", seed)
	}
}

func TestTwoWayRefineRespectsBalance(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	assignParts(t, hg, []int{0, 0, 0, 0, 1, 1, 1})

	r := NewTwoWayFM(hg, 4, fruitless(100), random.NewSource(1), zerolog.Nop())
	cut := hypergraph.HyperedgeCut(hg)
	_, err := r.Refine(hg.BorderNodes(), &cut)
	require.NoError(t, err)

	assert.LessOrEqual(t, hg.PartWeight(0), 4)
	assert.LessOrEqual(t, hg.PartWeight(1), 4)
}

func TestKWayComputeMaxGainMatchesCutDelta(t *testing.T) {
	hg := exampleHypergraph(t, 3)
	assignParts(t, hg, []int{0, 0, 1, 1, 2, 2, 0})
	r := NewMaxGainKWayFM(hg, 7, fruitless(100), random.NewSource(1), zerolog.Nop())

	for _, v := range hg.BorderNodes() {
		gain, target := r.computeMaxGain(v)
		require.NotEqual(t, hypergraph.InvalidPartition, target)

		from := hg.PartID(v)
		cutBefore := hypergraph.HyperedgeCut(hg)
		require.NoError(t, hg.ChangeNodePart(v, from, target))
		cutAfter := hypergraph.HyperedgeCut(hg)
		assert.Equal(t, gain, cutBefore-cutAfter, "gain law violated for hypernode %d", v)
		require.NoError(t, hg.ChangeNodePart(v, target, from))
	}
}

func TestKWayRefineImprovesCut(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	assignParts(t, hg, []int{0, 0, 1, 1, 0, 0, 1})
	require.Equal(t, 3, hypergraph.HyperedgeCut(hg))

	r := NewMaxGainKWayFM(hg, 6, fruitless(100), random.NewSource(1), zerolog.Nop())
	cut := hypergraph.HyperedgeCut(hg)
	improved, err := r.Refine(hg.BorderNodes(), &cut)
	require.NoError(t, err)

	assert.True(t, improved)
	assert.LessOrEqual(t, cut, 2)
	assert.Equal(t, cut, hypergraph.HyperedgeCut(hg), "rollback must land on the best observed cut")
}

func TestKWayRefineNeverRegresses(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		hg := exampleHypergraph(t, 3)
		assignParts(t, hg, []int{0, 1, 2, 0, 1, 2, 0})
		initial := hypergraph.HyperedgeCut(hg)

		r := NewMaxGainKWayFM(hg, 4, fruitless(100), random.NewSource(seed), zerolog.Nop())
		cut := initial
		_, err := r.Refine(hg.BorderNodes(), &cut)
		require.NoError(t, err)

		assert.LessOrEqual(t, cut, initial, "seed %d", seed)
		assert.Equal(t, cut, hypergraph.HyperedgeCut(hg), "seed %d", seed)
	}
}

func TestKWayRefineRefusesEmptyingABlock(t *testing.T) {
	// a 3-block assignment where block 2 holds a single vertex
	hg := exampleHypergraph(t, 3)
	assignParts(t, hg, []int{0, 0, 0, 1, 1, 1, 2})

	r := NewMaxGainKWayFM(hg, 100, fruitless(100), random.NewSource(1), zerolog.Nop())
	cut := hypergraph.HyperedgeCut(hg)
	_, err := r.Refine(hg.BorderNodes(), &cut)
	require.NoError(t, err)

	for p := 0; p < 3; p++ {
		assert.Greater(t, hg.PartSize(p), 0, "block %d was emptied", p)
	}
}

func TestKWayRefineMarksRefusedMoves(t *testing.T) {
	hg := exampleHypergraph(t, 2)
	assignParts(t, hg, []int{0, 0, 0, 0, 1, 1, 1})

	// with an impossible weight bound every move is refused, but each refused
	// vertex is marked, the search terminates and the partition is unchanged
	r := NewMaxGainKWayFM(hg, 1, fruitless(100), random.NewSource(1), zerolog.Nop())
	cut := hypergraph.HyperedgeCut(hg)
	improved, err := r.Refine(hg.BorderNodes(), &cut)
	require.NoError(t, err)

	for _, v := range hg.BorderNodes() {
		assert.True(t, r.marked[v], "refused hypernode %d not marked", v)
	}
	assert.False(t, improved)
	assert.Equal(t, cut, hypergraph.HyperedgeCut(hg))
	assert.Equal(t, 4, hg.PartWeight(0))
	assert.Equal(t, 3, hg.PartWeight(1))
}
