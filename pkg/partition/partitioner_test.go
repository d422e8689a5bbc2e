package partition

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hgio"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/initial"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

const testInstanceDir = "../../test_instances"

func testConfig(k int, epsilon float64, seed int64) *Config {
	cfg := NewConfig()
	cfg.Set("partition.k", k)
	cfg.Set("partition.epsilon", epsilon)
	cfg.Set("partition.seed", seed)
	cfg.Set("logging.level", "error")
	return cfg
}

func readExample(t *testing.T, k int) *hypergraph.Hypergraph {
	t.Helper()
	hg, err := hgio.ReadHypergraph(filepath.Join(testInstanceDir, "unweighted_hypergraph.hgr"), k)
	require.NoError(t, err)
	return hg
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"k too small", "partition.k", 1},
		{"negative epsilon", "partition.epsilon", -0.5},
		{"unknown mode", "partition.mode", "banana"},
		{"unknown technique", "initial.technique", "banana"},
		{"unknown stopping rule", "refinement.stopping_rule", "banana"},
		{"unknown start policy", "initial.start_policy", "banana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(2, 0.03, 1)
			cfg.Set(tt.key, tt.value)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, testConfig(2, 0.03, 1).Validate())
}

func TestConfigMaxVertexWeightValidation(t *testing.T) {
	hg, err := hypergraph.New(2, 1, []int{0, 2}, []int{0, 1}, 2, nil, []int{3, 9})
	require.NoError(t, err)

	cfg := testConfig(2, 0.03, 1)
	cfg.Set("coarsening.max_vertex_weight", 5)
	assert.Error(t, cfg.ValidateForHypergraph(hg))

	cfg.Set("coarsening.max_vertex_weight", 9)
	assert.NoError(t, cfg.ValidateForHypergraph(hg))
}

func TestBisectionOfExampleInstance(t *testing.T) {
	hg := readExample(t, 2)
	cfg := testConfig(2, 0.03, 1)
	cfg.Set("initial.technique", "bfs")

	result, err := NewPartitioner(cfg).Partition(context.Background(), hg)
	require.NoError(t, err)

	assert.Greater(t, hg.PartSize(0), 0)
	assert.Greater(t, hg.PartSize(1), 0)
	assert.LessOrEqual(t, hg.PartWeight(0), 4)
	assert.LessOrEqual(t, hg.PartWeight(1), 4)

	// the pipeline must not end up worse than its own starting point
	bfsOnly := readExample(t, 2)
	b := initial.NewBFSInitial(bfsOnly, 4, initial.BFSStartNodes{}, random.NewSource(1), zerolog.Nop())
	require.NoError(t, b.Partition(context.Background()))
	assert.LessOrEqual(t, result.Cut, hypergraph.HyperedgeCut(bfsOnly))
}

func triangleRing(t *testing.T, n, k int) *hypergraph.Hypergraph {
	t.Helper()
	index := []int{}
	pins := []int{}
	offset := 0
	for i := 0; i < n; i++ {
		index = append(index, offset)
		pins = append(pins, i, (i+1)%n, (i+2)%n)
		offset += 3
	}
	index = append(index, offset)
	hg, err := hypergraph.New(n, n, index, pins, k, nil, nil)
	require.NoError(t, err)
	return hg
}

func TestDirectKWayBalance(t *testing.T) {
	for _, k := range []int{2, 3, 4} {
		hg := triangleRing(t, 24, k)
		cfg := testConfig(k, 0.10, 3)

		result, err := NewPartitioner(cfg).Partition(context.Background(), hg)
		require.NoError(t, err)

		assert.LessOrEqual(t, result.Imbalance, 0.10, "k=%d", k)
		for p := 0; p < k; p++ {
			assert.Greater(t, hg.PartSize(p), 0, "k=%d block %d", k, p)
		}
		for v, p := range result.Partition {
			assert.Equal(t, hg.PartID(v), p)
			assert.GreaterOrEqual(t, p, 0)
			assert.Less(t, p, k)
		}
	}
}

func TestDirectKWayWithCoarsening(t *testing.T) {
	hg := triangleRing(t, 24, 2)
	cfg := testConfig(2, 0.10, 3)
	cfg.Set("coarsening.contraction_limit", 12)

	result, err := NewPartitioner(cfg).Partition(context.Background(), hg)
	require.NoError(t, err)

	assert.Greater(t, result.Statistics.Contractions, 0, "coarsening must have happened")
	assert.LessOrEqual(t, result.Imbalance, 0.10)
	assert.Greater(t, hg.PartSize(0), 0)
	assert.Greater(t, hg.PartSize(1), 0)
	assert.LessOrEqual(t, result.Cut, result.Statistics.InitialCut)
}

func TestRecursiveBisection(t *testing.T) {
	index := []int{}
	pins := []int{}
	offset := 0
	n := 16
	for i := 0; i < n; i++ {
		index = append(index, offset)
		pins = append(pins, i, (i+1)%n, (i+2)%n)
		offset += 3
	}
	index = append(index, offset)

	hg, err := hypergraph.New(n, n, index, pins, 4, nil, nil)
	require.NoError(t, err)
	cfg := testConfig(4, 0.10, 2)
	cfg.Set("partition.mode", "rb")
	cfg.Set("coarsening.contraction_limit", 8)

	result, err := NewPartitioner(cfg).Partition(context.Background(), hg)
	require.NoError(t, err)

	for p := 0; p < 4; p++ {
		assert.Greater(t, hg.PartSize(p), 0, "block %d", p)
	}
	for _, p := range result.Partition {
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 4)
	}
}

func TestDeterminismForFixedSeed(t *testing.T) {
	run := func() *Result {
		hg := readExample(t, 2)
		cfg := testConfig(2, 0.03, 42)
		result, err := NewPartitioner(cfg).Partition(context.Background(), hg)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, first.Partition, second.Partition)
	assert.Equal(t, first.Cut, second.Cut)
}

func TestPartitionRejectsMismatchedK(t *testing.T) {
	hg := readExample(t, 2)
	cfg := testConfig(3, 0.03, 1)
	_, err := NewPartitioner(cfg).Partition(context.Background(), hg)
	assert.Error(t, err)
}

func TestPartitionHonorsContextCancellation(t *testing.T) {
	hg := readExample(t, 2)
	cfg := testConfig(2, 0.03, 1)
	cfg.Set("coarsening.contraction_limit", 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPartitioner(cfg).Partition(ctx, hg)
	assert.Error(t, err)
}
