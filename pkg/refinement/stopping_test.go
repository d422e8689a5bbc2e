package refinement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoppingPolicy(t *testing.T) {
	for _, rule := range []string{"simple", "adaptive1", "adaptive2"} {
		policy, err := NewStoppingPolicy(rule, 1.0, 10)
		require.NoError(t, err)
		require.NotNil(t, policy)
	}
	_, err := NewStoppingPolicy("bogus", 1.0, 10)
	assert.Error(t, err)
}

func TestFruitlessMovesStop(t *testing.T) {
	policy := &FruitlessMovesStop{maxFruitlessMoves: 3}
	policy.Reset()

	assert.False(t, policy.ShouldStop(0, 0, 0, 0))
	policy.Update(1)
	policy.Update(-1)
	assert.False(t, policy.ShouldStop(2, 0, 0, 0))
	policy.Update(0)
	assert.True(t, policy.ShouldStop(3, 0, 0, 0))

	policy.Reset()
	assert.False(t, policy.ShouldStop(0, 0, 0, 0))
}

func TestRandomWalkStop(t *testing.T) {
	policy := &RandomWalkStop{alpha: 1.0}
	policy.Reset()

	policy.Update(5)
	assert.False(t, policy.ShouldStop(1, 10, 0, 0), "a single step never stops")

	// constant gains have zero variance, so n*mu^2 grows past alpha*var+beta
	policy.Update(5)
	assert.True(t, policy.ShouldStop(2, 10, 0, 0))

	policy.Reset()
	assert.False(t, policy.ShouldStop(0, 10, 0, 0))
}

func TestRandomWalkStopKeepsSearchingUnderHighVariance(t *testing.T) {
	policy := &RandomWalkStop{alpha: 1000.0}
	policy.Reset()
	for _, g := range []int{40, -40, 40, -40} {
		policy.Update(g)
	}
	// mean is near zero and the variance term dominates
	assert.False(t, policy.ShouldStop(4, 10, 0, 0))
}

func TestNGPRandomWalkStop(t *testing.T) {
	policy := &NGPRandomWalkStop{alpha: 1.0}
	policy.Reset()

	// far from the best cut with large squared gains: keep searching
	policy.Update(40)
	assert.False(t, policy.ShouldStop(1, 0, 10, 5))

	// at the best cut the distance term collapses and the search stops
	policy.Reset()
	policy.Update(2)
	assert.True(t, policy.ShouldStop(1, 0, 10, 10))
}
