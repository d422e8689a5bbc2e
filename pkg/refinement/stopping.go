package refinement

import (
	"fmt"
)

// StoppingPolicy decides when an FM local search has stopped paying off.
// Reset is called at search start and whenever the best cut improves; Update
// after every performed move.
type StoppingPolicy interface {
	Reset()
	Update(gain int)
	ShouldStop(movesSinceBest int, beta float64, bestCut, cut int) bool
}

// NewStoppingPolicy resolves the configured stopping rule.
func NewStoppingPolicy(rule string, alpha float64, maxFruitlessMoves int) (StoppingPolicy, error) {
	switch rule {
	case "simple":
		return &FruitlessMovesStop{maxFruitlessMoves: maxFruitlessMoves}, nil
	case "adaptive1":
		return &RandomWalkStop{alpha: alpha}, nil
	case "adaptive2":
		return &NGPRandomWalkStop{alpha: alpha}, nil
	default:
		return nil, fmt.Errorf("unknown stopping rule %q", rule)
	}
}

// FruitlessMovesStop stops after a fixed number of moves without an
// improvement.
type FruitlessMovesStop struct {
	maxFruitlessMoves int
	numMoves          int
}

func (s *FruitlessMovesStop) Reset()       { s.numMoves = 0 }
func (s *FruitlessMovesStop) Update(_ int) { s.numMoves++ }
func (s *FruitlessMovesStop) ShouldStop(_ int, _ float64, _, _ int) bool {
	return s.numMoves >= s.maxFruitlessMoves
}

// RandomWalkStop models the gain sequence as a random walk and stops once
// n*mu^2 > alpha*sigma^2 + beta. Mean and variance are maintained with
// Welford's recurrence.
type RandomWalkStop struct {
	alpha            float64
	numSteps         int
	sumGains         float64
	expectedGain     float64
	expectedVariance float64
	mk, mkPrev       float64
	sk, skPrev       float64
}

func (s *RandomWalkStop) Reset() {
	s.numSteps = 0
	s.sumGains = 0
	s.expectedGain = 0
	s.expectedVariance = 0
}

func (s *RandomWalkStop) Update(gain int) {
	g := float64(gain)
	s.numSteps++
	s.sumGains += g
	s.expectedGain = s.sumGains / float64(s.numSteps)
	if s.numSteps > 1 {
		s.mkPrev = s.mk
		s.mk = s.mkPrev + (g-s.mkPrev)/float64(s.numSteps)
		s.skPrev = s.sk
		s.sk = s.skPrev + (g-s.mkPrev)*(g-s.mk)
		s.expectedVariance = s.sk / float64(s.numSteps-1)
	} else {
		s.mk = g
		s.sk = 0
	}
}

func (s *RandomWalkStop) ShouldStop(_ int, beta float64, _, _ int) bool {
	return float64(s.numSteps)*s.expectedGain*s.expectedGain > s.alpha*s.expectedVariance+beta &&
		s.numSteps != 1
}

// NGPRandomWalkStop is the nGP variant driven by the sum of squared gains
// and the distance to the best observed cut.
type NGPRandomWalkStop struct {
	alpha           float64
	sumGainsSquared float64
}

func (s *NGPRandomWalkStop) Reset() { s.sumGainsSquared = 0 }

func (s *NGPRandomWalkStop) Update(gain int) {
	s.sumGainsSquared += float64(gain) * float64(gain)
}

func (s *NGPRandomWalkStop) ShouldStop(movesSinceBest int, beta float64, bestCut, cut int) bool {
	d := float64(bestCut) - float64(cut)
	return float64(movesSinceBest) >=
		s.alpha*((s.sumGainsSquared*float64(movesSinceBest))/(2.0*d*d-0.5)+beta)
}
