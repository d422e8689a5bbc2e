package initial

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/datastructure"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/refinement"
)

// GreedyBisection grows block 0 out of block 1 one max-gain vertex at a
// time, rolls back to the best balanced cut seen during growth, and finishes
// with a two-way FM pass.
type GreedyBisection struct {
	hg               *hypergraph.Hypergraph
	maxPartWeight    int
	targetPartWeight int
	startPolicy      StartNodePolicy
	gainPolicy       GainPolicy
	refiner          refinement.Refiner
	rng              *random.Source
	logger           zerolog.Logger
}

// NewGreedyBisection wires the bisection partitioner. refiner may be nil to
// skip the trailing FM pass.
func NewGreedyBisection(hg *hypergraph.Hypergraph, maxPartWeight, targetPartWeight int,
	startPolicy StartNodePolicy, gainPolicy GainPolicy, refiner refinement.Refiner,
	rng *random.Source, logger zerolog.Logger) *GreedyBisection {
	return &GreedyBisection{
		hg:               hg,
		maxPartWeight:    maxPartWeight,
		targetPartWeight: targetPartWeight,
		startPolicy:      startPolicy,
		gainPolicy:       gainPolicy,
		refiner:          refiner,
		rng:              rng,
		logger:           logger,
	}
}

// Partition assigns every enabled vertex to one of the two blocks.
func (b *GreedyBisection) Partition(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for _, v := range b.hg.Nodes() {
		if err := b.hg.SetNodePart(v, 1); err != nil {
			return fmt.Errorf("seeding bisection: %w", err)
		}
	}

	bq := datastructure.NewBucketQueue(b.hg.TotalEdgeWeight(), b.hg.InitialNumNodes())
	start := b.startPolicy.StartNodes(b.hg, 2, b.rng)
	if len(start) == 0 {
		return fmt.Errorf("no start node available")
	}
	bq.Push(start[0], b.gainPolicy.Gain(b.hg, start[0], 0))

	// block 1 must stay within its bound, which floors block 0
	lowerBound := b.hg.TotalWeight() - b.maxPartWeight
	cut := 0
	best := math.MaxInt
	bestIndex := -1
	moves := []int{}

	for b.hg.PartWeight(0) < b.targetPartWeight {
		var v int
		if bq.Empty() {
			v = b.randomNodeInBlockOne()
			if v < 0 {
				break
			}
		} else {
			v = bq.DeleteMax()
			if b.hg.PartID(v) != 1 {
				continue
			}
		}
		if b.hg.PartWeight(0)+b.hg.NodeWeight(v) > b.maxPartWeight {
			break
		}

		gain := b.gainPolicy.Gain(b.hg, v, 0)
		if err := b.hg.ChangeNodePart(v, 1, 0); err != nil {
			return err
		}
		cut -= gain
		moves = append(moves, v)
		if b.hg.PartWeight(0) >= lowerBound && cut < best {
			best = cut
			bestIndex = len(moves) - 1
		}

		for _, e := range b.hg.IncidentEdges(v) {
			if !b.hg.IsEnabledEdge(e) {
				continue
			}
			for _, pin := range b.hg.Pins(e) {
				if b.hg.PartID(pin) != 1 {
					continue
				}
				g := b.gainPolicy.Gain(b.hg, pin, 0)
				if bq.Contains(pin) {
					bq.UpdateKey(pin, g)
				} else {
					bq.Push(pin, g)
				}
			}
		}
	}

	if bestIndex >= 0 {
		for i := len(moves) - 1; i > bestIndex; i-- {
			if err := b.hg.ChangeNodePart(moves[i], 0, 1); err != nil {
				return err
			}
		}
	}

	b.logger.Debug().
		Int("block0_weight", b.hg.PartWeight(0)).
		Int("block1_weight", b.hg.PartWeight(1)).
		Int("cut", hypergraph.HyperedgeCut(b.hg)).
		Msg("greedy bisection grown")

	if b.refiner != nil {
		bestCut := hypergraph.HyperedgeCut(b.hg)
		if _, err := b.refiner.Refine(b.hg.BorderNodes(), &bestCut); err != nil {
			return fmt.Errorf("bisection refinement: %w", err)
		}
	}
	return nil
}

func (b *GreedyBisection) randomNodeInBlockOne() int {
	candidates := []int{}
	for _, v := range b.hg.Nodes() {
		if b.hg.PartID(v) == 1 {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[b.rng.IntN(len(candidates))]
}
