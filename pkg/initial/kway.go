package initial

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/datastructure"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/refinement"
)

// GreedyKWayRoundRobin grows all k blocks simultaneously. Every block owns a
// bucket queue keyed by the gain of pulling a vertex into that block; blocks
// take turns claiming their best candidate until they hit their weight bound
// or every vertex is assigned. Vertices start out unassigned (part id -1)
// rather than being parked in a real block.
type GreedyKWayRoundRobin struct {
	hg            *hypergraph.Hypergraph
	k             int
	maxPartWeight int
	startPolicy   StartNodePolicy
	gainPolicy    GainPolicy
	refiner       refinement.Refiner
	rng           *random.Source
	logger        zerolog.Logger
}

// NewGreedyKWayRoundRobin wires the k-way grower. refiner may be nil to skip
// the trailing FM pass.
func NewGreedyKWayRoundRobin(hg *hypergraph.Hypergraph, maxPartWeight int,
	startPolicy StartNodePolicy, gainPolicy GainPolicy, refiner refinement.Refiner,
	rng *random.Source, logger zerolog.Logger) *GreedyKWayRoundRobin {
	return &GreedyKWayRoundRobin{
		hg:            hg,
		k:             hg.K(),
		maxPartWeight: maxPartWeight,
		startPolicy:   startPolicy,
		gainPolicy:    gainPolicy,
		refiner:       refiner,
		rng:           rng,
		logger:        logger,
	}
}

// Partition assigns every enabled vertex to one of the k blocks.
func (g *GreedyKWayRoundRobin) Partition(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	maxGain := g.hg.TotalEdgeWeight()
	queues := make([]*datastructure.BucketQueue, g.k)
	enabled := make([]bool, g.k)
	for p := 0; p < g.k; p++ {
		queues[p] = datastructure.NewBucketQueue(maxGain, g.hg.InitialNumNodes())
		enabled[p] = true
	}

	starts := g.startPolicy.StartNodes(g.hg, g.k, g.rng)
	for p, s := range starts {
		queues[p].Push(s, g.gainPolicy.Gain(g.hg, s, p))
	}

	unassigned := g.hg.CurrentNumNodes()
	for unassigned > 0 && anyEnabled(enabled) {
		for p := 0; p < g.k && unassigned > 0; p++ {
			if !enabled[p] {
				continue
			}
			if queues[p].Empty() {
				s := g.randomUnassignedNode()
				if s < 0 {
					enabled[p] = false
					continue
				}
				queues[p].Push(s, g.gainPolicy.Gain(g.hg, s, p))
			}
			v := queues[p].Max()
			if g.hg.PartWeight(p)+g.hg.NodeWeight(v) > g.maxPartWeight {
				// block is full; the candidate stays available to others
				enabled[p] = false
				continue
			}
			queues[p].DeleteMax()
			if err := g.hg.SetNodePart(v, p); err != nil {
				return fmt.Errorf("greedy k-way assignment: %w", err)
			}
			unassigned--
			for q := 0; q < g.k; q++ {
				if q != p && queues[q].Contains(v) {
					queues[q].DeleteNode(v)
				}
			}
			g.rateNeighbors(queues, v, p)
		}
	}

	// all blocks saturated: place leftovers on the lightest block
	if unassigned > 0 {
		g.logger.Debug().Int("unassigned", unassigned).Msg("all blocks saturated, placing leftovers")
		for _, v := range g.hg.Nodes() {
			if g.hg.PartID(v) != hypergraph.InvalidPartition {
				continue
			}
			if err := g.hg.SetNodePart(v, lightest(g.hg)); err != nil {
				return err
			}
		}
	}

	g.logger.Debug().Int("cut", hypergraph.HyperedgeCut(g.hg)).Msg("greedy k-way growth completed")

	if g.refiner != nil {
		bestCut := hypergraph.HyperedgeCut(g.hg)
		if _, err := g.refiner.Refine(g.hg.BorderNodes(), &bestCut); err != nil {
			return fmt.Errorf("k-way initial refinement: %w", err)
		}
	}
	return nil
}

// rateNeighbors refreshes the queues after v joined block p: unassigned pins
// of v's edges enter p's queue and get their keys refreshed everywhere else
// they already appear.
func (g *GreedyKWayRoundRobin) rateNeighbors(queues []*datastructure.BucketQueue, v, p int) {
	for _, e := range g.hg.IncidentEdges(v) {
		if !g.hg.IsEnabledEdge(e) {
			continue
		}
		for _, pin := range g.hg.Pins(e) {
			if g.hg.PartID(pin) != hypergraph.InvalidPartition {
				continue
			}
			for q := 0; q < g.k; q++ {
				if queues[q].Contains(pin) {
					queues[q].UpdateKey(pin, g.gainPolicy.Gain(g.hg, pin, q))
				} else if q == p {
					queues[p].Push(pin, g.gainPolicy.Gain(g.hg, pin, p))
				}
			}
		}
	}
}

func (g *GreedyKWayRoundRobin) randomUnassignedNode() int {
	candidates := []int{}
	for _, v := range g.hg.Nodes() {
		if g.hg.PartID(v) == hypergraph.InvalidPartition {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[g.rng.IntN(len(candidates))]
}

func anyEnabled(enabled []bool) bool {
	for _, e := range enabled {
		if e {
			return true
		}
	}
	return false
}
