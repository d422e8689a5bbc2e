package initial

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

// RandomInitial scatters vertices over the k blocks, probing forward from a
// random block until one has room.
type RandomInitial struct {
	hg            *hypergraph.Hypergraph
	maxPartWeight int
	rng           *random.Source
	logger        zerolog.Logger
}

func NewRandomInitial(hg *hypergraph.Hypergraph, maxPartWeight int, rng *random.Source, logger zerolog.Logger) *RandomInitial {
	return &RandomInitial{hg: hg, maxPartWeight: maxPartWeight, rng: rng, logger: logger}
}

func (r *RandomInitial) Partition(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	k := r.hg.K()
	nodes := r.hg.Nodes()
	r.rng.ShuffleInts(nodes)
	for _, v := range nodes {
		p := r.rng.IntN(k)
		chosen := -1
		for probe := 0; probe < k; probe++ {
			candidate := (p + probe) % k
			if r.hg.PartWeight(candidate)+r.hg.NodeWeight(v) <= r.maxPartWeight {
				chosen = candidate
				break
			}
		}
		if chosen < 0 {
			chosen = lightest(r.hg)
		}
		if err := r.hg.SetNodePart(v, chosen); err != nil {
			return fmt.Errorf("random initial partition: %w", err)
		}
	}
	r.logger.Debug().Int("cut", hypergraph.HyperedgeCut(r.hg)).Msg("random initial partition completed")
	return nil
}

// BFSInitial grows each block as a breadth-first frontier around its start
// vertex.
type BFSInitial struct {
	hg            *hypergraph.Hypergraph
	maxPartWeight int
	startPolicy   StartNodePolicy
	rng           *random.Source
	logger        zerolog.Logger
}

func NewBFSInitial(hg *hypergraph.Hypergraph, maxPartWeight int, startPolicy StartNodePolicy, rng *random.Source, logger zerolog.Logger) *BFSInitial {
	return &BFSInitial{hg: hg, maxPartWeight: maxPartWeight, startPolicy: startPolicy, rng: rng, logger: logger}
}

func (b *BFSInitial) Partition(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	k := b.hg.K()
	queues := make([][]int, k)
	open := make([]bool, k)
	for p, s := range b.startPolicy.StartNodes(b.hg, k, b.rng) {
		queues[p] = append(queues[p], s)
		open[p] = true
	}

	remaining := b.hg.CurrentNumNodes()
	for remaining > 0 && anyEnabled(open) {
		for p := 0; p < k && remaining > 0; p++ {
			if !open[p] {
				continue
			}
			v := -1
			for len(queues[p]) > 0 {
				head := queues[p][0]
				queues[p] = queues[p][1:]
				if b.hg.PartID(head) == hypergraph.InvalidPartition {
					v = head
					break
				}
			}
			if v < 0 {
				v = b.randomUnassigned()
				if v < 0 {
					open[p] = false
					continue
				}
			}
			if b.hg.PartWeight(p)+b.hg.NodeWeight(v) > b.maxPartWeight {
				open[p] = false
				continue
			}
			if err := b.hg.SetNodePart(v, p); err != nil {
				return fmt.Errorf("bfs initial partition: %w", err)
			}
			remaining--
			for _, e := range b.hg.IncidentEdges(v) {
				if !b.hg.IsEnabledEdge(e) {
					continue
				}
				for _, pin := range b.hg.Pins(e) {
					if b.hg.PartID(pin) == hypergraph.InvalidPartition {
						queues[p] = append(queues[p], pin)
					}
				}
			}
		}
	}

	for _, v := range b.hg.Nodes() {
		if b.hg.PartID(v) == hypergraph.InvalidPartition {
			if err := b.hg.SetNodePart(v, lightest(b.hg)); err != nil {
				return err
			}
		}
	}
	b.logger.Debug().Int("cut", hypergraph.HyperedgeCut(b.hg)).Msg("bfs initial partition completed")
	return nil
}

func (b *BFSInitial) randomUnassigned() int {
	candidates := []int{}
	for _, v := range b.hg.Nodes() {
		if b.hg.PartID(v) == hypergraph.InvalidPartition {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[b.rng.IntN(len(candidates))]
}

func lightest(hg *hypergraph.Hypergraph) int {
	best := 0
	for p := 1; p < hg.K(); p++ {
		if hg.PartWeight(p) < hg.PartWeight(best) {
			best = p
		}
	}
	return best
}
