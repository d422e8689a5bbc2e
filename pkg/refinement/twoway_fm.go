package refinement

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/datastructure"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

// Refiner is the narrow contract both FM refiners implement. Refine runs one
// local search seeded with the given nodes, updates bestCut to the best cut
// it observed, and reports whether it improved on the initial cut.
type Refiner interface {
	Refine(refinementNodes []int, bestCut *int) (bool, error)
}

type moveRecord struct {
	node int
	from int
	to   int
}

// TwoWayFM is the boundary Fiduccia-Mattheyses refiner for bisections. One
// bucket queue per direction holds border vertices keyed by the gain of
// moving them to the other side; after the search the move log is rolled
// back to the prefix that achieved the best observed cut.
type TwoWayFM struct {
	hg            *hypergraph.Hypergraph
	maxPartWeight int
	policy        StoppingPolicy
	rng           *random.Source
	logger        zerolog.Logger

	pq     [2]*datastructure.BucketQueue
	marked []bool
	moves  []moveRecord
}

// NewTwoWayFM allocates refiner state sized to the hypergraph's initial node
// count; the queues are reused across refinement calls.
func NewTwoWayFM(hg *hypergraph.Hypergraph, maxPartWeight int, policy StoppingPolicy, rng *random.Source, logger zerolog.Logger) *TwoWayFM {
	maxGain := hg.TotalEdgeWeight()
	r := &TwoWayFM{
		hg:            hg,
		maxPartWeight: maxPartWeight,
		policy:        policy,
		rng:           rng,
		logger:        logger,
		marked:        make([]bool, hg.InitialNumNodes()),
		moves:         make([]moveRecord, 0, hg.InitialNumNodes()),
	}
	r.pq[0] = datastructure.NewBucketQueue(maxGain, hg.InitialNumNodes())
	r.pq[1] = datastructure.NewBucketQueue(maxGain, hg.InitialNumNodes())
	return r
}

// Refine runs one two-way FM pass seeded with refinementNodes.
func (r *TwoWayFM) Refine(refinementNodes []int, bestCut *int) (bool, error) {
	if r.hg.K() < 2 {
		return false, fmt.Errorf("two-way refinement needs k >= 2")
	}
	r.pq[0].Clear()
	r.pq[1].Clear()
	for i := range r.marked {
		r.marked[i] = false
	}
	r.moves = r.moves[:0]

	seeds := append([]int(nil), refinementNodes...)
	r.rng.ShuffleInts(seeds)
	for _, v := range seeds {
		r.activate(v)
	}

	initialCut := *bestCut
	cut := initialCut
	best := initialCut
	bestIndex := -1
	beta := math.Log2(float64(r.hg.CurrentNumNodes()))
	r.policy.Reset()

	for !(r.pq[0].Empty() && r.pq[1].Empty()) {
		movesSinceBest := len(r.moves) - (bestIndex + 1)
		if r.policy.ShouldStop(movesSinceBest, beta, best, cut) {
			break
		}

		to, feasible := r.selectDirection()
		v := r.pq[to].DeleteMax()
		from := r.hg.PartID(v)
		r.marked[v] = true
		if !feasible {
			// balance refusal is not an error; the vertex stays marked
			r.logger.Debug().Int("node", v).Int("to", to).Msg("skipping move, would violate balance")
			continue
		}
		gain := r.gain(v, from, to)
		if err := r.hg.ChangeNodePart(v, from, to); err != nil {
			return false, err
		}
		cut -= gain
		r.policy.Update(gain)
		r.moves = append(r.moves, moveRecord{node: v, from: from, to: to})

		r.updateNeighbors(v, from, to)

		if cut < best || (cut == best && r.rng.FlipCoin()) {
			if cut < best {
				r.policy.Reset()
			}
			best = cut
			bestIndex = len(r.moves) - 1
		}
	}

	r.rollback(bestIndex)
	*bestCut = best
	return best < initialCut, nil
}

// selectDirection picks the target side of the next move: highest feasible
// gain first, and when both directions offer the same gain, the move into
// the lighter block.
func (r *TwoWayFM) selectDirection() (to int, feasible bool) {
	candidate := -1
	candidateFeasible := false
	for side := 0; side < 2; side++ {
		if r.pq[side].Empty() {
			continue
		}
		ok := r.hg.PartWeight(side)+r.hg.NodeWeight(r.pq[side].Max()) <= r.maxPartWeight
		switch {
		case candidate < 0,
			ok && !candidateFeasible,
			ok == candidateFeasible && r.pq[side].MaxKey() > r.pq[candidate].MaxKey(),
			ok == candidateFeasible && r.pq[side].MaxKey() == r.pq[candidate].MaxKey() &&
				r.hg.PartWeight(side) < r.hg.PartWeight(candidate):
			candidate = side
			candidateFeasible = ok
		}
	}
	return candidate, candidateFeasible
}

// gain returns the cut reduction of moving v from its block to the other
// side: edges where v is the last pin on its side minus edges entirely
// inside its side.
func (r *TwoWayFM) gain(v, from, to int) int {
	g := 0
	for _, e := range r.hg.IncidentEdges(v) {
		if !r.hg.IsEnabledEdge(e) {
			continue
		}
		if r.hg.PinCountInPart(e, from) == 1 {
			g += r.hg.EdgeWeight(e)
		}
		if r.hg.PinCountInPart(e, to) == 0 {
			g -= r.hg.EdgeWeight(e)
		}
	}
	return g
}

// updateNeighbors applies the standard FM deltas to all pins of v's edges,
// using the pin counts before and after the move, then fixes up border
// membership in the queues.
func (r *TwoWayFM) updateNeighbors(v, from, to int) {
	for _, e := range r.hg.IncidentEdges(v) {
		if !r.hg.IsEnabledEdge(e) {
			continue
		}
		w := r.hg.EdgeWeight(e)
		pinCountToBefore := r.hg.PinCountInPart(e, to) - 1
		pinCountFromAfter := r.hg.PinCountInPart(e, from)

		if pinCountToBefore == 0 {
			// edge was internal to `from`; every other pin now profits from
			// following v
			r.adjustAll(e, v, w)
		} else if pinCountToBefore == 1 {
			// the previously lone pin in `to` is no longer the last one
			r.adjustLone(e, v, to, -w)
		}
		if pinCountFromAfter == 0 {
			// edge left the boundary entirely
			r.adjustAll(e, v, -w)
		} else if pinCountFromAfter == 1 {
			// a single pin remains in `from`; moving it now uncuts the edge
			r.adjustLone(e, v, from, w)
		}
	}

	// border membership is fixed up only after every delta has been applied;
	// a vertex activated here gets a fresh gain that already reflects the
	// whole move
	for _, e := range r.hg.IncidentEdges(v) {
		if !r.hg.IsEnabledEdge(e) {
			continue
		}
		for _, pin := range r.hg.Pins(e) {
			if pin == v || r.marked[pin] {
				continue
			}
			side := 1 - r.hg.PartID(pin)
			if r.pq[side].Contains(pin) {
				if !r.hg.IsBorderNode(pin) {
					r.pq[side].DeleteNode(pin)
				}
			} else if r.hg.IsBorderNode(pin) {
				r.activate(pin)
			}
		}
	}
}

func (r *TwoWayFM) adjustAll(e, moved, delta int) {
	for _, pin := range r.hg.Pins(e) {
		if pin == moved || r.marked[pin] {
			continue
		}
		side := 1 - r.hg.PartID(pin)
		if r.pq[side].Contains(pin) {
			r.pq[side].UpdateKey(pin, r.pq[side].Key(pin)+delta)
		}
	}
}

func (r *TwoWayFM) adjustLone(e, moved, part, delta int) {
	for _, pin := range r.hg.Pins(e) {
		if pin == moved || r.marked[pin] || r.hg.PartID(pin) != part {
			continue
		}
		side := 1 - part
		if r.pq[side].Contains(pin) {
			r.pq[side].UpdateKey(pin, r.pq[side].Key(pin)+delta)
		}
	}
}

func (r *TwoWayFM) activate(v int) {
	if r.marked[v] || !r.hg.IsBorderNode(v) {
		return
	}
	from := r.hg.PartID(v)
	to := 1 - from
	if !r.pq[to].Contains(v) {
		r.pq[to].Push(v, r.gain(v, from, to))
	}
}

func (r *TwoWayFM) rollback(bestIndex int) {
	for i := len(r.moves) - 1; i > bestIndex; i-- {
		m := r.moves[i]
		// reversing a legal move cannot fail
		_ = r.hg.ChangeNodePart(m.node, m.to, m.from)
	}
}
