package refinement

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/datastructure"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

// Hyperedge lock states for the k-way search. A dedicated enum keeps the
// locked sentinel distinct from the partition sentinels.
type lockState int8

const (
	heFree lockState = iota
	heLoose
	heLocked
)

// MaxGainKWayFM is the k-way FM refiner. Each border vertex carries a single
// (max gain, best target part) pair; the heap key is the gain and the heap's
// data slot holds the target. Hyperedges lock once two different target
// parts have pulled at them, cutting off further gain propagation.
type MaxGainKWayFM struct {
	hg            *hypergraph.Hypergraph
	maxPartWeight int
	policy        StoppingPolicy
	rng           *random.Source
	logger        zerolog.Logger

	pq              *datastructure.BinaryHeap
	marked          []bool
	justUpdated     []bool
	justUpdatedList []int
	performedMoves  []moveRecord

	lockState   []lockState
	looseTarget []int
	lockedList  []int // stack of edges with state != heFree, for O(locked) reset

	tmpGains   []int
	tmpConnDec []int
	inTargets  []bool
	targetList []int
}

// NewMaxGainKWayFM allocates refiner state sized to the hypergraph.
func NewMaxGainKWayFM(hg *hypergraph.Hypergraph, maxPartWeight int, policy StoppingPolicy, rng *random.Source, logger zerolog.Logger) *MaxGainKWayFM {
	return &MaxGainKWayFM{
		hg:            hg,
		maxPartWeight: maxPartWeight,
		policy:        policy,
		rng:           rng,
		logger:        logger,
		pq:            datastructure.NewBinaryHeap(hg.InitialNumNodes()),
		marked:        make([]bool, hg.InitialNumNodes()),
		justUpdated:   make([]bool, hg.InitialNumNodes()),
		lockState:     make([]lockState, hg.InitialNumEdges()),
		looseTarget:   make([]int, hg.InitialNumEdges()),
		tmpGains:      make([]int, hg.K()),
		tmpConnDec:    make([]int, hg.K()),
		inTargets:     make([]bool, hg.K()),
	}
}

// Refine runs one k-way local search seeded with refinementNodes.
func (r *MaxGainKWayFM) Refine(refinementNodes []int, bestCut *int) (bool, error) {
	r.pq.Clear()
	for i := range r.marked {
		r.marked[i] = false
	}
	for _, e := range r.lockedList {
		r.lockState[e] = heFree
	}
	r.lockedList = r.lockedList[:0]
	r.performedMoves = r.performedMoves[:0]

	seeds := append([]int(nil), refinementNodes...)
	r.rng.ShuffleInts(seeds)
	for _, v := range seeds {
		if !r.marked[v] && !r.pq.Contains(v) {
			r.activate(v)
		}
	}

	initialCut := *bestCut
	cut := initialCut
	best := initialCut
	minCutIndex := -1
	beta := math.Log2(float64(r.hg.CurrentNumNodes()))
	r.policy.Reset()

	for !r.pq.Empty() {
		movesSinceBest := len(r.performedMoves) - (minCutIndex + 1)
		if r.policy.ShouldStop(movesSinceBest, beta, best, cut) {
			break
		}

		v := r.pq.Max()
		r.pq.DeleteMax()
		if !r.hg.IsBorderNode(v) {
			// gains behind locked hyperedges are not kept fresh, so a pin can
			// linger in the queue after its last cut edge closed
			r.marked[v] = true
			continue
		}
		maxGain, to := r.computeMaxGain(v)
		from := r.hg.PartID(v)

		moved, err := r.moveHypernode(v, from, to)
		if err != nil {
			return false, err
		}
		if !moved {
			continue
		}

		cut -= maxGain
		r.policy.Update(maxGain)
		r.updateNeighbors(v, from, to)

		if cut < best || (cut == best && r.rng.FlipCoin()) {
			if cut < best {
				r.logger.Debug().Int("best_cut", best).Int("cut", cut).Msg("k-way FM improved cut")
				r.policy.Reset()
			}
			best = cut
			minCutIndex = len(r.performedMoves)
		}
		r.performedMoves = append(r.performedMoves, moveRecord{node: v, from: from, to: to})
	}

	r.rollback(len(r.performedMoves)-1, minCutIndex)
	*bestCut = best
	return best < initialCut, nil
}

func (r *MaxGainKWayFM) rollback(lastIndex, minCutIndex int) {
	for lastIndex != minCutIndex {
		m := r.performedMoves[lastIndex]
		_ = r.hg.ChangeNodePart(m.node, m.to, m.from)
		lastIndex--
	}
}

// moveAffectsGainUpdate gates gain propagation through a loose hyperedge on
// the only pin-count transitions that can change any pin's gain.
func moveAffectsGainUpdate(pinCountSourceBefore, pinCountDestBefore, pinCountSourceAfter int) bool {
	return pinCountDestBefore == 0 || pinCountDestBefore == 1 ||
		pinCountSourceBefore == 1 || pinCountSourceAfter == 1
}

func (r *MaxGainKWayFM) updateNeighbors(v, from, to int) {
	for _, p := range r.justUpdatedList {
		r.justUpdated[p] = false
	}
	r.justUpdatedList = r.justUpdatedList[:0]

	for _, e := range r.hg.IncidentEdges(v) {
		if !r.hg.IsEnabledEdge(e) {
			continue
		}
		switch r.lockState[e] {
		case heFree:
			// first move through this edge: activate and rate every pin
			r.lockState[e] = heLoose
			r.looseTarget[e] = to
			r.lockedList = append(r.lockedList, e)
			for _, pin := range r.hg.Pins(e) {
				r.updatePin(pin)
			}
		case heLoose:
			pinCountSourceBefore := r.hg.PinCountInPart(e, from) + 1
			pinCountDestBefore := r.hg.PinCountInPart(e, to) - 1
			pinCountSourceAfter := pinCountSourceBefore - 1
			if r.looseTarget[e] != to {
				// a second target part pulls at this edge: it locks
				r.lockState[e] = heLocked
			}
			if moveAffectsGainUpdate(pinCountSourceBefore, pinCountDestBefore, pinCountSourceAfter) {
				for _, pin := range r.hg.Pins(e) {
					r.updatePin(pin)
				}
			}
		case heLocked:
			// no gain propagation through locked edges
		}
	}
}

func (r *MaxGainKWayFM) updatePin(pin int) {
	if r.pq.Contains(pin) {
		if r.hg.IsBorderNode(pin) {
			if !r.justUpdated[pin] {
				gain, target := r.computeMaxGain(pin)
				r.pq.UpdateKey(pin, gain)
				r.pq.SetData(pin, target)
				r.justUpdated[pin] = true
				r.justUpdatedList = append(r.justUpdatedList, pin)
			}
		} else {
			r.pq.Remove(pin)
		}
		return
	}
	if !r.marked[pin] {
		r.activate(pin)
		r.justUpdated[pin] = true
		r.justUpdatedList = append(r.justUpdatedList, pin)
	}
}

// moveHypernode refuses moves that would overload the target block or empty
// the source block; refused vertices still count as processed.
func (r *MaxGainKWayFM) moveHypernode(v, from, to int) (bool, error) {
	r.marked[v] = true
	if r.hg.PartWeight(to)+r.hg.NodeWeight(v) >= r.maxPartWeight || r.hg.PartSize(from)-1 == 0 {
		r.logger.Debug().Int("node", v).Int("from", from).Int("to", to).Msg("skipping move")
		return false, nil
	}
	if err := r.hg.ChangeNodePart(v, from, to); err != nil {
		return false, err
	}
	return true, nil
}

func (r *MaxGainKWayFM) activate(v int) {
	if r.hg.IsBorderNode(v) {
		gain, target := r.computeMaxGain(v)
		r.pq.ReInsert(v, gain, target)
	}
}

// computeMaxGain evaluates all candidate target parts of a border vertex and
// returns the best (gain, target) pair. Ties fall to the larger connectivity
// decrease, then toward relieving an overweight source block, then to a coin
// flip.
func (r *MaxGainKWayFM) computeMaxGain(v int) (int, int) {
	for _, p := range r.targetList {
		r.inTargets[p] = false
		r.tmpGains[p] = 0
		r.tmpConnDec[p] = 0
	}
	r.targetList = r.targetList[:0]

	source := r.hg.PartID(v)
	internalWeight := 0

	for _, e := range r.hg.IncidentEdges(v) {
		if !r.hg.IsEnabledEdge(e) {
			continue
		}
		if r.hg.Connectivity(e) == 1 {
			internalWeight += r.hg.EdgeWeight(e)
			continue
		}
		pinsInSource := r.hg.PinCountInPart(e, source)
		for _, target := range r.hg.ConnectivitySet(e) {
			if !r.inTargets[target] {
				r.inTargets[target] = true
				r.targetList = append(r.targetList, target)
			}
			if pinsInSource == 1 && r.hg.PinCountInPart(e, target) == r.hg.EdgeSize(e)-1 {
				r.tmpGains[target] += r.hg.EdgeWeight(e)
			}
			if pinsInSource == 1 {
				r.tmpConnDec[target]++
			}
		}
	}

	maxGain := math.MinInt
	maxGainPart := hypergraph.InvalidPartition
	maxConnDec := 0
	nodeWeight := r.hg.NodeWeight(v)
	sourceWeight := r.hg.PartWeight(source)
	for _, target := range r.targetList {
		if target == source {
			continue
		}
		gain := r.tmpGains[target] - internalWeight
		connDec := r.tmpConnDec[target]
		targetWeight := r.hg.PartWeight(target)
		switch {
		case gain > maxGain,
			gain == maxGain && connDec > maxConnDec,
			gain == maxGain && maxGainPart != hypergraph.InvalidPartition &&
				sourceWeight >= r.maxPartWeight &&
				targetWeight+nodeWeight < r.maxPartWeight &&
				targetWeight < r.hg.PartWeight(maxGainPart),
			gain == maxGain && connDec == maxConnDec && r.rng.FlipCoin():
			maxGain = gain
			maxGainPart = target
			maxConnDec = connDec
		}
	}
	return maxGain, maxGainPart
}
