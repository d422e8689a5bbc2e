package coarsening

import (
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

// Rating is the result of scoring contraction partners for one vertex.
type Rating struct {
	Target int
	Value  float64
	Valid  bool
}

// Rater scores potential contraction partners of v. matched flags vertices
// already paired in the current pass; they are not eligible targets.
type Rater interface {
	Rate(v int, matched []bool) Rating
}

// HeavyEdgeRater implements the default rating policy
// rating(u,v) = sum over shared edges of w(e)/(size(e)-1), restricted to
// pairs whose combined weight stays within the configured cap. Ties are
// broken toward the lighter pair, then randomly.
type HeavyEdgeRater struct {
	hg              *hypergraph.Hypergraph
	maxVertexWeight int
	rng             *random.Source

	scores  []float64 // dense scratch, cleared via touched
	touched []int
}

// NewHeavyEdgeRater creates a rater for hg with the given combined-weight cap.
func NewHeavyEdgeRater(hg *hypergraph.Hypergraph, maxVertexWeight int, rng *random.Source) *HeavyEdgeRater {
	return &HeavyEdgeRater{
		hg:              hg,
		maxVertexWeight: maxVertexWeight,
		rng:             rng,
		scores:          make([]float64, hg.InitialNumNodes()),
	}
}

// Rate scores all unmatched neighbors of v and returns the best target.
func (r *HeavyEdgeRater) Rate(v int, matched []bool) Rating {
	hg := r.hg
	for _, e := range hg.IncidentEdges(v) {
		if !hg.IsEnabledEdge(e) {
			continue
		}
		score := float64(hg.EdgeWeight(e)) / float64(hg.EdgeSize(e)-1)
		for _, u := range hg.Pins(e) {
			if u == v || matched[u] {
				continue
			}
			if hg.NodeWeight(v)+hg.NodeWeight(u) > r.maxVertexWeight {
				continue
			}
			if r.scores[u] == 0 {
				r.touched = append(r.touched, u)
			}
			r.scores[u] += score
		}
	}

	best := Rating{Target: -1}
	bestCombined := 0
	for _, u := range r.touched {
		value := r.scores[u]
		r.scores[u] = 0
		combined := hg.NodeWeight(v) + hg.NodeWeight(u)
		switch {
		case !best.Valid,
			value > best.Value,
			value == best.Value && combined < bestCombined,
			value == best.Value && combined == bestCombined && r.rng.FlipCoin():
			best = Rating{Target: u, Value: value, Valid: true}
			bestCombined = combined
		}
	}
	r.touched = r.touched[:0]
	return best
}
