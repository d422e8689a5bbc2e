package coarsening

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

// Coarsener shrinks a hypergraph by repeated rating-based pair contraction
// until the contraction limit is reached or a pass finds no contractible
// pair. The memento history it produces drives uncoarsening.
type Coarsener struct {
	hg               *hypergraph.Hypergraph
	rater            Rater
	contractionLimit int
	rng              *random.Source
	logger           zerolog.Logger
}

// NewCoarsener wires a coarsener to its hypergraph, rating policy and
// injected random source.
func NewCoarsener(hg *hypergraph.Hypergraph, rater Rater, contractionLimit int, rng *random.Source, logger zerolog.Logger) *Coarsener {
	return &Coarsener{
		hg:               hg,
		rater:            rater,
		contractionLimit: contractionLimit,
		rng:              rng,
		logger:           logger,
	}
}

// Coarsen runs randomized matching passes and returns the contraction
// history in contraction order.
func (c *Coarsener) Coarsen(ctx context.Context) ([]hypergraph.Memento, error) {
	history := make([]hypergraph.Memento, 0, c.hg.InitialNumNodes())
	matched := make([]bool, c.hg.InitialNumNodes())
	pass := 0

	for c.hg.CurrentNumNodes() > c.contractionLimit {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		nodesBefore := c.hg.CurrentNumNodes()
		nodes := c.hg.Nodes()
		c.rng.ShuffleInts(nodes)
		for i := range matched {
			matched[i] = false
		}

		contractions := 0
		for _, v := range nodes {
			if !c.hg.IsEnabledNode(v) || matched[v] {
				continue
			}
			rating := c.rater.Rate(v, matched)
			if !rating.Valid {
				continue
			}
			memento, err := c.hg.Contract(v, rating.Target)
			if err != nil {
				return nil, fmt.Errorf("contracting %d and %d: %w", v, rating.Target, err)
			}
			history = append(history, memento)
			matched[v] = true
			matched[rating.Target] = true
			contractions++
			if c.hg.CurrentNumNodes() <= c.contractionLimit {
				break
			}
		}

		pass++
		c.logger.Debug().
			Int("pass", pass).
			Int("contractions", contractions).
			Int("nodes", c.hg.CurrentNumNodes()).
			Float64("compression_ratio", float64(c.hg.CurrentNumNodes())/float64(nodesBefore)).
			Msg("coarsening pass completed")

		if contractions == 0 {
			break
		}
	}

	c.logger.Info().
		Int("passes", pass).
		Int("coarse_nodes", c.hg.CurrentNumNodes()).
		Int("coarse_edges", c.hg.CurrentNumEdges()).
		Int("contractions", len(history)).
		Msg("coarsening completed")
	return history, nil
}
