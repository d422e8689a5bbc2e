package partition

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/coarsening"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/initial"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/refinement"
)

// Result represents the partitioner output.
type Result struct {
	Partition  []int      `json:"partition"`
	Cut        int        `json:"cut"`
	SOED       int        `json:"soed"`
	KMinus1    int        `json:"k_minus_1"`
	Imbalance  float64    `json:"imbalance"`
	K          int        `json:"k"`
	Statistics Statistics `json:"statistics"`
}

// Statistics contains pipeline metrics.
type Statistics struct {
	CoarseNodes  int   `json:"coarse_nodes"`
	Contractions int   `json:"contractions"`
	InitialCut   int   `json:"initial_cut"`
	FinalCut     int   `json:"final_cut"`
	RuntimeMS    int64 `json:"runtime_ms"`
}

// Partitioner drives the multilevel V-cycle: coarsen, partition the coarsest
// hypergraph, then uncoarsen while refining around each reversed contraction.
type Partitioner struct {
	cfg    *Config
	logger zerolog.Logger
}

// NewPartitioner creates a partitioner for the given configuration.
func NewPartitioner(cfg *Config) *Partitioner {
	return &Partitioner{cfg: cfg, logger: cfg.CreateLogger()}
}

// Partition runs the configured mode on hg and returns the final assignment.
// hg must have been constructed with k partition blocks.
func (p *Partitioner) Partition(ctx context.Context, hg *hypergraph.Hypergraph) (*Result, error) {
	start := time.Now()
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := p.cfg.ValidateForHypergraph(hg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if hg.K() != p.cfg.K() {
		return nil, fmt.Errorf("hypergraph tracks %d blocks but configuration wants %d", hg.K(), p.cfg.K())
	}

	p.logger.Info().
		Int("nodes", hg.CurrentNumNodes()).
		Int("edges", hg.CurrentNumEdges()).
		Int("k", p.cfg.K()).
		Float64("epsilon", p.cfg.Epsilon()).
		Str("mode", p.cfg.Mode()).
		Msg("starting partitioning")

	rng := random.NewSource(p.cfg.Seed())
	var stats Statistics
	var err error
	switch p.cfg.Mode() {
	case "rb":
		err = p.recursiveBisection(ctx, hg, rng, &stats)
	default:
		err = p.directKWay(ctx, hg, rng, &stats)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Partition: make([]int, hg.InitialNumNodes()),
		Cut:       hypergraph.HyperedgeCut(hg),
		SOED:      hypergraph.SOED(hg),
		KMinus1:   hypergraph.KMinus1(hg),
		Imbalance: hypergraph.Imbalance(hg),
		K:         p.cfg.K(),
	}
	for v := 0; v < hg.InitialNumNodes(); v++ {
		result.Partition[v] = hg.PartID(v)
	}
	stats.FinalCut = result.Cut
	stats.RuntimeMS = time.Since(start).Milliseconds()
	result.Statistics = stats

	if result.Imbalance > p.cfg.Epsilon() {
		p.logger.Warn().
			Float64("imbalance", result.Imbalance).
			Float64("epsilon", p.cfg.Epsilon()).
			Msg("balance constraint violated")
	}
	p.logger.Info().
		Int("cut", result.Cut).
		Float64("imbalance", result.Imbalance).
		Int64("runtime_ms", stats.RuntimeMS).
		Msg("partitioning completed")
	return result, nil
}

// maxPartWeight returns (1+epsilon) * ceil(total/k), the per-block cap.
func maxPartWeight(total, k int, epsilon float64) int {
	perfect := int(math.Ceil(float64(total) / float64(k)))
	return int((1.0 + epsilon) * float64(perfect))
}

func (p *Partitioner) maxVertexWeight(hg *hypergraph.Hypergraph) int {
	if w := p.cfg.MaxVertexWeight(); w > 0 {
		return w
	}
	return int(math.Ceil(float64(hg.TotalWeight()) / float64(p.cfg.ContractionLimit())))
}

func (p *Partitioner) startPolicy() initial.StartNodePolicy {
	switch p.cfg.StartPolicy() {
	case "random":
		return initial.RandomStartNodes{}
	case "maxdegree":
		return initial.MaxDegreeStartNodes{}
	default:
		return initial.BFSStartNodes{}
	}
}

func (p *Partitioner) stoppingPolicy() (refinement.StoppingPolicy, error) {
	return refinement.NewStoppingPolicy(p.cfg.StoppingRule(), p.cfg.Alpha(), p.cfg.MaxFruitlessMoves())
}

// directKWay runs one coarsening, one k-way initial partition, and one
// uncoarsening pass with k-way FM refinement.
func (p *Partitioner) directKWay(ctx context.Context, hg *hypergraph.Hypergraph, rng *random.Source, stats *Statistics) error {
	maxPart := maxPartWeight(hg.TotalWeight(), p.cfg.K(), p.cfg.Epsilon())

	rater := coarsening.NewHeavyEdgeRater(hg, p.maxVertexWeight(hg), rng)
	coarsener := coarsening.NewCoarsener(hg, rater, p.cfg.ContractionLimit(), rng, p.logger)
	history, err := coarsener.Coarsen(ctx)
	if err != nil {
		return fmt.Errorf("coarsening: %w", err)
	}
	stats.CoarseNodes = hg.CurrentNumNodes()
	stats.Contractions = len(history)

	policy, err := p.stoppingPolicy()
	if err != nil {
		return err
	}
	refiner := refinement.NewMaxGainKWayFM(hg, maxPart, policy, rng, p.logger)

	var partitioner interface {
		Partition(context.Context) error
	}
	switch p.cfg.InitialTechnique() {
	case "random":
		partitioner = initial.NewRandomInitial(hg, maxPart, rng, p.logger)
	case "bfs":
		partitioner = initial.NewBFSInitial(hg, maxPart, p.startPolicy(), rng, p.logger)
	default:
		partitioner = initial.NewGreedyKWayRoundRobin(hg, maxPart, p.startPolicy(), initial.FMGain{}, refiner, rng, p.logger)
	}
	if err := partitioner.Partition(ctx); err != nil {
		return fmt.Errorf("initial partitioning: %w", err)
	}
	if p.cfg.InitialTechnique() != "ghg" {
		// ghg runs its own trailing FM pass; the simple techniques get one here
		cut := hypergraph.HyperedgeCut(hg)
		if _, err := refiner.Refine(hg.BorderNodes(), &cut); err != nil {
			return fmt.Errorf("initial refinement: %w", err)
		}
	}
	stats.InitialCut = hypergraph.HyperedgeCut(hg)
	p.logger.Info().Int("initial_cut", stats.InitialCut).Msg("initial partition computed")

	return p.uncoarsen(ctx, hg, history, refiner)
}

// uncoarsen pops the contraction history, projecting block labels onto the
// revealed vertices and refining locally around each uncontraction.
func (p *Partitioner) uncoarsen(ctx context.Context, hg *hypergraph.Hypergraph, history []hypergraph.Memento, refiner refinement.Refiner) error {
	cut := hypergraph.HyperedgeCut(hg)
	for i := len(history) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m := history[i]
		if err := hg.Uncontract(m); err != nil {
			return fmt.Errorf("uncoarsening: %w", err)
		}
		if _, err := refiner.Refine([]int{m.U, m.V}, &cut); err != nil {
			return fmt.Errorf("refinement: %w", err)
		}
	}
	if _, err := refiner.Refine(hg.BorderNodes(), &cut); err != nil {
		return fmt.Errorf("final refinement: %w", err)
	}
	return nil
}

// recursiveBisection splits the hypergraph into two sides, hands each side
// its share of the k blocks, and recurses on extracted sub-hypergraphs.
func (p *Partitioner) recursiveBisection(ctx context.Context, hg *hypergraph.Hypergraph, rng *random.Source, stats *Statistics) error {
	finalParts := make([]int, hg.InitialNumNodes())
	for i := range finalParts {
		finalParts[i] = hypergraph.InvalidPartition
	}
	origIDs := make([]int, hg.InitialNumNodes())
	for i := range origIDs {
		origIDs[i] = i
	}
	if err := p.bisectRecursively(ctx, hg, p.cfg.K(), 0, origIDs, finalParts, rng, stats); err != nil {
		return err
	}

	hg.ResetPartitioning()
	for _, v := range hg.Nodes() {
		if finalParts[v] == hypergraph.InvalidPartition {
			return fmt.Errorf("hypernode %d left unassigned by recursive bisection", v)
		}
		if err := hg.SetNodePart(v, finalParts[v]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Partitioner) bisectRecursively(ctx context.Context, hg *hypergraph.Hypergraph, k, offset int,
	origIDs, finalParts []int, rng *random.Source, stats *Statistics) error {
	if k == 1 {
		for _, v := range hg.Nodes() {
			finalParts[origIDs[v]] = offset
		}
		return nil
	}

	kLeft := (k + 1) / 2
	kRight := k / 2
	if err := p.multilevelBisect(ctx, hg, kLeft, kRight, rng, stats); err != nil {
		return err
	}

	for side := 0; side < 2; side++ {
		sideK := kLeft
		sideOffset := offset
		if side == 1 {
			sideK = kRight
			sideOffset = offset + kLeft
		}
		if sideK == 1 {
			for _, v := range hg.Nodes() {
				if hg.PartID(v) == side {
					finalParts[origIDs[v]] = sideOffset
				}
			}
			continue
		}
		sub, subToOrig, err := hypergraph.ExtractBlock(hg, side, 2)
		if err != nil {
			return fmt.Errorf("recursive bisection: %w", err)
		}
		subOrigIDs := make([]int, len(subToOrig))
		for i, v := range subToOrig {
			subOrigIDs[i] = origIDs[v]
		}
		if err := p.bisectRecursively(ctx, sub, sideK, sideOffset, subOrigIDs, finalParts, rng, stats); err != nil {
			return err
		}
	}
	return nil
}

// multilevelBisect runs a full coarsen / greedy-grow / uncoarsen cycle that
// splits hg into blocks 0 and 1 sized kLeft : kRight.
func (p *Partitioner) multilevelBisect(ctx context.Context, hg *hypergraph.Hypergraph, kLeft, kRight int, rng *random.Source, stats *Statistics) error {
	total := hg.TotalWeight()
	perfect := int(math.Ceil(float64(total) / float64(kLeft+kRight)))
	target := perfect * kLeft
	// block 1 must keep enough weight for its own kRight blocks
	if bound := total - perfect*kRight; target > bound {
		target = bound
	}
	if target < 1 {
		target = 1
	}
	maxLeft := int((1.0 + p.cfg.Epsilon()) * float64(perfect) * float64(kLeft))
	maxRight := int((1.0 + p.cfg.Epsilon()) * float64(perfect) * float64(kRight))
	maxSide := maxLeft
	if maxRight > maxSide {
		maxSide = maxRight
	}

	limit := p.cfg.ContractionLimit()
	rater := coarsening.NewHeavyEdgeRater(hg, p.maxVertexWeight(hg), rng)
	coarsener := coarsening.NewCoarsener(hg, rater, limit, rng, p.logger)
	history, err := coarsener.Coarsen(ctx)
	if err != nil {
		return fmt.Errorf("coarsening: %w", err)
	}
	if stats.CoarseNodes == 0 {
		stats.CoarseNodes = hg.CurrentNumNodes()
	}
	stats.Contractions += len(history)

	policy, err := p.stoppingPolicy()
	if err != nil {
		return err
	}
	refiner := refinement.NewTwoWayFM(hg, maxSide, policy, rng, p.logger)
	bisection := initial.NewGreedyBisection(hg, maxLeft, target, p.startPolicy(), initial.FMGain{}, refiner, rng, p.logger)
	if err := bisection.Partition(ctx); err != nil {
		return fmt.Errorf("initial bisection: %w", err)
	}
	if stats.InitialCut == 0 {
		stats.InitialCut = hypergraph.HyperedgeCut(hg)
	}

	return p.uncoarsen(ctx, hg, history, refiner)
}
