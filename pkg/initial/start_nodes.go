package initial

import (
	"sort"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/random"
)

// StartNodePolicy selects the k seed vertices the growing partitioners
// expand from.
type StartNodePolicy interface {
	StartNodes(hg *hypergraph.Hypergraph, k int, rng *random.Source) []int
}

// RandomStartNodes picks k distinct enabled vertices uniformly.
type RandomStartNodes struct{}

func (RandomStartNodes) StartNodes(hg *hypergraph.Hypergraph, k int, rng *random.Source) []int {
	nodes := hg.Nodes()
	rng.ShuffleInts(nodes)
	if k > len(nodes) {
		k = len(nodes)
	}
	return nodes[:k]
}

// BFSStartNodes picks a random first seed, then repeatedly adds the vertex
// discovered last by a breadth-first search from the current seed set, which
// pushes seeds toward mutually distant regions.
type BFSStartNodes struct{}

func (BFSStartNodes) StartNodes(hg *hypergraph.Hypergraph, k int, rng *random.Source) []int {
	nodes := hg.Nodes()
	if len(nodes) == 0 {
		return nil
	}
	if k > len(nodes) {
		k = len(nodes)
	}
	seeds := []int{nodes[rng.IntN(len(nodes))]}
	for len(seeds) < k {
		deepest := bfsDeepest(hg, seeds)
		if deepest < 0 {
			// disconnected remainder: fall back to a random unseeded vertex
			deepest = randomUnseeded(hg, seeds, rng)
			if deepest < 0 {
				break
			}
		}
		seeds = append(seeds, deepest)
	}
	return seeds
}

func bfsDeepest(hg *hypergraph.Hypergraph, seeds []int) int {
	visited := make(map[int]bool, hg.CurrentNumNodes())
	queue := append([]int(nil), seeds...)
	for _, s := range seeds {
		visited[s] = true
	}
	last := -1
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, e := range hg.IncidentEdges(v) {
			if !hg.IsEnabledEdge(e) {
				continue
			}
			for _, pin := range hg.Pins(e) {
				if !visited[pin] {
					visited[pin] = true
					queue = append(queue, pin)
					last = pin
				}
			}
		}
	}
	return last
}

func randomUnseeded(hg *hypergraph.Hypergraph, seeds []int, rng *random.Source) int {
	seeded := make(map[int]bool, len(seeds))
	for _, s := range seeds {
		seeded[s] = true
	}
	candidates := []int{}
	for _, v := range hg.Nodes() {
		if !seeded[v] {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[rng.IntN(len(candidates))]
}

// MaxDegreeStartNodes picks the k vertices of highest degree.
type MaxDegreeStartNodes struct{}

func (MaxDegreeStartNodes) StartNodes(hg *hypergraph.Hypergraph, k int, rng *random.Source) []int {
	nodes := hg.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return hg.NodeDegree(nodes[i]) > hg.NodeDegree(nodes[j])
	})
	if k > len(nodes) {
		k = len(nodes)
	}
	return nodes[:k]
}
