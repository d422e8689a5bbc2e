package hypergraph

import (
	"fmt"
)

// Partition sentinels. InvalidPartition marks unassigned vertices;
// DeletedPartition is reserved for hash-set tombstones and is never a legal
// assignment.
const (
	InvalidPartition = -1
	DeletedPartition = -2
)

// Memento records one contraction so it can be reversed. V was folded into U;
// SizeOfU is the valid size of U's incident-edge list before the contraction.
type Memento struct {
	U       int
	V       int
	SizeOfU int
}

// Hypergraph is a compressed incidence store over both sides of the
// incidence relation. Each vertex row lists incident edges, each edge row
// lists pins; a per-row valid size lets contraction shrink rows without
// losing the removed tail, so uncontraction restores state in O(touched pins).
//
// Partition state (part ids, pin counts per part, connectivity, per-part
// aggregates) is maintained incrementally by SetNodePart / ChangeNodePart /
// Contract / Uncontract; those methods are the only mutation paths.
type Hypergraph struct {
	k int

	incident    [][]int // vertex -> incident edge ids, valid prefix nodeSize[v]
	nodeSize    []int
	nodeWeights []int
	nodeEnabled []bool
	part        []int

	pins        [][]int // edge -> pins, valid prefix edgeSize[e]
	edgeSize    []int
	edgeWeights []int
	edgeEnabled []bool

	pinCount     []int // flat [edge*k + part]
	connectivity []int

	partWeights []int
	partSizes   []int

	initialNumNodes int
	initialNumEdges int
	currentNumNodes int
	currentNumEdges int
	totalWeight     int

	caseOneScratch []bool // uncontract scratch, len initialNumEdges
}

// New builds a hypergraph from the parser-provided index/edge vector pair.
// indexVector has numEdges+1 entries; edgeVector[indexVector[e]:indexVector[e+1]]
// lists the pins of edge e. edgeWeights and nodeWeights may be nil for the
// unweighted variants. k is the number of partition blocks tracked by the
// incremental partition state.
func New(numNodes, numEdges int, indexVector, edgeVector []int, k int, edgeWeights, nodeWeights []int) (*Hypergraph, error) {
	if numNodes <= 0 || numEdges < 0 {
		return nil, fmt.Errorf("hypergraph must have positive node count: nodes=%d edges=%d", numNodes, numEdges)
	}
	if k < 2 {
		return nil, fmt.Errorf("number of blocks must be at least 2, got %d", k)
	}
	if len(indexVector) != numEdges+1 {
		return nil, fmt.Errorf("index vector has %d entries, want %d", len(indexVector), numEdges+1)
	}
	if indexVector[numEdges] != len(edgeVector) {
		return nil, fmt.Errorf("index vector sentinel %d does not match %d pins", indexVector[numEdges], len(edgeVector))
	}
	if edgeWeights != nil && len(edgeWeights) != numEdges {
		return nil, fmt.Errorf("got %d hyperedge weights for %d hyperedges", len(edgeWeights), numEdges)
	}
	if nodeWeights != nil && len(nodeWeights) != numNodes {
		return nil, fmt.Errorf("got %d hypernode weights for %d hypernodes", len(nodeWeights), numNodes)
	}

	hg := &Hypergraph{
		k:               k,
		incident:        make([][]int, numNodes),
		nodeSize:        make([]int, numNodes),
		nodeWeights:     make([]int, numNodes),
		nodeEnabled:     make([]bool, numNodes),
		part:            make([]int, numNodes),
		pins:            make([][]int, numEdges),
		edgeSize:        make([]int, numEdges),
		edgeWeights:     make([]int, numEdges),
		edgeEnabled:     make([]bool, numEdges),
		pinCount:        make([]int, numEdges*k),
		connectivity:    make([]int, numEdges),
		partWeights:     make([]int, k),
		partSizes:       make([]int, k),
		initialNumNodes: numNodes,
		initialNumEdges: numEdges,
		currentNumNodes: numNodes,
		currentNumEdges: numEdges,
		caseOneScratch:  make([]bool, numEdges),
	}

	for v := 0; v < numNodes; v++ {
		hg.nodeEnabled[v] = true
		hg.part[v] = InvalidPartition
		w := 1
		if nodeWeights != nil {
			w = nodeWeights[v]
			if w <= 0 {
				return nil, fmt.Errorf("hypernode %d has non-positive weight %d", v, w)
			}
		}
		hg.nodeWeights[v] = w
		hg.totalWeight += w
	}

	for e := 0; e < numEdges; e++ {
		begin, end := indexVector[e], indexVector[e+1]
		if begin > end {
			return nil, fmt.Errorf("index vector not monotone at hyperedge %d", e)
		}
		hg.pins[e] = make([]int, end-begin)
		copy(hg.pins[e], edgeVector[begin:end])
		hg.edgeSize[e] = end - begin
		w := 1
		if edgeWeights != nil {
			w = edgeWeights[e]
			if w <= 0 {
				return nil, fmt.Errorf("hyperedge %d has non-positive weight %d", e, w)
			}
		}
		hg.edgeWeights[e] = w
		for _, pin := range hg.pins[e] {
			if pin < 0 || pin >= numNodes {
				return nil, fmt.Errorf("pin %d of hyperedge %d out of range [0,%d)", pin, e, numNodes)
			}
			hg.incident[pin] = append(hg.incident[pin], e)
			hg.nodeSize[pin]++
		}
		if hg.edgeSize[e] >= 2 {
			hg.edgeEnabled[e] = true
		} else {
			// single-pin hyperedges never contribute to the cut
			hg.currentNumEdges--
		}
	}
	return hg, nil
}

// K returns the number of partition blocks.
func (hg *Hypergraph) K() int { return hg.k }

// InitialNumNodes returns the node count at construction time.
func (hg *Hypergraph) InitialNumNodes() int { return hg.initialNumNodes }

// InitialNumEdges returns the edge count at construction time.
func (hg *Hypergraph) InitialNumEdges() int { return hg.initialNumEdges }

// CurrentNumNodes returns the number of enabled nodes.
func (hg *Hypergraph) CurrentNumNodes() int { return hg.currentNumNodes }

// CurrentNumEdges returns the number of enabled edges.
func (hg *Hypergraph) CurrentNumEdges() int { return hg.currentNumEdges }

// TotalWeight returns the summed vertex weight at construction time. It
// equals the summed weight of the enabled vertices: contraction moves weight
// onto the representative but never changes the total.
func (hg *Hypergraph) TotalWeight() int { return hg.totalWeight }

// Nodes returns the enabled node ids in ascending order.
func (hg *Hypergraph) Nodes() []int {
	nodes := make([]int, 0, hg.currentNumNodes)
	for v := 0; v < hg.initialNumNodes; v++ {
		if hg.nodeEnabled[v] {
			nodes = append(nodes, v)
		}
	}
	return nodes
}

// Edges returns the enabled edge ids in ascending order.
func (hg *Hypergraph) Edges() []int {
	edges := make([]int, 0, hg.currentNumEdges)
	for e := 0; e < hg.initialNumEdges; e++ {
		if hg.edgeEnabled[e] {
			edges = append(edges, e)
		}
	}
	return edges
}

// IsEnabledNode reports whether v has not been contracted away.
func (hg *Hypergraph) IsEnabledNode(v int) bool { return hg.nodeEnabled[v] }

// IsEnabledEdge reports whether e currently has at least two pins.
func (hg *Hypergraph) IsEnabledEdge(e int) bool { return hg.edgeEnabled[e] }

// IncidentEdges returns the valid prefix of v's incident-edge list. Entries
// may reference disabled edges; callers that only care about live edges
// filter with IsEnabledEdge. The returned slice aliases internal state.
func (hg *Hypergraph) IncidentEdges(v int) []int {
	return hg.incident[v][:hg.nodeSize[v]]
}

// Pins returns the valid prefix of e's pin list. The slice aliases internal
// state and must not be mutated.
func (hg *Hypergraph) Pins(e int) []int {
	return hg.pins[e][:hg.edgeSize[e]]
}

// NodeWeight returns w(v).
func (hg *Hypergraph) NodeWeight(v int) int { return hg.nodeWeights[v] }

// EdgeWeight returns w(e).
func (hg *Hypergraph) EdgeWeight(e int) int { return hg.edgeWeights[e] }

// NodeDegree returns the number of valid incident edges of v.
func (hg *Hypergraph) NodeDegree(v int) int { return hg.nodeSize[v] }

// EdgeSize returns the number of valid pins of e.
func (hg *Hypergraph) EdgeSize(e int) int { return hg.edgeSize[e] }

// PartID returns the block of v, or InvalidPartition when unassigned.
func (hg *Hypergraph) PartID(v int) int { return hg.part[v] }

// PartWeight returns the summed vertex weight of block p.
func (hg *Hypergraph) PartWeight(p int) int { return hg.partWeights[p] }

// PartSize returns the number of vertices in block p.
func (hg *Hypergraph) PartSize(p int) int { return hg.partSizes[p] }

// PinCountInPart returns the number of pins of e assigned to block p.
func (hg *Hypergraph) PinCountInPart(e, p int) int { return hg.pinCount[e*hg.k+p] }

// Connectivity returns |lambda(e)|, the number of blocks e spans.
func (hg *Hypergraph) Connectivity(e int) int { return hg.connectivity[e] }

// ConnectivitySet returns lambda(e) in ascending block order.
func (hg *Hypergraph) ConnectivitySet(e int) []int {
	set := make([]int, 0, hg.connectivity[e])
	for p := 0; p < hg.k; p++ {
		if hg.pinCount[e*hg.k+p] > 0 {
			set = append(set, p)
		}
	}
	return set
}

// TotalEdgeWeight returns the summed weight of all hyperedges, enabled or
// not. It bounds every FM gain at every level of the hierarchy and sizes the
// gain bucket queues.
func (hg *Hypergraph) TotalEdgeWeight() int {
	total := 0
	for e := 0; e < hg.initialNumEdges; e++ {
		total += hg.edgeWeights[e]
	}
	return total
}

// BorderNodes returns all enabled vertices incident to a cut hyperedge.
func (hg *Hypergraph) BorderNodes() []int {
	border := []int{}
	for v := 0; v < hg.initialNumNodes; v++ {
		if hg.nodeEnabled[v] && hg.IsBorderNode(v) {
			border = append(border, v)
		}
	}
	return border
}

// IsBorderNode reports whether some incident edge of v spans two or more
// blocks.
func (hg *Hypergraph) IsBorderNode(v int) bool {
	for _, e := range hg.IncidentEdges(v) {
		if hg.edgeEnabled[e] && hg.connectivity[e] >= 2 {
			return true
		}
	}
	return false
}

// SetNodePart performs the initial assignment of an unassigned vertex.
func (hg *Hypergraph) SetNodePart(v, p int) error {
	if hg.part[v] != InvalidPartition {
		return fmt.Errorf("hypernode %d already assigned to block %d", v, hg.part[v])
	}
	if p < 0 || p >= hg.k {
		return fmt.Errorf("block %d out of range [0,%d)", p, hg.k)
	}
	hg.part[v] = p
	hg.partWeights[p] += hg.nodeWeights[v]
	hg.partSizes[p]++
	for _, e := range hg.IncidentEdges(v) {
		hg.incrementPinCount(e, p)
	}
	return nil
}

// ChangeNodePart moves v from block `from` to block `to`, updating pin
// counts, connectivity sets and per-part aggregates along every incident
// edge.
func (hg *Hypergraph) ChangeNodePart(v, from, to int) error {
	if hg.part[v] != from {
		return fmt.Errorf("hypernode %d is in block %d, not %d", v, hg.part[v], from)
	}
	if to < 0 || to >= hg.k {
		return fmt.Errorf("block %d out of range [0,%d)", to, hg.k)
	}
	hg.part[v] = to
	hg.partWeights[from] -= hg.nodeWeights[v]
	hg.partWeights[to] += hg.nodeWeights[v]
	hg.partSizes[from]--
	hg.partSizes[to]++
	for _, e := range hg.IncidentEdges(v) {
		hg.decrementPinCount(e, from)
		hg.incrementPinCount(e, to)
	}
	return nil
}

// ResetPartitioning clears all partition state so another initial partition
// can be computed on the same hypergraph.
func (hg *Hypergraph) ResetPartitioning() {
	for v := range hg.part {
		hg.part[v] = InvalidPartition
	}
	for i := range hg.pinCount {
		hg.pinCount[i] = 0
	}
	for e := range hg.connectivity {
		hg.connectivity[e] = 0
	}
	for p := 0; p < hg.k; p++ {
		hg.partWeights[p] = 0
		hg.partSizes[p] = 0
	}
}

// Contract folds v into u. Edges shared by both lose v's pin (their size
// shrinks by one); edges incident only to v have the pin rewritten to u and
// are appended to u's incidence row. Work is proportional to the pins of v's
// incident edges.
func (hg *Hypergraph) Contract(u, v int) (Memento, error) {
	if u == v {
		return Memento{}, fmt.Errorf("cannot contract hypernode %d with itself", u)
	}
	if !hg.nodeEnabled[u] || !hg.nodeEnabled[v] {
		return Memento{}, fmt.Errorf("contraction partners %d and %d must both be enabled", u, v)
	}
	if hg.part[u] != hg.part[v] {
		return Memento{}, fmt.Errorf("contraction partners %d (block %d) and %d (block %d) are in different blocks",
			u, hg.part[u], v, hg.part[v])
	}

	memento := Memento{U: u, V: v, SizeOfU: hg.nodeSize[u]}
	p := hg.part[v]
	hg.nodeWeights[u] += hg.nodeWeights[v]

	for _, e := range hg.IncidentEdges(v) {
		slotV, hasU := -1, false
		row := hg.pins[e][:hg.edgeSize[e]]
		for j, pin := range row {
			if pin == v {
				slotV = j
			} else if pin == u {
				hasU = true
			}
		}
		if hasU {
			// both are pins: drop v, parking it just past the valid range
			last := hg.edgeSize[e] - 1
			row[slotV], row[last] = row[last], row[slotV]
			hg.edgeSize[e]--
			if p != InvalidPartition {
				hg.pinCount[e*hg.k+p]--
			}
			if hg.edgeSize[e] == 1 && hg.edgeEnabled[e] {
				hg.edgeEnabled[e] = false
				hg.currentNumEdges--
			}
		} else {
			// v's pin becomes u's; u gains the edge
			row[slotV] = u
			hg.incident[u] = append(hg.incident[u][:hg.nodeSize[u]], e)
			hg.nodeSize[u]++
		}
	}

	hg.nodeEnabled[v] = false
	hg.currentNumNodes--
	if p != InvalidPartition {
		hg.partSizes[p]--
	}
	return memento, nil
}

// Uncontract reverses the contraction recorded by the memento. Mementos must
// be popped in reverse contraction order.
func (hg *Hypergraph) Uncontract(m Memento) error {
	u, v := m.U, m.V
	if hg.nodeEnabled[v] {
		return fmt.Errorf("hypernode %d is enabled, memento already reversed", v)
	}
	if !hg.nodeEnabled[u] {
		return fmt.Errorf("representative %d is disabled, mementos popped out of order", u)
	}

	// edges appended to u's row during the contraction were case-1 edges
	for i := m.SizeOfU; i < hg.nodeSize[u]; i++ {
		hg.caseOneScratch[hg.incident[u][i]] = true
	}

	p := hg.part[u]
	hg.nodeEnabled[v] = true
	hg.currentNumNodes++
	hg.part[v] = p
	if p != InvalidPartition {
		hg.partSizes[p]++
	}
	hg.nodeWeights[u] -= hg.nodeWeights[v]

	for _, e := range hg.IncidentEdges(v) {
		if hg.caseOneScratch[e] {
			row := hg.pins[e][:hg.edgeSize[e]]
			for j, pin := range row {
				if pin == u {
					row[j] = v
					break
				}
			}
			// pin count unchanged: v takes over u's slot in the same block
		} else {
			// the parked pin just past the valid range is v
			hg.pins[e][hg.edgeSize[e]] = v
			hg.edgeSize[e]++
			if p != InvalidPartition {
				hg.pinCount[e*hg.k+p]++
			}
			if hg.edgeSize[e] == 2 && !hg.edgeEnabled[e] {
				hg.edgeEnabled[e] = true
				hg.currentNumEdges++
			}
		}
	}

	for i := m.SizeOfU; i < hg.nodeSize[u]; i++ {
		hg.caseOneScratch[hg.incident[u][i]] = false
	}
	hg.incident[u] = hg.incident[u][:m.SizeOfU]
	hg.nodeSize[u] = m.SizeOfU
	return nil
}

func (hg *Hypergraph) incrementPinCount(e, p int) {
	idx := e*hg.k + p
	hg.pinCount[idx]++
	if hg.pinCount[idx] == 1 {
		hg.connectivity[e]++
	}
}

func (hg *Hypergraph) decrementPinCount(e, p int) {
	idx := e*hg.k + p
	hg.pinCount[idx]--
	if hg.pinCount[idx] == 0 {
		hg.connectivity[e]--
	}
}
