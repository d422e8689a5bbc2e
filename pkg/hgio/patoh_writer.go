package hgio

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
)

// patohBothWeighted is the PaToH weight-scheme code for files carrying both
// cell and net weights.
const patohBothWeighted = 3

// WriteHypergraphForPaToHPartitioning serializes hg in PaToH input format:
// one header line "base num_hypernodes num_hyperedges num_pins scheme", one
// line per net ("weight pin..." with 0-based pins), and a final line listing
// all cell weights. mapping translates hg's node ids to the ids used in the
// output.
func WriteHypergraphForPaToHPartitioning(hg *hypergraph.Hypergraph, filename string, mapping map[int]int) error {
	numPins := 0
	for _, e := range hg.Edges() {
		numPins += hg.EdgeSize(e)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "0 %d %d %d %d\n", hg.CurrentNumNodes(), hg.CurrentNumEdges(), numPins, patohBothWeighted)

	for _, e := range hg.Edges() {
		buf.WriteString(strconv.Itoa(hg.EdgeWeight(e)))
		for _, pin := range hg.Pins(e) {
			mapped, ok := mapping[pin]
			if !ok {
				return fmt.Errorf("no PaToH mapping for hypernode %d", pin)
			}
			buf.WriteByte(' ')
			buf.WriteString(strconv.Itoa(mapped))
		}
		buf.WriteByte('\n')
	}

	first := true
	for _, v := range hg.Nodes() {
		if !first {
			buf.WriteByte(' ')
		}
		buf.WriteString(strconv.Itoa(hg.NodeWeight(v)))
		first = false
	}
	buf.WriteByte('\n')

	return writeWhole(filename, buf.Bytes())
}
