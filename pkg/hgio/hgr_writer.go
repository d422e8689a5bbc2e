package hgio

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
)

// WriteHypergraphFile serializes hg in .hgr format. The weight variant is
// inferred: a weight section is emitted as soon as any weight differs from 1.
// Pins are written 1-based. The file is only created once formatting has
// fully succeeded, so a failed write never leaves a partial file behind.
func WriteHypergraphFile(hg *hypergraph.Hypergraph, filename string) error {
	hgType := Unweighted
	hasEdgeWeights := false
	for _, e := range hg.Edges() {
		if hg.EdgeWeight(e) != 1 {
			hasEdgeWeights = true
			break
		}
	}
	hasNodeWeights := false
	for _, v := range hg.Nodes() {
		if hg.NodeWeight(v) != 1 {
			hasNodeWeights = true
			break
		}
	}
	switch {
	case hasEdgeWeights && hasNodeWeights:
		hgType = EdgeAndNodeWeights
	case hasEdgeWeights:
		hgType = EdgeWeights
	case hasNodeWeights:
		hgType = NodeWeights
	}

	var buf bytes.Buffer
	if hgType == Unweighted {
		fmt.Fprintf(&buf, "%d %d\n", hg.CurrentNumEdges(), hg.CurrentNumNodes())
	} else {
		fmt.Fprintf(&buf, "%d %d %d\n", hg.CurrentNumEdges(), hg.CurrentNumNodes(), int(hgType))
	}

	for _, e := range hg.Edges() {
		first := true
		if hgType.HasEdgeWeights() {
			buf.WriteString(strconv.Itoa(hg.EdgeWeight(e)))
			first = false
		}
		for _, pin := range hg.Pins(e) {
			if !first {
				buf.WriteByte(' ')
			}
			buf.WriteString(strconv.Itoa(pin + 1))
			first = false
		}
		buf.WriteByte('\n')
	}

	if hgType.HasNodeWeights() {
		for _, v := range hg.Nodes() {
			fmt.Fprintf(&buf, "%d\n", hg.NodeWeight(v))
		}
	}

	return writeWhole(filename, buf.Bytes())
}
