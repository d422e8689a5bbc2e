package hgio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
)

// ReadHGRHeader parses the first non-comment line of an .hgr stream:
// "num_hyperedges num_hypernodes [type]".
func ReadHGRHeader(r *bufio.Scanner) (numHyperedges, numHypernodes int, t HypergraphType, err error) {
	line, err := nextContentLine(r)
	if err != nil {
		return 0, 0, Unweighted, fmt.Errorf("reading hgr header: %w", err)
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, Unweighted, fmt.Errorf("malformed hgr header %q", line)
	}
	numHyperedges, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, Unweighted, fmt.Errorf("malformed hyperedge count %q: %w", fields[0], err)
	}
	numHypernodes, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, Unweighted, fmt.Errorf("malformed hypernode count %q: %w", fields[1], err)
	}
	if len(fields) == 3 {
		code, err := strconv.Atoi(fields[2])
		if err != nil {
			return 0, 0, Unweighted, fmt.Errorf("malformed hypergraph type %q: %w", fields[2], err)
		}
		switch HypergraphType(code) {
		case Unweighted, EdgeWeights, NodeWeights, EdgeAndNodeWeights:
			t = HypergraphType(code)
		default:
			return 0, 0, Unweighted, fmt.Errorf("unknown hypergraph type %d", code)
		}
	}
	return numHyperedges, numHypernodes, t, nil
}

// ReadHypergraphFile parses an .hgr file into the index/edge vector pair plus
// the optional weight vectors. Pins are converted from the file's 1-based ids
// to 0-based.
func ReadHypergraphFile(filename string) (numHypernodes, numHyperedges int,
	indexVector, edgeVector, hyperedgeWeights, hypernodeWeights []int, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, 0, nil, nil, nil, nil, fmt.Errorf("could not open hypergraph file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	numHyperedges, numHypernodes, hgType, err := ReadHGRHeader(scanner)
	if err != nil {
		return 0, 0, nil, nil, nil, nil, err
	}

	indexVector = make([]int, 1, numHyperedges+1)
	edgeVector = make([]int, 0)
	if hgType.HasEdgeWeights() {
		hyperedgeWeights = make([]int, 0, numHyperedges)
	}

	for e := 0; e < numHyperedges; e++ {
		line, err := nextContentLine(scanner)
		if err != nil {
			return 0, 0, nil, nil, nil, nil, fmt.Errorf("hyperedge %d: %w", e, err)
		}
		fields := strings.Fields(line)
		if hgType.HasEdgeWeights() {
			if len(fields) < 2 {
				return 0, 0, nil, nil, nil, nil, fmt.Errorf("hyperedge %d has no pins", e)
			}
			w, err := strconv.Atoi(fields[0])
			if err != nil || w < 0 {
				return 0, 0, nil, nil, nil, nil, fmt.Errorf("hyperedge %d has malformed weight %q", e, fields[0])
			}
			hyperedgeWeights = append(hyperedgeWeights, w)
			fields = fields[1:]
		} else if len(fields) == 0 {
			return 0, 0, nil, nil, nil, nil, fmt.Errorf("hyperedge %d has no pins", e)
		}
		for _, f := range fields {
			pin, err := strconv.Atoi(f)
			if err != nil {
				return 0, 0, nil, nil, nil, nil, fmt.Errorf("hyperedge %d has malformed pin %q", e, f)
			}
			if pin < 1 || pin > numHypernodes {
				return 0, 0, nil, nil, nil, nil, fmt.Errorf("hyperedge %d pin %d out of range [1,%d]", e, pin, numHypernodes)
			}
			edgeVector = append(edgeVector, pin-1)
		}
		indexVector = append(indexVector, len(edgeVector))
	}

	if hgType.HasNodeWeights() {
		hypernodeWeights = make([]int, 0, numHypernodes)
		for v := 0; v < numHypernodes; v++ {
			line, err := nextContentLine(scanner)
			if err != nil {
				return 0, 0, nil, nil, nil, nil, fmt.Errorf("hypernode weight %d: %w", v, err)
			}
			w, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil || w < 0 {
				return 0, 0, nil, nil, nil, nil, fmt.Errorf("hypernode %d has malformed weight %q", v, line)
			}
			hypernodeWeights = append(hypernodeWeights, w)
		}
	}
	return numHypernodes, numHyperedges, indexVector, edgeVector, hyperedgeWeights, hypernodeWeights, nil
}

// ReadHypergraph parses an .hgr file directly into a hypergraph with k
// partition blocks.
func ReadHypergraph(filename string, k int) (*hypergraph.Hypergraph, error) {
	numNodes, numEdges, index, edges, ew, nw, err := ReadHypergraphFile(filename)
	if err != nil {
		return nil, err
	}
	hg, err := hypergraph.New(numNodes, numEdges, index, edges, k, ew, nw)
	if err != nil {
		return nil, fmt.Errorf("building hypergraph from %s: %w", filename, err)
	}
	return hg, nil
}

func nextContentLine(scanner *bufio.Scanner) (string, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}
