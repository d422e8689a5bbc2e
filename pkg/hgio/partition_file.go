package hgio

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
)

// WritePartitionFile writes one block id per line; line i holds the block of
// hypernode i.
func WritePartitionFile(hg *hypergraph.Hypergraph, filename string) error {
	var buf bytes.Buffer
	for v := 0; v < hg.InitialNumNodes(); v++ {
		fmt.Fprintf(&buf, "%d\n", hg.PartID(v))
	}
	return writeWhole(filename, buf.Bytes())
}

// ReadPartitionFile reads a partition vector written by WritePartitionFile.
func ReadPartitionFile(filename string) ([]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open partition file: %w", err)
	}
	defer file.Close()

	partition := []int{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("malformed partition entry %q: %w", line, err)
		}
		partition = append(partition, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading partition file: %w", err)
	}
	return partition, nil
}

func writeWhole(filename string, data []byte) error {
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", filename, err)
	}
	return nil
}
