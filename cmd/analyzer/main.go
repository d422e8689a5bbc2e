package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hgio"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: analyzer <hypergraph.hgr>")
		os.Exit(1)
	}
	if err := analyze(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyze(graphFile string) error {
	hg, err := hgio.ReadHypergraph(graphFile, 2)
	if err != nil {
		return err
	}

	nodeDegrees := map[int]int{}
	degreeSamples := []float64{}
	for _, v := range hg.Nodes() {
		nodeDegrees[hg.NodeDegree(v)]++
		degreeSamples = append(degreeSamples, float64(hg.NodeDegree(v)))
	}

	edgeSizes := map[int]int{}
	sizeSamples := []float64{}
	for _, e := range hg.Edges() {
		edgeSizes[hg.EdgeSize(e)]++
		sizeSamples = append(sizeSamples, float64(hg.EdgeSize(e)))
	}

	graphName := filepath.Base(graphFile)
	if err := writeHistogram(graphName+"_hn_degrees.csv", "degree", nodeDegrees, degreeSamples); err != nil {
		return err
	}
	return writeHistogram(graphName+"_he_sizes.csv", "edgesize", edgeSizes, sizeSamples)
}

func writeHistogram(filename, label string, histogram map[int]int, samples []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", filename, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{label, "count"}); err != nil {
		return err
	}
	keys := make([]int, 0, len(histogram))
	for k := range histogram {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if err := w.Write([]string{strconv.Itoa(k), strconv.Itoa(histogram[k])}); err != nil {
			return err
		}
	}

	mean, std := stat.MeanStdDev(samples, nil)
	if err := w.Write([]string{"mean", strconv.FormatFloat(mean, 'f', 4, 64)}); err != nil {
		return err
	}
	if err := w.Write([]string{"stddev", strconv.FormatFloat(std, 'f', 4, 64)}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
