package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hgio"
	"github.com/gilchrisn/hypergraph-partition-service/pkg/partition"
)

var (
	flagMode   string
	flagConfig string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:          "partitioner <input.hgr> <k> <epsilon> <seed> <output>",
	Short:        "Multilevel k-way hypergraph partitioner",
	Args:         cobra.ExactArgs(5),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagMode, "mode", "kway", "partitioning mode: kway or rb")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "optional config file")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "only log errors")
}

func run(cmd *cobra.Command, args []string) error {
	inputFile := args[0]
	k, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("malformed k %q: %w", args[1], err)
	}
	epsilon, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("malformed epsilon %q: %w", args[2], err)
	}
	seed, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("malformed seed %q: %w", args[3], err)
	}
	outputFile := args[4]

	cfg := partition.NewConfig()
	if flagConfig != "" {
		if err := cfg.LoadFromFile(flagConfig); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	cfg.Set("partition.k", k)
	cfg.Set("partition.epsilon", epsilon)
	cfg.Set("partition.seed", seed)
	cfg.Set("partition.mode", flagMode)
	if flagQuiet {
		cfg.Set("logging.level", "error")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	hg, err := hgio.ReadHypergraph(inputFile, k)
	if err != nil {
		return err
	}

	result, err := partition.NewPartitioner(cfg).Partition(context.Background(), hg)
	if err != nil {
		return err
	}

	if err := hgio.WritePartitionFile(hg, outputFile); err != nil {
		return err
	}

	fmt.Printf("cut=%d imbalance=%.4f k=%d\n", result.Cut, result.Imbalance, result.K)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
