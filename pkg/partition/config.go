package partition

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/hypergraph-partition-service/pkg/hypergraph"
)

// Config manages partitioner configuration using Viper.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults.
func NewConfig() *Config {
	v := viper.New()

	// Partition parameters
	v.SetDefault("partition.k", 2)
	v.SetDefault("partition.epsilon", 0.03)
	v.SetDefault("partition.seed", time.Now().UnixNano())
	v.SetDefault("partition.mode", "kway")

	// Coarsening parameters
	v.SetDefault("coarsening.contraction_limit", 150)
	v.SetDefault("coarsening.max_vertex_weight", 0) // 0 = derive from contraction limit

	// Initial partitioning parameters
	v.SetDefault("initial.technique", "ghg")
	v.SetDefault("initial.start_policy", "bfs")

	// Refinement parameters
	v.SetDefault("refinement.stopping_rule", "simple")
	v.SetDefault("refinement.max_fruitless_moves", 150)
	v.SetDefault("refinement.alpha", 4.0)

	// Logging parameters
	v.SetDefault("logging.level", "info")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for partition parameters
func (c *Config) K() int           { return c.v.GetInt("partition.k") }
func (c *Config) Epsilon() float64 { return c.v.GetFloat64("partition.epsilon") }
func (c *Config) Seed() int64      { return c.v.GetInt64("partition.seed") }
func (c *Config) Mode() string     { return c.v.GetString("partition.mode") }

func (c *Config) ContractionLimit() int { return c.v.GetInt("coarsening.contraction_limit") }
func (c *Config) MaxVertexWeight() int  { return c.v.GetInt("coarsening.max_vertex_weight") }

func (c *Config) InitialTechnique() string { return c.v.GetString("initial.technique") }
func (c *Config) StartPolicy() string      { return c.v.GetString("initial.start_policy") }

func (c *Config) StoppingRule() string   { return c.v.GetString("refinement.stopping_rule") }
func (c *Config) MaxFruitlessMoves() int { return c.v.GetInt("refinement.max_fruitless_moves") }
func (c *Config) Alpha() float64         { return c.v.GetFloat64("refinement.alpha") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Validate rejects infeasible configurations before any work starts.
func (c *Config) Validate() error {
	if c.K() < 2 {
		return fmt.Errorf("number of blocks must be at least 2, got %d", c.K())
	}
	if c.Epsilon() < 0 {
		return fmt.Errorf("imbalance tolerance must be non-negative, got %f", c.Epsilon())
	}
	if c.ContractionLimit() < 2 {
		return fmt.Errorf("contraction limit must be at least 2, got %d", c.ContractionLimit())
	}
	switch c.Mode() {
	case "kway", "rb":
	default:
		return fmt.Errorf("unknown partitioning mode %q", c.Mode())
	}
	switch c.InitialTechnique() {
	case "ghg", "bfs", "random":
	default:
		return fmt.Errorf("unknown initial partitioning technique %q", c.InitialTechnique())
	}
	switch c.StartPolicy() {
	case "bfs", "random", "maxdegree":
	default:
		return fmt.Errorf("unknown start-node policy %q", c.StartPolicy())
	}
	switch c.StoppingRule() {
	case "simple", "adaptive1", "adaptive2":
	default:
		return fmt.Errorf("unknown stopping rule %q", c.StoppingRule())
	}
	return nil
}

// ValidateForHypergraph checks the constraints that need the instance.
func (c *Config) ValidateForHypergraph(hg *hypergraph.Hypergraph) error {
	if c.MaxVertexWeight() == 0 {
		return nil
	}
	for _, v := range hg.Nodes() {
		if hg.NodeWeight(v) > c.MaxVertexWeight() {
			return fmt.Errorf("hypernode %d weight %d exceeds max_vertex_weight %d",
				v, hg.NodeWeight(v), c.MaxVertexWeight())
		}
	}
	return nil
}

// CreateLogger creates a zerolog logger based on config.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "partitioner").Logger()
}
