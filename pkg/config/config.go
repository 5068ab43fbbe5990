package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	Prod = "prod"
	Dev  = "dev"
	Test = "test"
)

type App struct {
	Registry Registry `yaml:"registry"`
	Workload Workload `yaml:"workload"`
}

// Registry configures the resource registry and its idle evictor.
type Registry struct {
	// Shards is rounded up to the next power of two.
	Shards uint64 `yaml:"shards"`
	// PerShard preallocates each shard map.
	PerShard int `yaml:"preallocate_per_shard"`
	// IdleTTL drops resources untouched for this long when the registry is
	// the sole owner. Zero disables the evictor.
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	EvictInterval time.Duration `yaml:"evict_interval"`
}

// Workload configures the synthetic demo workload run by cmd.
type Workload struct {
	Enabled      bool `yaml:"enabled"`
	Resources    int  `yaml:"resources"`
	Clients      int  `yaml:"clients"`
	RatePerSec   int  `yaml:"rate_per_sec"`
	PayloadBytes int  `yaml:"payload_bytes"`
}

const (
	configPath      = "/config/shared.cfg.yaml"
	configPathLocal = "/config/shared.cfg.local.yaml"
	configPathTest  = "/../../config/shared.cfg.test.yaml"
)

func LoadConfig() (*App, error) {
	env := os.Getenv("APP_ENV")

	var path string
	switch {
	case env == Prod:
		path = configPath
	case env == Dev:
		path = configPathLocal
	case env == Test:
		path = configPathTest
	default:
		return nil, errors.New("unknown APP_ENV: '" + env + "'")
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path, err = filepath.Abs(filepath.Clean(dir + path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute config filepath: %w", err)
	}

	return LoadConfigFromPath(path)
}

func LoadConfigFromPath(path string) (*App, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	cfg := &App{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

// Default returns the configuration used when no file is given (tests and
// embedded use).
func Default() *App {
	cfg := &App{}
	cfg.applyDefaults()
	return cfg
}

func (c *App) applyDefaults() {
	if c.Registry.Shards == 0 {
		c.Registry.Shards = 16
	}
	c.Registry.Shards = nextPowOfTwo(c.Registry.Shards)
	if c.Registry.PerShard <= 0 {
		c.Registry.PerShard = 64
	}
	if c.Registry.IdleTTL > 0 && c.Registry.EvictInterval <= 0 {
		c.Registry.EvictInterval = time.Second * 10
	}
	if c.Workload.Resources <= 0 {
		c.Workload.Resources = 128
	}
	if c.Workload.Clients <= 0 {
		c.Workload.Clients = 4
	}
	if c.Workload.RatePerSec <= 0 {
		c.Workload.RatePerSec = 1000
	}
	if c.Workload.PayloadBytes <= 0 {
		c.Workload.PayloadBytes = 512
	}
}

func nextPowOfTwo(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}
