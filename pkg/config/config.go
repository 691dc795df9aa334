package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// RespawnPolicy controls what the watchdog does when a worker dies
type RespawnPolicy string

const (
	// RespawnPolicyRespawn restarts the dead worker on its existing queues
	RespawnPolicyRespawn RespawnPolicy = "respawn"

	// RespawnPolicyEscalate shuts the node down when a worker dies
	RespawnPolicyEscalate RespawnPolicy = "escalate"

	// RespawnPolicyNone only logs the death
	RespawnPolicyNone RespawnPolicy = "none"
)

// Config is the top-level node configuration
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Transport TransportConfig `yaml:"transport"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// NodeConfig identifies the node
type NodeConfig struct {
	Name    string `yaml:"name"`
	DataDir string `yaml:"data_dir"`
}

// SchedulerConfig tunes the dispatch core
type SchedulerConfig struct {
	// PartitionThreads is the number of partition workers.
	// Values <= 0 select max(2, NumCPU).
	PartitionThreads int `yaml:"partition_threads"`

	// GenericThreads is the number of generic workers.
	// Values <= 0 select max(2, NumCPU/2).
	GenericThreads int `yaml:"generic_threads"`

	// TerminationTimeout bounds the per-worker wait during shutdown
	TerminationTimeout time.Duration `yaml:"termination_timeout"`

	// QueueCapacity bounds each ordinary work queue. 0 means unbounded.
	QueueCapacity int `yaml:"queue_capacity"`

	// RespawnPolicy selects the watchdog reaction to a dead worker
	RespawnPolicy RespawnPolicy `yaml:"respawn_policy"`
}

// TransportConfig tunes the wire listener
type TransportConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// MetricsConfig tunes the observability listener
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig selects the record store backend
type StorageConfig struct {
	Persistent bool   `yaml:"persistent"`
	Path       string `yaml:"path"`
}

// LogConfig tunes logging
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			Name:    "burrow",
			DataDir: "/var/lib/burrow",
		},
		Scheduler: SchedulerConfig{
			PartitionThreads:   0,
			GenericThreads:     0,
			TerminationTimeout: 3 * time.Second,
			QueueCapacity:      0,
			RespawnPolicy:      RespawnPolicyRespawn,
		},
		Transport: TransportConfig{
			ListenAddr: ":5701",
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
		Storage: StorageConfig{
			Persistent: false,
			Path:       "",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

// Load reads a YAML configuration file and merges it over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Node.Name == "" {
		return fmt.Errorf("node.name must not be empty")
	}

	if c.Scheduler.TerminationTimeout <= 0 {
		return fmt.Errorf("scheduler.termination_timeout must be positive")
	}

	if c.Scheduler.QueueCapacity < 0 {
		return fmt.Errorf("scheduler.queue_capacity must not be negative")
	}

	switch c.Scheduler.RespawnPolicy {
	case RespawnPolicyRespawn, RespawnPolicyEscalate, RespawnPolicyNone:
	default:
		return fmt.Errorf("scheduler.respawn_policy must be one of respawn, escalate, none (got %q)", c.Scheduler.RespawnPolicy)
	}

	if c.Storage.Persistent && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required when storage.persistent is true")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}

	return nil
}

// PartitionWorkers resolves the configured partition worker count
func (c *SchedulerConfig) PartitionWorkers() int {
	if c.PartitionThreads > 0 {
		return c.PartitionThreads
	}
	return maxInt(2, runtime.NumCPU())
}

// GenericWorkers resolves the configured generic worker count
func (c *SchedulerConfig) GenericWorkers() int {
	if c.GenericThreads > 0 {
		return c.GenericThreads
	}
	return maxInt(2, runtime.NumCPU()/2)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
