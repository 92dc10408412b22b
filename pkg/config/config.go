package config

import (
	"fmt"
	"os"
	"time"
)

// Backend names accepted in Config.Backend
const (
	BackendOlric         = "olric"
	BackendOlricEmbedded = "olric-embedded"
	BackendBolt          = "bolt"
)

// Config represents the configuration of a distcache gateway process
type Config struct {
	Backend string        `yaml:"backend"` // olric, olric-embedded or bolt
	Caches  []string      `yaml:"caches"`  // Named caches to register
	Olric   OlricConfig   `yaml:"olric"`
	Bolt    BoltConfig    `yaml:"bolt"`
	Gateway GatewayConfig `yaml:"gateway"`
	Logging LoggingConfig `yaml:"logging"`
}

// OlricConfig contains Olric client and embedded node settings
type OlricConfig struct {
	// Servers is the list of Olric cluster addresses (backend: olric)
	Servers []string `yaml:"servers"`

	// HealthTimeout bounds a single health probe
	HealthTimeout time.Duration `yaml:"health_timeout"`

	// Embedded node settings (backend: olric-embedded)
	BindAddr       string   `yaml:"bind_addr"`
	BindPort       int      `yaml:"bind_port"`       // default: 3320
	MemberlistPort int      `yaml:"memberlist_port"` // default: 3322
	Peers          []string `yaml:"peers"`           // Memberlist peers to join
}

// BoltConfig contains bbolt backend settings
type BoltConfig struct {
	Path          string        `yaml:"path"`
	BucketPrefix  string        `yaml:"bucket_prefix"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // 0 disables the sweeper
}

// GatewayConfig contains HTTP gateway settings
type GatewayConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxValueBytes  int64         `yaml:"max_value_bytes"` // PUT body limit
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Colors     bool   `yaml:"colors"`      // ANSI colors in console output
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// DefaultConfig returns a configuration for a single local embedded node
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendOlricEmbedded,
		Caches:  []string{"default"},
		Olric: OlricConfig{
			Servers:        []string{"localhost:3320"},
			HealthTimeout:  5 * time.Second,
			BindAddr:       "127.0.0.1",
			BindPort:       3320,
			MemberlistPort: 3322,
		},
		Bolt: BoltConfig{
			Path:          "distcache.bbolt",
			BucketPrefix:  "cache:",
			SweepInterval: time.Minute,
		},
		Gateway: GatewayConfig{
			ListenAddr:     ":6380",
			RequestTimeout: 30 * time.Second,
			MaxValueBytes:  16 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Colors: true,
		},
	}
}

// Load reads a YAML config file on top of DefaultConfig and validates it.
// All validation problems are returned together.
func Load(path string) (*Config, []error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to open config %s: %w", path, err)}
	}
	defer f.Close()

	if err := DecodeStrict(f, cfg); err != nil {
		return nil, []error{err}
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}
