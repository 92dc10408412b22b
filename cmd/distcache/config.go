package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/DeBrosOfficial/distcache/pkg/config"
)

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type cliFlags struct {
	configPath  string
	backend     string
	addr        string
	caches      string
	servers     string
	boltPath    string
	logLevel    string
	printConfig bool
}

// parseFlags reads flags with environment fallbacks.
// Priority: flags > env > config file > defaults.
func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet("distcache", flag.ContinueOnError)
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", getEnvDefault("DISTCACHE_CONFIG", ""), "Path to YAML config file")
	fs.StringVar(&f.backend, "backend", getEnvDefault("DISTCACHE_BACKEND", ""), "Cache backend: olric, olric-embedded or bolt")
	fs.StringVar(&f.addr, "addr", getEnvDefault("DISTCACHE_ADDR", ""), "HTTP listen address (e.g., :6380)")
	fs.StringVar(&f.caches, "caches", getEnvDefault("DISTCACHE_CACHES", ""), "Comma-separated cache names to register")
	fs.StringVar(&f.servers, "olric-servers", getEnvDefault("DISTCACHE_OLRIC_SERVERS", ""), "Comma-separated Olric server addresses")
	fs.StringVar(&f.boltPath, "bolt-path", getEnvDefault("DISTCACHE_BOLT_PATH", ""), "bbolt database file")
	fs.StringVar(&f.logLevel, "log-level", getEnvDefault("DISTCACHE_LOG_LEVEL", ""), "Log level: debug, info, warn, error")
	fs.BoolVar(&f.printConfig, "print-config", getEnvBoolDefault("DISTCACHE_PRINT_CONFIG", false), "Print the effective config as YAML and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// loadConfig builds the effective config from the file named by -config (if
// any) with flag overrides applied, then validates the result.
func loadConfig(f *cliFlags) (*config.Config, []error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, errs := config.Load(f.configPath)
		if len(errs) > 0 {
			return nil, errs
		}
		cfg = loaded
	}

	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.addr != "" {
		cfg.Gateway.ListenAddr = f.addr
	}
	if caches := splitList(f.caches); len(caches) > 0 {
		cfg.Caches = caches
	}
	if servers := splitList(f.servers); len(servers) > 0 {
		cfg.Olric.Servers = servers
	}
	if f.boltPath != "" {
		cfg.Bolt.Path = f.boltPath
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

func formatErrors(errs []error) string {
	var b strings.Builder
	for _, err := range errs {
		fmt.Fprintf(&b, "  - %v\n", err)
	}
	return b.String()
}
