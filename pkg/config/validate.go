package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "olric.servers[0]"
	Message string // e.g., "invalid host:port"
	Hint    string // e.g., "expected host:port such as localhost:3320"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs validation of the entire config.
// It aggregates all errors so the caller can print every issue at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateBackend()...)
	errs = append(errs, c.validateCaches()...)
	errs = append(errs, c.validateGateway()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateBackend() []error {
	var errs []error

	switch c.Backend {
	case BackendOlric:
		if len(c.Olric.Servers) == 0 {
			errs = append(errs, ValidationError{
				Path:    "olric.servers",
				Message: "must not be empty",
				Hint:    "list at least one Olric server, e.g. localhost:3320",
			})
		}
		for i, server := range c.Olric.Servers {
			if err := validateHostPort(server); err != nil {
				errs = append(errs, ValidationError{
					Path:    fmt.Sprintf("olric.servers[%d]", i),
					Message: err.Error(),
					Hint:    "expected host:port such as localhost:3320",
				})
			}
		}
	case BackendOlricEmbedded:
		for path, port := range map[string]int{
			"olric.bind_port":       c.Olric.BindPort,
			"olric.memberlist_port": c.Olric.MemberlistPort,
		} {
			if port < 1 || port > 65535 {
				errs = append(errs, ValidationError{
					Path:    path,
					Message: fmt.Sprintf("invalid port %d", port),
					Hint:    "must be between 1 and 65535",
				})
			}
		}
		if c.Olric.BindPort != 0 && c.Olric.BindPort == c.Olric.MemberlistPort {
			errs = append(errs, ValidationError{
				Path:    "olric.memberlist_port",
				Message: "must differ from olric.bind_port",
			})
		}
		for i, peer := range c.Olric.Peers {
			if err := validateHostPort(peer); err != nil {
				errs = append(errs, ValidationError{
					Path:    fmt.Sprintf("olric.peers[%d]", i),
					Message: err.Error(),
					Hint:    "expected host:port of a memberlist endpoint",
				})
			}
		}
	case BackendBolt:
		if strings.TrimSpace(c.Bolt.Path) == "" {
			errs = append(errs, ValidationError{
				Path:    "bolt.path",
				Message: "must not be empty",
			})
		} else if filepath.Ext(c.Bolt.Path) == "" {
			errs = append(errs, ValidationError{
				Path:    "bolt.path",
				Message: "must name a file",
				Hint:    "e.g. /var/lib/distcache/cache.bbolt",
			})
		}
		if c.Bolt.SweepInterval < 0 {
			errs = append(errs, ValidationError{
				Path:    "bolt.sweep_interval",
				Message: "must not be negative",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Path:    "backend",
			Message: fmt.Sprintf("invalid value %q", c.Backend),
			Hint:    "allowed values: olric, olric-embedded, bolt",
		})
	}

	return errs
}

func (c *Config) validateCaches() []error {
	var errs []error

	if len(c.Caches) == 0 {
		errs = append(errs, ValidationError{
			Path:    "caches",
			Message: "must not be empty",
			Hint:    "list the cache names to expose",
		})
	}

	seen := make(map[string]bool)
	for i, name := range c.Caches {
		path := fmt.Sprintf("caches[%d]", i)
		switch {
		case strings.TrimSpace(name) == "":
			errs = append(errs, ValidationError{Path: path, Message: "must not be empty"})
		case strings.ContainsAny(name, "/ "):
			errs = append(errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("invalid cache name %q", name),
				Hint:    "names may not contain '/' or spaces",
			})
		case seen[name]:
			errs = append(errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("duplicate cache name %q", name),
			})
		}
		seen[name] = true
	}

	return errs
}

func (c *Config) validateGateway() []error {
	var errs []error

	if err := validateHostPort(c.Gateway.ListenAddr); err != nil {
		errs = append(errs, ValidationError{
			Path:    "gateway.listen_addr",
			Message: err.Error(),
			Hint:    "expected [host]:port such as :6380",
		})
	}
	if c.Gateway.RequestTimeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "gateway.request_timeout",
			Message: "must not be negative",
		})
	}
	if c.Gateway.MaxValueBytes <= 0 {
		errs = append(errs, ValidationError{
			Path:    "gateway.max_value_bytes",
			Message: "must be positive",
			Hint:    "e.g. 16777216 for 16 MiB",
		})
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("invalid value %q", c.Logging.Level),
			Hint:    "allowed values: debug, info, warn, error",
		})
	}

	return errs
}

func validateHostPort(addr string) error {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", portStr)
	}
	return nil
}
