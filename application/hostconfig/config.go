// Package hostconfig loads the YAML configuration for the host adapter
// binary: which engine backing to use, which chains to register, and which
// requests to submit at startup.
package hostconfig

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/lantern-dev/lanternhost/domain/errors"
	"gopkg.in/yaml.v3"
)

// Engine backing kinds.
const (
	EngineWASM     = "wasm"
	EngineLoopback = "loopback"
)

// DefaultRequest is submitted when the configuration lists no requests; it
// subscribes to new chain heads, which makes the adapter print a response
// stream immediately.
const DefaultRequest = `{"id":1,"jsonrpc":"2.0","method":"chain_subscribeNewHeads","params":[]}`

// validate is a package-level singleton for better performance.
var validate = validator.New()

// ChainEntry names one chain specification to register at startup.
type ChainEntry struct {
	// Name labels the chain in logs; defaults to the spec's own name.
	Name string `yaml:"name"`

	// Spec is the path of the chain specification JSON document.
	Spec string `yaml:"spec" validate:"required"`
}

// HostConfig is the adapter binary's configuration.
type HostConfig struct {
	// Engine selects the backing: "wasm" drives an engine module through its
	// ABI, "loopback" runs the in-process test engine.
	Engine string `yaml:"engine" validate:"required,oneof=wasm loopback"`

	// EnginePath is the path of the engine wasm binary; required for the
	// wasm backing.
	EnginePath string `yaml:"engine_path" validate:"required_if=Engine wasm"`

	// Chains lists the specifications to register, in order. Parachain specs
	// must come after their relay chain.
	Chains []ChainEntry `yaml:"chains" validate:"min=1,dive"`

	// Requests are JSON-RPC texts submitted to the first chain after
	// registration. Defaults to a new-heads subscription.
	Requests []string `yaml:"requests"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// MetricsListen, when set, exposes prometheus metrics on this address
	// (e.g. "127.0.0.1:9184").
	MetricsListen string `yaml:"metrics_listen"`
}

// Default returns a HostConfig with the loopback engine and no chains.
// Callers still need to add at least one chain entry.
func Default() HostConfig {
	return HostConfig{
		Engine:   EngineLoopback,
		LogLevel: "info",
	}
}

// Parse unmarshals and validates YAML configuration bytes.
func Parse(data []byte) (*HostConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &errors.ConfigError{Err: err}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.ConfigError{Err: err, Field: "path"}
	}
	return Parse(data)
}

func (c *HostConfig) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.Requests) == 0 {
		c.Requests = []string{DefaultRequest}
	}
}

// Validate runs struct-tag validation and maps the first failure to a
// field-carrying ConfigError.
func (c *HostConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.ConfigError{
			Field: fe.Field(),
			Err:   fmt.Errorf("failed %q constraint", fe.Tag()),
		}
	}
	return &errors.ConfigError{Err: err}
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *HostConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
