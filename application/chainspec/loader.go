// Package chainspec loads and validates chain specification documents before
// they are handed to the engine. The engine owns interpretation; this package
// only guarantees the document is readable, is JSON, and carries the fields
// the host needs for relay resolution and logging.
package chainspec

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/lantern-dev/lanternhost/domain/ports"
)

// DefaultMaxSpecSize limits chain specification documents to 32MB.
// Real network specs with embedded genesis state run to a few MB; anything
// beyond this is rejected before it reaches the engine.
const DefaultMaxSpecSize = 32 * 1024 * 1024

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// Document pairs the raw bytes that cross the engine boundary with the
// host-side parsed shape. Raw is exactly the file contents; ownership of the
// bytes transfers to the engine on registration.
type Document struct {
	Raw  []byte
	Spec entities.ChainSpec
}

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	parser      ports.SpecParser
	maxSpecSize int64
	strict      bool // Fail on shape validation errors, not just malformed JSON
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser:      NewJSONSpecParser(),
		maxSpecSize: DefaultMaxSpecSize,
		strict:      true,
	}
}

// Loader reads and validates chain specification documents.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom spec parser.
func WithParser(p ports.SpecParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithMaxSpecSize sets the maximum accepted document size in bytes.
func WithMaxSpecSize(n int64) LoaderOption {
	return func(c *loaderConfig) {
		c.maxSpecSize = n
	}
}

// WithStrictValidation enables/disables shape validation beyond JSON
// well-formedness. Disable only when registering specs whose shape the
// engine alone understands.
func WithStrictValidation(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.strict = enabled
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// LoadFile reads a chain specification from disk and validates it.
// A read failure is fatal for startup and surfaces as *errors.SpecIOError;
// no handle can ever be produced from an unreadable document.
func (l *Loader) LoadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &errors.SpecIOError{Path: path, Err: err}
	}
	if info.Size() > l.config.maxSpecSize {
		return nil, &errors.SpecIOError{
			Path: path,
			Err:  fmt.Errorf("document is %d bytes, limit is %d", info.Size(), l.config.maxSpecSize),
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.SpecIOError{Path: path, Err: err}
	}
	return l.Load(raw)
}

// Load parses and validates an in-memory chain specification.
func (l *Loader) Load(raw []byte) (*Document, error) {
	spec, err := l.config.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	if l.config.strict {
		if err := validateSpec(spec); err != nil {
			return nil, err
		}
	}

	return &Document{Raw: raw, Spec: *spec}, nil
}

// validateSpec runs struct-tag validation and maps the first failure to a
// field-carrying SpecFormatError.
func validateSpec(spec *entities.ChainSpec) error {
	err := validate.Struct(spec)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.SpecFormatError{
			Field: fe.Field(),
			Err:   fmt.Errorf("failed %q constraint", fe.Tag()),
		}
	}
	return &errors.SpecFormatError{Err: err}
}

// JSONSpecParser implements ports.SpecParser for JSON documents.
type JSONSpecParser struct{}

// NewJSONSpecParser creates a new JSONSpecParser.
func NewJSONSpecParser() ports.SpecParser {
	return &JSONSpecParser{}
}

// Parse unmarshals JSON bytes into a ChainSpec struct.
func (p *JSONSpecParser) Parse(data []byte) (*entities.ChainSpec, error) {
	var spec entities.ChainSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, &errors.SpecFormatError{Err: err}
	}
	return &spec, nil
}
