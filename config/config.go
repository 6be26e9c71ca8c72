// Package config holds the runtime configuration of a canister built with
// the SDK.
//
// Configuration is usually decoded from the canister_init argument or, for
// the local emulator, from a YAML or JSON file. Both forms go through Parse,
// which applies defaults, then the document, then any options, and
// validates the result.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/canister-sdk/go/call"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config is the runtime configuration.
type Config struct {
	Trampolines call.Trampolines `json:"trampolines" yaml:"trampolines" validate:"required" jsonschema:"description=Function-table indices of the exported callback entry points"`
	LogLevel    string           `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	LogFormat   string           `json:"log_format" yaml:"log_format" validate:"oneof=text json" jsonschema:"enum=text,enum=json,default=text"`
	// MaxPendingCalls bounds the continuation registry.
	MaxPendingCalls int `json:"max_pending_calls" yaml:"max_pending_calls" validate:"min=1,max=65535" jsonschema:"minimum=1,maximum=65535,default=1024"`
	// DefaultBestEffortTimeout, in seconds, applies to calls that do not set
	// their own. Zero means calls wait for a guaranteed response.
	DefaultBestEffortTimeout uint32 `json:"default_best_effort_timeout" yaml:"default_best_effort_timeout" validate:"max=300" jsonschema:"minimum=0,maximum=300,default=0"`
	// RejectOnError rejects the message with the error text when a handler
	// returns an error without replying. When false the error is only logged.
	RejectOnError bool `json:"reject_on_error" yaml:"reject_on_error" jsonschema:"default=true"`
}

// Option mutates a Config after it has been decoded.
type Option func(*Config)

// WithLogLevel sets the minimum log level.
func WithLogLevel(level string) Option {
	return func(c *Config) { c.LogLevel = level }
}

// WithLogFormat selects text or json log output.
func WithLogFormat(format string) Option {
	return func(c *Config) { c.LogFormat = format }
}

// WithMaxPendingCalls bounds the number of in-flight calls.
func WithMaxPendingCalls(n int) Option {
	return func(c *Config) { c.MaxPendingCalls = n }
}

// WithDefaultBestEffortTimeout sets the timeout applied to calls that set none.
func WithDefaultBestEffortTimeout(seconds uint32) Option {
	return func(c *Config) { c.DefaultBestEffortTimeout = seconds }
}

// WithTrampolines sets the callback function-table indices.
func WithTrampolines(t call.Trampolines) Option {
	return func(c *Config) { c.Trampolines = t }
}

// WithRejectOnError controls whether handler errors become rejections.
func WithRejectOnError(enabled bool) Option {
	return func(c *Config) { c.RejectOnError = enabled }
}

// Default returns the configuration used when none is supplied.
func Default() Config {
	return Config{
		LogLevel:        "info",
		LogFormat:       "text",
		MaxPendingCalls: 1024,
		Trampolines:     call.Trampolines{Reply: 1, Reject: 2, Cleanup: 3},
		RejectOnError:   true,
	}
}

// New returns Default with opts applied, validated.
func New(opts ...Option) (Config, error) {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a YAML or JSON document over the defaults, applies opts
// and validates the result. An empty document yields the defaults.
func Parse(data []byte, opts ...Option) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &sdkerrors.ConfigError{Err: fmt.Errorf("decode: %w", err)}
		}
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints. The first
// failing field is reported as a *errors.ConfigError.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &sdkerrors.ConfigError{
			Field: fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:],
			Err:   fmt.Errorf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &sdkerrors.ConfigError{Err: err}
}

// SlogLevel returns LogLevel as a slog.Level.
func (c Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Schema returns the JSON Schema describing Config.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(&Config{})

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}
