package canister

import (
	"log/slog"

	"github.com/reglet-dev/canister-sdk/go/config"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSystem injects the system API. Tests pass a testing/ictest.Replica.
func WithSystem(sys ports.System) Option {
	return func(rt *Runtime) {
		rt.sys = sys
	}
}

// WithConfig sets the initial configuration. It is not validated here;
// use config.New or config.Parse to build a checked value.
func WithConfig(cfg config.Config) Option {
	return func(rt *Runtime) {
		rt.cfg = cfg
	}
}

// WithLogger replaces the debug_print logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
			rt.logSet = true
		}
	}
}
