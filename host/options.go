package host

import (
	"log/slog"

	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithReplica backs the ic0 imports with r instead of a fresh replica.
func WithReplica(r *ictest.Replica) Option {
	return func(e *Executor) {
		e.replica = r
	}
}

// WithLogger sets the logger that receives debug_print output and traps.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}
