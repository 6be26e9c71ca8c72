//go:build !wasip1

package canister

import "sync"

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime. Outside WASM it is bound to the
// stub system and only useful for registering handlers; tests build their
// own runtime with WithSystem.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = New()
	})
	return defaultRuntime
}

// ServeUpdate panics outside WASM.
func ServeUpdate() { panic("canister: ServeUpdate requires a wasip1 build") }

// ServeQuery panics outside WASM.
func ServeQuery() { panic("canister: ServeQuery requires a wasip1 build") }

// ServeCompositeQuery panics outside WASM.
func ServeCompositeQuery() { panic("canister: ServeCompositeQuery requires a wasip1 build") }
