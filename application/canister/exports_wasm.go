//go:build wasip1

package canister

import (
	"sync"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
)

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the runtime the exported entry points dispatch to.
// Register handlers on it from main or init.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = New()
	})
	return defaultRuntime
}

// Per-method entry points (canister_update <name>, canister_query <name>)
// cannot be spelled in a wasmexport directive. Guests export
// canister_update_<name> / canister_query_<name> functions that call
// ServeUpdate / ServeQuery, and the module is renamed after linking.

// ServeUpdate runs the update method the host invoked.
func ServeUpdate() { Default().Run(entities.KindUpdate) }

// ServeQuery runs the query method the host invoked.
func ServeQuery() { Default().Run(entities.KindQuery) }

// ServeCompositeQuery runs the composite query method the host invoked.
func ServeCompositeQuery() { Default().Run(entities.KindCompositeQuery) }

//go:wasmexport canister_init
func canisterInit() { Default().Run(entities.KindInit) }

//go:wasmexport canister_pre_upgrade
func canisterPreUpgrade() { Default().Run(entities.KindPreUpgrade) }

//go:wasmexport canister_post_upgrade
func canisterPostUpgrade() { Default().Run(entities.KindPostUpgrade) }

//go:wasmexport canister_inspect_message
func canisterInspectMessage() { Default().Run(entities.KindInspect) }

//go:wasmexport canister_heartbeat
func canisterHeartbeat() { Default().Run(entities.KindHeartbeat) }

//go:wasmexport canister_global_timer
func canisterGlobalTimer() { Default().Run(entities.KindGlobalTimer) }

//go:wasmexport canister_on_low_wasm_memory
func canisterOnLowWasmMemory() { Default().Run(entities.KindOnLowWasmMemory) }

// Callback trampolines. Their table indices are what config.Trampolines
// must hold.

//go:wasmexport canister_callback_reply
func canisterCallbackReply(env uint32) { Default().Continue(entities.KindReplyCallback, env) }

//go:wasmexport canister_callback_reject
func canisterCallbackReject(env uint32) { Default().Continue(entities.KindRejectCallback, env) }

//go:wasmexport canister_callback_cleanup
func canisterCallbackCleanup(env uint32) { Default().Continue(entities.KindCleanup, env) }
