//go:build wasip1

package log

import (
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/internal/abi"
)

//go:wasmimport ic0 debug_print
//nolint:revive // intentional snake_case to match WASM import convention
func ic0_debug_print(src, size uint32)

//go:wasmimport ic0 trap
//nolint:revive // intentional snake_case to match WASM import convention
func ic0_trap(src, size uint32)

// debugPrintSink writes straight to the debug_print import.
type debugPrintSink struct{}

func (debugPrintSink) DebugPrint(src []byte) {
	abi.WithSrc(src, ic0_debug_print)
}

func (debugPrintSink) Trap(src []byte) {
	abi.WithSrc(src, ic0_trap)
}

func defaultSink() ports.DebugAPI {
	return debugPrintSink{}
}
