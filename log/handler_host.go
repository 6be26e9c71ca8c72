//go:build !wasip1

package log

import (
	"fmt"

	"github.com/reglet-dev/canister-sdk/go/domain/ports"
)

// stdoutSink is the default sink for non-WASM builds (e.g., host tests).
type stdoutSink struct{}

func (stdoutSink) DebugPrint(src []byte) {
	fmt.Printf("[HOST-STUB] %s\n", src)
}

func (stdoutSink) Trap(src []byte) {
	panic(fmt.Sprintf("trap: %s", src))
}

func defaultSink() ports.DebugAPI {
	return stdoutSink{}
}
