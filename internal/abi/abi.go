//go:build wasip1

package abi

import (
	"runtime"
	"unsafe"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
)

// Offset returns the linear-memory offset and length of b, as the system API
// expects them. An empty slice yields (0, 0).
//
// The caller must keep b alive until the host call returns; KeepAlive is
// applied by the helpers below for that reason.
func Offset(b []byte) (ptr, length uint32) {
	if len(b) == 0 {
		return 0, 0
	}
	// WASM linear memory: pointer -> uint32 offset conversion is safe and necessary
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	return uint32(uintptr(unsafe.Pointer(&b[0]))), uint32(len(b))
}

// WithSrc calls fn with the offset and length of src and keeps src reachable
// until fn returns.
func WithSrc(src []byte, fn func(ptr, length uint32)) {
	ptr, length := Offset(src)
	fn(ptr, length)
	runtime.KeepAlive(src)
}

// WithDst calls fn with the offset of dst for a host copy of len(dst) bytes.
func WithDst(dst []byte, fn func(ptr, length uint32)) {
	WithSrc(dst, fn)
}

// ReadUint128 lets the host write a 128-bit value into a 16-byte scratch
// buffer and decodes it.
func ReadUint128(fill func(dst uint32)) entities.Uint128 {
	var buf [entities.Uint128Size]byte
	ptr, _ := Offset(buf[:])
	fill(ptr)
	runtime.KeepAlive(&buf)
	// The length always matches Uint128Size.
	v, _ := entities.Uint128FromLE(buf[:])
	return v
}
