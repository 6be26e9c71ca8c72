// Package abi moves data across the guest/host boundary.
//
// Every variable-length value the host exposes (argument data, caller,
// reject message, method name, certificate, canister and subnet ids) is
// read the same way: query its size, then copy a bounded range into a
// guest buffer. The helpers in this file do that dance once so callers
// never issue a copy the host would trap on.
package abi

import (
	"fmt"

	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
)

// SizeFunc returns the total size of a host value.
type SizeFunc func() uint32

// CopyFunc copies len(dst) bytes of a host value, starting at off, into dst.
type CopyFunc func(dst []byte, off uint32)

// ReadAll sizes the host value and copies it in full.
// A zero-sized value returns an empty, non-nil slice without a copy call.
func ReadAll(size SizeFunc, copyFn CopyFunc) []byte {
	n := size()
	buf := make([]byte, n)
	if n > 0 {
		copyFn(buf, 0)
	}
	return buf
}

// ReadRange copies n bytes starting at off. The range is checked against the
// current size first and ErrOutOfBounds is returned instead of letting the
// host trap.
func ReadRange(size SizeFunc, copyFn CopyFunc, off, n uint32) ([]byte, error) {
	total := size()
	if err := CheckRange(uint64(off), uint64(n), uint64(total)); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n > 0 {
		copyFn(buf, off)
	}
	return buf, nil
}

// CheckRange verifies off+n <= total without overflowing.
func CheckRange(off, n, total uint64) error {
	if off > total || n > total-off {
		return fmt.Errorf("[%d, %d+%d) exceeds %d: %w", off, off, n, total, sdkerrors.ErrOutOfBounds)
	}
	return nil
}
