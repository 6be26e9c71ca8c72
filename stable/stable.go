// Package stable reads and writes stable memory, the canister storage that
// survives upgrades.
//
// Stable memory is addressed in bytes and grows in pages of PageSize bytes.
// Every access is checked against the current size before it reaches the
// host, so an out of range offset is an ErrOutOfBounds error instead of a
// trap.
package stable

import (
	"fmt"
	"io"

	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/internal/abi"
)

// PageSize is the size of a stable memory page in bytes.
const PageSize = 65536

const growFailed = ^uint64(0)

// Compile-time interface compliance checks
var (
	_ io.ReaderAt = (*Store)(nil)
	_ io.WriterAt = (*Store)(nil)
)

// Store is a view of stable memory.
type Store struct {
	api ports.StableAPI
}

// New returns a Store backed by api.
func New(api ports.StableAPI) *Store {
	return &Store{api: api}
}

// Size returns the current size in pages.
func (s *Store) Size() uint64 {
	return s.api.Stable64Size()
}

// Bytes returns the current size in bytes.
func (s *Store) Bytes() uint64 {
	return s.api.Stable64Size() * PageSize
}

// Grow adds n pages and returns the previous size in pages.
// If the host refuses, the size is unchanged and ErrGrowFailed is returned.
func (s *Store) Grow(n uint64) (uint64, error) {
	prev := s.api.Stable64Grow(n)
	if prev == growFailed {
		return 0, fmt.Errorf("grow by %d pages: %w", n, sdkerrors.ErrGrowFailed)
	}
	return prev, nil
}

// EnsureBytes grows stable memory, if needed, so that it holds at least n bytes.
func (s *Store) EnsureBytes(n uint64) error {
	have := s.Bytes()
	if n <= have {
		return nil
	}
	pages := (n - have + PageSize - 1) / PageSize
	_, err := s.Grow(pages)
	return err
}

func (s *Store) check(op string, off uint64, n int) error {
	if err := abi.CheckRange(off, uint64(n), s.Bytes()); err != nil {
		return fmt.Errorf("stable %s: %w", op, err)
	}
	return nil
}

// Write copies b into stable memory at off.
func (s *Store) Write(off uint64, b []byte) error {
	if err := s.check("write", off, len(b)); err != nil {
		return err
	}
	if len(b) > 0 {
		s.api.Stable64Write(off, b)
	}
	return nil
}

// Read returns n bytes of stable memory starting at off.
func (s *Store) Read(off uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("stable read: %w", sdkerrors.ErrOutOfBounds)
	}
	buf := make([]byte, n)
	if err := s.ReadInto(off, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadInto fills dst from stable memory starting at off.
func (s *Store) ReadInto(off uint64, dst []byte) error {
	if err := s.check("read", off, len(dst)); err != nil {
		return err
	}
	if len(dst) > 0 {
		s.api.Stable64Read(dst, off)
	}
	return nil
}

// ReadAt implements io.ReaderAt. Reads past the end are truncated and
// return io.EOF.
func (s *Store) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("stable read: %w", sdkerrors.ErrOutOfBounds)
	}
	size := s.Bytes()
	if uint64(off) >= size {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := len(p)
	if rem := size - uint64(off); uint64(n) > rem {
		n = int(rem)
	}
	if err := s.ReadInto(uint64(off), p[:n]); err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. It does not grow memory.
func (s *Store) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("stable write: %w", sdkerrors.ErrOutOfBounds)
	}
	if err := s.Write(uint64(off), p); err != nil {
		return 0, err
	}
	return len(p), nil
}
