package entities

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/holiman/uint256"
)

// Uint128Size is the number of bytes the host writes for a 128-bit value.
const Uint128Size = 16

var (
	// ErrUint128Overflow is returned when a value does not fit in 128 bits.
	ErrUint128Overflow = errors.New("value overflows 128 bits")

	// ErrUint128Underflow is returned when a subtraction would go below zero.
	ErrUint128Underflow = errors.New("value underflows zero")

	// ErrUint128Negative is returned when converting a negative big.Int.
	ErrUint128Negative = errors.New("negative value is not a valid uint128")
)

// Uint128 is an unsigned 128-bit integer stored as two 64-bit words.
// Its value is Hi*2^64 + Lo. The zero value is 0.
type Uint128 struct {
	Hi uint64 `json:"hi"`
	Lo uint64 `json:"lo"`
}

// Cycles is the unit in which balances and call attachments are expressed.
type Cycles = Uint128

// MaxUint128 is 2^128 - 1.
var MaxUint128 = Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}

// NewUint128 assembles a value from its high and low words.
func NewUint128(hi, lo uint64) Uint128 {
	return Uint128{Hi: hi, Lo: lo}
}

// Uint128FromUint64 widens v.
func Uint128FromUint64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Uint128FromBig converts b, failing for negative values or values wider
// than 128 bits.
func Uint128FromBig(b *big.Int) (Uint128, error) {
	if b == nil {
		return Uint128{}, nil
	}
	if b.Sign() < 0 {
		return Uint128{}, ErrUint128Negative
	}
	if b.BitLen() > 128 {
		return Uint128{}, ErrUint128Overflow
	}
	var buf [Uint128Size]byte
	b.FillBytes(buf[:])
	return Uint128{
		Hi: binary.BigEndian.Uint64(buf[:8]),
		Lo: binary.BigEndian.Uint64(buf[8:]),
	}, nil
}

// Uint128FromUint256 narrows v, failing if it is wider than 128 bits.
func Uint128FromUint256(v *uint256.Int) (Uint128, error) {
	if v == nil {
		return Uint128{}, nil
	}
	if v[2] != 0 || v[3] != 0 {
		return Uint128{}, ErrUint128Overflow
	}
	return Uint128{Hi: v[1], Lo: v[0]}, nil
}

// Uint128FromLE decodes the 16-byte little-endian layout the host uses when
// it writes a 128-bit result into guest memory.
func Uint128FromLE(b []byte) (Uint128, error) {
	if len(b) != Uint128Size {
		return Uint128{}, fmt.Errorf("uint128: expected %d bytes, got %d", Uint128Size, len(b))
	}
	return Uint128{
		Lo: binary.LittleEndian.Uint64(b[:8]),
		Hi: binary.LittleEndian.Uint64(b[8:]),
	}, nil
}

// Words returns the high and low words.
func (u Uint128) Words() (hi, lo uint64) {
	return u.Hi, u.Lo
}

// AppendLE appends the 16-byte little-endian encoding of u to dst.
func (u Uint128) AppendLE(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, u.Lo)
	return binary.LittleEndian.AppendUint64(dst, u.Hi)
}

// IsZero reports whether u == 0.
func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// IsUint64 reports whether u fits in a uint64.
func (u Uint128) IsUint64() bool {
	return u.Hi == 0
}

// Cmp returns -1, 0 or +1 depending on whether u is less than, equal to or
// greater than v.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi < v.Hi:
		return -1
	case u.Hi > v.Hi:
		return 1
	case u.Lo < v.Lo:
		return -1
	case u.Lo > v.Lo:
		return 1
	}
	return 0
}

// Add returns u+v or ErrUint128Overflow.
func (u Uint128) Add(v Uint128) (Uint128, error) {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, carry := bits.Add64(u.Hi, v.Hi, carry)
	if carry != 0 {
		return Uint128{}, ErrUint128Overflow
	}
	return Uint128{Hi: hi, Lo: lo}, nil
}

// Sub returns u-v or ErrUint128Underflow.
func (u Uint128) Sub(v Uint128) (Uint128, error) {
	lo, borrow := bits.Sub64(u.Lo, v.Lo, 0)
	hi, borrow := bits.Sub64(u.Hi, v.Hi, borrow)
	if borrow != 0 {
		return Uint128{}, ErrUint128Underflow
	}
	return Uint128{Hi: hi, Lo: lo}, nil
}

// Big returns u as a new big.Int.
func (u Uint128) Big() *big.Int {
	var buf [Uint128Size]byte
	binary.BigEndian.PutUint64(buf[:8], u.Hi)
	binary.BigEndian.PutUint64(buf[8:], u.Lo)
	return new(big.Int).SetBytes(buf[:])
}

// Uint256 returns u widened into a uint256.Int.
func (u Uint128) Uint256() *uint256.Int {
	return &uint256.Int{u.Lo, u.Hi, 0, 0}
}

// String returns the decimal representation of u.
func (u Uint128) String() string {
	if u.Hi == 0 {
		return fmt.Sprintf("%d", u.Lo)
	}
	return u.Uint256().Dec()
}
