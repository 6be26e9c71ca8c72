package entities

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint128_WordsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		hi, lo uint64
	}{
		{name: "zero", hi: 0, lo: 0},
		{name: "max", hi: ^uint64(0), lo: ^uint64(0)},
		{name: "low only", hi: 0, lo: 1000},
		{name: "high only", hi: 7, lo: 0},
		{name: "mixed", hi: 0x0123456789abcdef, lo: 0xfedcba9876543210},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewUint128(tt.hi, tt.lo)
			hi, lo := v.Words()
			assert.Equal(t, tt.hi, hi)
			assert.Equal(t, tt.lo, lo)

			le := v.AppendLE(nil)
			require.Len(t, le, Uint128Size)
			back, err := Uint128FromLE(le)
			require.NoError(t, err)
			assert.Equal(t, v, back)

			fromBig, err := Uint128FromBig(v.Big())
			require.NoError(t, err)
			assert.Equal(t, v, fromBig)

			from256, err := Uint128FromUint256(v.Uint256())
			require.NoError(t, err)
			assert.Equal(t, v, from256)
		})
	}
}

func TestUint128_LittleEndianLayout(t *testing.T) {
	v := NewUint128(2, 1)
	le := v.AppendLE(nil)
	assert.Equal(t, byte(1), le[0], "low word comes first")
	assert.Equal(t, byte(2), le[8], "high word follows")

	_, err := Uint128FromLE(le[:15])
	assert.Error(t, err)
}

func TestUint128_FromBig_Rejects(t *testing.T) {
	_, err := Uint128FromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrUint128Negative)

	tooWide := new(big.Int).Lsh(big.NewInt(1), 128)
	_, err = Uint128FromBig(tooWide)
	assert.ErrorIs(t, err, ErrUint128Overflow)

	v, err := Uint128FromBig(nil)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestUint128_FromUint256_Overflow(t *testing.T) {
	wide := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	_, err := Uint128FromUint256(wide)
	assert.ErrorIs(t, err, ErrUint128Overflow)
}

func TestUint128_Arithmetic(t *testing.T) {
	sum, err := NewUint128(0, ^uint64(0)).Add(Uint128FromUint64(1))
	require.NoError(t, err)
	assert.Equal(t, NewUint128(1, 0), sum, "carry crosses into the high word")

	_, err = MaxUint128.Add(Uint128FromUint64(1))
	assert.ErrorIs(t, err, ErrUint128Overflow)

	diff, err := NewUint128(1, 0).Sub(Uint128FromUint64(1))
	require.NoError(t, err)
	assert.Equal(t, NewUint128(0, ^uint64(0)), diff)

	_, err = Uint128FromUint64(1).Sub(Uint128FromUint64(2))
	assert.ErrorIs(t, err, ErrUint128Underflow)
}

func TestUint128_Cmp(t *testing.T) {
	assert.Equal(t, 0, NewUint128(1, 2).Cmp(NewUint128(1, 2)))
	assert.Equal(t, -1, NewUint128(0, ^uint64(0)).Cmp(NewUint128(1, 0)))
	assert.Equal(t, 1, NewUint128(1, 1).Cmp(NewUint128(1, 0)))
	assert.True(t, Uint128{}.IsZero())
	assert.True(t, Uint128FromUint64(5).IsUint64())
	assert.False(t, NewUint128(1, 0).IsUint64())
}

func TestUint128_String(t *testing.T) {
	assert.Equal(t, "1000", Uint128FromUint64(1000).String())
	assert.Equal(t, "18446744073709551616", NewUint128(1, 0).String())
	assert.Equal(t, "340282366920938463463374607431768211455", MaxUint128.String())
}
