package cost_test

import (
	"testing"

	"github.com/reglet-dev/canister-sdk/go/cost"
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallCosts(t *testing.T) {
	e := cost.New(ictest.NewReplica())

	small := e.Call(4, 0)
	large := e.Call(4, 1024)
	assert.Equal(t, 1, large.Cmp(small))

	budget, err := e.CallBudget("work", []byte{1, 2, 3}, entities.Uint128FromUint64(1000))
	require.NoError(t, err)
	want, err := e.Call(4, 3).Add(entities.Uint128FromUint64(1000))
	require.NoError(t, err)
	assert.Equal(t, want, budget)

	_, err = e.CallBudget("work", nil, entities.MaxUint128)
	assert.ErrorIs(t, err, entities.ErrUint128Overflow)

	assert.False(t, e.CreateCanister().IsZero())
	assert.Equal(t, 1, e.HTTPRequest(100, 2000).Cmp(e.HTTPRequest(100, 0)))
}

func TestSigningCosts(t *testing.T) {
	e := cost.New(ictest.NewReplica())

	tests := []struct {
		name    string
		query   func() (entities.Cycles, error)
		wantErr error
	}{
		{"ecdsa", func() (entities.Cycles, error) {
			return e.SignWithECDSA(ictest.KnownKeyName, entities.ECDSASecp256k1)
		}, nil},
		{"ecdsa bad curve", func() (entities.Cycles, error) {
			return e.SignWithECDSA(ictest.KnownKeyName, entities.ECDSACurve(7))
		}, sdkerrors.ErrInvalidCurve},
		{"ecdsa bad key", func() (entities.Cycles, error) {
			return e.SignWithECDSA("nope", entities.ECDSASecp256k1)
		}, sdkerrors.ErrInvalidKeyName},
		{"schnorr ed25519", func() (entities.Cycles, error) {
			return e.SignWithSchnorr(ictest.KnownKeyName, entities.SchnorrEd25519)
		}, nil},
		{"schnorr bad algorithm", func() (entities.Cycles, error) {
			return e.SignWithSchnorr(ictest.KnownKeyName, entities.SchnorrAlgorithm(2))
		}, sdkerrors.ErrInvalidCurve},
		{"vetkd", func() (entities.Cycles, error) {
			return e.VetKDDeriveKey(ictest.KnownKeyName, entities.VetKDBls12381G2)
		}, nil},
		{"vetkd bad key", func() (entities.Cycles, error) {
			return e.VetKDDeriveKey("", entities.VetKDBls12381G2)
		}, sdkerrors.ErrInvalidKeyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.query()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, c.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, c.IsZero())
		})
	}
}
