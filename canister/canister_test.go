package canister_test

import (
	"testing"

	"github.com/reglet-dev/canister-sdk/go/canister"
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	self  = entities.MustParsePrincipal("rrkah-fqaaa-aaaaa-aaaaq-cai")
	admin = entities.Principal{1, 2, 3}
)

func TestIdentity(t *testing.T) {
	c := canister.New(ictest.NewReplica(
		ictest.WithSelf(self),
		ictest.WithSubnet(entities.Principal{9}),
	))

	assert.Equal(t, self, c.Self())
	assert.Equal(t, "rrkah-fqaaa-aaaaa-aaaaq-cai", c.Self().String())
	assert.Equal(t, entities.Principal{9}, c.Subnet())
	assert.Equal(t, uint64(1), c.Version())
	assert.Equal(t, entities.StatusRunning, c.Status())
}

func TestIsController(t *testing.T) {
	c := canister.New(ictest.NewReplica(ictest.WithControllers(admin)))

	ok, err := c.IsController(admin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsController(entities.AnonymousPrincipal)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		_, err = c.IsController(make(entities.Principal, entities.MaxPrincipalLength+1))
	})
	assert.ErrorIs(t, err, entities.ErrPrincipalTooLong)
}

func TestBalanceAndBurn(t *testing.T) {
	replica := ictest.NewReplica(ictest.WithBalance(entities.Uint128FromUint64(10_000)))
	c := canister.New(replica)

	assert.Equal(t, entities.Uint128FromUint64(10_000), c.Balance())
	assert.Equal(t, entities.Uint128FromUint64(10_000), c.LiquidBalance())

	burned := c.BurnCycles(entities.Uint128FromUint64(4_000))
	assert.Equal(t, entities.Uint128FromUint64(4_000), burned)
	assert.Equal(t, entities.Uint128FromUint64(6_000), c.Balance())

	burned = c.BurnCycles(entities.MaxUint128)
	assert.Equal(t, entities.Uint128FromUint64(6_000), burned)
	assert.True(t, c.Balance().IsZero())
}

func TestInReplicatedExecution(t *testing.T) {
	replica := ictest.NewReplica()
	c := canister.New(replica)

	replica.Begin(ictest.Message{Kind: entities.KindUpdate})
	assert.True(t, c.InReplicatedExecution())
	replica.Finish()

	replica.Begin(ictest.Message{Kind: entities.KindQuery})
	assert.False(t, c.InReplicatedExecution())
	replica.Finish()
}
