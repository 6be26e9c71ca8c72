package ictest_test

import (
	"errors"
	"testing"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/msg"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarness_CallerDefaults(t *testing.T) {
	h := ictest.NewHarness(nil)
	alice := entities.MustParsePrincipal("rrkah-fqaaa-aaaaa-aaaaq-cai")
	h.Runtime.Query("whoami", func(ctx *msg.Context) error {
		p, err := ctx.Caller()
		if err != nil {
			return err
		}
		return ctx.ReplyWith(p.Bytes())
	})

	assert.Equal(t, []byte{0x04}, h.Query("whoami", nil).Reply)

	resp := h.Dispatch(ictest.Message{Kind: entities.KindQuery, Method: "whoami", Caller: alice})
	assert.Equal(t, alice.Bytes(), resp.Reply)
}

func TestHarness_BadTrampolineTraps(t *testing.T) {
	h := ictest.NewHarness(nil)
	c := &ictest.PendingCall{ReplyFun: 42, ReplyEnv: 1}

	resp := h.DeliverReply(c, nil)
	require.True(t, resp.Trapped)
	assert.Contains(t, resp.TrapMessage, "function index 42")
	assert.True(t, c.Completed)
}

func TestHarness_UpgradeStopsOnPreUpgradeTrap(t *testing.T) {
	h := ictest.NewHarness(nil)
	h.Runtime.PreUpgrade(func(ctx *msg.Context) error {
		return errors.New("refusing upgrade")
	})
	postRan := false
	h.Runtime.PostUpgrade(func(ctx *msg.Context) error {
		postRan = true
		return nil
	})

	pre, post := h.Upgrade(nil)
	assert.True(t, pre.Trapped)
	assert.Contains(t, pre.TrapMessage, "refusing upgrade")
	assert.Equal(t, ictest.Response{}, post)
	assert.False(t, postRan)
}

func TestHarness_TimerDisarmed(t *testing.T) {
	h := ictest.NewHarness(nil)
	_, ran := h.Timer()
	assert.False(t, ran)
}

func TestHarness_HostTrapInsideHandler(t *testing.T) {
	h := ictest.NewHarness(nil)
	h.Runtime.Query("overread", func(ctx *msg.Context) error {
		buf := make([]byte, 8)
		h.Replica.MsgArgDataCopy(buf, 0)
		return nil
	})

	resp := h.Query("overread", []byte{1})
	require.True(t, resp.Trapped)
	assert.Contains(t, resp.TrapMessage, "exceeds size")
}
