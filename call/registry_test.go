package call_test

import (
	"errors"
	"testing"

	"github.com/reglet-dev/canister-sdk/go/call"
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/msg"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commit performs a call from a fresh update execution and returns its handle.
func (f *fixture) commit(t *testing.T, onReply call.ReplyFunc, onReject call.RejectFunc, onCleanup call.CleanupFunc) call.Handle {
	t.Helper()
	ctx, end := f.begin(t, ictest.Message{Kind: entities.KindUpdate})
	defer end()

	b := call.New(ctx, f.env(), calleeC, "work", onReply, onReject)
	require.NoError(t, b.AppendPayload([]byte{1, 2, 3}))
	if onCleanup != nil {
		require.NoError(t, b.OnCleanup(onCleanup))
	}
	require.NoError(t, b.Commit())
	return b.Handle()
}

func TestResumeReply(t *testing.T) {
	f := newFixture()
	var got []byte
	h := f.commit(t, func(ctx *msg.Context, reply []byte) error {
		got = reply
		return ctx.ReplyWith([]byte("done"))
	}, nil, nil)

	ctx, end := f.begin(t, ictest.Message{Kind: entities.KindReplyCallback, Arg: []byte("result")})
	require.NoError(t, f.reg.ResumeReply(ctx, h))
	resp := end()

	assert.Equal(t, []byte("result"), got)
	assert.True(t, resp.Replied)
	assert.Equal(t, []byte("done"), resp.Reply)
	assert.Equal(t, 0, f.reg.Len())

	ctx, end = f.begin(t, ictest.Message{Kind: entities.KindReplyCallback})
	defer end()
	assert.ErrorIs(t, f.reg.ResumeReply(ctx, h), sdkerrors.ErrUnknownContinuation)
}

func TestResumeRejectSurfacesOrdinaryError(t *testing.T) {
	f := newFixture()
	var rejection *sdkerrors.RejectError
	h := f.commit(t, nil, func(ctx *msg.Context, r *sdkerrors.RejectError) error {
		rejection = r
		return r
	}, nil)

	ctx, end := f.begin(t, ictest.Message{
		Kind:          entities.KindRejectCallback,
		RejectCode:    entities.RejectSysTransient,
		RejectMessage: "timeout",
	})
	defer end()

	err := f.reg.ResumeReject(ctx, h)
	require.Error(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, entities.RejectSysTransient, rejection.Code)
	assert.Equal(t, "timeout", rejection.Message)
	assert.True(t, rejection.Transient())

	var re *sdkerrors.RejectError
	assert.True(t, errors.As(err, &re))
	assert.NotErrorIs(t, err, sdkerrors.ErrProtocolViolation)
	assert.Equal(t, 0, f.reg.Len())
}

func TestCleanupAfterTrappedContinuation(t *testing.T) {
	f := newFixture()
	cleaned := 0
	h := f.commit(t, func(*msg.Context, []byte) error {
		panic("boom")
	}, nil, func(*msg.Context) { cleaned++ })

	ctx, end := f.begin(t, ictest.Message{Kind: entities.KindReplyCallback})
	assert.Panics(t, func() { _ = f.reg.ResumeReply(ctx, h) })
	end()
	assert.Equal(t, 1, f.reg.Len(), "entry survives the trap")

	ctx, end = f.begin(t, ictest.Message{Kind: entities.KindCleanup})
	require.NoError(t, f.reg.Cleanup(ctx, h))
	end()
	assert.Equal(t, 1, cleaned)
	assert.Equal(t, 0, f.reg.Len())

	ctx, end = f.begin(t, ictest.Message{Kind: entities.KindCleanup})
	defer end()
	assert.ErrorIs(t, f.reg.Cleanup(ctx, h), sdkerrors.ErrUnknownContinuation)
	assert.Equal(t, 1, cleaned, "cleanup runs at most once")
}

func TestCleanupRefusedAfterNormalCompletion(t *testing.T) {
	f := newFixture()
	cleaned := false
	h := f.commit(t, nil, nil, func(*msg.Context) { cleaned = true })

	ctx, end := f.begin(t, ictest.Message{Kind: entities.KindReplyCallback})
	require.NoError(t, f.reg.ResumeReply(ctx, h))
	end()

	ctx, end = f.begin(t, ictest.Message{Kind: entities.KindCleanup})
	defer end()
	assert.ErrorIs(t, f.reg.Cleanup(ctx, h), sdkerrors.ErrUnknownContinuation)
	assert.False(t, cleaned)
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	f := newFixture()
	first := f.commit(t, nil, nil, nil)

	ctx, end := f.begin(t, ictest.Message{Kind: entities.KindReplyCallback})
	require.NoError(t, f.reg.ResumeReply(ctx, first))
	end()

	second := f.commit(t, nil, nil, nil)
	assert.NotEqual(t, first, second, "reused slot gets a new generation")

	ctx, end = f.begin(t, ictest.Message{Kind: entities.KindReplyCallback})
	defer end()
	assert.ErrorIs(t, f.reg.ResumeReply(ctx, first), sdkerrors.ErrUnknownContinuation)
	assert.Equal(t, 1, f.reg.Len())
	assert.Equal(t, calleeC.String()+".work", f.reg.Label(second))
}

func TestUnknownHandles(t *testing.T) {
	f := newFixture()
	ctx, end := f.begin(t, ictest.Message{Kind: entities.KindRejectCallback, RejectCode: entities.RejectCanisterReject})
	defer end()

	for _, h := range []call.Handle{0, call.Handle(call.NoContinuation), 0x0001_0005} {
		assert.ErrorIs(t, f.reg.ResumeReject(ctx, h), sdkerrors.ErrUnknownContinuation)
	}
	assert.Equal(t, "", f.reg.Label(0))
}

func TestRegistryLimit(t *testing.T) {
	f := newFixture()
	f.reg = call.NewRegistry(2)
	f.commit(t, nil, nil, nil)
	f.commit(t, nil, nil, nil)

	ctx, end := f.begin(t, ictest.Message{Kind: entities.KindUpdate})
	defer end()
	calls := len(f.replica.Calls())

	err := call.New(ctx, f.env(), calleeC, "work", nil, nil).Commit()
	assert.ErrorIs(t, err, sdkerrors.ErrTooManyPending)
	assert.Len(t, f.replica.Calls(), calls, "refused before reaching the host")
}

func TestNewRegistryClampsLimit(t *testing.T) {
	f := newFixture()
	f.reg = call.NewRegistry(0)
	f.commit(t, nil, nil, nil)
	assert.Equal(t, 1, f.reg.Len())
}
