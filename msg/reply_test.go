package msg_test

import (
	"testing"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/msg"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingPong(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindQuery, Method: "ping"})

	method, err := e.ctx.MethodName()
	require.NoError(t, err)
	require.Equal(t, "ping", method)
	require.NoError(t, e.ctx.ReplyWith([]byte("pong")))

	resp := e.end()
	assert.True(t, resp.Replied)
	assert.Equal(t, []byte("pong"), resp.Reply)
}

func TestReplyConcatenatesAppends(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindUpdate})

	require.NoError(t, e.ctx.AppendReply([]byte("ab")))
	require.NoError(t, e.ctx.AppendReply(nil))
	require.NoError(t, e.ctx.AppendReply([]byte("cd")))
	require.NoError(t, e.ctx.Reply())
	assert.True(t, e.ctx.Replied())

	assert.Equal(t, []byte("abcd"), e.end().Reply)
}

func TestEmptyReply(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindUpdate})
	require.NoError(t, e.ctx.Reply())

	resp := e.end()
	assert.True(t, resp.Replied)
	assert.Empty(t, resp.Reply)
}

func TestDoubleReplyRefusedLocally(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindUpdate})
	require.NoError(t, e.ctx.ReplyWith([]byte("first")))

	// The replica traps on a second reply, so reaching it would panic.
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, e.ctx.Reply(), sdkerrors.ErrAlreadyReplied)
		assert.ErrorIs(t, e.ctx.Reject("second"), sdkerrors.ErrAlreadyReplied)
		assert.ErrorIs(t, e.ctx.AppendReply([]byte("x")), sdkerrors.ErrProtocolViolation)
	})

	resp := e.end()
	assert.True(t, resp.Replied)
	assert.False(t, resp.Rejected)
	assert.Equal(t, []byte("first"), resp.Reply)
}

func TestRejectDiscardsAppendedBytes(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindUpdate})
	require.NoError(t, e.ctx.AppendReply([]byte("partial")))
	require.NoError(t, e.ctx.Reject("invalid input"))
	assert.True(t, e.ctx.Replied())

	resp := e.end()
	assert.True(t, resp.Rejected)
	assert.False(t, resp.Replied)
	assert.Equal(t, "invalid input", resp.RejectMessage)
	assert.Nil(t, resp.Reply)
}

func TestReplyRefusedInNonReplyingKinds(t *testing.T) {
	kinds := []entities.MessageKind{
		entities.KindInit,
		entities.KindHeartbeat,
		entities.KindGlobalTimer,
		entities.KindInspect,
		entities.KindCleanup,
	}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			e := begin(t, ictest.Message{Kind: kind})
			assert.ErrorIs(t, e.ctx.Reply(), sdkerrors.ErrNotAvailable)
			assert.ErrorIs(t, e.ctx.Reject("no"), sdkerrors.ErrNotAvailable)
			resp := e.end()
			assert.False(t, resp.Replied)
			assert.False(t, resp.Rejected)
		})
	}
}

func TestAcceptMessage(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindInspect, Method: "transfer"})
	require.NoError(t, e.ctx.AcceptMessage())
	assert.True(t, e.ctx.Accepted())
	assert.ErrorIs(t, e.ctx.AcceptMessage(), sdkerrors.ErrAlreadyReplied)
	assert.True(t, e.end().Accepted)

	e = begin(t, ictest.Message{Kind: entities.KindUpdate})
	assert.ErrorIs(t, e.ctx.AcceptMessage(), sdkerrors.ErrNotAvailable)
	assert.False(t, e.end().Accepted)
}

func TestResumeSharesCallContext(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindUpdate})
	require.NoError(t, e.ctx.ReplyWith([]byte("early")))
	cc := e.ctx.CallContext()
	e.end()

	assert.Equal(t, entities.KindUpdate, cc.Origin())
	assert.True(t, cc.Replied())

	scope, err := e.tracker.Begin(entities.KindReplyCallback)
	require.NoError(t, err)
	e.replica.Begin(ictest.Message{Kind: entities.KindReplyCallback})
	cont := msg.Resume(e.replica, e.tracker, scope, cc)

	assert.True(t, cont.Replied())
	assert.ErrorIs(t, cont.Reject("late"), sdkerrors.ErrAlreadyReplied)
	e.tracker.End(scope)
	assert.False(t, e.replica.Finish().Rejected)
}

func TestRollbackRestoresCallContext(t *testing.T) {
	e := begin(t, ictest.Message{Kind: entities.KindReplyCallback})
	require.NoError(t, e.ctx.Reply())
	require.True(t, e.ctx.Replied())

	e.ctx.Rollback()
	assert.False(t, e.ctx.Replied())
	assert.False(t, e.ctx.CallContext().Replied())
}
