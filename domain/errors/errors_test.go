package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolSentinels(t *testing.T) {
	sentinels := []error{
		ErrAlreadyReplied,
		ErrCommitted,
		ErrAlreadyTargeted,
		ErrNotTargeted,
		ErrTooManyPending,
		ErrAlreadySet,
		ErrContextExpired,
		ErrNotAvailable,
		ErrOutOfBounds,
		ErrDigestTooLarge,
		ErrUnknownContinuation,
	}

	for _, s := range sentinels {
		t.Run(s.Error(), func(t *testing.T) {
			assert.True(t, errors.Is(s, ErrProtocolViolation))

			wrapped := fmt.Errorf("context: %w", s)
			assert.True(t, errors.Is(wrapped, ErrProtocolViolation))
			assert.True(t, errors.Is(wrapped, s))
		})
	}

	assert.False(t, errors.Is(ErrGrowFailed, ErrProtocolViolation))
}

func TestProtocolError(t *testing.T) {
	err := Protocol("reply", ErrAlreadyReplied)

	assert.Equal(t, "reply: message already replied or rejected", err.Error())
	assert.True(t, errors.Is(err, ErrProtocolViolation))
	assert.True(t, errors.Is(err, ErrAlreadyReplied))
	assert.False(t, errors.Is(err, ErrCommitted))

	var pe *ProtocolError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "reply", pe.Op)

	detail := ToErrorDetail(err)
	assert.Equal(t, "protocol", detail.Type)
	assert.Equal(t, "reply", detail.Code)
}

func TestCommitError(t *testing.T) {
	err := &CommitError{Callee: "aaaaa-aa", Method: "work", Code: 1}
	assert.Equal(t, "call to aaaaa-aa.work not enqueued (code 1)", err.Error())
	assert.False(t, errors.Is(err, ErrProtocolViolation))

	detail := ToErrorDetail(err)
	assert.Equal(t, "host", detail.Type)
	assert.True(t, detail.IsTransient)
}

func TestRejectError(t *testing.T) {
	err := &RejectError{Code: entities.RejectSysTransient, Message: "timeout"}

	assert.Equal(t, "call rejected (SYS_TRANSIENT): timeout", err.Error())
	assert.True(t, err.Transient())

	detail := ToErrorDetail(fmt.Errorf("work: %w", err))
	assert.Equal(t, "reject", detail.Type)
	assert.Equal(t, entities.RejectSysTransient, detail.RejectCode)
	assert.Equal(t, "timeout", detail.Message)

	opaque := &RejectError{Code: entities.RejectCode(99), Message: "?"}
	assert.False(t, opaque.Transient())
	assert.Equal(t, "REJECT_99", ToErrorDetail(opaque).Code)
}

func TestToErrorDetail(t *testing.T) {
	assert.Nil(t, ToErrorDetail(nil))

	detail := ToErrorDetail(errors.New("boom"))
	assert.Equal(t, "internal", detail.Type)
	assert.Equal(t, "boom", detail.Message)

	assert.Equal(t, "protocol", ToErrorDetail(ErrOutOfBounds).Type)
	assert.Equal(t, "host", ToErrorDetail(fmt.Errorf("grow: %w", ErrGrowFailed)).Type)

	existing := entities.NewErrorDetail("config", "bad")
	assert.Same(t, existing, ToErrorDetail(existing))
}

func TestConfigError(t *testing.T) {
	base := errors.New("must be positive")
	err := &ConfigError{Field: "max_pending_calls", Err: base}
	assert.Equal(t, "config validation failed for field 'max_pending_calls': must be positive", err.Error())
	assert.True(t, errors.Is(err, base))

	noField := &ConfigError{Err: base}
	assert.Equal(t, "config validation failed: must be positive", noField.Error())
}

func TestPanicError(t *testing.T) {
	err := &PanicError{Value: "index out of range"}
	assert.Equal(t, "panic: index out of range", err.Error())
	assert.Equal(t, "panic", ToErrorDetail(err).Type)
}
