// Package errors provides domain-specific error types for the SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
//
// Errors fall in three groups. Protocol violations are caller mistakes the
// SDK catches before the host sees them; they all match
// ErrProtocolViolation. Host failures are synchronous refusals the caller
// is expected to branch on. Rejections are the asynchronous outcome of an
// inter-canister call.
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// ErrProtocolViolation is matched by every locally detected misuse of the
// system API.
var ErrProtocolViolation = stdErrors.New("protocol violation")

var (
	ErrAlreadyReplied      = protocolSentinel("message already replied or rejected")
	ErrCommitted           = protocolSentinel("call already committed")
	ErrAlreadyTargeted     = protocolSentinel("call already targeted")
	ErrNotTargeted         = protocolSentinel("call has no target")
	ErrAlreadySet          = protocolSentinel("option already set")
	ErrContextExpired      = protocolSentinel("message context used after execution ended")
	ErrNotAvailable        = protocolSentinel("not available in this execution kind")
	ErrOutOfBounds         = protocolSentinel("range out of bounds")
	ErrDigestTooLarge      = protocolSentinel("certified data exceeds 32 bytes")
	ErrUnknownContinuation = protocolSentinel("unknown or stale continuation handle")
	ErrTooManyPending      = protocolSentinel("too many pending calls")
)

var (
	// ErrGrowFailed is returned when the host refuses to grow stable memory.
	ErrGrowFailed = stdErrors.New("stable memory grow failed")

	// ErrNoCertificate is returned when no data certificate is present.
	ErrNoCertificate = stdErrors.New("no data certificate in this context")

	// ErrInvalidCurve is returned by signing cost queries for an unknown curve or algorithm.
	ErrInvalidCurve = stdErrors.New("invalid curve or algorithm")

	// ErrInvalidKeyName is returned by signing cost queries for an unknown key name.
	ErrInvalidKeyName = stdErrors.New("invalid key name")
)

type protocolSentinel string

func (s protocolSentinel) Error() string {
	return string(s)
}

func (s protocolSentinel) Is(target error) bool {
	return target == ErrProtocolViolation
}

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	if stdErrors.Is(err, ErrProtocolViolation) {
		return &entities.ErrorDetail{Message: err.Error(), Type: "protocol"}
	}
	if stdErrors.Is(err, ErrGrowFailed) || stdErrors.Is(err, ErrNoCertificate) ||
		stdErrors.Is(err, ErrInvalidCurve) || stdErrors.Is(err, ErrInvalidKeyName) {
		return &entities.ErrorDetail{Message: err.Error(), Type: "host"}
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// ProtocolError records which operation was refused and why.
type ProtocolError struct {
	Err error
	Op  string
}

// Protocol wraps sentinel (one of the Err* protocol values) with the operation name.
func Protocol(op string, sentinel error) *ProtocolError {
	return &ProtocolError{Op: op, Err: sentinel}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocolViolation
}

// ToErrorDetail implements DetailedError.
func (e *ProtocolError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "protocol", Code: e.Op}
}

// CommitError is returned when the host refuses to enqueue a call.
// Neither continuation will run and attached cycles stay with the caller.
type CommitError struct {
	Callee string
	Method string
	Code   uint32
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("call to %s.%s not enqueued (code %d)", e.Callee, e.Method, e.Code)
}

// ToErrorDetail implements DetailedError.
func (e *CommitError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:     e.Error(),
		Type:        "host",
		Code:        fmt.Sprintf("call_perform_%d", e.Code),
		IsTransient: true,
	}
}

// RejectError carries the reject code and message delivered to a reject
// continuation. It is the ordinary failure path of a call, not a fault.
type RejectError struct {
	Message string
	Code    entities.RejectCode
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("call rejected (%s): %s", e.Code, e.Message)
}

// Transient reports whether the rejection class suggests a retry may succeed.
func (e *RejectError) Transient() bool {
	return e.Code == entities.RejectSysTransient
}

// ToErrorDetail implements DetailedError.
func (e *RejectError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:     e.Message,
		Type:        "reject",
		Code:        e.Code.String(),
		RejectCode:  e.Code,
		IsTransient: e.Transient(),
	}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// ToErrorDetail implements DetailedError.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "panic", Stack: e.Stack}
}
