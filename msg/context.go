// Package msg exposes the message the host is currently executing.
//
// A Context is created for every execution (entry point or call
// continuation) and is only valid until that execution returns. It is the
// read side of the message (argument bytes, caller, method name, reject
// code and message, deadline, cycles) and the write side of its single
// terminal action (reply or reject).
//
// Every method first checks that the execution is still running and that
// the value is meaningful for the execution kind, so misuse surfaces as a
// protocol error instead of a host trap.
package msg

import (
	stdcontext "context"
	"time"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/internal/abi"
	"github.com/reglet-dev/canister-sdk/go/internal/wasmcontext"
)

// API is the subset of the system API a Context needs.
type API interface {
	ports.MessageAPI
	ports.ReplyAPI
	InReplicatedExecution() uint32
}

// Context is the per-execution view of a message.
type Context struct {
	api            API
	tracker        *wasmcontext.Tracker
	std            stdcontext.Context
	call           *CallContext
	scope          wasmcontext.Scope
	repliedAtStart bool
	accepted       bool
}

// CallContext is the state shared by the executions working on one inbound
// message: the entry point and the continuations of the calls it made.
// At most one of them replies or rejects.
type CallContext struct {
	origin  entities.MessageKind
	replied bool
}

// Origin returns the kind of the execution that opened the call context.
func (cc *CallContext) Origin() entities.MessageKind {
	return cc.origin
}

// Replied reports whether the message has been replied to or rejected.
func (cc *CallContext) Replied() bool {
	return cc.replied
}

// New returns a Context bound to scope that opens a new call context. The
// runtime creates one per execution; guest code receives it and must not
// keep it afterwards.
func New(api API, tracker *wasmcontext.Tracker, scope wasmcontext.Scope) *Context {
	return Resume(api, tracker, scope, nil)
}

// Resume returns a Context bound to scope that continues cc. A nil cc opens
// a new call context.
func Resume(api API, tracker *wasmcontext.Tracker, scope wasmcontext.Scope, cc *CallContext) *Context {
	if cc == nil {
		cc = &CallContext{origin: scope.Kind}
	}
	return &Context{
		api:            api,
		tracker:        tracker,
		scope:          scope,
		call:           cc,
		repliedAtStart: cc.replied,
		std:            wasmcontext.WithScope(stdcontext.Background(), scope),
	}
}

// CallContext returns the call context this execution belongs to.
func (c *Context) CallContext() *CallContext {
	return c.call
}

// Rollback undoes the terminal action taken during this execution. The host
// discards everything a trapping execution did, so the runtime calls it
// when the execution traps.
func (c *Context) Rollback() {
	c.call.replied = c.repliedAtStart
}

// Kind returns the execution kind.
func (c *Context) Kind() entities.MessageKind {
	return c.scope.Kind
}

// Context returns a context.Context carrying the execution scope, for use
// with slog and other context-aware APIs.
func (c *Context) Context() stdcontext.Context {
	return c.std
}

// Alive reports whether the execution this Context belongs to is still running.
func (c *Context) Alive() bool {
	return c.tracker.Active(c.scope)
}

func (c *Context) check(op string) error {
	if !c.Alive() {
		return sdkerrors.Protocol(op, sdkerrors.ErrContextExpired)
	}
	return nil
}

func (c *Context) checkKind(op string, ok bool) error {
	if err := c.check(op); err != nil {
		return err
	}
	if !ok {
		return sdkerrors.Protocol(op+" in "+c.scope.Kind.String(), sdkerrors.ErrNotAvailable)
	}
	return nil
}

func (c *Context) hasArgData() bool {
	switch c.scope.Kind {
	case entities.KindRejectCallback, entities.KindCleanup, entities.KindHeartbeat,
		entities.KindGlobalTimer, entities.KindPreUpgrade, entities.KindOnLowWasmMemory:
		return false
	}
	return true
}

func (c *Context) hasCycles() bool {
	k := c.scope.Kind
	return k == entities.KindUpdate || k.IsCallback()
}

// ArgData returns the full argument payload. In a reply continuation this is
// the callee's reply.
func (c *Context) ArgData() ([]byte, error) {
	if err := c.checkKind("arg_data", c.hasArgData()); err != nil {
		return nil, err
	}
	return abi.ReadAll(c.api.MsgArgDataSize, c.api.MsgArgDataCopy), nil
}

// ArgDataRange returns n bytes of the argument payload starting at off.
func (c *Context) ArgDataRange(off, n uint32) ([]byte, error) {
	if err := c.checkKind("arg_data", c.hasArgData()); err != nil {
		return nil, err
	}
	return abi.ReadRange(c.api.MsgArgDataSize, c.api.MsgArgDataCopy, off, n)
}

// ArgDataSize returns the size of the argument payload.
func (c *Context) ArgDataSize() (uint32, error) {
	if err := c.checkKind("arg_data_size", c.hasArgData()); err != nil {
		return 0, err
	}
	return c.api.MsgArgDataSize(), nil
}

// Caller returns the principal that sent the message.
func (c *Context) Caller() (entities.Principal, error) {
	if err := c.checkKind("caller", c.scope.Kind != entities.KindCleanup); err != nil {
		return nil, err
	}
	return entities.Principal(abi.ReadAll(c.api.MsgCallerSize, c.api.MsgCallerCopy)), nil
}

// MethodName returns the name of the invoked method. It is only available
// for inbound requests, not for continuations or system tasks.
func (c *Context) MethodName() (string, error) {
	if err := c.checkKind("method_name", c.scope.Kind.IsRequest()); err != nil {
		return "", err
	}
	return string(abi.ReadAll(c.api.MsgMethodNameSize, c.api.MsgMethodNameCopy)), nil
}

// RejectCode returns the reject code of a call continuation.
// Outside continuations there is no rejection and RejectNone is returned.
func (c *Context) RejectCode() (entities.RejectCode, error) {
	if err := c.check("reject_code"); err != nil {
		return entities.RejectNone, err
	}
	if !c.scope.Kind.IsCallback() {
		return entities.RejectNone, nil
	}
	return entities.RejectCode(c.api.MsgRejectCode()), nil
}

// RejectMessage returns the reject message. Only a reject continuation has one.
func (c *Context) RejectMessage() (string, error) {
	if err := c.checkKind("reject_message", c.scope.Kind == entities.KindRejectCallback); err != nil {
		return "", err
	}
	return string(abi.ReadAll(c.api.MsgRejectMsgSize, c.api.MsgRejectMsgCopy)), nil
}

// Rejection returns the rejection delivered to a reject continuation as an
// error value.
func (c *Context) Rejection() (*sdkerrors.RejectError, error) {
	code, err := c.RejectCode()
	if err != nil {
		return nil, err
	}
	text, err := c.RejectMessage()
	if err != nil {
		return nil, err
	}
	return &sdkerrors.RejectError{Code: code, Message: text}, nil
}

// Deadline returns the message deadline. ok is false when the message has
// no deadline, i.e. the caller did not ask for a best-effort response.
func (c *Context) Deadline() (time.Time, bool, error) {
	if err := c.check("deadline"); err != nil {
		return time.Time{}, false, err
	}
	ns := c.api.MsgDeadline()
	if ns == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(0, int64(ns)).UTC(), true, nil
}

// InReplicatedExecution reports whether the result of this execution will be
// agreed on by the replicas.
func (c *Context) InReplicatedExecution() (bool, error) {
	if err := c.check("in_replicated_execution"); err != nil {
		return false, err
	}
	return c.api.InReplicatedExecution() == 1, nil
}

// CyclesAvailable returns the cycles attached to the message that have not
// been accepted yet.
func (c *Context) CyclesAvailable() (entities.Cycles, error) {
	if err := c.checkKind("cycles_available", c.hasCycles()); err != nil {
		return entities.Cycles{}, err
	}
	return c.api.MsgCyclesAvailable128(), nil
}

// CyclesRefunded returns the cycles the callee sent back with its response.
func (c *Context) CyclesRefunded() (entities.Cycles, error) {
	if err := c.checkKind("cycles_refunded", c.scope.Kind.IsCallback()); err != nil {
		return entities.Cycles{}, err
	}
	return c.api.MsgCyclesRefunded128(), nil
}

// AcceptCycles moves up to limit of the available cycles into the canister
// balance and returns the amount actually accepted.
func (c *Context) AcceptCycles(limit entities.Cycles) (entities.Cycles, error) {
	if err := c.checkKind("accept_cycles", c.hasCycles()); err != nil {
		return entities.Cycles{}, err
	}
	return c.api.MsgCyclesAccept128(limit), nil
}
