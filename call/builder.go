// Package call issues inter-canister calls.
//
// A Builder collects the target, payload, attached cycles, best-effort
// timeout and continuations of one call, then hands the whole call to the
// host in Commit. Nothing reaches the host before Commit, so a half-built
// call can never interleave with another one.
//
// Continuations are kept in a Registry and run later, in separate
// executions, when the host delivers the reply or rejection.
package call

import (
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/msg"
)

// NoContinuation is the function index and environment passed for a call
// whose outcome is ignored.
const NoContinuation = ^uint32(0)

// Trampolines holds the function-table indices of the exported callback
// entry points. The host calls them with the registry handle as env.
type Trampolines struct {
	Reply   uint32 `json:"reply" yaml:"reply" validate:"nefield=Reject,nefield=Cleanup"`
	Reject  uint32 `json:"reject" yaml:"reject" validate:"nefield=Cleanup"`
	Cleanup uint32 `json:"cleanup" yaml:"cleanup"`
}

// Env is what a Builder needs from the runtime.
type Env struct {
	API         ports.CallAPI
	Registry    *Registry
	Trampolines Trampolines
	// DefaultTimeout is applied at commit when the builder did not set a
	// best-effort timeout. Zero means guaranteed response.
	DefaultTimeout uint32
}

// State is the lifecycle stage of a Builder.
type State int

const (
	StateEmpty State = iota
	StateTargeted
	StateCommitted
	// StateFailed is a committed builder the host refused to enqueue.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateTargeted:
		return "targeted"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Builder assembles a single call. It is single-use: after Commit, whether
// it succeeded or not, every method returns ErrCommitted.
type Builder struct {
	ctx        *msg.Context
	env        Env
	onReply    ReplyFunc
	onReject   RejectFunc
	onCleanup  CleanupFunc
	callee     entities.Principal
	method     string
	payload    []byte
	cycles     entities.Cycles
	targetErr  error
	handle     Handle
	timeout    uint32
	state      State
	cyclesSet  bool
	timeoutSet bool
	cleanupSet bool
	notify     bool
}

// NewBuilder returns an empty builder for a call made from ctx.
func NewBuilder(ctx *msg.Context, env Env) *Builder {
	return &Builder{ctx: ctx, env: env}
}

// New returns a builder already targeted at callee.method. An invalid
// target is reported by every later method, Commit included.
func New(ctx *msg.Context, env Env, callee entities.Principal, method string, onReply ReplyFunc, onReject RejectFunc) *Builder {
	b := NewBuilder(ctx, env)
	b.targetErr = b.setTarget(callee, method, onReply, onReject)
	return b
}

// NewNotify returns a builder for a one-way call. Its reply or rejection is
// dropped and it registers no continuation.
func NewNotify(ctx *msg.Context, env Env, callee entities.Principal, method string) *Builder {
	b := New(ctx, env, callee, method, nil, nil)
	b.notify = true
	return b
}

// Notify sends payload to callee.method without waiting for the outcome.
func Notify(ctx *msg.Context, env Env, callee entities.Principal, method string, payload []byte) error {
	b := NewNotify(ctx, env, callee, method)
	if err := b.AppendPayload(payload); err != nil {
		return err
	}
	return b.Commit()
}

func (b *Builder) setTarget(callee entities.Principal, method string, onReply ReplyFunc, onReject RejectFunc) error {
	if len(callee) > entities.MaxPrincipalLength {
		return sdkerrors.Protocol("target", sdkerrors.ErrOutOfBounds)
	}
	b.callee = append(entities.Principal(nil), callee...)
	b.method = method
	b.onReply = onReply
	b.onReject = onReject
	b.state = StateTargeted
	return nil
}

func (b *Builder) open(op string) error {
	if b.state == StateCommitted || b.state == StateFailed {
		return sdkerrors.Protocol(op, sdkerrors.ErrCommitted)
	}
	return b.targetErr
}

// Target sets the callee, method and continuations of an empty builder.
func (b *Builder) Target(callee entities.Principal, method string, onReply ReplyFunc, onReject RejectFunc) error {
	if err := b.open("target"); err != nil {
		return err
	}
	if b.state == StateTargeted {
		return sdkerrors.Protocol("target", sdkerrors.ErrAlreadyTargeted)
	}
	return b.setTarget(callee, method, onReply, onReject)
}

// AppendPayload adds p to the argument bytes. Repeated calls concatenate.
// The builder must be targeted first.
func (b *Builder) AppendPayload(p []byte) error {
	if err := b.open("append_payload"); err != nil {
		return err
	}
	if b.state == StateEmpty {
		return sdkerrors.Protocol("append_payload", sdkerrors.ErrNotTargeted)
	}
	b.payload = append(b.payload, p...)
	return nil
}

// SetBestEffortTimeout makes the call best-effort with the given timeout.
// It may be set once; zero is refused.
func (b *Builder) SetBestEffortTimeout(seconds uint32) error {
	if err := b.open("set_timeout"); err != nil {
		return err
	}
	if b.timeoutSet {
		return sdkerrors.Protocol("set_timeout", sdkerrors.ErrAlreadySet)
	}
	if seconds == 0 {
		return sdkerrors.Protocol("set_timeout", sdkerrors.ErrOutOfBounds)
	}
	b.timeout = seconds
	b.timeoutSet = true
	return nil
}

// AddCycles attaches amount to the call. It may be set once. The cycles
// leave the balance only if Commit succeeds.
func (b *Builder) AddCycles(amount entities.Cycles) error {
	if err := b.open("add_cycles"); err != nil {
		return err
	}
	if b.cyclesSet {
		return sdkerrors.Protocol("add_cycles", sdkerrors.ErrAlreadySet)
	}
	b.cycles = amount
	b.cyclesSet = true
	return nil
}

// OnCleanup registers fn to run if the reply or reject continuation traps.
func (b *Builder) OnCleanup(fn CleanupFunc) error {
	if err := b.open("on_cleanup"); err != nil {
		return err
	}
	if b.cleanupSet {
		return sdkerrors.Protocol("on_cleanup", sdkerrors.ErrAlreadySet)
	}
	b.onCleanup = fn
	b.cleanupSet = true
	return nil
}

// State returns the builder's lifecycle stage.
func (b *Builder) State() State {
	return b.state
}

// PayloadSize returns the number of payload bytes appended so far.
func (b *Builder) PayloadSize() int {
	return len(b.payload)
}

// Handle returns the continuation handle of a committed call.
func (b *Builder) Handle() Handle {
	return b.handle
}

func (b *Builder) label() string {
	return b.callee.String() + "." + b.method
}

// Commit hands the call to the host.
//
// A nil result means the call was enqueued and exactly one continuation
// will run later. A *CommitError means the host refused it: no
// continuation will run and attached cycles stay with the canister.
// Either way the builder is spent.
func (b *Builder) Commit() error {
	if err := b.open("commit"); err != nil {
		return err
	}
	if b.state != StateTargeted {
		return sdkerrors.Protocol("commit", sdkerrors.ErrNotTargeted)
	}
	if b.ctx == nil || !b.ctx.Alive() {
		return sdkerrors.Protocol("commit", sdkerrors.ErrContextExpired)
	}
	if !b.ctx.Kind().CanCall() {
		return sdkerrors.Protocol("commit in "+b.ctx.Kind().String(), sdkerrors.ErrNotAvailable)
	}

	replyFun, rejectFun, env := NoContinuation, NoContinuation, NoContinuation
	if !b.notify {
		h, err := b.env.Registry.register(b.label(), b.ctx.CallContext(), b.onReply, b.onReject, b.onCleanup)
		if err != nil {
			return err
		}
		b.handle = h
		replyFun, rejectFun, env = b.env.Trampolines.Reply, b.env.Trampolines.Reject, uint32(h)
	}

	api := b.env.API
	api.CallNew(b.callee, []byte(b.method), replyFun, env, rejectFun, env)
	if !b.notify {
		api.CallOnCleanup(b.env.Trampolines.Cleanup, env)
	}
	if len(b.payload) > 0 {
		api.CallDataAppend(b.payload)
	}
	switch {
	case b.timeoutSet:
		api.CallWithBestEffortResponse(b.timeout)
	case b.env.DefaultTimeout > 0:
		api.CallWithBestEffortResponse(b.env.DefaultTimeout)
	}
	if b.cyclesSet && !b.cycles.IsZero() {
		api.CallCyclesAdd128(b.cycles)
	}

	code := api.CallPerform()
	b.state = StateCommitted
	if code != 0 {
		b.state = StateFailed
		if !b.notify {
			b.env.Registry.Release(b.handle)
		}
		return &sdkerrors.CommitError{Callee: b.callee.String(), Method: b.method, Code: code}
	}
	return nil
}
