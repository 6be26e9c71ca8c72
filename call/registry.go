package call

import (
	"fmt"
	"sync"

	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/msg"
)

// ReplyFunc runs when the callee replies. reply is the callee's payload.
type ReplyFunc func(ctx *msg.Context, reply []byte) error

// RejectFunc runs when the call is rejected, by the callee or by the system.
type RejectFunc func(ctx *msg.Context, rejection *sdkerrors.RejectError) error

// CleanupFunc runs when a continuation trapped. It may only release local
// state; replying and calling are not available.
type CleanupFunc func(ctx *msg.Context)

// Handle identifies a pending continuation. It is the env value the host
// passes back to the callback trampolines.
type Handle uint32

const (
	slotBits = 16
	slotMask = 1<<slotBits - 1

	// MaxPending is the largest number of continuations a Registry can hold.
	MaxPending = slotMask
)

func makeHandle(gen uint16, slot int) Handle {
	return Handle(uint32(gen)<<slotBits | uint32(slot))
}

func (h Handle) slot() int {
	return int(uint32(h) & slotMask)
}

func (h Handle) gen() uint16 {
	return uint16(uint32(h) >> slotBits)
}

type entryState int

const (
	entryFree entryState = iota
	entryPending
	entryRunning
)

type entry struct {
	onReply   ReplyFunc
	onReject  RejectFunc
	onCleanup CleanupFunc
	origin    *msg.CallContext
	label     string
	state     entryState
	gen       uint16
}

// Registry owns the continuations of in-flight calls.
//
// Each committed call registers exactly one entry. The host later delivers
// exactly one of reply or reject for it, possibly followed by cleanup if that
// continuation trapped; the entry is released after the last of those runs.
// Handles carry a generation so a stale or forged env value is detected
// instead of running someone else's continuation.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	free    []int
	limit   int
	live    int
}

// NewRegistry returns a Registry holding at most limit continuations.
// limit is clamped to [1, MaxPending].
func NewRegistry(limit int) *Registry {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPending {
		limit = MaxPending
	}
	return &Registry{limit: limit}
}

func (r *Registry) register(label string, origin *msg.CallContext, onReply ReplyFunc, onReject RejectFunc, onCleanup CleanupFunc) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var slot int
	switch {
	case len(r.free) > 0:
		slot = r.free[len(r.free)-1]
		r.free = r.free[:len(r.free)-1]
	case len(r.entries) < r.limit:
		r.entries = append(r.entries, entry{})
		slot = len(r.entries) - 1
	default:
		return 0, sdkerrors.Protocol("register "+label, sdkerrors.ErrTooManyPending)
	}

	e := &r.entries[slot]
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	e.state = entryPending
	e.label = label
	e.origin = origin
	e.onReply = onReply
	e.onReject = onReject
	e.onCleanup = onCleanup
	r.live++
	return makeHandle(e.gen, slot), nil
}

// lookup returns the entry for h if it is in one of the allowed states.
func (r *Registry) lookup(h Handle, op string, states ...entryState) (*entry, error) {
	slot := h.slot()
	if slot >= len(r.entries) {
		return nil, sdkerrors.Protocol(fmt.Sprintf("%s %#x", op, uint32(h)), sdkerrors.ErrUnknownContinuation)
	}
	e := &r.entries[slot]
	if e.gen != h.gen() {
		return nil, sdkerrors.Protocol(fmt.Sprintf("%s %#x", op, uint32(h)), sdkerrors.ErrUnknownContinuation)
	}
	for _, s := range states {
		if e.state == s {
			return e, nil
		}
	}
	return nil, sdkerrors.Protocol(fmt.Sprintf("%s %#x", op, uint32(h)), sdkerrors.ErrUnknownContinuation)
}

func (r *Registry) releaseLocked(h Handle) {
	e := &r.entries[h.slot()]
	if e.state == entryFree {
		return
	}
	*e = entry{gen: e.gen}
	r.free = append(r.free, h.slot())
	r.live--
}

// Release drops the entry for h without running anything. It is used when
// the host refused to enqueue the call.
func (r *Registry) Release(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lookup(h, "release", entryPending, entryRunning); err != nil {
		return
	}
	r.releaseLocked(h)
}

// Label returns the description recorded for h, typically "callee.method".
func (r *Registry) Label(h Handle) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(h, "label", entryPending, entryRunning)
	if err != nil {
		return ""
	}
	return e.label
}

// CallContext returns the call context of the execution that made the call
// registered under h, or nil if h is unknown.
func (r *Registry) CallContext(h Handle) *msg.CallContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(h, "call_context", entryPending, entryRunning)
	if err != nil {
		return nil
	}
	return e.origin
}

// Len returns the number of continuations still registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// take marks the entry running and returns its callbacks.
func (r *Registry) take(h Handle, op string) (entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(h, op, entryPending)
	if err != nil {
		return entry{}, err
	}
	e.state = entryRunning
	return *e, nil
}

// ResumeReply runs the reply continuation registered under h. The entry is
// released once the continuation returns; if it panics the entry is kept
// so that cleanup can still find it.
func (r *Registry) ResumeReply(ctx *msg.Context, h Handle) error {
	e, err := r.take(h, "reply")
	if err != nil {
		return err
	}
	reply, err := ctx.ArgData()
	if err == nil && e.onReply != nil {
		err = e.onReply(ctx, reply)
	}
	r.Release(h)
	return err
}

// ResumeReject runs the reject continuation registered under h.
func (r *Registry) ResumeReject(ctx *msg.Context, h Handle) error {
	e, err := r.take(h, "reject")
	if err != nil {
		return err
	}
	rejection, err := ctx.Rejection()
	if err == nil && e.onReject != nil {
		err = e.onReject(ctx, rejection)
	}
	r.Release(h)
	return err
}

// Cleanup runs the cleanup hook registered under h, if any, and releases
// the entry. The host only calls it after the reply or reject continuation
// trapped, so the entry is normally in the running state.
func (r *Registry) Cleanup(ctx *msg.Context, h Handle) error {
	r.mu.Lock()
	e, err := r.lookup(h, "cleanup", entryPending, entryRunning)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	onCleanup := e.onCleanup
	r.releaseLocked(h)
	r.mu.Unlock()

	if onCleanup != nil {
		onCleanup(ctx)
	}
	return nil
}
