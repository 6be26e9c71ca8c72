package canister

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/reglet-dev/canister-sdk/go/call"
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/msg"
)

// Run executes the entry point for kind. Exported entry points call it
// once per host invocation. Request kinds are routed by method name; the
// other kinds run their system handler, if one is registered.
func (rt *Runtime) Run(kind entities.MessageKind) {
	if kind.IsCallback() || kind == entities.KindCleanup {
		rt.trap(fmt.Sprintf("%s must be delivered through Continue", kind))
		return
	}
	rt.execute(kind, nil, func(ctx *msg.Context) error {
		h, err := rt.resolve(ctx)
		if err != nil || h == nil {
			return err
		}
		return h(ctx)
	})
}

// Continue executes a call continuation. env is the handle the host passes
// back to the callback trampoline.
func (rt *Runtime) Continue(kind entities.MessageKind, env uint32) {
	reg := rt.Registry()
	h := call.Handle(env)
	origin := reg.CallContext(h)

	switch kind {
	case entities.KindReplyCallback:
		rt.execute(kind, origin, func(ctx *msg.Context) error {
			return rt.resumeOrTrap(ctx, reg.Label(h), reg.ResumeReply(ctx, h))
		})
	case entities.KindRejectCallback:
		rt.execute(kind, origin, func(ctx *msg.Context) error {
			return rt.resumeOrTrap(ctx, reg.Label(h), reg.ResumeReject(ctx, h))
		})
	case entities.KindCleanup:
		rt.execute(kind, origin, func(ctx *msg.Context) error {
			if err := reg.Cleanup(ctx, h); err != nil {
				rt.Logger().WarnContext(ctx.Context(), "cleanup skipped", "handle", uint32(h), "error", err)
			}
			return nil
		})
	default:
		rt.trap(fmt.Sprintf("%s is not a continuation kind", kind))
	}
}

// resumeOrTrap traps on handles the registry does not know. Anything else
// is the continuation's own result.
func (rt *Runtime) resumeOrTrap(ctx *msg.Context, label string, err error) error {
	if errors.Is(err, sdkerrors.ErrUnknownContinuation) {
		rt.Logger().ErrorContext(ctx.Context(), "continuation not found", "error", err)
		rt.trap(err.Error())
		return nil
	}
	if err != nil {
		rt.Logger().DebugContext(ctx.Context(), "continuation failed", "call", label, "error", err)
	}
	return err
}

// resolve picks the handler for the current execution. A nil handler with
// a nil error means there is nothing to run.
func (rt *Runtime) resolve(ctx *msg.Context) (Handler, error) {
	kind := ctx.Kind()

	if kind == entities.KindInspect {
		rt.mu.RLock()
		h := rt.system[kind]
		rt.mu.RUnlock()
		if h == nil {
			return nil, ctx.AcceptMessage()
		}
		return h, nil
	}

	if !kind.IsRequest() {
		rt.mu.RLock()
		h := rt.system[kind]
		rt.mu.RUnlock()
		return h, nil
	}

	name, err := ctx.MethodName()
	if err != nil {
		return nil, err
	}
	rt.mu.RLock()
	m, ok := rt.methods[name]
	rt.mu.RUnlock()
	if !ok || m.kind != kind {
		rt.Logger().WarnContext(ctx.Context(), "method not found", "method", name, "kind", kind)
		return nil, ctx.Reject(fmt.Sprintf("method not found: %s", name))
	}
	rt.Logger().DebugContext(ctx.Context(), "dispatch", "method", name, "kind", kind)
	return m.handler, nil
}

// execute runs fn inside a fresh execution scope and settles its outcome.
// A nil origin opens a new call context. If the execution traps, its reply
// or reject is rolled back along with everything else it did.
func (rt *Runtime) execute(kind entities.MessageKind, origin *msg.CallContext, fn Handler) {
	scope, err := rt.tracker.Begin(kind)
	if err != nil {
		rt.trap(err.Error())
		return
	}
	defer rt.tracker.End(scope)

	ctx := msg.Resume(rt.sys, rt.tracker, scope, origin)
	completed := false
	defer func() {
		if !completed {
			ctx.Rollback()
		}
	}()
	defer rt.recoverPanic(ctx)

	rt.finish(ctx, fn(ctx))
	completed = true
}

// finish turns a handler error into the outcome its kind allows.
func (rt *Runtime) finish(ctx *msg.Context, err error) {
	if err == nil {
		return
	}
	kind := ctx.Kind()
	logger := rt.Logger()
	std := ctx.Context()
	detail := sdkerrors.ToErrorDetail(err)

	switch {
	case kind == entities.KindInspect:
		logger.InfoContext(std, "message refused", "error", err)
	case kind == entities.KindInit, kind == entities.KindPreUpgrade, kind == entities.KindPostUpgrade:
		logger.ErrorContext(std, "lifecycle hook failed", "error", err, "type", detail.Type)
		rt.trap(fmt.Sprintf("%s: %v", kind, err))
	case ctx.CanReply() && !ctx.Replied() && rt.Config().RejectOnError:
		logger.WarnContext(std, "handler failed, rejecting", "error", err, "type", detail.Type)
		if rejErr := ctx.Reject(err.Error()); rejErr != nil {
			logger.ErrorContext(std, "reject failed", "error", rejErr)
		}
	default:
		logger.ErrorContext(std, "handler failed", "error", err, "type", detail.Type)
	}
}

// recoverPanic converts a handler panic into a trap. Host traps raised by a
// native System pass through untouched.
func (rt *Runtime) recoverPanic(ctx *msg.Context) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(ports.HostTrap); ok {
		panic(r)
	}
	perr := &sdkerrors.PanicError{Value: r, Stack: debug.Stack()}
	rt.Logger().ErrorContext(ctx.Context(), "handler panicked", "error", perr, "stack", string(perr.Stack))
	rt.trap(perr.Error())
}

func (rt *Runtime) trap(message string) {
	rt.sys.Trap([]byte(message))
}
