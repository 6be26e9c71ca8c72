package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor runs compiled canisters against an in-memory replica.
type Executor struct {
	runtime wazero.Runtime
	replica *ictest.Replica
	logger  *slog.Logger
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.replica == nil {
		e.replica = ictest.NewReplica()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	if err := e.registerSystemAPI(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register ic0 host module: %w", err)
	}

	return e, nil
}

func (e *Executor) registerSystemAPI(ctx context.Context) error {
	x := &ic0Module{
		sys:     e.replica,
		builder: e.runtime.NewHostModuleBuilder("ic0"),
		debug: func(line string) {
			e.logger.Debug("canister debug_print", "line", line)
		},
	}
	x.register()
	_, err := x.builder.Instantiate(ctx)
	return err
}

// Replica returns the replica backing the ic0 imports.
func (e *Executor) Replica() *ictest.Replica {
	return e.replica
}

// Close releases resources held by the executor.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Instance is an instantiated canister module.
type Instance struct {
	module  api.Module
	replica *ictest.Replica
	logger  *slog.Logger
}

// Load instantiates a canister module.
func (e *Executor) Load(ctx context.Context, wasmBytes []byte) (*Instance, error) {
	cfg := wazero.NewModuleConfig().WithStartFunctions()
	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	return &Instance{module: mod, replica: e.replica, logger: e.logger}, nil
}

// Close releases the module instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}

// Methods lists the methods the module exports, as "update <name>",
// "query <name>" or "composite_query <name>".
func (i *Instance) Methods() []string {
	var out []string
	for name := range i.module.ExportedFunctionDefinitions() {
		for _, kind := range []string{"update", "query", "composite_query"} {
			for _, sep := range []string{" ", "_"} {
				prefix := "canister_" + kind + sep
				if strings.HasPrefix(name, prefix) {
					out = append(out, kind+" "+strings.TrimPrefix(name, prefix))
				}
			}
		}
	}
	sort.Strings(out)
	return out
}

// methodExport finds the export for method, in its canonical spelling or in
// the underscore form produced by toolchains that cannot emit spaces.
func (i *Instance) methodExport(kind, method string) (api.Function, error) {
	for _, name := range []string{"canister_" + kind + " " + method, "canister_" + kind + "_" + method} {
		if fn := i.module.ExportedFunction(name); fn != nil {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("canister has no %s method %q", kind, method)
}

// invoke runs fn as one execution. Traps end up in the response; only
// failures of the emulator itself are returned as errors.
func (i *Instance) invoke(ctx context.Context, m ictest.Message, fn api.Function, params ...uint64) ictest.Response {
	i.replica.Begin(m)
	if _, err := fn.Call(ctx, params...); err != nil {
		var t *ictest.Trap
		msg := err.Error()
		if errors.As(err, &t) {
			msg = t.Message
		}
		i.logger.Debug("canister trapped", "kind", m.Kind, "method", m.Method, "error", msg)
		i.replica.MarkTrapped(msg)
	}
	return i.replica.Finish()
}

func (i *Instance) request(ctx context.Context, kind entities.MessageKind, method string, arg []byte, caller entities.Principal) (ictest.Response, error) {
	fn, err := i.methodExport(kind.String(), method)
	if err != nil {
		return ictest.Response{}, err
	}
	return i.invoke(ctx, ictest.Message{Kind: kind, Method: method, Arg: arg, Caller: caller}, fn), nil
}

// Query runs a query method.
func (i *Instance) Query(ctx context.Context, method string, arg []byte, caller entities.Principal) (ictest.Response, error) {
	return i.request(ctx, entities.KindQuery, method, arg, caller)
}

// Update runs an update method.
func (i *Instance) Update(ctx context.Context, method string, arg []byte, caller entities.Principal) (ictest.Response, error) {
	return i.request(ctx, entities.KindUpdate, method, arg, caller)
}

// system runs one of the parameterless system exports, if present.
func (i *Instance) system(ctx context.Context, kind entities.MessageKind, arg []byte) (ictest.Response, bool) {
	fn := i.module.ExportedFunction("canister_" + kind.String())
	if fn == nil {
		return ictest.Response{}, false
	}
	return i.invoke(ctx, ictest.Message{Kind: kind, Arg: arg}, fn), true
}

// Init runs canister_init. A module without it is initialized trivially.
func (i *Instance) Init(ctx context.Context, arg []byte) ictest.Response {
	resp, _ := i.system(ctx, entities.KindInit, arg)
	return resp
}

// Heartbeat runs canister_heartbeat.
func (i *Instance) Heartbeat(ctx context.Context) (ictest.Response, bool) {
	return i.system(ctx, entities.KindHeartbeat, nil)
}

// GlobalTimer runs canister_global_timer.
func (i *Instance) GlobalTimer(ctx context.Context) (ictest.Response, bool) {
	return i.system(ctx, entities.KindGlobalTimer, nil)
}

// DeliverReply answers c and runs the guest's reply trampoline.
func (i *Instance) DeliverReply(ctx context.Context, c *ictest.PendingCall, reply []byte) (ictest.Response, error) {
	return i.deliver(ctx, c, ictest.Message{Kind: entities.KindReplyCallback, Arg: reply}, "canister_callback_reply", c.ReplyEnv)
}

// DeliverReject rejects c and runs the guest's reject trampoline.
func (i *Instance) DeliverReject(ctx context.Context, c *ictest.PendingCall, code entities.RejectCode, message string) (ictest.Response, error) {
	m := ictest.Message{
		Kind:           entities.KindRejectCallback,
		RejectCode:     code,
		RejectMessage:  message,
		CyclesRefunded: c.Cycles,
	}
	return i.deliver(ctx, c, m, "canister_callback_reject", c.RejectEnv)
}

func (i *Instance) deliver(ctx context.Context, c *ictest.PendingCall, m ictest.Message, export string, env uint32) (ictest.Response, error) {
	m.CallContext = c.Origin
	refund := entities.Cycles{}
	if m.Kind == entities.KindRejectCallback {
		refund = c.Cycles
	}
	i.replica.Complete(c, refund)
	if c.ReplyFun == ictest.NoContinuation {
		return ictest.Response{}, nil
	}

	fn := i.module.ExportedFunction(export)
	if fn == nil {
		return ictest.Response{}, fmt.Errorf("canister does not export %s", export)
	}
	resp := i.invoke(ctx, m, fn, uint64(env))
	if resp.Trapped && c.HasCleanup {
		if cleanup := i.module.ExportedFunction("canister_callback_cleanup"); cleanup != nil {
			i.invoke(ctx, ictest.Message{Kind: entities.KindCleanup, CallContext: c.Origin}, cleanup, uint64(c.CleanupEnv))
			resp.CleanupRan = true
		}
	}
	return resp, nil
}
