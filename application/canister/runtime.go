// Package canister is the entry-point runtime of a canister built with the
// SDK.
//
// A Runtime holds the method table, the continuation registry and the
// system API adapter. Exported WASM entry points call Run (for inbound
// messages and system tasks) or Continue (for call continuations); the
// runtime opens an execution scope, builds a fresh msg.Context, invokes the
// registered handler, and turns its outcome into a reply, a rejection or a
// trap.
package canister

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/reglet-dev/canister-sdk/go/call"
	sdkcanister "github.com/reglet-dev/canister-sdk/go/canister"
	"github.com/reglet-dev/canister-sdk/go/certified"
	"github.com/reglet-dev/canister-sdk/go/clock"
	"github.com/reglet-dev/canister-sdk/go/config"
	"github.com/reglet-dev/canister-sdk/go/cost"
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/infrastructure/wasm"
	"github.com/reglet-dev/canister-sdk/go/internal/wasmcontext"
	sdklog "github.com/reglet-dev/canister-sdk/go/log"
	"github.com/reglet-dev/canister-sdk/go/msg"
	"github.com/reglet-dev/canister-sdk/go/stable"
)

// Handler runs one execution. Returning an error from a handler that has
// not replied rejects the message (see config.Config.RejectOnError).
type Handler func(ctx *msg.Context) error

// MethodInfo describes a registered method.
type MethodInfo struct {
	Name string               `json:"name"`
	Kind entities.MessageKind `json:"kind"`
}

type methodEntry struct {
	handler Handler
	kind    entities.MessageKind
}

// Runtime dispatches host entry points to registered handlers.
type Runtime struct {
	sys       ports.System
	logger    *slog.Logger
	tracker   *wasmcontext.Tracker
	registry  *call.Registry
	stable    *stable.Store
	certified *certified.Data
	clock     *clock.Clock
	cost      *cost.Estimator
	canister  *sdkcanister.Canister
	methods   map[string]methodEntry
	system    map[entities.MessageKind]Handler
	cfg       config.Config
	mu        sync.RWMutex
	logSet    bool
}

// New creates a Runtime. Without WithSystem it binds to the ic0 imports.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		cfg:     config.Default(),
		tracker: wasmcontext.NewTracker(),
		methods: make(map[string]methodEntry),
		system:  make(map[entities.MessageKind]Handler),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.sys == nil {
		rt.sys = wasm.NewSystem()
	}
	if !rt.logSet {
		rt.logger = rt.newLogger()
	}
	rt.registry = call.NewRegistry(rt.cfg.MaxPendingCalls)
	rt.stable = stable.New(rt.sys)
	rt.certified = certified.New(rt.sys)
	rt.clock = clock.New(rt.sys)
	rt.cost = cost.New(rt.sys)
	rt.canister = sdkcanister.New(rt.sys)
	return rt
}

func (rt *Runtime) newLogger() *slog.Logger {
	return slog.New(sdklog.NewHandler(
		sdklog.WithSink(rt.sys),
		sdklog.WithLevel(rt.cfg.SlogLevel()),
		sdklog.WithFormat(sdklog.Format(rt.cfg.LogFormat)),
	))
}

// Reconfigure applies cfg, typically decoded from the init argument. The
// registry limit only changes while no call is pending.
func (rt *Runtime) Reconfigure(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.cfg = cfg
	if !rt.logSet {
		rt.logger = rt.newLogger()
	}
	if rt.registry.Len() == 0 {
		rt.registry = call.NewRegistry(cfg.MaxPendingCalls)
	}
	return nil
}

func (rt *Runtime) register(name string, kind entities.MessageKind, h Handler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, dup := rt.methods[name]; dup {
		panic(fmt.Sprintf("canister: method %q registered twice", name))
	}
	rt.methods[name] = methodEntry{handler: h, kind: kind}
}

func (rt *Runtime) registerSystem(kind entities.MessageKind, h Handler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.system[kind] = h
}

// Update registers an update method.
func (rt *Runtime) Update(name string, h Handler) { rt.register(name, entities.KindUpdate, h) }

// Query registers a query method.
func (rt *Runtime) Query(name string, h Handler) { rt.register(name, entities.KindQuery, h) }

// CompositeQuery registers a composite query method.
func (rt *Runtime) CompositeQuery(name string, h Handler) {
	rt.register(name, entities.KindCompositeQuery, h)
}

// Init registers the canister_init handler.
func (rt *Runtime) Init(h Handler) { rt.registerSystem(entities.KindInit, h) }

// PreUpgrade registers the canister_pre_upgrade handler.
func (rt *Runtime) PreUpgrade(h Handler) { rt.registerSystem(entities.KindPreUpgrade, h) }

// PostUpgrade registers the canister_post_upgrade handler.
func (rt *Runtime) PostUpgrade(h Handler) { rt.registerSystem(entities.KindPostUpgrade, h) }

// Inspect registers the canister_inspect_message handler. Without one,
// every ingress message is accepted.
func (rt *Runtime) Inspect(h Handler) { rt.registerSystem(entities.KindInspect, h) }

// Heartbeat registers the canister_heartbeat handler.
func (rt *Runtime) Heartbeat(h Handler) { rt.registerSystem(entities.KindHeartbeat, h) }

// GlobalTimer registers the canister_global_timer handler.
func (rt *Runtime) GlobalTimer(h Handler) { rt.registerSystem(entities.KindGlobalTimer, h) }

// OnLowWasmMemory registers the canister_on_low_wasm_memory handler.
func (rt *Runtime) OnLowWasmMemory(h Handler) { rt.registerSystem(entities.KindOnLowWasmMemory, h) }

// Methods lists the registered methods sorted by name.
func (rt *Runtime) Methods() []MethodInfo {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]MethodInfo, 0, len(rt.methods))
	for name, m := range rt.methods {
		out = append(out, MethodInfo{Name: name, Kind: m.kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call starts a call to callee.method from ctx.
func (rt *Runtime) Call(ctx *msg.Context, callee entities.Principal, method string, onReply call.ReplyFunc, onReject call.RejectFunc) *call.Builder {
	return call.New(ctx, rt.callEnv(), callee, method, onReply, onReject)
}

// Notify sends a one-way call to callee.method.
func (rt *Runtime) Notify(ctx *msg.Context, callee entities.Principal, method string, payload []byte) error {
	return call.Notify(ctx, rt.callEnv(), callee, method, payload)
}

func (rt *Runtime) callEnv() call.Env {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return call.Env{
		API:            rt.sys,
		Registry:       rt.registry,
		Trampolines:    rt.cfg.Trampolines,
		DefaultTimeout: rt.cfg.DefaultBestEffortTimeout,
	}
}

// System returns the system API adapter.
func (rt *Runtime) System() ports.System { return rt.sys }

// Config returns the active configuration.
func (rt *Runtime) Config() config.Config {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.cfg
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.logger
}

// Registry returns the continuation registry.
func (rt *Runtime) Registry() *call.Registry {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.registry
}

// Stable returns the stable memory store.
func (rt *Runtime) Stable() *stable.Store { return rt.stable }

// Certified returns the certified data accessor.
func (rt *Runtime) Certified() *certified.Data { return rt.certified }

// Clock returns the clock.
func (rt *Runtime) Clock() *clock.Clock { return rt.clock }

// Cost returns the cost estimator.
func (rt *Runtime) Cost() *cost.Estimator { return rt.cost }

// Canister returns the canister facts accessor.
func (rt *Runtime) Canister() *sdkcanister.Canister { return rt.canister }
