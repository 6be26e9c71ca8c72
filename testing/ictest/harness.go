package ictest

import (
	"errors"

	"github.com/reglet-dev/canister-sdk/go/application/canister"
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
)

// Harness drives a canister.Runtime against a Replica the way the host
// would: one execution at a time, continuations delivered on demand, and
// cleanup run automatically when a continuation traps.
type Harness struct {
	Replica *Replica
	Runtime *canister.Runtime
	Caller  entities.Principal
}

// NewHarness binds a new Runtime to r. A nil r gets a fresh Replica.
func NewHarness(r *Replica, opts ...canister.Option) *Harness {
	if r == nil {
		r = NewReplica()
	}
	opts = append(opts, canister.WithSystem(r))
	return &Harness{
		Replica: r,
		Runtime: canister.New(opts...),
		Caller:  entities.Principal{0x04},
	}
}

// execute runs fn as one execution with m as the message state. A host
// trap ends the execution and is recorded in the response.
func (h *Harness) execute(m Message, fn func()) (resp Response) {
	h.Replica.Begin(m)
	defer func() {
		if r := recover(); r != nil {
			var t *Trap
			err, ok := r.(error)
			if !ok || !errors.As(err, &t) {
				panic(r)
			}
			h.Replica.MarkTrapped(t.Message)
		}
		resp = h.Replica.Finish()
	}()
	fn()
	return resp
}

// Dispatch runs m through the runtime's entry point for m.Kind.
func (h *Harness) Dispatch(m Message) Response {
	if m.Caller == nil {
		m.Caller = h.Caller
	}
	return h.execute(m, func() { h.Runtime.Run(m.Kind) })
}

// Update calls an update method.
func (h *Harness) Update(method string, arg []byte) Response {
	return h.Dispatch(Message{Kind: entities.KindUpdate, Method: method, Arg: arg})
}

// Query calls a query method.
func (h *Harness) Query(method string, arg []byte) Response {
	return h.Dispatch(Message{Kind: entities.KindQuery, Method: method, Arg: arg})
}

// Inspect runs ingress inspection for an update call to method.
func (h *Harness) Inspect(method string, arg []byte) Response {
	return h.Dispatch(Message{Kind: entities.KindInspect, Method: method, Arg: arg})
}

// Init runs canister_init with arg.
func (h *Harness) Init(arg []byte) Response {
	return h.Dispatch(Message{Kind: entities.KindInit, Arg: arg})
}

// Upgrade runs canister_pre_upgrade then canister_post_upgrade with arg.
// It stops after a trapping pre_upgrade.
func (h *Harness) Upgrade(arg []byte) (pre, post Response) {
	pre = h.Dispatch(Message{Kind: entities.KindPreUpgrade})
	if pre.Trapped {
		return pre, Response{}
	}
	post = h.Dispatch(Message{Kind: entities.KindPostUpgrade, Arg: arg})
	return pre, post
}

// Heartbeat runs canister_heartbeat.
func (h *Harness) Heartbeat() Response {
	return h.Dispatch(Message{Kind: entities.KindHeartbeat})
}

// Timer fires the global timer if it is armed and due, disarming it first.
// It reports whether the timer ran.
func (h *Harness) Timer() (Response, bool) {
	h.Replica.mu.Lock()
	due := h.Replica.timer != 0 && h.Replica.timer <= h.Replica.now
	if due {
		h.Replica.timer = 0
	}
	h.Replica.mu.Unlock()
	if !due {
		return Response{}, false
	}
	return h.Dispatch(Message{Kind: entities.KindGlobalTimer}), true
}

// DeliverReply answers c with reply and runs its reply continuation.
func (h *Harness) DeliverReply(c *PendingCall, reply []byte) Response {
	return h.deliver(c, Message{Kind: entities.KindReplyCallback, Arg: reply})
}

// DeliverReject rejects c and runs its reject continuation.
func (h *Harness) DeliverReject(c *PendingCall, code entities.RejectCode, message string) Response {
	return h.deliver(c, Message{
		Kind:           entities.KindRejectCallback,
		RejectCode:     code,
		RejectMessage:  message,
		CyclesRefunded: c.Cycles,
	})
}

// DeliverCleanup runs c's cleanup hook directly.
func (h *Harness) DeliverCleanup(c *PendingCall) Response {
	if !c.HasCleanup {
		return Response{}
	}
	return h.continueWith(entities.KindCleanup, c.CleanupFun, c.CleanupEnv, Message{Kind: entities.KindCleanup, CallContext: c.Origin})
}

func (h *Harness) deliver(c *PendingCall, m Message) Response {
	m.CallContext = c.Origin
	refund := entities.Cycles{}
	if m.Kind == entities.KindRejectCallback {
		refund = c.Cycles
	}
	h.Replica.Complete(c, refund)
	if c.ReplyFun == NoContinuation {
		return Response{}
	}

	fun, env := c.ReplyFun, c.ReplyEnv
	if m.Kind == entities.KindRejectCallback {
		fun, env = c.RejectFun, c.RejectEnv
	}
	resp := h.continueWith(m.Kind, fun, env, m)
	if resp.Trapped && c.HasCleanup {
		h.DeliverCleanup(c)
		resp.CleanupRan = true
	}
	return resp
}

// continueWith calls the trampoline fun resolves to. An index that is not
// one of the runtime's trampolines traps, as a bad table index would.
func (h *Harness) continueWith(kind entities.MessageKind, fun, env uint32, m Message) Response {
	tramp := h.Runtime.Config().Trampolines
	want := map[entities.MessageKind]uint32{
		entities.KindReplyCallback:  tramp.Reply,
		entities.KindRejectCallback: tramp.Reject,
		entities.KindCleanup:        tramp.Cleanup,
	}[kind]
	return h.execute(m, func() {
		if fun != want {
			trap("function index %d is not the %s trampoline", fun, kind)
		}
		h.Runtime.Continue(kind, env)
	})
}
