// Package ictest provides an in-memory system API and a test harness for
// canisters built with the SDK.
//
// Replica implements ports.System the way the host behaves towards a single
// canister: it keeps the message under execution, collects replies and
// outbound calls, holds stable memory and certified data, and traps (panics
// with *Trap) on every contract violation the real host would trap on. Tests
// use those traps to prove the SDK never lets a violation through.
package ictest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
)

// Compile-time interface compliance check
var (
	_ ports.System   = (*Replica)(nil)
	_ ports.HostTrap = (*Trap)(nil)
)

const (
	// PageSize is the stable memory page size.
	PageSize = 65536

	// DefaultMaxStablePages bounds stable memory growth (1 GiB).
	DefaultMaxStablePages = 16384

	// NoContinuation is the function index used for calls without callbacks.
	NoContinuation = ^uint32(0)

	maxCertifiedData = 32
	stableGrowFailed = ^uint64(0)
)

// Trap is the panic value raised for host faults.
type Trap struct {
	Message string
}

func (t *Trap) Error() string {
	return "canister trapped: " + t.Message
}

// HostTrap implements ports.HostTrap.
func (t *Trap) HostTrap() {}

func trap(format string, args ...any) {
	panic(&Trap{Message: fmt.Sprintf(format, args...)})
}

// CallContext is the host record of one inbound message. The entry point
// and the continuations of the calls it made share it; only one of them may
// answer the caller.
type CallContext struct {
	Origin    entities.MessageKind
	Responded bool
}

// Message is the host state of one execution. A nil CallContext opens a new
// one.
type Message struct {
	CallContext     *CallContext
	Caller          entities.Principal
	Method          string
	RejectMessage   string
	Arg             []byte
	Certificate     []byte
	CyclesAvailable entities.Cycles
	CyclesRefunded  entities.Cycles
	Deadline        uint64
	RejectCode      entities.RejectCode
	Kind            entities.MessageKind
}

// Response is what one execution produced for its caller.
type Response struct {
	Reply         []byte
	RejectMessage string
	TrapMessage   string
	Replied       bool
	Rejected      bool
	Trapped       bool
	Accepted      bool
	CleanupRan    bool
}

// PendingCall is an outbound call the canister performed.
type PendingCall struct {
	Origin     *CallContext
	Callee     entities.Principal
	Method     string
	Payload    []byte
	Cycles     entities.Cycles
	ID         int
	ReplyFun   uint32
	ReplyEnv   uint32
	RejectFun  uint32
	RejectEnv  uint32
	CleanupFun uint32
	CleanupEnv uint32
	Timeout    uint32
	HasCleanup bool
	BestEffort bool
	CyclesSet  bool
	Completed  bool
}

// Option configures a Replica.
type Option func(*Replica)

// WithSelf sets the canister's own principal.
func WithSelf(p entities.Principal) Option {
	return func(r *Replica) { r.self = p }
}

// WithSubnet sets the subnet principal.
func WithSubnet(p entities.Principal) Option {
	return func(r *Replica) { r.subnet = p }
}

// WithControllers sets the controller list.
func WithControllers(ps ...entities.Principal) Option {
	return func(r *Replica) { r.controllers = ps }
}

// WithBalance sets the canister cycle balance.
func WithBalance(c entities.Cycles) Option {
	return func(r *Replica) { r.balance = c }
}

// WithTime sets the initial host time in nanoseconds since the epoch.
func WithTime(ns uint64) Option {
	return func(r *Replica) { r.now = ns }
}

// WithMaxStablePages bounds stable memory growth.
func WithMaxStablePages(n uint64) Option {
	return func(r *Replica) { r.maxStablePages = n }
}

// WithReplicated sets the replicated-execution flag.
func WithReplicated(v bool) Option {
	return func(r *Replica) { r.replicated = v }
}

// Replica is an in-memory implementation of the system API.
type Replica struct {
	building         *PendingCall
	self             entities.Principal
	subnet           entities.Principal
	controllers      []entities.Principal
	stable           []byte
	certifiedData    []byte
	replyBuf         []byte
	debug            []string
	calls            []*PendingCall
	msg              Message
	resp             Response
	balance          entities.Cycles
	burned           entities.Cycles
	mu               sync.Mutex
	now              uint64
	timer            uint64
	version          uint64
	maxStablePages   uint64
	instructions     uint64
	callContextInst  uint64
	performStatus    uint32
	status           entities.CanisterStatus
	replicated       bool
	executing        bool
	respondedAtStart bool
}

// NewReplica returns a Replica hosting a running canister.
func NewReplica(opts ...Option) *Replica {
	r := &Replica{
		self:           entities.Principal{0, 0, 0, 0, 0, 0, 0, 1, 1, 1},
		subnet:         entities.Principal{0x2a},
		status:         entities.StatusRunning,
		version:        1,
		now:            1_700_000_000_000_000_000,
		maxStablePages: DefaultMaxStablePages,
		replicated:     true,
		balance:        entities.Uint128FromUint64(1_000_000_000_000),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin starts an execution with m as the message state.
func (r *Replica) Begin(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.CallContext == nil {
		m.CallContext = &CallContext{Origin: m.Kind}
	}
	r.msg = m
	r.respondedAtStart = m.CallContext.Responded
	r.resp = Response{}
	r.replyBuf = nil
	r.building = nil
	r.instructions = 0
	r.executing = true
}

// Finish ends the execution and returns its response.
func (r *Replica) Finish() Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executing = false
	r.building = nil
	return r.resp
}

// MarkTrapped records a trap for the running execution. A reply or reject
// issued by the execution no longer answers the caller.
func (r *Replica) MarkTrapped(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.msg.CallContext != nil {
		r.msg.CallContext.Responded = r.respondedAtStart
	}
	r.resp.Trapped = true
	r.resp.TrapMessage = message
}

// Calls returns the calls performed so far.
func (r *Replica) Calls() []*PendingCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*PendingCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// LastCall returns the most recent call, or nil.
func (r *Replica) LastCall() *PendingCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

// FailNextPerform makes the next call_perform return code without
// enqueueing the call.
func (r *Replica) FailNextPerform(code uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.performStatus = code
}

// DebugOutput returns everything written with debug_print.
func (r *Replica) DebugOutput() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.debug))
	copy(out, r.debug)
	return out
}

// CertifiedData returns the last value passed to certified_data_set.
func (r *Replica) CertifiedData() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Clone(r.certifiedData)
}

// Balance returns the current cycle balance.
func (r *Replica) Balance() entities.Cycles {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balance
}

// Timer returns the armed global timer, 0 if disarmed.
func (r *Replica) Timer() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer
}

// AdvanceTime moves host time forward by ns.
func (r *Replica) AdvanceTime(ns uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now += ns
}

// StablePages returns the stable memory size in pages.
func (r *Replica) StablePages() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint64(len(r.stable)) / PageSize
}

// SetStatus changes the reported canister status.
func (r *Replica) SetStatus(s entities.CanisterStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

// tick charges a nominal instruction cost for a system call.
func (r *Replica) tick() {
	r.instructions += 100
	r.callContextInst += 100
}

func copyOut(name string, src []byte, dst []byte, off uint32) {
	end := uint64(off) + uint64(len(dst))
	if end > uint64(len(src)) {
		trap("%s: range [%d, %d) exceeds size %d", name, off, end, len(src))
	}
	copy(dst, src[off:end])
}

// MsgArgDataSize implements ports.MessageAPI.
func (r *Replica) MsgArgDataSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tick()
	return uint32(len(r.msg.Arg))
}

// MsgArgDataCopy implements ports.MessageAPI.
func (r *Replica) MsgArgDataCopy(dst []byte, off uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyOut("msg_arg_data_copy", r.msg.Arg, dst, off)
}

// MsgCallerSize implements ports.MessageAPI.
func (r *Replica) MsgCallerSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(len(r.msg.Caller))
}

// MsgCallerCopy implements ports.MessageAPI.
func (r *Replica) MsgCallerCopy(dst []byte, off uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyOut("msg_caller_copy", r.msg.Caller, dst, off)
}

// MsgRejectCode implements ports.MessageAPI.
func (r *Replica) MsgRejectCode() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.msg.Kind.IsCallback() {
		trap("msg_reject_code called in %s", r.msg.Kind)
	}
	return uint32(r.msg.RejectCode)
}

func (r *Replica) requireRejectCallback(name string) {
	if r.msg.Kind != entities.KindRejectCallback {
		trap("%s called in %s", name, r.msg.Kind)
	}
}

// MsgRejectMsgSize implements ports.MessageAPI.
func (r *Replica) MsgRejectMsgSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireRejectCallback("msg_reject_msg_size")
	return uint32(len(r.msg.RejectMessage))
}

// MsgRejectMsgCopy implements ports.MessageAPI.
func (r *Replica) MsgRejectMsgCopy(dst []byte, off uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireRejectCallback("msg_reject_msg_copy")
	copyOut("msg_reject_msg_copy", []byte(r.msg.RejectMessage), dst, off)
}

func (r *Replica) requireRequest(name string) {
	if !r.msg.Kind.IsRequest() {
		trap("%s called in %s", name, r.msg.Kind)
	}
}

// MsgMethodNameSize implements ports.MessageAPI.
func (r *Replica) MsgMethodNameSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireRequest("msg_method_name_size")
	return uint32(len(r.msg.Method))
}

// MsgMethodNameCopy implements ports.MessageAPI.
func (r *Replica) MsgMethodNameCopy(dst []byte, off uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireRequest("msg_method_name_copy")
	copyOut("msg_method_name_copy", []byte(r.msg.Method), dst, off)
}

// MsgDeadline implements ports.MessageAPI.
func (r *Replica) MsgDeadline() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msg.Deadline
}

// MsgCyclesAvailable128 implements ports.MessageAPI.
func (r *Replica) MsgCyclesAvailable128() entities.Uint128 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msg.CyclesAvailable
}

// MsgCyclesRefunded128 implements ports.MessageAPI.
func (r *Replica) MsgCyclesRefunded128() entities.Uint128 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.msg.Kind.IsCallback() {
		trap("msg_cycles_refunded128 called in %s", r.msg.Kind)
	}
	return r.msg.CyclesRefunded
}

// MsgCyclesAccept128 implements ports.MessageAPI.
func (r *Replica) MsgCyclesAccept128(limit entities.Uint128) entities.Uint128 {
	r.mu.Lock()
	defer r.mu.Unlock()
	accepted := r.msg.CyclesAvailable
	if limit.Cmp(accepted) < 0 {
		accepted = limit
	}
	r.msg.CyclesAvailable, _ = r.msg.CyclesAvailable.Sub(accepted)
	if sum, err := r.balance.Add(accepted); err == nil {
		r.balance = sum
	}
	return accepted
}

// AcceptMessage implements ports.MessageAPI.
func (r *Replica) AcceptMessage() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.msg.Kind != entities.KindInspect {
		trap("accept_message called in %s", r.msg.Kind)
	}
	if r.resp.Accepted {
		trap("accept_message called twice")
	}
	r.resp.Accepted = true
}

func (r *Replica) requireReplyable(name string) {
	if !r.msg.Kind.CanReply() {
		trap("%s called in %s", name, r.msg.Kind)
	}
	cc := r.msg.CallContext
	if cc != nil && !cc.Origin.CanReply() {
		trap("%s called in a call context opened by %s", name, cc.Origin)
	}
	if r.resp.Replied || r.resp.Rejected || (cc != nil && cc.Responded) {
		trap("%s: message already terminated", name)
	}
}

func (r *Replica) markResponded() {
	if r.msg.CallContext != nil {
		r.msg.CallContext.Responded = true
	}
}

// MsgReplyDataAppend implements ports.ReplyAPI.
func (r *Replica) MsgReplyDataAppend(src []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireReplyable("msg_reply_data_append")
	r.replyBuf = append(r.replyBuf, src...)
}

// MsgReply implements ports.ReplyAPI.
func (r *Replica) MsgReply() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireReplyable("msg_reply")
	r.markResponded()
	r.resp.Replied = true
	r.resp.Reply = r.replyBuf
	if r.resp.Reply == nil {
		r.resp.Reply = []byte{}
	}
	r.replyBuf = nil
}

// MsgReject implements ports.ReplyAPI.
func (r *Replica) MsgReject(src []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireReplyable("msg_reject")
	r.markResponded()
	r.resp.Rejected = true
	r.resp.RejectMessage = string(src)
	r.replyBuf = nil
}

func (r *Replica) requireBuilding(name string) *PendingCall {
	if r.building == nil {
		trap("%s called without call_new", name)
	}
	return r.building
}

// CallNew implements ports.CallAPI.
func (r *Replica) CallNew(callee, method []byte, replyFun, replyEnv, rejectFun, rejectEnv uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.msg.Kind.CanCall() {
		trap("call_new called in %s", r.msg.Kind)
	}
	if r.building != nil {
		trap("call_new called while another call is under construction")
	}
	r.building = &PendingCall{
		Origin:    r.msg.CallContext,
		Callee:    bytes.Clone(callee),
		Method:    string(method),
		Payload:   []byte{},
		ReplyFun:  replyFun,
		ReplyEnv:  replyEnv,
		RejectFun: rejectFun,
		RejectEnv: rejectEnv,
	}
}

// CallOnCleanup implements ports.CallAPI.
func (r *Replica) CallOnCleanup(fun, env uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.requireBuilding("call_on_cleanup")
	if c.HasCleanup {
		trap("call_on_cleanup called twice")
	}
	c.HasCleanup = true
	c.CleanupFun = fun
	c.CleanupEnv = env
}

// CallDataAppend implements ports.CallAPI.
func (r *Replica) CallDataAppend(src []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.requireBuilding("call_data_append")
	c.Payload = append(c.Payload, src...)
}

// CallWithBestEffortResponse implements ports.CallAPI.
func (r *Replica) CallWithBestEffortResponse(timeoutSeconds uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.requireBuilding("call_with_best_effort_response")
	if c.BestEffort {
		trap("call_with_best_effort_response called twice")
	}
	c.BestEffort = true
	c.Timeout = timeoutSeconds
}

// CallCyclesAdd128 implements ports.CallAPI.
func (r *Replica) CallCyclesAdd128(amount entities.Uint128) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.requireBuilding("call_cycles_add128")
	if c.CyclesSet {
		trap("call_cycles_add128 called twice")
	}
	c.CyclesSet = true
	c.Cycles = amount
}

// CallPerform implements ports.CallAPI. A nonzero result means the call was
// not enqueued and the cycles stay with the canister.
func (r *Replica) CallPerform() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.requireBuilding("call_perform")
	r.building = nil

	if r.performStatus != 0 {
		code := r.performStatus
		r.performStatus = 0
		return code
	}
	remaining, err := r.balance.Sub(c.Cycles)
	if err != nil {
		return 2
	}
	r.balance = remaining
	c.ID = len(r.calls) + 1
	r.calls = append(r.calls, c)
	return 0
}

// Complete marks c as answered and refunds refund cycles to the canister.
func (r *Replica) Complete(c *PendingCall, refund entities.Cycles) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Completed {
		trap("call %d already completed", c.ID)
	}
	c.Completed = true
	if sum, err := r.balance.Add(refund); err == nil {
		r.balance = sum
	}
}

// Stable64Size implements ports.StableAPI.
func (r *Replica) Stable64Size() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint64(len(r.stable)) / PageSize
}

// Stable64Grow implements ports.StableAPI.
func (r *Replica) Stable64Grow(newPages uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := uint64(len(r.stable)) / PageSize
	if newPages > r.maxStablePages || prev+newPages > r.maxStablePages {
		return stableGrowFailed
	}
	r.stable = append(r.stable, make([]byte, newPages*PageSize)...)
	return prev
}

// Stable64Write implements ports.StableAPI.
func (r *Replica) Stable64Write(offset uint64, src []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	end := offset + uint64(len(src))
	if end < offset || end > uint64(len(r.stable)) {
		trap("stable64_write: range [%d, %d) exceeds %d", offset, end, len(r.stable))
	}
	copy(r.stable[offset:end], src)
}

// Stable64Read implements ports.StableAPI.
func (r *Replica) Stable64Read(dst []byte, offset uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	end := offset + uint64(len(dst))
	if end < offset || end > uint64(len(r.stable)) {
		trap("stable64_read: range [%d, %d) exceeds %d", offset, end, len(r.stable))
	}
	copy(dst, r.stable[offset:end])
}

// CertifiedDataSet implements ports.CertifiedAPI.
func (r *Replica) CertifiedDataSet(src []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(src) > maxCertifiedData {
		trap("certified_data_set: %d bytes exceeds %d", len(src), maxCertifiedData)
	}
	r.certifiedData = bytes.Clone(src)
}

// DataCertificatePresent implements ports.CertifiedAPI.
func (r *Replica) DataCertificatePresent() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.msg.Certificate != nil {
		return 1
	}
	return 0
}

func (r *Replica) requireCertificate(name string) {
	if r.msg.Certificate == nil {
		trap("%s called without a certificate", name)
	}
}

// DataCertificateSize implements ports.CertifiedAPI.
func (r *Replica) DataCertificateSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireCertificate("data_certificate_size")
	return uint32(len(r.msg.Certificate))
}

// DataCertificateCopy implements ports.CertifiedAPI.
func (r *Replica) DataCertificateCopy(dst []byte, off uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireCertificate("data_certificate_copy")
	copyOut("data_certificate_copy", r.msg.Certificate, dst, off)
}

// Time implements ports.TimeAPI.
func (r *Replica) Time() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

// GlobalTimerSet implements ports.TimeAPI.
func (r *Replica) GlobalTimerSet(timestamp uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.timer
	r.timer = timestamp
	return prev
}

// PerformanceCounter implements ports.TimeAPI.
func (r *Replica) PerformanceCounter(counterType uint32) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch entities.PerformanceCounter(counterType) {
	case entities.InstructionCounter:
		return r.instructions
	case entities.CallContextInstructionCounter:
		return r.callContextInst
	default:
		trap("performance_counter: unknown type %d", counterType)
		return 0
	}
}

// CanisterSelfSize implements ports.CanisterAPI.
func (r *Replica) CanisterSelfSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(len(r.self))
}

// CanisterSelfCopy implements ports.CanisterAPI.
func (r *Replica) CanisterSelfCopy(dst []byte, off uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyOut("canister_self_copy", r.self, dst, off)
}

// CanisterCycleBalance128 implements ports.CanisterAPI.
func (r *Replica) CanisterCycleBalance128() entities.Uint128 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balance
}

// CanisterLiquidCycleBalance128 implements ports.CanisterAPI.
// The in-memory replica keeps no freezing reserve.
func (r *Replica) CanisterLiquidCycleBalance128() entities.Uint128 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balance
}

// CanisterStatus implements ports.CanisterAPI.
func (r *Replica) CanisterStatus() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(r.status)
}

// CanisterVersion implements ports.CanisterAPI.
func (r *Replica) CanisterVersion() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// SubnetSelfSize implements ports.CanisterAPI.
func (r *Replica) SubnetSelfSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(len(r.subnet))
}

// SubnetSelfCopy implements ports.CanisterAPI.
func (r *Replica) SubnetSelfCopy(dst []byte, off uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyOut("subnet_self_copy", r.subnet, dst, off)
}

// IsController implements ports.CanisterAPI.
func (r *Replica) IsController(principal []byte) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(principal) > entities.MaxPrincipalLength {
		trap("is_controller: principal of %d bytes", len(principal))
	}
	for _, c := range r.controllers {
		if bytes.Equal(c, principal) {
			return 1
		}
	}
	return 0
}

// InReplicatedExecution implements ports.CanisterAPI.
func (r *Replica) InReplicatedExecution() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replicated && r.msg.Kind != entities.KindQuery {
		return 1
	}
	return 0
}

// CyclesBurn128 implements ports.CanisterAPI.
func (r *Replica) CyclesBurn128(amount entities.Uint128) entities.Uint128 {
	r.mu.Lock()
	defer r.mu.Unlock()
	burn := amount
	if r.balance.Cmp(burn) < 0 {
		burn = r.balance
	}
	r.balance, _ = r.balance.Sub(burn)
	r.burned, _ = r.burned.Add(burn)
	return burn
}

// Fees used by the cost queries. They follow the published 13-node subnet
// schedule closely enough for budgeting tests.
const (
	feeCallBase       = 260_000
	feeCallPerByte    = 1_000
	feeCreateCanister = 500_000_000_000
	feeHTTPBase       = 49_140_000
	feeHTTPPerReqByte = 5_200
	feeHTTPPerResByte = 10_400
	feeSignECDSA      = 26_153_846_153
	feeSignSchnorr    = 26_153_846_153
	feeVetKD          = 26_153_846_153
)

// KnownKeyName is the only threshold key name the in-memory replica accepts.
const KnownKeyName = "test_key_1"

// CostCall implements ports.CostAPI.
func (r *Replica) CostCall(methodNameSize, payloadSize uint64) entities.Uint128 {
	return entities.Uint128FromUint64(feeCallBase + feeCallPerByte*(methodNameSize+payloadSize))
}

// CostCreateCanister implements ports.CostAPI.
func (r *Replica) CostCreateCanister() entities.Uint128 {
	return entities.Uint128FromUint64(feeCreateCanister)
}

// CostHTTPRequest implements ports.CostAPI.
func (r *Replica) CostHTTPRequest(requestSize, maxResBytes uint64) entities.Uint128 {
	return entities.Uint128FromUint64(feeHTTPBase + feeHTTPPerReqByte*requestSize + feeHTTPPerResByte*maxResBytes)
}

func signingCost(keyName []byte, curve, maxCurve uint32, fee uint64) (entities.Uint128, uint32) {
	if curve > maxCurve {
		return entities.Uint128{}, 1
	}
	if string(keyName) != KnownKeyName {
		return entities.Uint128{}, 2
	}
	return entities.Uint128FromUint64(fee), 0
}

// CostSignWithECDSA implements ports.CostAPI.
func (r *Replica) CostSignWithECDSA(keyName []byte, curve uint32) (entities.Uint128, uint32) {
	return signingCost(keyName, curve, uint32(entities.ECDSASecp256k1), feeSignECDSA)
}

// CostSignWithSchnorr implements ports.CostAPI.
func (r *Replica) CostSignWithSchnorr(keyName []byte, algorithm uint32) (entities.Uint128, uint32) {
	return signingCost(keyName, algorithm, uint32(entities.SchnorrEd25519), feeSignSchnorr)
}

// CostVetKDDeriveEncryptedKey implements ports.CostAPI.
func (r *Replica) CostVetKDDeriveEncryptedKey(keyName []byte, curve uint32) (entities.Uint128, uint32) {
	return signingCost(keyName, curve, uint32(entities.VetKDBls12381G2), feeVetKD)
}

// DebugPrint implements ports.DebugAPI.
func (r *Replica) DebugPrint(src []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debug = append(r.debug, string(src))
}

// Trap implements ports.DebugAPI.
func (r *Replica) Trap(src []byte) {
	panic(&Trap{Message: string(src)})
}
