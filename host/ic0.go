package host

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// readGuest copies size bytes at ptr out of guest memory.
func readGuest(m api.Module, op string, ptr, size uint32) []byte {
	b, ok := m.Memory().Read(ptr, size)
	if !ok {
		guestTrap("%s: guest range [%d, +%d) outside memory", op, ptr, size)
	}
	return bytes.Clone(b)
}

func writeGuest(m api.Module, op string, ptr uint32, b []byte) {
	if !m.Memory().Write(ptr, b) {
		guestTrap("%s: guest range [%d, +%d) outside memory", op, ptr, len(b))
	}
}

func guestTrap(format string, args ...any) {
	panic(&ictest.Trap{Message: fmt.Sprintf(format, args...)})
}

// guestRange narrows a 64-bit (ptr, size) pair to the 32-bit address space,
// trapping when the range does not fit.
func guestRange(op string, ptr, size uint64) (uint32, uint32) {
	if ptr > math.MaxUint32 || size > math.MaxUint32 || ptr+size > math.MaxUint32 {
		guestTrap("%s: guest range [%d, +%d) exceeds 32-bit memory", op, ptr, size)
	}
	return uint32(ptr), uint32(size)
}

// checkGuest traps unless [ptr, ptr+size) lies inside guest memory.
func checkGuest(m api.Module, op string, ptr, size uint32) {
	if uint64(ptr)+uint64(size) > uint64(m.Memory().Size()) {
		guestTrap("%s: guest range [%d, +%d) outside memory", op, ptr, size)
	}
}

func writeUint128(m api.Module, op string, dst uint32, v entities.Uint128) {
	writeGuest(m, op, dst, v.AppendLE(nil))
}

// ic0Module binds every ic0 import to sys. Host faults raised by sys
// (panics with *ictest.Trap) surface as errors from the export call.
type ic0Module struct {
	sys     ports.System
	builder wazero.HostModuleBuilder
	debug   func(line string)
}

func (x *ic0Module) export(name string, fn any) {
	x.builder.NewFunctionBuilder().WithFunc(fn).Export(name)
}

// sized registers the <name>_size / <name>_copy pair for a blob.
func (x *ic0Module) sized(name string, size func() uint32, copyFn func(dst []byte, off uint32)) {
	x.export(name+"_size", func(context.Context) uint32 { return size() })
	op := name + "_copy"
	x.export(op, func(_ context.Context, m api.Module, dst, off, n uint32) {
		if total := size(); uint64(off)+uint64(n) > uint64(total) {
			guestTrap("%s: range [%d, %d) exceeds size %d", op, off, uint64(off)+uint64(n), total)
		}
		checkGuest(m, op, dst, n)
		buf := make([]byte, n)
		copyFn(buf, off)
		writeGuest(m, op, dst, buf)
	})
}

// source registers an import taking a (src, size) guest slice.
func (x *ic0Module) source(name string, fn func(src []byte)) {
	x.export(name, func(_ context.Context, m api.Module, src, n uint32) {
		fn(readGuest(m, name, src, n))
	})
}

// wide registers an import that writes a 128-bit result to dst.
func (x *ic0Module) wide(name string, fn func() entities.Uint128) {
	x.export(name, func(_ context.Context, m api.Module, dst uint32) {
		writeUint128(m, name, dst, fn())
	})
}

// signing registers a cost query that takes a key name and returns a status.
func (x *ic0Module) signing(name string, fn func(key []byte, curve uint32) (entities.Uint128, uint32)) {
	x.export(name, func(_ context.Context, m api.Module, src, n, curve, dst uint32) uint32 {
		v, status := fn(readGuest(m, name, src, n), curve)
		if status == 0 {
			writeUint128(m, name, dst, v)
		}
		return status
	})
}

func (x *ic0Module) register() {
	sys := x.sys

	x.sized("msg_arg_data", sys.MsgArgDataSize, sys.MsgArgDataCopy)
	x.sized("msg_caller", sys.MsgCallerSize, sys.MsgCallerCopy)
	x.sized("msg_reject_msg", sys.MsgRejectMsgSize, sys.MsgRejectMsgCopy)
	x.sized("msg_method_name", sys.MsgMethodNameSize, sys.MsgMethodNameCopy)
	x.sized("canister_self", sys.CanisterSelfSize, sys.CanisterSelfCopy)
	x.sized("subnet_self", sys.SubnetSelfSize, sys.SubnetSelfCopy)
	x.export("msg_reject_code", func(context.Context) uint32 { return sys.MsgRejectCode() })
	x.export("msg_deadline", func(context.Context) uint64 { return sys.MsgDeadline() })

	x.source("msg_reply_data_append", sys.MsgReplyDataAppend)
	x.export("msg_reply", func(context.Context) { sys.MsgReply() })
	x.source("msg_reject", sys.MsgReject)
	x.export("accept_message", func(context.Context) { sys.AcceptMessage() })

	x.wide("msg_cycles_available128", sys.MsgCyclesAvailable128)
	x.wide("msg_cycles_refunded128", sys.MsgCyclesRefunded128)
	x.export("msg_cycles_accept128", func(_ context.Context, m api.Module, hi, lo uint64, dst uint32) {
		writeUint128(m, "msg_cycles_accept128", dst, sys.MsgCyclesAccept128(entities.NewUint128(hi, lo)))
	})
	x.export("cycles_burn128", func(_ context.Context, m api.Module, hi, lo uint64, dst uint32) {
		writeUint128(m, "cycles_burn128", dst, sys.CyclesBurn128(entities.NewUint128(hi, lo)))
	})
	x.wide("canister_cycle_balance128", sys.CanisterCycleBalance128)
	x.wide("canister_liquid_cycle_balance128", sys.CanisterLiquidCycleBalance128)
	x.export("canister_status", func(context.Context) uint32 { return sys.CanisterStatus() })
	x.export("canister_version", func(context.Context) uint64 { return sys.CanisterVersion() })

	x.export("call_new", func(_ context.Context, m api.Module, calleeSrc, calleeSize, nameSrc, nameSize, replyFun, replyEnv, rejectFun, rejectEnv uint32) {
		callee := readGuest(m, "call_new", calleeSrc, calleeSize)
		method := readGuest(m, "call_new", nameSrc, nameSize)
		sys.CallNew(callee, method, replyFun, replyEnv, rejectFun, rejectEnv)
	})
	x.export("call_on_cleanup", func(_ context.Context, fun, env uint32) { sys.CallOnCleanup(fun, env) })
	x.source("call_data_append", sys.CallDataAppend)
	x.export("call_with_best_effort_response", func(_ context.Context, seconds uint32) {
		sys.CallWithBestEffortResponse(seconds)
	})
	x.export("call_cycles_add128", func(_ context.Context, hi, lo uint64) {
		sys.CallCyclesAdd128(entities.NewUint128(hi, lo))
	})
	x.export("call_perform", func(context.Context) uint32 { return sys.CallPerform() })

	x.export("stable64_size", func(context.Context) uint64 { return sys.Stable64Size() })
	x.export("stable64_grow", func(_ context.Context, pages uint64) uint64 { return sys.Stable64Grow(pages) })
	x.export("stable64_write", func(_ context.Context, m api.Module, offset, src, size uint64) {
		ptr, n := guestRange("stable64_write", src, size)
		sys.Stable64Write(offset, readGuest(m, "stable64_write", ptr, n))
	})
	x.export("stable64_read", func(_ context.Context, m api.Module, dst, offset, size uint64) {
		ptr, n := guestRange("stable64_read", dst, size)
		checkGuest(m, "stable64_read", ptr, n)
		if limit := sys.Stable64Size() * ictest.PageSize; offset > limit || size > limit-offset {
			guestTrap("stable64_read: range [%d, +%d) exceeds %d", offset, size, limit)
		}
		buf := make([]byte, n)
		sys.Stable64Read(buf, offset)
		writeGuest(m, "stable64_read", ptr, buf)
	})

	x.source("certified_data_set", sys.CertifiedDataSet)
	x.export("data_certificate_present", func(context.Context) uint32 { return sys.DataCertificatePresent() })
	x.sized("data_certificate", sys.DataCertificateSize, sys.DataCertificateCopy)

	x.export("time", func(context.Context) uint64 { return sys.Time() })
	x.export("global_timer_set", func(_ context.Context, ts uint64) uint64 { return sys.GlobalTimerSet(ts) })
	x.export("performance_counter", func(_ context.Context, kind uint32) uint64 { return sys.PerformanceCounter(kind) })
	x.export("is_controller", func(_ context.Context, m api.Module, src, size uint32) uint32 {
		return sys.IsController(readGuest(m, "is_controller", src, size))
	})
	x.export("in_replicated_execution", func(context.Context) uint32 { return sys.InReplicatedExecution() })

	x.export("cost_call", func(_ context.Context, m api.Module, methodSize, payloadSize uint64, dst uint32) {
		writeUint128(m, "cost_call", dst, sys.CostCall(methodSize, payloadSize))
	})
	x.wide("cost_create_canister", sys.CostCreateCanister)
	x.export("cost_http_request", func(_ context.Context, m api.Module, reqSize, maxRes uint64, dst uint32) {
		writeUint128(m, "cost_http_request", dst, sys.CostHTTPRequest(reqSize, maxRes))
	})
	x.signing("cost_sign_with_ecdsa", sys.CostSignWithECDSA)
	x.signing("cost_sign_with_schnorr", sys.CostSignWithSchnorr)
	x.signing("cost_vetkd_derive_encrypted_key", sys.CostVetKDDeriveEncryptedKey)

	x.source("debug_print", func(src []byte) {
		sys.DebugPrint(src)
		if x.debug != nil {
			x.debug(string(src))
		}
	})
	x.source("trap", sys.Trap)
}
