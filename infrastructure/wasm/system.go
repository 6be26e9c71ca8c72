//go:build wasip1

package wasm

import (
	"runtime"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/internal/abi"
)

// Compile-time interface compliance check
var _ ports.System = System{}

// System implements ports.System on top of the ic0 imports.
type System struct{}

// NewSystem returns the adapter for the current module.
func NewSystem() System {
	return System{}
}

// copyInto adapts a (dst, off, size) import to the ports copy signature.
func copyInto(fn func(dst, off, size uint32), dst []byte, off uint32) {
	abi.WithDst(dst, func(ptr, length uint32) {
		fn(ptr, off, length)
	})
}

func (System) MsgArgDataSize() uint32 { return ic0_msg_arg_data_size() }

func (System) MsgArgDataCopy(dst []byte, off uint32) {
	copyInto(ic0_msg_arg_data_copy, dst, off)
}

func (System) MsgCallerSize() uint32 { return ic0_msg_caller_size() }

func (System) MsgCallerCopy(dst []byte, off uint32) {
	copyInto(ic0_msg_caller_copy, dst, off)
}

func (System) MsgRejectCode() uint32 { return ic0_msg_reject_code() }

func (System) MsgRejectMsgSize() uint32 { return ic0_msg_reject_msg_size() }

func (System) MsgRejectMsgCopy(dst []byte, off uint32) {
	copyInto(ic0_msg_reject_msg_copy, dst, off)
}

func (System) MsgMethodNameSize() uint32 { return ic0_msg_method_name_size() }

func (System) MsgMethodNameCopy(dst []byte, off uint32) {
	copyInto(ic0_msg_method_name_copy, dst, off)
}

func (System) MsgDeadline() uint64 { return ic0_msg_deadline() }

func (System) MsgCyclesAvailable128() entities.Uint128 {
	return abi.ReadUint128(ic0_msg_cycles_available128)
}

func (System) MsgCyclesRefunded128() entities.Uint128 {
	return abi.ReadUint128(ic0_msg_cycles_refunded128)
}

func (System) MsgCyclesAccept128(limit entities.Uint128) entities.Uint128 {
	hi, lo := limit.Words()
	return abi.ReadUint128(func(dst uint32) { ic0_msg_cycles_accept128(hi, lo, dst) })
}

func (System) AcceptMessage() { ic0_accept_message() }

func (System) MsgReplyDataAppend(src []byte) {
	abi.WithSrc(src, ic0_msg_reply_data_append)
}

func (System) MsgReply() { ic0_msg_reply() }

func (System) MsgReject(src []byte) {
	abi.WithSrc(src, ic0_msg_reject)
}

func (System) CallNew(callee, method []byte, replyFun, replyEnv, rejectFun, rejectEnv uint32) {
	calleePtr, calleeLen := abi.Offset(callee)
	methodPtr, methodLen := abi.Offset(method)
	ic0_call_new(calleePtr, calleeLen, methodPtr, methodLen, replyFun, replyEnv, rejectFun, rejectEnv)
	runtime.KeepAlive(callee)
	runtime.KeepAlive(method)
}

func (System) CallOnCleanup(fun, env uint32) { ic0_call_on_cleanup(fun, env) }

func (System) CallDataAppend(src []byte) {
	abi.WithSrc(src, ic0_call_data_append)
}

func (System) CallWithBestEffortResponse(timeoutSeconds uint32) {
	ic0_call_with_best_effort_response(timeoutSeconds)
}

func (System) CallCyclesAdd128(amount entities.Uint128) {
	hi, lo := amount.Words()
	ic0_call_cycles_add128(hi, lo)
}

func (System) CallPerform() uint32 { return ic0_call_perform() }

func (System) Stable64Size() uint64 { return ic0_stable64_size() }

func (System) Stable64Grow(newPages uint64) uint64 { return ic0_stable64_grow(newPages) }

func (System) Stable64Write(offset uint64, src []byte) {
	abi.WithSrc(src, func(ptr, length uint32) {
		ic0_stable64_write(offset, uint64(ptr), uint64(length))
	})
}

func (System) Stable64Read(dst []byte, offset uint64) {
	abi.WithDst(dst, func(ptr, length uint32) {
		ic0_stable64_read(uint64(ptr), offset, uint64(length))
	})
}

func (System) CertifiedDataSet(src []byte) {
	abi.WithSrc(src, ic0_certified_data_set)
}

func (System) DataCertificatePresent() uint32 { return ic0_data_certificate_present() }

func (System) DataCertificateSize() uint32 { return ic0_data_certificate_size() }

func (System) DataCertificateCopy(dst []byte, off uint32) {
	copyInto(ic0_data_certificate_copy, dst, off)
}

func (System) Time() uint64 { return ic0_time() }

func (System) GlobalTimerSet(timestamp uint64) uint64 { return ic0_global_timer_set(timestamp) }

func (System) PerformanceCounter(counterType uint32) uint64 {
	return ic0_performance_counter(counterType)
}

func (System) CanisterSelfSize() uint32 { return ic0_canister_self_size() }

func (System) CanisterSelfCopy(dst []byte, off uint32) {
	copyInto(ic0_canister_self_copy, dst, off)
}

func (System) CanisterCycleBalance128() entities.Uint128 {
	return abi.ReadUint128(ic0_canister_cycle_balance128)
}

func (System) CanisterLiquidCycleBalance128() entities.Uint128 {
	return abi.ReadUint128(ic0_canister_liquid_cycle_balance128)
}

func (System) CanisterStatus() uint32 { return ic0_canister_status() }

func (System) CanisterVersion() uint64 { return ic0_canister_version() }

func (System) SubnetSelfSize() uint32 { return ic0_subnet_self_size() }

func (System) SubnetSelfCopy(dst []byte, off uint32) {
	copyInto(ic0_subnet_self_copy, dst, off)
}

func (System) IsController(principal []byte) uint32 {
	var out uint32
	abi.WithSrc(principal, func(ptr, length uint32) {
		out = ic0_is_controller(ptr, length)
	})
	return out
}

func (System) InReplicatedExecution() uint32 { return ic0_in_replicated_execution() }

func (System) CyclesBurn128(amount entities.Uint128) entities.Uint128 {
	hi, lo := amount.Words()
	return abi.ReadUint128(func(dst uint32) { ic0_cycles_burn128(hi, lo, dst) })
}

func (System) CostCall(methodNameSize, payloadSize uint64) entities.Uint128 {
	return abi.ReadUint128(func(dst uint32) { ic0_cost_call(methodNameSize, payloadSize, dst) })
}

func (System) CostCreateCanister() entities.Uint128 {
	return abi.ReadUint128(ic0_cost_create_canister)
}

func (System) CostHTTPRequest(requestSize, maxResBytes uint64) entities.Uint128 {
	return abi.ReadUint128(func(dst uint32) { ic0_cost_http_request(requestSize, maxResBytes, dst) })
}

// signingCost runs one of the status-returning cost imports.
func signingCost(fn func(src, size, curve, dst uint32) uint32, keyName []byte, curve uint32) (entities.Uint128, uint32) {
	var status uint32
	v := abi.ReadUint128(func(dst uint32) {
		abi.WithSrc(keyName, func(ptr, length uint32) {
			status = fn(ptr, length, curve, dst)
		})
	})
	return v, status
}

func (System) CostSignWithECDSA(keyName []byte, curve uint32) (entities.Uint128, uint32) {
	return signingCost(ic0_cost_sign_with_ecdsa, keyName, curve)
}

func (System) CostSignWithSchnorr(keyName []byte, algorithm uint32) (entities.Uint128, uint32) {
	return signingCost(ic0_cost_sign_with_schnorr, keyName, algorithm)
}

func (System) CostVetKDDeriveEncryptedKey(keyName []byte, curve uint32) (entities.Uint128, uint32) {
	return signingCost(ic0_cost_vetkd_derive_encrypted_key, keyName, curve)
}

func (System) DebugPrint(src []byte) {
	abi.WithSrc(src, ic0_debug_print)
}

func (System) Trap(src []byte) {
	abi.WithSrc(src, ic0_trap)
}
