//go:build !wasip1

// Package wasm provides the adapter that binds ports.System to the ic0
// imports of the WASM host environment. Outside WASM builds every method
// panics; inject a testing/ictest.Replica instead.
package wasm

import "github.com/reglet-dev/canister-sdk/go/domain/entities"

const unavailable = "ic0 system API not available in native build, inject a ports.System"

// System stub for native builds.
type System struct{}

// NewSystem returns the stub adapter.
func NewSystem() System {
	return System{}
}

func (System) MsgArgDataSize() uint32 { panic(unavailable) }
func (System) MsgArgDataCopy(dst []byte, off uint32) { panic(unavailable) }
func (System) MsgCallerSize() uint32 { panic(unavailable) }
func (System) MsgCallerCopy(dst []byte, off uint32) { panic(unavailable) }
func (System) MsgRejectCode() uint32 { panic(unavailable) }
func (System) MsgRejectMsgSize() uint32 { panic(unavailable) }
func (System) MsgRejectMsgCopy(dst []byte, off uint32) { panic(unavailable) }
func (System) MsgMethodNameSize() uint32 { panic(unavailable) }
func (System) MsgMethodNameCopy(dst []byte, off uint32) {
	panic(unavailable)
}
func (System) MsgDeadline() uint64 { panic(unavailable) }
func (System) MsgCyclesAvailable128() entities.Uint128 { panic(unavailable) }
func (System) MsgCyclesRefunded128() entities.Uint128 { panic(unavailable) }
func (System) MsgCyclesAccept128(entities.Uint128) entities.Uint128 { panic(unavailable) }
func (System) AcceptMessage() { panic(unavailable) }
func (System) MsgReplyDataAppend(src []byte) { panic(unavailable) }
func (System) MsgReply() { panic(unavailable) }
func (System) MsgReject(src []byte) { panic(unavailable) }

func (System) CallNew(callee, method []byte, replyFun, replyEnv, rejectFun, rejectEnv uint32) {
	panic(unavailable)
}
func (System) CallOnCleanup(fun, env uint32) { panic(unavailable) }
func (System) CallDataAppend(src []byte) { panic(unavailable) }
func (System) CallWithBestEffortResponse(uint32) { panic(unavailable) }
func (System) CallCyclesAdd128(entities.Uint128) { panic(unavailable) }
func (System) CallPerform() uint32 { panic(unavailable) }
func (System) Stable64Size() uint64 { panic(unavailable) }
func (System) Stable64Grow(newPages uint64) uint64 { panic(unavailable) }
func (System) Stable64Write(offset uint64, src []byte) { panic(unavailable) }
func (System) Stable64Read(dst []byte, offset uint64) { panic(unavailable) }
func (System) CertifiedDataSet(src []byte) { panic(unavailable) }
func (System) DataCertificatePresent() uint32 { panic(unavailable) }
func (System) DataCertificateSize() uint32 { panic(unavailable) }
func (System) DataCertificateCopy(dst []byte, off uint32) { panic(unavailable) }
func (System) Time() uint64 { panic(unavailable) }
func (System) GlobalTimerSet(timestamp uint64) uint64 { panic(unavailable) }
func (System) PerformanceCounter(counterType uint32) uint64 { panic(unavailable) }
func (System) CanisterSelfSize() uint32 { panic(unavailable) }
func (System) CanisterSelfCopy(dst []byte, off uint32) { panic(unavailable) }
func (System) CanisterCycleBalance128() entities.Uint128 { panic(unavailable) }
func (System) CanisterLiquidCycleBalance128() entities.Uint128 {
	panic(unavailable)
}
func (System) CanisterStatus() uint32 { panic(unavailable) }
func (System) CanisterVersion() uint64 { panic(unavailable) }
func (System) SubnetSelfSize() uint32 { panic(unavailable) }
func (System) SubnetSelfCopy(dst []byte, off uint32) { panic(unavailable) }
func (System) IsController(principal []byte) uint32 { panic(unavailable) }
func (System) InReplicatedExecution() uint32 { panic(unavailable) }
func (System) CyclesBurn128(entities.Uint128) entities.Uint128 { panic(unavailable) }
func (System) CostCall(methodNameSize, payloadSize uint64) entities.Uint128 {
	panic(unavailable)
}
func (System) CostCreateCanister() entities.Uint128 { panic(unavailable) }
func (System) CostHTTPRequest(requestSize, maxResBytes uint64) entities.Uint128 {
	panic(unavailable)
}
func (System) CostSignWithECDSA(keyName []byte, curve uint32) (entities.Uint128, uint32) {
	panic(unavailable)
}
func (System) CostSignWithSchnorr(keyName []byte, algorithm uint32) (entities.Uint128, uint32) {
	panic(unavailable)
}
func (System) CostVetKDDeriveEncryptedKey(keyName []byte, curve uint32) (entities.Uint128, uint32) {
	panic(unavailable)
}
func (System) DebugPrint(src []byte) { panic(unavailable) }
func (System) Trap(src []byte) { panic(unavailable) }
