package ports

import "github.com/reglet-dev/canister-sdk/go/domain/entities"

// The interfaces below mirror the host's ic0 system API one primitive at a
// time. Offsets and lengths into guest memory are replaced by byte slices:
// a *Copy method fills all of dst starting at off of the host value, and a
// method taking src hands all of src to the host. 128-bit values travel as
// entities.Uint128 instead of split halves.
//
// None of these methods validate anything. Out of range copies, replies in
// the wrong context and the like are host faults (traps). The SDK packages
// are responsible for never issuing them.

// MessageAPI inspects the message being executed.
type MessageAPI interface {
	MsgArgDataSize() uint32
	MsgArgDataCopy(dst []byte, off uint32)
	MsgCallerSize() uint32
	MsgCallerCopy(dst []byte, off uint32)
	MsgRejectCode() uint32
	MsgRejectMsgSize() uint32
	MsgRejectMsgCopy(dst []byte, off uint32)
	MsgMethodNameSize() uint32
	MsgMethodNameCopy(dst []byte, off uint32)
	MsgDeadline() uint64
	MsgCyclesAvailable128() entities.Uint128
	MsgCyclesRefunded128() entities.Uint128
	MsgCyclesAccept128(max entities.Uint128) entities.Uint128
	AcceptMessage()
}

// ReplyAPI terminates the message being executed.
type ReplyAPI interface {
	MsgReplyDataAppend(src []byte)
	MsgReply()
	MsgReject(src []byte)
}

// CallAPI assembles and performs one outbound call at a time.
type CallAPI interface {
	CallNew(callee, method []byte, replyFun, replyEnv, rejectFun, rejectEnv uint32)
	CallOnCleanup(fun, env uint32)
	CallDataAppend(src []byte)
	CallWithBestEffortResponse(timeoutSeconds uint32)
	CallCyclesAdd128(amount entities.Uint128)
	CallPerform() uint32
}

// StableAPI accesses stable memory.
type StableAPI interface {
	Stable64Size() uint64
	Stable64Grow(newPages uint64) uint64
	Stable64Write(offset uint64, src []byte)
	Stable64Read(dst []byte, offset uint64)
}

// CertifiedAPI sets certified data and reads data certificates.
type CertifiedAPI interface {
	CertifiedDataSet(src []byte)
	DataCertificatePresent() uint32
	DataCertificateSize() uint32
	DataCertificateCopy(dst []byte, off uint32)
}

// TimeAPI exposes time, the global timer and performance counters.
type TimeAPI interface {
	Time() uint64
	GlobalTimerSet(timestamp uint64) uint64
	PerformanceCounter(counterType uint32) uint64
}

// CanisterAPI exposes facts about the executing canister.
type CanisterAPI interface {
	CanisterSelfSize() uint32
	CanisterSelfCopy(dst []byte, off uint32)
	CanisterCycleBalance128() entities.Uint128
	CanisterLiquidCycleBalance128() entities.Uint128
	CanisterStatus() uint32
	CanisterVersion() uint64
	SubnetSelfSize() uint32
	SubnetSelfCopy(dst []byte, off uint32)
	IsController(principal []byte) uint32
	InReplicatedExecution() uint32
	CyclesBurn128(amount entities.Uint128) entities.Uint128
}

// CostAPI estimates the cycles cost of operations. The signing queries
// return a status: 0 success, 1 invalid curve or algorithm, 2 invalid key name.
type CostAPI interface {
	CostCall(methodNameSize, payloadSize uint64) entities.Uint128
	CostCreateCanister() entities.Uint128
	CostHTTPRequest(requestSize, maxResBytes uint64) entities.Uint128
	CostSignWithECDSA(keyName []byte, curve uint32) (entities.Uint128, uint32)
	CostSignWithSchnorr(keyName []byte, algorithm uint32) (entities.Uint128, uint32)
	CostVetKDDeriveEncryptedKey(keyName []byte, curve uint32) (entities.Uint128, uint32)
}

// DebugAPI writes debug output and traps.
type DebugAPI interface {
	DebugPrint(src []byte)
	// Trap aborts the current execution. It does not return.
	Trap(src []byte)
}

// System is the complete system API surface.
type System interface {
	MessageAPI
	ReplyAPI
	CallAPI
	StableAPI
	CertifiedAPI
	TimeAPI
	CanisterAPI
	CostAPI
	DebugAPI
}

// HostTrap is implemented by panic values a native System raises in place
// of a real trap. The runtime re-raises them unchanged instead of treating
// them as handler panics.
type HostTrap interface {
	error
	HostTrap()
}
