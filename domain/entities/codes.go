package entities

import "fmt"

// RejectCode classifies why a message or call was rejected.
// Zero means no rejection; the nonzero values below are the classes the
// host currently defines, and any other nonzero value is kept as is.
type RejectCode uint32

const (
	RejectNone               RejectCode = 0
	RejectSysFatal           RejectCode = 1
	RejectSysTransient       RejectCode = 2
	RejectDestinationInvalid RejectCode = 3
	RejectCanisterReject     RejectCode = 4
	RejectCanisterError      RejectCode = 5
	RejectSysUnknown         RejectCode = 6
)

// IsRejected reports whether c carries a rejection.
func (c RejectCode) IsRejected() bool {
	return c != RejectNone
}

func (c RejectCode) String() string {
	switch c {
	case RejectNone:
		return "NONE"
	case RejectSysFatal:
		return "SYS_FATAL"
	case RejectSysTransient:
		return "SYS_TRANSIENT"
	case RejectDestinationInvalid:
		return "DESTINATION_INVALID"
	case RejectCanisterReject:
		return "CANISTER_REJECT"
	case RejectCanisterError:
		return "CANISTER_ERROR"
	case RejectSysUnknown:
		return "SYS_UNKNOWN"
	default:
		return fmt.Sprintf("REJECT_%d", uint32(c))
	}
}

// MessageKind identifies the kind of execution the host has started.
// It decides which parts of the system API are meaningful.
type MessageKind int

const (
	KindInit MessageKind = iota
	KindPreUpgrade
	KindPostUpgrade
	KindUpdate
	KindQuery
	KindCompositeQuery
	KindInspect
	KindReplyCallback
	KindRejectCallback
	KindCleanup
	KindHeartbeat
	KindGlobalTimer
	KindOnLowWasmMemory
)

var messageKindNames = map[MessageKind]string{
	KindInit:            "init",
	KindPreUpgrade:      "pre_upgrade",
	KindPostUpgrade:     "post_upgrade",
	KindUpdate:          "update",
	KindQuery:           "query",
	KindCompositeQuery:  "composite_query",
	KindInspect:         "inspect_message",
	KindReplyCallback:   "reply_callback",
	KindRejectCallback:  "reject_callback",
	KindCleanup:         "cleanup",
	KindHeartbeat:       "heartbeat",
	KindGlobalTimer:     "global_timer",
	KindOnLowWasmMemory: "on_low_wasm_memory",
}

func (k MessageKind) String() string {
	if s, ok := messageKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsRequest reports whether k is an inbound request carrying a method name.
func (k MessageKind) IsRequest() bool {
	switch k {
	case KindUpdate, KindQuery, KindCompositeQuery, KindInspect:
		return true
	}
	return false
}

// CanReply reports whether a reply or reject may be issued in k.
func (k MessageKind) CanReply() bool {
	switch k {
	case KindUpdate, KindQuery, KindCompositeQuery, KindReplyCallback, KindRejectCallback:
		return true
	}
	return false
}

// IsCallback reports whether k runs a call continuation.
func (k MessageKind) IsCallback() bool {
	return k == KindReplyCallback || k == KindRejectCallback
}

// CanCall reports whether outbound calls may be made in k.
func (k MessageKind) CanCall() bool {
	switch k {
	case KindUpdate, KindCompositeQuery, KindReplyCallback, KindRejectCallback,
		KindHeartbeat, KindGlobalTimer, KindOnLowWasmMemory:
		return true
	}
	return false
}

// CanisterStatus is the run state reported by the host.
type CanisterStatus uint32

const (
	StatusRunning  CanisterStatus = 1
	StatusStopping CanisterStatus = 2
	StatusStopped  CanisterStatus = 3
)

func (s CanisterStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", uint32(s))
	}
}

// PerformanceCounter selects which counter performance_counter returns.
type PerformanceCounter uint32

const (
	// InstructionCounter counts instructions in the current message execution.
	InstructionCounter PerformanceCounter = 0
	// CallContextInstructionCounter counts instructions across the whole
	// call context, including earlier callbacks.
	CallContextInstructionCounter PerformanceCounter = 1
)

// ECDSACurve identifies a threshold ECDSA curve for cost queries.
type ECDSACurve uint32

const ECDSASecp256k1 ECDSACurve = 0

// SchnorrAlgorithm identifies a threshold Schnorr algorithm for cost queries.
type SchnorrAlgorithm uint32

const (
	SchnorrBIP340Secp256k1 SchnorrAlgorithm = 0
	SchnorrEd25519         SchnorrAlgorithm = 1
)

// VetKDCurve identifies a vetKD curve for cost queries.
type VetKDCurve uint32

const VetKDBls12381G2 VetKDCurve = 0
