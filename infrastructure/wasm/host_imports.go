//go:build wasip1

// Package wasm provides the adapter that binds ports.System to the ic0
// imports of the WASM host environment.
package wasm

//nolint:revive // intentional snake_case to match WASM import convention
//go:wasmimport ic0 msg_arg_data_size
func ic0_msg_arg_data_size() uint32

//go:wasmimport ic0 msg_arg_data_copy
func ic0_msg_arg_data_copy(dst, off, size uint32)

//go:wasmimport ic0 msg_caller_size
func ic0_msg_caller_size() uint32

//go:wasmimport ic0 msg_caller_copy
func ic0_msg_caller_copy(dst, off, size uint32)

//go:wasmimport ic0 msg_reject_code
func ic0_msg_reject_code() uint32

//go:wasmimport ic0 msg_reject_msg_size
func ic0_msg_reject_msg_size() uint32

//go:wasmimport ic0 msg_reject_msg_copy
func ic0_msg_reject_msg_copy(dst, off, size uint32)

//go:wasmimport ic0 msg_method_name_size
func ic0_msg_method_name_size() uint32

//go:wasmimport ic0 msg_method_name_copy
func ic0_msg_method_name_copy(dst, off, size uint32)

//go:wasmimport ic0 msg_deadline
func ic0_msg_deadline() uint64

//go:wasmimport ic0 msg_reply_data_append
func ic0_msg_reply_data_append(src, size uint32)

//go:wasmimport ic0 msg_reply
func ic0_msg_reply()

//go:wasmimport ic0 msg_reject
func ic0_msg_reject(src, size uint32)

//go:wasmimport ic0 msg_cycles_available128
func ic0_msg_cycles_available128(dst uint32)

//go:wasmimport ic0 msg_cycles_refunded128
func ic0_msg_cycles_refunded128(dst uint32)

//go:wasmimport ic0 msg_cycles_accept128
func ic0_msg_cycles_accept128(maxHigh, maxLow uint64, dst uint32)

//go:wasmimport ic0 accept_message
func ic0_accept_message()

//go:wasmimport ic0 cycles_burn128
func ic0_cycles_burn128(amountHigh, amountLow uint64, dst uint32)

//go:wasmimport ic0 canister_self_size
func ic0_canister_self_size() uint32

//go:wasmimport ic0 canister_self_copy
func ic0_canister_self_copy(dst, off, size uint32)

//go:wasmimport ic0 canister_cycle_balance128
func ic0_canister_cycle_balance128(dst uint32)

//go:wasmimport ic0 canister_liquid_cycle_balance128
func ic0_canister_liquid_cycle_balance128(dst uint32)

//go:wasmimport ic0 canister_status
func ic0_canister_status() uint32

//go:wasmimport ic0 canister_version
func ic0_canister_version() uint64

//go:wasmimport ic0 subnet_self_size
func ic0_subnet_self_size() uint32

//go:wasmimport ic0 subnet_self_copy
func ic0_subnet_self_copy(dst, off, size uint32)

//go:wasmimport ic0 call_new
func ic0_call_new(calleeSrc, calleeSize, nameSrc, nameSize, replyFun, replyEnv, rejectFun, rejectEnv uint32)

//go:wasmimport ic0 call_on_cleanup
func ic0_call_on_cleanup(fun, env uint32)

//go:wasmimport ic0 call_data_append
func ic0_call_data_append(src, size uint32)

//go:wasmimport ic0 call_with_best_effort_response
func ic0_call_with_best_effort_response(timeoutSeconds uint32)

//go:wasmimport ic0 call_cycles_add128
func ic0_call_cycles_add128(amountHigh, amountLow uint64)

//go:wasmimport ic0 call_perform
func ic0_call_perform() uint32

//go:wasmimport ic0 stable64_size
func ic0_stable64_size() uint64

//go:wasmimport ic0 stable64_grow
func ic0_stable64_grow(newPages uint64) uint64

//go:wasmimport ic0 stable64_write
func ic0_stable64_write(offset, src, size uint64)

//go:wasmimport ic0 stable64_read
func ic0_stable64_read(dst, offset, size uint64)

//go:wasmimport ic0 certified_data_set
func ic0_certified_data_set(src, size uint32)

//go:wasmimport ic0 data_certificate_present
func ic0_data_certificate_present() uint32

//go:wasmimport ic0 data_certificate_size
func ic0_data_certificate_size() uint32

//go:wasmimport ic0 data_certificate_copy
func ic0_data_certificate_copy(dst, off, size uint32)

//go:wasmimport ic0 time
func ic0_time() uint64

//go:wasmimport ic0 global_timer_set
func ic0_global_timer_set(timestamp uint64) uint64

//go:wasmimport ic0 performance_counter
func ic0_performance_counter(counterType uint32) uint64

//go:wasmimport ic0 is_controller
func ic0_is_controller(src, size uint32) uint32

//go:wasmimport ic0 in_replicated_execution
func ic0_in_replicated_execution() uint32

//go:wasmimport ic0 cost_call
func ic0_cost_call(methodNameSize, payloadSize uint64, dst uint32)

//go:wasmimport ic0 cost_create_canister
func ic0_cost_create_canister(dst uint32)

//go:wasmimport ic0 cost_http_request
func ic0_cost_http_request(requestSize, maxResBytes uint64, dst uint32)

//go:wasmimport ic0 cost_sign_with_ecdsa
func ic0_cost_sign_with_ecdsa(src, size, curve, dst uint32) uint32

//go:wasmimport ic0 cost_sign_with_schnorr
func ic0_cost_sign_with_schnorr(src, size, algorithm, dst uint32) uint32

//go:wasmimport ic0 cost_vetkd_derive_encrypted_key
func ic0_cost_vetkd_derive_encrypted_key(src, size, curve, dst uint32) uint32

//go:wasmimport ic0 debug_print
func ic0_debug_print(src, size uint32)

//go:wasmimport ic0 trap
func ic0_trap(src, size uint32)
