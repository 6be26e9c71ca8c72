// Package host runs compiled canisters locally.
//
// It instantiates a module with wazero, provides the ic0 import module on
// top of a testing/ictest.Replica, and drives the canister's exported entry
// points: per-method update and query exports, the lifecycle hooks and the
// callback trampolines. Traps, whether raised by the replica or by the
// guest itself, are reported in the returned ictest.Response.
package host
