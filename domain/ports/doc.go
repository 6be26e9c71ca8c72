// Package ports defines interfaces for infrastructure operations.
// These ports enable dependency inversion - the SDK packages depend on the
// system API abstraction, and infrastructure adapters (the WASM imports, the
// in-memory replica used in tests) implement it.
package ports
