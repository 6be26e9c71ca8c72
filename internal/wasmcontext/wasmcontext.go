// Package wasmcontext tracks the execution the host is currently running.
//
// The host starts one execution at a time (an entry point or a call
// continuation) and every per-message value is only valid until that
// execution returns. A Tracker hands out a Scope for each execution so
// values created inside it can later tell whether they outlived it.
package wasmcontext

import (
	stdcontext "context"
	"fmt"
	"sync"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
)

// contextKey is a type alias for context value keys to avoid collisions.
type contextKey string

// ScopeKey is the context key under which the active Scope is stored.
const ScopeKey contextKey = "execution_scope"

// Scope identifies one execution.
type Scope struct {
	ID   uint64
	Kind entities.MessageKind
}

// Tracker records which Scope, if any, is active.
// Since WASM is single-threaded a single Tracker per module is enough; the
// mutex only matters for native tests.
type Tracker struct {
	mu     sync.RWMutex
	next   uint64
	active *Scope
}

// NewTracker returns a Tracker with no active execution.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin opens a new execution of the given kind.
// Executions never nest; Begin fails if one is already open.
func (t *Tracker) Begin(kind entities.MessageKind) (Scope, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		return Scope{}, fmt.Errorf("execution %d (%s) still active", t.active.ID, t.active.Kind)
	}
	t.next++
	s := Scope{ID: t.next, Kind: kind}
	t.active = &s
	return s, nil
}

// End closes s. Ending a scope that is not the active one is a no-op.
func (t *Tracker) End(s Scope) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil && t.active.ID == s.ID {
		t.active = nil
	}
}

// Active reports whether s is the execution currently running.
func (t *Tracker) Active(s Scope) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active != nil && t.active.ID == s.ID
}

// Current returns the active scope, if any.
func (t *Tracker) Current() (Scope, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.active == nil {
		return Scope{}, false
	}
	return *t.active, true
}

// WithScope returns a copy of parent carrying s.
// If parent is nil, context.Background() is used.
func WithScope(parent stdcontext.Context, s Scope) stdcontext.Context {
	if parent == nil {
		parent = stdcontext.Background()
	}
	return stdcontext.WithValue(parent, ScopeKey, s)
}

// ScopeFrom extracts the Scope stored by WithScope.
func ScopeFrom(ctx stdcontext.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	s, ok := ctx.Value(ScopeKey).(Scope)
	return s, ok
}
