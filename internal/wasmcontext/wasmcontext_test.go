package wasmcontext

import (
	"context"
	"sync"
	"testing"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_BeginEnd(t *testing.T) {
	tr := NewTracker()

	_, ok := tr.Current()
	assert.False(t, ok, "no execution before Begin")

	s, err := tr.Begin(entities.KindUpdate)
	require.NoError(t, err)
	assert.True(t, tr.Active(s))
	assert.Equal(t, entities.KindUpdate, s.Kind)

	cur, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, s, cur)

	tr.End(s)
	assert.False(t, tr.Active(s))

	next, err := tr.Begin(entities.KindReplyCallback)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, next.ID, "ids are never reused")
	assert.False(t, tr.Active(s), "old scope stays expired")
	tr.End(next)
}

func TestTracker_NoNesting(t *testing.T) {
	tr := NewTracker()
	s, err := tr.Begin(entities.KindUpdate)
	require.NoError(t, err)

	_, err = tr.Begin(entities.KindQuery)
	assert.Error(t, err)

	tr.End(Scope{ID: s.ID + 100})
	assert.True(t, tr.Active(s), "ending a foreign scope is a no-op")
	tr.End(s)
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s, err := tr.Begin(entities.KindQuery); err == nil {
				tr.End(s)
			}
		}()
	}
	wg.Wait()

	_, ok := tr.Current()
	assert.False(t, ok)
}

func TestScopeContext(t *testing.T) {
	s := Scope{ID: 7, Kind: entities.KindInspect}
	ctx := WithScope(context.Background(), s)

	got, ok := ScopeFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = ScopeFrom(context.Background())
	assert.False(t, ok)

	//nolint:staticcheck // nil parent is part of the contract
	got, ok = ScopeFrom(WithScope(nil, s))
	require.True(t, ok)
	assert.Equal(t, s, got)
}
