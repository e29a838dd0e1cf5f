package notes

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(newLocalApiWithStorage(newTestStorage()))
}

func TestStore_RefreshFillsCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.Empty(t, store.Notes())

	require.NoError(t, store.Refresh(ctx))
	cached := store.Notes()
	require.Len(t, cached, 2)
	assert.Equal(t, "Welcome to Notes", cached[0].Title)

	// the returned slice is a copy, mutating it cannot touch the cache
	cached[0].Title = "mutated"
	assert.Equal(t, "Welcome to Notes", store.Notes()[0].Title)
}

func TestStore_MutationsRefreshCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	added, err := store.Create(ctx, CreateNoteInput{Title: "fresh"})
	require.NoError(t, err)
	require.Len(t, store.Notes(), 3)
	assert.Equal(t, "fresh", store.Notes()[0].Title)

	newTitle := "fresher"
	_, err = store.Update(ctx, added.ID, UpdateNoteInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "fresher", store.Notes()[0].Title)

	require.NoError(t, store.Remove(ctx, added.ID))
	assert.Len(t, store.Notes(), 2)

	// removing it again is a no-op and still refreshes
	require.NoError(t, store.Remove(ctx, added.ID))
	assert.Len(t, store.Notes(), 2)
}

func TestStore_UpdateNotFoundLeavesCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Refresh(ctx))

	notified := 0
	defer store.Subscribe(func() { notified++ })()

	newTitle := "anything"
	_, err := store.Update(ctx, "nonexistent-id", UpdateNoteInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	// failed mutation, no refresh, no notification
	assert.Zero(t, notified)
	assert.Len(t, store.Notes(), 2)
}

func TestStore_SetQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SetQuery(ctx, "tips"))
	assert.Equal(t, "tips", store.Query())
	cached := store.Notes()
	require.Len(t, cached, 1)
	assert.Equal(t, "Keyboard Tips", cached[0].Title)

	// mutations refresh with the active query still applied
	_, err := store.Create(ctx, CreateNoteInput{Title: "no match"})
	require.NoError(t, err)
	assert.Len(t, store.Notes(), 1)

	require.NoError(t, store.SetQuery(ctx, ""))
	assert.Len(t, store.Notes(), 3)
}

func TestStore_SubscribersNotifiedInOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var calls []string
	store.Subscribe(func() { calls = append(calls, "first") })
	store.Subscribe(func() { calls = append(calls, "second") })
	unsubThird := store.Subscribe(func() { calls = append(calls, "third") })

	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, []string{"first", "second", "third"}, calls)

	calls = nil
	unsubThird()
	unsubThird() // second call is a no-op
	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, []string{"first", "second"}, calls)
}

// gatedCall is one pending List invocation: started is closed when the
// call comes in, and the call returns listed once gate is closed
type gatedCall struct {
	listed  []Note
	started chan struct{}
	gate    chan struct{}
}

// gatedApi hands out calls in order and delays each List completion
// until released, so tests can decide the order in which overlapping
// refreshes resolve
type gatedApi struct {
	Api

	mutex sync.Mutex
	calls []*gatedCall
}

func (g *gatedApi) expectList(listed []Note) *gatedCall {
	call := &gatedCall{
		listed:  listed,
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	g.mutex.Lock()
	g.calls = append(g.calls, call)
	g.mutex.Unlock()
	return call
}

func (g *gatedApi) List(_ context.Context, _ string) ([]Note, error) {
	g.mutex.Lock()
	call := g.calls[0]
	g.calls = g.calls[1:]
	g.mutex.Unlock()

	close(call.started)
	<-call.gate
	return call.listed, nil
}

func TestStore_StaleRefreshDiscarded(t *testing.T) {
	ctx := context.Background()

	api := &gatedApi{}
	store := NewStore(api)

	olderCall := api.expectList([]Note{{ID: "old", Title: "stale listing"}})
	newerCall := api.expectList([]Note{{ID: "new", Title: "fresh listing"}})

	olderDone := make(chan error)
	go func() { olderDone <- store.Refresh(ctx) }()
	<-olderCall.started

	newerDone := make(chan error)
	go func() { newerDone <- store.Refresh(ctx) }()
	<-newerCall.started

	// the newer refresh resolves first, then the older one trails in
	close(newerCall.gate)
	require.NoError(t, <-newerDone)
	close(olderCall.gate)
	require.NoError(t, <-olderDone)

	// the stale completion got discarded
	cached := store.Notes()
	require.Len(t, cached, 1)
	assert.Equal(t, "fresh listing", cached[0].Title)
}
