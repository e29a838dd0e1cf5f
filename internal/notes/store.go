package notes

import (
	"context"
	"sync"
)

type subscriber struct {
	id int
	fn func()
}

// Store is the reactive cache over a notes Api: one instance per
// process, constructed by the composition root and handed to whatever
// renders the notes. All mutations go through it, and after every write
// it re-fetches the list, so the cached notes always reflect actually
// persisted state - never an optimistic guess.
type Store struct {
	api Api

	mutex       sync.Mutex
	notes       []Note
	query       string
	subscribers []subscriber
	nextSubID   int

	// refresh sequence guard: completions of older List calls are
	// discarded, so an overlapping refresh cannot clobber a newer one
	refreshSeq int
	appliedSeq int
}

func NewStore(api Api) *Store {
	return &Store{api: api}
}

// Notes returns a copy of the cached note list
func (s *Store) Notes() []Note {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cached := make([]Note, len(s.notes))
	copy(cached, s.notes)
	return cached
}

func (s *Store) Query() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.query
}

// Subscribe registers fn to run after every cache refresh, in
// registration order. The returned func deregisters it; calling it more
// than once is a no-op. Callbacks run synchronously and outside the
// store lock - they must not assume atomicity across a notification
// round, and a callback that triggers another refresh will re-enter.
func (s *Store) Subscribe(fn func()) func() {
	s.mutex.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mutex.Unlock()

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for i := range s.subscribers {
			if s.subscribers[i].id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Refresh re-fetches the note list for the current query and notifies
// every subscriber exactly once
func (s *Store) Refresh(ctx context.Context) error {
	s.mutex.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	query := s.query
	s.mutex.Unlock()

	listed, err := s.api.List(ctx, query)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	if seq < s.appliedSeq {
		// a newer refresh already resolved, drop this one
		s.mutex.Unlock()
		return nil
	}
	s.appliedSeq = seq
	s.notes = listed
	toNotify := make([]subscriber, len(s.subscribers))
	copy(toNotify, s.subscribers)
	s.mutex.Unlock()

	for _, sub := range toNotify {
		sub.fn()
	}

	return nil
}

func (s *Store) SetQuery(ctx context.Context, query string) error {
	s.mutex.Lock()
	s.query = query
	s.mutex.Unlock()
	return s.Refresh(ctx)
}

func (s *Store) Create(ctx context.Context, input CreateNoteInput) (*Note, error) {
	created, err := s.api.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, input UpdateNoteInput) (*Note, error) {
	updated, err := s.api.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
