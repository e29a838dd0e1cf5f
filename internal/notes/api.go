package notes

import (
	"context"
	"errors"
)

var ErrNoteNotFound = errors.New("note not found")

var _ Api = (*LocalApi)(nil)
var _ Api = (*RemoteApi)(nil)
var _ Api = (*Repo)(nil)

// Api is the notes data access contract. Every backend implements the
// exact same semantics, so callers never need to know which one they got.
type Api interface {
	// List returns notes ordered by UpdatedAt descending; a non-empty query
	// filters by case-insensitive substring over title, content and tags
	List(ctx context.Context, query string) ([]Note, error)
	// Get returns ErrNoteNotFound when no note with that id exists
	Get(ctx context.Context, id string) (*Note, error)
	Create(ctx context.Context, input CreateNoteInput) (*Note, error)
	// Update merges the given fields over the existing note and bumps
	// UpdatedAt; returns ErrNoteNotFound when no note with that id exists
	Update(ctx context.Context, id string, input UpdateNoteInput) (*Note, error)
	// Delete is idempotent - deleting a nonexistent id is a no-op
	Delete(ctx context.Context, id string) error
}
