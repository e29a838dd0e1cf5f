package notes

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var _ Api = (*repoMock)(nil)

type repoMock struct {
	notes map[string]*Note
}

func NewMockNotesRepo() *repoMock {
	return &repoMock{
		notes: make(map[string]*Note),
	}
}

func (r *repoMock) List(_ context.Context, query string) ([]Note, error) {
	all := make([]Note, 0, len(r.notes))
	for _, n := range r.notes {
		all = append(all, *n)
	}
	return filterNotes(all, query), nil
}

func (r *repoMock) Get(_ context.Context, id string) (*Note, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (r *repoMock) Create(_ context.Context, input CreateNoteInput) (*Note, error) {
	title := input.Title
	if title == "" {
		title = DefaultTitle
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now()
	note := &Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   input.Content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.notes[note.ID] = note
	return note, nil
}

func (r *repoMock) Update(_ context.Context, id string, input UpdateNoteInput) (*Note, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	note.applyUpdate(input, time.Now())
	return note, nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	delete(r.notes, id)
	return nil
}
