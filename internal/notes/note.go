package notes

import (
	"sort"
	"strings"
	"time"
)

// DefaultTitle is used for notes created without a title
const DefaultTitle = "Untitled"

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateNoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// UpdateNoteInput holds a partial note update; nil fields are left unchanged.
// An empty non-nil Tags slice clears the tags.
type UpdateNoteInput struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags"`
}

// Matches reports whether the note title, content, or any of the tags
// contain the query as a case-insensitive substring.
// An empty query matches every note.
func (n *Note) Matches(query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(n.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Content), query) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func (n *Note) applyUpdate(input UpdateNoteInput, now time.Time) {
	if input.Title != nil {
		n.Title = *input.Title
	}
	if input.Content != nil {
		n.Content = *input.Content
	}
	if input.Tags != nil {
		n.Tags = input.Tags
	}
	n.UpdatedAt = now
}

// sortByUpdatedAtDesc - most recently touched notes first
func sortByUpdatedAtDesc(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
}

func filterNotes(all []Note, query string) []Note {
	filtered := make([]Note, 0, len(all))
	for i := range all {
		if all[i].Matches(query) {
			filtered = append(filtered, all[i])
		}
	}
	sortByUpdatedAtDesc(filtered)
	return filtered
}
