package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LocalApi persists the whole notes collection as a single JSON value
// in the underlying storage. Every mutation is one read-modify-write
// cycle under the mutex, so a single operation is never interleaved
// with another one from this process.
type LocalApi struct {
	storage storage
	mutex   sync.Mutex
}

func NewLocalApi(dataDir string) (*LocalApi, error) {
	s, err := newFileStorage(dataDir)
	if err != nil {
		return nil, fmt.Errorf("new file storage: %w", err)
	}
	return &LocalApi{storage: s}, nil
}

func newLocalApiWithStorage(s storage) *LocalApi {
	return &LocalApi{storage: s}
}

// seedNotes returns the demo notes written on first use, so the app is
// never empty. The welcome note is touched last and thus listed first.
func seedNotes() []Note {
	now := time.Now()
	return []Note{
		{
			ID:        uuid.NewString(),
			Title:     "Welcome to Notes",
			Content:   "This is your notes space. Create, edit and search notes - they are saved on this device, or on the configured backend.",
			Tags:      []string{"welcome", "demo"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:      uuid.NewString(),
			Title:   "Keyboard Tips",
			Content: "Use the search box to filter notes by title, content or tag.",
			Tags:    []string{"tips"},
			// a second older, to keep the seeded list order stable
			CreatedAt: now.Add(-time.Second),
			UpdatedAt: now.Add(-time.Second),
		},
	}
}

// load reads the stored collection; missing or corrupt data is replaced
// with the seed notes and persisted right away, never surfaced as an error
func (api *LocalApi) load() ([]Note, error) {
	data, err := api.storage.Read()
	if err != nil {
		if !errors.Is(err, errNoStoredNotes) {
			log.Warnf("local notes: read stored notes: %s", err)
		}
		return api.reseed()
	}

	var stored []Note
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Warnf("local notes: stored notes corrupt, reseeding: %s", err)
		return api.reseed()
	}

	return stored, nil
}

func (api *LocalApi) reseed() ([]Note, error) {
	seeded := seedNotes()
	if err := api.save(seeded); err != nil {
		return nil, fmt.Errorf("save seed notes: %w", err)
	}
	log.Debugf("local notes: seeded %d demo notes", len(seeded))
	return seeded, nil
}

func (api *LocalApi) save(all []Note) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	return api.storage.Write(data)
}

func (api *LocalApi) List(_ context.Context, query string) ([]Note, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	all, err := api.load()
	if err != nil {
		return nil, err
	}

	return filterNotes(all, query), nil
}

func (api *LocalApi) Get(_ context.Context, id string) (*Note, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	all, err := api.load()
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, ErrNoteNotFound
}

func (api *LocalApi) Create(_ context.Context, input CreateNoteInput) (*Note, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	all, err := api.load()
	if err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = DefaultTitle
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	note := Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   input.Content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	all = append(all, note)
	if err := api.save(all); err != nil {
		return nil, err
	}

	log.Debugf("local notes: new note added: [%s] %s", note.Title, note.ID)

	return &note, nil
}

func (api *LocalApi) Update(_ context.Context, id string, input UpdateNoteInput) (*Note, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	all, err := api.load()
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].ID != id {
			continue
		}
		all[i].applyUpdate(input, time.Now())
		if err := api.save(all); err != nil {
			return nil, err
		}
		updated := all[i]
		return &updated, nil
	}

	return nil, ErrNoteNotFound
}

func (api *LocalApi) Delete(_ context.Context, id string) error {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	all, err := api.load()
	if err != nil {
		return err
	}

	for i := range all {
		if all[i].ID == id {
			all = append(all[:i], all[i+1:]...)
			return api.save(all)
		}
	}

	// deleting a nonexistent note is a no-op
	return nil
}
