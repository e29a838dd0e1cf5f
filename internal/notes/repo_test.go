//go:build integration_test || all_tests

package notes

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beleske/beleske/internal/db"
)

func deleteAll(ctx context.Context, repo *Repo) (int64, error) {
	tag, err := repo.db.Exec(ctx, `DELETE FROM note`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func testRepoSetup(t *testing.T) (*Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "beleske",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestRepo_BasicCRUD(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	deleted, err := deleteAll(ctx, repo)
	require.NoError(t, err)
	t.Logf("test setup, deleted notes: %d", deleted)

	listed, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, listed)

	added1, err := repo.Create(ctx, CreateNoteInput{
		Title:   "title1",
		Content: "content1",
		Tags:    []string{"tag1"},
	})
	require.NoError(t, err)
	require.NotNil(t, added1)
	added2, err := repo.Create(ctx, CreateNoteInput{
		Title:   "title2",
		Content: "content2",
	})
	require.NoError(t, err)
	require.NotNil(t, added2)
	assert.Equal(t, []string{}, added2.Tags)

	listed, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	listed, err = repo.List(ctx, "tag1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, added1.ID, listed[0].ID)

	retrieved1, err := repo.Get(ctx, added1.ID)
	require.NoError(t, err)
	assert.Equal(t, "content1", retrieved1.Content)
	assert.Equal(t, "title1", retrieved1.Title)
	assert.Equal(t, []string{"tag1"}, retrieved1.Tags)

	nonExisting, err := repo.Get(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.Nil(t, nonExisting)

	require.NoError(t, repo.Delete(ctx, added1.ID))
	_, err = repo.Get(ctx, added1.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	// deleting a nonexistent note is a no-op
	require.NoError(t, repo.Delete(ctx, added1.ID))

	require.NoError(t, repo.Delete(ctx, added2.ID))
	listed, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRepo_Update(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	deleted, err := deleteAll(ctx, repo)
	require.NoError(t, err)
	t.Logf("test setup, deleted notes: %d", deleted)

	added, err := repo.Create(ctx, CreateNoteInput{
		Title:   "title1",
		Content: "content1",
		Tags:    []string{"tag1"},
	})
	require.NoError(t, err)

	newContent := "new-content"
	updated, err := repo.Update(ctx, added.ID, UpdateNoteInput{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, "new-content", updated.Content)
	assert.Equal(t, "title1", updated.Title)
	assert.Equal(t, []string{"tag1"}, updated.Tags)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	newTitle := "new-title"
	updated, err = repo.Update(ctx, added.ID, UpdateNoteInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "new-content", updated.Content)
	assert.Equal(t, "new-title", updated.Title)

	updated, err = repo.Update(ctx, added.ID, UpdateNoteInput{Tags: []string{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)

	_, err = repo.Update(ctx, "no-such-id", UpdateNoteInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrNoteNotFound)
}
