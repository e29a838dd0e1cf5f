package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beleske/beleske/internal/telemetry/metrics"
)

type handlerTestSuite struct {
	router  *mux.Router
	repo    *repoMock
	metrics *metrics.Manager
}

func newHandlerTestSuite(t *testing.T) *handlerTestSuite {
	t.Helper()

	repo := NewMockNotesRepo()
	m := metrics.NewTestManager()
	handler := NewHandler(repo, m)

	r := mux.NewRouter()
	handler.SetupRoutes(r)

	return &handlerTestSuite{
		router:  r,
		repo:    repo,
		metrics: m,
	}
}

func (suite *handlerTestSuite) addNote(t *testing.T, input CreateNoteInput) *Note {
	t.Helper()
	note, err := suite.repo.Create(context.Background(), input)
	require.NoError(t, err)
	return note
}

func TestHandler_List(t *testing.T) {
	suite := newHandlerTestSuite(t)

	// an empty collection yields an empty array, never null
	req := httptest.NewRequest("GET", "/notes", nil)
	rr := httptest.NewRecorder()
	suite.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	suite.addNote(t, CreateNoteInput{Title: "first", Tags: []string{"groceries"}})
	suite.addNote(t, CreateNoteInput{Title: "second"})

	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var listed []Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)

	// query param narrows the listing
	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes?query=grocer", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "first", listed[0].Title)
}

func TestHandler_Get(t *testing.T) {
	suite := newHandlerTestSuite(t)
	note := suite.addNote(t, CreateNoteInput{Title: "gettable", Content: "some content"})

	rr := httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes/"+note.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var gotten Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gotten))
	assert.Equal(t, note.ID, gotten.ID)
	assert.Equal(t, "some content", gotten.Content)

	// second get is served from the cache and still correct
	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes/"+note.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gotten))
	assert.Equal(t, note.ID, gotten.ID)

	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes/nonexistent", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Create(t *testing.T) {
	suite := newHandlerTestSuite(t)

	reqBody := `{"title":"new note","content":"note content","tags":["one"]}`
	req := httptest.NewRequest("POST", "/notes", strings.NewReader(reqBody))
	rr := httptest.NewRecorder()
	suite.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var added Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "new note", added.Title)
	assert.Equal(t, []string{"one"}, added.Tags)
	assert.Equal(t, float64(1), testutil.ToFloat64(suite.metrics.CounterNotesCreated))

	// garbage body
	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("POST", "/notes", strings.NewReader("{broken")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(suite.metrics.CounterNotesCreated))
}

func TestHandler_Update(t *testing.T) {
	suite := newHandlerTestSuite(t)
	note := suite.addNote(t, CreateNoteInput{Title: "before", Content: "old", Tags: []string{"keep"}})

	// prime the by-id cache, the update must invalidate it
	rr := httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes/"+note.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	reqBody := `{"content":"new"}`
	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("PATCH", "/notes/"+note.ID, strings.NewReader(reqBody)))
	require.Equal(t, http.StatusOK, rr.Code)

	var updated Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "before", updated.Title)
	assert.Equal(t, "new", updated.Content)
	assert.Equal(t, []string{"keep"}, updated.Tags)
	assert.Equal(t, float64(1), testutil.ToFloat64(suite.metrics.CounterNotesUpdated))

	// a get after the update sees the fresh content, not the cached one
	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes/"+note.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var gotten Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gotten))
	assert.Equal(t, "new", gotten.Content)

	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("PATCH", "/notes/nonexistent", strings.NewReader(reqBody)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Delete(t *testing.T) {
	suite := newHandlerTestSuite(t)
	note := suite.addNote(t, CreateNoteInput{Title: "doomed"})

	deleteReq := func(id string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		suite.router.ServeHTTP(rr, httptest.NewRequest("DELETE", fmt.Sprintf("/notes/%s", id), nil))
		return rr
	}

	rr := deleteReq(note.ID)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = httptest.NewRecorder()
	suite.router.ServeHTTP(rr, httptest.NewRequest("GET", "/notes/"+note.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// deleting it again still succeeds
	rr = deleteReq(note.ID)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, float64(2), testutil.ToFloat64(suite.metrics.CounterNotesDeleted))
}
