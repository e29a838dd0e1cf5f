package notes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beleske/beleske/internal/telemetry/metrics"
	"github.com/beleske/beleske/internal/telemetry/tracing"
	"github.com/beleske/beleske/pkg"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	noteCacheExpireSeconds = 60 * 60
	noteCacheSize          = 10 * 1024 * 1024
)

// Handler serves the notes REST contract:
//
//	GET    /notes?query=   -> 200 [Note]
//	GET    /notes/{id}     -> 200 Note | 404
//	POST   /notes          -> 201 Note
//	PATCH  /notes/{id}     -> 200 Note | 404
//	DELETE /notes/{id}     -> 204
type Handler struct {
	api     Api
	cache   *freecache.Cache
	metrics *metrics.Manager
}

func NewHandler(api Api, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		api:     api,
		cache:   freecache.NewCache(noteCacheSize),
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/notes", handler.HandleList).Methods("GET", "OPTIONS").Name("list-notes")
	r.HandleFunc("/notes", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-note")
	r.HandleFunc("/notes/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-note")
	r.HandleFunc("/notes/{id}", handler.HandleUpdate).Methods("PATCH", "OPTIONS").Name("update-note")
	r.HandleFunc("/notes/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-note")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.list")
	defer span.End()

	query := r.URL.Query().Get("query")

	listed, err := handler.api.List(ctx, query)
	if err != nil {
		log.Errorf("list notes error: %s", err)
		http.Error(w, "failed to get notes", http.StatusInternalServerError)
		return
	}

	if listed == nil {
		listed = []Note{}
	}

	notesJson, err := json.Marshal(listed)
	if err != nil {
		log.Errorf("marshal notes error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, "application/json", notesJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if noteBytes, err := handler.cache.Get([]byte(id)); err == nil {
		log.Tracef("note %s served from cache", id)
		pkg.WriteResponseBytes(w, "application/json", noteBytes)
		return
	}

	note, err := handler.api.Get(ctx, id)
	if errors.Is(err, ErrNoteNotFound) {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get note %s: %s", id, err)
		http.Error(w, "failed to get note", http.StatusInternalServerError)
		return
	}

	noteJson, err := json.Marshal(note)
	if err != nil {
		log.Errorf("marshal note error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set([]byte(id), noteJson, noteCacheExpireSeconds); err != nil {
		log.Errorf("failed to cache note %s: %s", id, err)
	}

	pkg.WriteResponseBytes(w, "application/json", noteJson)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.new")
	defer span.End()

	var input CreateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("new note, unmarshal json params: %s", err)
		http.Error(w, "add note failed", http.StatusBadRequest)
		return
	}

	addedNote, err := handler.api.Create(ctx, input)
	if err != nil {
		log.Errorf("failed to add new note [%s]: %s", input.Title, err)
		http.Error(w, "error, failed to add new note", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNotesCreated.Inc()

	noteJson, err := json.Marshal(addedNote)
	if err != nil {
		log.Errorf("marshal added note: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new note added: [%s]: %s", addedNote.Title, addedNote.ID)

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if _, err := w.Write(noteJson); err != nil {
		log.Errorf("failed to write added note response: %s", err)
	}
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PATCH, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.update")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var input UpdateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("update note, unmarshal json params: %s", err)
		http.Error(w, "update note failed", http.StatusBadRequest)
		return
	}

	updatedNote, err := handler.api.Update(ctx, id, input)
	if errors.Is(err, ErrNoteNotFound) {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to update note [%s]: %s", id, err)
		http.Error(w, "error, failed to update note", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNotesUpdated.Inc()
	handler.cache.Del([]byte(id))

	noteJson, err := json.Marshal(updatedNote)
	if err != nil {
		log.Errorf("marshal updated note: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("note updated: [%s]: %s", updatedNote.Title, updatedNote.ID)

	pkg.WriteResponseBytes(w, "application/json", noteJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.api.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete note %s: %s", id, err)
		http.Error(w, "error, note not deleted, internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNotesDeleted.Inc()
	handler.cache.Del([]byte(id))

	log.Debugf("note deleted: %s", id)

	w.WriteHeader(http.StatusNoContent)
}
