// Package storetest is an in-memory stand-in for the hosted document
// database. The store client's tests run against it over httptest, and
// cmd/stubstore serves it on localhost so the CLI can be exercised without
// an account on the real service.
//
// It implements the slice of the service's API this app actually uses:
// per-collection list (with a Mongo-style q filter), get-by-id, create,
// put, patch, delete, all guarded by the x-apikey header. Record ids are
// assigned server-side, like the real service.
package storetest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
)

// collections the stub accepts; anything else 404s, which catches path
// typos in the client.
var knownCollections = map[string]bool{
	"users":      true,
	"moods":      true,
	"activities": true,
	"usermoods":  true,
	"profiles":   true,
	"moodlogs":   true,
}

// Server holds the in-memory collections. Safe for concurrent use.
type Server struct {
	apiKey string
	logger *slog.Logger
	router *chi.Mux

	mu   sync.Mutex
	data map[string][]map[string]any

	// forceStatus, when non-zero, makes the next request fail with that
	// status. Tests use it to exercise the client's 429/500 mapping.
	forceStatus int
}

// New creates a stub server that accepts the given API key.
func New(apiKey string, logger *slog.Logger) *Server {
	s := &Server{
		apiKey: apiKey,
		logger: logger,
		data:   make(map[string][]map[string]any),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(s.requireAPIKey)

	r.Route("/{collection}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handlePut)
		r.Patch("/{id}", s.handlePatch)
		r.Delete("/{id}", s.handleDelete)
	})
	s.router = r
	return s
}

// Handler returns the stub's HTTP handler, for httptest.NewServer or a real
// net/http server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Seed inserts documents directly, bypassing HTTP, and returns their
// assigned ids. Documents that already carry an _id keep it.
func (s *Server) Seed(collection string, docs ...map[string]any) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		stored := cloneDoc(doc)
		id, _ := stored["_id"].(string)
		if id == "" {
			id = xid.New().String()
			stored["_id"] = id
		}
		s.data[collection] = append(s.data[collection], stored)
		ids = append(ids, id)
	}
	return ids
}

// FailNext makes the next request fail with the given HTTP status.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceStatus = status
}

// Count returns how many documents a collection holds.
func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[collection])
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		forced := s.forceStatus
		s.forceStatus = 0
		s.mu.Unlock()
		if forced != 0 {
			writeJSON(w, forced, errorBody("forced failure"))
			return
		}

		if r.Header.Get("x-apikey") != s.apiKey {
			writeJSON(w, http.StatusUnauthorized, errorBody("invalid API key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}

	var query map[string]any
	if raw := r.URL.Query().Get("q"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &query); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid query"))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0)
	for _, doc := range s.data[collection] {
		if matches(doc, query) {
			out = append(out, doc)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc := s.find(collection, chi.URLParam(r, "id")); doc != nil {
		writeJSON(w, http.StatusOK, doc)
		return
	}
	writeJSON(w, http.StatusNotFound, errorBody("not found"))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}

	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	// The store assigns identity; a client-supplied _id is ignored.
	doc["_id"] = xid.New().String()

	s.mu.Lock()
	s.data[collection] = append(s.data[collection], doc)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(stored, incoming map[string]any) map[string]any {
		incoming["_id"] = stored["_id"]
		return incoming
	})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(stored, incoming map[string]any) map[string]any {
		for k, v := range incoming {
			if k != "_id" {
				stored[k] = v
			}
		}
		return stored
	})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, apply func(stored, incoming map[string]any) map[string]any) {
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}

	var incoming map[string]any
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range s.data[collection] {
		if doc["_id"] == id {
			s.data[collection][i] = apply(doc, incoming)
			writeJSON(w, http.StatusOK, s.data[collection][i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorBody("not found"))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	collection, ok := s.collection(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.data[collection]
	for i, doc := range docs {
		if doc["_id"] == id {
			s.data[collection] = append(docs[:i], docs[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorBody("not found"))
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "collection")
	if !knownCollections[name] {
		writeJSON(w, http.StatusNotFound, errorBody("unknown collection"))
		return "", false
	}
	return name, true
}

// find returns the stored document with the given id, or nil. Caller holds
// the lock.
func (s *Server) find(collection, id string) map[string]any {
	for _, doc := range s.data[collection] {
		if doc["_id"] == id {
			return doc
		}
	}
	return nil
}

// matches evaluates the subset of the query language the app uses: plain
// equality and $elemMatch on {_id} ref arrays. Values compare as their
// JSON-decoded forms (string, float64, bool).
func matches(doc, query map[string]any) bool {
	for field, cond := range query {
		if condMap, ok := cond.(map[string]any); ok {
			if inner, ok := condMap["$elemMatch"].(map[string]any); ok {
				if !elemMatches(doc[field], inner["_id"]) {
					return false
				}
				continue
			}
		}
		if !reflect.DeepEqual(doc[field], cond) {
			return false
		}
	}
	return true
}

// elemMatches reports whether value — an array of {_id} refs, an array of
// id strings, or a bare id string — contains wantID. The loose shapes
// mirror the drift in the live collections.
func elemMatches(value, wantID any) bool {
	switch v := value.(type) {
	case []any:
		for _, el := range v {
			switch ref := el.(type) {
			case map[string]any:
				if ref["_id"] == wantID {
					return true
				}
			case string:
				if ref == wantID {
					return true
				}
			}
		}
	case string:
		return v == wantID
	}
	return false
}

func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(message string) errResponse {
	return errResponse{Error: message}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}
