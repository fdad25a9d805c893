// Package jsonstore is an in-memory stand-in for the remote JSON store used
// by tests. It serves collections the way json-server does: exact-match
// query filters, "<field>_ne" negation, and id assignment on POST.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
)

// Record is one stored JSON object.
type Record = map[string]any

// Store holds collections of records keyed by id.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]Record
	nextID      int

	// ForceStatus, when non-zero, makes every request fail with that status.
	ForceStatus int
	requests    []string
}

// New creates an empty store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]Record)}
}

// NewServer starts an httptest server for a fresh store.
func NewServer() (*Store, *httptest.Server) {
	s := New()
	return s, httptest.NewServer(s)
}

// Seed stores records in collection, keeping their ids.
func (s *Store) Seed(collection string, records ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		rec := toRecord(r)
		s.put(collection, fmt.Sprint(rec["id"]), rec)
	}
}

// All returns the records of collection ordered by id.
func (s *Store) All(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(collection)
}

// Requests returns "METHOD path?query" for every request served.
func (s *Store) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// SetStatus makes every following request fail with status; zero restores
// normal behaviour.
func (s *Store) SetStatus(status int) {
	s.mu.Lock()
	s.ForceStatus = status
	s.mu.Unlock()
}

func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, strings.TrimSuffix(r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery, "?"))

	if s.ForceStatus != 0 {
		w.WriteHeader(s.ForceStatus)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	collection := parts[0]
	id := ""
	if len(parts) > 1 {
		id = parts[1]
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		writeJSON(w, http.StatusOK, s.filter(collection, r))
	case r.Method == http.MethodGet:
		rec, ok := s.collections[collection][id]
		if !ok {
			writeJSON(w, http.StatusNotFound, Record{})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case r.Method == http.MethodPost:
		rec, ok := decode(w, r)
		if !ok {
			return
		}
		if v, has := rec["id"]; !has || v == "" || v == nil {
			s.nextID++
			rec["id"] = fmt.Sprintf("%d", s.nextID)
		}
		s.put(collection, fmt.Sprint(rec["id"]), rec)
		writeJSON(w, http.StatusCreated, rec)
	case r.Method == http.MethodPut:
		if _, ok := s.collections[collection][id]; !ok {
			writeJSON(w, http.StatusNotFound, Record{})
			return
		}
		rec, ok := decode(w, r)
		if !ok {
			return
		}
		rec["id"] = id
		s.put(collection, id, rec)
		writeJSON(w, http.StatusOK, rec)
	case r.Method == http.MethodDelete:
		if _, ok := s.collections[collection][id]; !ok {
			writeJSON(w, http.StatusNotFound, Record{})
			return
		}
		delete(s.collections[collection], id)
		writeJSON(w, http.StatusOK, Record{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Store) put(collection, id string, rec Record) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Record)
	}
	s.collections[collection][id] = rec
}

func (s *Store) sorted(collection string) []Record {
	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.collections[collection][id])
	}
	return out
}

func (s *Store) filter(collection string, r *http.Request) []Record {
	query := r.URL.Query()
	out := []Record{}

outer:
	for _, rec := range s.sorted(collection) {
		for key, values := range query {
			field, negate := strings.CutSuffix(key, "_ne")
			got := fmt.Sprint(rec[field])
			if negate == (got == values[0]) {
				continue outer
			}
		}
		out = append(out, rec)
	}
	return out
}

func toRecord(v any) Record {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		panic(err)
	}
	return rec
}

func decode(w http.ResponseWriter, r *http.Request) (Record, bool) {
	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, Record{"error": err.Error()})
		return nil, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
