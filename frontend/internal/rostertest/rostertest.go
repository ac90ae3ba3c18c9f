// Package rostertest provides an in-memory roster service for tests.
package rostertest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/mergington/activities/shared/api"
	"github.com/mergington/activities/shared/domain"
)

// Operation names used by Calls and FailNext.
const (
	OpList       = "list"
	OpSignup     = "signup"
	OpUnregister = "unregister"
)

type Failure int

const (
	// Drop closes the connection without answering.
	Drop Failure = iota + 1
	// Malformed answers 200 with a body that is not JSON.
	Malformed
	// Bare answers 500 with a JSON body carrying no detail.
	Bare
	// ErrorPage answers 500 with an HTML body, like a proxy in front of the
	// service would.
	ErrorPage
)

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	activities domain.Activities
	calls      map[string]int
	failures   map[string][]Failure
}

// New starts a roster service seeded with activities and stops it when the
// test ends.
func New(t testing.TB, activities domain.Activities) *Server {
	t.Helper()
	s := &Server{
		activities: clone(activities),
		calls:      make(map[string]int),
		failures:   make(map[string][]Failure),
	}

	r := mux.NewRouter()
	r.UseEncodedPath()
	r.HandleFunc("/activities", s.list).Methods(http.MethodGet)
	r.HandleFunc("/activities/{name}/signup", s.signup).Methods(http.MethodPost)
	r.HandleFunc("/activities/{name}/unregister", s.unregister).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed is the fixture most tests start from.
func Seed() domain.Activities {
	return domain.Activities{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []domain.Email{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []domain.Email{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []domain.Email{},
		},
	}
}

// Calls is the number of requests received for an operation.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// FailNext makes the next request of op fail the given way. Failures queue.
func (s *Server) FailNext(op string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], f)
}

func (s *Server) Activities() domain.Activities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.activities)
}

func (s *Server) SetActivities(activities domain.Activities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = clone(activities)
}

// begin counts the call and reports whether a queued failure was served.
func (s *Server) begin(op string, w http.ResponseWriter) bool {
	s.mu.Lock()
	s.calls[op]++
	var failure Failure
	if queued := s.failures[op]; len(queued) > 0 {
		failure = queued[0]
		s.failures[op] = queued[1:]
	}
	s.mu.Unlock()

	switch failure {
	case Drop:
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("rostertest: response writer cannot hijack")
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
		return true
	case Malformed:
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "<html>Bad Gateway</html>")
		return true
	case Bare:
		writeJSON(w, http.StatusInternalServerError, struct{}{})
		return true
	case ErrorPage:
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "<html>Internal Server Error</html>")
		return true
	}
	return false
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if s.begin(OpList, w) {
		return
	}
	s.mu.Lock()
	body, err := encodeActivities(s.activities)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if s.begin(OpSignup, w) {
		return
	}
	name, email, ok := params(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(name)
	switch {
	case i < 0:
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Detail: "Activity not found"})
	case slices.Contains(s.activities[i].Participants, email):
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Detail: "Student already registered for this activity"})
	case s.activities[i].SpotsLeft() <= 0:
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Detail: "Activity full"})
	default:
		s.activities[i].Participants = append(s.activities[i].Participants, email)
		writeJSON(w, http.StatusOK, api.MessageResponse{Message: fmt.Sprintf("Signed up %s for %s", email, name)})
	}
}

func (s *Server) unregister(w http.ResponseWriter, r *http.Request) {
	if s.begin(OpUnregister, w) {
		return
	}
	name, email, ok := params(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(name)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Detail: "Activity not found"})
		return
	}
	at := slices.Index(s.activities[i].Participants, email)
	if at < 0 {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Detail: "Student not registered for this activity"})
		return
	}
	s.activities[i].Participants = slices.Delete(s.activities[i].Participants, at, at+1)
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: fmt.Sprintf("Unregistered %s from %s", email, name)})
}

func (s *Server) index(name domain.ActivityName) int {
	return slices.IndexFunc(s.activities, func(a domain.Activity) bool { return a.Name == name })
}

func params(w http.ResponseWriter, r *http.Request) (domain.ActivityName, domain.Email, bool) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Detail: "Invalid activity name"})
		return "", "", false
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusUnprocessableEntity, api.ErrorResponse{Detail: []map[string]any{
			{"loc": []string{"query", "email"}, "msg": "Field required", "type": "missing"},
		}})
		return "", "", false
	}
	return name, email, true
}

// encodeActivities writes the collection as a JSON object in slice order.
func encodeActivities(activities domain.Activities) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range activities {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(api.ToActivityResponse(a))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clone(activities domain.Activities) domain.Activities {
	out := make(domain.Activities, len(activities))
	for i, a := range activities {
		a.Participants = slices.Clone(a.Participants)
		if a.Participants == nil {
			a.Participants = []domain.Email{}
		}
		out[i] = a
	}
	return out
}
