/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fakeserver implements an in-memory issue tracker that serves the API
// the runner consumes, with fault injection for exercising failure paths.
package fakeserver

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	DemoEmail    = "demo@test.com"
	DemoPassword = "demo123"
	DemoName     = "Demo User"
	DemoUserID   = "4b8c2a9e-7d1f-4e33-9a0c-5f6d7e8a9b10"
	DemoToken    = "demo-token"
)

// Route keys identify routes for fault injection and request counting.
const (
	RouteRegister      = "POST /api/auth/register"
	RouteLogin         = "POST /api/auth/login"
	RouteCurrentUser   = "GET /api/auth/me"
	RouteCreateIssue   = "POST /api/issues"
	RouteListIssues    = "GET /api/issues"
	RouteGetIssue      = "GET /api/issues/{id}"
	RouteUpdateIssue   = "PUT /api/issues/{id}"
	RouteDeleteIssue   = "DELETE /api/issues/{id}"
	RouteAddSolution   = "POST /api/issues/{id}/solutions"
	RouteSimilarIssues = "GET /api/issues/{id}/similar"
)

// Options control the behaviour of the server.
type Options struct {
	// Failures makes a route answer with the given status code.
	Failures map[string]int
	// RejectAuth makes every request to an authenticated route answer 401.
	RejectAuth bool
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`

	password string
}

type Solution struct {
	ID           string    `json:"id"`
	SolutionText string    `json:"solution_text"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type Issue struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Solutions   []Solution `json:"solutions"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type userKey struct{}

// Server is an http.Handler safe for concurrent use.
type Server struct {
	handler http.Handler
	options Options

	lock     sync.Mutex
	users    map[string]*User
	tokens   map[string]*User
	issues   map[string]*Issue
	order    []string
	requests map[string]int
}

// New returns a server seeded with the demo account.
func New(options Options) *Server {
	demo := &User{
		ID:       DemoUserID,
		Email:    DemoEmail,
		Name:     DemoName,
		password: DemoPassword,
	}

	s := &Server{
		options: options,
		users: map[string]*User{
			DemoEmail: demo,
		},
		tokens: map[string]*User{
			DemoToken: demo,
		},
		issues:   map[string]*Issue{},
		requests: map[string]int{},
	}

	router := chi.NewRouter()

	s.route(router, http.MethodPost, "/api/auth/register", s.register)
	s.route(router, http.MethodPost, "/api/auth/login", s.login)

	router.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		s.route(r, http.MethodGet, "/api/auth/me", s.currentUser)
		s.route(r, http.MethodPost, "/api/issues", s.createIssue)
		s.route(r, http.MethodGet, "/api/issues", s.listIssues)
		s.route(r, http.MethodGet, "/api/issues/{id}", s.getIssue)
		s.route(r, http.MethodPut, "/api/issues/{id}", s.updateIssue)
		s.route(r, http.MethodDelete, "/api/issues/{id}", s.deleteIssue)
		s.route(r, http.MethodPost, "/api/issues/{id}/solutions", s.addSolution)
		s.route(r, http.MethodGet, "/api/issues/{id}/similar", s.similarIssues)
	})

	s.handler = router

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Requests returns how many requests reached a route.
func (s *Server) Requests(route string) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.requests[route]
}

// IssueRequests returns how many requests reached any issue route.
func (s *Server) IssueRequests() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	total := 0

	for route, count := range s.requests {
		if strings.Contains(route, " /api/issues") {
			total += count
		}
	}

	return total
}

// Issue returns a copy of a stored issue.
func (s *Server) Issue(id string) (Issue, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return Issue{}, false
	}

	return *issue, true
}

// route registers a handler that is counted and subject to fault injection.
func (s *Server) route(r chi.Router, method, pattern string, handler http.HandlerFunc) {
	key := method + " " + pattern

	r.MethodFunc(method, pattern, func(w http.ResponseWriter, req *http.Request) {
		s.lock.Lock()
		s.requests[key]++
		status, fail := s.options.Failures[key]
		s.lock.Unlock()

		if fail {
			writeError(w, status, "injected failure")
			return
		}

		handler(w, req)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.lock.Lock()
		user, found := s.tokens[token]
		s.lock.Unlock()

		if !ok || !found || s.options.RejectAuth {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r, user)))
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Email == "" || request.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.users[request.Email]; ok {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	user := &User{
		ID:       uuid.NewString(),
		Email:    request.Email,
		Name:     request.Name,
		password: request.Password,
	}

	token := uuid.NewString()

	s.users[user.Email] = user
	s.tokens[token] = user

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	user, ok := s.users[request.Email]
	if !ok || user.password != request.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token := DemoToken
	if user.ID != DemoUserID {
		token = uuid.NewString()
		s.tokens[token] = user
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	if request.Priority == "" {
		request.Priority = "medium"
	}

	issue := &Issue{
		ID:          uuid.NewString(),
		Title:       request.Title,
		Description: request.Description,
		Priority:    request.Priority,
		Status:      "open",
		CreatedBy:   userFrom(r).ID,
		CreatedAt:   time.Now().UTC(),
		Solutions:   []Solution{},
	}

	s.lock.Lock()
	s.issues[issue.ID] = issue
	s.order = append(s.order, issue.ID)
	s.lock.Unlock()

	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	priority := query.Get("priority")
	status := query.Get("status")
	search := strings.ToLower(query.Get("search"))

	s.lock.Lock()
	defer s.lock.Unlock()

	issues := []*Issue{}

	for _, id := range s.order {
		issue := s.issues[id]

		if priority != "" && issue.Priority != priority {
			continue
		}

		if status != "" && issue.Status != status {
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(issue.Title+" "+issue.Description), search) {
			continue
		}

		issues = append(issues, issue)
	}

	writeJSON(w, http.StatusOK, issues)
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	issue, ok := s.issues[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	issue, ok := s.issues[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}

	if request.Title != nil {
		issue.Title = *request.Title
	}

	if request.Description != nil {
		issue.Description = *request.Description
	}

	if request.Priority != nil {
		issue.Priority = *request.Priority
	}

	if request.Status != nil {
		issue.Status = *request.Status
	}

	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) deleteIssue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.issues[id]; !ok {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}

	delete(s.issues, id)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == id })

	writeJSON(w, http.StatusOK, map[string]string{"message": "Issue deleted successfully"})
}

func (s *Server) addSolution(w http.ResponseWriter, r *http.Request) {
	var request struct {
		SolutionText string `json:"solution_text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.SolutionText == "" {
		writeError(w, http.StatusUnprocessableEntity, "solution_text is required")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	issue, ok := s.issues[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}

	solution := Solution{
		ID:           uuid.NewString(),
		SolutionText: request.SolutionText,
		CreatedBy:    userFrom(r).ID,
		CreatedAt:    time.Now().UTC(),
	}

	issue.Solutions = append(issue.Solutions, solution)

	writeJSON(w, http.StatusOK, solution)
}

// similarIssues returns issues sharing the priority or a title word.
func (s *Server) similarIssues(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	issue, ok := s.issues[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}

	words := strings.Fields(strings.ToLower(issue.Title))

	similar := []*Issue{}

	for _, id := range s.order {
		other := s.issues[id]
		if other.ID == issue.ID {
			continue
		}

		if other.Priority == issue.Priority || slices.ContainsFunc(words, func(word string) bool {
			return strings.Contains(strings.ToLower(other.Title), word)
		}) {
			similar = append(similar, other)
		}
	}

	writeJSON(w, http.StatusOK, similar)
}

func withUser(r *http.Request, user *User) context.Context {
	return context.WithValue(r.Context(), userKey{}, user)
}

func userFrom(r *http.Request) *User {
	//nolint:forcetypeassert // only reachable behind authenticate
	return r.Context().Value(userKey{}).(*User)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
