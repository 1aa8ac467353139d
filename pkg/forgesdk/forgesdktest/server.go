// Package forgesdktest provides an in-memory ForgeERP backend for tests.
//
// It speaks the same JSON as the real service (FastAPI error envelopes,
// 201 on create, 204 on delete, soft deletes hidden from lists) and records
// every request so tests can assert call counts and payloads.
package forgesdktest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/golang-jwt/jwt/v5"
)

// Call is one request the backend received.
type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

// Has reports whether the JSON body carried field, even as null.
func (c Call) Has(field string) bool {
	_, ok := c.Body[field]
	return ok
}

type failure struct {
	status int
	detail any
}

type account struct {
	password string
	user     forgesdk.User
}

// Server is an httptest server backed by in-memory state.
type Server struct {
	*httptest.Server

	// TokenTTL sets the exp claim on issued tokens.
	TokenTTL time.Duration

	mu             sync.Mutex
	accounts       map[string]account
	tokens         map[string]string
	clients        []forgesdk.Client
	configurations []forgesdk.Configuration
	nextID         int64
	tokenSeq       int
	calls          []Call
	failures       map[string]failure
	now            func() time.Time
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		TokenTTL: 30 * time.Minute,
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
		failures: make(map[string]failure),
		nextID:   1,
		now:      time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/auth/me", s.authed(s.handleMe))
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/clients", s.authed(s.handleListClients))
	mux.HandleFunc("POST /api/v1/clients", s.authed(s.handleCreateClient))
	mux.HandleFunc("PATCH /api/v1/clients/{id}", s.authed(s.handleUpdateClient))
	mux.HandleFunc("DELETE /api/v1/clients/{id}", s.authed(s.handleDeleteClient))
	mux.HandleFunc("GET /api/v1/configurations", s.authed(s.handleListConfigurations))
	mux.HandleFunc("POST /api/v1/configurations", s.authed(s.handleCreateConfiguration))
	mux.HandleFunc("PATCH /api/v1/configurations/{id}", s.authed(s.handleUpdateConfiguration))
	mux.HandleFunc("DELETE /api/v1/configurations/{id}", s.authed(s.handleDeleteConfiguration))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// ============================================================================
// Seeding and inspection
// ============================================================================

// AddUser registers an account. Empty Role defaults to "admin".
func (s *Server) AddUser(username, password string, user forgesdk.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Username = username
	if user.Role == "" {
		user.Role = "admin"
	}
	if user.ID == 0 {
		user.ID = int64(len(s.accounts) + 1)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = forgesdk.Timestamp{Time: s.now().UTC()}
		user.UpdatedAt = user.CreatedAt
	}
	s.accounts[username] = account{password: password, user: user}
}

// IssueToken returns a valid access token for username without a login call.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(username)
}

// RevokeTokens invalidates every token issued so far.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.tokens)
}

// SeedClients appends active clients. Zero ids are assigned.
func (s *Server) SeedClients(clients ...forgesdk.Client) []forgesdk.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]forgesdk.Client, 0, len(clients))
	for _, c := range clients {
		if c.ID == 0 {
			c.ID = s.allocID()
		} else if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
		s.stampClient(&c)
		s.clients = append(s.clients, c)
		out = append(out, c)
	}
	return out
}

// SeedConfigurations appends active configurations. Zero ids are assigned.
func (s *Server) SeedConfigurations(configs ...forgesdk.Configuration) []forgesdk.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]forgesdk.Configuration, 0, len(configs))
	for _, c := range configs {
		if c.ID == 0 {
			c.ID = s.allocID()
		} else if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
		if c.ValueType == "" {
			c.ValueType = "string"
		}
		c.IsActive = true
		s.configurations = append(s.configurations, c)
		out = append(out, c)
	}
	return out
}

// Fail makes every method+path request answer status with detail until
// ClearFailures. detail may be a string or a FastAPI validation list.
func (s *Server) Fail(method, path string, status int, detail any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, detail: detail}
}

// ClearFailures removes every injected failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failures)
}

// Calls returns a copy of the recorded requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded requests matching method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// CallCount counts recorded requests matching method and path.
func (s *Server) CallCount(method, path string) int {
	return len(s.CallsTo(method, path))
}

// ResetCalls forgets recorded requests.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// ============================================================================
// Middleware
// ============================================================================

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{Method: r.Method, Path: r.URL.Path}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			raw, err := readAll(r)
			if err == nil && json.Unmarshal(raw, &body) == nil {
				call.Body = body
			}
		}

		s.mu.Lock()
		s.calls = append(s.calls, call)
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			writeJSON(w, f.status, map[string]any{"detail": f.detail})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		_, valid := s.tokens[token]
		s.mu.Unlock()

		if !ok || !valid {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r)
	}
}

// ============================================================================
// Auth handlers
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, forgesdk.HealthResponse{Status: "healthy", Service: "forgeerp"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req forgesdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[req.Username]
	if !ok || acct.password != req.Password {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	writeJSON(w, http.StatusOK, forgesdk.TokenResponse{AccessToken: s.issue(req.Username), TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	acct := s.accounts[s.tokens[token]]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// issue mints a token. Caller holds mu.
func (s *Server) issue(username string) string {
	now := s.now()
	s.tokenSeq++
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		ID:        strconv.Itoa(s.tokenSeq),
	}).SignedString([]byte("forgesdktest"))

	s.tokens[token] = username
	return token
}

// ============================================================================
// Client handlers
// ============================================================================

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := forgesdk.ClientList{Clients: []forgesdk.Client{}}
	for _, c := range s.clients {
		if c.IsActive {
			list.Clients = append(list.Clients, c)
		}
	}
	list.Total = len(list.Clients)
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req forgesdk.ClientCreate
	if !decodeBody(w, r, &req) {
		return
	}
	if issues := missing(map[string]string{"name": req.Name, "code": req.Code}); issues != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.Code == req.Code {
			writeDetail(w, http.StatusBadRequest, "Client code already exists")
			return
		}
	}

	c := forgesdk.Client{
		ID:              s.allocID(),
		Name:            req.Name,
		Code:            req.Code,
		Email:           req.Email,
		Domain:          req.Domain,
		NamespacePrefix: req.NamespacePrefix,
	}
	s.stampClient(&c)
	s.clients = append(s.clients, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if !decodeBody(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findClient(r.PathValue("id"))
	if c == nil {
		writeDetail(w, http.StatusNotFound, "Client not found")
		return
	}

	for field, raw := range patch {
		switch field {
		case "name":
			_ = json.Unmarshal(raw, &c.Name)
		case "email":
			_ = json.Unmarshal(raw, &c.Email)
		case "domain":
			_ = json.Unmarshal(raw, &c.Domain)
		case "is_active":
			_ = json.Unmarshal(raw, &c.IsActive)
		case "onboarding_completed":
			_ = json.Unmarshal(raw, &c.OnboardingCompleted)
		}
	}
	c.UpdatedAt = forgesdk.Timestamp{Time: s.now().UTC()}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findClient(r.PathValue("id"))
	if c == nil {
		writeDetail(w, http.StatusNotFound, "Client not found")
		return
	}
	c.IsActive = false
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) findClient(rawID string) *forgesdk.Client {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil
	}
	for i := range s.clients {
		if s.clients[i].ID == id && s.clients[i].IsActive {
			return &s.clients[i]
		}
	}
	return nil
}

func (s *Server) stampClient(c *forgesdk.Client) {
	now := forgesdk.Timestamp{Time: s.now().UTC()}
	c.IsActive = true
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// ============================================================================
// Configuration handlers
// ============================================================================

func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := forgesdk.ConfigurationList{Configurations: []forgesdk.Configuration{}}
	for _, c := range s.configurations {
		if c.IsActive {
			list.Configurations = append(list.Configurations, c)
		}
	}
	list.Total = len(list.Configurations)
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req forgesdk.ConfigurationCreate
	if !decodeBody(w, r, &req) {
		return
	}
	if issues := missing(map[string]string{"key": req.Key, "value": req.Value}); issues != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
		return
	}
	if req.ValueType == "" {
		req.ValueType = "string"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := forgesdk.Configuration{
		ID:          s.allocID(),
		ClientID:    req.ClientID,
		ModuleID:    req.ModuleID,
		Key:         req.Key,
		Value:       req.Value,
		ValueType:   req.ValueType,
		Description: req.Description,
		IsActive:    true,
	}
	s.configurations = append(s.configurations, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if !decodeBody(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findConfiguration(r.PathValue("id"))
	if c == nil {
		writeDetail(w, http.StatusNotFound, "Configuration not found")
		return
	}

	for field, raw := range patch {
		switch field {
		case "value":
			_ = json.Unmarshal(raw, &c.Value)
		case "value_type":
			_ = json.Unmarshal(raw, &c.ValueType)
		case "description":
			_ = json.Unmarshal(raw, &c.Description)
		case "is_active":
			_ = json.Unmarshal(raw, &c.IsActive)
		}
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findConfiguration(r.PathValue("id"))
	if c == nil {
		writeDetail(w, http.StatusNotFound, "Configuration not found")
		return
	}
	c.IsActive = false
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) findConfiguration(rawID string) *forgesdk.Configuration {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil
	}
	for i := range s.configurations {
		if s.configurations[i].ID == id && s.configurations[i].IsActive {
			return &s.configurations[i]
		}
	}
	return nil
}

// allocID returns the next id. Caller holds mu.
func (s *Server) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}
