// Package emercurytest provides an in-process Emercury API for tests.
package emercurytest

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Address mirrors the wire address object.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Content mirrors one entry of the wire contents list.
type Content struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Payload mirrors the send request body.
type Payload struct {
	From     Address   `json:"from"`
	To       Address   `json:"to"`
	Subject  string    `json:"subject"`
	ReplyTo  *Address  `json:"replyTo,omitempty"`
	Contents []Content `json:"contents,omitempty"`
}

// Request is one recorded call to the send endpoint.
type Request struct {
	Header  http.Header
	Payload Payload
	Raw     []byte
}

// Fields decodes the raw body into a generic map, for asserting on which
// keys are present.
func (r Request) Fields() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(r.Raw, &m)
	return m
}

type reply struct {
	body   string
	status int
}

// Server is a fake Emercury API served over TLS.
type Server struct {
	srv      *httptest.Server
	token    string
	requests []Request
	replies  []reply

	mu sync.Mutex
}

// NewServer starts a server that accepts token as the API key.
// The server is closed when the test finishes.
func NewServer(t testing.TB, token string) *Server {
	t.Helper()

	s := &Server{token: token}

	r := chi.NewRouter()
	r.Use(middleware.AllowContentType("application/json"))
	r.Post("/api/mail/send", s.handleSend)

	s.srv = httptest.NewTLSServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// Reply queues a one-shot response returned to the next send request,
// ahead of token checks.
func (s *Server) Reply(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, reply{status: status, body: body})
}

// Requests returns all recorded send requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Client returns an HTTP client that trusts the server certificate.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Host returns the server's IP address.
func (s *Server) Host() string {
	return s.addr().IP.String()
}

// Port returns the server's TCP port.
func (s *Server) Port() int {
	return s.addr().Port
}

// Close shuts the server down; later requests fail at the transport level.
func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) addr() *net.TCPAddr {
	return s.srv.Listener.Addr().(*net.TCPAddr)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rec := Request{Header: r.Header.Clone(), Raw: raw}
	_ = json.Unmarshal(raw, &rec.Payload)

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	var next *reply
	if len(s.replies) > 0 {
		next = &s.replies[0]
		s.replies = s.replies[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case next != nil:
		w.WriteHeader(next.status)
		_, _ = io.WriteString(w, next.body)
	case r.Header.Get("X-Emercury-Token") != s.token:
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"status":{"code":7,"details":["invalid token"]}}`)
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"messageId": uuid.NewString()},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
