// Package mock provides a stub HTTP server for tests: canned responses
// matched by method and path pattern, with every received request recorded
// for assertions.
package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ReceivedRequest is one request the server saw, kept for assertions.
type ReceivedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
	Params  map[string]string // ':' captures; nil when no route matched
}

// Server is a stub HTTP server backed by httptest. It starts listening on
// creation and must be closed with Close.
type Server struct {
	router *Router
	server *httptest.Server
	delay  time.Duration

	mu       sync.Mutex
	received []ReceivedRequest
}

// Option is a functional option for Server.
type Option func(*Server)

// WithDelay adds a delay to all responses.
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// NewServer creates and starts a stub server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		router:   NewRouter(),
		received: make([]ReceivedRequest, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handleRequest))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// Handle registers a route serving the given canned response.
func (s *Server) Handle(method, pattern string, resp *StubResponse) {
	s.router.AddRoute(&Route{
		Method:   method,
		Pattern:  pattern,
		Response: resp,
	})
}

// HandleJSON registers a route serving body as JSON. Captured path params
// are substituted into the body as {{name}} placeholders.
func (s *Server) HandleJSON(method, pattern string, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("mock: cannot encode body for %s %s: %v", method, pattern, err))
	}
	s.Handle(method, pattern, &StubResponse{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        data,
	})
}

// HandleBinary registers a route serving raw bytes as an attachment.
func (s *Server) HandleBinary(method, pattern string, status int, data []byte, fileName string) {
	headers := map[string]string{}
	if fileName != "" {
		headers["Content-Disposition"] = `attachment; filename="` + fileName + `"`
	}
	s.Handle(method, pattern, &StubResponse{
		StatusCode:  status,
		ContentType: "application/octet-stream",
		Headers:     headers,
		Body:        data,
	})
}

// HandleError registers a route answering with an error status and a small
// JSON body naming it.
func (s *Server) HandleError(method, pattern string, status int) {
	s.HandleJSON(method, pattern, status, map[string]string{"error": http.StatusText(status)})
}

// Received returns all requests the server has seen, in arrival order.
func (s *Server) Received() []ReceivedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]ReceivedRequest, len(s.received))
	copy(result, s.received)
	return result
}

// Reset drops all recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = make([]ReceivedRequest, 0)
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
	}

	route, params := s.router.Match(r.Method, r.URL.Path)

	s.mu.Lock()
	s.received = append(s.received, ReceivedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Headers: r.Header.Clone(),
		Body:    body,
		Params:  params,
	})
	s.mu.Unlock()

	if route == nil {
		http.NotFound(w, r)
		return
	}

	resp := route.Response
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	w.Write(resolveBodyParams(resp, params))
}

func resolveBodyParams(resp *StubResponse, params map[string]string) []byte {
	if len(params) == 0 || strings.Contains(resp.ContentType, "octet-stream") {
		return resp.Body
	}
	body := string(resp.Body)
	for key, value := range params {
		body = strings.ReplaceAll(body, "{{"+key+"}}", value)
	}
	return []byte(body)
}
