package opensearchtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Request is a recorded incoming request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// Option configures the fake server.
type Option func(*Server)

// WithTLS serves over HTTPS with the httptest self-signed certificate.
func WithTLS() Option {
	return func(s *Server) { s.tls = true }
}

// WithBasicAuth rejects requests that do not carry these credentials.
func WithBasicAuth(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithUnhealthy makes the ping endpoint answer 503.
func WithUnhealthy() Option {
	return func(s *Server) { s.unhealthy = true }
}

// Server is an in-memory OpenSearch node.
type Server struct {
	*httptest.Server

	tls       bool
	username  string
	password  string
	unhealthy bool

	mu       sync.Mutex
	indices  map[string]*index
	scrolls  map[string]*cursor
	failures map[string]int
	requests []Request
	seq      int
}

type index struct {
	order   []string
	docs    map[string]map[string]any
	mapping json.RawMessage
}

type cursor struct {
	index string
	ids   []string
	size  int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		indices:  make(map[string]*index),
		scrolls:  make(map[string]*cursor),
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	handler := http.HandlerFunc(s.serveHTTP)
	if s.tls {
		s.Server = httptest.NewTLSServer(handler)
	} else {
		s.Server = httptest.NewServer(handler)
	}
	t.Cleanup(s.Close)
	return s
}

// CreateIndex creates an empty index if it does not exist.
func (s *Server) CreateIndex(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexFor(name, true)
}

// Put stores doc under id, creating the index when needed.
func (s *Server) Put(indexName, id string, doc any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexFor(indexName, true).put(id, toSource(doc))
}

// Doc returns the stored source of a document.
func (s *Server) Doc(indexName, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexFor(indexName, false)
	if idx == nil {
		return nil, false
	}
	doc, ok := idx.docs[id]
	return doc, ok
}

// Count returns the number of documents in an index.
func (s *Server) Count(indexName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexFor(indexName, false)
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// IDs returns the document ids of an index in insertion order.
func (s *Server) IDs(indexName string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexFor(indexName, false)
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.order...)
}

// Mapping returns the last mapping body put on an index.
func (s *Server) Mapping(indexName string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexFor(indexName, false)
	if idx == nil {
		return nil
	}
	return idx.mapping
}

// OpenScrolls returns the number of live scroll cursors.
func (s *Server) OpenScrolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scrolls)
}

// Fail makes every request whose path ends with suffix answer with status.
// A zero status removes the rule.
func (s *Server) Fail(suffix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, suffix)
		return
	}
	s.failures[suffix] = status
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests returns how many recorded requests match method and path suffix.
func (s *Server) CountRequests(method, suffix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			n++
		}
	}
	return n
}

func (s *Server) indexFor(name string, create bool) *index {
	idx, ok := s.indices[name]
	if !ok && create {
		idx = &index{docs: make(map[string]map[string]any)}
		s.indices[name] = idx
	}
	return idx
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%06d", prefix, s.seq)
}

func (idx *index) put(id string, doc map[string]any) {
	if _, ok := idx.docs[id]; !ok {
		idx.order = append(idx.order, id)
	}
	idx.docs[id] = doc
}

func (idx *index) remove(id string) bool {
	if _, ok := idx.docs[id]; !ok {
		return false
	}
	delete(idx.docs, id)
	for i, v := range idx.order {
		if v == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return true
}

func toSource(doc any) map[string]any {
	if m, ok := doc.(map[string]any); ok {
		return m
	}
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	return m
}
