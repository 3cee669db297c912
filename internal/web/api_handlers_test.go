package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/portfolio/internal/comment"
	"github.com/evcraddock/portfolio/internal/db"
)

// testServer creates a server on a connected temporary SQLite pool.
func testServer(t *testing.T) (*Server, *db.Pool) {
	t.Helper()
	pool, err := db.NewPool(db.Options{Dialect: db.SQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(func() {
		if cerr := pool.Close(); cerr != nil {
			t.Errorf("close pool: %v", cerr)
		}
	})
	if err := pool.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return NewServer(pool), pool
}

func apiRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = &bytes.Buffer{}
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

type testEnvelope struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Comment  *comment.Comment   `json:"comment"`
	Comments []*comment.Comment `json:"comments"`
	Total    *int64             `json:"total"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func validBody() map[string]string {
	return map[string]string{"name": "Al", "email": "a@b.co", "comment": "Hello there friend"}
}

func countComments(t *testing.T, srv *Server) int64 {
	t.Helper()
	w := apiRequest(t, srv, "GET", "/api/comments/count", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("count status = %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Total == nil {
		t.Fatal("count response missing total")
	}
	return *env.Total
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return fixed }

	w := apiRequest(t, srv, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}

	var resp healthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "OK" {
		t.Errorf("status = %q, want OK", resp.Status)
	}
	if resp.Message == "" {
		t.Error("expected message")
	}
	if resp.Timestamp != "2026-10-18T12:00:00.000Z" {
		t.Errorf("timestamp = %q", resp.Timestamp)
	}
	if resp.Database != "connected" {
		t.Errorf("database = %q, want connected", resp.Database)
	}
}

func TestHealthDoesNotNeedDatabase(t *testing.T) {
	pool, err := db.NewPool(db.Options{Dialect: db.SQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	srv := NewServer(pool)

	w := apiRequest(t, srv, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"database":"connecting"`) {
		t.Errorf("body = %s, want database connecting", w.Body.String())
	}
}

func TestAPIListCommentsEmpty(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/comments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"comments":[]`) {
		t.Errorf("body = %s, want empty array", w.Body.String())
	}
}

func TestAPIAddComment(t *testing.T) {
	srv, _ := testServer(t)

	before := time.Now().UTC().Truncate(time.Millisecond)
	w := apiRequest(t, srv, "POST", "/api/comments", validBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("expected success")
	}
	if env.Message != msgAdded {
		t.Errorf("message = %q", env.Message)
	}
	if env.Comment == nil {
		t.Fatal("expected comment in response")
	}
	if env.Comment.ID == 0 {
		t.Error("expected fresh id")
	}
	if env.Comment.Name != "Al" {
		t.Errorf("name = %q, want Al", env.Comment.Name)
	}
	if env.Comment.CreatedAt.Before(before) {
		t.Errorf("created_at = %v, want >= %v", env.Comment.CreatedAt, before)
	}
}

func TestAPIAddCommentValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		code    int
		message string
	}{
		{"missing name", map[string]string{"email": "a@b.co", "comment": "Hello there friend"}, http.StatusBadRequest, msgFieldsRequired},
		{"missing email", map[string]string{"name": "Al", "comment": "Hello there friend"}, http.StatusBadRequest, msgFieldsRequired},
		{"missing comment", map[string]string{"name": "Al", "email": "a@b.co"}, http.StatusBadRequest, msgFieldsRequired},
		{"empty name", map[string]string{"name": "", "email": "a@b.co", "comment": "Hello there friend"}, http.StatusBadRequest, msgFieldsRequired},
		{"null name", `{"name":null,"email":"a@b.co","comment":"Hello there friend"}`, http.StatusBadRequest, msgFieldsRequired},
		{"false name", `{"name":false,"email":"a@b.co","comment":"Hello there friend"}`, http.StatusBadRequest, msgFieldsRequired},
		{"object name", `{"name":{"a":1},"email":"a@b.co","comment":"Hello there friend"}`, http.StatusBadRequest, msgFieldsRequired},
		{"bad email", map[string]string{"name": "Al", "email": "not-an-email", "comment": "Hello there friend"}, http.StatusBadRequest, msgInvalidEmail},
		{"email without tld", map[string]string{"name": "Al", "email": "a@b", "comment": "Hello there friend"}, http.StatusBadRequest, msgInvalidEmail},
		{"malformed json", `{"name":`, http.StatusBadRequest, msgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)

			w := apiRequest(t, srv, "POST", "/api/comments", tt.body)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}
			env := decodeEnvelope(t, w)
			if env.Success {
				t.Error("expected success=false")
			}
			if env.Message != tt.message {
				t.Errorf("message = %q, want %q", env.Message, tt.message)
			}

			if n := countComments(t, srv); n != 0 {
				t.Errorf("count = %d, want 0 (nothing persisted)", n)
			}
		})
	}
}

// Length minimums are a client-side rule only; the API accepts short values.
func TestAPIAddCommentAcceptsShortName(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "POST", "/api/comments", map[string]string{"name": "a", "email": "a@b.co", "comment": "short"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestAPIAddCommentNumericField(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "POST", "/api/comments", `{"name":42,"email":"a@b.co","comment":"Hello there friend"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	env := decodeEnvelope(t, w)
	if env.Comment.Name != "42" {
		t.Errorf("name = %q, want 42", env.Comment.Name)
	}
}

func TestAPIAddCommentBodyTooLarge(t *testing.T) {
	srv, _ := testServer(t)

	big := fmt.Sprintf(`{"name":"Al","email":"a@b.co","comment":"%s"}`, strings.Repeat("x", maxBodyBytes+1))
	w := apiRequest(t, srv, "POST", "/api/comments", big)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestAPIListOrder(t *testing.T) {
	srv, _ := testServer(t)

	for _, text := range []string{"first comment here", "second comment here", "third comment here"} {
		body := validBody()
		body["comment"] = text
		if w := apiRequest(t, srv, "POST", "/api/comments", body); w.Code != http.StatusCreated {
			t.Fatalf("add status = %d", w.Code)
		}
	}

	w := apiRequest(t, srv, "GET", "/api/comments", nil)
	env := decodeEnvelope(t, w)
	if len(env.Comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(env.Comments))
	}
	if env.Comments[0].Comment != "third comment here" {
		t.Errorf("first = %q, want newest", env.Comments[0].Comment)
	}
	for i := 1; i < len(env.Comments); i++ {
		if env.Comments[i].CreatedAt.After(env.Comments[i-1].CreatedAt) {
			t.Errorf("comment %d is newer than comment %d", i, i-1)
		}
	}
}

func TestAPIDeleteNotFound(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"never created", "/api/comments/9999"},
		{"non-numeric", "/api/comments/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			if w := apiRequest(t, srv, "POST", "/api/comments", validBody()); w.Code != http.StatusCreated {
				t.Fatalf("add status = %d", w.Code)
			}

			w := apiRequest(t, srv, "DELETE", tt.path, nil)
			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
			}
			if env := decodeEnvelope(t, w); env.Message != msgNotFound {
				t.Errorf("message = %q, want %q", env.Message, msgNotFound)
			}
			if n := countComments(t, srv); n != 1 {
				t.Errorf("count = %d, want 1 (unchanged)", n)
			}
		})
	}
}

func TestAPIDeleteTwice(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "POST", "/api/comments", validBody())
	id := decodeEnvelope(t, w).Comment.ID
	path := fmt.Sprintf("/api/comments/%d", id)

	if w := apiRequest(t, srv, "DELETE", path, nil); w.Code != http.StatusOK {
		t.Fatalf("first delete status = %d", w.Code)
	}
	if w := apiRequest(t, srv, "DELETE", path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPIUnmatchedRoutes(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/"},
		{"GET", "/api/unknown"},
		{"PUT", "/api/comments"},
		{"PATCH", "/api/comments/1"},
		{"GET", "/api/comments/1"},
		{"POST", "/api/comments/count"},
		{"DELETE", "/api/comments/1/extra"},
		{"POST", "/api/health"},
	}

	srv, _ := testServer(t)
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := apiRequest(t, srv, tt.method, tt.path, nil)
			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
			}
			env := decodeEnvelope(t, w)
			if env.Success || env.Message != msgNoRoute {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestAPIDatabaseErrorsAreGeneric(t *testing.T) {
	srv, pool := testServer(t)
	if err := pool.DB().Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	tests := []struct {
		method, path string
		body         interface{}
		message      string
	}{
		{"GET", "/api/comments", nil, msgListFailed},
		{"POST", "/api/comments", validBody(), msgAddFailed},
		{"DELETE", "/api/comments/1", nil, msgDeleteFailed},
		{"GET", "/api/comments/count", nil, msgCountFailed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := apiRequest(t, srv, tt.method, tt.path, tt.body)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
			}
			if strings.Contains(w.Body.String(), "sql") {
				t.Errorf("body leaks internals: %s", w.Body.String())
			}
			if env := decodeEnvelope(t, w); env.Success || env.Message != tt.message {
				t.Errorf("envelope = %+v, want message %q", env, tt.message)
			}
		})
	}
}

func TestPanicRecovered(t *testing.T) {
	srv, _ := testServer(t)
	srv.mux.HandleFunc("/api/explode", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := apiRequest(t, srv, "GET", "/api/explode", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("panic value leaked to caller")
	}
	if env := decodeEnvelope(t, w); env.Message != msgInternal {
		t.Errorf("message = %q, want %q", env.Message, msgInternal)
	}
}

func TestCORS(t *testing.T) {
	srv, _ := testServer(t)

	r := httptest.NewRequest("OPTIONS", "/api/comments", nil)
	r.Header.Set("Origin", "https://example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	r.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "content-type" {
		t.Errorf("allow-headers = %q", got)
	}

	w = apiRequest(t, srv, "GET", "/api/comments", nil)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin on GET = %q", got)
	}
}

func TestEndToEnd(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "POST", "/api/comments", validBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	created := decodeEnvelope(t, w).Comment
	if created.Name != "Al" {
		t.Fatalf("name = %q, want Al", created.Name)
	}

	w = apiRequest(t, srv, "GET", "/api/comments", nil)
	list := decodeEnvelope(t, w).Comments
	if len(list) == 0 || list[0].ID != created.ID {
		t.Fatalf("first listed comment is not the created one: %+v", list)
	}

	total := countComments(t, srv)
	if total != int64(len(list)) {
		t.Errorf("count = %d, list length = %d", total, len(list))
	}

	w = apiRequest(t, srv, "DELETE", fmt.Sprintf("/api/comments/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if env := decodeEnvelope(t, w); !env.Success || env.Message != msgDeleted {
		t.Errorf("delete envelope = %+v", env)
	}

	if after := countComments(t, srv); after != total-1 {
		t.Errorf("count after delete = %d, want %d", after, total-1)
	}

	w = apiRequest(t, srv, "GET", "/api/comments", nil)
	for _, c := range decodeEnvelope(t, w).Comments {
		if c.ID == created.ID {
			t.Error("deleted comment still listed")
		}
	}
}
