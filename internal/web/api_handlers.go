package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/portfolio/internal/comment"
	"github.com/evcraddock/portfolio/internal/logging"
)

const (
	msgHealthy        = "Portfolio Backend API is running"
	msgFieldsRequired = "All fields are required"
	msgInvalidEmail   = "Invalid email format"
	msgInvalidBody    = "Invalid request body"
	msgBodyTooLarge   = "Request body too large"
	msgListFailed     = "Failed to fetch comments"
	msgAdded          = "Comment added successfully"
	msgAddFailed      = "Failed to add comment"
	msgDeleted        = "Comment deleted"
	msgDeleteFailed   = "Failed to delete comment"
	msgNotFound       = "Comment not found"
	msgCountFailed    = "Failed to count comments"
	msgNoRoute        = "Endpoint not found"
	msgInternal       = "Internal server error"
)

// envelope is the failure body shared by every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

type listResponse struct {
	Success  bool               `json:"success"`
	Comments []*comment.Comment `json:"comments"`
}

type createResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Comment *comment.Comment `json:"comment"`
}

type countResponse struct {
	Success bool  `json:"success"`
	Total   int64 `json:"total"`
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiError writes a failure envelope.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, envelope{Success: false, Message: msg}, code)
}

// serverError logs the underlying error and answers with a generic message.
func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg,
		"request_id", logging.RequestID(r.Context()),
		"error", err,
	)
	apiError(w, msg, http.StatusInternalServerError)
}

// handleNotFound answers every unmatched route.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	apiError(w, msgNoRoute, http.StatusNotFound)
}

// handleHealth reports liveness without touching the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.handleNotFound(w, r)
		return
	}

	database := "connecting"
	if s.pool.Ready() {
		database = "connected"
	}

	apiJSON(w, healthResponse{
		Status:    "OK",
		Message:   msgHealthy,
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Database:  database,
	}, http.StatusOK)
}

// handleComments routes /api/comments.
func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.apiListComments(w, r)
	case http.MethodPost:
		s.apiAddComment(w, r)
	default:
		s.handleNotFound(w, r)
	}
}

// handleCommentRoute routes /api/comments/{id} and /api/comments/count.
func (s *Server) handleCommentRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/comments/")

	switch {
	case path == "":
		s.handleComments(w, r)
	case path == "count" && r.Method == http.MethodGet:
		s.apiCountComments(w, r)
	case !strings.Contains(path, "/") && r.Method == http.MethodDelete:
		s.apiDeleteComment(w, r, path)
	default:
		s.handleNotFound(w, r)
	}
}

// apiListComments returns every comment, newest first.
func (s *Server) apiListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.commentRepo.List(r.Context())
	if err != nil {
		serverError(w, r, msgListFailed, err)
		return
	}
	apiJSON(w, listResponse{Success: true, Comments: comments}, http.StatusOK)
}

// apiAddComment validates and stores a new comment, echoing the stored row.
func (s *Server) apiAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    interface{} `json:"name"`
		Email   interface{} `json:"email"`
		Comment interface{} `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apiError(w, msgBodyTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		apiError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	in := comment.Input{
		Name:    textField(req.Name),
		Email:   textField(req.Email),
		Comment: textField(req.Comment),
	}

	c, err := s.commentRepo.Add(r.Context(), in)
	switch {
	case errors.Is(err, comment.ErrFieldsRequired):
		apiError(w, msgFieldsRequired, http.StatusBadRequest)
		return
	case errors.Is(err, comment.ErrInvalidEmail):
		apiError(w, msgInvalidEmail, http.StatusBadRequest)
		return
	case err != nil:
		serverError(w, r, msgAddFailed, err)
		return
	}

	apiJSON(w, createResponse{Success: true, Message: msgAdded, Comment: c}, http.StatusCreated)
}

// apiDeleteComment removes a comment by ID. No ownership check is made.
func (s *Server) apiDeleteComment(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		// Nothing can match a non-numeric id.
		apiError(w, msgNotFound, http.StatusNotFound)
		return
	}

	err = s.commentRepo.Delete(r.Context(), id)
	if errors.Is(err, comment.ErrNotFound) {
		apiError(w, msgNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, r, msgDeleteFailed, err)
		return
	}

	apiJSON(w, envelope{Success: true, Message: msgDeleted}, http.StatusOK)
}

// apiCountComments returns the total number of comments.
func (s *Server) apiCountComments(w http.ResponseWriter, r *http.Request) {
	total, err := s.commentRepo.Count(r.Context())
	if err != nil {
		serverError(w, r, msgCountFailed, err)
		return
	}
	apiJSON(w, countResponse{Success: true, Total: total}, http.StatusOK)
}

// textField converts an untyped JSON value into comment text. Falsy values
// (null, "", 0, false) and structured values count as missing.
func textField(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}
