// Package web provides the HTTP JSON API for guestbook comments.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evcraddock/portfolio/internal/comment"
	"github.com/evcraddock/portfolio/internal/db"
	"github.com/evcraddock/portfolio/internal/logging"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

// shutdownTimeout bounds how long in-flight requests may run after shutdown starts.
const shutdownTimeout = 10 * time.Second

// Server is the comment API HTTP server.
type Server struct {
	pool        *db.Pool
	commentRepo *comment.Repository
	mux         *http.ServeMux
	handler     http.Handler
	now         func() time.Time
}

// NewServer creates an API server on top of an already constructed pool.
// The pool does not need to be connected yet.
func NewServer(pool *db.Pool) *Server {
	s := &Server{
		pool:        pool,
		commentRepo: comment.NewRepository(pool.DB()),
		mux:         http.NewServeMux(),
		now:         time.Now,
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/comments", s.handleComments)
	s.mux.HandleFunc("/api/comments/", s.handleCommentRoute)
	s.mux.HandleFunc("/", s.handleNotFound)

	s.handler = logging.RequestLogger(recoverPanics(allowCORS(limitBody(s.mux))))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
