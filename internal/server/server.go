package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/akl7777777/whoami-probe/internal/model"
)

// Reporter builds the diagnostic report for a client.
type Reporter interface {
	Report(ctx context.Context, clientIP string) (*model.Report, error)
}

// Server is the HTTP server.
type Server struct {
	reporter Reporter
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a new HTTP server. CORS is applied in front of the mux.
func NewServer(reporter Reporter, corsOrigins []string) *Server {
	s := &Server{
		reporter: reporter,
		mux:      http.NewServeMux(),
	}
	s.routes()
	s.handler = NewCORS(corsOrigins).Handler(s.mux)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/{$}", s.handleReport)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	s.handler.ServeHTTP(rec, r)

	log.Printf("[http] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report, err := s.reporter.Report(r.Context(), ClientIP(r.Header, r.RemoteAddr))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &model.ErrorResponse{
		Error: msg,
		Code:  status,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
