package api

import (
	"net/http"

	"github.com/vytor/anatomyflash/internal/logger"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady returns 200 when the progress backend and, if configured, the
// session store answer a ping; 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if err := s.ProgressService.Ready(ctx); err != nil {
		log.Warn("readiness check failed - progress store: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Progress store unavailable"))
		return
	}

	if s.Sessions != nil {
		if err := s.Sessions.Ping(ctx); err != nil {
			log.Warn("readiness check failed - session store: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Session store unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
