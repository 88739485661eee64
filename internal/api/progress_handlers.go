package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/anatomyflash/internal/models"
)

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	overview, err := s.ProgressService.Overview(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, overview)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := historyFilter(r, userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	report, err := s.ProgressService.History(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ProgressService.Recommendations(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

func (s *Server) handleSectionView(w http.ResponseWriter, r *http.Request) {
	topic := models.Topic(chi.URLParam(r, "topic"))

	if err := s.ProgressService.RecordView(r.Context(), userIDFromContext(r.Context()), topic); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
