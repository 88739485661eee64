package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/anatomyflash/internal/errors"
	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/quiz"
)

func (s *Server) handleQuizOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.QuizService.Options())
}

func (s *Server) handleCurrentQuiz(w http.ResponseWriter, r *http.Request) {
	sess, err := s.QuizService.Current(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.sessionView(r.Context(), sess))
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// Fields left out of the body keep their defaults.
	opts := quiz.DefaultOptions()
	if err := decodeJSON(w, r, &opts); err != nil {
		handleError(w, r, err)
		return
	}

	sess, err := s.QuizService.Start(r.Context(), userIDFromContext(r.Context()), opts)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("quiz started with %d questions", len(sess.Questions))
	writeJSON(w, r, http.StatusCreated, s.sessionView(r.Context(), sess))
}

type answerRequest struct {
	// Response is a string, an object of item to match, or null to clear.
	Response json.RawMessage `json:"response"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	var resp quiz.Response
	if raw := bytes.TrimSpace(req.Response); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		decoded, err := quiz.DecodeResponse(raw)
		if err != nil {
			handleError(w, r, errors.NewValidationError("response", err.Error()))
			return
		}
		resp = decoded
	}

	sess, err := s.QuizService.Answer(r.Context(), userIDFromContext(r.Context()), questionID, resp)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.sessionView(r.Context(), sess))
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	sess, err := s.QuizService.Submit(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.sessionView(r.Context(), sess))
}

func (s *Server) handleCancelQuiz(w http.ResponseWriter, r *http.Request) {
	sess, err := s.QuizService.Cancel(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.sessionView(r.Context(), sess))
}

func (s *Server) handleTakeAnother(w http.ResponseWriter, r *http.Request) {
	sess, err := s.QuizService.TakeAnother(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.sessionView(r.Context(), sess))
}

func (s *Server) handleReturnHome(w http.ResponseWriter, r *http.Request) {
	sess, nav, err := s.QuizService.ReturnHome(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"session":  s.sessionView(r.Context(), sess),
		"redirect": nav,
	})
}
