package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/anatomyflash/internal/errors"
)

const defaultRequestTimeout = 10 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(timeout))
		r.Use(s.identityMiddleware)

		r.Get("/quiz/options", s.handleQuizOptions)
		r.Get("/quiz", s.handleCurrentQuiz)
		r.Post("/quiz/start", s.handleStartQuiz)
		r.Put("/quiz/answers/{questionID}", s.handleAnswer)
		r.Post("/quiz/submit", s.handleSubmitQuiz)
		r.Post("/quiz/cancel", s.handleCancelQuiz)
		r.Post("/quiz/another", s.handleTakeAnother)
		r.Post("/quiz/home", s.handleReturnHome)

		r.Get("/progress", s.handleProgress)
		r.Get("/progress/history", s.handleHistory)
		r.Get("/progress/recommendations", s.handleRecommendations)
		r.Post("/sections/{topic}/view", s.handleSectionView)
	})

	if s.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.StaticDir))))
	}
	return r
}
