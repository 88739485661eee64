package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/anatomyflash/internal/errors"
	"github.com/vytor/anatomyflash/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr := errors.From(err)

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	body := map[string]any{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	if err := json.NewEncoder(w).Encode(map[string]any{"error": body}); err != nil {
		log.Error("failed to encode error response: %v", err)
	}
}
