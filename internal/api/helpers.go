package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vytor/anatomyflash/internal/errors"
	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/models"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

// historyFilter reads category, difficulty, limit and offset from the query.
func historyFilter(r *http.Request, userID string) (models.HistoryFilter, error) {
	q := r.URL.Query()
	f := models.HistoryFilter{
		UserID:     userID,
		Category:   models.Topic(q.Get("category")),
		Difficulty: models.Difficulty(q.Get("difficulty")),
	}
	if f.Category == models.AnyTopic {
		f.Category = ""
	}

	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		return f, errors.NewValidationError("limit", "must be a non-negative integer")
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		return f, errors.NewValidationError("offset", "must be a non-negative integer")
	}
	return f, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
