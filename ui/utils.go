package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gosus/domain/core"
	apperrors "gosus/internal/errors"
	"gosus/internal/ingestion"
	"gosus/internal/session"

	"github.com/go-chi/chi/v5"
)

var errBusy = apperrors.Unavailable("too many analyses in progress, try again shortly")

// errorBody is the JSON shape of every failed request
type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	Line     int    `json:"line,omitempty"`
	Question int    `json:"question,omitempty"`
	Notice   string `json:"notice,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes it with the matching status
func (a *App) writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromDomain(err)
	status := apperrors.HTTPStatus(appErr.Code)

	body := errorBody{Code: appErr.Code, Message: appErr.Error()}

	var validation *ingestion.ValidationError
	if errors.As(err, &validation) {
		body.Kind = validation.Kind.String()
		body.Line = validation.Line
		body.Question = validation.Question
		body.Message = validation.Message
	}
	var unsupported *session.UnsupportedDesignError
	if errors.As(err, &unsupported) {
		body.Notice = unsupported.Notice.String()
		body.Message = unsupported.Notice.Text()
	}

	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	} else {
		a.logger.Debug("request rejected (%s): %v", appErr.Code, err)
	}
	writeJSON(w, status, map[string]errorBody{"error": body})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.InvalidInput("malformed request body: " + err.Error())
	}
	return nil
}

func sessionIDParam(r *http.Request) (core.SessionID, error) {
	id, err := core.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		return "", apperrors.NotFound("session")
	}
	return id, nil
}

func studyIndexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, apperrors.InvalidInput("study index must be an integer")
	}
	return index, nil
}
