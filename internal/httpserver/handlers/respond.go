package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ysohn/markdrive/internal/domain"
)

const sessionHeader = "X-Session-Token"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the store/sync error taxonomy onto HTTP statuses.
// Anything unrecognized is a 500 with a generic body.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		cycle      *domain.CycleError
		denied     *domain.AccessDeniedError
		inProgress *domain.SyncInProgressError
		syncTie    *domain.SyncConflictError
	)

	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.As(err, &validation):
		status, msg = http.StatusBadRequest, validation.Error()
	case errors.As(err, &notFound):
		status, msg = http.StatusNotFound, notFound.Error()
	case errors.As(err, &conflict):
		status, msg = http.StatusConflict, conflict.Error()
	case errors.As(err, &cycle):
		status, msg = http.StatusConflict, cycle.Error()
	case errors.As(err, &denied):
		status, msg = http.StatusForbidden, denied.Error()
	case errors.As(err, &inProgress):
		status, msg = http.StatusConflict, inProgress.Error()
	case errors.As(err, &syncTie):
		status, msg = http.StatusConflict, syncTie.Error()
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads the request body into v; a malformed body is a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed json body"})
		return false
	}
	return true
}

func sessionID(r *http.Request) string {
	return r.Header.Get(sessionHeader)
}
