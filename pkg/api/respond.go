package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
)

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case pgerrors.IsNotFound(err):
		return http.StatusNotFound
	}
	switch pgerrors.GetCode(err) {
	case pgerrors.ErrCodeInvalidInput, pgerrors.ErrCodeInvalidFormat, pgerrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case pgerrors.ErrCodeInvalidGraph, pgerrors.ErrCodeInvalidConfig:
		return http.StatusUnprocessableEntity
	case pgerrors.ErrCodeNotReady:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := string(pgerrors.GetCode(err))
	if code == "" {
		code = string(pgerrors.ErrCodeInternal)
	}
	writeJSON(w, status, ErrorResponse{Error: pgerrors.UserMessage(err), Code: code})
}
