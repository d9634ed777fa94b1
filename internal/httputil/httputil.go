// Package httputil holds the JSON response and request helpers shared by the
// HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/validation"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteErrorMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteError maps err onto its HTTP status. Unclassified errors are logged
// and reported as a generic 500.
func WriteError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := apperror.StatusCode(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "err", err)
	}
	WriteErrorMessage(w, status, apperror.PublicMessage(err))
}

// Decode reads a JSON body into dst and validates it. Unknown fields are
// rejected.
func Decode(r *http.Request, op string, dst any) error {
	if err := DecodeJSON(r, op, dst); err != nil {
		return err
	}
	return validation.Struct(op, dst)
}

// DecodeJSON is Decode without struct validation, for handlers whose
// service must authorize the caller before judging the input.
func DecodeJSON(r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.Validation(op, "request body too large")
		case errors.Is(err, io.EOF):
			return apperror.Validation(op, "request body is required")
		default:
			return apperror.Validation(op, "invalid JSON body")
		}
	}
	return nil
}
