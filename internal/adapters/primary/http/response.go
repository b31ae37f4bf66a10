package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
)

const maxBodyBytes = 64 << 10

var errInvalidJSON = errors.New("invalid JSON body")

// JSONHandler : un handler qui renvoie une erreur, traduite en statut HTTP ici.
type JSONHandler func(w http.ResponseWriter, r *http.Request) error

func (h JSONHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("❌ Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeJSON(w, status, errorResponse{Error: msg})
	}
}

// statusFor : 403 et 404 ont toujours le même message, quelle que soit la cause.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidJSON):
		return http.StatusBadRequest, errInvalidJSON.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, domain.PublicMessage(err)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusInternalServerError, domain.ErrDeliveryFailed.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON : un corps vide vaut un objet vide.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidJSON
	}
	return nil
}
