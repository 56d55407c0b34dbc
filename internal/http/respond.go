package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"iuran/internal/auth"
	"iuran/internal/core"
)

// envelope is the uniform response shape: exactly one of Data and Error
// is set. Meta carries response qualifiers such as the stale flag.
type envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
	Meta  *meta     `json:"meta,omitempty"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type meta struct {
	Stale bool `json:"stale"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

func writeStaleData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data, Meta: &meta{Stale: true}})
}

// writeDomainError maps the shared error taxonomy onto HTTP statuses.
// Anything unrecognized is a 500 with the detail kept out of the body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Error: &apiError{
			Code:    "validation_failed",
			Message: "one or more fields are invalid",
			Fields:  ve.Fields,
		}})
	case errors.Is(err, core.ErrInvalidPeriod):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Error: &apiError{
			Code:    "invalid_period",
			Message: "month must be 1-12 and year positive",
		}})
	case errors.Is(err, core.ErrInvalidAmount):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Error: &apiError{
			Code:    "invalid_amount",
			Message: "amount must be a positive decimal",
		}})
	case errors.Is(err, core.ErrInsufficientBalance):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Error: &apiError{
			Code:    "insufficient_balance",
			Message: "amount exceeds the period balance",
		}})
	case errors.Is(err, core.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, envelope{Error: &apiError{
			Code:    "invalid_transition",
			Message: "the record is already in a terminal state",
		}})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Error: &apiError{
			Code:    "not_found",
			Message: "no such record",
		}})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, envelope{Error: &apiError{
			Code:    "invalid_credentials",
			Message: "username or password is incorrect",
		}})
	case errors.Is(err, core.ErrStoreUnavailable):
		slog.ErrorContext(r.Context(), "Store unavailable", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, envelope{Error: &apiError{
			Code:    "store_unavailable",
			Message: "the ledger store is temporarily unavailable",
		}})
	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Error: &apiError{
			Code:    "internal",
			Message: "internal server error",
		}})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Error: &apiError{
		Code:    "bad_request",
		Message: message,
	}})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="iuran"`)
	writeJSON(w, http.StatusUnauthorized, envelope{Error: &apiError{
		Code:    "unauthorized",
		Message: message,
	}})
}

func writeForbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, envelope{Error: &apiError{
		Code:    "forbidden",
		Message: "the session lacks the required capability",
	}})
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, envelope{Error: &apiError{
		Code:    "rate_limited",
		Message: "too many requests, slow down",
	}})
}

// decodeBody parses a JSON request body into dst, rejecting unknown fields
// so client typos surface instead of being silently dropped.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
