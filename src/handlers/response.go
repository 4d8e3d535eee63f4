// Package handlers holds the HTTP handlers. Each constructor takes the
// services it needs and returns an http.HandlerFunc.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fintrack-server/src/analytics"
	"fintrack-server/src/auth"
	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/util"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ledger.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, auth.ErrDuplicateUser), errors.Is(err, auth.ErrDuplicateEmail):
		return http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrLocked), errors.Is(err, auth.ErrNotInvited):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// respondError logs err on the request logger and writes the mapped
// status. Server errors log at ERROR, client errors at WARN.
func respondError(w http.ResponseWriter, r *http.Request, err error, msg string, attrs ...any) {
	status, clientMsg := statusFor(err)
	logger := logging.FromContext(r.Context())
	attrs = append(attrs, "status", status, "err", err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), msg, attrs...)
	} else {
		logger.WarnContext(r.Context(), msg, attrs...)
	}
	writeError(w, status, clientMsg)
}

func badRequest(field string, err error) error {
	return &ledger.ValidationError{Field: field, Message: err.Error()}
}

// pathID reads a positive id path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := util.URLParamID(r, name)
	if err != nil {
		return 0, badRequest(name, err)
	}
	return id, nil
}

// parseWindow reads the optional start_date and end_date query parameters.
func parseWindow(r *http.Request) (analytics.Window, error) {
	q := r.URL.Query()
	start, err := util.ParseOptionalDate(q.Get("start_date"))
	if err != nil {
		return analytics.Window{}, badRequest("start_date", err)
	}
	end, err := util.ParseOptionalDate(q.Get("end_date"))
	if err != nil {
		return analytics.Window{}, badRequest("end_date", err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return analytics.Window{}, &ledger.ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}
	return analytics.Window{Start: start, End: end}, nil
}

func optionalDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := util.ParseOptionalDate(*s)
	if err != nil {
		return nil, badRequest(field, err)
	}
	return t, nil
}

func requiredDate(field string, s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, &ledger.ValidationError{Field: field, Message: "is required"}
	}
	t, err := util.ParseDate(*s)
	if err != nil {
		return time.Time{}, badRequest(field, err)
	}
	return t, nil
}

func value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
