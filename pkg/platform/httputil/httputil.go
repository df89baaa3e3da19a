// Package httputil centralizes JSON encoding and domain-error translation for
// the HTTP layer so handlers stay thin.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "shopfloor/pkg/domain-errors"
)

// errorBody is the wire shape for all error responses.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error code to an HTTP status and writes the JSON
// error body. Internal errors omit the description so storage details never
// leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeInvalidState, dErrors.CodeBadRequest:
		status = http.StatusBadRequest
	case dErrors.CodeConflict:
		status = http.StatusConflict
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
	}

	body := errorBody{Error: errorLabel(code)}
	var dErr *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &dErr) {
		body.ErrorDescription = dErr.Message
	}
	WriteJSON(w, status, body)
}

func errorLabel(code dErrors.Code) string {
	if code == dErrors.CodeInternal {
		return "internal_error"
	}
	return string(code)
}

// Decode unmarshals a JSON request body into T, translating decode failures
// into a logged bad_request response. The second return value reports whether
// the handler should proceed.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return req, false
	}
	return req, true
}
