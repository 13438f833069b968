package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"societyhub.org/internal/identity"
	"societyhub.org/internal/obs"
	"societyhub.org/internal/policy"
	"societyhub.org/internal/society"
)

// writeError emits the standard error envelope with the request id attached.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeErrorCode(w, r, code, "", msg)
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	payload := map[string]any{"error": msg}
	if code != "" {
		payload["code"] = code
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, status, payload)
}

// handleDomainError is the single place domain errors become status codes.
// Handlers never map errors themselves.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated), errors.Is(err, identity.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, policy.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, society.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, policy.ErrInvalidTransition):
		// Stable code: clients distinguish workflow rejections from plain
		// conflicts without parsing the message.
		writeErrorCode(w, r, http.StatusConflict, "invalid_state_transition", transitionMessage(err))
	case errors.Is(err, society.ErrConflict):
		writeError(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, society.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, inputMessage(err))
	case errors.Is(err, society.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		obs.Logger().Error("unhandled error", zap.Error(err),
			zap.String("request_id", RequestIDFromContext(r.Context())))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func transitionMessage(err error) string {
	var te *policy.TransitionError
	if errors.As(err, &te) {
		return te.Error()
	}
	return "invalid status transition"
}

// inputMessage strips the sentinel prefix so clients see only the human part.
func inputMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
