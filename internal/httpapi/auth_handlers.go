package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"societyhub.org/internal/audit"
	"societyhub.org/internal/society"
)

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in society.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.svc.Register(r.Context(), in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.Record(r.Context(), "user.registered",
		zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *society.User `json:"user"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.svc.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	token, expiry, err := a.tokens.Issue(u.Identity())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.Record(r.Context(), "user.login", zap.String("user_id", u.ID))
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiry, User: u})
}
