package httpadapter

import (
	"errors"
	"net/http"
	"time"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

type loginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequestBody
	if err := decodeJSONBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := rt.deps.Sessions.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := sessionResponse{Token: session.Token, UserID: session.UserID, Email: session.Email}
	if !session.ExpiresAt.IsZero() {
		resp.ExpiresAt = session.ExpiresAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) logout(w http.ResponseWriter, r *http.Request) {
	session, ok := domain.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.WrapError(domain.ErrUnauthorized, "logout", errors.New("no active session")))
		return
	}
	if err := rt.deps.Sessions.Logout(r.Context(), session); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
