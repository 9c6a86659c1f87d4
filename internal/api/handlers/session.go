package handlers

import (
	"net/http"

	"github.com/hugh/go-portal/internal/api/dto"
	"github.com/hugh/go-portal/internal/auth"
)

type SessionHandler struct {
	sessions auth.Sessions
}

func NewSessionHandler(sessions auth.Sessions) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Check only reports whether a session cookie was sent; it does not look
// up the identity behind it.
func (h *SessionHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.HasSession(r) {
		writeJSON(w, http.StatusUnauthorized, dto.SessionStatus{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, dto.SessionStatus{Authenticated: true})
}

// Logout returns a handler that drops the session and redirects to target.
func (h *SessionHandler) Logout(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, h.sessions.Revoke())
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
