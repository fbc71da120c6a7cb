package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"promptvault/internal/api"
	"promptvault/internal/apperr"
	"promptvault/internal/auth"
)

type AuthHandler struct {
	Svc          *auth.Service
	CookieSecure bool
	SessionTTL   time.Duration
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	u, err := h.Svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		// a taken email is reported as a bad request, like any other rejected input
		if errors.Is(err, apperr.ErrValidation) || errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeServiceError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", u.ID.String()).Msg("user registered")
	writeJSON(w, http.StatusOK, api.User{ID: u.ID.String(), Email: u.Email})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	p, err := h.Svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	token, err := h.Svc.IssueToken(p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, api.User{ID: p.ID.String(), Email: p.Email, Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, api.User{ID: p.ID.String(), Email: p.Email})
}
