package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-insurance-api/internal/application/session"
	"github.com/go-insurance-api/internal/pkg/validate"
	"github.com/go-insurance-api/internal/transport/http/middleware"
)

type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) writeLoginResult(w http.ResponseWriter, res *session.LoginResult) {
	// Browsers get the access token as a cookie too, so subsequent requests
	// work without an Authorization header.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    res.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, AuthEnvelope{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Session:      res.Session,
		User:         res.User,
		Message:      "logged in",
	})
}

// Login handles POST /sessions/login.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.writeLoginResult(w, res)
}

// LoginGoogle handles POST /sessions/login/google.
func (h *SessionHandler) LoginGoogle(w http.ResponseWriter, r *http.Request) {
	var req session.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.LoginWithGoogle(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.writeLoginResult(w, res)
}

// Refresh handles POST /sessions/refresh.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req session.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Refresh(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.writeLoginResult(w, res)
}

// Current handles GET /sessions/current.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sess, err := h.svc.GetCurrent(r.Context(), claims.SessionID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Session: sess, User: sess.User})
}

// Logout handles POST /sessions/logout.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Logout(r.Context(), claims.SessionID); err != nil {
		httpError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
