package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

type loginRequest struct {
	Password     string `json:"password"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	ok, err := h.captcha.Verify(r.Context(), req.CaptchaToken)
	if err != nil {
		h.respondError(w, r, errors.Wrap(err, "verify captcha"))
		return
	}
	if !ok {
		badRequest(w, "captcha verification failed")
		return
	}

	token, err := h.gateway.Login(req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.gateway.SessionTTL()),
	})
}

// requireAdmin gates the back office: a valid bearer token must be presented
// before any admin read or mutation runs.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		if err := h.gateway.ValidateToken(token); err != nil {
			h.respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
