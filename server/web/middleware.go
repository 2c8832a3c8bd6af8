package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/campushq/unievents/server/auth"
)

// auth resolves a bearer token or session cookie into a request identity.
// Requests without a valid session proceed anonymously; handlers that need a
// caller reject them.
func (h *handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := bearerToken(r)
		if token == "" {
			if cookie, err := r.Cookie("session"); err == nil {
				token = cookie.Value
			}
		}

		var identity auth.Identity
		if token != "" {
			session, err := h.Auth.GetSession(ctx, token)
			if err != nil {
				if !errors.Is(err, auth.ErrSessionNotFound) {
					slog.Error("failed to get session", slog.Any("err", err))
					respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
					return
				}
			} else {
				identity = auth.Identity{UserID: session.UserID}
			}
		}

		next.ServeHTTP(w, r.WithContext(auth.SetIdentity(ctx, identity)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

func (h *handler) rateLimit(next http.Handler) http.Handler {
	every := time.Duration(h.Cfg.RateLimit.Every)
	if every <= 0 || h.Cfg.RateLimit.Burst <= 0 {
		return next
	}

	limiter := rate.NewLimiter(rate.Every(every), h.Cfg.RateLimit.Burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
