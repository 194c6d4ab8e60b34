// Package auth guards the sandbox's HTTP transport with a bearer token.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// unauthorized mirrors the body Discord returns for a bad token so clients
// exercising the sandbox see the same shape.
type unauthorized struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewAuthMiddleware returns middleware that requires
//
//	Authorization: Bearer <token>
//
// on every request. The prefix is case-sensitive. An empty token disables the
// check. Rejections are logged at debug level and answered with 401.
func NewAuthMiddleware(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || provided == "" {
				logger.Debug("auth rejected", "reason", "missing bearer token", "remote", r.RemoteAddr)
				reject(w)
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), want) != 1 {
				logger.Debug("auth rejected", "reason", "token mismatch", "remote", r.RemoteAddr)
				reject(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="discordmock"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(unauthorized{Message: "401: Unauthorized", Code: 0})
}
