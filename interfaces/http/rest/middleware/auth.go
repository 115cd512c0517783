package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/stoat/Mewton-family-tree/pkg/auth"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"

	"go.uber.org/zap"
)

// Authenticate rejects requests whose bearer token the verifier does not
// accept. The verifier decides what an absent token means: with auth
// disabled it accepts everything.
func Authenticate(verifier auth.TokenVerifier, errs *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if !verifier.Verify(r.Context(), token) {
				logger.Debug("Rejected token",
					zap.String("ip", getClientIP(r)),
					zap.String("path", r.URL.Path),
					zap.Bool("present", token != ""),
				)
				msg := "Invalid token"
				if token == "" {
					msg = "Missing authentication token"
				}
				errs.Handle(w, r, apperrors.NewUnauthorizedError(msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per client IP.
func RateLimit(limiter *auth.IPRateLimiter, errs *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	limit, window := limiter.Limit()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Error("Rate limiter error", zap.Error(err))
				errs.Handle(w, r, apperrors.NewInternalError("Internal server error").WithCause(err))
				return
			}
			if !allowed {
				logger.Warn("Rate limit exceeded", zap.String("ip", clientIP), zap.String("path", r.URL.Path))
				errs.Handle(w, r, apperrors.NewRateLimitError(limit, window.String()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// getClientIP extracts the client IP address. chi's RealIP middleware has
// already folded X-Forwarded-For and X-Real-IP into RemoteAddr.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
