// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"crm-insights/internal/common/auth"
	apperrors "crm-insights/internal/common/errors"
	"crm-insights/internal/common/logger"
	"crm-insights/internal/models"
)

// SessionLookup resolves a bearer token to a session.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*models.Session, error)
}

// Auth attaches the caller behind a bearer token to the request context.
// Missing, unknown or expired tokens leave the request anonymous; handlers
// decide whether that is acceptable. A failing session store is a 500.
func Auth(sessions SessionLookup, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.Lookup(r.Context(), token)
			switch {
			case err == nil:
				caller := session.Caller()
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), &caller)))
			case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrSessionExpired):
				next.ServeHTTP(w, r)
			default:
				stdErr := apperrors.NewSessionLookupFailedError(err)
				log.Error("session lookup failed", map[string]interface{}{
					"requestId": GetRequestID(r.Context()),
					"error":     err.Error(),
				})
				WriteError(w, stdErr)
			}
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func WithCaller(ctx context.Context, caller *models.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the authenticated caller, or nil for anonymous requests.
func CallerFrom(ctx context.Context) *models.Caller {
	caller, _ := ctx.Value(callerKey).(*models.Caller)
	return caller
}
