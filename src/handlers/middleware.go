// backend/src/handlers/middleware.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/security"
	"github.com/username/budgetvisor/backend/src/utils"
)

type contextKey string

const (
	requestIDContextKey contextKey = "requestID"
	sessionIDContextKey contextKey = "sessionID"
)

// ContextualLoggerMiddleware creates a logger carrying a request ID for each
// request and embeds it in the context.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware validates the Bearer session token and puts the session
// ID into the request context. Every data route runs behind it: the token is
// the only thing tying a browser's uploads and reports together.
type SessionMiddleware struct {
	sessionService *security.SessionService
}

func NewSessionMiddleware(sessionService *security.SessionService) *SessionMiddleware {
	return &SessionMiddleware{sessionService: sessionService}
}

func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger := logger.FromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ctxLogger.Debug("SessionMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "session token required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			ctxLogger.Debug("SessionMiddleware: token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "malformed session token", http.StatusUnauthorized)
			return
		}

		sessionID, err := m.sessionService.ValidateToken(tokenString)
		if err != nil {
			ctxLogger.Warn("SessionMiddleware: token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "invalid or expired session token", http.StatusUnauthorized)
			return
		}

		enrichedLogger := ctxLogger.With(slog.String("sessionID", sessionID))
		ctx := logger.ToContext(r.Context(), enrichedLogger)
		ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionIDFromContext extracts the validated session ID.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	return sessionID, ok && sessionID != ""
}
