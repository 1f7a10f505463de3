package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/CyresSmith/projects-tracker-backend/internal/model"
	"github.com/CyresSmith/projects-tracker-backend/internal/payload"
	"github.com/CyresSmith/projects-tracker-backend/internal/repository"
	"github.com/CyresSmith/projects-tracker-backend/shared/auth"
)

type contextKey struct{}

var clientContextKey = contextKey{}

// ClientFromContext returns the authenticated client stored by the
// Authenticate middleware.
func ClientFromContext(ctx context.Context) (*model.Client, bool) {
	client, ok := ctx.Value(clientContextKey).(*model.Client)
	return client, ok
}

// RequestLogger logs every request with its status and duration.
func RequestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// AuthMiddleware guards the session-protected routes.
type AuthMiddleware struct {
	clientRepo repository.ClientRepository
	jwtAuth    auth.JWTAuthenticator
	secret     string
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(
	clientRepo repository.ClientRepository,
	jwtAuth auth.JWTAuthenticator,
	secret string,
) *AuthMiddleware {
	return &AuthMiddleware{
		clientRepo: clientRepo,
		jwtAuth:    jwtAuth,
		secret:     secret,
	}
}

// Authenticate validates the bearer session token and checks it is still
// the one persisted on the client record, then stores the client on the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			respondMessage(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		tokenString := parts[1]

		claims := &payload.SessionClaims{}
		if _, err := m.jwtAuth.ValidateTokenWithClaims(tokenString, m.secret, claims); err != nil {
			respondMessage(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		client, err := m.clientRepo.GetClient(r.Context(), claims.Client.ID)
		if err != nil || client.SessionToken != tokenString {
			respondMessage(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		ctx := context.WithValue(r.Context(), clientContextKey, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
