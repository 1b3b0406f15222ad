package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	"github.com/complyance/governance/infrastructure/http/response"
)

const ActorHeader = "X-Actor-ID"

type actorKey struct{}

// ActorMiddleware decides who is recorded as performing an operation: the
// subject of a bearer token, then the X-Actor-ID header, then SYSTEM. It
// does not authorize anything. A bearer token that fails validation is
// rejected rather than silently ignored.
type ActorMiddleware struct {
	tokenService outbound.TokenService
}

// NewActorMiddleware accepts a nil tokenService, in which case bearer tokens
// are ignored.
func NewActorMiddleware(tokenService outbound.TokenService) *ActorMiddleware {
	return &ActorMiddleware{tokenService: tokenService}
}

func (m *ActorMiddleware) ResolveActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := entity.SystemActor

		if header := strings.TrimSpace(r.Header.Get(ActorHeader)); header != "" {
			actor = header
		}

		if m.tokenService != nil {
			if token, ok := bearerToken(r); ok {
				claims, err := m.tokenService.ValidateAccessToken(token)
				if err != nil {
					response.Unauthorized(w, "Invalid or expired token")
					return
				}
				actor = claims.Subject
			}
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns SYSTEM when no actor was resolved.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return entity.SystemActor
}
