package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/service"
	"github.com/rs/zerolog/log"
)

const IdentityContextKey = "identity"

// IdentityMiddleware resolves the session cookie into the current identity.
// The user row is read on every request so a changed employer flag applies
// at once and a session for a vanished account is dropped.
func IdentityMiddleware(sessions *session.Manager, authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessions.Load(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		user, err := authService.Identify(ctx, claims.UserID)
		switch {
		case err == nil:
			c.Set(IdentityContextKey, user.Identity(claims.Persistent))
		case errors.Is(err, service.ErrNotFound):
			log.Ctx(ctx).Info().Int64("user_id", claims.UserID).Msg("session for unknown user cleared")
			sessions.Clear(c)
		default:
			// Serve the request anonymously rather than fail it
			log.Ctx(ctx).Error().Err(err).Msg("failed to resolve session")
		}

		c.Next()
	}
}

// CurrentIdentity returns the identity bound to the request, or nil when the
// request is anonymous.
func CurrentIdentity(c *gin.Context) *domain.Identity {
	v, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil
	}
	who, _ := v.(*domain.Identity)
	return who
}
