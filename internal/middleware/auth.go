package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/entity"
	"talib.app/backend/pkg/apperror"
	"talib.app/backend/pkg/response"
	"talib.app/backend/pkg/token"
)

var bearerPattern = regexp.MustCompile(`^Bearer\s+(\S+)$`)

type AuthMiddleware struct {
	tokens *token.Manager
}

func NewAuthMiddleware(tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// bearerToken extracts the token from the Authorization header. WebSocket
// clients cannot set headers, so the upgrade path may pass it as ?token=.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		matches := bearerPattern.FindStringSubmatch(authHeader)
		if len(matches) != 2 {
			return "", false
		}
		return matches[1], true
	}

	if c.IsWebsocket() {
		if t := c.Query("token"); t != "" {
			return t, true
		}
	}

	return "", false
}

func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	tokenString, ok := bearerToken(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "authorization required")
		return false
	}

	claims, err := m.tokens.Parse(tokenString)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, err.Error())
		return false
	}

	c.Set(response.ContextUserID, claims.UserID)
	c.Set(response.ContextRole, claims.Role)
	return true
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets anonymous requests through.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := m.tokens.Parse(tokenString); err == nil {
				c.Set(response.ContextUserID, claims.UserID)
				c.Set(response.ContextRole, claims.Role)
			}
		}
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := response.GetRole(c)
		if role == "" {
			response.Fail(c, http.StatusUnauthorized, "authorization required")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Fail(c, http.StatusForbidden, "insufficient permissions")
	}
}

// CurrentActor returns the authenticated caller.
func CurrentActor(c *gin.Context) (entity.Actor, error) {
	userID, err := response.GetUserID(c)
	if err != nil {
		return entity.Actor{}, err
	}
	role := response.GetRole(c)
	if role == "" {
		return entity.Actor{}, apperror.ErrUnauthorized
	}
	return entity.Actor{ID: userID, Role: role}, nil
}

// OptionalActor returns the caller if one was identified; anonymous callers get a zero Actor.
func OptionalActor(c *gin.Context) entity.Actor {
	actor, err := CurrentActor(c)
	if err != nil {
		return entity.Actor{}
	}
	return actor
}

// ViewerKey identifies the caller for view counting: the account when signed in, the client IP otherwise.
func ViewerKey(c *gin.Context) string {
	if actor, err := CurrentActor(c); err == nil {
		return actor.Role + ":" + actor.ID.String()
	}
	return "ip:" + c.ClientIP()
}
