package middleware

import (
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"
	"designhub_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// bearerToken reads the Authorization header. Websocket handshakes may carry the
// token in the query instead since browsers cannot set headers on them.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

func authenticate(c *gin.Context, secret string) (*util.Session, error) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, util.ErrNoSession
	}
	claims, err := util.ParseJWT(tokenString, secret)
	if err != nil {
		return nil, err
	}
	return &util.Session{
		UserID: claims.UserID,
		Role:   claims.Role,
		Email:  claims.Email,
		Token:  tokenString,
	}, nil
}

// AuthMiddleware requires a valid bearer token and stores the resulting session.
// The token itself is kept so it can be forwarded to the marketplace backend.
func AuthMiddleware(secret func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := authenticate(c, secret())
		if err != nil {
			if err != util.ErrNoSession {
				logger.Log.Debug("rejected bearer token", zap.Error(err), zap.String("path", c.FullPath()))
			}
			util.Unauthorized(c)
			c.Abort()
			return
		}

		util.SetSession(c, sess)
		c.Next()
	}
}

// TryAuthMiddleware stores a session when a valid token is present and lets
// anonymous requests through.
func TryAuthMiddleware(secret func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess, err := authenticate(c, secret()); err == nil {
			util.SetSession(c, sess)
		}
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := util.GetSession(c)
		if sess == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		// admins pass every role check
		hasRole := sess.IsAdmin()
		for _, role := range roles {
			if sess.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
