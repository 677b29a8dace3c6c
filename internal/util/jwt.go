package util

import (
	"designhub_backend/internal/model"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "session"

type Claims struct {
	UserID string         `json:"id"`
	Role   model.UserRole `json:"role"`
	Email  string         `json:"email"`
	jwt.RegisteredClaims
}

// Session is the capability every learner-facing handler needs. It carries the
// verified identity and the raw bearer token forwarded to the backend.
type Session struct {
	UserID string
	Role   model.UserRole
	Email  string
	Token  string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == model.Admin
}

func GenerateJWT(userID string, role model.UserRole, email, secret string, expiration time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.UserID == "" {
			return nil, errors.New("token has no subject")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func SetSession(c *gin.Context, s *Session) {
	c.Set(sessionKey, s)
}

// GetSession returns the session stored by the auth middleware, or nil.
func GetSession(c *gin.Context) *Session {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	s, ok := v.(*Session)
	if !ok {
		return nil
	}
	return s
}
