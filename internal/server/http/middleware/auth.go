package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
	"github.com/polkiloo/erpcore/internal/server/http/dto"
)

// PrincipalContextKey is a gin context key for the authenticated principal.
const PrincipalContextKey = "principal"

// TokenParser resolves bearer tokens.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Principal, error)
}

// AuthRequired ensures the caller presents a valid bearer token.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Envelope{Error: "missing bearer token"})
			return
		}

		principal, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Envelope{Error: "invalid bearer token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Envelope{Error: "internal server error"})
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// Principal returns the authenticated principal stored by AuthRequired.
func Principal(c *gin.Context) (pkgAuth.Principal, bool) {
	val, ok := c.Get(PrincipalContextKey)
	if !ok {
		return pkgAuth.Principal{}, false
	}
	p, ok := val.(pkgAuth.Principal)
	return p, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
