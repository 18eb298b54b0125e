package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "intake/pkg/errors"
)

// BearerAuth accepts requests carrying an HS256 token signed with secret.
// An empty secret disables the check.
func BearerAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}

	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			unauthorized(c)
			return
		}

		parsed, err := parser.Parse(strings.TrimSpace(token), func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !parsed.Valid {
			unauthorized(c)
			return
		}

		if sub, err := parsed.Claims.GetSubject(); err == nil && sub != "" {
			c.Set("admin_subject", sub)
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(apperrors.ErrUnauthorized.Status, gin.H{
		"success": false,
		"message": apperrors.ErrUnauthorized.Message,
	})
}
