package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/auth/jwt"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
)

// JWTAuthMiddleware requires a valid bearer token and stores the principal in the context
func JWTAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, reason := authenticate(c, jwtService)
		if reason != "" {
			c.AbortWithStatusJSON(errorx.StatusOf(errorx.ErrUnauthenticated), gin.H{"error": errorx.Unauthenticated(reason)})
			return
		}
		c.Set(cnst.CtxKeyPrincipal, p)
		c.Next()
	}
}

// OptionalAuthMiddleware stores the principal when a valid token is present and lets anonymous requests through
func OptionalAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if p, reason := authenticate(c, jwtService); reason == "" {
				c.Set(cnst.CtxKeyPrincipal, p)
			}
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *jwt.Service) (access.Principal, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return access.Principal{}, "missing bearer token"
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return access.Principal{}, "malformed authorization header"
	}
	claims, err := jwtService.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return access.Principal{}, err.Error()
	}
	return access.Principal{UserID: claims.UserID, Role: claims.Role}, ""
}

// PrincipalFrom returns the principal set by the auth middleware. Anonymous requests get the zero Principal.
func PrincipalFrom(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(cnst.CtxKeyPrincipal)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}
