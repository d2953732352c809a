package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// The closed set of caller roles. Writes are gated on these; reads
// are open to any authenticated caller.
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
)

const principalKey = "principal"

// Principal is the authenticated caller, as attested by the gateway's
// JWT. It is attached to the gin context by JWTAuthMiddleware.
type Principal struct {
	Username string
	Role     string
}

// PrincipalFrom returns the request's principal, if one was attached.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// JWTAuthMiddleware validates the Bearer token and attaches the
// resulting Principal. Tokens must be HS256-signed with the shared
// secret and carry "username" and "role" claims.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	// If no secret is configured, we must fail closed.
	if secret == "" {
		panic("CRITICAL: JWT_SECRET environment variable not set.")
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Bearer token required"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid token"})
			return
		}

		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set(principalKey, Principal{Username: username, Role: role})

		c.Next()
	}
}

// RequireRole denies the request with the given reason unless the
// attached principal holds exactly the required role.
func RequireRole(role, reason string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok || p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds basic, sensible security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevents clickjacking
		c.Header("X-Frame-Options", "DENY")
		// Prevents MIME-type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		c.Next()
	}
}
