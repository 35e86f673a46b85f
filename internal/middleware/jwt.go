package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"chronik/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	JWTSecret = []byte("chronik-secret-change-me")
	TokenTTL  = 7 * 24 * time.Hour
)

// TokenCookie carries the session token for the rendered journal page.
const TokenCookie = "chronik_token"

const sessionKey = "session"

type Claims struct {
	Name string `json:"name"`
	GM   bool   `json:"gm"`
	jwt.RegisteredClaims
}

func IssueToken(s service.Session) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: s.DisplayName(),
		GM:   s.GM(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
		},
	}).SignedString(JWTSecret)
}

func parseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func tokenFrom(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return auth[7:]
	}
	if v, err := c.Cookie(TokenCookie); err == nil {
		return v
	}
	return ""
}

// JWTAuth requires a session token and stores the session in the context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := parseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		accept(c, claims)
		c.Next()
	}
}

// OptionalJWT reads a session token when one is sent. Without one the
// request acts as an unnamed player.
func OptionalJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFrom(c); raw != "" {
			if claims, err := parseToken(raw); err == nil {
				accept(c, claims)
			}
		}
		c.Next()
	}
}

func accept(c *gin.Context, claims *Claims) {
	s := service.NewSession(claims.Name, claims.GM)
	c.Set(sessionKey, s)

	// renew when less than a day is left
	if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < 24*time.Hour {
		if renewed, err := IssueToken(s); err == nil {
			c.Header("X-New-Token", renewed)
		}
	}
}

func SessionFrom(c *gin.Context) service.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(service.Session); ok {
			return s
		}
	}
	return service.Session{}
}

// RequireReady answers 503 until the journal has finished its initial load.
func RequireReady(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "loading"})
			return
		}
		c.Next()
	}
}
