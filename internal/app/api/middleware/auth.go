package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/billhound/billhound/pkg/config"
	"github.com/billhound/billhound/pkg/response"
)

// AuthMiddleware validates the bearer token and attaches the user identity to
// both gin.Context and the request context. The "sub" claim is the owner id;
// an optional "email" claim rides along for billing flows.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing bearer token"))
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(cfg.Auth.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid token claims"))
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "token missing subject"))
			return
		}

		c.Set("userID", sub)
		if email, _ := claims["email"].(string); email != "" {
			c.Set("userEmail", email)
		}
		ctx := context.WithValue(c.Request.Context(), "user_id", sub)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CronKeyMiddleware guards scheduler-only routes with a shared key.
func CronKeyMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.CronKey == "" || c.GetHeader("X-Cron-Key") != cfg.Auth.CronKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid cron key"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated owner id set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}

// UserEmail returns the authenticated user's email claim, possibly empty.
func UserEmail(c *gin.Context) string {
	return c.GetString("userEmail")
}
