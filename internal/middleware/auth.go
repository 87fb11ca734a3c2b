package middleware

import (
	"net/http"
	"strings"

	"stock-service/pkg/jwtutil"
	"stock-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantContextMiddleware extracts the tenant identity from a bearer token
// issued by the external identity provider. A request without a token passes
// through and must identify its tenant with an explicit email parameter; a
// request with an invalid token is rejected.
func TenantContextMiddleware(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			if claims.Email == "" {
				log.Warn("JWT token does not contain tenant email")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required in the token"})
			}

			// Store tenant identity in context for the handlers
			c.Set("email", claims.Email)
			c.Set("entreprise_name", claims.EntrepriseName)
			log.Info("Request authenticated with tenant context",
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}
