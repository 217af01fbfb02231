package echoapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const apiKeyHeader = "x-api-key"

func secretMatches(given, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

// apiKeyMiddleware rejects requests whose x-api-key header is not the configured mobile key.
func apiKeyMiddleware(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !secretMatches(ctx.Request().Header.Get(apiKeyHeader), key) {
				return ctx.JSON(http.StatusUnauthorized, MobileResponse{Error: "Unauthorized"})
			}
			return next(ctx)
		}
	}
}

// cronSecretMiddleware rejects requests whose `secret` query param is not the configured cron secret.
func cronSecretMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !secretMatches(ctx.QueryParam("secret"), secret) {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: Invalid cron secret."})
			}
			return next(ctx)
		}
	}
}
