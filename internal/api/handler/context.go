package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// bearerToken extracts the raw bearer token from the Authorization header.
// The Auth middleware has already validated it; this is for operations that
// need the token itself (logout revocation).
func bearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
