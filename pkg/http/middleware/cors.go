package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORS returns CORS middleware allowing the given origins.
func CORS(allowOrigins []string) echo.MiddlewareFunc {
	allowAll := len(allowOrigins) > 0 && allowOrigins[0] == "*"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")

			allowed := allowAll
			if !allowed {
				for _, o := range allowOrigins {
					if o == origin {
						allowed = true
						break
					}
				}
			}
			if !allowed {
				return next(c)
			}

			h := c.Response().Header()
			if origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
			} else if allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			h.Set("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodPost, http.MethodOptions,
			}, ", "))
			h.Set("Access-Control-Allow-Headers", strings.Join([]string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			}, ", "))

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
