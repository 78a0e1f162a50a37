package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/utils"
)

// AdminMiddleware requires the admin claim. It must run after JWTMiddleware.
func (s *Server) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("claims").(*utils.Claims)
			if !ok || !claims.IsAdmin {
				return c.JSON(http.StatusForbidden, simpleResponse{Success: false, Message: "Admin privileges required"})
			}
			return next(c)
		}
	}
}
