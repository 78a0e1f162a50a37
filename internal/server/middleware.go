package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/utils"
)

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// JWTMiddleware validates the bearer token and stores its claims in the
// context. Tokens issued for an earlier site record or before the last
// password change are rejected.
func (s *Server) JWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, simpleResponse{Success: false, Message: "No token, auth denied"})
			}
			claims, err := utils.ValidateJWT(token, s.Cfg.JWTSecret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, simpleResponse{Success: false, Message: "Token invalid"})
			}

			info, err := s.SiteInfo.Get(c.Request().Context())
			if err != nil || info.ID != claims.ID {
				return c.JSON(http.StatusUnauthorized, simpleResponse{Success: false, Message: "Token invalid"})
			}
			if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(info.PasswordChangedAt) {
				return c.JSON(http.StatusUnauthorized, simpleResponse{Success: false, Message: "Token invalid"})
			}

			c.Set("claims", claims)
			return next(c)
		}
	}
}
