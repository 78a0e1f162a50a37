package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

type loginRequest struct {
	Email    string `json:"email" example:"admin@admin.com" validate:"required"`
	Password string `json:"password" example:"secret123" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// Login godoc
// @Summary Admin login
// @Description Exchange the admin credentials for a 24h bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body loginRequest true "Admin credentials"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} simpleResponse
// @Failure 401 {object} simpleResponse
// @Failure 429 {object} simpleResponse
// @Router /api/auth/login [post]
func (s *Server) Login(c echo.Context) error {
	ctx := c.Request().Context()
	ip := c.RealIP()
	if s.loginBlocked(ctx, ip) {
		return c.JSON(http.StatusTooManyRequests, simpleResponse{Success: false, Message: "Too many login attempts, please try again later."})
	}

	var req loginRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	req.Email = strings.TrimSpace(req.Email)

	info, err := s.SiteInfo.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Server not configured"})
	case errors.Is(err, services.ErrInvalidCredentials):
		s.recordLoginAttempt(ctx, req.Email, ip, false)
		return c.JSON(http.StatusUnauthorized, simpleResponse{Success: false, Message: "Invalid credentials"})
	case err != nil:
		return fail(c, err)
	}
	s.recordLoginAttempt(ctx, req.Email, ip, true)

	token, err := utils.GenerateJWT(info.ID, true, s.Cfg.JWTSecret, s.Cfg.JWTExpiry)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// VerifyToken godoc
// @Summary Check a bearer token
// @Description Reports whether the token in the Authorization header is still valid
// @Tags Authentication
// @Produce json
// @Success 200 {object} verifyResponse
// @Router /api/auth/verify [get]
func (s *Server) VerifyToken(c echo.Context) error {
	_, err := utils.ValidateJWT(bearerToken(c), s.Cfg.JWTSecret)
	return c.JSON(http.StatusOK, verifyResponse{Valid: err == nil})
}
