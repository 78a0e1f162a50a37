package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/services"
)

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type changeEmailRequest struct {
	OldEmail string `json:"oldEmail"`
	NewEmail string `json:"newEmail"`
}

// AdminEmail godoc
// @Summary Current admin login e-mail
// @Tags SiteInfo
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} simpleResponse
// @Router /api/siteinfo/admin/email [get]
func (s *Server) AdminEmail(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if info.AdminEmail == "" {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{"adminEmail": info.AdminEmail})
	})
}

// AdminSiteInfo godoc
// @Summary Full site record
// @Description Everything except the password hash
// @Tags SiteInfo
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SiteInfo
// @Failure 401 {object} simpleResponse
// @Router /api/siteinfo/admin/all [get]
func (s *Server) AdminSiteInfo(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		return c.JSON(http.StatusOK, info)
	})
}

// ChangePassword godoc
// @Summary Change the admin password
// @Description Tokens issued before the change stop working
// @Tags SiteInfo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changePasswordRequest true "Old and new password"
// @Success 200 {object} simpleResponse
// @Failure 400 {object} simpleResponse
// @Router /api/siteinfo/password [put]
func (s *Server) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.SiteInfo.ChangePassword(c.Request().Context(), req.OldPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, simpleResponse{Success: true, Message: "Password updated"})
}

// ChangeAdminEmail godoc
// @Summary Change the admin login e-mail
// @Tags SiteInfo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changeEmailRequest true "Current and new e-mail"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} simpleResponse
// @Router /api/siteinfo/admin/email [put]
func (s *Server) ChangeAdminEmail(c echo.Context) error {
	var req changeEmailRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.SiteInfo.ChangeEmail(c.Request().Context(), req.OldEmail, req.NewEmail); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Email updated", "adminEmail": req.NewEmail})
}

func (s *Server) saveSiteContent(c echo.Context, status int) error {
	var req services.SiteContent
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	info, err := s.SiteInfo.UpdateContent(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(status, info)
}

// UpsertSiteInfo godoc
// @Summary Save site content
// @Description Admin credentials are never changed here. mapEmbedCode is reduced to a Google Maps embed URL; otherwise the stored map is kept.
// @Tags SiteInfo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SiteContent true "Content fields to change"
// @Success 201 {object} models.SiteInfo
// @Failure 400 {object} simpleResponse
// @Router /api/siteinfo [post]
func (s *Server) UpsertSiteInfo(c echo.Context) error {
	return s.saveSiteContent(c, http.StatusCreated)
}

// UpdateSiteInfo godoc
// @Summary Update site content
// @Tags SiteInfo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SiteContent true "Content fields to change"
// @Success 200 {object} models.SiteInfo
// @Failure 400 {object} simpleResponse
// @Router /api/siteinfo [put]
func (s *Server) UpdateSiteInfo(c echo.Context) error {
	return s.saveSiteContent(c, http.StatusOK)
}
