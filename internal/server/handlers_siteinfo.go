package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/mail"
	"github.com/flyva/travel-backend/internal/models"
)

// publicSiteInfo is the site content without the admin credentials.
type publicSiteInfo struct {
	ContactEmail  string              `json:"contactEmail"`
	ContactPhone  string              `json:"contactPhone"`
	ContactWA     string              `json:"contactWA"`
	AddressText   string              `json:"addressText"`
	MapEmbedCode  string              `json:"mapEmbedCode"`
	AboutInfo     string              `json:"aboutInfo"`
	AboutUsLong   []models.AboutBlock `json:"aboutUsLong"`
	FAQ           []models.FAQItem    `json:"faq"`
	PrivacyPolicy []models.Section    `json:"privacyPolicy"`
	Terms         []models.Section    `json:"terms"`
	Booking       models.BookingInfo  `json:"booking"`
}

// withSite loads the site record and hands it to fn; a missing record is a
// 404.
func (s *Server) withSite(c echo.Context, fn func(info *models.SiteInfo) error) error {
	info, err := s.SiteInfo.Get(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return fn(info)
}

// PublicSiteInfo godoc
// @Summary Public site content
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} publicSiteInfo
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public [get]
func (s *Server) PublicSiteInfo(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		return c.JSON(http.StatusOK, publicSiteInfo{
			ContactEmail:  info.ContactEmail,
			ContactPhone:  info.ContactPhone,
			ContactWA:     info.ContactWA,
			AddressText:   info.AddressText,
			MapEmbedCode:  info.MapEmbedCode,
			AboutInfo:     info.AboutInfo,
			AboutUsLong:   info.AboutUsLong,
			FAQ:           info.FAQ,
			PrivacyPolicy: info.PrivacyPolicy,
			Terms:         info.Terms,
			Booking:       info.Booking,
		})
	})
}

// PublicAboutLong godoc
// @Summary Long "about us" blocks
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/about-long [get]
func (s *Server) PublicAboutLong(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if len(info.AboutUsLong) == 0 {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{"aboutUsLong": info.AboutUsLong})
	})
}

// PublicPrivacy godoc
// @Summary Privacy policy sections
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/privacy [get]
func (s *Server) PublicPrivacy(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if len(info.PrivacyPolicy) == 0 {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{"privacyPolicy": info.PrivacyPolicy})
	})
}

// PublicTerms godoc
// @Summary Terms and conditions sections
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/terms [get]
func (s *Server) PublicTerms(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if len(info.Terms) == 0 {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{"terms": info.Terms})
	})
}

// PublicAbout godoc
// @Summary Short "about us" text
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/about [get]
func (s *Server) PublicAbout(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if info.AboutInfo == "" {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{"aboutInfo": info.AboutInfo})
	})
}

// PublicFAQ godoc
// @Summary Frequently asked questions
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/faq [get]
func (s *Server) PublicFAQ(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if len(info.FAQ) == 0 {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{"faq": info.FAQ})
	})
}

// PublicContact godoc
// @Summary Contact channels
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/contact [get]
func (s *Server) PublicContact(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if info.ContactEmail == "" || info.ContactPhone == "" || info.ContactWA == "" {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"contactEmail": info.ContactEmail,
			"contactPhone": info.ContactPhone,
			"contactWA":    info.ContactWA,
		})
	})
}

// PublicAddress godoc
// @Summary Office address and map
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/address [get]
func (s *Server) PublicAddress(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		if info.AddressText == "" || info.MapEmbedCode == "" {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"addressText":  info.AddressText,
			"mapEmbedCode": info.MapEmbedCode,
		})
	})
}

// PublicBooking godoc
// @Summary How booking works
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/siteinfo/public/booking [get]
func (s *Server) PublicBooking(c echo.Context) error {
	return s.withSite(c, func(info *models.SiteInfo) error {
		b := info.Booking
		if b.Heading == "" && b.Text == "" && len(b.Items) == 0 {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, map[string]any{"booking": b})
	})
}

// ForgotPassword godoc
// @Summary Reset the admin password
// @Description Generates a new random password and mails it to the notification address. One request per IP every 24 hours.
// @Tags SiteInfo
// @Produce json
// @Success 200 {object} simpleResponse
// @Failure 429 {object} simpleResponse
// @Failure 500 {object} simpleResponse
// @Router /api/siteinfo/forgot [post]
func (s *Server) ForgotPassword(c echo.Context) error {
	to := s.Cfg.AdminNotifyEmail
	if to == "" {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Password reset mail is not configured"})
	}
	ctx := c.Request().Context()
	err := s.SiteInfo.ResetCredentials(ctx, to, func(password string) error {
		msg, err := mail.PasswordReset(to, password, time.Now().UTC())
		if err != nil {
			return err
		}
		return s.Mailer.Send(ctx, msg)
	})
	if err != nil {
		return fail(c, err)
	}
	c.Logger().Infof("admin credentials reset and mailed to %s", to)
	return c.JSON(http.StatusOK, simpleResponse{Success: true, Message: "New credentials generated and emailed."})
}
