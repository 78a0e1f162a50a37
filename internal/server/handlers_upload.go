package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/media"
)

type uploadResponse struct {
	ImageURL string `json:"imageUrl" example:"/uploads/locations/loc-3f1c.jpg"`
}

// storeImage reads the "image" form file, re-encodes it as a bounded JPEG
// and saves it as <dir>/<prefix>-<uuid>.jpg.
func (s *Server) storeImage(c echo.Context, dir, prefix string) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "No image uploaded")
	}
	if fh.Size > media.MaxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, simpleResponse{Success: false, Message: "Image too large"})
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer src.Close()

	out, err := media.Transcode(src, media.Options{
		MaxDimension: s.Cfg.UploadMaxDimension,
		Quality:      s.Cfg.UploadQuality,
	})
	if errors.Is(err, media.ErrUnsupported) {
		return badRequest(c, "Only image files are allowed")
	}
	if err != nil {
		return fail(c, err)
	}

	key := prefix + "-" + uuid.NewString() + ".jpg"
	if dir != "" {
		key = dir + "/" + key
	}
	url, err := s.Files.Save(c.Request().Context(), key, bytes.NewReader(out))
	if err != nil {
		return fail(c, err)
	}
	c.Logger().Infof("stored upload %s (%d bytes)", url, len(out))
	return c.JSON(http.StatusOK, uploadResponse{ImageURL: url})
}

// UploadLocationImage godoc
// @Summary Upload a location picture
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "JPEG, PNG, GIF or WebP"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} simpleResponse
// @Router /api/upload/locations [post]
func (s *Server) UploadLocationImage(c echo.Context) error {
	return s.storeImage(c, "locations", "loc")
}

// UploadAirlineImage godoc
// @Summary Upload an airline logo or monogram
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "JPEG, PNG, GIF or WebP"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} simpleResponse
// @Router /api/upload/airlines [post]
func (s *Server) UploadAirlineImage(c echo.Context) error {
	return s.storeImage(c, "airlines", "air")
}

// UploadImage godoc
// @Summary Upload any other site picture
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "JPEG, PNG, GIF or WebP"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} simpleResponse
// @Router /api/upload [post]
func (s *Server) UploadImage(c echo.Context) error {
	return s.storeImage(c, "images", "img")
}
