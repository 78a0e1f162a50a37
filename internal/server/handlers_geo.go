package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/services"
)

type regionRequest struct {
	Name string `json:"name" example:"Europe" validate:"required"`
}

type regionRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type countryRequest struct {
	Name   string    `json:"name" example:"France"`
	Region regionRef `json:"region"`
}

// ListRegions godoc
// @Summary List regions
// @Tags Geography
// @Produce json
// @Success 200 {array} models.Region
// @Router /api/region [get]
func (s *Server) ListRegions(c echo.Context) error {
	regions, err := s.Regions.ListRegions(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, regions)
}

// GetRegion godoc
// @Summary Get a region
// @Tags Geography
// @Produce json
// @Param id path int true "Region ID"
// @Success 200 {object} models.Region
// @Failure 404 {object} simpleResponse
// @Router /api/region/{id} [get]
func (s *Server) GetRegion(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid region id")
	}
	r, err := s.Regions.GetRegion(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// CreateRegion godoc
// @Summary Create a region
// @Tags Geography
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body regionRequest true "Region"
// @Success 201 {object} models.Region
// @Failure 409 {object} simpleResponse
// @Router /api/region [post]
func (s *Server) CreateRegion(c echo.Context) error {
	var req regionRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	r, err := s.Regions.CreateRegion(c.Request().Context(), req.Name)
	if errors.Is(err, services.ErrDuplicate) {
		return c.JSON(http.StatusConflict, simpleResponse{Success: false, Message: "Region with this name already exists."})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// UpdateRegion godoc
// @Summary Rename a region
// @Tags Geography
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Region ID"
// @Param request body regionRequest true "Region"
// @Success 200 {object} models.Region
// @Failure 404 {object} simpleResponse
// @Failure 409 {object} simpleResponse
// @Router /api/region/{id} [put]
func (s *Server) UpdateRegion(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid region id")
	}
	var req regionRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	r, err := s.Regions.UpdateRegion(c.Request().Context(), id, req.Name)
	switch {
	case errors.Is(err, services.ErrDuplicate):
		return c.JSON(http.StatusConflict, simpleResponse{Success: false, Message: "Region name already in use."})
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusNotFound, simpleResponse{Success: false, Message: "Region not found."})
	case err != nil:
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// DeleteRegion godoc
// @Summary Delete a region
// @Tags Geography
// @Produce json
// @Security BearerAuth
// @Param id path int true "Region ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/region/{id} [delete]
func (s *Server) DeleteRegion(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid region id")
	}
	if err := s.Regions.DeleteRegion(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, simpleResponse{Success: true, Message: "Region deleted"})
}

// ListCountries godoc
// @Summary List countries with their region
// @Tags Geography
// @Produce json
// @Success 200 {array} models.Country
// @Router /api/country [get]
func (s *Server) ListCountries(c echo.Context) error {
	countries, err := s.Regions.ListCountries(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, countries)
}

// CountriesByRegion godoc
// @Summary Countries of a region
// @Tags Geography
// @Produce json
// @Param regionId path int true "Region ID"
// @Success 200 {array} models.Country
// @Failure 404 {object} simpleResponse
// @Router /api/country/region/{regionId} [get]
func (s *Server) CountriesByRegion(c echo.Context) error {
	id, ok := pathID(c, "regionId")
	if !ok {
		return badRequest(c, "Invalid region id")
	}
	countries, err := s.Regions.CountriesInRegion(c.Request().Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		return c.JSON(http.StatusNotFound, simpleResponse{Success: false, Message: "Region not found"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, countries)
}

// GetCountry godoc
// @Summary Get a country
// @Tags Geography
// @Produce json
// @Param id path int true "Country ID"
// @Success 200 {object} models.Country
// @Failure 404 {object} simpleResponse
// @Router /api/country/{id} [get]
func (s *Server) GetCountry(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid country id")
	}
	country, err := s.Regions.GetCountry(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, country)
}

// CreateCountry godoc
// @Summary Create a country
// @Description The region must be given by both id and current name
// @Tags Geography
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body countryRequest true "Country"
// @Success 201 {object} models.Country
// @Failure 400 {object} simpleResponse
// @Router /api/country [post]
func (s *Server) CreateCountry(c echo.Context) error {
	var req countryRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	country, err := s.Regions.CreateCountry(c.Request().Context(), req.Name, req.Region.ID, req.Region.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, country)
}

// UpdateCountry godoc
// @Summary Update a country
// @Tags Geography
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Country ID"
// @Param request body services.CountryInput true "Fields to change"
// @Success 200 {object} models.Country
// @Failure 404 {object} simpleResponse
// @Router /api/country/{id} [put]
func (s *Server) UpdateCountry(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid country id")
	}
	var req services.CountryInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	country, err := s.Regions.UpdateCountry(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, country)
}

// DeleteCountry godoc
// @Summary Delete a country
// @Tags Geography
// @Produce json
// @Security BearerAuth
// @Param id path int true "Country ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/country/{id} [delete]
func (s *Server) DeleteCountry(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid country id")
	}
	if err := s.Regions.DeleteCountry(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return deleted(c)
}
