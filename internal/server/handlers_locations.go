package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

const (
	regionPageSize = 20
	searchPageSize = 50
)

type popularRequest struct {
	IsPopular   bool   `json:"isPopular"`
	Description string `json:"description"`
}

type dealingsRequest struct {
	Dealings            models.Dealings `json:"dealings" validate:"required"`
	DealingsDescription string          `json:"dealingsDescription"`
}

type firstAirportResponse struct {
	HasAirport       bool    `json:"hasAirport"`
	FirstAirportID   *uint   `json:"firstAirportId"`
	FirstAirportCode *string `json:"firstAirportcode"`
}

// ListLocations godoc
// @Summary List locations
// @Description Every location with its country and whether an airport serves it
// @Tags Locations
// @Produce json
// @Success 200 {array} services.LocationWithAirport
// @Router /api/location [get]
func (s *Server) ListLocations(c echo.Context) error {
	locs, err := s.Locations.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, locs)
}

// PopularLocations godoc
// @Summary Popular locations
// @Tags Locations
// @Produce json
// @Success 200 {array} models.Location
// @Router /api/location/popular [get]
func (s *Server) PopularLocations(c echo.Context) error {
	locs, err := s.Locations.Popular(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, locs)
}

// LocationsByCountry godoc
// @Summary Locations of a country
// @Tags Locations
// @Produce json
// @Param countryId path int true "Country ID"
// @Success 200 {array} models.Location
// @Router /api/location/country/{countryId} [get]
func (s *Server) LocationsByCountry(c echo.Context) error {
	id, ok := pathID(c, "countryId")
	if !ok {
		return badRequest(c, "Invalid countryId")
	}
	locs, err := s.Locations.ByCountry(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, locs)
}

// LocationDeals godoc
// @Summary Locations on the deals pages
// @Tags Locations
// @Produce json
// @Success 200 {object} services.Deals
// @Router /api/location/deals [get]
func (s *Server) LocationDeals(c echo.Context) error {
	deals, err := s.Locations.Deals(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, deals)
}

// LocationsByRegion godoc
// @Summary Locations of a region
// @Description Paginated when page or size is given
// @Tags Locations
// @Produce json
// @Param regionId path int true "Region ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size (default 20)"
// @Success 200 {array} models.Location
// @Router /api/location/region/{regionId} [get]
func (s *Server) LocationsByRegion(c echo.Context) error {
	id, ok := pathID(c, "regionId")
	if !ok {
		return badRequest(c, "Invalid regionId")
	}
	ctx := c.Request().Context()
	page, paged := utils.ParsePage(c.QueryParam("page"), c.QueryParam("size"), regionPageSize)
	if !paged {
		locs, _, err := s.Locations.ByRegion(ctx, id, nil)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, locs)
	}
	locs, total, err := s.Locations.ByRegion(ctx, id, &page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newPaged(page, total, locs))
}

// SearchLocations godoc
// @Summary Search locations
// @Description Matches q against location, country and region names. detail=true adds the content fields and hasAirports.
// @Tags Locations
// @Produce json
// @Param q query string false "Search text"
// @Param countryId query int false "Restrict to a country"
// @Param detail query bool false "Include content fields"
// @Param page query int false "Page number"
// @Param size query int false "Page size (default 50)"
// @Success 200 {array} services.LocationHit
// @Failure 400 {object} simpleResponse
// @Router /api/location/search [get]
func (s *Server) SearchLocations(c echo.Context) error {
	in := services.LocationSearch{Q: c.QueryParam("q")}
	if raw := strings.TrimSpace(c.QueryParam("countryId")); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 0)
		if err != nil || n == 0 {
			return badRequest(c, "Invalid countryId")
		}
		id := uint(n)
		in.CountryID = &id
	}
	hits, err := s.Locations.Search(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}

	page, paged := utils.ParsePage(c.QueryParam("page"), c.QueryParam("size"), searchPageSize)
	if c.QueryParam("detail") == "true" {
		if paged {
			return c.JSON(http.StatusOK, pageOf(page, hits))
		}
		return c.JSON(http.StatusOK, hits)
	}
	brief := make([]services.LocationHit, 0, len(hits))
	for _, h := range hits {
		brief = append(brief, h.LocationHit)
	}
	if paged {
		return c.JSON(http.StatusOK, pageOf(page, brief))
	}
	return c.JSON(http.StatusOK, brief)
}

// LocationHasAirports godoc
// @Summary Whether a location has an airport
// @Tags Locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/location/hasairports/{id} [get]
func (s *Server) LocationHasAirports(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid location id")
	}
	has, err := s.Locations.HasAirport(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"hasAirport": has})
}

// LocationFirstAirport godoc
// @Summary First airport of a location
// @Tags Locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} firstAirportResponse
// @Router /api/location/firstairport/{id} [get]
func (s *Server) LocationFirstAirport(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid location id")
	}
	a, err := s.Locations.FirstAirport(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if a == nil {
		return c.JSON(http.StatusOK, firstAirportResponse{})
	}
	return c.JSON(http.StatusOK, firstAirportResponse{HasAirport: true, FirstAirportID: &a.ID, FirstAirportCode: &a.Code})
}

// GetLocation godoc
// @Summary Get a location
// @Tags Locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} services.LocationWithAirport
// @Failure 404 {object} simpleResponse
// @Router /api/location/{id} [get]
func (s *Server) GetLocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid location id")
	}
	loc, err := s.Locations.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loc)
}

// CreateLocation godoc
// @Summary Create a location
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.LocationInput true "Location"
// @Success 201 {object} models.Location
// @Failure 400 {object} simpleResponse
// @Router /api/location [post]
func (s *Server) CreateLocation(c echo.Context) error {
	var req services.LocationInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	loc, err := s.Locations.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, loc)
}

// UpdateLocation godoc
// @Summary Update a location
// @Description A replaced image is removed from storage
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param request body services.LocationInput true "Fields to change"
// @Success 200 {object} models.Location
// @Failure 404 {object} simpleResponse
// @Router /api/location/{id} [put]
func (s *Server) UpdateLocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid location id")
	}
	var req services.LocationInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	loc, err := s.Locations.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loc)
}

// DeleteLocation godoc
// @Summary Delete a location and its image
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/location/{id} [delete]
func (s *Server) DeleteLocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid location id")
	}
	if err := s.Locations.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return deleted(c)
}

// SetLocationPopular godoc
// @Summary Mark a location popular or not
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param request body popularRequest true "Popular flag"
// @Success 200 {object} models.Location
// @Failure 400 {object} simpleResponse
// @Router /api/location/{id}/popular [patch]
func (s *Server) SetLocationPopular(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid location id")
	}
	var req popularRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	loc, err := s.Locations.SetPopular(c.Request().Context(), id, req.IsPopular, req.Description)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loc)
}

// SetLocationDealings godoc
// @Summary Place a location on a deals page
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param request body dealingsRequest true "Dealings"
// @Success 200 {object} models.Location
// @Failure 400 {object} simpleResponse
// @Router /api/location/{id}/dealings [patch]
func (s *Server) SetLocationDealings(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid location id")
	}
	var req dealingsRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	loc, err := s.Locations.SetDealings(c.Request().Context(), id, req.Dealings, req.DealingsDescription)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loc)
}
