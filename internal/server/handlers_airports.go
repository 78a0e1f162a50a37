package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

type departureRequest struct {
	IsDeparture bool `json:"isDeparture"`
}

// ListAirports godoc
// @Summary List airports
// @Description Paginated when page or size is given (default size 50)
// @Tags Airports
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {array} models.Airport
// @Router /api/airport [get]
func (s *Server) ListAirports(c echo.Context) error {
	ctx := c.Request().Context()
	page, paged := utils.ParsePage(c.QueryParam("page"), c.QueryParam("size"), searchPageSize)
	if !paged {
		airports, _, err := s.Airports.List(ctx, nil)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, airports)
	}
	airports, total, err := s.Airports.List(ctx, &page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newPaged(page, total, airports))
}

// SearchAirports godoc
// @Summary Search airports
// @Description Matches airport name and code first, then location, country and region names
// @Tags Airports
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page number"
// @Param size query int false "Page size (default 50)"
// @Success 200 {array} services.AirportHit
// @Router /api/airport/search-advanced [get]
func (s *Server) SearchAirports(c echo.Context) error {
	hits, err := s.Airports.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}
	if page, paged := utils.ParsePage(c.QueryParam("page"), c.QueryParam("size"), searchPageSize); paged {
		return c.JSON(http.StatusOK, pageOf(page, hits))
	}
	return c.JSON(http.StatusOK, hits)
}

// AirportsByLocation godoc
// @Summary Airports serving a location
// @Tags Airports
// @Produce json
// @Param locationId path int true "Location ID"
// @Success 200 {array} models.Airport
// @Failure 400 {object} simpleResponse
// @Router /api/airport/by-location/{locationId} [get]
func (s *Server) AirportsByLocation(c echo.Context) error {
	id, ok := pathID(c, "locationId")
	if !ok {
		return badRequest(c, "Invalid locationId")
	}
	airports, err := s.Airports.ByLocation(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, airports)
}

// AirportIDsByLocation godoc
// @Summary Airport ids serving a location
// @Tags Airports
// @Produce json
// @Param locationId path int true "Location ID"
// @Success 200 {array} int
// @Failure 400 {object} simpleResponse
// @Router /api/airport/by-location/{locationId}/ids [get]
func (s *Server) AirportIDsByLocation(c echo.Context) error {
	id, ok := pathID(c, "locationId")
	if !ok {
		return badRequest(c, "Invalid locationId")
	}
	ids, err := s.Airports.IDsByLocation(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ids)
}

// AirportUsage godoc
// @Summary Whether routes or bookings use an airport
// @Tags Airports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airport ID"
// @Success 200 {object} services.AirportUsage
// @Failure 400 {object} simpleResponse
// @Router /api/airport/{id}/usage [get]
func (s *Server) AirportUsage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airport id")
	}
	u, err := s.Airports.Usage(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// GetAirport godoc
// @Summary Get an airport
// @Tags Airports
// @Produce json
// @Param id path int true "Airport ID"
// @Success 200 {object} models.Airport
// @Failure 404 {object} simpleResponse
// @Router /api/airport/{id} [get]
func (s *Server) GetAirport(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airport id")
	}
	a, err := s.Airports.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) airportConflict(c echo.Context, err error) error {
	if errors.Is(err, services.ErrDuplicate) {
		return c.JSON(http.StatusConflict, simpleResponse{Success: false, Message: "Airport code already in use"})
	}
	return fail(c, err)
}

// CreateAirport godoc
// @Summary Create an airport
// @Tags Airports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AirportInput true "Airport"
// @Success 201 {object} models.Airport
// @Failure 400 {object} simpleResponse
// @Failure 409 {object} simpleResponse
// @Router /api/airport [post]
func (s *Server) CreateAirport(c echo.Context) error {
	var req services.AirportInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	a, err := s.Airports.Create(c.Request().Context(), req)
	if err != nil {
		return s.airportConflict(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// UpdateAirport godoc
// @Summary Update an airport
// @Tags Airports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airport ID"
// @Param request body services.AirportInput true "Fields to change"
// @Success 200 {object} models.Airport
// @Failure 404 {object} simpleResponse
// @Failure 409 {object} simpleResponse
// @Router /api/airport/{id} [put]
func (s *Server) UpdateAirport(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airport id")
	}
	var req services.AirportInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	a, err := s.Airports.Update(c.Request().Context(), id, req)
	if err != nil {
		return s.airportConflict(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// DeleteAirport godoc
// @Summary Delete an airport
// @Tags Airports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airport ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/airport/{id} [delete]
func (s *Server) DeleteAirport(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airport id")
	}
	if err := s.Airports.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return deleted(c)
}

// SetAirportDeparture godoc
// @Summary Offer or withdraw an airport as a departure point
// @Tags Airports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airport ID"
// @Param request body departureRequest true "Departure flag"
// @Success 200 {object} models.Airport
// @Failure 404 {object} simpleResponse
// @Router /api/airport/{id}/departure [patch]
func (s *Server) SetAirportDeparture(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airport id")
	}
	var req departureRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	a, err := s.Airports.SetDeparture(c.Request().Context(), id, req.IsDeparture)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}
