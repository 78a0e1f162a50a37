package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

const airlinePageSize = 20

// ListAirlines godoc
// @Summary List airlines, newest first
// @Tags Airlines
// @Produce json
// @Success 200 {array} models.Airline
// @Router /api/airline [get]
func (s *Server) ListAirlines(c echo.Context) error {
	airlines, err := s.Airlines.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, airlines)
}

// SearchAirlines godoc
// @Summary Search airlines by short name
// @Description Each hit says whether the airline operates any route. Paginated when page or size is given.
// @Tags Airlines
// @Produce json
// @Param q query string false "Short name fragment"
// @Param page query int false "Page number"
// @Param size query int false "Page size (default 20)"
// @Success 200 {array} services.AirlineWithFlights
// @Router /api/airline/search [get]
func (s *Server) SearchAirlines(c echo.Context) error {
	ctx := c.Request().Context()
	q := c.QueryParam("q")
	page, paged := utils.ParsePage(c.QueryParam("page"), c.QueryParam("size"), airlinePageSize)
	if !paged {
		hits, _, err := s.Airlines.Search(ctx, q, nil)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, hits)
	}
	hits, total, err := s.Airlines.Search(ctx, q, &page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newPaged(page, total, hits))
}

// GetAirline godoc
// @Summary Get an airline
// @Tags Airlines
// @Produce json
// @Param id path int true "Airline ID"
// @Success 200 {object} models.Airline
// @Failure 404 {object} simpleResponse
// @Router /api/airline/{id} [get]
func (s *Server) GetAirline(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airline id")
	}
	a, err := s.Airlines.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// CreateAirline godoc
// @Summary Create an airline
// @Tags Airlines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AirlineInput true "Airline"
// @Success 201 {object} models.Airline
// @Failure 400 {object} simpleResponse
// @Failure 409 {object} simpleResponse
// @Router /api/airline [post]
func (s *Server) CreateAirline(c echo.Context) error {
	var req services.AirlineInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	a, err := s.Airlines.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// UpdateAirline godoc
// @Summary Update an airline
// @Description Replaced logo and monogram files are removed from storage
// @Tags Airlines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airline ID"
// @Param request body services.AirlineInput true "Fields to change"
// @Success 200 {object} models.Airline
// @Failure 404 {object} simpleResponse
// @Router /api/airline/{id} [put]
func (s *Server) UpdateAirline(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airline id")
	}
	var req services.AirlineInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	a, err := s.Airlines.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// DeleteAirline godoc
// @Summary Delete an airline and its pictures
// @Tags Airlines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airline ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/airline/{id} [delete]
func (s *Server) DeleteAirline(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid airline id")
	}
	if err := s.Airlines.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return deleted(c)
}
