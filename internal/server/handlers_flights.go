package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/fares"
	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

type flightPagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalDocuments int64 `json:"totalDocuments"`
	PageSize       int   `json:"pageSize"`
}

type flightListResponse struct {
	Data       []models.Flight  `json:"data"`
	Pagination flightPagination `json:"pagination"`
}

type searchOrCreateRequest struct {
	services.RouteKey
	Month string `json:"month" example:"March"`
}

type searchOrCreateResponse struct {
	Flight     *models.Flight     `json:"flight"`
	PriceEntry *models.PriceEntry `json:"priceEntry"`
	Info       string             `json:"info"`
}

// ListFlights godoc
// @Summary List routes
// @Description Fixed pages of 50 routes with their airports and airline
// @Tags Flights
// @Produce json
// @Param page path int false "Page number"
// @Success 200 {object} flightListResponse
// @Router /api/flight/page/{page} [get]
func (s *Server) ListFlights(c echo.Context) error {
	raw := c.Param("page")
	if raw == "" {
		raw = c.QueryParam("page")
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		page = 1
	}
	flights, total, err := s.Flights.List(c.Request().Context(), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, flightListResponse{
		Data: flights,
		Pagination: flightPagination{
			CurrentPage:    page,
			TotalPages:     utils.TotalPages(total, services.FlightPageSize),
			TotalDocuments: total,
			PageSize:       services.FlightPageSize,
		},
	})
}

// FilterFlights godoc
// @Summary Search fares
// @Description Prices every matching route for the requested dates, cheapest first. The cheapest 5% are flagged as recommended; no match gives an empty page.
// @Tags Flights
// @Produce json
// @Param type query string false "one-way or round-trip (default)"
// @Param from_id query int false "Departure airport id"
// @Param to_id query int false "Arrival airport id"
// @Param from query string false "Departure airport code or name"
// @Param to query string false "Arrival airport code or name"
// @Param airlines_id query string false "Comma separated airline ids"
// @Param airlines query string false "Comma separated airline short names"
// @Param minPrice query number false "Lowest final price"
// @Param maxPrice query number false "Highest final price"
// @Param depDateStr query string false "Departure date, YYYY-MM-DD"
// @Param arrDateStr query string false "Return date, YYYY-MM-DD"
// @Param page query int false "Page number"
// @Success 200 {object} fares.Page
// @Failure 400 {object} simpleResponse
// @Router /api/flight/filter [get]
func (s *Server) FilterFlights(c echo.Context) error {
	var q fares.Query
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "Invalid query")
	}
	req, err := fares.ParseRequest(q)
	if err != nil {
		return fail(c, err)
	}
	page, err := s.Fares.Search(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// FlightHasBookings godoc
// @Summary Whether any booking uses a route
// @Tags Flights
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} simpleResponse
// @Router /api/flight/{id}/has-bookings [get]
func (s *Server) FlightHasBookings(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid flight id")
	}
	has, err := s.Flights.HasBookings(c.Request().Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		return c.JSON(http.StatusNotFound, simpleResponse{Success: false, Message: "Flight not found"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"hasBookings": has})
}

// GetFlight godoc
// @Summary Get a route
// @Tags Flights
// @Produce json
// @Param id path int true "Flight ID"
// @Success 200 {object} models.Flight
// @Failure 404 {object} simpleResponse
// @Router /api/flight/{id} [get]
func (s *Server) GetFlight(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid flight id")
	}
	f, err := s.Flights.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// CreateFlight godoc
// @Summary Create a route
// @Description prices must hold exactly one row per month
// @Tags Flights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Flight true "Route"
// @Success 201 {object} models.Flight
// @Failure 400 {object} simpleResponse
// @Failure 409 {object} simpleResponse
// @Router /api/flight [post]
func (s *Server) CreateFlight(c echo.Context) error {
	var f models.Flight
	if err := decode(c, &f); err != nil {
		return badRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	err := s.Flights.Create(ctx, &f)
	if errors.Is(err, services.ErrDuplicate) {
		return c.JSON(http.StatusConflict, simpleResponse{Success: false, Message: "A flight already exists for this route and airline"})
	}
	if err != nil {
		return fail(c, err)
	}
	created, err := s.Flights.Get(ctx, f.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateFlight godoc
// @Summary Update durations, prices or stops of a route
// @Tags Flights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Param request body services.FlightUpdate true "Fields to change"
// @Success 200 {object} models.Flight
// @Failure 400 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/flight/{id} [put]
func (s *Server) UpdateFlight(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid flight id")
	}
	var req services.FlightUpdate
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := s.Flights.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// DeleteFlight godoc
// @Summary Delete a route
// @Tags Flights
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/flight/{id} [delete]
func (s *Server) DeleteFlight(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid flight id")
	}
	if err := s.Flights.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return deleted(c)
}

// SearchOrCreateFlight godoc
// @Summary Find a route, creating a placeholder when missing
// @Description Airports and airline may be given by id or by code and short name. month selects the returned fare row.
// @Tags Flights
// @Accept json
// @Produce json
// @Param request body searchOrCreateRequest true "Route key"
// @Success 200 {object} searchOrCreateResponse
// @Failure 400 {object} simpleResponse
// @Router /api/flight/search-or-create [post]
func (s *Server) SearchOrCreateFlight(c echo.Context) error {
	var req searchOrCreateRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	f, created, err := s.Flights.FindOrCreate(c.Request().Context(), req.RouteKey)
	if err != nil {
		return fail(c, err)
	}
	info := "Existing flight found"
	if created {
		info = "New flight created with zeroed data"
	}
	return c.JSON(http.StatusOK, searchOrCreateResponse{
		Flight:     f,
		PriceEntry: services.PriceEntry(f, req.Month),
		Info:       info,
	})
}
