package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/mail"
	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

const bookingPageSize = 10

type bookingUpdateResponse struct {
	*models.Booking
	NewFlightID *uint `json:"newFlightId,omitempty"`
}

type notice func(site *models.SiteInfo) (mail.Message, error)

// notify renders and sends each notice against the current site record.
// Failures are only logged and messages without a recipient are skipped.
func (s *Server) notify(c echo.Context, notices ...notice) {
	ctx := c.Request().Context()
	site, err := s.SiteInfo.Get(ctx)
	if err != nil {
		site = &models.SiteInfo{}
	}
	for _, n := range notices {
		msg, err := n(site)
		if err == nil && msg.To == "" {
			continue
		}
		if err == nil {
			err = s.Mailer.Send(ctx, msg)
		}
		if err != nil {
			c.Logger().Warnf("mail %q not sent: %v", msg.Subject, err)
		}
	}
}

// bookingPage reads page and limit; bookings are always paginated.
func bookingPage(c echo.Context) utils.Page {
	p, _ := utils.ParsePage(c.QueryParam("page"), c.QueryParam("limit"), bookingPageSize)
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = bookingPageSize
	}
	return p
}

func optionalID(raw string) (*uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || n == 0 {
		return nil, false
	}
	id := uint(n)
	return &id, true
}

// CreateBooking godoc
// @Summary Book a route
// @Description Public. The agency and the customer are notified by e-mail.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body services.BookingInput true "Booking"
// @Success 201 {object} models.Booking
// @Failure 400 {object} simpleResponse
// @Router /api/booking [post]
func (s *Server) CreateBooking(c echo.Context) error {
	var req services.BookingInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	b, err := s.Bookings.Create(ctx, req)
	if err != nil {
		return fail(c, err)
	}
	s.notify(c,
		func(site *models.SiteInfo) (mail.Message, error) { return mail.BookingAdmin(s.Cfg.AdminNotifyEmail, b, site) },
		func(site *models.SiteInfo) (mail.Message, error) { return mail.BookingCustomer(b, site) },
	)
	return c.JSON(http.StatusCreated, b)
}

// ListBookings godoc
// @Summary List bookings
// @Description Pending bookings whose departure day is over are cancelled first
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} pagedResponse
// @Router /api/booking [get]
func (s *Server) ListBookings(c echo.Context) error {
	page := bookingPage(c)
	bookings, total, err := s.Bookings.List(c.Request().Context(), services.BookingFilter{}, page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newPaged(page, total, bookings))
}

// FilterBookings godoc
// @Summary Filter bookings by route, airline and state
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param airline query []int false "Airline ids" collectionFormat(multi)
// @Param departureAirport query int false "Departure airport id"
// @Param arrivalAirport query int false "Arrival airport id"
// @Param state query string false "pending, confirmed or cancelled"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} pagedResponse
// @Failure 400 {object} simpleResponse
// @Router /api/booking/filter [get]
func (s *Server) FilterBookings(c echo.Context) error {
	var f services.BookingFilter
	for _, raw := range c.QueryParams()["airline"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, ok := optionalID(part)
			if !ok {
				return badRequest(c, "Invalid airline id")
			}
			f.AirlineIDs = append(f.AirlineIDs, *id)
		}
	}
	var ok bool
	if f.DepartureAirportID, ok = optionalID(c.QueryParam("departureAirport")); !ok {
		return badRequest(c, "Invalid departureAirport")
	}
	if f.ArrivalAirportID, ok = optionalID(c.QueryParam("arrivalAirport")); !ok {
		return badRequest(c, "Invalid arrivalAirport")
	}
	if st := models.BookingState(strings.TrimSpace(c.QueryParam("state"))); st != "" {
		if !st.Valid() {
			return badRequest(c, "Invalid state")
		}
		f.State = st
	}

	page := bookingPage(c)
	bookings, total, err := s.Bookings.List(c.Request().Context(), f, page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newPaged(page, total, bookings))
}

// BookingAnalytics godoc
// @Summary Booking statistics for the dashboard
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Analytics
// @Router /api/booking/analytics [get]
func (s *Server) BookingAnalytics(c echo.Context) error {
	a, err := s.Bookings.Analytics(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// GetBooking godoc
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} simpleResponse
// @Router /api/booking/{id} [get]
func (s *Server) GetBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid booking id")
	}
	b, err := s.Bookings.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// UpdateBooking godoc
// @Summary Update a booking
// @Description Giving departureCode, arrivalCode and airlineShortName moves the booking to that route; newFlightId is set when the route had to be created.
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param request body services.BookingUpdate true "Fields to change"
// @Success 200 {object} bookingUpdateResponse
// @Failure 400 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/booking/{id} [put]
func (s *Server) UpdateBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid booking id")
	}
	var req services.BookingUpdate
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	b, newFlightID, err := s.Bookings.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, bookingUpdateResponse{Booking: b, NewFlightID: newFlightID})
}

// DeleteBooking godoc
// @Summary Delete a booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/booking/{id} [delete]
func (s *Server) DeleteBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid booking id")
	}
	if err := s.Bookings.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return deleted(c)
}
