package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

func newBookingService(t *testing.T) (*BookingService, fixture, models.Flight) {
	gdb := newTestDB(t)
	fx := seedFixture(t, gdb)
	f := fx.route(t, gdb, 300)
	s := NewBookingService(gdb, NewFlightService(gdb))
	s.now = fixedClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	return s, fx, f
}

func bookingInput(flightID uint, dep, ret models.Date) BookingInput {
	price := decimal.NewFromInt(600)
	return BookingInput{
		CustomerName:        "Ada Lovelace",
		FlightID:            flightID,
		UserEmail:           "ada@example.com",
		ContactPreference:   models.PreferEmail,
		Adults:              2,
		Children:            1,
		DepartureDate:       dep,
		ReturnDate:          ret,
		InitialBookingPrice: &price,
	}
}

func TestBookingCreate(t *testing.T) {
	s, _, f := newBookingService(t)
	ctx := context.Background()

	b, err := s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 7, 1), models.NewDate(2025, 7, 8)))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.State)
	assert.Equal(t, "0", b.ContactPhone)
	require.NotNil(t, b.Flight)
	assert.Equal(t, "JFK", b.Flight.DepartureAirport.Code)
	assert.Equal(t, 3, b.PeopleCount.Total())
}

func TestBookingCreateRejects(t *testing.T) {
	s, _, f := newBookingService(t)
	ctx := context.Background()

	missing := bookingInput(f.ID, models.NewDate(2025, 7, 1), models.NewDate(2025, 7, 8))
	missing.UserEmail = " "
	_, err := s.Create(ctx, missing)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required fields", verr.Msg)

	_, err = s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 7, 8), models.NewDate(2025, 7, 8)))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid departureDate/returnDate", verr.Msg)

	_, err = s.Create(ctx, bookingInput(f.ID+100, models.NewDate(2025, 7, 1), models.NewDate(2025, 7, 8)))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "flight not found", verr.Msg)
}

func TestCancelPastPending(t *testing.T) {
	s, _, f := newBookingService(t)
	ctx := context.Background()

	past, err := s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 6, 9), models.NewDate(2025, 6, 20)))
	require.NoError(t, err)
	today, err := s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 6, 10), models.NewDate(2025, 6, 20)))
	require.NoError(t, err)
	confirmed := bookingInput(f.ID, models.NewDate(2025, 5, 1), models.NewDate(2025, 5, 9))
	confirmed.State = models.BookingConfirmed
	done, err := s.Create(ctx, confirmed)
	require.NoError(t, err)

	n, err := s.CancelPastPending(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.Get(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.State)
	got, err = s.Get(ctx, today.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.State)
	got, err = s.Get(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.State)
}

func TestBookingListFilters(t *testing.T) {
	s, fx, f := newBookingService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 8, 1), models.NewDate(2025, 8, 5)))
		require.NoError(t, err)
	}

	page := utils.Page{Number: 1, Size: 2}
	list, total, err := s.List(ctx, BookingFilter{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 2)
	assert.Less(t, list[0].ID, list[1].ID)

	_, total, err = s.List(ctx, BookingFilter{ArrivalAirportID: &fx.jfk.ID}, page)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = s.List(ctx, BookingFilter{AirlineIDs: []uint{fx.airline.ID}, State: models.BookingPending}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestBookingUpdateMovesToNewRoute(t *testing.T) {
	s, _, f := newBookingService(t)
	ctx := context.Background()
	b, err := s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 7, 1), models.NewDate(2025, 7, 8)))
	require.NoError(t, err)

	state := models.BookingConfirmed
	updated, newID, err := s.Update(ctx, b.ID, BookingUpdate{
		DepartureCode:    "lhr",
		ArrivalCode:      "JFK",
		AirlineShortName: "BA",
		State:            &state,
	})
	require.NoError(t, err)
	require.NotNil(t, newID)
	assert.Equal(t, *newID, updated.FlightID)
	assert.NotEqual(t, f.ID, updated.FlightID)
	assert.Equal(t, models.BookingConfirmed, updated.State)

	// the same route again is found, not created
	_, newID, err = s.Update(ctx, b.ID, BookingUpdate{DepartureCode: "LHR", ArrivalCode: "JFK", AirlineShortName: "BA"})
	require.NoError(t, err)
	assert.Nil(t, newID)

	_, _, err = s.Update(ctx, b.ID, BookingUpdate{DepartureCode: "XXX", ArrivalCode: "JFK", AirlineShortName: "BA"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid departure airport", verr.Msg)

	_, _, err = s.Update(ctx, b.ID+50, BookingUpdate{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBookingAnalytics(t *testing.T) {
	s, _, f := newBookingService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 6, 12), models.NewDate(2025, 6, 20)))
	require.NoError(t, err)
	_, err = s.Create(ctx, bookingInput(f.ID, models.NewDate(2025, 9, 1), models.NewDate(2025, 9, 20)))
	require.NoError(t, err)

	a, err := s.Analytics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, a.TotalBookings)
	assert.Len(t, a.ByState, len(models.BookingStates))
	assert.EqualValues(t, 2, a.ByState[models.BookingPending])
	assert.Zero(t, a.ByState[models.BookingInProgress])
	require.Len(t, a.TopFlights, 1)
	assert.Equal(t, "BA", a.TopFlights[0].Airline)
	assert.EqualValues(t, 2, a.TopFlights[0].BookingsCount)
	assert.EqualValues(t, 1, a.Upcoming7Days)

	require.Len(t, a.BookingsLast12Months, 12)
	last := a.BookingsLast12Months[11]
	assert.Equal(t, 2025, last.Year)
	assert.Equal(t, 6, last.Month)
	assert.Equal(t, 3, last.DepartingThisMonth)
	assert.Equal(t, 2024, a.BookingsLast12Months[0].Year)
	assert.Equal(t, 7, a.BookingsLast12Months[0].Month)

	// the all-time series has no gaps, so September 2025 is present
	var september *MonthlyBookings
	for i, m := range a.BookingsAllTime {
		if m.Year == 2025 && m.Month == 9 {
			september = &a.BookingsAllTime[i]
		}
		if i > 0 {
			prev := a.BookingsAllTime[i-1]
			assert.True(t, yearMonth{prev.Year, time.Month(prev.Month)}.next() == yearMonth{m.Year, time.Month(m.Month)})
		}
	}
	require.NotNil(t, september)
	assert.Equal(t, 3, september.DepartingThisMonth)
}
