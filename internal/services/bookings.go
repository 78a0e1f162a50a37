package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

type BookingService struct {
	db      *gorm.DB
	flights *FlightService
	now     func() time.Time
}

func NewBookingService(db *gorm.DB, flights *FlightService) *BookingService {
	return &BookingService{db: db, flights: flights, now: utils.NowUTC}
}

func (s *BookingService) withFlight(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Flight.DepartureAirport").
		Preload("Flight.ArrivalAirport").
		Preload("Flight.Airline")
}

// CancelPastPending cancels pending bookings whose departure day is over.
func (s *BookingService) CancelPastPending(ctx context.Context) (int64, error) {
	today := models.DateOf(s.now().UTC())
	tx := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("state = ? AND departure_date < ?", models.BookingPending, today).
		Update("state", models.BookingCancelled)
	return tx.RowsAffected, tx.Error
}

type BookingFilter struct {
	AirlineIDs         []uint
	DepartureAirportID *uint
	ArrivalAirportID   *uint
	State              models.BookingState
}

func (f BookingFilter) routeFiltered() bool {
	return len(f.AirlineIDs) > 0 || f.DepartureAirportID != nil || f.ArrivalAirportID != nil
}

// List pages through bookings matching f after cancelling stale pending ones.
func (s *BookingService) List(ctx context.Context, f BookingFilter, page utils.Page) ([]models.Booking, int64, error) {
	if _, err := s.CancelPastPending(ctx); err != nil {
		return nil, 0, err
	}
	scope := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Booking{})
		if f.routeFiltered() {
			routes := s.db.Model(&models.Flight{}).Select("id")
			if len(f.AirlineIDs) > 0 {
				routes = routes.Where("airline_id IN ?", f.AirlineIDs)
			}
			if f.DepartureAirportID != nil {
				routes = routes.Where("departure_airport_id = ?", *f.DepartureAirportID)
			}
			if f.ArrivalAirportID != nil {
				routes = routes.Where("arrival_airport_id = ?", *f.ArrivalAirportID)
			}
			tx = tx.Where("flight_id IN (?)", routes)
		}
		if f.State != "" {
			tx = tx.Where("state = ?", f.State)
		}
		return tx
	}
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	bookings := []models.Booking{}
	err := scope().
		Preload("Flight.DepartureAirport").
		Preload("Flight.ArrivalAirport").
		Preload("Flight.Airline").
		Order("id").Offset(page.Offset()).Limit(page.Size).
		Find(&bookings).Error
	return bookings, total, err
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.withFlight(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	if b.State == models.BookingPending && b.DepartureDate.Before(models.DateOf(s.now().UTC()).Time) {
		b.State = models.BookingCancelled
		if err := s.db.WithContext(ctx).Model(&b).Update("state", b.State).Error; err != nil {
			return nil, err
		}
	}
	return &b, nil
}

type BookingInput struct {
	CustomerName        string                   `json:"customerName"`
	FlightID            uint                     `json:"flightId"`
	UserEmail           string                   `json:"userEmail"`
	ContactPhone        string                   `json:"contactPhone"`
	ContactPreference   models.ContactPreference `json:"contactPreference"`
	Adults              int                      `json:"adults"`
	Children            int                      `json:"children"`
	Infants             int                      `json:"infants"`
	ExtraDetails        string                   `json:"extraDetails"`
	DepartureDate       models.Date              `json:"departureDate"`
	ReturnDate          models.Date              `json:"returnDate"`
	InitialBookingPrice *decimal.Decimal         `json:"initialBookingPrice"`
	FinalPrice          *decimal.Decimal         `json:"finalPrice"`
	State               models.BookingState      `json:"state"`
	Notes               string                   `json:"notes"`
}

// Complete reports whether every field a customer must fill in is present.
func (in BookingInput) Complete() bool {
	return strings.TrimSpace(in.CustomerName) != "" && in.FlightID != 0 &&
		strings.TrimSpace(in.UserEmail) != "" && in.ContactPreference != "" &&
		in.Adults > 0 && !in.DepartureDate.IsZero() && !in.ReturnDate.IsZero() &&
		in.InitialBookingPrice != nil
}

func (s *BookingService) Create(ctx context.Context, in BookingInput) (*models.Booking, error) {
	if !in.Complete() {
		return nil, invalid("Missing required fields")
	}
	if !in.ReturnDate.After(in.DepartureDate.Time) {
		return nil, invalid("Invalid departureDate/returnDate")
	}
	b := models.Booking{
		FlightID:            in.FlightID,
		CustomerName:        strings.TrimSpace(in.CustomerName),
		UserEmail:           strings.TrimSpace(in.UserEmail),
		ContactPhone:        strings.TrimSpace(in.ContactPhone),
		ContactPreference:   in.ContactPreference,
		PeopleCount:         models.PeopleCount{Adults: in.Adults, Children: in.Children, Infants: in.Infants},
		ExtraDetails:        in.ExtraDetails,
		DepartureDate:       in.DepartureDate,
		ReturnDate:          in.ReturnDate,
		InitialBookingPrice: *in.InitialBookingPrice,
		State:               in.State,
		Notes:               strings.TrimSpace(in.Notes),
	}
	if b.ContactPhone == "" {
		b.ContactPhone = "0"
	}
	if in.FinalPrice != nil {
		b.FinalPrice = *in.FinalPrice
	}
	if b.State == "" {
		b.State = models.BookingPending
	}
	if err := b.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	flight, err := s.flights.Get(ctx, b.FlightID)
	if err != nil {
		return nil, notFoundAs(err, "flight not found")
	}
	if err := s.db.WithContext(ctx).Omit("Flight").Create(&b).Error; err != nil {
		return nil, translate(err)
	}
	b.Flight = flight
	return &b, nil
}

type BookingUpdate struct {
	DepartureDate    *models.Date         `json:"departureDate"`
	ReturnDate       *models.Date         `json:"returnDate"`
	DepartureCode    string               `json:"departureCode"`
	ArrivalCode      string               `json:"arrivalCode"`
	AirlineShortName string               `json:"airlineShortName"`
	PeopleCount      *models.PeopleCount  `json:"peopleCount"`
	State            *models.BookingState `json:"state"`
	FinalPrice       *decimal.Decimal     `json:"finalPrice"`
	Notes            *string              `json:"notes"`
}

// Update edits a booking. Naming a route by codes moves the booking onto it,
// creating a placeholder route when needed; the returned id is set only in
// that case.
func (s *BookingService) Update(ctx context.Context, id uint, in BookingUpdate) (*models.Booking, *uint, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, nil, translate(err)
	}
	if in.DepartureDate != nil && !in.DepartureDate.IsZero() {
		b.DepartureDate = *in.DepartureDate
	}
	if in.ReturnDate != nil && !in.ReturnDate.IsZero() {
		if !in.ReturnDate.After(b.DepartureDate.Time) {
			return nil, nil, invalid("Invalid returnDate")
		}
		b.ReturnDate = *in.ReturnDate
	}

	var newFlightID *uint
	if in.DepartureCode != "" || in.ArrivalCode != "" || in.AirlineShortName != "" {
		f, created, err := s.flights.FindOrCreate(ctx, RouteKey{
			DepartureCode:    in.DepartureCode,
			ArrivalCode:      in.ArrivalCode,
			AirlineShortName: in.AirlineShortName,
		})
		if err != nil {
			return nil, nil, err
		}
		b.FlightID = f.ID
		if created {
			newFlightID = &f.ID
		}
	}
	if in.PeopleCount != nil {
		b.PeopleCount = *in.PeopleCount
	}
	if in.State != nil && *in.State != "" {
		b.State = *in.State
	}
	if in.FinalPrice != nil {
		b.FinalPrice = *in.FinalPrice
	}
	if in.Notes != nil {
		b.Notes = strings.TrimSpace(*in.Notes)
	}
	if err := b.Validate(); err != nil {
		return nil, nil, invalid(err.Error())
	}
	if err := s.db.WithContext(ctx).Omit("Flight").Save(&b).Error; err != nil {
		return nil, nil, translate(err)
	}
	return &b, newFlightID, nil
}

func (s *BookingService) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &models.Booking{}, id)
}

type TopFlight struct {
	Departure     string `json:"departure"`
	Arrival       string `json:"arrival"`
	Airline       string `json:"airline"`
	BookingsCount int64  `json:"bookingsCount"`
}

type MonthlyBookings struct {
	Year               int `json:"year"`
	Month              int `json:"month"`
	SalesCount         int `json:"salesCount"`
	DepartingThisMonth int `json:"departingThisMonth"`
}

type Analytics struct {
	TotalBookings        int64                         `json:"totalBookings"`
	ByState              map[models.BookingState]int64 `json:"byState"`
	TopFlights           []TopFlight                   `json:"topFlights"`
	Upcoming7Days        int64                         `json:"upcoming7Days"`
	BookingsLast12Months []MonthlyBookings             `json:"bookingsLast12Months"`
	BookingsAllTime      []MonthlyBookings             `json:"bookingsAllTime"`
}

type yearMonth struct {
	year  int
	month time.Month
}

func ymOf(t time.Time) yearMonth {
	t = t.UTC()
	return yearMonth{t.Year(), t.Month()}
}

func (ym yearMonth) next() yearMonth {
	if ym.month == time.December {
		return yearMonth{ym.year + 1, time.January}
	}
	return yearMonth{ym.year, ym.month + 1}
}

func (ym yearMonth) before(o yearMonth) bool {
	return ym.year < o.year || (ym.year == o.year && ym.month < o.month)
}

// Analytics summarises bookings for the admin dashboard. Sales are bucketed
// by creation month, passengers by departure month.
func (s *BookingService) Analytics(ctx context.Context) (*Analytics, error) {
	now := s.now().UTC()
	a := &Analytics{ByState: map[models.BookingState]int64{}, TopFlights: []TopFlight{}}

	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Count(&a.TotalBookings).Error; err != nil {
		return nil, err
	}
	for _, st := range models.BookingStates {
		a.ByState[st] = 0
	}
	var states []struct {
		State models.BookingState
		N     int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Select("state, COUNT(*) AS n").Group("state").Scan(&states).Error; err != nil {
		return nil, err
	}
	for _, st := range states {
		a.ByState[st.State] = st.N
	}

	var top []struct {
		FlightID uint
		N        int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Select("flight_id, COUNT(*) AS n").Group("flight_id").
		Order("n DESC").Order("flight_id").Limit(3).Scan(&top).Error; err != nil {
		return nil, err
	}
	for _, t := range top {
		f, err := s.flights.Get(ctx, t.FlightID)
		if err != nil {
			// bookings can outlive their route
			continue
		}
		tf := TopFlight{BookingsCount: t.N}
		if f.DepartureAirport != nil {
			tf.Departure = f.DepartureAirport.Name
		}
		if f.ArrivalAirport != nil {
			tf.Arrival = f.ArrivalAirport.Name
		}
		if f.Airline != nil {
			tf.Airline = f.Airline.ShortName
		}
		a.TopFlights = append(a.TopFlights, tf)
	}

	today := models.Date{Time: utils.StartOfDayUTC(now)}
	weekOut := models.Date{Time: today.AddDate(0, 0, 7)}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("departure_date >= ? AND departure_date <= ?", today, weekOut).
		Count(&a.Upcoming7Days).Error; err != nil {
		return nil, err
	}

	var rows []models.Booking
	if err := s.db.WithContext(ctx).Select("id", "created_at", "departure_date", "people_adults", "people_children", "people_infants").Find(&rows).Error; err != nil {
		return nil, err
	}
	sales := map[yearMonth]int{}
	departing := map[yearMonth]int{}
	var keys []yearMonth
	for _, b := range rows {
		k := ymOf(b.CreatedAt)
		sales[k]++
		keys = append(keys, k)
		k = ymOf(b.DepartureDate.Time)
		departing[k] += b.PeopleCount.Total()
		keys = append(keys, k)
	}
	series := func(from, to yearMonth) []MonthlyBookings {
		out := []MonthlyBookings{}
		for ym := from; !to.before(ym); ym = ym.next() {
			out = append(out, MonthlyBookings{
				Year:               ym.year,
				Month:              int(ym.month),
				SalesCount:         sales[ym],
				DepartingThisMonth: departing[ym],
			})
		}
		return out
	}
	a.BookingsLast12Months = series(ymOf(utils.StartOfMonthUTC(now).AddDate(0, -11, 0)), ymOf(now))
	a.BookingsAllTime = []MonthlyBookings{}
	if len(keys) > 0 {
		sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })
		a.BookingsAllTime = series(keys[0], keys[len(keys)-1])
	}
	return a, nil
}
