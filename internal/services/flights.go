package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

const FlightPageSize = 50

type FlightService struct {
	db *gorm.DB
}

func NewFlightService(db *gorm.DB) *FlightService {
	return &FlightService{db: db}
}

func (s *FlightService) withRefs(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("DepartureAirport").Preload("ArrivalAirport").Preload("Airline")
}

// List returns one page of routes; pages past the end come back empty.
func (s *FlightService) List(ctx context.Context, page int) ([]models.Flight, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Flight{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := utils.Page{Number: max(page, 1), Size: FlightPageSize}
	flights := []models.Flight{}
	err := s.withRefs(ctx).Order("id").Offset(p.Offset()).Limit(p.Size).Find(&flights).Error
	return flights, total, err
}

func (s *FlightService) Get(ctx context.Context, id uint) (*models.Flight, error) {
	var f models.Flight
	if err := s.withRefs(ctx).First(&f, id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (s *FlightService) HasBookings(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Flight{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("flight_id = ?", id).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *FlightService) checkRefs(ctx context.Context, f *models.Flight) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Airport{}).Where("id IN ?", []uint{f.DepartureAirportID, f.ArrivalAirportID}).Count(&n).Error; err != nil {
		return err
	}
	want := int64(2)
	if f.DepartureAirportID == f.ArrivalAirportID {
		want = 1
	}
	if n != want {
		return invalid("airport not found")
	}
	if err := s.db.WithContext(ctx).Model(&models.Airline{}).Where("id = ?", f.AirlineID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return invalid("airline not found")
	}
	return nil
}

// Create stores a fully priced route. A second route for the same airports
// and airline fails with ErrDuplicate.
func (s *FlightService) Create(ctx context.Context, f *models.Flight) error {
	if err := f.Validate(); err != nil {
		return invalid(err.Error())
	}
	if err := s.checkRefs(ctx, f); err != nil {
		return err
	}
	f.ID = 0
	f.DepartureAirport, f.ArrivalAirport, f.Airline = nil, nil, nil
	return translate(s.db.WithContext(ctx).Create(f).Error)
}

type FlightUpdate struct {
	ToDuration   *models.Duration  `json:"toDuration"`
	FromDuration *models.Duration  `json:"fromDuration"`
	Prices       *models.FareTable `json:"prices"`
	Stops        *int              `json:"stops"`
}

// Update changes durations, prices and stops; the route itself is fixed.
func (s *FlightService) Update(ctx context.Context, id uint, in FlightUpdate) (*models.Flight, error) {
	var f models.Flight
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, translate(err)
	}
	if in.ToDuration != nil {
		f.ToDuration = *in.ToDuration
	}
	if in.FromDuration != nil {
		f.FromDuration = *in.FromDuration
	}
	if in.Prices != nil {
		f.Prices = *in.Prices
	}
	if in.Stops != nil {
		f.Stops = in.Stops
	}
	if err := f.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.db.WithContext(ctx).Save(&f).Error; err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, id)
}

func (s *FlightService) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &models.Flight{}, id)
}

// RouteKey names a route by ids or by codes; ids win when both are set.
type RouteKey struct {
	DepartureAirportID *uint  `json:"departureAirport"`
	DepartureCode      string `json:"departureCode"`
	ArrivalAirportID   *uint  `json:"arrivalAirport"`
	ArrivalCode        string `json:"arrivalCode"`
	AirlineID          *uint  `json:"airline_id"`
	AirlineShortName   string `json:"airlineShortName"`
}

func (s *FlightService) resolveAirport(ctx context.Context, id *uint, code string) (*models.Airport, error) {
	var a models.Airport
	var err error
	switch {
	case id != nil:
		err = s.db.WithContext(ctx).First(&a, *id).Error
	case code != "":
		err = s.db.WithContext(ctx).Where("code = ?", normalizeCode(code)).First(&a).Error
	default:
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// FindOrCreate returns the route for key, creating it with placeholder fares
// and one-minute durations when it does not exist yet.
func (s *FlightService) FindOrCreate(ctx context.Context, key RouteKey) (*models.Flight, bool, error) {
	dep, err := s.resolveAirport(ctx, key.DepartureAirportID, key.DepartureCode)
	if err != nil {
		return nil, false, notFoundAs(err, "Invalid departure airport")
	}
	arr, err := s.resolveAirport(ctx, key.ArrivalAirportID, key.ArrivalCode)
	if err != nil {
		return nil, false, notFoundAs(err, "Invalid arrival airport")
	}
	var al models.Airline
	switch {
	case key.AirlineID != nil:
		err = s.db.WithContext(ctx).First(&al, *key.AirlineID).Error
	case key.AirlineShortName != "":
		err = s.db.WithContext(ctx).Where("short_name = ?", key.AirlineShortName).First(&al).Error
	default:
		err = gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, false, notFoundAs(translate(err), "Invalid airline")
	}

	var f models.Flight
	tx := s.db.WithContext(ctx).
		Where("departure_airport_id = ? AND arrival_airport_id = ? AND airline_id = ?", dep.ID, arr.ID, al.ID).
		Limit(1).Find(&f)
	if tx.Error != nil {
		return nil, false, tx.Error
	}
	created := false
	if tx.RowsAffected == 0 {
		f = models.Flight{
			DepartureAirportID: dep.ID,
			ArrivalAirportID:   arr.ID,
			AirlineID:          al.ID,
			Prices:             models.PlaceholderFareTable(),
			ToDuration:         models.Duration{Minutes: 1},
			FromDuration:       models.Duration{Minutes: 1},
		}
		if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
			return nil, false, translate(err)
		}
		created = true
	}
	f.DepartureAirport, f.ArrivalAirport, f.Airline = dep, arr, &al
	return &f, created, nil
}

// PriceEntry picks the fare row for an English month name.
func PriceEntry(f *models.Flight, month string) *models.PriceEntry {
	m, ok := models.ParseMonth(month)
	if !ok {
		return nil
	}
	e := f.Prices.Entry(m)
	return &e
}

func notFoundAs(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return invalid(msg)
	}
	return err
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
