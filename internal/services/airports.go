package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

type AirportService struct {
	db *gorm.DB
}

func NewAirportService(db *gorm.DB) *AirportService {
	return &AirportService{db: db}
}

func (s *AirportService) withPlace(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Location.Country.Region")
}

func (s *AirportService) List(ctx context.Context, page *utils.Page) ([]models.Airport, int64, error) {
	q := s.withPlace(ctx).Order("id")
	var total int64
	if page != nil {
		if err := s.db.WithContext(ctx).Model(&models.Airport{}).Count(&total).Error; err != nil {
			return nil, 0, err
		}
		if tp := utils.TotalPages(total, page.Size); page.Number > tp && tp > 0 {
			page.Number = tp
		}
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	airports := []models.Airport{}
	err := q.Find(&airports).Error
	return airports, total, err
}

func (s *AirportService) Get(ctx context.Context, id uint) (*models.Airport, error) {
	var a models.Airport
	if err := s.withPlace(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AirportService) ByLocation(ctx context.Context, locationID uint) ([]models.Airport, error) {
	airports := []models.Airport{}
	err := s.db.WithContext(ctx).Where("location_id = ?", locationID).Order("id").Find(&airports).Error
	return airports, err
}

func (s *AirportService) IDsByLocation(ctx context.Context, locationID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.Airport{}).Where("location_id = ?", locationID).Order("id").Pluck("id", &ids).Error
	return ids, err
}

type AirportHit struct {
	AirportID    uint   `json:"airportId"`
	AirportName  string `json:"airportName"`
	AirportCode  string `json:"airportCode"`
	LocationID   uint   `json:"locationId"`
	LocationName string `json:"locationName"`
	CountryID    uint   `json:"countryId"`
	CountryName  string `json:"countryName"`
	RegionID     uint   `json:"regionId"`
	RegionName   string `json:"regionName"`
}

// Search finds airports whose own name or code contains q, followed by
// airports whose location, country or region name contains it. Within each
// of those two sets, hits where any of the five names starts with q come
// first, and every group is sorted by airport name.
func (s *AirportService) Search(ctx context.Context, q string) ([]AirportHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []AirportHit{}, nil
	}
	p := containsPattern(q)
	var hits []AirportHit
	err := s.db.WithContext(ctx).Table("airports").
		Select(`airports.id AS airport_id, airports.name AS airport_name, airports.code AS airport_code,
			locations.id AS location_id, locations.name AS location_name,
			countries.id AS country_id, countries.name AS country_name,
			regions.id AS region_id, regions.name AS region_name`).
		Joins("JOIN locations ON locations.id = airports.location_id").
		Joins("JOIN countries ON countries.id = locations.country_id").
		Joins("JOIN regions ON regions.id = countries.region_id").
		Where(`(LOWER(airports.name) LIKE ? ESCAPE '\' OR LOWER(airports.code) LIKE ? ESCAPE '\'
			OR LOWER(locations.name) LIKE ? ESCAPE '\' OR LOWER(countries.name) LIKE ? ESCAPE '\'
			OR LOWER(regions.name) LIKE ? ESCAPE '\')`, p, p, p, p, p).
		Order("airports.id").
		Scan(&hits).Error
	if err != nil {
		return nil, err
	}

	lq := strings.ToLower(q)
	var groups [4][]AirportHit
	for _, h := range hits {
		g := 0
		if !strings.Contains(strings.ToLower(h.AirportName), lq) && !strings.Contains(strings.ToLower(h.AirportCode), lq) {
			g = 1
		}
		if !anyHasPrefix(lq, h.AirportName, h.AirportCode, h.LocationName, h.CountryName, h.RegionName) {
			g += 2
		}
		groups[g] = append(groups[g], h)
	}
	out := make([]AirportHit, 0, len(hits))
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			return strings.ToLower(g[i].AirportName) < strings.ToLower(g[j].AirportName)
		})
		out = append(out, g...)
	}
	return out, nil
}

func anyHasPrefix(prefix string, fields ...string) bool {
	for _, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), prefix) {
			return true
		}
	}
	return false
}

type AirportUsage struct {
	UsedInFlights  bool `json:"usedInFlights"`
	UsedInBookings bool `json:"usedInBookings"`
}

// Usage reports whether deleting the airport would orphan routes or bookings.
func (s *AirportService) Usage(ctx context.Context, id uint) (AirportUsage, error) {
	var u AirportUsage
	routes := s.db.Model(&models.Flight{}).Select("id").Where("departure_airport_id = ? OR arrival_airport_id = ?", id, id)
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Flight{}).Where("departure_airport_id = ? OR arrival_airport_id = ?", id, id).Count(&n).Error; err != nil {
		return u, err
	}
	u.UsedInFlights = n > 0
	if !u.UsedInFlights {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("flight_id IN (?)", routes).Count(&n).Error; err != nil {
		return u, err
	}
	u.UsedInBookings = n > 0
	return u, nil
}

type AirportInput struct {
	Name        *string `json:"name"`
	LocationID  *uint   `json:"locationId"`
	Code        *string `json:"code"`
	IsDeparture *bool   `json:"isDeparture"`
}

func (in AirportInput) apply(a *models.Airport) {
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.LocationID != nil {
		a.LocationID = *in.LocationID
	}
	if in.Code != nil {
		a.Code = *in.Code
	}
	if in.IsDeparture != nil {
		a.IsDeparture = *in.IsDeparture
	}
}

func (s *AirportService) checkLocation(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Location{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return invalid("location not found")
	}
	return nil
}

// Create fails with ErrDuplicate when the code is taken.
func (s *AirportService) Create(ctx context.Context, in AirportInput) (*models.Airport, error) {
	var a models.Airport
	in.apply(&a)
	if err := a.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.checkLocation(ctx, a.LocationID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AirportService) Update(ctx context.Context, id uint, in AirportInput) (*models.Airport, error) {
	var a models.Airport
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	in.apply(&a)
	if err := a.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if in.LocationID != nil {
		if err := s.checkLocation(ctx, a.LocationID); err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Save(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AirportService) SetDeparture(ctx context.Context, id uint, isDeparture bool) (*models.Airport, error) {
	var a models.Airport
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	a.IsDeparture = isDeparture
	if err := s.db.WithContext(ctx).Model(&a).Select("is_departure").Updates(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AirportService) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &models.Airport{}, id)
}

// ByCode looks an airport up by its IATA code.
func (s *AirportService) ByCode(ctx context.Context, code string) (*models.Airport, error) {
	var a models.Airport
	if err := s.db.WithContext(ctx).Where("code = ?", normalizeCode(code)).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}
