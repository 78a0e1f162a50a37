package services

import (
	"context"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

type LocationService struct {
	db    *gorm.DB
	files FileRemover
}

func NewLocationService(db *gorm.DB, files FileRemover) *LocationService {
	return &LocationService{db: db, files: files}
}

// LocationWithAirport is a location plus whether any airport serves it.
type LocationWithAirport struct {
	models.Location
	HasAirport bool `json:"hasAirport"`
}

func (s *LocationService) airportLocations(ctx context.Context, ids []uint) (map[uint]bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Airport{}).Distinct("location_id")
	if ids != nil {
		q = q.Where("location_id IN ?", ids)
	}
	var withAirport []uint
	if err := q.Pluck("location_id", &withAirport).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(withAirport))
	for _, id := range withAirport {
		set[id] = true
	}
	return set, nil
}

func (s *LocationService) List(ctx context.Context) ([]LocationWithAirport, error) {
	var locs []models.Location
	if err := s.db.WithContext(ctx).Preload("Country").Order("name").Find(&locs).Error; err != nil {
		return nil, err
	}
	has, err := s.airportLocations(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]LocationWithAirport, 0, len(locs))
	for _, l := range locs {
		out = append(out, LocationWithAirport{Location: l, HasAirport: has[l.ID]})
	}
	return out, nil
}

func (s *LocationService) Get(ctx context.Context, id uint) (*LocationWithAirport, error) {
	var l models.Location
	if err := s.db.WithContext(ctx).Preload("Country").First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	has, err := s.HasAirport(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LocationWithAirport{Location: l, HasAirport: has}, nil
}

func (s *LocationService) find(ctx context.Context, where string, args ...any) ([]models.Location, error) {
	locs := []models.Location{}
	err := s.db.WithContext(ctx).Preload("Country.Region").Where(where, args...).Order("name").Find(&locs).Error
	return locs, err
}

func (s *LocationService) Popular(ctx context.Context) ([]models.Location, error) {
	return s.find(ctx, "is_popular = ?", true)
}

func (s *LocationService) ByCountry(ctx context.Context, countryID uint) ([]models.Location, error) {
	return s.find(ctx, "country_id = ?", countryID)
}

type Deals struct {
	LastMinutes     []models.Location `json:"lastMinutes"`
	TopDestinations []models.Location `json:"topDestinations"`
	HotDeals        []models.Location `json:"hotDeals"`
}

func (s *LocationService) Deals(ctx context.Context) (*Deals, error) {
	locs, err := s.find(ctx, "dealings <> ?", models.DealingsNone)
	if err != nil {
		return nil, err
	}
	d := &Deals{LastMinutes: []models.Location{}, TopDestinations: []models.Location{}, HotDeals: []models.Location{}}
	for _, l := range locs {
		switch l.Dealings {
		case models.DealingsLastMinutes:
			d.LastMinutes = append(d.LastMinutes, l)
		case models.DealingsTopDestinations:
			d.TopDestinations = append(d.TopDestinations, l)
		case models.DealingsHotDeals:
			d.HotDeals = append(d.HotDeals, l)
		}
	}
	return d, nil
}

// ByRegion lists the locations of every country in the region. With a page
// it also returns the total count.
func (s *LocationService) ByRegion(ctx context.Context, regionID uint, page *utils.Page) ([]models.Location, int64, error) {
	scope := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Location{}).
			Where("country_id IN (?)", s.db.Model(&models.Country{}).Select("id").Where("region_id = ?", regionID))
	}
	q := scope()
	var total int64
	if page != nil {
		if err := scope().Count(&total).Error; err != nil {
			return nil, 0, err
		}
		if tp := utils.TotalPages(total, page.Size); page.Number > tp && tp > 0 {
			page.Number = tp
		}
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	locs := []models.Location{}
	err := q.Preload("Country.Region").Order("name").Find(&locs).Error
	return locs, total, err
}

type LocationHit struct {
	LocationID   uint   `json:"locationId"`
	LocationName string `json:"locationName"`
	CountryID    uint   `json:"countryId"`
	CountryName  string `json:"countryName"`
	RegionID     uint   `json:"regionId"`
	RegionName   string `json:"regionName"`
}

// LocationDetailHit is a LocationHit with the content fields the admin
// location picker shows.
type LocationDetailHit struct {
	LocationHit
	Image               string          `json:"image"`
	IsPopular           bool            `json:"isPopular"`
	Description         *string         `json:"description"`
	Dealings            models.Dealings `json:"dealings"`
	DealingsDescription *string         `json:"dealingsDescription"`
	HasAirports         bool            `json:"hasAirports"`
}

type LocationSearch struct {
	Q         string
	CountryID *uint
}

// Search matches q against location, country and region names, ordered by
// location name.
func (s *LocationService) Search(ctx context.Context, in LocationSearch) ([]LocationDetailHit, error) {
	q := s.db.WithContext(ctx).Table("locations").
		Select(`locations.id AS location_id, locations.name AS location_name,
			countries.id AS country_id, countries.name AS country_name,
			regions.id AS region_id, regions.name AS region_name,
			locations.image, locations.is_popular, locations.description,
			locations.dealings, locations.dealings_description`).
		Joins("JOIN countries ON countries.id = locations.country_id").
		Joins("JOIN regions ON regions.id = countries.region_id")
	if term := strings.TrimSpace(in.Q); term != "" {
		p := containsPattern(term)
		q = q.Where(`(LOWER(locations.name) LIKE ? ESCAPE '\' OR LOWER(countries.name) LIKE ? ESCAPE '\' OR LOWER(regions.name) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if in.CountryID != nil {
		q = q.Where("locations.country_id = ?", *in.CountryID)
	}
	hits := []LocationDetailHit{}
	if err := q.Order("LOWER(locations.name), locations.id").Scan(&hits).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.LocationID)
	}
	if len(ids) > 0 {
		has, err := s.airportLocations(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			hits[i].HasAirports = has[hits[i].LocationID]
		}
	}
	return hits, nil
}

func (s *LocationService) HasAirport(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Airport{}).Where("location_id = ?", id).Limit(1).Count(&n).Error
	return n > 0, err
}

// FirstAirport returns the lowest-id airport of the location, or nil.
func (s *LocationService) FirstAirport(ctx context.Context, id uint) (*models.Airport, error) {
	var a models.Airport
	tx := s.db.WithContext(ctx).Where("location_id = ?", id).Order("id").Limit(1).Find(&a)
	if tx.Error != nil || tx.RowsAffected == 0 {
		return nil, tx.Error
	}
	return &a, nil
}

type LocationInput struct {
	Name                *string          `json:"name"`
	CountryID           *uint            `json:"countryId"`
	Image               *string          `json:"image"`
	IsPopular           *bool            `json:"isPopular"`
	Description         *string          `json:"description"`
	Dealings            *models.Dealings `json:"dealings"`
	DealingsDescription *string          `json:"dealingsDescription"`
}

func (in LocationInput) apply(l *models.Location) {
	if in.Name != nil {
		l.Name = strings.TrimSpace(*in.Name)
	}
	if in.CountryID != nil {
		l.CountryID = *in.CountryID
	}
	if in.Image != nil {
		l.Image = *in.Image
	}
	if in.IsPopular != nil {
		l.IsPopular = *in.IsPopular
	}
	if in.Description != nil {
		l.Description = in.Description
	}
	if in.Dealings != nil {
		l.Dealings = *in.Dealings
	}
	if in.DealingsDescription != nil {
		l.DealingsDescription = in.DealingsDescription
	}
}

func (s *LocationService) checkCountry(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Country{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return invalid("country not found")
	}
	return nil
}

func (s *LocationService) Create(ctx context.Context, in LocationInput) (*models.Location, error) {
	var l models.Location
	in.apply(&l)
	if err := l.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if l.Image == "" {
		return nil, invalid("image is required")
	}
	if err := s.checkCountry(ctx, l.CountryID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// Update applies in and removes the previous image file when it was replaced.
func (s *LocationService) Update(ctx context.Context, id uint, in LocationInput) (*models.Location, error) {
	var l models.Location
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	oldImage := l.Image
	in.apply(&l)
	if err := l.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if in.CountryID != nil {
		if err := s.checkCountry(ctx, l.CountryID); err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Save(&l).Error; err != nil {
		return nil, translate(err)
	}
	if oldImage != "" && oldImage != l.Image {
		s.removeFile(oldImage)
	}
	return &l, nil
}

func (s *LocationService) Delete(ctx context.Context, id uint) error {
	var l models.Location
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return translate(err)
	}
	if err := s.db.WithContext(ctx).Delete(&l).Error; err != nil {
		return err
	}
	if l.Image != "" {
		s.removeFile(l.Image)
	}
	return nil
}

// SetPopular toggles the popular flag; the description is dropped when the
// location stops being popular.
func (s *LocationService) SetPopular(ctx context.Context, id uint, popular bool, description string) (*models.Location, error) {
	if popular && strings.TrimSpace(description) == "" {
		return nil, invalid("Description required when setting isPopular to true")
	}
	var l models.Location
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	l.IsPopular, l.Description = popular, nil
	if popular {
		l.Description = &description
	}
	if err := s.db.WithContext(ctx).Model(&l).Select("is_popular", "description").Updates(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LocationService) SetDealings(ctx context.Context, id uint, dealings models.Dealings, description string) (*models.Location, error) {
	if !dealings.Valid() {
		return nil, invalid("invalid dealings")
	}
	if dealings != models.DealingsNone && strings.TrimSpace(description) == "" {
		return nil, invalid("dealingsDescription required when dealings != none")
	}
	var l models.Location
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	l.Dealings, l.DealingsDescription = dealings, nil
	if dealings != models.DealingsNone {
		l.DealingsDescription = &description
	}
	if err := s.db.WithContext(ctx).Model(&l).Select("dealings", "dealings_description").Updates(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LocationService) removeFile(url string) {
	if s.files == nil {
		return
	}
	if err := s.files.Delete(url); err != nil {
		log.Printf("failed to delete image %s: %v", url, err)
	}
}
