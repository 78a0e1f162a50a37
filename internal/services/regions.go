package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
)

// RegionService manages regions and the countries inside them.
type RegionService struct {
	db *gorm.DB
}

func NewRegionService(db *gorm.DB) *RegionService {
	return &RegionService{db: db}
}

func (s *RegionService) ListRegions(ctx context.Context) ([]models.Region, error) {
	regions := []models.Region{}
	err := s.db.WithContext(ctx).Order("name").Find(&regions).Error
	return regions, err
}

func (s *RegionService) GetRegion(ctx context.Context, id uint) (*models.Region, error) {
	var r models.Region
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *RegionService) nameTaken(ctx context.Context, name string, except uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Region{}).Where("name = ? AND id <> ?", name, except).Count(&n).Error
	return n > 0, err
}

func (s *RegionService) CreateRegion(ctx context.Context, name string) (*models.Region, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if taken, err := s.nameTaken(ctx, name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicate
	}
	r := models.Region{Name: name}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *RegionService) UpdateRegion(ctx context.Context, id uint, name string) (*models.Region, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if taken, err := s.nameTaken(ctx, name, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicate
	}
	r, err := s.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Name = name
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, translate(err)
	}
	return r, nil
}

func (s *RegionService) DeleteRegion(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &models.Region{}, id)
}

func (s *RegionService) ListCountries(ctx context.Context) ([]models.Country, error) {
	countries := []models.Country{}
	err := s.db.WithContext(ctx).Preload("Region").Order("name").Find(&countries).Error
	return countries, err
}

// CountriesInRegion fails with ErrNotFound when the region does not exist.
func (s *RegionService) CountriesInRegion(ctx context.Context, regionID uint) ([]models.Country, error) {
	if _, err := s.GetRegion(ctx, regionID); err != nil {
		return nil, err
	}
	countries := []models.Country{}
	err := s.db.WithContext(ctx).Preload("Region").Where("region_id = ?", regionID).Order("name").Find(&countries).Error
	return countries, err
}

func (s *RegionService) GetCountry(ctx context.Context, id uint) (*models.Country, error) {
	var c models.Country
	if err := s.db.WithContext(ctx).Preload("Region").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// CreateCountry requires the caller to echo the region's current name, so a
// stale admin form cannot file a country under a renamed region.
func (s *RegionService) CreateCountry(ctx context.Context, name string, regionID uint, regionName string) (*models.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" || regionID == 0 || regionName == "" {
		return nil, invalid("Must provide country name and region { id, name }")
	}
	r, err := s.GetRegion(ctx, regionID)
	if err != nil || r.Name != regionName {
		return nil, invalid("Invalid region id or name")
	}
	c := models.Country{Name: name, RegionID: r.ID}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, translate(err)
	}
	c.Region = r
	return &c, nil
}

type CountryInput struct {
	Name     *string `json:"name"`
	RegionID *uint   `json:"regionId"`
}

func (s *RegionService) UpdateCountry(ctx context.Context, id uint, in CountryInput) (*models.Country, error) {
	c, err := s.GetCountry(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if c.Name = strings.TrimSpace(*in.Name); c.Name == "" {
			return nil, invalid("name is required")
		}
	}
	if in.RegionID != nil && *in.RegionID != c.RegionID {
		r, err := s.GetRegion(ctx, *in.RegionID)
		if err != nil {
			return nil, invalid("region not found")
		}
		c.RegionID, c.Region = r.ID, r
	}
	if err := s.db.WithContext(ctx).Omit("Region").Save(c).Error; err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (s *RegionService) DeleteCountry(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &models.Country{}, id)
}

// deleteByID removes one row and reports ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, db *gorm.DB, model any, id uint) error {
	tx := db.WithContext(ctx).Delete(model, id)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
