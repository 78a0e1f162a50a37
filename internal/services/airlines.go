package services

import (
	"context"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

type AirlineService struct {
	db    *gorm.DB
	files FileRemover
}

func NewAirlineService(db *gorm.DB, files FileRemover) *AirlineService {
	return &AirlineService{db: db, files: files}
}

func (s *AirlineService) List(ctx context.Context) ([]models.Airline, error) {
	airlines := []models.Airline{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&airlines).Error
	return airlines, err
}

type AirlineWithFlights struct {
	models.Airline
	HasFlights bool `json:"hasFlights"`
}

// Search filters by a fragment of the short name and flags airlines that
// operate at least one route.
func (s *AirlineService) Search(ctx context.Context, q string, page *utils.Page) ([]AirlineWithFlights, int64, error) {
	scope := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Airline{})
		if q = strings.TrimSpace(q); q != "" {
			tx = tx.Where(`LOWER(short_name) LIKE ? ESCAPE '\'`, containsPattern(q))
		}
		return tx
	}
	tx := scope().Order("short_name")
	var total int64
	if page != nil {
		if err := scope().Count(&total).Error; err != nil {
			return nil, 0, err
		}
		if tp := utils.TotalPages(total, page.Size); page.Number > tp && tp > 0 {
			page.Number = tp
		}
		tx = tx.Offset(page.Offset()).Limit(page.Size)
	}
	var airlines []models.Airline
	if err := tx.Find(&airlines).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(airlines))
	for _, a := range airlines {
		ids = append(ids, a.ID)
	}
	operating := map[uint]bool{}
	if len(ids) > 0 {
		var withFlights []uint
		if err := s.db.WithContext(ctx).Model(&models.Flight{}).Distinct("airline_id").Where("airline_id IN ?", ids).Pluck("airline_id", &withFlights).Error; err != nil {
			return nil, 0, err
		}
		for _, id := range withFlights {
			operating[id] = true
		}
	}
	out := make([]AirlineWithFlights, 0, len(airlines))
	for _, a := range airlines {
		out = append(out, AirlineWithFlights{Airline: a, HasFlights: operating[a.ID]})
	}
	return out, total, nil
}

func (s *AirlineService) Get(ctx context.Context, id uint) (*models.Airline, error) {
	var a models.Airline
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AirlineService) ByShortName(ctx context.Context, name string) (*models.Airline, error) {
	var a models.Airline
	if err := s.db.WithContext(ctx).Where("short_name = ?", strings.TrimSpace(name)).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

type AirlineInput struct {
	ShortName       *string              `json:"shortName"`
	LogoPicture     *string              `json:"logoPicture"`
	MonogramPicture *string              `json:"monogramPicture"`
	Details         *[]models.DetailItem `json:"details"`
	Overview        *string              `json:"overview"`
	Baggage         *bool                `json:"baggage"`
	BaggageArray    *[]models.DetailItem `json:"baggageArray"`
}

func (in AirlineInput) apply(a *models.Airline) {
	if in.ShortName != nil {
		a.ShortName = *in.ShortName
	}
	if in.LogoPicture != nil {
		a.LogoPicture = *in.LogoPicture
	}
	if in.MonogramPicture != nil {
		a.MonogramPicture = *in.MonogramPicture
	}
	if in.Details != nil {
		a.Details = *in.Details
	}
	if in.Overview != nil {
		a.Overview = *in.Overview
	}
	if in.Baggage != nil {
		a.Baggage = *in.Baggage
	}
	if in.BaggageArray != nil {
		a.BaggageArray = *in.BaggageArray
	}
}

func (s *AirlineService) Create(ctx context.Context, in AirlineInput) (*models.Airline, error) {
	var a models.Airline
	in.apply(&a)
	if err := a.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Update removes the logo and monogram files that the update replaced.
func (s *AirlineService) Update(ctx context.Context, id uint, in AirlineInput) (*models.Airline, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *a
	in.apply(a)
	if err := a.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.db.WithContext(ctx).Save(a).Error; err != nil {
		return nil, translate(err)
	}
	if old.LogoPicture != a.LogoPicture {
		s.removeFile(old.LogoPicture)
	}
	if old.MonogramPicture != a.MonogramPicture {
		s.removeFile(old.MonogramPicture)
	}
	return a, nil
}

func (s *AirlineService) Delete(ctx context.Context, id uint) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(a).Error; err != nil {
		return err
	}
	s.removeFile(a.LogoPicture)
	s.removeFile(a.MonogramPicture)
	return nil
}

func (s *AirlineService) removeFile(url string) {
	if s.files == nil || url == "" {
		return
	}
	if err := s.files.Delete(url); err != nil {
		log.Printf("failed to delete airline image %s: %v", url, err)
	}
}
