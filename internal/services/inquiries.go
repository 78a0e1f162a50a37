package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
)

type QuoteService struct {
	db *gorm.DB
}

func NewQuoteService(db *gorm.DB) *QuoteService {
	return &QuoteService{db: db}
}

type QuoteInput struct {
	CustomerName     string              `json:"customerName"`
	Email            string              `json:"email"`
	ContactPhone     string              `json:"contactPhone"`
	TripType         models.TripType     `json:"tripType"`
	From             string              `json:"from"`
	To               string              `json:"to"`
	PreferredAirline *uint               `json:"preferredAirline"`
	DepartureDate    models.Date         `json:"departureDate"`
	ArrivalDate      *models.Date        `json:"arrivalDate"`
	ExtraDetails     string              `json:"extraDetails"`
	PassengerCount   *models.PeopleCount `json:"passengerCount"`
}

func (s *QuoteService) checkAirline(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Airline{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return invalid("preferredAirline not found")
	}
	return nil
}

func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*models.Quote, error) {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.Email) == "" || in.TripType == "" ||
		strings.TrimSpace(in.From) == "" || strings.TrimSpace(in.To) == "" ||
		in.DepartureDate.IsZero() || in.PassengerCount == nil {
		return nil, invalid("Missing required fields: customerName, email, tripType, from, to, departureDate, arrivalDate, passengerCount")
	}
	if !in.TripType.Valid() {
		return nil, invalid("Invalid trip type. Please choose one-way or round-trip")
	}
	if in.TripType == models.TripRoundTrip && (in.ArrivalDate == nil || in.ArrivalDate.IsZero()) {
		return nil, invalid("arrival date required for round trips")
	}
	if err := s.checkAirline(ctx, in.PreferredAirline); err != nil {
		return nil, err
	}
	q := models.Quote{
		CustomerName:       strings.TrimSpace(in.CustomerName),
		Email:              strings.TrimSpace(in.Email),
		ContactPhone:       strings.TrimSpace(in.ContactPhone),
		TripType:           in.TripType,
		From:               strings.TrimSpace(in.From),
		To:                 strings.TrimSpace(in.To),
		PreferredAirlineID: in.PreferredAirline,
		DepartureDate:      in.DepartureDate,
		ExtraDetails:       strings.TrimSpace(in.ExtraDetails),
		PassengerCount:     *in.PassengerCount,
		Status:             models.InquiryPending,
	}
	// one-way quotes never carry a return date
	if in.TripType == models.TripRoundTrip {
		q.ArrivalDate = in.ArrivalDate
	}
	if err := q.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.db.WithContext(ctx).Create(&q).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (s *QuoteService) List(ctx context.Context) ([]models.Quote, error) {
	quotes := []models.Quote{}
	err := s.db.WithContext(ctx).Preload("PreferredAirline").Order("created_at DESC").Order("id DESC").Find(&quotes).Error
	return quotes, err
}

func (s *QuoteService) Get(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	if err := s.db.WithContext(ctx).Preload("PreferredAirline").First(&q, id).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

type QuoteUpdate struct {
	TripType         *models.TripType      `json:"tripType"`
	From             *string               `json:"from"`
	To               *string               `json:"to"`
	PreferredAirline *uint                 `json:"preferredAirline"`
	DepartureDate    *models.Date          `json:"departureDate"`
	ArrivalDate      *models.Date          `json:"arrivalDate"`
	PassengerCount   *models.PeopleCount   `json:"passengerCount"`
	Status           *models.InquiryStatus `json:"status"`
	Price            *decimal.Decimal      `json:"price"`
	Notes            *string               `json:"notes"`
}

func (s *QuoteService) Update(ctx context.Context, id uint, in QuoteUpdate) (*models.Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.TripType != nil && *in.TripType != "" {
		q.TripType = *in.TripType
	}
	if in.From != nil && strings.TrimSpace(*in.From) != "" {
		q.From = strings.TrimSpace(*in.From)
	}
	if in.To != nil && strings.TrimSpace(*in.To) != "" {
		q.To = strings.TrimSpace(*in.To)
	}
	if in.PreferredAirline != nil {
		if err := s.checkAirline(ctx, in.PreferredAirline); err != nil {
			return nil, err
		}
		q.PreferredAirlineID = in.PreferredAirline
	}
	if in.DepartureDate != nil && !in.DepartureDate.IsZero() {
		q.DepartureDate = *in.DepartureDate
	}
	if in.ArrivalDate != nil && !in.ArrivalDate.IsZero() {
		q.ArrivalDate = in.ArrivalDate
	}
	if in.PassengerCount != nil {
		q.PassengerCount = *in.PassengerCount
	}
	if in.Status != nil && *in.Status != "" {
		q.Status = *in.Status
	}
	if in.Price != nil {
		q.Price = *in.Price
	}
	if in.Notes != nil {
		q.Notes = strings.TrimSpace(*in.Notes)
	}
	if err := q.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.db.WithContext(ctx).Omit("PreferredAirline").Save(q).Error; err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, id)
}

func (s *QuoteService) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &models.Quote{}, id)
}

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	contacts := []models.Contact{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&contacts).Error
	return contacts, err
}

func (s *ContactService) Create(ctx context.Context, name, email, phone, message string) (*models.Contact, error) {
	c := models.Contact{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Phone:   strings.TrimSpace(phone),
		Message: strings.TrimSpace(message),
		Status:  models.InquiryPending,
	}
	if c.Name == "" || c.Email == "" || c.Message == "" {
		return nil, invalid("name, email, and message are required")
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Update changes the triage status and notes of a message.
func (s *ContactService) Update(ctx context.Context, id uint, status *models.InquiryStatus, notes *string) (*models.Contact, error) {
	if status != nil && *status != "" && !status.Valid() {
		return nil, invalid("Invalid status")
	}
	var c models.Contact
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	if status != nil && *status != "" {
		c.Status = *status
	}
	if notes != nil {
		c.ExtraNotes = strings.TrimSpace(*notes)
	}
	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &models.Contact{}, id)
}
