package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 10

// SiteInfoService owns the single site configuration row, which also holds
// the admin login.
type SiteInfoService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSiteInfoService(db *gorm.DB) *SiteInfoService {
	return &SiteInfoService{db: db, now: utils.NowUTC}
}

func (s *SiteInfoService) Get(ctx context.Context) (*models.SiteInfo, error) {
	var info models.SiteInfo
	if err := s.db.WithContext(ctx).Order("id").First(&info).Error; err != nil {
		return nil, translate(err)
	}
	return &info, nil
}

// Authenticate checks the admin email and password.
func (s *SiteInfoService) Authenticate(ctx context.Context, email, password string) (*models.SiteInfo, error) {
	info, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(info.AdminPassword), []byte(password)) != nil || email != info.AdminEmail {
		return nil, ErrInvalidCredentials
	}
	return info, nil
}

func (s *SiteInfoService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	info, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(info.AdminPassword), []byte(oldPassword)) != nil {
		return invalid("Current password is incorrect")
	}
	if len(newPassword) < 6 {
		return invalid("New password must be at least 6 characters")
	}
	return s.setPassword(ctx, info, info.AdminEmail, newPassword)
}

func (s *SiteInfoService) setPassword(ctx context.Context, info *models.SiteInfo, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	// tokens issued before this instant stop working
	changed := s.now().UTC().Truncate(time.Second)
	return s.db.WithContext(ctx).Model(info).Updates(map[string]any{
		"admin_email":         email,
		"admin_password":      string(hash),
		"password_changed_at": changed,
	}).Error
}

func (s *SiteInfoService) ChangeEmail(ctx context.Context, oldEmail, newEmail string) error {
	oldEmail, newEmail = strings.TrimSpace(oldEmail), strings.TrimSpace(newEmail)
	if oldEmail == "" || newEmail == "" {
		return invalid("oldEmail and newEmail are required")
	}
	if !utils.ValidateEmail(newEmail) {
		return invalid("newEmail is not a valid email address")
	}
	info, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if info.AdminEmail != oldEmail {
		return invalid("Current email does not match")
	}
	return s.db.WithContext(ctx).Model(info).Update("admin_email", newEmail).Error
}

// ResetCredentials generates a fresh admin password for email and hands it
// to deliver. The stored credentials only change once delivery succeeded.
func (s *SiteInfoService) ResetCredentials(ctx context.Context, email string, deliver func(password string) error) error {
	info, err := s.Get(ctx)
	if err != nil {
		return err
	}
	password, err := utils.RandomPassword(8)
	if err != nil {
		return err
	}
	if err := deliver(password); err != nil {
		return err
	}
	return s.setPassword(ctx, info, email, password)
}

// SiteContent is a partial update of the public content. Absent fields keep
// their stored value.
type SiteContent struct {
	ContactEmail  *string              `json:"contactEmail"`
	ContactPhone  *string              `json:"contactPhone"`
	ContactWA     *string              `json:"contactWA"`
	AddressText   *string              `json:"addressText"`
	MapEmbedCode  *string              `json:"mapEmbedCode"`
	AboutInfo     *string              `json:"aboutInfo"`
	AboutUsLong   *[]models.AboutBlock `json:"aboutUsLong"`
	FAQ           *[]models.FAQItem    `json:"faq"`
	PrivacyPolicy *[]models.Section    `json:"privacyPolicy"`
	Terms         *[]models.Section    `json:"terms"`
	Booking       *models.BookingInfo  `json:"booking"`
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// UpdateContent applies c. The map embed is only replaced when an address is
// sent along with a Google Maps embed link or iframe; anything else keeps the
// stored map.
func (s *SiteInfoService) UpdateContent(ctx context.Context, c SiteContent) (*models.SiteInfo, error) {
	info, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	setTrimmed(&info.ContactEmail, c.ContactEmail)
	setTrimmed(&info.ContactPhone, c.ContactPhone)
	setTrimmed(&info.ContactWA, c.ContactWA)
	setTrimmed(&info.AddressText, c.AddressText)
	setTrimmed(&info.AboutInfo, c.AboutInfo)
	if c.AddressText != nil && strings.TrimSpace(*c.AddressText) != "" {
		candidate := info.MapEmbedCode
		if c.MapEmbedCode != nil && *c.MapEmbedCode != "" {
			candidate = *c.MapEmbedCode
		}
		if cleaned := models.CleanMapEmbed(candidate); cleaned != "" {
			info.MapEmbedCode = cleaned
		}
	}
	if c.AboutUsLong != nil {
		info.AboutUsLong = *c.AboutUsLong
	}
	if c.FAQ != nil {
		info.FAQ = *c.FAQ
	}
	if c.PrivacyPolicy != nil {
		info.PrivacyPolicy = *c.PrivacyPolicy
	}
	if c.Terms != nil {
		info.Terms = *c.Terms
	}
	if c.Booking != nil {
		info.Booking = *c.Booking
	}
	if err := s.db.WithContext(ctx).Save(info).Error; err != nil {
		return nil, err
	}
	return info, nil
}

// DefaultSiteInfo is the content a fresh install starts from.
func DefaultSiteInfo() models.SiteInfo {
	return models.SiteInfo{
		AdminEmail:   "admin@admin.com",
		ContactEmail: "info@example.com",
		ContactPhone: "+1-555-555-5555",
		ContactWA:    "+1-555-555-5555",
		AddressText:  "123 Main St, Anytown, USA",
		AboutInfo:    "This is sample about info.",
		AboutUsLong: []models.AboutBlock{
			{Text: "Welcome to Flyva. We're committed to crafting unforgettable journeys for every traveler."},
			{Subheading: "Our Mission", Text: "To deliver exceptional service, unbeatable deals, and a seamless booking experience."},
		},
		FAQ: []models.FAQItem{
			{Question: "Sample Q1?", Answer: "Sample A1."},
			{Question: "Sample Q2?", Answer: "Sample A2."},
		},
		PrivacyPolicy: []models.Section{
			{Heading: "1. Intro", Text: "Sample privacy intro", Bullets: []models.BulletItem{}},
		},
		Terms: []models.Section{
			{
				Heading: "1. Acceptance of Terms",
				Text:    "By using our services, you agree to these Terms & Conditions in full.",
				Bullets: []models.BulletItem{{Heading: "Age Requirement:", Text: "You must be at least 18 years old to book."}},
			},
		},
		Booking: models.BookingInfo{
			Heading: "How booking works",
			Text:    "Send us your trip and we'll confirm availability and price.",
			Items:   []models.BookingItem{{Subheading: "Confirmation", Text: "An agent contacts you within 24 hours."}},
		},
	}
}

// Reset wipes the site configuration and recreates it with the default
// content and the given admin login.
func (s *SiteInfoService) Reset(ctx context.Context, email, password string) (*models.SiteInfo, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	info := DefaultSiteInfo()
	info.AdminEmail = email
	info.AdminPassword = string(hash)
	info.PasswordChangedAt = s.now().UTC().Truncate(time.Second)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SiteInfo{}).Error; err != nil {
			return err
		}
		return tx.Create(&info).Error
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}
