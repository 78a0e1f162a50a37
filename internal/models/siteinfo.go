package models

import (
	"strings"
	"time"
)

type BulletItem struct {
	Text    string `json:"text"`
	Heading string `json:"heading,omitempty"`
}

type Section struct {
	Heading string       `json:"heading"`
	Text    string       `json:"text"`
	Bullets []BulletItem `json:"bullets"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type BookingItem struct {
	Subheading string `json:"subheading"`
	Text       string `json:"text"`
}

type BookingInfo struct {
	Heading string        `json:"heading"`
	Text    string        `json:"text"`
	Items   []BookingItem `json:"items"`
}

type AboutBlock struct {
	Subheading string `json:"subheading,omitempty"`
	Text       string `json:"text"`
}

// SiteInfo is the single row holding the agency's public content and the
// admin credentials.
type SiteInfo struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	AdminEmail        string       `gorm:"not null" json:"adminEmail"`
	AdminPassword     string       `gorm:"not null" json:"-"`
	PasswordChangedAt time.Time    `json:"-"`
	ContactEmail      string       `json:"contactEmail"`
	ContactPhone      string       `json:"contactPhone"`
	ContactWA         string       `gorm:"column:contact_wa" json:"contactWA"`
	AddressText       string       `gorm:"type:text" json:"addressText"`
	MapEmbedCode      string       `gorm:"type:text" json:"mapEmbedCode"`
	AboutInfo         string       `gorm:"type:text" json:"aboutInfo"`
	AboutUsLong       []AboutBlock `gorm:"type:text;serializer:json" json:"aboutUsLong"`
	FAQ               []FAQItem    `gorm:"column:faq;type:text;serializer:json" json:"faq"`
	PrivacyPolicy     []Section    `gorm:"type:text;serializer:json" json:"privacyPolicy"`
	Terms             []Section    `gorm:"type:text;serializer:json" json:"terms"`
	Booking           BookingInfo  `gorm:"type:text;serializer:json" json:"booking"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// WhatsAppLink returns the wa.me link for the configured WhatsApp number.
func (s *SiteInfo) WhatsAppLink() string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s.ContactWA)
	return "https://wa.me/" + digits
}

const mapsEmbedPrefix = "https://www.google.com/maps/embed"

// CleanMapEmbed extracts a Google Maps embed URL from either a bare URL or a
// pasted <iframe src="..."> snippet. It returns "" for anything else.
func CleanMapEmbed(input string) string {
	url := strings.TrimSpace(input)
	const marker = `src="`
	if i := strings.Index(url, marker); i != -1 {
		rest := url[i+len(marker):]
		if end := strings.IndexByte(rest, '"'); end != -1 {
			url = rest[:end]
		}
	}
	if strings.HasPrefix(url, mapsEmbedPrefix) {
		return url
	}
	return ""
}
