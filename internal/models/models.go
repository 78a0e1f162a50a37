package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type Region struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	RegionID  uint      `gorm:"not null;index" json:"regionId"`
	Region    *Region   `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Dealings places a location on one of the deals pages.
type Dealings string

const (
	DealingsNone            Dealings = "none"
	DealingsLastMinutes     Dealings = "last-minutes"
	DealingsTopDestinations Dealings = "top-destinations"
	DealingsHotDeals        Dealings = "hot-deals"
)

func (d Dealings) Valid() bool {
	switch d {
	case DealingsNone, DealingsLastMinutes, DealingsTopDestinations, DealingsHotDeals:
		return true
	}
	return false
}

type Location struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"not null;index" json:"name"`
	CountryID           uint      `gorm:"not null;index" json:"countryId"`
	Country             *Country  `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Image               string    `json:"image"`
	IsPopular           bool      `gorm:"not null;default:false;index" json:"isPopular"`
	Description         *string   `json:"description"`
	Dealings            Dealings  `gorm:"not null;default:'none';index" json:"dealings"`
	DealingsDescription *string   `json:"dealingsDescription"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Validate enforces the popular/dealings description rules.
func (l *Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if l.CountryID == 0 {
		return fmt.Errorf("country is required")
	}
	if l.Dealings == "" {
		l.Dealings = DealingsNone
	}
	if !l.Dealings.Valid() {
		return fmt.Errorf("invalid dealings %q", l.Dealings)
	}
	if l.IsPopular && (l.Description == nil || strings.TrimSpace(*l.Description) == "") {
		return fmt.Errorf("description is required for popular locations")
	}
	if l.Dealings != DealingsNone && (l.DealingsDescription == nil || strings.TrimSpace(*l.DealingsDescription) == "") {
		return fmt.Errorf("dealingsDescription is required when dealings is not none")
	}
	return nil
}

type Airport struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	LocationID  uint      `gorm:"not null;index" json:"locationId"`
	Location    *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Code        string    `gorm:"size:3;uniqueIndex;not null" json:"code"`
	IsDeparture bool      `gorm:"not null;default:false" json:"isDeparture"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Normalize trims and upper-cases the IATA code.
func (a *Airport) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Code = strings.ToUpper(strings.TrimSpace(a.Code))
}

func (a *Airport) Validate() error {
	a.Normalize()
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.LocationID == 0 {
		return fmt.Errorf("location is required")
	}
	if len(a.Code) != 3 {
		return fmt.Errorf("code must be exactly 3 characters")
	}
	return nil
}

// InquiryStatus tracks how far the agency got with a quote or contact message.
type InquiryStatus string

const (
	InquiryPending    InquiryStatus = "pending"
	InquiryInProgress InquiryStatus = "in-progress"
	InquiryResponded  InquiryStatus = "responded"
	InquiryClosed     InquiryStatus = "closed"
)

func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryPending, InquiryInProgress, InquiryResponded, InquiryClosed:
		return true
	}
	return false
}

type Contact struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Name       string        `gorm:"not null" json:"name"`
	Email      string        `gorm:"not null" json:"email"`
	Phone      string        `json:"phone"`
	Message    string        `gorm:"type:text;not null" json:"message"`
	Status     InquiryStatus `gorm:"not null;default:'pending';index" json:"status"`
	ExtraNotes string        `gorm:"type:text" json:"extraNotes"`
	CreatedAt  time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Date is a calendar day. It marshals as YYYY-MM-DD and accepts RFC 3339
// timestamps on input, keeping only the date part.
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return DateOf(t), nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (Date) GormDataType() string {
	return "date"
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v.UTC())
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			*d = DateOf(t)
			return nil
		}
	}
	return fmt.Errorf("cannot scan %q into Date", s)
}
