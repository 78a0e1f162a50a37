package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type PeopleCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (p PeopleCount) Total() int {
	return p.Adults + p.Children + p.Infants
}

func (p PeopleCount) Validate() error {
	if p.Adults < 1 {
		return errors.New("at least one adult is required")
	}
	if p.Children < 0 || p.Infants < 0 {
		return errors.New("children and infants must be >= 0")
	}
	return nil
}

type BookingState string

const (
	BookingPending    BookingState = "pending"
	BookingCancelled  BookingState = "cancelled"
	BookingConfirmed  BookingState = "confirmed"
	BookingInProgress BookingState = "in-progress"
)

var BookingStates = []BookingState{BookingPending, BookingCancelled, BookingConfirmed, BookingInProgress}

func (s BookingState) Valid() bool {
	for _, st := range BookingStates {
		if s == st {
			return true
		}
	}
	return false
}

type ContactPreference string

const (
	PreferCall     ContactPreference = "call"
	PreferWhatsApp ContactPreference = "whatsapp"
	PreferEmail    ContactPreference = "email"
)

func (c ContactPreference) Valid() bool {
	return c == PreferCall || c == PreferWhatsApp || c == PreferEmail
}

type Booking struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	FlightID            uint              `gorm:"not null;index" json:"flightId"`
	Flight              *Flight           `gorm:"foreignKey:FlightID" json:"flight,omitempty"`
	CustomerName        string            `gorm:"not null" json:"customerName"`
	UserEmail           string            `gorm:"not null" json:"userEmail"`
	ContactPhone        string            `json:"contactPhone"`
	ContactPreference   ContactPreference `gorm:"not null" json:"contactPreference"`
	PeopleCount         PeopleCount       `gorm:"embedded;embeddedPrefix:people_" json:"peopleCount"`
	ExtraDetails        string            `gorm:"type:text" json:"extraDetails"`
	DepartureDate       Date              `gorm:"not null;index" json:"departureDate"`
	ReturnDate          Date              `gorm:"not null" json:"returnDate"`
	InitialBookingPrice decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"initialBookingPrice"`
	State               BookingState      `gorm:"not null;default:'pending';index" json:"state"`
	FinalPrice          decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"finalPrice"`
	Notes               string            `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

func (b *Booking) Validate() error {
	switch {
	case b.FlightID == 0:
		return errors.New("flight is required")
	case b.CustomerName == "" || b.UserEmail == "":
		return errors.New("customerName and userEmail are required")
	case !b.ContactPreference.Valid():
		return errors.New("contactPreference must be call, whatsapp or email")
	case b.DepartureDate.IsZero() || b.ReturnDate.IsZero():
		return errors.New("departureDate and returnDate are required")
	case !b.ReturnDate.After(b.DepartureDate.Time):
		return errors.New("returnDate must come after departureDate")
	case b.InitialBookingPrice.IsNegative():
		return errors.New("initialBookingPrice must be >= 0")
	case b.State != "" && !b.State.Valid():
		return errors.New("invalid state")
	}
	return b.PeopleCount.Validate()
}

type Quote struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	CustomerName       string          `gorm:"not null" json:"customerName"`
	Email              string          `gorm:"not null" json:"email"`
	ContactPhone       string          `json:"contactPhone"`
	TripType           TripType        `gorm:"not null" json:"tripType"`
	From               string          `gorm:"column:from_place;not null" json:"from"`
	To                 string          `gorm:"column:to_place;not null" json:"to"`
	PreferredAirlineID *uint           `gorm:"index" json:"preferredAirlineId"`
	PreferredAirline   *Airline        `gorm:"foreignKey:PreferredAirlineID" json:"preferredAirline,omitempty"`
	DepartureDate      Date            `gorm:"not null" json:"departureDate"`
	ArrivalDate        *Date           `json:"arrivalDate"`
	ExtraDetails       string          `gorm:"type:text" json:"extraDetails"`
	PassengerCount     PeopleCount     `gorm:"embedded;embeddedPrefix:passengers_" json:"passengerCount"`
	Status             InquiryStatus   `gorm:"not null;default:'pending';index" json:"status"`
	Price              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Notes              string          `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (q *Quote) Validate() error {
	switch {
	case q.CustomerName == "" || q.Email == "" || q.From == "" || q.To == "":
		return errors.New("customerName, email, from and to are required")
	case !q.TripType.Valid():
		return errors.New("invalid trip type, choose one-way or round-trip")
	case q.DepartureDate.IsZero():
		return errors.New("departureDate is required")
	case q.Status != "" && !q.Status.Valid():
		return errors.New("invalid status")
	case q.Price.IsNegative():
		return errors.New("price must be >= 0")
	}
	if q.TripType == TripRoundTrip {
		if q.ArrivalDate == nil || q.ArrivalDate.IsZero() {
			return errors.New("arrivalDate is required for round-trip quotes")
		}
		if !q.ArrivalDate.After(q.DepartureDate.Time) {
			return errors.New("arrivalDate must be after departureDate for round-trip quotes")
		}
	}
	return q.PassengerCount.Validate()
}
