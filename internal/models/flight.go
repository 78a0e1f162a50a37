package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TripType string

const (
	TripOneWay    TripType = "one-way"
	TripRoundTrip TripType = "round-trip"
)

func (t TripType) Valid() bool {
	return t == TripOneWay || t == TripRoundTrip
}

// Duration is a flight leg length as entered by the agency.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (d Duration) String() string {
	return fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
}

func (d Duration) Validate() error {
	if d.Hours < 0 {
		return fmt.Errorf("hours must be >= 0")
	}
	if d.Minutes < 0 || d.Minutes > 59 {
		return fmt.Errorf("minutes must be between 0 and 59")
	}
	return nil
}

type Discount struct {
	OneWay    decimal.Decimal `json:"oneWay"`
	RoundTrip decimal.Decimal `json:"roundTrip"`
}

// MonthlyFare is the price list of a route for one calendar month.
type MonthlyFare struct {
	OneWay    decimal.Decimal `json:"oneWay"`
	RoundTrip decimal.Decimal `json:"roundTrip"`
	Discount  Discount        `json:"discount"`
}

// Fare returns the base price and discount that apply to trip.
func (f MonthlyFare) Fare(trip TripType) (price, discount decimal.Decimal) {
	if trip == TripOneWay {
		return f.OneWay, f.Discount.OneWay
	}
	return f.RoundTrip, f.Discount.RoundTrip
}

func (f MonthlyFare) Validate() error {
	if f.OneWay.IsNegative() || f.RoundTrip.IsNegative() {
		return errors.New("prices must be >= 0")
	}
	if f.Discount.OneWay.IsNegative() || f.Discount.RoundTrip.IsNegative() {
		return errors.New("discounts must be >= 0")
	}
	if !f.Discount.OneWay.LessThan(f.OneWay) {
		return errors.New("one-way discount must be less than the one-way price")
	}
	if !f.Discount.RoundTrip.LessThan(f.RoundTrip) {
		return errors.New("round-trip discount must be less than the round-trip price")
	}
	return nil
}

// FareTable holds exactly one MonthlyFare per calendar month, indexed by
// time.Month-1. On the wire it is the 12-entry array
// [{"month":"January","oneWay":..,"roundTrip":..,"discount":{..}}, ...].
type FareTable [12]MonthlyFare

// UniformFareTable returns a table with f in every month.
func UniformFareTable(f MonthlyFare) FareTable {
	var t FareTable
	for i := range t {
		t[i] = f
	}
	return t
}

func (t *FareTable) Month(m time.Month) MonthlyFare {
	return t[m-1]
}

func (t *FareTable) Set(m time.Month, f MonthlyFare) {
	t[m-1] = f
}

func (t FareTable) Validate() error {
	for i, f := range t {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%s: %w", time.Month(i+1), err)
		}
	}
	return nil
}

// PriceEntry is the wire form of one FareTable row.
type PriceEntry struct {
	Month string `json:"month"`
	MonthlyFare
}

// Entry returns the wire row for m.
func (t *FareTable) Entry(m time.Month) PriceEntry {
	return PriceEntry{Month: m.String(), MonthlyFare: t.Month(m)}
}

func (t FareTable) MarshalJSON() ([]byte, error) {
	entries := make([]PriceEntry, 0, len(t))
	for i := range t {
		entries = append(entries, t.Entry(time.Month(i+1)))
	}
	return json.Marshal(entries)
}

func (t *FareTable) UnmarshalJSON(b []byte) error {
	var entries []PriceEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	if len(entries) != 12 {
		return fmt.Errorf("prices must contain 12 entries, one for each month (got %d)", len(entries))
	}
	var seen [12]bool
	var out FareTable
	for _, e := range entries {
		m, ok := ParseMonth(e.Month)
		if !ok {
			return fmt.Errorf("unknown month %q", e.Month)
		}
		if seen[m-1] {
			return fmt.Errorf("month %s listed twice", m)
		}
		seen[m-1] = true
		out[m-1] = e.MonthlyFare
	}
	*t = out
	return nil
}

// ParseMonth maps an English month name to time.Month.
func ParseMonth(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}

type Flight struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	DepartureAirportID uint      `gorm:"not null;uniqueIndex:idx_flight_route,priority:1" json:"departureAirportId"`
	DepartureAirport   *Airport  `gorm:"foreignKey:DepartureAirportID" json:"departureAirport,omitempty"`
	ArrivalAirportID   uint      `gorm:"not null;uniqueIndex:idx_flight_route,priority:2;index" json:"arrivalAirportId"`
	ArrivalAirport     *Airport  `gorm:"foreignKey:ArrivalAirportID" json:"arrivalAirport,omitempty"`
	AirlineID          uint      `gorm:"not null;uniqueIndex:idx_flight_route,priority:3;index" json:"airlineId"`
	Airline            *Airline  `gorm:"foreignKey:AirlineID" json:"airline,omitempty"`
	Prices             FareTable `gorm:"type:text;serializer:json;not null" json:"prices"`
	ToDuration         Duration  `gorm:"embedded;embeddedPrefix:to_" json:"toDuration"`
	FromDuration       Duration  `gorm:"embedded;embeddedPrefix:from_" json:"fromDuration"`
	// nil until assigned; backfill-stops fills it in
	Stops     *int      `json:"stops"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f *Flight) Validate() error {
	if f.DepartureAirportID == 0 || f.ArrivalAirportID == 0 || f.AirlineID == 0 {
		return errors.New("departureAirport, arrivalAirport and airline are required")
	}
	if err := f.ToDuration.Validate(); err != nil {
		return fmt.Errorf("toDuration: %w", err)
	}
	if err := f.FromDuration.Validate(); err != nil {
		return fmt.Errorf("fromDuration: %w", err)
	}
	if f.Stops != nil && *f.Stops < 0 {
		return errors.New("stops must be >= 0")
	}
	return f.Prices.Validate()
}

// PlaceholderFareTable is used for routes created on demand before the agency
// has priced them.
func PlaceholderFareTable() FareTable {
	one := decimal.NewFromInt(1)
	return UniformFareTable(MonthlyFare{OneWay: one, RoundTrip: one})
}
