package fares

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flyva/travel-backend/internal/models"
)

// ErrInvalidArgument marks a malformed search request.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError carries the message shown to the client.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string { return e.Message }

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func invalid(msg string) error {
	return &ArgumentError{Message: msg}
}

// Query is the raw form of a search as received on the query string.
type Query struct {
	Type       string `query:"type"`
	MinPrice   string `query:"minPrice"`
	MaxPrice   string `query:"maxPrice"`
	Page       string `query:"page"`
	FromID     string `query:"from_id"`
	ToID       string `query:"to_id"`
	AirlineIDs string `query:"airlines_id"`
	From       string `query:"from"`
	To         string `query:"to"`
	Airlines   string `query:"airlines"`
	DepDate    string `query:"depDateStr"`
	ArrDate    string `query:"arrDateStr"`
}

// Request is a validated search.
type Request struct {
	TripType models.TripType

	// An ID wins over the matching free-text field.
	OriginID      *uint
	OriginText    string
	DestinationID *uint
	DestText      string

	// nil means no airline filter.
	AirlineIDs   []uint
	AirlineNames []string

	MinPrice decimal.Decimal
	// nil means unbounded.
	MaxPrice *decimal.Decimal

	DepartureDate *time.Time
	ReturnDate    *time.Time

	Page int
}

// ParseRequest validates q. Only the trip type, the ids and the dates can
// fail; prices and page fall back to their defaults when unparsable.
func ParseRequest(q Query) (Request, error) {
	req := Request{TripType: models.TripType(strings.TrimSpace(q.Type))}
	if req.TripType == "" {
		req.TripType = models.TripRoundTrip
	}
	if !req.TripType.Valid() {
		return Request{}, invalid("Invalid type")
	}

	var err error
	if req.OriginID, err = parseID(q.FromID, "from_id"); err != nil {
		return Request{}, err
	}
	if req.DestinationID, err = parseID(q.ToID, "to_id"); err != nil {
		return Request{}, err
	}
	req.OriginText = strings.TrimSpace(q.From)
	req.DestText = strings.TrimSpace(q.To)

	if q.AirlineIDs != "" {
		req.AirlineIDs = []uint{}
		for _, part := range splitList(q.AirlineIDs) {
			id, err := parseID(part, "airlines_id")
			if err != nil {
				return Request{}, err
			}
			req.AirlineIDs = append(req.AirlineIDs, *id)
		}
	} else if q.Airlines != "" {
		req.AirlineNames = splitList(q.Airlines)
	}

	if d, ok := parsePrice(q.MinPrice); ok {
		req.MinPrice = d
	}
	// A zero maximum is what the search form sends for "no limit".
	if d, ok := parsePrice(q.MaxPrice); ok && !d.IsZero() {
		req.MaxPrice = &d
	}

	if q.DepDate != "" {
		d, err := models.ParseDate(q.DepDate)
		if err != nil {
			return Request{}, invalid("Invalid departureDate; use YYYY-MM-DD")
		}
		req.DepartureDate = &d.Time
	}
	if q.ArrDate != "" {
		d, err := models.ParseDate(q.ArrDate)
		if err != nil {
			return Request{}, invalid("Invalid arrivalDate; use YYYY-MM-DD")
		}
		req.ReturnDate = &d.Time
	}

	req.Page = 1
	if n, err := strconv.Atoi(strings.TrimSpace(q.Page)); err == nil && n > 0 {
		req.Page = n
	}
	return req, nil
}

func parseID(s, field string) (*uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil || n == 0 {
		return nil, invalid("Invalid " + field + ": " + s)
	}
	id := uint(n)
	return &id, nil
}

func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
