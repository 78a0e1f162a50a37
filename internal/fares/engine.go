// Package fares resolves the monthly fare of every matching route and turns
// the result into a sorted, paginated search page.
package fares

import (
	"cmp"
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flyva/travel-backend/internal/models"
)

const (
	PageSize = 25

	// share of the filtered set tagged as recommended, rounded up
	recommendedShare = 0.05

	// placeholder departures land 5 to 15 days from today
	minOffsetDays  = 5
	offsetDaysSpan = 11
)

// RouteFilter selects candidate routes. A nil field matches everything; a
// non-nil empty AirlineIDs matches nothing.
type RouteFilter struct {
	OriginID      *uint
	DestinationID *uint
	AirlineIDs    []uint
}

// Catalog is the read side of the flight store. FindRoutes must preload the
// airports and the airline of every route.
type Catalog interface {
	FindRoutes(ctx context.Context, f RouteFilter) ([]models.Flight, error)
	// ResolveAirport looks an airport up by code, then by a name fragment.
	ResolveAirport(ctx context.Context, text string) (uint, bool, error)
	ResolveAirlines(ctx context.Context, names []string) ([]uint, error)
}

type DateParts struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func partsOf(t time.Time) DateParts {
	return DateParts{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

type Result struct {
	FlightID       uint            `json:"flightId"`
	AirlineID      uint            `json:"airlineId"`
	AirlineName    string          `json:"airlineName"`
	AirlineMono    string          `json:"airlineMono"`
	DepAirportID   uint            `json:"depAirportId"`
	DepAirportName string          `json:"depAirportName"`
	DepAirportCode string          `json:"depAirportCode"`
	ArrAirportID   uint            `json:"arrAirportId"`
	ArrAirportName string          `json:"arrAirportName"`
	ArrAirportCode string          `json:"arrAirportCode"`
	ToDuration     string          `json:"toDuration"`
	FromDuration   string          `json:"fromDuration"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	Discount       decimal.Decimal `json:"discount"`
	FinalPrice     decimal.Decimal `json:"finalPrice"`
	DepartureDate  DateParts       `json:"departureDate"`
	ArrivalDate    *DateParts      `json:"arrivalDate,omitempty"`
	Recommended    bool            `json:"recommended"`
}

type Page struct {
	TripType       models.TripType `json:"tripType"`
	CurrentPage    int             `json:"currentPage"`
	TotalPages     int             `json:"totalPages"`
	TotalDocuments int             `json:"totalDocuments"`
	Results        []Result        `json:"results"`
}

// Engine runs searches against a Catalog. Now and IntN are swappable so
// placeholder dates can be pinned in tests.
type Engine struct {
	Catalog Catalog
	Now     func() time.Time
	IntN    func(n int) int
}

func NewEngine(c Catalog) *Engine {
	return &Engine{Catalog: c, Now: time.Now, IntN: rand.IntN}
}

type resolved struct {
	flight   models.Flight
	price    decimal.Decimal
	discount decimal.Decimal
	final    decimal.Decimal
}

func (e *Engine) Search(ctx context.Context, req Request) (Page, error) {
	page := Page{TripType: req.TripType, CurrentPage: 1, TotalPages: 1, Results: []Result{}}

	filter, ok, err := e.resolveFilter(ctx, req)
	if err != nil || !ok {
		return page, err
	}
	flights, err := e.Catalog.FindRoutes(ctx, filter)
	if err != nil {
		return page, err
	}

	today := e.Now().UTC()
	month := today.Month()
	if req.DepartureDate != nil {
		month = req.DepartureDate.Month()
	}

	matches := make([]resolved, 0, len(flights))
	for _, f := range flights {
		price, discount := f.Prices.Month(month).Fare(req.TripType)
		final := price.Sub(discount)
		if final.LessThan(req.MinPrice) {
			continue
		}
		if req.MaxPrice != nil && final.GreaterThan(*req.MaxPrice) {
			continue
		}
		matches = append(matches, resolved{flight: f, price: price, discount: discount, final: final})
	}
	slices.SortFunc(matches, func(a, b resolved) int {
		if c := a.final.Cmp(b.final); c != 0 {
			return c
		}
		return cmp.Compare(a.flight.ID, b.flight.ID)
	})

	total := len(matches)
	page.TotalDocuments = total
	page.TotalPages = max(1, int(math.Ceil(float64(total)/PageSize)))
	page.CurrentPage = min(max(req.Page, 1), page.TotalPages)
	recommended := int(math.Ceil(float64(total) * recommendedShare))

	start := (page.CurrentPage - 1) * PageSize
	end := min(start+PageSize, total)
	for i := start; i < end; i++ {
		page.Results = append(page.Results, e.shape(matches[i], req, today, i < recommended))
	}
	return page, nil
}

func (e *Engine) resolveFilter(ctx context.Context, req Request) (RouteFilter, bool, error) {
	f := RouteFilter{OriginID: req.OriginID, DestinationID: req.DestinationID, AirlineIDs: req.AirlineIDs}
	if f.OriginID == nil && req.OriginText != "" {
		id, ok, err := e.Catalog.ResolveAirport(ctx, req.OriginText)
		if err != nil || !ok {
			return f, false, err
		}
		f.OriginID = &id
	}
	if f.DestinationID == nil && req.DestText != "" {
		id, ok, err := e.Catalog.ResolveAirport(ctx, req.DestText)
		if err != nil || !ok {
			return f, false, err
		}
		f.DestinationID = &id
	}
	if f.AirlineIDs == nil && len(req.AirlineNames) > 0 {
		ids, err := e.Catalog.ResolveAirlines(ctx, req.AirlineNames)
		if err != nil {
			return f, false, err
		}
		f.AirlineIDs = ids
	}
	if f.AirlineIDs != nil && len(f.AirlineIDs) == 0 {
		return f, false, nil
	}
	return f, true, nil
}

func (e *Engine) shape(r resolved, req Request, today time.Time, recommended bool) Result {
	f := r.flight
	dep := today.AddDate(0, 0, minOffsetDays+e.IntN(offsetDaysSpan))
	if req.DepartureDate != nil {
		dep = *req.DepartureDate
	}
	res := Result{
		FlightID:      f.ID,
		AirlineID:     f.AirlineID,
		DepAirportID:  f.DepartureAirportID,
		ArrAirportID:  f.ArrivalAirportID,
		ToDuration:    f.ToDuration.String(),
		FromDuration:  f.FromDuration.String(),
		OriginalPrice: r.price,
		Discount:      r.discount,
		FinalPrice:    r.final,
		DepartureDate: partsOf(dep),
		Recommended:   recommended,
	}
	if f.Airline != nil {
		res.AirlineName = f.Airline.ShortName
		res.AirlineMono = f.Airline.MonogramPicture
	}
	if a := f.DepartureAirport; a != nil {
		res.DepAirportName, res.DepAirportCode = a.Name, a.Code
	}
	if a := f.ArrivalAirport; a != nil {
		res.ArrAirportName, res.ArrAirportCode = a.Name, a.Code
	}
	switch {
	case req.ReturnDate != nil:
		p := partsOf(*req.ReturnDate)
		res.ArrivalDate = &p
	case req.TripType == models.TripRoundTrip:
		p := partsOf(dep.AddDate(0, 1, 0))
		res.ArrivalDate = &p
	}
	return res
}
