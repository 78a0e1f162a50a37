package fares

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flyva/travel-backend/internal/models"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FindRoutes(ctx context.Context, f RouteFilter) ([]models.Flight, error) {
	args := m.Called(ctx, f)
	flights, _ := args.Get(0).([]models.Flight)
	return flights, args.Error(1)
}

func (m *mockCatalog) ResolveAirport(ctx context.Context, text string) (uint, bool, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *mockCatalog) ResolveAirlines(ctx context.Context, names []string) ([]uint, error) {
	args := m.Called(ctx, names)
	ids, _ := args.Get(0).([]uint)
	return ids, args.Error(1)
}

var fixedNow = time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)

func newTestEngine(c Catalog) *Engine {
	e := NewEngine(c)
	e.Now = func() time.Time { return fixedNow }
	e.IntN = rand.New(rand.NewPCG(1, 2)).IntN
	return e
}

// route builds a flight whose one-way fare in month is price-discount and
// which costs 999 one-way in every other month.
func route(id uint, month time.Month, price, discount int64) models.Flight {
	table := models.UniformFareTable(models.MonthlyFare{
		OneWay:    decimal.NewFromInt(999),
		RoundTrip: decimal.NewFromInt(1999),
	})
	table.Set(month, models.MonthlyFare{
		OneWay:    decimal.NewFromInt(price),
		RoundTrip: decimal.NewFromInt(price * 2),
		Discount:  models.Discount{OneWay: decimal.NewFromInt(discount), RoundTrip: decimal.NewFromInt(discount)},
	})
	return models.Flight{
		ID:                 id,
		DepartureAirportID: 1,
		ArrivalAirportID:   2,
		AirlineID:          3,
		DepartureAirport:   &models.Airport{ID: 1, Name: "Heathrow", Code: "LHR"},
		ArrivalAirport:     &models.Airport{ID: 2, Name: "Dubai International", Code: "DXB"},
		Airline:            &models.Airline{ID: 3, ShortName: "Emirates", MonogramPicture: "/uploads/ek.jpg"},
		Prices:             table,
		ToDuration:         models.Duration{Hours: 7, Minutes: 15},
		FromDuration:       models.Duration{Hours: 6, Minutes: 45},
	}
}

func finals(p Page) []string {
	out := make([]string, 0, len(p.Results))
	for _, r := range p.Results {
		out = append(out, r.FinalPrice.String())
	}
	return out
}

func mustParse(t *testing.T, q Query) Request {
	t.Helper()
	req, err := ParseRequest(q)
	require.NoError(t, err)
	return req
}

func TestSearchSelectsMonthFare(t *testing.T) {
	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{}).Return([]models.Flight{route(1, time.March, 100, 10)}, nil)

	page, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{Type: "one-way", DepDate: "2025-03-14"}))
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	r := page.Results[0]
	assert.Equal(t, "90", r.FinalPrice.String())
	assert.Equal(t, "100", r.OriginalPrice.String())
	assert.Equal(t, "10", r.Discount.String())
	assert.Equal(t, DateParts{Year: 2025, Month: 3, Day: 14}, r.DepartureDate)
	assert.Nil(t, r.ArrivalDate)
	assert.Equal(t, "7h 15m", r.ToDuration)
	assert.Equal(t, "LHR", r.DepAirportCode)
	assert.Equal(t, "Emirates", r.AirlineName)
	c.AssertExpectations(t)
}

func TestSearchOrdersAndRecommends(t *testing.T) {
	catalog := []models.Flight{
		route(1, time.March, 120, 0),
		route(2, time.March, 50, 0),
		route(3, time.March, 90, 10),
	}

	tests := []struct {
		name      string
		query     Query
		want      []string
		wantTotal int
	}{
		{
			name:      "full band",
			query:     Query{Type: "one-way", DepDate: "2025-03-01", MinPrice: "0", MaxPrice: "1000"},
			want:      []string{"50", "80", "120"},
			wantTotal: 3,
		},
		{
			name:      "max price excludes the dearest",
			query:     Query{Type: "one-way", DepDate: "2025-03-01", MaxPrice: "100"},
			want:      []string{"50", "80"},
			wantTotal: 2,
		},
		{
			name:      "bounds are inclusive",
			query:     Query{Type: "one-way", DepDate: "2025-03-01", MinPrice: "80", MaxPrice: "120"},
			want:      []string{"80", "120"},
			wantTotal: 2,
		},
		{
			name:      "unparsable bounds are ignored",
			query:     Query{Type: "one-way", DepDate: "2025-03-01", MinPrice: "cheap", MaxPrice: "-5"},
			want:      []string{"50", "80", "120"},
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(mockCatalog)
			c.On("FindRoutes", mock.Anything, RouteFilter{}).Return(catalog, nil)

			page, err := newTestEngine(c).Search(context.Background(), mustParse(t, tt.query))
			require.NoError(t, err)

			assert.Equal(t, tt.want, finals(page))
			assert.Equal(t, tt.wantTotal, page.TotalDocuments)
			assert.Equal(t, 1, page.TotalPages)
			assert.True(t, page.Results[0].Recommended)
			for _, r := range page.Results[1:] {
				assert.False(t, r.Recommended)
			}
		})
	}
}

func TestSearchRejectsUnknownTripType(t *testing.T) {
	_, err := ParseRequest(Query{Type: "return"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, "Invalid type", err.Error())
}

func TestParseRequestErrors(t *testing.T) {
	for _, q := range []Query{
		{DepDate: "14/03/2025"},
		{ArrDate: "soon"},
		{FromID: "abc"},
		{ToID: "0"},
		{AirlineIDs: "3,x"},
	} {
		_, err := ParseRequest(q)
		assert.ErrorIs(t, err, ErrInvalidArgument, "%+v", q)
	}
}

func TestParseRequestDefaults(t *testing.T) {
	req := mustParse(t, Query{Page: "nope", MaxPrice: "0"})
	assert.Equal(t, models.TripRoundTrip, req.TripType)
	assert.Equal(t, 1, req.Page)
	assert.Nil(t, req.MaxPrice)
	assert.True(t, req.MinPrice.IsZero())
	assert.Nil(t, req.AirlineIDs)
}

func TestSearchUnknownAirlineIsEmpty(t *testing.T) {
	c := new(mockCatalog)
	c.On("ResolveAirlines", mock.Anything, []string{"Nowhere Air"}).Return([]uint{}, nil)

	page, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{Airlines: "Nowhere Air"}))
	require.NoError(t, err)

	assert.Equal(t, 0, page.TotalDocuments)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
	c.AssertNotCalled(t, "FindRoutes", mock.Anything, mock.Anything)
}

func TestSearchUnknownAirportTextIsEmpty(t *testing.T) {
	c := new(mockCatalog)
	c.On("ResolveAirport", mock.Anything, "Atlantis").Return(uint(0), false, nil)

	page, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{From: "Atlantis"}))
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalDocuments)
	c.AssertExpectations(t)
}

func TestSearchResolvesTextFilters(t *testing.T) {
	origin, dest := uint(1), uint(2)
	c := new(mockCatalog)
	c.On("ResolveAirport", mock.Anything, "lhr").Return(origin, true, nil)
	c.On("ResolveAirport", mock.Anything, "Dubai").Return(dest, true, nil)
	c.On("ResolveAirlines", mock.Anything, []string{"Emirates", "Qatar"}).Return([]uint{3, 4}, nil)
	c.On("FindRoutes", mock.Anything, RouteFilter{OriginID: &origin, DestinationID: &dest, AirlineIDs: []uint{3, 4}}).
		Return([]models.Flight{route(1, time.June, 300, 20)}, nil)

	page, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{
		Type: "one-way", From: "lhr", To: "Dubai", Airlines: "Emirates, Qatar",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"280"}, finals(page))
	c.AssertExpectations(t)
}

func TestSearchIDsTakePrecedenceOverText(t *testing.T) {
	origin := uint(9)
	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{OriginID: &origin, AirlineIDs: []uint{3}}).Return([]models.Flight{}, nil)

	_, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{FromID: "9", From: "ignored", AirlineIDs: "3", Airlines: "ignored"}))
	require.NoError(t, err)
	c.AssertExpectations(t)
	c.AssertNotCalled(t, "ResolveAirport", mock.Anything, mock.Anything)
}

func TestSearchPaginationAndRecommendationShare(t *testing.T) {
	var catalog []models.Flight
	for i := 1; i <= 61; i++ {
		// equal prices in pairs so ties fall back to id order
		catalog = append(catalog, route(uint(i), time.June, int64(100+(61-i)/2), 0))
	}

	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{}).Return(catalog, nil)
	e := newTestEngine(c)

	var all []Result
	for p := 1; p <= 3; p++ {
		page, err := e.Search(context.Background(), mustParse(t, Query{Type: "one-way", Page: strconv.Itoa(p)}))
		require.NoError(t, err)
		assert.Equal(t, 61, page.TotalDocuments)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, p, page.CurrentPage)
		if p < 3 {
			assert.Len(t, page.Results, PageSize)
		} else {
			assert.Len(t, page.Results, 61-2*PageSize)
		}
		all = append(all, page.Results...)
	}

	recommended := 0
	for i, r := range all {
		if i > 0 {
			assert.False(t, r.FinalPrice.LessThan(all[i-1].FinalPrice), "sorted at %d", i)
			if r.FinalPrice.Equal(all[i-1].FinalPrice) {
				assert.Greater(t, r.FlightID, all[i-1].FlightID)
			}
		}
		if r.Recommended {
			recommended++
			// the cheapest ones come first
			assert.Equal(t, recommended-1, i)
		}
	}
	// ceil(61 * 0.05) = 4
	assert.Equal(t, 4, recommended)
}

func TestSearchClampsPage(t *testing.T) {
	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{}).Return([]models.Flight{route(1, time.June, 100, 0)}, nil)

	page, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{Page: "40"}))
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Results, 1)
}

func TestSearchPlaceholderDates(t *testing.T) {
	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{}).Return([]models.Flight{
		route(1, time.June, 100, 0),
		route(2, time.June, 200, 0),
	}, nil)

	page, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{Type: "round-trip"}))
	require.NoError(t, err)

	for _, r := range page.Results {
		dep := time.Date(r.DepartureDate.Year, time.Month(r.DepartureDate.Month), r.DepartureDate.Day, 15, 0, 0, 0, time.UTC)
		days := int(dep.Sub(fixedNow).Hours() / 24)
		assert.GreaterOrEqual(t, days, 5)
		assert.LessOrEqual(t, days, 15)

		require.NotNil(t, r.ArrivalDate)
		ret := dep.AddDate(0, 1, 0)
		assert.Equal(t, DateParts{Year: ret.Year(), Month: int(ret.Month()), Day: ret.Day()}, *r.ArrivalDate)
	}
	// June round-trip fares are price*2 in the fixture
	assert.Equal(t, []string{"200", "400"}, finals(page))
}

func TestSearchPlaceholderDatesAreReproducible(t *testing.T) {
	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{}).Return([]models.Flight{route(1, time.June, 100, 0)}, nil)

	a, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{}))
	require.NoError(t, err)
	b, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{}))
	require.NoError(t, err)
	assert.Equal(t, a.Results[0].DepartureDate, b.Results[0].DepartureDate)
}

func TestSearchExplicitReturnDate(t *testing.T) {
	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{}).Return([]models.Flight{route(1, time.July, 100, 0)}, nil)

	page, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{
		Type: "one-way", DepDate: "2025-07-01", ArrDate: "2025-07-09",
	}))
	require.NoError(t, err)
	require.NotNil(t, page.Results[0].ArrivalDate)
	assert.Equal(t, DateParts{Year: 2025, Month: 7, Day: 9}, *page.Results[0].ArrivalDate)
}

func TestSearchPropagatesCatalogErrors(t *testing.T) {
	boom := errors.New("connection reset")
	c := new(mockCatalog)
	c.On("FindRoutes", mock.Anything, RouteFilter{}).Return(nil, boom)

	_, err := newTestEngine(c).Search(context.Background(), mustParse(t, Query{}))
	assert.ErrorIs(t, err, boom)
}
