package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyva/travel-backend/internal/models"
)

func TestAirportSearchGroups(t *testing.T) {
	gdb := newTestDB(t)
	fx := seedFixture(t, gdb)
	paris := models.Location{Name: "Paris", CountryID: fx.country.ID, Dealings: models.DealingsNone}
	require.NoError(t, gdb.Create(&paris).Error)
	for _, a := range []models.Airport{
		{Name: "Orly", LocationID: paris.ID, Code: "ORY"},
		{Name: "Gatwick London", LocationID: fx.location.ID, Code: "LGW"},
		{Name: "London City", LocationID: fx.location.ID, Code: "LCY"},
	} {
		require.NoError(t, gdb.Create(&a).Error)
	}

	s := NewAirportService(gdb)
	hits, err := s.Search(context.Background(), "lon")
	require.NoError(t, err)

	var names []string
	for _, h := range hits {
		names = append(names, h.AirportName)
	}
	// every hit sits in London, so all are prefix hits: direct name matches
	// come before airports only found through their location
	assert.Equal(t, []string{"Gatwick London", "London City", "Heathrow", "John F Kennedy"}, names)

	hits, err = s.Search(context.Background(), "king")
	require.NoError(t, err)
	require.Len(t, hits, 5)
	assert.Equal(t, "United Kingdom", hits[0].CountryName)

	hits, err = s.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestAirportCreateDuplicateCode(t *testing.T) {
	gdb := newTestDB(t)
	fx := seedFixture(t, gdb)
	s := NewAirportService(gdb)
	ctx := context.Background()

	name, code := "Kennedy Two", "jfk"
	_, err := s.Create(ctx, AirportInput{Name: &name, Code: &code, LocationID: &fx.location.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	code = "ewr"
	a, err := s.Create(ctx, AirportInput{Name: &name, Code: &code, LocationID: &fx.location.ID})
	require.NoError(t, err)
	assert.Equal(t, "EWR", a.Code)

	usage, err := s.Usage(ctx, fx.jfk.ID)
	require.NoError(t, err)
	assert.False(t, usage.UsedInFlights)
	fx.route(t, gdb, 100)
	usage, err = s.Usage(ctx, fx.jfk.ID)
	require.NoError(t, err)
	assert.True(t, usage.UsedInFlights)
}
