package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyva/travel-backend/internal/fares"
)

func TestFlightCatalog(t *testing.T) {
	gdb := newTestDB(t)
	fx := seedFixture(t, gdb)
	route := fx.route(t, gdb, 250)
	c := NewFlightCatalog(gdb)
	ctx := context.Background()

	id, ok, err := c.ResolveAirport(ctx, "lhr")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fx.lhr.ID, id)

	id, ok, err = c.ResolveAirport(ctx, "kennedy")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fx.jfk.ID, id)

	_, ok, err = c.ResolveAirport(ctx, "100%")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := c.ResolveAirlines(ctx, []string{"BA", "ZZ"})
	require.NoError(t, err)
	assert.Equal(t, []uint{fx.airline.ID}, ids)

	routes, err := c.FindRoutes(ctx, fares.RouteFilter{OriginID: &fx.jfk.ID, AirlineIDs: ids})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, route.ID, routes[0].ID)
	require.NotNil(t, routes[0].Airline)
	assert.Equal(t, "BA", routes[0].Airline.ShortName)

	routes, err = c.FindRoutes(ctx, fares.RouteFilter{OriginID: &fx.lhr.ID})
	require.NoError(t, err)
	assert.Empty(t, routes)

	routes, err = c.FindRoutes(ctx, fares.RouteFilter{AirlineIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestCatalogDrivesEngine(t *testing.T) {
	gdb := newTestDB(t)
	fx := seedFixture(t, gdb)
	fx.route(t, gdb, 250)
	e := fares.NewEngine(NewFlightCatalog(gdb))

	req, err := fares.ParseRequest(fares.Query{Type: "one-way", From: "JFK", To: "heathrow", DepDate: "2025-07-04"})
	require.NoError(t, err)
	page, err := e.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.EqualValues(t, 1, page.TotalDocuments)
	assert.Equal(t, "JFK", page.Results[0].DepAirportCode)
}
