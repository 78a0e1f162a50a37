package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionsAndCountries(t *testing.T) {
	gdb := newTestDB(t)
	s := NewRegionService(gdb)
	ctx := context.Background()

	asia, err := s.CreateRegion(ctx, "Asia")
	require.NoError(t, err)
	_, err = s.CreateRegion(ctx, "Asia")
	assert.ErrorIs(t, err, ErrDuplicate)
	europe, err := s.CreateRegion(ctx, "Europe")
	require.NoError(t, err)
	_, err = s.UpdateRegion(ctx, europe.ID, "Asia")
	assert.ErrorIs(t, err, ErrDuplicate)

	regions, err := s.ListRegions(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "Asia", regions[0].Name)

	var verr *ValidationError
	_, err = s.CreateCountry(ctx, "Japan", asia.ID, "Europe")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid region id or name", verr.Msg)
	_, err = s.CreateCountry(ctx, "", asia.ID, "Asia")
	require.ErrorAs(t, err, &verr)

	japan, err := s.CreateCountry(ctx, "Japan", asia.ID, "Asia")
	require.NoError(t, err)
	in, err := s.CountriesInRegion(ctx, asia.ID)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, japan.ID, in[0].ID)

	_, err = s.CountriesInRegion(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteCountry(ctx, japan.ID))
	assert.ErrorIs(t, s.DeleteCountry(ctx, japan.ID), ErrNotFound)
}
