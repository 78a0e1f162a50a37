package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/db"
	"github.com/flyva/travel-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

type fixture struct {
	region   models.Region
	country  models.Country
	location models.Location
	jfk      models.Airport
	lhr      models.Airport
	airline  models.Airline
}

func seedFixture(t *testing.T, gdb *gorm.DB) fixture {
	t.Helper()
	var fx fixture
	fx.region = models.Region{Name: "Europe"}
	require.NoError(t, gdb.Create(&fx.region).Error)
	fx.country = models.Country{Name: "United Kingdom", RegionID: fx.region.ID}
	require.NoError(t, gdb.Create(&fx.country).Error)
	fx.location = models.Location{Name: "London", CountryID: fx.country.ID, Image: "/uploads/locations/london.jpg", Dealings: models.DealingsNone}
	require.NoError(t, gdb.Create(&fx.location).Error)
	fx.jfk = models.Airport{Name: "John F Kennedy", LocationID: fx.location.ID, Code: "JFK"}
	require.NoError(t, gdb.Create(&fx.jfk).Error)
	fx.lhr = models.Airport{Name: "Heathrow", LocationID: fx.location.ID, Code: "LHR"}
	require.NoError(t, gdb.Create(&fx.lhr).Error)
	fx.airline = models.Airline{
		ShortName:       "BA",
		LogoPicture:     "/uploads/airlines/ba.jpg",
		MonogramPicture: "/uploads/airlines/ba-m.jpg",
		Overview:        "British Airways",
		Details:         []models.DetailItem{{Heading: "Hub", Description: "LHR"}},
	}
	require.NoError(t, gdb.Create(&fx.airline).Error)
	return fx
}

func (fx fixture) route(t *testing.T, gdb *gorm.DB, price int64) models.Flight {
	t.Helper()
	f := models.Flight{
		DepartureAirportID: fx.jfk.ID,
		ArrivalAirportID:   fx.lhr.ID,
		AirlineID:          fx.airline.ID,
		Prices: models.UniformFareTable(models.MonthlyFare{
			OneWay:    decimal.NewFromInt(price),
			RoundTrip: decimal.NewFromInt(price * 2),
		}),
		ToDuration:   models.Duration{Hours: 7},
		FromDuration: models.Duration{Hours: 8},
	}
	require.NoError(t, gdb.Create(&f).Error)
	return f
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
