package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/fares"
	"github.com/flyva/travel-backend/internal/models"
)

// FlightCatalog is the gorm-backed fares.Catalog.
type FlightCatalog struct {
	db *gorm.DB
}

func NewFlightCatalog(db *gorm.DB) *FlightCatalog {
	return &FlightCatalog{db: db}
}

var _ fares.Catalog = (*FlightCatalog)(nil)

func (c *FlightCatalog) FindRoutes(ctx context.Context, f fares.RouteFilter) ([]models.Flight, error) {
	q := c.db.WithContext(ctx).
		Preload("DepartureAirport").
		Preload("ArrivalAirport").
		Preload("Airline")
	if f.OriginID != nil {
		q = q.Where("departure_airport_id = ?", *f.OriginID)
	}
	if f.DestinationID != nil {
		q = q.Where("arrival_airport_id = ?", *f.DestinationID)
	}
	if f.AirlineIDs != nil {
		if len(f.AirlineIDs) == 0 {
			return []models.Flight{}, nil
		}
		q = q.Where("airline_id IN ?", f.AirlineIDs)
	}
	var flights []models.Flight
	err := q.Order("id").Find(&flights).Error
	return flights, err
}

func (c *FlightCatalog) ResolveAirport(ctx context.Context, text string) (uint, bool, error) {
	var a models.Airport
	tx := c.db.WithContext(ctx).Where("code = ?", strings.ToUpper(text)).Limit(1).Find(&a)
	if tx.Error != nil {
		return 0, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		tx = c.db.WithContext(ctx).Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(text)).Order("id").Limit(1).Find(&a)
		if tx.Error != nil {
			return 0, false, tx.Error
		}
	}
	return a.ID, tx.RowsAffected > 0, nil
}

func (c *FlightCatalog) ResolveAirlines(ctx context.Context, names []string) ([]uint, error) {
	ids := []uint{}
	err := c.db.WithContext(ctx).Model(&models.Airline{}).Where("short_name IN ?", names).Pluck("id", &ids).Error
	return ids, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
// Pair it with LOWER(column) and ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
