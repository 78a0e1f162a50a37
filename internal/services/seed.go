package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
)

// Seeder bulk-loads and generates catalog data for the operations CLI.
type Seeder struct {
	db  *gorm.DB
	rnd *rand.Rand
}

func NewSeeder(db *gorm.DB, rnd *rand.Rand) *Seeder {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Seeder{db: db, rnd: rnd}
}

// ImportReport counts the rows created per table.
type ImportReport struct {
	Regions   int
	Countries int
	Locations int
	Airlines  int
	Airports  int
	Flights   int
}

func (r ImportReport) String() string {
	return fmt.Sprintf("regions=%d countries=%d locations=%d airlines=%d airports=%d flights=%d",
		r.Regions, r.Countries, r.Locations, r.Airlines, r.Airports, r.Flights)
}

// readCSV returns the rows of dir/name.csv keyed by header. A missing file
// yields no rows.
func readCSV(dir, name string) ([]map[string]string, error) {
	f, err := os.Open(filepath.Join(dir, name+".csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s.csv: %w", name, err)
	}
	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s.csv: %w", name, err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[strings.TrimSpace(h)] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Import loads regions, countries, locations, airlines, airports and flights
// from CSV files in dir inside one transaction. Rows reference their parents
// by name (airports by location name, flights by airport code and airline
// short name).
func (s *Seeder) Import(ctx context.Context, dir string) (ImportReport, error) {
	var rep ImportReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		regions := map[string]uint{}
		rows, err := readCSV(dir, "regions")
		if err != nil {
			return err
		}
		for _, r := range rows {
			reg := models.Region{Name: r["name"]}
			if err := tx.Create(&reg).Error; err != nil {
				return fmt.Errorf("region %q: %w", reg.Name, err)
			}
			regions[reg.Name] = reg.ID
			rep.Regions++
		}

		countries := map[string]uint{}
		if rows, err = readCSV(dir, "countries"); err != nil {
			return err
		}
		for _, r := range rows {
			regionID, ok := regions[r["region"]]
			if !ok {
				return fmt.Errorf("country %q: unknown region %q", r["name"], r["region"])
			}
			c := models.Country{Name: r["name"], RegionID: regionID}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("country %q: %w", c.Name, err)
			}
			countries[c.Name] = c.ID
			rep.Countries++
		}

		locations := map[string]uint{}
		if rows, err = readCSV(dir, "locations"); err != nil {
			return err
		}
		for _, r := range rows {
			countryID, ok := countries[r["country"]]
			if !ok {
				return fmt.Errorf("location %q: unknown country %q", r["name"], r["country"])
			}
			l := models.Location{
				Name:                r["name"],
				CountryID:           countryID,
				Image:               r["image"],
				IsPopular:           r["isPopular"] == "true",
				Description:         optional(r["description"]),
				Dealings:            models.Dealings(r["dealings"]),
				DealingsDescription: optional(r["dealingsDescription"]),
			}
			if err := l.Validate(); err != nil {
				return fmt.Errorf("location %q: %w", l.Name, err)
			}
			if err := tx.Create(&l).Error; err != nil {
				return fmt.Errorf("location %q: %w", l.Name, err)
			}
			locations[l.Name] = l.ID
			rep.Locations++
		}

		airlines := map[string]uint{}
		if rows, err = readCSV(dir, "airlines"); err != nil {
			return err
		}
		for _, r := range rows {
			a := models.Airline{
				ShortName:       r["shortName"],
				LogoPicture:     r["logoPicture"],
				MonogramPicture: r["monogramPicture"],
				Overview:        r["overview"],
				Baggage:         r["baggage"] == "true",
			}
			for col, dst := range map[string]*[]models.DetailItem{"details": &a.Details, "baggageArray": &a.BaggageArray} {
				if raw := r[col]; raw != "" {
					if err := json.Unmarshal([]byte(raw), dst); err != nil {
						return fmt.Errorf("airline %q %s: %w", a.ShortName, col, err)
					}
				}
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("airline %q: %w", a.ShortName, err)
			}
			airlines[a.ShortName] = a.ID
			rep.Airlines++
		}

		airports := map[string]uint{}
		if rows, err = readCSV(dir, "airports"); err != nil {
			return err
		}
		for _, r := range rows {
			locationID, ok := locations[r["location"]]
			if !ok {
				return fmt.Errorf("airport %q: unknown location %q", r["code"], r["location"])
			}
			a := models.Airport{Name: r["name"], LocationID: locationID, Code: r["code"], IsDeparture: r["isDeparture"] == "true"}
			if err := a.Validate(); err != nil {
				return fmt.Errorf("airport %q: %w", r["code"], err)
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("airport %q: %w", a.Code, err)
			}
			airports[a.Code] = a.ID
			rep.Airports++
		}

		if rows, err = readCSV(dir, "flights"); err != nil {
			return err
		}
		for i, r := range rows {
			f := models.Flight{
				DepartureAirportID: airports[normalizeCode(r["departureAirport"])],
				ArrivalAirportID:   airports[normalizeCode(r["arrivalAirport"])],
				AirlineID:          airlines[r["airline"]],
				ToDuration:         models.Duration{Hours: 0, Minutes: 1},
				FromDuration:       models.Duration{Hours: 0, Minutes: 1},
			}
			if err := json.Unmarshal([]byte(r["prices"]), &f.Prices); err != nil {
				return fmt.Errorf("flight row %d prices: %w", i+1, err)
			}
			if err := f.Validate(); err != nil {
				return fmt.Errorf("flight row %d: %w", i+1, err)
			}
			if err := tx.Create(&f).Error; err != nil {
				return fmt.Errorf("flight row %d: %w", i+1, err)
			}
			rep.Flights++
		}
		return nil
	})
	return rep, err
}

func (s *Seeder) money(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + s.rnd.Float64()*(max-min)).Round(2)
}

// maybeDiscount returns a discount of up to 30% of price for roughly three
// fares in ten, zero otherwise.
func (s *Seeder) maybeDiscount(price decimal.Decimal) decimal.Decimal {
	if s.rnd.Float64() >= 0.3 {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromFloat(s.rnd.Float64() * 0.3)).Round(2)
}

func (s *Seeder) fareTable() models.FareTable {
	var t models.FareTable
	rt := decimal.NewFromFloat(1.8)
	for i := range t {
		oneWay := s.money(50, 500)
		roundTrip := oneWay.Mul(rt).Round(2)
		t[i] = models.MonthlyFare{
			OneWay:    oneWay,
			RoundTrip: roundTrip,
			Discount: models.Discount{
				OneWay:    s.maybeDiscount(oneWay),
				RoundTrip: s.maybeDiscount(roundTrip),
			},
		}
	}
	return t
}

var durationMinutes = [...]int{0, 15, 30, 45}

func (s *Seeder) duration() models.Duration {
	return models.Duration{Hours: 1 + s.rnd.IntN(12), Minutes: durationMinutes[s.rnd.IntN(len(durationMinutes))]}
}

// GenerateFlights deletes every route and its bookings, then creates one route
// with random fares and durations for each airline and ordered pair of
// distinct airports.
func (s *Seeder) GenerateFlights(ctx context.Context) (int, error) {
	var airlines []models.Airline
	var airports []models.Airport
	db := s.db.WithContext(ctx)
	if err := db.Select("id").Order("id").Find(&airlines).Error; err != nil {
		return 0, err
	}
	if err := db.Select("id").Order("id").Find(&airports).Error; err != nil {
		return 0, err
	}

	count := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		res := all.Delete(&models.Flight{})
		if res.Error != nil {
			return res.Error
		}
		log.Printf("Deleted %d existing flights", res.RowsAffected)

		batch := make([]models.Flight, 0, 500)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := tx.Create(&batch).Error; err != nil {
				return err
			}
			count += len(batch)
			batch = batch[:0]
			if count%1000 == 0 {
				log.Printf("%d flights created so far", count)
			}
			return nil
		}
		for _, al := range airlines {
			for _, dep := range airports {
				for _, arr := range airports {
					if dep.ID == arr.ID {
						continue
					}
					batch = append(batch, models.Flight{
						AirlineID:          al.ID,
						DepartureAirportID: dep.ID,
						ArrivalAirportID:   arr.ID,
						Prices:             s.fareTable(),
						ToDuration:         s.duration(),
						FromDuration:       s.duration(),
					})
					if len(batch) == cap(batch) {
						if err := flush(); err != nil {
							return err
						}
					}
				}
			}
		}
		return flush()
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// stopsFor maps a roll in [1,100] to 0 stops (70%), 1 stop (25%) or 2 (5%).
func stopsFor(roll int) int {
	switch {
	case roll <= 70:
		return 0
	case roll <= 95:
		return 1
	default:
		return 2
	}
}

// BackfillStops assigns a random stop count to every route that has none.
func (s *Seeder) BackfillStops(ctx context.Context) (int, error) {
	var ids []uint
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Flight{}).Where("stops IS NULL").Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	byStops := map[int][]uint{}
	for _, id := range ids {
		n := stopsFor(1 + s.rnd.IntN(100))
		byStops[n] = append(byStops[n], id)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		for n, group := range byStops {
			for start := 0; start < len(group); start += 500 {
				end := min(start+500, len(group))
				if err := tx.Model(&models.Flight{}).Where("id IN ?", group[start:end]).Update("stops", n).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
