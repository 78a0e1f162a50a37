// travelctl runs one-off operations against the travel database.
//
// Usage:
//
//	travelctl reset-siteinfo --email admin@example.com --password secret
//	travelctl import --dir ./seed
//	travelctl generate-flights
//	travelctl backfill-stops
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/config"
	"github.com/flyva/travel-backend/internal/db"
	"github.com/flyva/travel-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "travelctl",
		Usage: "Maintenance commands for the travel backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database URL; defaults to the server configuration",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Commands: []*cli.Command{
			resetSiteInfoCommand(),
			importCommand(),
			generateFlightsCommand(),
			backfillStopsCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDB connects and migrates, so every command works on a fresh database.
func openDB(c *cli.Context) (*gorm.DB, error) {
	cfg := config.Load()
	if url := c.String("database-url"); url != "" {
		cfg.DatabaseURL = url
	}
	gormDB, err := db.Open(db.Config{
		DatabaseURL:     cfg.DatabaseURL,
		PoolSize:        cfg.PoolSize,
		PoolRecycle:     cfg.PoolRecycle,
		PoolPrePing:     cfg.PoolPrePing,
		ConnectTimeout:  cfg.ConnectTimeout,
		ApplicationName: "travelctl",
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gormDB, nil
}

func resetSiteInfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-siteinfo",
		Usage: "Replace the site record with a default one holding the given admin credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Admin login e-mail", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Admin password", Required: true},
		},
		Action: func(c *cli.Context) error {
			gormDB, err := openDB(c)
			if err != nil {
				return err
			}
			info, err := services.NewSiteInfoService(gormDB).Reset(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Printf("Site record %d reset; admin is %s\n", info.ID, info.AdminEmail)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load regions, countries, locations, airlines, airports and flights from CSV files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Value: "seed", Usage: "Directory holding the CSV files"},
		},
		Action: func(c *cli.Context) error {
			gormDB, err := openDB(c)
			if err != nil {
				return err
			}
			report, err := services.NewSeeder(gormDB, nil).Import(c.Context, c.String("dir"))
			if err != nil {
				return err
			}
			fmt.Println("Imported:", report)
			return nil
		},
	}
}

func generateFlightsCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate-flights",
		Usage: "Delete all routes and bookings, then create a randomly priced route per airline and airport pair",
		Action: func(c *cli.Context) error {
			gormDB, err := openDB(c)
			if err != nil {
				return err
			}
			n, err := services.NewSeeder(gormDB, nil).GenerateFlights(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("Generated %d flights\n", n)
			return nil
		},
	}
}

func backfillStopsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backfill-stops",
		Usage: "Assign a stop count to routes that have none",
		Action: func(c *cli.Context) error {
			gormDB, err := openDB(c)
			if err != nil {
				return err
			}
			n, err := services.NewSeeder(gormDB, nil).BackfillStops(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d flights\n", n)
			return nil
		},
	}
}
