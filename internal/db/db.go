package db

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flyva/travel-backend/internal/models"
)

type Config struct {
	DatabaseURL     string
	PoolSize        int
	PoolRecycle     time.Duration
	PoolPrePing     bool
	ConnectTimeout  time.Duration
	ApplicationName string
}

func newLogger() logger.Interface {
	// 1s threshold keeps AutoMigrate introspection out of the slow log
	return logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func Open(cfg Config) (*gorm.DB, error) {
	// references are checked in services; deletes never cascade
	gormCfg := &gorm.Config{
		Logger:                                   newLogger(),
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	databaseURL := cfg.DatabaseURL
	if databaseURL != "" {
		params := []string{}

		if !containsParam(databaseURL, "timezone") {
			params = append(params, "timezone=UTC")
		}
		if !containsParam(databaseURL, "connect_timeout") {
			secs := int(cfg.ConnectTimeout.Seconds())
			if secs <= 0 {
				secs = 10
			}
			params = append(params, "connect_timeout="+strconv.Itoa(secs))
		}
		if cfg.ApplicationName != "" && !containsParam(databaseURL, "application_name") {
			params = append(params, "application_name="+cfg.ApplicationName)
		}
		// TODO: default to sslmode=require once the managed database enforces TLS
		if !containsParam(databaseURL, "sslmode") {
			params = append(params, "sslmode=disable")
		}

		if len(params) > 0 {
			separator := "?"
			if strings.Contains(databaseURL, "?") {
				separator = "&"
			}
			databaseURL = databaseURL + separator + strings.Join(params, "&")
		}
	}

	db, err := gorm.Open(postgres.Open(databaseURL), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.PoolSize)
	idleConns := cfg.PoolSize / 2
	if idleConns < 2 {
		idleConns = 2
	}
	sqlDB.SetMaxIdleConns(idleConns)
	sqlDB.SetConnMaxLifetime(cfg.PoolRecycle)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.PoolPrePing {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			log.Printf("db ping error: %v", err)
		}
	}

	for _, query := range []string{
		"SET timezone = 'UTC'",
		"SET statement_timeout = '30s'",
		"SET lock_timeout = '10s'",
	} {
		if _, err := sqlDB.Exec(query); err != nil {
			log.Printf("warning: failed to execute session query '%s': %v", query, err)
		}
	}

	return db, nil
}

// OpenSQLite opens a sqlite database, used by tests and local tooling.
// Use "file::memory:?cache=shared" style DSNs for throwaway databases.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   newLogger(),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Region{},
		&models.Country{},
		&models.Location{},
		&models.Airport{},
		&models.Airline{},
		&models.Flight{},
		&models.Booking{},
		&models.Quote{},
		&models.Contact{},
		&models.SiteInfo{},
		&models.LoginAttempt{},
	)
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func containsParam(url string, param string) bool {
	return strings.Contains(url, param+"=")
}
