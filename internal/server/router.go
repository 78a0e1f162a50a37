package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/config"
	"github.com/flyva/travel-backend/internal/db"
	"github.com/flyva/travel-backend/internal/fares"
	"github.com/flyva/travel-backend/internal/mail"
	"github.com/flyva/travel-backend/internal/ratelimit"
	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/storage"
)

const forgotLimitMessage = "You can only reset your password once every 24 hours."

type Server struct {
	DB     *gorm.DB
	Cfg    config.AppConfig
	Files  storage.Store
	Mailer mail.Mailer
	Fares  *fares.Engine

	Regions       *services.RegionService
	Locations     *services.LocationService
	Airports      *services.AirportService
	Airlines      *services.AirlineService
	Flights       *services.FlightService
	Bookings      *services.BookingService
	Quotes        *services.QuoteService
	Contacts      *services.ContactService
	SiteInfo      *services.SiteInfoService
	LoginAttempts *services.LoginAttemptService
	Maintenance   *services.MaintenanceRunner

	forgot ratelimit.Counter
}

// Deps are the outside collaborators of the server. Nil fields fall back to
// local defaults: uploads on disk, mail to the log, in-memory counters.
type Deps struct {
	Files  storage.Store
	Mailer mail.Mailer
	Redis  *redis.Client
}

func New(e *echo.Echo, gdb *gorm.DB, cfg config.AppConfig, deps Deps) (*Server, error) {
	if err := db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if deps.Files == nil {
		deps.Files = storage.NewLocal(cfg.UploadDir)
	}
	if deps.Mailer == nil {
		deps.Mailer = mail.LogMailer{}
	}

	flights := services.NewFlightService(gdb)
	bookings := services.NewBookingService(gdb, flights)
	attempts := services.NewLoginAttemptService(gdb)
	s := &Server{
		DB:            gdb,
		Cfg:           cfg,
		Files:         deps.Files,
		Mailer:        deps.Mailer,
		Fares:         fares.NewEngine(services.NewFlightCatalog(gdb)),
		Regions:       services.NewRegionService(gdb),
		Locations:     services.NewLocationService(gdb, deps.Files),
		Airports:      services.NewAirportService(gdb),
		Airlines:      services.NewAirlineService(gdb, deps.Files),
		Flights:       flights,
		Bookings:      bookings,
		Quotes:        services.NewQuoteService(gdb),
		Contacts:      services.NewContactService(gdb),
		SiteInfo:      services.NewSiteInfoService(gdb),
		LoginAttempts: attempts,
		Maintenance:   services.NewMaintenanceRunner(bookings, attempts, time.Hour),
		forgot: ratelimit.New(deps.Redis, ratelimit.Rule{
			Prefix: "forgot",
			Limit:  1,
			Window: 24 * time.Hour,
		}),
	}

	extractor, err := ipExtractor(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	e.IPExtractor = extractor
	e.Validator = newValidator()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Secure())
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitRPS),
				Burst:     cfg.RateLimitRPS * 2,
				ExpiresIn: 3 * time.Minute,
			},
		)))
	}

	s.routes(e)
	return s, nil
}

// ipExtractor believes X-Forwarded-For only when it was appended by one of
// the trusted proxies; otherwise the peer address is the client.
func ipExtractor(trusted []string) (echo.IPExtractor, error) {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect(), nil
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trusted {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

// StartMaintenance runs the periodic cleanup jobs until ctx is done.
func (s *Server) StartMaintenance(ctx context.Context) {
	go s.Maintenance.Start(ctx)
}

func (s *Server) routes(e *echo.Echo) {
	admin := []echo.MiddlewareFunc{s.JWTMiddleware(), s.AdminMiddleware()}

	e.GET("/health", s.Health)
	e.GET(storage.URLPrefix+"*", s.ServeUpload)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", s.Login)
	auth.GET("/verify", s.VerifyToken)

	site := api.Group("/siteinfo")
	site.GET("/public", s.PublicSiteInfo)
	site.GET("/public/about-long", s.PublicAboutLong)
	site.GET("/public/privacy", s.PublicPrivacy)
	site.GET("/public/about", s.PublicAbout)
	site.GET("/public/faq", s.PublicFAQ)
	site.GET("/public/contact", s.PublicContact)
	site.GET("/public/address", s.PublicAddress)
	site.GET("/public/booking", s.PublicBooking)
	site.GET("/public/terms", s.PublicTerms)
	site.GET("/admin/email", s.AdminEmail, admin...)
	site.GET("/admin/all", s.AdminSiteInfo, admin...)
	site.PUT("/password", s.ChangePassword, admin...)
	site.PUT("/admin/email", s.ChangeAdminEmail, admin...)
	site.POST("/forgot", s.ForgotPassword, ratelimit.Middleware(s.forgot, echo.Context.RealIP, forgotLimitMessage))
	site.POST("", s.UpsertSiteInfo, admin...)
	site.PUT("", s.UpdateSiteInfo, admin...)

	region := api.Group("/region")
	region.GET("", s.ListRegions)
	region.GET("/:id", s.GetRegion)
	region.POST("", s.CreateRegion, admin...)
	region.PUT("/:id", s.UpdateRegion, admin...)
	region.DELETE("/:id", s.DeleteRegion, admin...)

	country := api.Group("/country")
	country.GET("", s.ListCountries)
	country.GET("/region/:regionId", s.CountriesByRegion)
	country.GET("/:id", s.GetCountry)
	country.POST("", s.CreateCountry, admin...)
	country.PUT("/:id", s.UpdateCountry, admin...)
	country.DELETE("/:id", s.DeleteCountry, admin...)

	location := api.Group("/location")
	location.GET("", s.ListLocations)
	location.GET("/popular", s.PopularLocations)
	location.GET("/country/:countryId", s.LocationsByCountry)
	location.GET("/deals", s.LocationDeals)
	location.GET("/region/:regionId", s.LocationsByRegion)
	location.GET("/search", s.SearchLocations)
	location.GET("/hasairports/:id", s.LocationHasAirports)
	location.GET("/firstairport/:id", s.LocationFirstAirport)
	location.GET("/:id", s.GetLocation)
	location.POST("", s.CreateLocation, admin...)
	location.PUT("/:id", s.UpdateLocation, admin...)
	location.DELETE("/:id", s.DeleteLocation, admin...)
	location.PATCH("/:id/popular", s.SetLocationPopular, admin...)
	location.PATCH("/:id/dealings", s.SetLocationDealings, admin...)

	airport := api.Group("/airport")
	airport.GET("", s.ListAirports)
	airport.GET("/search-advanced", s.SearchAirports)
	airport.GET("/by-location/:locationId/ids", s.AirportIDsByLocation)
	airport.GET("/by-location/:locationId", s.AirportsByLocation)
	airport.GET("/:id/usage", s.AirportUsage, admin...)
	airport.GET("/:id", s.GetAirport)
	airport.POST("", s.CreateAirport, admin...)
	airport.PUT("/:id", s.UpdateAirport, admin...)
	airport.DELETE("/:id", s.DeleteAirport, admin...)
	airport.PATCH("/:id/departure", s.SetAirportDeparture, admin...)

	airline := api.Group("/airline")
	airline.GET("", s.ListAirlines)
	airline.GET("/search", s.SearchAirlines)
	airline.GET("/:id", s.GetAirline)
	airline.POST("", s.CreateAirline, admin...)
	airline.PUT("/:id", s.UpdateAirline, admin...)
	airline.DELETE("/:id", s.DeleteAirline, admin...)

	flight := api.Group("/flight")
	flight.GET("", s.ListFlights)
	flight.GET("/page/:page", s.ListFlights)
	flight.GET("/filter", s.FilterFlights)
	flight.GET("/:id/has-bookings", s.FlightHasBookings, admin...)
	flight.GET("/:id", s.GetFlight)
	flight.POST("", s.CreateFlight, admin...)
	flight.PUT("/:id", s.UpdateFlight, admin...)
	flight.DELETE("/:id", s.DeleteFlight, admin...)
	flight.POST("/search-or-create", s.SearchOrCreateFlight)

	booking := api.Group("/booking")
	booking.POST("", s.CreateBooking)
	booking.GET("", s.ListBookings, admin...)
	booking.GET("/filter", s.FilterBookings, admin...)
	booking.GET("/analytics", s.BookingAnalytics, admin...)
	booking.GET("/:id", s.GetBooking, admin...)
	booking.PUT("/:id", s.UpdateBooking, admin...)
	booking.DELETE("/:id", s.DeleteBooking, admin...)

	contact := api.Group("/contact")
	contact.POST("", s.CreateContact)
	contact.GET("", s.ListContacts, admin...)
	contact.PUT("/:id", s.UpdateContact, admin...)
	contact.DELETE("/:id", s.DeleteContact, admin...)

	quote := api.Group("/quote")
	quote.POST("", s.CreateQuote)
	quote.GET("", s.ListQuotes, admin...)
	quote.PUT("/:id", s.UpdateQuote, admin...)
	quote.DELETE("/:id", s.DeleteQuote, admin...)

	upload := api.Group("/upload", admin...)
	upload.POST("/locations", s.UploadLocationImage)
	upload.POST("/airlines", s.UploadAirlineImage)
	upload.POST("", s.UploadImage)
}
