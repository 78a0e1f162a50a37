package mail

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyva/travel-backend/internal/config"
	"github.com/flyva/travel-backend/internal/models"
)

func site() *models.SiteInfo {
	return &models.SiteInfo{ContactEmail: "info@flyva.test", ContactPhone: "+1-555-0100", ContactWA: "+1 (555) 0199"}
}

func booking() *models.Booking {
	return &models.Booking{
		CustomerName:        "Ada <script>",
		UserEmail:           "ada@example.com",
		ContactPhone:        "+44 1",
		ContactPreference:   models.PreferWhatsApp,
		PeopleCount:         models.PeopleCount{Adults: 2, Infants: 1},
		DepartureDate:       models.NewDate(2025, 7, 1),
		ReturnDate:          models.NewDate(2025, 7, 8),
		InitialBookingPrice: decimal.RequireFromString("640.5"),
		Flight: &models.Flight{
			DepartureAirport: &models.Airport{Name: "John F Kennedy"},
			ArrivalAirport:   &models.Airport{Name: "Heathrow"},
		},
	}
}

func TestBookingMessages(t *testing.T) {
	m, err := BookingAdmin("ops@flyva.test", booking(), site())
	require.NoError(t, err)
	assert.Equal(t, "ops@flyva.test", m.To)
	assert.Empty(t, m.HTML)
	assert.Contains(t, m.Text, "Flight: John F Kennedy → Heathrow")
	assert.Contains(t, m.Text, "Trip dates: 01 July 2025 – 08 July 2025")
	assert.Contains(t, m.Text, "Price: 640.50")
	assert.Contains(t, m.Text, "Contact: +44 1 (whatsapp)")

	m, err = BookingCustomer(booking(), site())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", m.To)
	assert.Equal(t, "Your Booking Details", m.Subject)
	assert.Contains(t, m.HTML, "USD 640.50")
	assert.Contains(t, m.HTML, `href="https://wa.me/15550199"`)
	assert.NotContains(t, m.HTML, "<script>")
}

func TestQuoteMessages(t *testing.T) {
	q := &models.Quote{
		CustomerName:   "Grace",
		Email:          "grace@example.com",
		TripType:       models.TripOneWay,
		From:           "NYC",
		To:             "LON",
		DepartureDate:  models.NewDate(2025, 9, 1),
		PassengerCount: models.PeopleCount{Adults: 1},
	}
	m, err := QuoteAdmin("ops@flyva.test", q, site())
	require.NoError(t, err)
	assert.NotContains(t, m.Text, "Return:")
	assert.Contains(t, m.Text, "Route: NYC → LON")

	ret := models.NewDate(2025, 9, 10)
	q.TripType, q.ArrivalDate = models.TripRoundTrip, &ret
	m, err = QuoteCustomer(q, site())
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", m.To)
	assert.Contains(t, m.HTML, "10 September 2025")
}

func TestPasswordResetAndFormat(t *testing.T) {
	m, err := PasswordReset("owner@flyva.test", "s3cretPW", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, m.Text, "Password: s3cretPW")
	assert.Contains(t, m.Text, "2025-01-02T03:04:05Z")

	s := &SMTPMailer{From: "noreply@flyva.test"}
	raw := string(s.format(Message{FromName: "Flyva Support", To: "a@b.c", Subject: "Your Booking Details", HTML: "<p>hi</p>"}))
	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, `Content-Type: text/html; charset="UTF-8"`)
	assert.Contains(t, head, "<noreply@flyva.test>")
	assert.Equal(t, "<p>hi</p>", body)
}

func TestNewPicksLogMailerWithoutRelay(t *testing.T) {
	assert.IsType(t, LogMailer{}, New(config.AppConfig{}))
	assert.IsType(t, &SMTPMailer{}, New(config.AppConfig{SMTPHost: "smtp.flyva.test", SMTPPort: 587}))
}
