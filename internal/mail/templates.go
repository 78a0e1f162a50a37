package mail

import (
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flyva/travel-backend/internal/models"
)

const longDate = "02 January 2006"

var funcs = map[string]any{
	"date":  func(d models.Date) string { return d.Format(longDate) },
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

var bookingAdminText = template.Must(template.New("booking-admin").Funcs(funcs).Parse(
	`New booking by {{.Booking.CustomerName}}

Flight: {{.From}} → {{.To}}
Trip dates: {{date .Booking.DepartureDate}} – {{date .Booking.ReturnDate}}
Passengers: Adults {{.Booking.PeopleCount.Adults}}, Children {{.Booking.PeopleCount.Children}}, Infants {{.Booking.PeopleCount.Infants}}
Price: {{money .Booking.InitialBookingPrice}}

Contact: {{.Booking.ContactPhone}} ({{.Booking.ContactPreference}})
Details: {{.Booking.ExtraDetails}}`))

const cell = `style="padding:8px;border:1px solid #ddd;"`

const contactBlock = `
  <p>
    ✉️ <a href="mailto:{{.Site.ContactEmail}}">{{.Site.ContactEmail}}</a><br/>
    📞 <a href="tel:{{.Site.ContactPhone}}">{{.Site.ContactPhone}}</a><br/>
    💬 <a href="{{.WhatsApp}}">{{.Site.ContactWA}}</a>
  </p>`

var bookingCustomerHTML = htmltemplate.Must(htmltemplate.New("booking-customer").Funcs(funcs).Parse(`
<div style="max-width:600px;margin:0 auto;font-family:Arial,sans-serif;color:#333;">
  <h1 style="background:#0066cc;color:#fff;padding:15px;border-radius:4px;text-align:center;">Booking Confirmed!</h1>
  <p>Hi <strong>{{.Booking.CustomerName}}</strong>,</p>
  <p>Thanks for booking with us. Here are your trip details:</p>
  <table style="width:100%;border-collapse:collapse;margin:20px 0;">
    <tr><td ` + cell + `><strong>Route</strong></td><td ` + cell + `>{{.From}} → {{.To}}</td></tr>
    <tr><td ` + cell + `><strong>Departure</strong></td><td ` + cell + `>{{date .Booking.DepartureDate}}</td></tr>
    <tr><td ` + cell + `><strong>Return</strong></td><td ` + cell + `>{{date .Booking.ReturnDate}}</td></tr>
    <tr><td ` + cell + `><strong>Passengers</strong></td><td ` + cell + `>Adults: {{.Booking.PeopleCount.Adults}}, Children: {{.Booking.PeopleCount.Children}}, Infants: {{.Booking.PeopleCount.Infants}}</td></tr>
    <tr><td ` + cell + `><strong>Price</strong></td><td ` + cell + `>USD {{money .Booking.InitialBookingPrice}}</td></tr>
  </table>
  <p style="margin:20px 0;">If you have any questions, reach us at:</p>` + contactBlock + `
  <p style="margin-top:30px;color:#777;font-size:0.9em;">We look forward to making your journey unforgettable!</p>
</div>`))

var quoteAdminText = template.Must(template.New("quote-admin").Funcs(funcs).Parse(
	`New quote by {{.Quote.CustomerName}}

Email: {{.Quote.Email}}
Type: {{.Quote.TripType}}
Route: {{.Quote.From}} → {{.Quote.To}}
Departure: {{date .Quote.DepartureDate}}
{{with .Quote.ArrivalDate}}Return: {{date .}}
{{end}}Passengers: Adults: {{.Quote.PassengerCount.Adults}}, Children: {{.Quote.PassengerCount.Children}}, Infants: {{.Quote.PassengerCount.Infants}}
Extra: {{.Quote.ExtraDetails}}

Contact: {{.Quote.ContactPhone}}`))

var quoteCustomerHTML = htmltemplate.Must(htmltemplate.New("quote-customer").Funcs(funcs).Parse(`
<div style="max-width:600px;margin:0 auto;font-family:Arial,sans-serif;color:#333;">
  <h1 style="background:#28a745;color:#fff;padding:15px;border-radius:4px;text-align:center;">Quote Request Received</h1>
  <p>Hi <strong>{{.Quote.CustomerName}}</strong>,</p>
  <p>Your quote request has been received. Here’s what you asked for:</p>
  <table style="width:100%;border-collapse:collapse;margin:20px 0;">
    <tr><td ` + cell + `><strong>Trip Type</strong></td><td ` + cell + `>{{.Quote.TripType}}</td></tr>
    <tr><td ` + cell + `><strong>Route</strong></td><td ` + cell + `>{{.Quote.From}} → {{.Quote.To}}</td></tr>
    <tr><td ` + cell + `><strong>Departure</strong></td><td ` + cell + `>{{date .Quote.DepartureDate}}</td></tr>
    {{with .Quote.ArrivalDate}}<tr><td ` + cell + `><strong>Return</strong></td><td ` + cell + `>{{date .}}</td></tr>{{end}}
    <tr><td ` + cell + `><strong>Passengers</strong></td><td ` + cell + `>Adults: {{.Quote.PassengerCount.Adults}}, Children: {{.Quote.PassengerCount.Children}}, Infants: {{.Quote.PassengerCount.Infants}}</td></tr>
  </table>
  <p>If you have questions, we’re here to help:</p>` + contactBlock + `
  <p style="margin-top:30px;color:#777;font-size:0.9em;">We’ll follow up shortly with your personalized quote.</p>
</div>`))

var passwordResetText = template.Must(template.New("password-reset").Parse(
	`Your admin password was reset at {{.At}}.

Email:    {{.Email}}
Password: {{.Password}}

Please log in and change it as soon as possible.`))

type executor interface {
	Execute(w io.Writer, data any) error
}

func render(t executor, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

type bookingView struct {
	Booking  *models.Booking
	From     string
	To       string
	Site     *models.SiteInfo
	WhatsApp string
}

func newBookingView(b *models.Booking, site *models.SiteInfo) bookingView {
	v := bookingView{Booking: b, Site: site, WhatsApp: site.WhatsAppLink()}
	if b.Flight != nil {
		if b.Flight.DepartureAirport != nil {
			v.From = b.Flight.DepartureAirport.Name
		}
		if b.Flight.ArrivalAirport != nil {
			v.To = b.Flight.ArrivalAirport.Name
		}
	}
	return v
}

// BookingAdmin is the plain-text notice sent to the agency for a new booking.
func BookingAdmin(to string, b *models.Booking, site *models.SiteInfo) (Message, error) {
	text, err := render(bookingAdminText, newBookingView(b, site))
	return Message{FromName: "Booking System", To: to, Subject: "🛫 New Booking Received", Text: text}, err
}

// BookingCustomer is the HTML confirmation sent to the customer.
func BookingCustomer(b *models.Booking, site *models.SiteInfo) (Message, error) {
	html, err := render(bookingCustomerHTML, newBookingView(b, site))
	return Message{FromName: "Flyva Support", To: b.UserEmail, Subject: "Your Booking Details", HTML: html}, err
}

type quoteView struct {
	Quote    *models.Quote
	Site     *models.SiteInfo
	WhatsApp string
}

func QuoteAdmin(to string, q *models.Quote, site *models.SiteInfo) (Message, error) {
	text, err := render(quoteAdminText, quoteView{Quote: q, Site: site, WhatsApp: site.WhatsAppLink()})
	return Message{FromName: "Quote Request", To: to, Subject: "📋 New Quote Request", Text: text}, err
}

func QuoteCustomer(q *models.Quote, site *models.SiteInfo) (Message, error) {
	html, err := render(quoteCustomerHTML, quoteView{Quote: q, Site: site, WhatsApp: site.WhatsAppLink()})
	return Message{FromName: "Flyva Support", To: q.Email, Subject: "We received your quote request", HTML: html}, err
}

// PasswordReset carries freshly generated admin credentials.
func PasswordReset(to, password string, at time.Time) (Message, error) {
	text, err := render(passwordResetText, map[string]string{
		"At":       at.UTC().Format(time.RFC3339),
		"Email":    to,
		"Password": password,
	})
	return Message{To: to, Subject: "Your admin password has been reset", Text: text}, err
}
