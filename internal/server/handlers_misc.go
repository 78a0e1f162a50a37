package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/mail"
	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/services"
	"github.com/flyva/travel-backend/internal/utils"
)

type contactRequest struct {
	Name    string `json:"name" example:"Jane Doe"`
	Email   string `json:"email" example:"jane@example.com"`
	Phone   string `json:"phone" example:"+44 20 7946 0000"`
	Message string `json:"message" example:"Do you fly to Lisbon in May?"`
}

type contactUpdateRequest struct {
	Status     *models.InquiryStatus `json:"status"`
	ExtraNotes *string               `json:"extraNotes"`
}

type contactDeletedResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

// CreateContact godoc
// @Summary Send a message to the agency
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param request body contactRequest true "Message"
// @Success 201 {object} models.Contact
// @Failure 400 {object} simpleResponse
// @Router /api/contact [post]
func (s *Server) CreateContact(c echo.Context) error {
	var req contactRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	req.Name = utils.SanitizeString(req.Name)
	req.Email = utils.SanitizeString(req.Email)
	if req.Email != "" && !utils.ValidateEmail(req.Email) {
		return badRequest(c, "Invalid email")
	}
	contact, err := s.Contacts.Create(c.Request().Context(), req.Name, req.Email, req.Phone, req.Message)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, contact)
}

// ListContacts godoc
// @Summary List contact messages, newest first
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Contact
// @Router /api/contact [get]
func (s *Server) ListContacts(c echo.Context) error {
	contacts, err := s.Contacts.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contacts)
}

// UpdateContact godoc
// @Summary Triage a contact message
// @Tags Inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param request body contactUpdateRequest true "Status and notes"
// @Success 200 {object} models.Contact
// @Failure 400 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/contact/{id} [put]
func (s *Server) UpdateContact(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid contact id")
	}
	var req contactUpdateRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	contact, err := s.Contacts.Update(c.Request().Context(), id, req.Status, req.ExtraNotes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contact)
}

// DeleteContact godoc
// @Summary Delete a contact message
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} contactDeletedResponse
// @Failure 404 {object} simpleResponse
// @Router /api/contact/{id} [delete]
func (s *Server) DeleteContact(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid contact id")
	}
	if err := s.Contacts.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contactDeletedResponse{Message: "Deleted", ID: id})
}

// CreateQuote godoc
// @Summary Request a price quote
// @Description Public. The agency and the customer are notified by e-mail.
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param request body services.QuoteInput true "Quote request"
// @Success 201 {object} models.Quote
// @Failure 400 {object} simpleResponse
// @Router /api/quote [post]
func (s *Server) CreateQuote(c echo.Context) error {
	var req services.QuoteInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	q, err := s.Quotes.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	s.notify(c,
		func(site *models.SiteInfo) (mail.Message, error) { return mail.QuoteAdmin(s.Cfg.AdminNotifyEmail, q, site) },
		func(site *models.SiteInfo) (mail.Message, error) { return mail.QuoteCustomer(q, site) },
	)
	return c.JSON(http.StatusCreated, q)
}

// ListQuotes godoc
// @Summary List quote requests, newest first
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Quote
// @Router /api/quote [get]
func (s *Server) ListQuotes(c echo.Context) error {
	quotes, err := s.Quotes.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, quotes)
}

// UpdateQuote godoc
// @Summary Update a quote request
// @Tags Inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quote ID"
// @Param request body services.QuoteUpdate true "Fields to change"
// @Success 200 {object} models.Quote
// @Failure 400 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/quote/{id} [put]
func (s *Server) UpdateQuote(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid quote id")
	}
	var req services.QuoteUpdate
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	q, err := s.Quotes.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// DeleteQuote godoc
// @Summary Delete a quote request
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quote ID"
// @Success 200 {object} simpleResponse
// @Failure 404 {object} simpleResponse
// @Router /api/quote/{id} [delete]
func (s *Server) DeleteQuote(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid quote id")
	}
	if err := s.Quotes.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return deleted(c)
}
