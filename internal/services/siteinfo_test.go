package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flyva/travel-backend/internal/models"
)

func newSiteInfoService(t *testing.T) *SiteInfoService {
	s := NewSiteInfoService(newTestDB(t))
	_, err := s.Reset(context.Background(), "admin@admin.com", "admin123")
	require.NoError(t, err)
	return s
}

func TestSiteInfoResetAndAuthenticate(t *testing.T) {
	s := newSiteInfoService(t)
	ctx := context.Background()

	info, err := s.Authenticate(ctx, "admin@admin.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "info@example.com", info.ContactEmail)
	assert.Len(t, info.FAQ, 2)

	_, err = s.Authenticate(ctx, "admin@admin.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "other@admin.com", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// reset replaces the row instead of adding a second one
	_, err = s.Reset(ctx, "new@admin.com", "secret1")
	require.NoError(t, err)
	var n int64
	require.NoError(t, s.db.Model(&models.SiteInfo{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSiteInfoChangePassword(t *testing.T) {
	s := newSiteInfoService(t)
	ctx := context.Background()
	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = fixedClock(later)

	err := s.ChangePassword(ctx, "nope", "newpass1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Current password is incorrect", verr.Msg)

	require.NoError(t, s.ChangePassword(ctx, "admin123", "newpass1"))
	info, err := s.Authenticate(ctx, "admin@admin.com", "newpass1")
	require.NoError(t, err)
	assert.True(t, info.PasswordChangedAt.Equal(later))
}

func TestSiteInfoChangeEmail(t *testing.T) {
	s := newSiteInfoService(t)
	ctx := context.Background()

	var verr *ValidationError
	require.ErrorAs(t, s.ChangeEmail(ctx, "", "x@y.z"), &verr)
	assert.Equal(t, "oldEmail and newEmail are required", verr.Msg)
	require.ErrorAs(t, s.ChangeEmail(ctx, "wrong@admin.com", "x@y.z"), &verr)
	assert.Equal(t, "Current email does not match", verr.Msg)

	require.NoError(t, s.ChangeEmail(ctx, "admin@admin.com", "boss@agency.com"))
	_, err := s.Authenticate(ctx, "boss@agency.com", "admin123")
	assert.NoError(t, err)
}

func TestSiteInfoResetCredentials(t *testing.T) {
	s := newSiteInfoService(t)
	ctx := context.Background()

	err := s.ResetCredentials(ctx, "owner@agency.com", func(string) error { return errors.New("smtp down") })
	require.Error(t, err)
	_, err = s.Authenticate(ctx, "admin@admin.com", "admin123")
	require.NoError(t, err, "failed delivery must keep the old credentials")

	var sent string
	require.NoError(t, s.ResetCredentials(ctx, "owner@agency.com", func(pw string) error {
		sent = pw
		return nil
	}))
	assert.Len(t, sent, 8)
	info, err := s.Authenticate(ctx, "owner@agency.com", sent)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(info.AdminPassword), []byte(sent)))
}

func TestSiteInfoUpdateContent(t *testing.T) {
	s := newSiteInfoService(t)
	ctx := context.Background()
	embed := "https://www.google.com/maps/embed?pb=abc"
	addr := "1 Harbour Road"
	iframe := `<iframe src="` + embed + `" width="600"></iframe>`

	info, err := s.UpdateContent(ctx, SiteContent{AddressText: &addr, MapEmbedCode: &iframe})
	require.NoError(t, err)
	assert.Equal(t, embed, info.MapEmbedCode)
	assert.Equal(t, "How booking works", info.Booking.Heading)

	bogus := "https://evil.example/embed"
	phone := " +44 20 1234 "
	info, err = s.UpdateContent(ctx, SiteContent{AddressText: &addr, MapEmbedCode: &bogus, ContactPhone: &phone})
	require.NoError(t, err)
	assert.Equal(t, embed, info.MapEmbedCode, "an invalid map keeps the previous one")
	assert.Equal(t, "+44 20 1234", info.ContactPhone)

	faq := []models.FAQItem{{Question: "Visa?", Answer: "Ask us."}}
	info, err = s.UpdateContent(ctx, SiteContent{FAQ: &faq})
	require.NoError(t, err)
	assert.Equal(t, faq, info.FAQ)
	assert.Equal(t, addr, info.AddressText)

	stored, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, faq, stored.FAQ)
	assert.Equal(t, "admin@admin.com", stored.AdminEmail)
}
