package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/config"
	"github.com/flyva/travel-backend/internal/db"
	"github.com/flyva/travel-backend/internal/mail"
	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

const (
	testSecret   = "test-secret"
	adminEmail   = "admin@flyva.example"
	adminPass    = "secret123"
	notifyTarget = "ops@flyva.example"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	return out
}

type testEnv struct {
	e      *echo.Echo
	srv    *Server
	db     *gorm.DB
	mailer *recordingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.AppConfig{
		JWTSecret:          testSecret,
		JWTExpiry:          time.Hour,
		AdminNotifyEmail:   notifyTarget,
		UploadDir:          t.TempDir(),
		UploadMaxDimension: 400,
		UploadQuality:      80,
		AllowedOrigins:     []string{"*"},
	}
	m := &recordingMailer{}
	e := echo.New()
	srv, err := New(e, gdb, cfg, Deps{Mailer: m})
	require.NoError(t, err)
	return &testEnv{e: e, srv: srv, db: gdb, mailer: m}
}

// seedAdmin creates the site record holding the admin login.
func (env *testEnv) seedAdmin(t *testing.T) *models.SiteInfo {
	t.Helper()
	info, err := env.srv.SiteInfo.Reset(context.Background(), adminEmail, adminPass)
	require.NoError(t, err)
	return info
}

func (env *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPass}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// tokenIssuedAt signs an admin token with a chosen issue time.
func tokenIssuedAt(t *testing.T, id uint, iat time.Time) string {
	t.Helper()
	claims := utils.Claims{
		ID:      id,
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin(t *testing.T) {
	t.Run("unconfigured site", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPass}, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAdmin(t)
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody[simpleResponse](t, rec).Message, "password")
	})

	t.Run("token verifies", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAdmin(t)
		token := env.login(t)
		rec := env.do(t, http.MethodGet, "/api/auth/verify", nil, token)
		assert.True(t, decodeBody[verifyResponse](t, rec).Valid)
		rec = env.do(t, http.MethodGet, "/api/auth/verify", nil, "garbage")
		assert.False(t, decodeBody[verifyResponse](t, rec).Valid)
	})

	t.Run("blocks after repeated failures", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAdmin(t)
		bad := map[string]string{"email": adminEmail, "password": "wrong"}
		for i := 0; i < 5; i++ {
			rec := env.do(t, http.MethodPost, "/api/auth/login", bad, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		}
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPass}, "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestThrottlesIgnoreForwardedHeaders(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	bad := map[string]string{"email": adminEmail, "password": "wrong"}

	send := func(path string, body any, forwardedFor string) int {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		req.Header.Set(echo.HeaderXRealIP, forwardedFor)
		rec := httptest.NewRecorder()
		env.e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 1; i <= 5; i++ {
		require.Equal(t, http.StatusUnauthorized, send("/api/auth/login", bad, "10.0.0."+strconv.Itoa(i)))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("/api/auth/login", bad, "10.0.0.99"))

	require.Equal(t, http.StatusOK, send("/api/siteinfo/forgot", nil, "10.1.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("/api/siteinfo/forgot", nil, "10.1.0.2"))
	assert.Len(t, env.mailer.recipients(), 1)
}

func TestIPExtractor(t *testing.T) {
	req := func(remote, forwardedFor string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		r.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		return r
	}

	direct, err := ipExtractor(nil)
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", direct(req("10.1.2.3:5000", "198.51.100.9")))

	proxied, err := ipExtractor([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.9", proxied(req("10.1.2.3:5000", "198.51.100.9")))
	assert.Equal(t, "203.0.113.5", proxied(req("203.0.113.5:5000", "198.51.100.9")))

	_, err = ipExtractor([]string{"not-a-cidr"})
	assert.Error(t, err)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	rec := env.do(t, http.MethodGet, "/api/siteinfo/admin/all", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token, auth denied", decodeBody[simpleResponse](t, rec).Message)

	rec = env.do(t, http.MethodGet, "/api/siteinfo/admin/all", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/siteinfo/admin/all", nil, env.login(t))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, adminEmail, body["adminEmail"])
	assert.NotContains(t, body, "adminPassword")
}

func TestPasswordChangeRevokesOlderTokens(t *testing.T) {
	env := newTestEnv(t)
	info := env.seedAdmin(t)
	require.NoError(t, env.db.Model(&models.SiteInfo{}).Where("id = ?", info.ID).
		Update("password_changed_at", time.Now().UTC().Add(-2*time.Hour)).Error)

	old := tokenIssuedAt(t, info.ID, time.Now().Add(-time.Hour))
	rec := env.do(t, http.MethodGet, "/api/siteinfo/admin/email", nil, old)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/siteinfo/password",
		map[string]string{"oldPassword": adminPass, "newPassword": "brand-new-pass"}, old)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/siteinfo/admin/email", nil, old)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicSiteInfo(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/siteinfo/public", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.seedAdmin(t)
	rec = env.do(t, http.MethodGet, "/api/siteinfo/public", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "adminPassword")
	assert.NotContains(t, rec.Body.String(), adminEmail)

	rec = env.do(t, http.MethodGet, "/api/siteinfo/public/faq", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[map[string][]models.FAQItem](t, rec)["faq"], 2)
}

func TestForgotPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	rec := env.do(t, http.MethodPost, "/api/siteinfo/forgot", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{notifyTarget}, env.mailer.recipients())

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPass}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "old password must stop working")

	rec = env.do(t, http.MethodPost, "/api/siteinfo/forgot", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Len(t, env.mailer.recipients(), 1)
}
