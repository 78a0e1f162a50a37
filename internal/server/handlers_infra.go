package server

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/flyva/travel-backend/internal/storage"
)

// Health godoc
// @Summary Health check
// @Description Check the health status of the API and its dependencies
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Router /health [get]
func (s *Server) Health(c echo.Context) error {
	status := map[string]any{
		"success": true,
		"status":  "ok",
		"checks":  map[string]any{},
	}
	checks := status["checks"].(map[string]any)
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Ping(); err != nil {
			checks["database"] = map[string]any{"ok": false, "error": err.Error()}
			status["status"] = "degraded"
		} else {
			checks["database"] = map[string]any{"ok": true}
		}
	} else {
		checks["database"] = map[string]any{"ok": false, "error": "db handle unavailable"}
		status["status"] = "degraded"
	}

	// Probe postgres directly, outside the gorm pool.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if dsn := s.Cfg.DatabaseURL; strings.HasPrefix(dsn, "postgres") {
		if pool, err := pgxpool.New(ctx, dsn); err == nil {
			if err := pool.Ping(ctx); err != nil {
				checks["postgres"] = map[string]any{"ok": false, "error": err.Error()}
				status["status"] = "degraded"
			} else {
				checks["postgres"] = map[string]any{"ok": true}
			}
			pool.Close()
		} else {
			checks["postgres"] = map[string]any{"ok": false}
		}
	}
	return c.JSON(http.StatusOK, status)
}

// ServeUpload godoc
// @Summary Serve an uploaded file
// @Tags System
// @Produce octet-stream
// @Param path path string true "File key"
// @Success 200 {file} file
// @Failure 404 {object} simpleResponse
// @Router /uploads/{path} [get]
func (s *Server) ServeUpload(c echo.Context) error {
	key, err := storage.CleanKey(c.Param("*"))
	if err != nil {
		return notFound(c)
	}
	r, err := s.Files.Open(c.Request().Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return fail(c, err)
	}
	defer r.Close()

	ct := mime.TypeByExtension(path.Ext(key))
	if ct == "" {
		ct = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, ct, r)
}
