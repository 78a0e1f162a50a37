// Package storage keeps uploaded images either on local disk or on an SFTP
// server. Stored files are addressed by their public URL under /uploads/.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/flyva/travel-backend/internal/config"
)

const URLPrefix = "/uploads/"

var (
	ErrNotFound   = errors.New("file not found")
	ErrInvalidKey = errors.New("invalid file key")
)

type Store interface {
	// Save writes r under key and returns the public URL.
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the file behind a public URL. Unknown files are not an
	// error.
	Delete(url string) error
}

// New builds the store selected by UPLOAD_BACKEND.
func New(cfg config.AppConfig) (Store, error) {
	switch cfg.UploadBackend {
	case "", "local":
		return NewLocal(cfg.UploadDir), nil
	case "sftp":
		return NewSFTP(SFTPConfig{
			Host: cfg.SFTPHost,
			Port: cfg.SFTPPort,
			User: cfg.SFTPUser,
			Pass: cfg.SFTPPass,
			Root: cfg.SFTPRoot,
		}), nil
	}
	return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
}

// CleanKey validates a relative key such as "locations/loc-x.jpg".
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(clean, "\\") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// KeyFromURL turns "/uploads/locations/x.jpg" into "locations/x.jpg".
func KeyFromURL(url string) (string, error) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", ErrInvalidKey
	}
	return CleanKey(strings.TrimPrefix(url, URLPrefix))
}

func URLFor(key string) string {
	return URLPrefix + key
}
