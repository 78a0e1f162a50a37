package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyva/travel-backend/internal/config"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		url  string
		key  string
		fail bool
	}{
		{url: "/uploads/locations/loc-1.jpg", key: "locations/loc-1.jpg"},
		{url: "/uploads/airlines//air-2.jpg", key: "airlines/air-2.jpg"},
		{url: "/uploads/../etc/passwd", fail: true},
		{url: "/uploads/", fail: true},
		{url: "/static/x.jpg", fail: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			key, err := KeyFromURL(tt.url)
			if tt.fail {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)
		})
	}
}

func exercise(t *testing.T, s Store) {
	ctx := context.Background()
	url, err := s.Save(ctx, "locations/loc-abc.jpg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/locations/loc-abc.jpg", url)

	rc, err := s.Open(ctx, "locations/loc-abc.jpg")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "jpeg bytes", string(b))

	_, err = s.Open(ctx, "locations")
	assert.ErrorIs(t, err, ErrNotFound, "directories are not files")

	require.NoError(t, s.Delete(url))
	_, err = s.Open(ctx, "locations/loc-abc.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(url), "deleting twice is fine")
	assert.ErrorIs(t, s.Delete("/uploads/../../x"), ErrInvalidKey)
}

func TestLocal(t *testing.T) {
	dir := t.TempDir()
	exercise(t, NewLocal(dir))

	entries, err := os.ReadDir(filepath.Join(dir, "locations"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files left behind")
}

// inMemorySFTP connects the store to an in-process SFTP server.
func inMemorySFTP(t *testing.T) *SFTP {
	handlers := sftp.InMemHandler()
	return &SFTP{root: "/srv", connect: func(context.Context) (*sftp.Client, func(), error) {
		clientR, serverW := io.Pipe()
		serverR, clientW := io.Pipe()
		server := sftp.NewRequestServer(struct {
			io.Reader
			io.WriteCloser
		}{serverR, serverW}, handlers)
		go server.Serve()
		client, err := sftp.NewClientPipe(clientR, clientW)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			client.Close()
			server.Close()
		}, nil
	}}
}

func TestSFTP(t *testing.T) {
	exercise(t, inMemorySFTP(t))
}

func TestNew(t *testing.T) {
	s, err := New(config.AppConfig{UploadBackend: "local", UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	s, err = New(config.AppConfig{UploadBackend: "sftp", SFTPHost: "files.internal", SFTPPort: 22})
	require.NoError(t, err)
	assert.IsType(t, &SFTP{}, s)

	_, err = New(config.AppConfig{UploadBackend: "s3"})
	assert.Error(t, err)
}
