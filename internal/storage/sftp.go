package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type SFTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	Root string
}

// SFTP stores files on a remote host. Each operation opens its own session.
type SFTP struct {
	root    string
	connect func(ctx context.Context) (*sftp.Client, func(), error)
}

func NewSFTP(cfg SFTPConfig) *SFTP {
	return &SFTP{root: cfg.Root, connect: dialer(cfg)}
}

func dialer(cfg SFTPConfig) func(ctx context.Context) (*sftp.Client, func(), error) {
	return func(ctx context.Context) (*sftp.Client, func(), error) {
		sshCfg := &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         30 * time.Second,
		}
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		netConn, err := (&net.Dialer{Timeout: sshCfg.Timeout}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("SFTP dial error: %w", err)
		}
		c, chans, reqs, err := ssh.NewClientConn(netConn, addr, sshCfg)
		if err != nil {
			netConn.Close()
			return nil, nil, fmt.Errorf("SFTP handshake error: %w", err)
		}
		conn := ssh.NewClient(c, chans, reqs)
		client, err := sftp.NewClient(conn)
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("SFTP client error: %w", err)
		}
		return client, func() {
			client.Close()
			conn.Close()
		}, nil
	}
}

func (s *SFTP) remote(key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return path.Join(s.root, key), nil
}

func (s *SFTP) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	dst, err := s.remote(key)
	if err != nil {
		return "", err
	}
	client, done, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	if err := client.MkdirAll(path.Dir(dst)); err != nil {
		return "", err
	}
	f, err := client.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := f.ReadFrom(r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	key, _ = CleanKey(key)
	return URLFor(key), nil
}

// sessionFile closes the SFTP session together with the file.
type sessionFile struct {
	*sftp.File
	done func()
}

func (f sessionFile) Close() error {
	err := f.File.Close()
	f.done()
	return err
}

func (s *SFTP) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	src, err := s.remote(key)
	if err != nil {
		return nil, err
	}
	client, done, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	info, err := client.Stat(src)
	if err == nil && info.IsDir() {
		done()
		return nil, ErrNotFound
	}
	var f *sftp.File
	if err == nil {
		f, err = client.Open(src)
	}
	if err != nil {
		done()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sessionFile{File: f, done: done}, nil
}

func (s *SFTP) Delete(url string) error {
	key, err := KeyFromURL(url)
	if err != nil {
		return err
	}
	p, err := s.remote(key)
	if err != nil {
		return err
	}
	client, done, err := s.connect(context.Background())
	if err != nil {
		return err
	}
	defer done()
	if err := client.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
