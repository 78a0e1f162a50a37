package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/db"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// ValidationError is a client mistake; its message is safe to show.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// translate maps storage errors onto the service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case db.IsDuplicate(err):
		return ErrDuplicate
	}
	return err
}

// FileRemover deletes a previously uploaded file by its public URL.
type FileRemover interface {
	Delete(url string) error
}
