package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/flyva/travel-backend/internal/models"
	"github.com/flyva/travel-backend/internal/utils"
)

const (
	LoginWindow      = 15 * time.Minute
	MaxFailedLogins  = 5
	loginAttemptsTTL = 24 * time.Hour
)

// LoginAttemptService records login attempts so repeated failures from one
// address can be throttled.
type LoginAttemptService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLoginAttemptService(db *gorm.DB) *LoginAttemptService {
	return &LoginAttemptService{db: db, now: utils.NowUTC}
}

// FailedCount returns the failed attempts from ip inside LoginWindow.
func (s *LoginAttemptService) FailedCount(ctx context.Context, ip string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.LoginAttempt{}).
		Where("ip_address = ? AND success = ? AND created_at > ?", ip, false, s.now().Add(-LoginWindow)).
		Count(&count).Error
	return count, err
}

// Blocked reports whether ip has used up its failed attempts.
func (s *LoginAttemptService) Blocked(ctx context.Context, ip string) (bool, error) {
	n, err := s.FailedCount(ctx, ip)
	if err != nil {
		return false, err
	}
	return n >= MaxFailedLogins, nil
}

func (s *LoginAttemptService) Record(ctx context.Context, email, ip string, success bool) error {
	return s.db.WithContext(ctx).Create(&models.LoginAttempt{
		Email:     email,
		IPAddress: ip,
		Success:   success,
		CreatedAt: s.now(),
	}).Error
}

// Cleanup removes attempts older than a day.
func (s *LoginAttemptService) Cleanup(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", s.now().Add(-loginAttemptsTTL)).Delete(&models.LoginAttempt{})
	return res.RowsAffected, res.Error
}
