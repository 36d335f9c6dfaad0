package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

const (
	ResetTokenExpiry = time.Hour
	resetTokenBytes  = 32
)

// ResetNotifier delivers a reset token to the account owner.
type ResetNotifier interface {
	SendResetToken(ctx context.Context, email, token string, expiresAt time.Time) error
}

// LogResetNotifier writes reset tokens to the debug log. Used when no mail
// transport is configured.
type LogResetNotifier struct{}

func (LogResetNotifier) SendResetToken(_ context.Context, email, token string, expiresAt time.Time) error {
	logger.Debug("Password reset token issued", map[string]interface{}{
		"email":      email,
		"token":      token,
		"expires_at": expiresAt,
	})
	return nil
}

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(token, newPassword, confirmPassword string) error
	PurgeExpired() (int64, error)
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
	notifier  ResetNotifier
	now       func() time.Time
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	notifier ResetNotifier,
) PasswordResetService {
	if notifier == nil {
		notifier = LogResetNotifier{}
	}
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		now:       time.Now,
	}
}

// RequestReset issues a token for email. Unknown emails succeed silently so
// callers cannot probe which accounts exist.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		return err
	}

	token, err := util.RandomToken(resetTokenBytes)
	if err != nil {
		logger.Error("Failed to generate reset token", err)
		return err
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Email:     email,
		Token:     token,
		ExpiresAt: s.now().Add(ResetTokenExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return err
	}

	if err := s.notifier.SendResetToken(ctx, email, token, reset.ExpiresAt); err != nil {
		logger.Error("Failed to deliver reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Password reset requested", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *passwordResetService) ResetPassword(token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if err := util.ValidatePassword(newPassword); err != nil {
		return err
	}

	reset, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if !reset.Usable(s.now()) {
		logger.Warn("Reset token expired or used", map[string]interface{}{
			"reset_id": reset.ID,
		})
		return ErrInvalidResetToken
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(reset.UserID, hash); err != nil {
		return err
	}
	if err := s.resetRepo.MarkAsUsed(reset.ID); err != nil {
		return err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": reset.UserID,
	})
	return nil
}

func (s *passwordResetService) PurgeExpired() (int64, error) {
	n, err := s.resetRepo.DeleteExpired(s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("Purged password reset tokens", map[string]interface{}{
			"count": n,
		})
	}
	return n, nil
}
