package store

import (
	"context"
	"errors"
	"time"

	"payment-tracker-api/apperr"
	"payment-tracker-api/audit"
	"payment-tracker-api/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Authenticate checks credentials for an active account, stamps
// last_login and records user_login.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ? AND is_active = ?", username, true).Take(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return apperr.ErrInvalidCredentials
		}

		now := time.Now().UTC()
		u.LastLogin = &now
		if err := tx.Model(&u).UpdateColumn("last_login", now).Error; err != nil {
			return err
		}
		_, err = s.audit.Record(tx, audit.Event{
			Actor:       &u,
			Action:      models.ActionUserLogin,
			Description: audit.UserLogin(&u),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String("username", username))
		}
		return nil, err
	}
	return &u, nil
}

// ActiveUser loads an active account by id. Token middleware uses it to
// resolve the principal.
func (s *Store) ActiveUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrAuthenticationRequired
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout records user_logout for principal.
func (s *Store) Logout(ctx context.Context, principal *models.User) error {
	if principal == nil {
		return apperr.ErrAuthenticationRequired
	}
	_, err := s.audit.Record(s.db.WithContext(ctx), audit.Event{
		Actor:       principal,
		Action:      models.ActionUserLogout,
		Description: audit.UserLogout(principal),
	})
	return err
}
