package store

import (
	"context"
	"strings"

	"payment-tracker-api/apperr"
	"payment-tracker-api/audit"
	"payment-tracker-api/filters"
	"payment-tracker-api/models"
	"payment-tracker-api/pagination"
	"payment-tracker-api/policy"
	"payment-tracker-api/statemachine"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minPasswordLength = 8

// UserInput carries writable user fields. Nil fields are left unchanged
// on update. is_staff and is_superuser always follow user_type.
type UserInput struct {
	Username  *string
	Password  *string
	Email     *string
	FirstName *string
	LastName  *string
	UserType  *models.UserType
}

func (in UserInput) apply(u *models.User) error {
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}

	t := u.UserType
	if in.UserType != nil {
		t = *in.UserType
	}
	if t == "" {
		t = models.UserTypeEmployee
	}
	if !t.Valid() {
		return apperr.Validation("user_type", "%q is not a valid choice", t)
	}
	u.ApplyUserType(t)

	if u.Username == "" {
		return apperr.Validation("username", "this field may not be blank")
	}
	if u.Email != "" {
		if err := checkEmail("email", u.Email); err != nil {
			return err
		}
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	return nil
}

// HashPassword bcrypt-hashes a password after checking its length.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperr.Validation("password", "ensure this field has at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Validation("password", "%v", err)
	}
	return string(hash), nil
}

// ListUsers never includes the reserved accounts. Non-admins see only
// themselves.
func (s *Store) ListUsers(ctx context.Context, principal *models.User, params filters.UserParams, req pagination.Request) (List[models.User], error) {
	if err := policy.AuthorizeKind(principal, policy.View, policy.KindUser); err != nil {
		return List[models.User]{}, err
	}
	p, err := filters.Users(principal, s.reserved, params)
	if err != nil {
		return List[models.User]{}, err
	}
	return paginate[models.User](ctx, s.db, p, req)
}

// findUser resolves a user by id. Reserved accounts are not addressable.
func (s *Store) findUser(tx *gorm.DB, id uint) (*models.User, error) {
	u, err := find[models.User](tx, id)
	if err != nil {
		return nil, err
	}
	if s.isReserved(u.Username) {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, principal *models.User, id uint) (*models.User, error) {
	u, err := s.findUser(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(principal, policy.View, policy.User(u)); err != nil {
		return nil, err
	}
	return u, nil
}

// Me reloads the principal's own record.
func (s *Store) Me(ctx context.Context, principal *models.User) (*models.User, error) {
	if principal == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	return find[models.User](s.db.WithContext(ctx), principal.ID)
}

// RegisterUser creates an active account. Only admins may register users.
func (s *Store) RegisterUser(ctx context.Context, principal *models.User, in UserInput) (*models.User, error) {
	if err := policy.AuthorizeKind(principal, policy.Create, policy.KindUser); err != nil {
		return nil, err
	}
	if in.Password == nil {
		return nil, apperr.Validation("password", "this field is required")
	}
	u := &models.User{IsActive: true}
	if err := in.apply(u); err != nil {
		return nil, err
	}
	if s.isReserved(u.Username) {
		return nil, apperr.Validation("username", "username already exists")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", u.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return apperr.Validation("username", "username already exists")
		}
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return apperr.FromDB(err, "username")
		}
		_, err := s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     &u.ID,
			Action:      models.ActionUserCreated,
			Description: audit.UserCreated(u),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered",
		zap.Uint("user_id", u.ID),
		zap.String("user_type", string(u.UserType)),
		zap.Uint("by", principal.ID),
	)
	return u, nil
}

// UpdateUser changes profile fields. Only admins may change user_type.
func (s *Store) UpdateUser(ctx context.Context, principal *models.User, id uint, in UserInput) (*models.User, error) {
	var u *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = s.findUser(tx, id); err != nil {
			return err
		}
		if err := policy.Authorize(principal, policy.Update, policy.User(u)); err != nil {
			return err
		}
		if in.UserType != nil && *in.UserType != u.UserType && !principal.IsAdmin() {
			return apperr.ErrPermissionDenied
		}
		if err := in.apply(u); err != nil {
			return err
		}
		if s.isReserved(u.Username) {
			return apperr.Validation("username", "username already exists")
		}
		if err := tx.Omit(clause.Associations).Save(u).Error; err != nil {
			return apperr.FromDB(err, "username")
		}
		_, err = s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     &u.ID,
			Action:      models.ActionUserUpdated,
			Description: audit.UserUpdated(u),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser deactivates the account and logs user_deleted.
func (s *Store) DeleteUser(ctx context.Context, principal *models.User, id uint) (*models.User, error) {
	return s.transitionUser(ctx, principal, id, policy.Delete, statemachine.Deactivate,
		models.ActionUserDeleted, audit.UserDeleted)
}

// ReactivateUser restores a deactivated account. Admin only.
func (s *Store) ReactivateUser(ctx context.Context, principal *models.User, id uint) (*models.User, error) {
	if principal == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	if !principal.IsAdmin() {
		return nil, apperr.ErrPermissionDenied
	}
	return s.transitionUser(ctx, principal, id, policy.Update, statemachine.Reactivate,
		models.ActionUserUpdated, audit.UserUpdated)
}

func (s *Store) transitionUser(ctx context.Context, principal *models.User, id uint, action policy.Action, ev statemachine.Event, logAction models.LogAction, describe func(*models.User) string) (*models.User, error) {
	var u *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = s.findUser(tx, id); err != nil {
			return err
		}
		if err := policy.Authorize(principal, action, policy.User(u)); err != nil {
			return err
		}
		if u.IsActive, err = statemachine.Apply(u.IsActive, ev); err != nil {
			return err
		}
		if err := tx.Model(u).Update("is_active", u.IsActive).Error; err != nil {
			return err
		}
		_, err = s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     &u.ID,
			Action:      logAction,
			Description: describe(u),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user lifecycle", zap.Uint("user_id", id), zap.String("event", string(ev)))
	return u, nil
}
