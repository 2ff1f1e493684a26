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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerInput carries writable customer fields. Nil fields are left
// unchanged on update.
type CustomerInput struct {
	Name       *string
	Email      *string
	Phone      *string
	Address    *string
	PackageFee *decimal.Decimal
}

func (in CustomerInput) apply(c *models.Customer) error {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.PackageFee != nil {
		c.PackageFee = *in.PackageFee
	}

	switch {
	case c.Name == "":
		return apperr.Validation("name", "this field may not be blank")
	case c.Email == "":
		return apperr.Validation("email", "this field may not be blank")
	case c.PackageFee.IsNegative():
		return apperr.Validation("package_fee", "must not be negative")
	}
	if err := checkEmail("email", c.Email); err != nil {
		return err
	}
	return checkMoney("package_fee", c.PackageFee)
}

var customerPreload = []string{"CreatedBy"}

// ListCustomers returns every customer to any authenticated principal;
// object-level checks apply on retrieve and mutation.
func (s *Store) ListCustomers(ctx context.Context, principal *models.User, params filters.CustomerParams, req pagination.Request) (List[models.Customer], error) {
	if err := policy.AuthorizeKind(principal, policy.View, policy.KindCustomer); err != nil {
		return List[models.Customer]{}, err
	}
	p, err := filters.Customers(principal, params)
	if err != nil {
		return List[models.Customer]{}, err
	}
	return paginate[models.Customer](ctx, s.db, p, req, customerPreload...)
}

func (s *Store) GetCustomer(ctx context.Context, principal *models.User, id uint) (*models.Customer, error) {
	c, err := find[models.Customer](s.db.WithContext(ctx), id, customerPreload...)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(principal, policy.View, policy.Customer(c)); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCustomer stores a new active customer owned by principal.
func (s *Store) CreateCustomer(ctx context.Context, principal *models.User, in CustomerInput) (*models.Customer, error) {
	if err := policy.AuthorizeKind(principal, policy.Create, policy.KindCustomer); err != nil {
		return nil, err
	}
	c := &models.Customer{IsActive: true, PackageFee: decimal.Zero, CreatedByID: &principal.ID}
	if err := in.apply(c); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return apperr.FromDB(err, "email")
		}
		_, err := s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     c.CreatedByID,
			Action:      models.ActionCustomerCreated,
			Description: audit.CustomerCreated(c),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	c.CreatedBy = principal
	s.logger.Debug("customer created", zap.Uint("customer_id", c.ID), zap.Uint("by", principal.ID))
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, principal *models.User, id uint, in CustomerInput) (*models.Customer, error) {
	var c *models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = find[models.Customer](tx, id, customerPreload...); err != nil {
			return err
		}
		if err := policy.Authorize(principal, policy.Update, policy.Customer(c)); err != nil {
			return err
		}
		if err := in.apply(c); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return apperr.FromDB(err, "email")
		}
		_, err = s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     c.CreatedByID,
			Action:      models.ActionCustomerUpdated,
			Description: audit.CustomerUpdated(c),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer soft-deletes the customer and logs customer_deleted.
func (s *Store) DeleteCustomer(ctx context.Context, principal *models.User, id uint) (*models.Customer, error) {
	return s.transitionCustomer(ctx, principal, id, policy.Delete, statemachine.Deactivate,
		models.ActionCustomerDeleted, audit.CustomerDeleted)
}

// ReactivateCustomer restores a soft-deleted customer and logs customer_updated.
func (s *Store) ReactivateCustomer(ctx context.Context, principal *models.User, id uint) (*models.Customer, error) {
	return s.transitionCustomer(ctx, principal, id, policy.Update, statemachine.Reactivate,
		models.ActionCustomerUpdated, audit.CustomerUpdated)
}

func (s *Store) transitionCustomer(ctx context.Context, principal *models.User, id uint, action policy.Action, ev statemachine.Event, logAction models.LogAction, describe func(*models.Customer) string) (*models.Customer, error) {
	var c *models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = find[models.Customer](tx, id, customerPreload...); err != nil {
			return err
		}
		if err := policy.Authorize(principal, action, policy.Customer(c)); err != nil {
			return err
		}
		if c.IsActive, err = statemachine.Apply(c.IsActive, ev); err != nil {
			return err
		}
		if err := tx.Model(c).Update("is_active", c.IsActive).Error; err != nil {
			return err
		}
		_, err = s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     c.CreatedByID,
			Action:      logAction,
			Description: describe(c),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("customer lifecycle", zap.Uint("customer_id", id), zap.String("event", string(ev)))
	return c, nil
}
