package store

import (
	"context"
	"strings"
	"time"

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

// maxMoney is the exclusive bound of a decimal(10,2) column.
var maxMoney = decimal.New(1, 8)

func checkMoney(field string, d decimal.Decimal) error {
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return apperr.Validation(field, "ensure that there are no more than 2 decimal places")
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return apperr.Validation(field, "ensure that there are no more than 10 digits in total")
	}
	return nil
}

// PaymentInput carries writable payment fields. Nil fields are left
// unchanged on update. The payment date is set on creation only.
type PaymentInput struct {
	CustomerID  *uint
	Amount      *decimal.Decimal
	Description *string
}

var paymentPreload = []string{"Customer", "Customer.CreatedBy", "CreatedBy"}

func (s *Store) applyPayment(tx *gorm.DB, in PaymentInput, p *models.Payment) error {
	if in.CustomerID != nil && *in.CustomerID != p.CustomerID {
		c, err := find[models.Customer](tx, *in.CustomerID, customerPreload...)
		if err != nil {
			return apperr.Validation("customer_id", "invalid pk %d - object does not exist", *in.CustomerID)
		}
		if !c.IsActive {
			return apperr.Validation("customer_id", "customer %d is inactive", c.ID)
		}
		p.CustomerID = c.ID
		p.Customer = *c
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}

	if p.CustomerID == 0 {
		return apperr.Validation("customer_id", "this field is required")
	}
	if !p.Amount.IsPositive() {
		return apperr.Validation("amount", "must be greater than zero")
	}
	return checkMoney("amount", p.Amount)
}

// ListPayments applies visibility, owner, date range, search and ordering.
func (s *Store) ListPayments(ctx context.Context, principal *models.User, params filters.PaymentParams, req pagination.Request) (List[models.Payment], error) {
	if err := policy.AuthorizeKind(principal, policy.View, policy.KindPayment); err != nil {
		return List[models.Payment]{}, err
	}
	p, err := filters.Payments(principal, params)
	if err != nil {
		return List[models.Payment]{}, err
	}
	return paginate[models.Payment](ctx, s.db, p, req, paymentPreload...)
}

// GetPayment resolves a payment by id. Access follows the customer's
// owner, so a non-admin may list a payment they cannot open.
func (s *Store) GetPayment(ctx context.Context, principal *models.User, id uint) (*models.Payment, error) {
	p, err := find[models.Payment](s.db.WithContext(ctx), id, paymentPreload...)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(principal, policy.View, policy.Payment(p)); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePayment records a payment dated now on behalf of principal.
func (s *Store) CreatePayment(ctx context.Context, principal *models.User, in PaymentInput) (*models.Payment, error) {
	if err := policy.AuthorizeKind(principal, policy.Create, policy.KindPayment); err != nil {
		return nil, err
	}
	return s.createPayment(ctx, principal, in)
}

// RecordSystemPayment is the internal entry point for payments that have
// no acting principal. The payment is stored without a creator and its
// audit entry goes to the customer's owner, or to the fallback account
// when the customer has none.
func (s *Store) RecordSystemPayment(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	return s.createPayment(ctx, nil, in)
}

func (s *Store) createPayment(ctx context.Context, principal *models.User, in PaymentInput) (*models.Payment, error) {
	p := &models.Payment{IsActive: true, Date: time.Now().UTC()}
	if principal != nil {
		p.CreatedByID = &principal.ID
		p.CreatedBy = principal
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applyPayment(tx, in, p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return apperr.FromDB(err, "id")
		}
		_, err := s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     p.CreatedByID,
			Action:      models.ActionPaymentCreated,
			Description: audit.PaymentCreated(p),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("payment created",
		zap.Uint("payment_id", p.ID),
		zap.Uint("customer_id", p.CustomerID),
		zap.String("amount", p.Amount.StringFixed(2)),
	)
	return p, nil
}

func (s *Store) UpdatePayment(ctx context.Context, principal *models.User, id uint, in PaymentInput) (*models.Payment, error) {
	var p *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = find[models.Payment](tx, id, paymentPreload...); err != nil {
			return err
		}
		if err := policy.Authorize(principal, policy.Update, policy.Payment(p)); err != nil {
			return err
		}
		if err := s.applyPayment(tx, in, p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return apperr.FromDB(err, "id")
		}
		_, err = s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     p.CreatedByID,
			Action:      models.ActionPaymentUpdated,
			Description: audit.PaymentUpdated(p),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePayment soft-deletes the payment; it stays retrievable by id.
func (s *Store) DeletePayment(ctx context.Context, principal *models.User, id uint) (*models.Payment, error) {
	var p *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = find[models.Payment](tx, id, paymentPreload...); err != nil {
			return err
		}
		if err := policy.Authorize(principal, policy.Delete, policy.Payment(p)); err != nil {
			return err
		}
		if p.IsActive, err = statemachine.Apply(p.IsActive, statemachine.Deactivate); err != nil {
			return err
		}
		if err := tx.Model(p).Update("is_active", false).Error; err != nil {
			return err
		}
		_, err = s.audit.Record(tx, audit.Event{
			Actor:       principal,
			OwnerID:     p.CreatedByID,
			Action:      models.ActionPaymentDeleted,
			Description: audit.PaymentDeleted(p),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("payment deleted", zap.Uint("payment_id", id))
	return p, nil
}

// MonthTotal is the amount received in one calendar month.
type MonthTotal struct {
	Month  string
	Amount decimal.Decimal
}

// PaymentStats summarises the active payments in a filtered set.
type PaymentStats struct {
	TotalPayments int64
	TotalAmount   decimal.Decimal
	Monthly       []MonthTotal
}

// Stats aggregates the active payments visible to principal under the
// same filters as ListPayments. Months are ascending.
func (s *Store) Stats(ctx context.Context, principal *models.User, params filters.PaymentParams) (PaymentStats, error) {
	if err := policy.AuthorizeKind(principal, policy.View, policy.KindPayment); err != nil {
		return PaymentStats{}, err
	}
	params.Ordering = ""
	p, err := filters.Payments(principal, params)
	if err != nil {
		return PaymentStats{}, err
	}

	var rows []struct {
		Date   time.Time
		Amount decimal.Decimal
	}
	q := p.Filter(s.db.WithContext(ctx).Model(&models.Payment{})).
		Where("payments.is_active = ?", true).
		Select("payments.date", "payments.amount").
		Order("payments.date")
	if err := q.Scan(&rows).Error; err != nil {
		return PaymentStats{}, err
	}

	stats := PaymentStats{TotalAmount: decimal.Zero, Monthly: []MonthTotal{}}
	for _, r := range rows {
		stats.TotalPayments++
		stats.TotalAmount = stats.TotalAmount.Add(r.Amount)
		month := r.Date.UTC().Format("2006-01")
		if n := len(stats.Monthly); n > 0 && stats.Monthly[n-1].Month == month {
			stats.Monthly[n-1].Amount = stats.Monthly[n-1].Amount.Add(r.Amount)
			continue
		}
		stats.Monthly = append(stats.Monthly, MonthTotal{Month: month, Amount: r.Amount})
	}
	return stats, nil
}
