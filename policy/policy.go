// Package policy decides whether a principal may view or mutate an entity.
//
// Rules are evaluated in a fixed order: an unauthenticated principal is
// denied everything, audit logs have their own rules, admins may do
// anything to customers, payments and users, and everyone else is held to
// the ownership accessor declared by the resource kind.
package policy

import (
	"payment-tracker-api/apperr"
	"payment-tracker-api/models"
)

// Action is an operation a principal attempts.
type Action string

const (
	View   Action = "view"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

// Kind enumerates the entity kinds under access control.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindPayment  Kind = "payment"
	KindUser     Kind = "user"
	KindLog      Kind = "log"
)

// Resource is a resolved entity. Each kind declares which user owns it for
// the purpose of object-level checks.
type Resource interface {
	Kind() Kind
	OwnedBy(userID uint) bool
}

type customerResource struct{ c *models.Customer }

func (r customerResource) Kind() Kind { return KindCustomer }

func (r customerResource) OwnedBy(userID uint) bool { return r.c.OwnedBy(userID) }

// paymentResource owns through the customer's creator, not the payment's.
// List visibility uses payment.created_by instead; see filters.PaymentVisibility.
type paymentResource struct{ p *models.Payment }

func (r paymentResource) Kind() Kind { return KindPayment }

func (r paymentResource) OwnedBy(userID uint) bool { return r.p.Customer.OwnedBy(userID) }

type userResource struct{ u *models.User }

func (r userResource) Kind() Kind { return KindUser }

func (r userResource) OwnedBy(userID uint) bool { return r.u.ID == userID }

type logResource struct{ l *models.Log }

func (r logResource) Kind() Kind { return KindLog }

func (r logResource) OwnedBy(userID uint) bool { return r.l.UserID == userID }

// Customer wraps c. Its owner is customer.created_by.
func Customer(c *models.Customer) Resource { return customerResource{c} }

// Payment wraps p. p.Customer must be loaded.
func Payment(p *models.Payment) Resource { return paymentResource{p} }

// User wraps u. A user owns itself.
func User(u *models.User) Resource { return userResource{u} }

// Log wraps l. Its owner is the attributed user.
func Log(l *models.Log) Resource { return logResource{l} }

// Authorize returns nil when principal may perform action on r, otherwise
// apperr.ErrAuthenticationRequired or apperr.ErrPermissionDenied.
func Authorize(principal *models.User, action Action, r Resource) error {
	if principal == nil {
		return apperr.ErrAuthenticationRequired
	}
	if r.Kind() == KindLog {
		return authorizeLog(principal, action, r)
	}
	if principal.IsAdmin() {
		return nil
	}
	if r.Kind() == KindUser && action == Create {
		return apperr.ErrPermissionDenied
	}
	if r.OwnedBy(principal.ID) {
		return nil
	}
	return apperr.ErrPermissionDenied
}

func authorizeLog(principal *models.User, action Action, r Resource) error {
	switch action {
	case View:
		if principal.IsAdmin() {
			return nil
		}
		if r.OwnedBy(principal.ID) {
			return nil
		}
	case Delete:
		if principal.IsSuperuser {
			return nil
		}
	}
	return apperr.ErrPermissionDenied
}

// AuthorizeKind is the class-level check used before an object exists:
// listing and creation.
func AuthorizeKind(principal *models.User, action Action, kind Kind) error {
	if principal == nil {
		return apperr.ErrAuthenticationRequired
	}
	switch {
	case action == View:
		return nil
	case kind == KindLog:
		if action == Delete && principal.IsSuperuser {
			return nil
		}
		return apperr.ErrPermissionDenied
	case kind == KindUser && action == Create:
		if principal.IsAdmin() {
			return nil
		}
		return apperr.ErrPermissionDenied
	}
	return nil
}
