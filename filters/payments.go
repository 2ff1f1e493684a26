package filters

import (
	"net/url"
	"strconv"
	"strings"

	"payment-tracker-api/models"

	"gorm.io/gorm"
)

// OwnerAll is the created_by value meaning "no explicit owner".
const OwnerAll = "all"

// PaymentParams are the payment list query parameters.
type PaymentParams struct {
	CreatedBy string
	StartDate string
	EndDate   string
	Search    string
	Ordering  string
}

// PaymentParamsFrom reads PaymentParams from a query string.
func PaymentParamsFrom(q url.Values) PaymentParams {
	return PaymentParams{
		CreatedBy: strings.TrimSpace(q.Get("created_by")),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
		Search:    strings.TrimSpace(q.Get("search")),
		Ordering:  q.Get("ordering"),
	}
}

var paymentOrdering = map[string]string{
	"date":   "payments.date",
	"amount": "payments.amount",
	"id":     "payments.id",
}

// Payments builds the payment list pipeline: visibility, explicit owner,
// date range, search, then ordering (default -date).
func Payments(principal *models.User, params PaymentParams) (Pipeline, error) {
	var p Pipeline
	p.add(PaymentVisibility(principal))
	p.add(PaymentOwner(principal, params.CreatedBy))
	p.add(DateRange("payments.date", params.StartDate, params.EndDate))
	p.add(PaymentSearch(params.Search))

	order, err := ordering(params.Ordering, "-date", paymentOrdering, "payments.id")
	if err != nil {
		return Pipeline{}, err
	}
	p.order = order
	return p, nil
}

// PaymentVisibility limits non-admins to payments they recorded.
func PaymentVisibility(principal *models.User) Scope {
	if principal.IsAdmin() {
		return nil
	}
	id := principal.ID
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("payments.created_by_id = ?", id)
	}
}

// PaymentOwner applies an explicit created_by request. Admins may name any
// owner. A non-admin naming anyone but themselves gets an empty set rather
// than an error.
func PaymentOwner(principal *models.User, raw string) Scope {
	if raw == "" || raw == OwnerAll {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return none
	}
	if !principal.IsAdmin() && uint(id) != principal.ID {
		return none
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("payments.created_by_id = ?", uint(id))
	}
}

// PaymentSearch matches customer name, customer email or description,
// case-insensitively.
func PaymentSearch(term string) Scope {
	if term == "" {
		return nil
	}
	pattern := likePattern(term)
	return func(db *gorm.DB) *gorm.DB {
		customers := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Customer{}).
			Select("id").
			Where(ilike("name")+" OR "+ilike("email"), pattern, pattern)
		return db.Where(
			db.Session(&gorm.Session{NewDB: true}).
				Where("payments.customer_id IN (?)", customers).
				Or(ilike("payments.description"), pattern),
		)
	}
}
