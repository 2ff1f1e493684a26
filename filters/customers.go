package filters

import (
	"net/url"
	"strings"

	"payment-tracker-api/models"

	"gorm.io/gorm"
)

// CustomerParams are the customer list query parameters.
type CustomerParams struct {
	IsActive string
	Search   string
	Ordering string
}

func CustomerParamsFrom(q url.Values) CustomerParams {
	return CustomerParams{
		IsActive: strings.TrimSpace(q.Get("is_active")),
		Search:   strings.TrimSpace(q.Get("search")),
		Ordering: q.Get("ordering"),
	}
}

var customerOrdering = map[string]string{
	"name":       "customers.name",
	"created_at": "customers.created_at",
	"id":         "customers.id",
}

// Customers builds the customer list pipeline. Every authenticated user sees
// every customer; ownership is enforced when a single customer is changed.
func Customers(principal *models.User, params CustomerParams) (Pipeline, error) {
	var p Pipeline
	p.add(ActiveFlag("customers.is_active", params.IsActive))
	p.add(CustomerSearch(params.Search))

	order, err := ordering(params.Ordering, "-created_at", customerOrdering, "customers.id")
	if err != nil {
		return Pipeline{}, err
	}
	p.order = order
	return p, nil
}

// CustomerSearch matches name, email or phone case-insensitively.
func CustomerSearch(term string) Scope {
	if term == "" {
		return nil
	}
	pattern := likePattern(term)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			ilike("customers.name")+" OR "+ilike("customers.email")+" OR "+ilike("customers.phone"),
			pattern, pattern, pattern,
		)
	}
}
