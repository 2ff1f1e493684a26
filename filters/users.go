package filters

import (
	"net/url"
	"strings"

	"payment-tracker-api/models"

	"gorm.io/gorm"
)

// UserParams are the user list query parameters.
type UserParams struct {
	IsActive string
	UserType string
	Search   string
	Ordering string
}

func UserParamsFrom(q url.Values) UserParams {
	return UserParams{
		IsActive: strings.TrimSpace(q.Get("is_active")),
		UserType: strings.TrimSpace(q.Get("user_type")),
		Search:   strings.TrimSpace(q.Get("search")),
		Ordering: q.Get("ordering"),
	}
}

var userOrdering = map[string]string{
	"id":          "users.id",
	"username":    "users.username",
	"date_joined": "users.created_at",
}

// Users builds the user list pipeline. Reserved accounts are never
// listed; non-admins only see themselves.
func Users(principal *models.User, reserved []string, params UserParams) (Pipeline, error) {
	var p Pipeline
	p.add(UserVisibility(principal, reserved))
	p.add(ActiveFlag("users.is_active", params.IsActive))
	if t := models.UserType(params.UserType); t.Valid() {
		p.add(func(db *gorm.DB) *gorm.DB { return db.Where("users.user_type = ?", t) })
	}
	if params.Search != "" {
		pattern := likePattern(params.Search)
		p.add(func(db *gorm.DB) *gorm.DB {
			return db.Where(ilike("users.username")+" OR "+ilike("users.email"), pattern, pattern)
		})
	}

	order, err := ordering(params.Ordering, "id", userOrdering, "")
	if err != nil {
		return Pipeline{}, err
	}
	p.order = order
	return p, nil
}

// UserVisibility hides the reserved accounts and, for non-admins, everyone
// but the principal.
func UserVisibility(principal *models.User, reserved []string) Scope {
	admin := principal.IsAdmin()
	id := principal.ID
	return func(db *gorm.DB) *gorm.DB {
		if len(reserved) > 0 {
			db = db.Where("users.username NOT IN ?", reserved)
		}
		if !admin {
			db = db.Where("users.id = ?", id)
		}
		return db
	}
}
