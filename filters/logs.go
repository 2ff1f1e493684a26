package filters

import (
	"net/url"
	"strings"

	"payment-tracker-api/models"

	"gorm.io/gorm"
)

// LogParams are the audit log list query parameters.
type LogParams struct {
	Action   string
	Search   string
	Ordering string
}

func LogParamsFrom(q url.Values) LogParams {
	return LogParams{
		Action:   strings.TrimSpace(q.Get("action")),
		Search:   strings.TrimSpace(q.Get("search")),
		Ordering: q.Get("ordering"),
	}
}

var logOrdering = map[string]string{
	"created_at":     "logs.created_at",
	"action":         "logs.action",
	"user__username": "(SELECT users.username FROM users WHERE users.id = logs.user_id)",
	"id":             "logs.id",
}

// Logs builds the audit log list pipeline.
func Logs(principal *models.User, params LogParams) (Pipeline, error) {
	var p Pipeline
	p.add(LogVisibility(principal))
	if params.Action != "" {
		action := models.LogAction(params.Action)
		p.add(func(db *gorm.DB) *gorm.DB { return db.Where("logs.action = ?", action) })
	}
	p.add(LogSearch(params.Search))

	order, err := ordering(params.Ordering, "-created_at", logOrdering, "logs.id")
	if err != nil {
		return Pipeline{}, err
	}
	p.order = order
	return p, nil
}

// LogVisibility limits non-admins to entries attributed to them.
func LogVisibility(principal *models.User) Scope {
	if principal.IsAdmin() {
		return nil
	}
	id := principal.ID
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("logs.user_id = ?", id)
	}
}

// LogSearch matches username, action or description.
func LogSearch(term string) Scope {
	if term == "" {
		return nil
	}
	pattern := likePattern(term)
	return func(db *gorm.DB) *gorm.DB {
		users := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.User{}).
			Select("id").
			Where(ilike("username"), pattern)
		return db.Where(
			db.Session(&gorm.Session{NewDB: true}).
				Where("logs.user_id IN (?)", users).
				Or(ilike("logs.action"), pattern).
				Or(ilike("logs.description"), pattern),
		)
	}
}
