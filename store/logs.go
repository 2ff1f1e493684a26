package store

import (
	"context"

	"payment-tracker-api/filters"
	"payment-tracker-api/models"
	"payment-tracker-api/pagination"
	"payment-tracker-api/policy"
)

// ListLogs returns audit entries; non-admins see only their own.
func (s *Store) ListLogs(ctx context.Context, principal *models.User, params filters.LogParams, req pagination.Request) (List[models.Log], error) {
	if err := policy.AuthorizeKind(principal, policy.View, policy.KindLog); err != nil {
		return List[models.Log]{}, err
	}
	p, err := filters.Logs(principal, params)
	if err != nil {
		return List[models.Log]{}, err
	}
	return paginate[models.Log](ctx, s.db, p, req, "User")
}
