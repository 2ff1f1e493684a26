// Package audit appends Log rows for entity mutations. Callers pass the
// transaction that performed the mutation so the entity write and its log
// entry commit or roll back together.
package audit

import (
	"errors"
	"fmt"

	"payment-tracker-api/apperr"
	"payment-tracker-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event describes one mutation to be recorded.
type Event struct {
	// Actor is the authenticated principal, if any.
	Actor *models.User
	// OwnerID is the entity's created_by, used when there is no actor.
	OwnerID     *uint
	Action      models.LogAction
	Description string
}

// Recorder writes audit logs. When an event has neither an actor nor an
// owner the entry is attributed to the fallback account.
type Recorder struct {
	fallbackUsername string
	logger           *zap.Logger
}

func NewRecorder(fallbackUsername string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{fallbackUsername: fallbackUsername, logger: logger}
}

// FallbackUsername is the account unattributed events are logged against.
func (r *Recorder) FallbackUsername() string { return r.fallbackUsername }

// Record inserts exactly one Log row using tx.
func (r *Recorder) Record(tx *gorm.DB, ev Event) (*models.Log, error) {
	if !ev.Action.Valid() {
		return nil, fmt.Errorf("audit: unknown action %q", ev.Action)
	}

	userID, err := r.attribute(tx, ev)
	if err != nil {
		return nil, err
	}

	entry := &models.Log{
		UserID:      userID,
		Action:      ev.Action,
		Description: ev.Description,
	}
	if err := tx.Omit("User").Create(entry).Error; err != nil {
		return nil, fmt.Errorf("audit: write %s log: %w", ev.Action, err)
	}
	r.logger.Debug("audit log recorded",
		zap.String("action", string(ev.Action)),
		zap.Uint("user_id", userID),
	)
	return entry, nil
}

func (r *Recorder) attribute(tx *gorm.DB, ev Event) (uint, error) {
	if ev.Actor != nil && ev.Actor.ID != 0 {
		return ev.Actor.ID, nil
	}
	if ev.OwnerID != nil {
		return *ev.OwnerID, nil
	}

	var fallback models.User
	err := tx.Select("id").Where("username = ?", r.fallbackUsername).Take(&fallback).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Error("fallback audit account is not provisioned",
			zap.String("username", r.fallbackUsername),
			zap.String("action", string(ev.Action)),
		)
		return 0, fmt.Errorf("audit: %q: %w", r.fallbackUsername, apperr.ErrSystemAccountMissing)
	}
	if err != nil {
		return 0, fmt.Errorf("audit: look up fallback account: %w", err)
	}
	return fallback.ID, nil
}
