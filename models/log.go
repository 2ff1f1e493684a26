package models

import "time"

// LogAction is one of the audit event kinds
type LogAction string

const (
	ActionUserCreated     LogAction = "user_created"
	ActionUserUpdated     LogAction = "user_updated"
	ActionUserDeleted     LogAction = "user_deleted"
	ActionUserLogin       LogAction = "user_login"
	ActionUserLogout      LogAction = "user_logout"
	ActionCustomerCreated LogAction = "customer_created"
	ActionCustomerUpdated LogAction = "customer_updated"
	ActionCustomerDeleted LogAction = "customer_deleted"
	ActionPaymentCreated  LogAction = "payment_created"
	ActionPaymentUpdated  LogAction = "payment_updated"
	ActionPaymentDeleted  LogAction = "payment_deleted"
)

var actionDisplay = map[LogAction]string{
	ActionUserCreated:     "User Created",
	ActionUserUpdated:     "User Updated",
	ActionUserDeleted:     "User Deleted",
	ActionUserLogin:       "User Login",
	ActionUserLogout:      "User Logout",
	ActionCustomerCreated: "Customer Created",
	ActionCustomerUpdated: "Customer Updated",
	ActionCustomerDeleted: "Customer Deleted",
	ActionPaymentCreated:  "Payment Created",
	ActionPaymentUpdated:  "Payment Updated",
	ActionPaymentDeleted:  "Payment Deleted",
}

// Valid reports whether a is part of the audit vocabulary.
func (a LogAction) Valid() bool {
	_, ok := actionDisplay[a]
	return ok
}

// Display returns the human readable label for the action.
func (a LogAction) Display() string {
	return actionDisplay[a]
}

// Log is an append-only audit record; rows are never updated.
type Log struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user" gorm:"not null;index"`
	User        User      `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Action      LogAction `json:"action" gorm:"size:20;not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index;<-:create"`
}

// All returns every model managed by AutoMigrate, parents first.
func All() []any {
	return []any{&User{}, &Customer{}, &Payment{}, &Log{}}
}
