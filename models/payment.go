package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CustomerID  uint            `json:"customer_id" gorm:"not null;index"`
	Customer    Customer        `json:"customer" gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date        time.Time       `json:"date" gorm:"not null;index;<-:create"`
	Description string          `json:"description" gorm:"size:255"`
	IsActive    bool            `json:"is_active" gorm:"not null"`
	CreatedByID *uint           `json:"created_by" gorm:"index"`
	CreatedBy   *User           `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
