package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Email       string          `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Phone       string          `json:"phone" gorm:"size:20"`
	Address     string          `json:"address" gorm:"type:text"`
	PackageFee  decimal.Decimal `json:"package_fee" gorm:"type:decimal(10,2);not null;default:0"`
	IsActive    bool            `json:"is_active" gorm:"not null"`
	CreatedByID *uint           `json:"created_by" gorm:"index"`
	CreatedBy   *User           `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime;<-:create"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OwnedBy reports whether userID is the customer's creator.
func (c *Customer) OwnedBy(userID uint) bool {
	return c.CreatedByID != nil && *c.CreatedByID == userID
}
