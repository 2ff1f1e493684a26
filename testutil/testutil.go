// Package testutil provides isolated databases and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"payment-tracker-api/config"
	"payment-tracker-api/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SystemUsername is the reserved account name used by tests.
const SystemUsername = "system"

var dbSeq atomic.Int64

// NewDB opens a migrated, private in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts an active user of the given type.
func CreateUser(t *testing.T, db *gorm.DB, username string, userType models.UserType) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "!",
		IsActive:     true,
	}
	u.ApplyUserType(userType)
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateSystemUser inserts the inactive reserved account.
func CreateSystemUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Username: SystemUsername, PasswordHash: "!", UserType: models.UserTypeEmployee}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create system user: %v", err)
	}
	return u
}

// CreateCustomer inserts an active customer owned by owner (may be nil).
func CreateCustomer(t *testing.T, db *gorm.DB, name, email string, owner *models.User) *models.Customer {
	t.Helper()
	c := &models.Customer{Name: name, Email: email, IsActive: true, PackageFee: decimal.Zero}
	if owner != nil {
		c.CreatedByID = &owner.ID
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}

// CreatePayment inserts an active payment dated at, recorded by creator (may be nil).
func CreatePayment(t *testing.T, db *gorm.DB, customer *models.Customer, amount string, description string, creator *models.User, at time.Time) *models.Payment {
	t.Helper()
	p := &models.Payment{
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString(amount),
		Date:        at.UTC(),
		Description: description,
		IsActive:    true,
	}
	if creator != nil {
		p.CreatedByID = &creator.ID
	}
	if err := db.Omit("Customer", "CreatedBy").Create(p).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}
	p.Customer = *customer
	return p
}

// CountLogs counts audit rows with the given action.
func CountLogs(t *testing.T, db *gorm.DB, action models.LogAction) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Log{}).Where("action = ?", action).Count(&n).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	return n
}
