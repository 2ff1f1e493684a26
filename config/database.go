package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payment-tracker-api/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the configured database and migrates the schema.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		dialector = sqlite.Open(sqliteDSN(cfg.DatabaseURL))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// One writer at a time, prevents SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// sqliteDSN enables foreign keys so ON DELETE rules are enforced.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_pragma=foreign_keys(1)"
	}
	return path + "?_pragma=foreign_keys(1)"
}

// Migrate auto-migrates all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Seed provisions the reserved system account and, when configured, the
// first admin. Both steps are idempotent.
func Seed(ctx context.Context, db *gorm.DB, cfg *Config, log *zap.Logger) error {
	db = db.WithContext(ctx)

	if cfg.SeedSystemAccount {
		for _, name := range uniqueNames(cfg.SystemUsername, cfg.FallbackLogUsername) {
			created, err := ensureSystemAccount(db, name)
			if err != nil {
				return err
			}
			if created {
				log.Info("seeded system account", zap.String("username", name))
			}
		}
	}

	if cfg.SeedAdminUsername == "" {
		return nil
	}
	var admins int64
	if err := db.Model(&models.User{}).Where("user_type = ?", models.UserTypeAdmin).Count(&admins).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Username:     cfg.SeedAdminUsername,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	admin.ApplyUserType(models.UserTypeAdmin)
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("seeded first admin", zap.String("username", admin.Username))
	return nil
}

// ensureSystemAccount creates an inactive account with an unusable password.
func ensureSystemAccount(db *gorm.DB, username string) (bool, error) {
	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup system account: %w", err)
	}
	account := models.User{
		Username:     username,
		PasswordHash: "!",
		UserType:     models.UserTypeEmployee,
		IsActive:     false,
	}
	if err := db.Create(&account).Error; err != nil {
		return false, fmt.Errorf("create system account: %w", err)
	}
	return true, nil
}

func uniqueNames(names ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
