package config

import (
	"context"
	"path/filepath"
	"testing"

	"payment-tracker-api/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "seed.db")
	cfg.SystemUsername = "system"
	cfg.FallbackLogUsername = "audit-bot"
	cfg.SeedSystemAccount = true
	cfg.SeedAdminUsername = "root"
	cfg.SeedAdminPassword = "rootpassword"

	db, err := OpenDB(&cfg)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	ctx := context.Background()

	// Running twice must not duplicate anything.
	for i := 0; i < 2; i++ {
		if err := Seed(ctx, db, &cfg, zap.NewNop()); err != nil {
			t.Fatalf("Seed #%d: %v", i+1, err)
		}
	}

	var users []models.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users, want 3", len(users))
	}

	byName := map[string]models.User{}
	for _, u := range users {
		byName[u.Username] = u
	}
	for _, name := range []string{"system", "audit-bot"} {
		u, ok := byName[name]
		if !ok {
			t.Fatalf("system account %q missing", name)
		}
		if u.IsActive || u.UserType != models.UserTypeEmployee {
			t.Errorf("%s: active=%v type=%s, want inactive employee", name, u.IsActive, u.UserType)
		}
	}

	root := byName["root"]
	if root.UserType != models.UserTypeAdmin || !root.IsStaff || !root.IsSuperuser || !root.IsActive {
		t.Errorf("admin not seeded as active admin: %+v", root)
	}
	if bcrypt.CompareHashAndPassword([]byte(root.PasswordHash), []byte("rootpassword")) != nil {
		t.Error("admin password hash does not match")
	}

	var logs int64
	db.Model(&models.Log{}).Count(&logs)
	if logs != 0 {
		t.Errorf("seeding wrote %d log rows, want 0", logs)
	}
}

func TestSeedSkipsAdminWhenOneExists(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "seed.db")
	db, err := OpenDB(&cfg)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}

	existing := models.User{Username: "boss", PasswordHash: "x", IsActive: true}
	existing.ApplyUserType(models.UserTypeAdmin)
	if err := db.Create(&existing).Error; err != nil {
		t.Fatal(err)
	}

	cfg.SeedAdminUsername = "root"
	cfg.SeedAdminPassword = "rootpassword"
	if err := Seed(context.Background(), db, &cfg, zap.NewNop()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	var n int64
	db.Model(&models.User{}).Where("username = ?", "root").Count(&n)
	if n != 0 {
		t.Error("seeded a second admin")
	}
}
