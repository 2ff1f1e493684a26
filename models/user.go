package models

import (
	"time"
)

// UserType defines allowed account types in the system
type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeEmployee UserType = "employee"
)

// Valid reports whether t is a known account type.
func (t UserType) Valid() bool {
	return t == UserTypeAdmin || t == UserTypeEmployee
}

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName    string     `json:"first_name" gorm:"size:150"`
	LastName     string     `json:"last_name" gorm:"size:150"`
	Email        string     `json:"email" gorm:"size:254"`
	PasswordHash string     `json:"-" gorm:"not null"`
	UserType     UserType   `json:"user_type" gorm:"size:10;not null;default:'employee'"`
	IsStaff      bool       `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser  bool       `json:"is_superuser" gorm:"not null;default:false"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"date_joined"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin is the full admin override: superuser, staff or admin account type.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.IsSuperuser || u.IsStaff || u.UserType == UserTypeAdmin
}

// ApplyUserType keeps is_staff and is_superuser in step with the account type.
func (u *User) ApplyUserType(t UserType) {
	u.UserType = t
	admin := t == UserTypeAdmin
	u.IsStaff = admin
	u.IsSuperuser = admin
}
