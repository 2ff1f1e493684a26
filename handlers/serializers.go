package handlers

import (
	"time"

	"payment-tracker-api/models"
	"payment-tracker-api/store"
)

type UserResponse struct {
	ID          uint            `json:"id"`
	Username    string          `json:"username"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	UserType    models.UserType `json:"user_type"`
	IsStaff     bool            `json:"is_staff"`
	IsSuperuser bool            `json:"is_superuser"`
	IsActive    bool            `json:"is_active"`
	LastLogin   *time.Time      `json:"last_login"`
	DateJoined  time.Time       `json:"date_joined"`
}

func serializeUser(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		UserType:    u.UserType,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		DateJoined:  u.CreatedAt,
	}
}

// creatorFields flattens the optional creator into username and type.
type creatorFields struct {
	CreatedBy         *uint            `json:"created_by"`
	CreatedByUsername *string          `json:"created_by_username"`
	CreatedByUserType *models.UserType `json:"created_by_user_type"`
}

func creator(id *uint, u *models.User) creatorFields {
	f := creatorFields{CreatedBy: id}
	if u != nil {
		f.CreatedByUsername = &u.Username
		f.CreatedByUserType = &u.UserType
	}
	return f
}

type CustomerResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	PackageFee string    `json:"package_fee"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	creatorFields
}

func serializeCustomer(c *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		PackageFee:    c.PackageFee.StringFixed(2),
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		creatorFields: creator(c.CreatedByID, c.CreatedBy),
	}
}

type PaymentResponse struct {
	ID          uint             `json:"id"`
	Customer    CustomerResponse `json:"customer"`
	CustomerID  uint             `json:"customer_id"`
	Amount      string           `json:"amount"`
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	IsActive    bool             `json:"is_active"`
	creatorFields
}

func serializePayment(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		Customer:      serializeCustomer(&p.Customer),
		CustomerID:    p.CustomerID,
		Amount:        p.Amount.StringFixed(2),
		Date:          p.Date,
		Description:   p.Description,
		IsActive:      p.IsActive,
		creatorFields: creator(p.CreatedByID, p.CreatedBy),
	}
}

type LogResponse struct {
	ID            uint             `json:"id"`
	User          uint             `json:"user"`
	UserUsername  string           `json:"user_username"`
	Action        models.LogAction `json:"action"`
	ActionDisplay string           `json:"action_display"`
	Description   string           `json:"description"`
	CreatedAt     time.Time        `json:"created_at"`
}

func serializeLog(l *models.Log) LogResponse {
	return LogResponse{
		ID:            l.ID,
		User:          l.UserID,
		UserUsername:  l.User.Username,
		Action:        l.Action,
		ActionDisplay: l.Action.Display(),
		Description:   l.Description,
		CreatedAt:     l.CreatedAt,
	}
}

type MonthTotalResponse struct {
	Month  string `json:"month"`
	Amount string `json:"amount"`
}

type StatsResponse struct {
	TotalPayments int64                `json:"total_payments"`
	TotalAmount   string               `json:"total_amount"`
	Monthly       []MonthTotalResponse `json:"monthly"`
}

func serializeStats(s store.PaymentStats) StatsResponse {
	out := StatsResponse{
		TotalPayments: s.TotalPayments,
		TotalAmount:   s.TotalAmount.StringFixed(2),
		Monthly:       make([]MonthTotalResponse, len(s.Monthly)),
	}
	for i, m := range s.Monthly {
		out.Monthly[i] = MonthTotalResponse{Month: m.Month, Amount: m.Amount.StringFixed(2)}
	}
	return out
}
