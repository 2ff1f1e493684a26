package policy

import (
	"errors"
	"testing"

	"payment-tracker-api/apperr"
	"payment-tracker-api/models"
)

func uintPtr(v uint) *uint { return &v }

func TestAuthorize(t *testing.T) {
	admin := &models.User{ID: 1, UserType: models.UserTypeAdmin, IsStaff: true, IsSuperuser: true}
	staff := &models.User{ID: 2, UserType: models.UserTypeEmployee, IsStaff: true}
	employee := &models.User{ID: 3, UserType: models.UserTypeEmployee}
	other := &models.User{ID: 4, UserType: models.UserTypeEmployee}
	// user_type alone grants the override even without the flags.
	typedAdmin := &models.User{ID: 5, UserType: models.UserTypeAdmin}

	ownCustomer := &models.Customer{ID: 10, CreatedByID: uintPtr(employee.ID)}
	orphanCustomer := &models.Customer{ID: 11}
	adminCustomer := &models.Customer{ID: 12, CreatedByID: uintPtr(admin.ID)}

	// recorded by the employee against a customer the admin owns
	crossPayment := &models.Payment{ID: 20, Customer: *adminCustomer, CreatedByID: uintPtr(employee.ID)}
	// recorded by someone else against the employee's customer
	ownedViaCustomer := &models.Payment{ID: 21, Customer: *ownCustomer, CreatedByID: uintPtr(other.ID)}

	ownLog := &models.Log{ID: 30, UserID: employee.ID}
	otherLog := &models.Log{ID: 31, UserID: other.ID}

	cases := []struct {
		name      string
		principal *models.User
		action    Action
		resource  Resource
		want      error
	}{
		{"anonymous denied", nil, View, Customer(ownCustomer), apperr.ErrAuthenticationRequired},
		{"admin any customer", admin, Delete, Customer(orphanCustomer), nil},
		{"staff override", staff, Update, Customer(ownCustomer), nil},
		{"user_type override", typedAdmin, Update, User(employee), nil},
		{"owner updates customer", employee, Update, Customer(ownCustomer), nil},
		{"non-owner customer", other, View, Customer(ownCustomer), apperr.ErrPermissionDenied},
		{"orphan customer non-admin", employee, View, Customer(orphanCustomer), apperr.ErrPermissionDenied},
		{"payment owned via customer", employee, Update, Payment(ownedViaCustomer), nil},
		{"payment creator without customer ownership", employee, View, Payment(crossPayment), apperr.ErrPermissionDenied},
		{"self user", employee, Update, User(employee), nil},
		{"other user", employee, View, User(other), apperr.ErrPermissionDenied},
		{"non-admin cannot create user", employee, Create, User(employee), apperr.ErrPermissionDenied},
		{"own log visible", employee, View, Log(ownLog), nil},
		{"other log hidden", employee, View, Log(otherLog), apperr.ErrPermissionDenied},
		{"admin views log", admin, View, Log(otherLog), nil},
		{"log never updatable", admin, Update, Log(ownLog), apperr.ErrPermissionDenied},
		{"log never creatable", admin, Create, Log(ownLog), apperr.ErrPermissionDenied},
		{"staff cannot delete log", staff, Delete, Log(ownLog), apperr.ErrPermissionDenied},
		{"superuser deletes log", admin, Delete, Log(ownLog), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.principal, tc.action, tc.resource)
			if !errors.Is(err, tc.want) {
				t.Errorf("Authorize() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAuthorizeKind(t *testing.T) {
	admin := &models.User{ID: 1, UserType: models.UserTypeAdmin, IsStaff: true, IsSuperuser: true}
	employee := &models.User{ID: 2, UserType: models.UserTypeEmployee}

	cases := []struct {
		name      string
		principal *models.User
		action    Action
		kind      Kind
		want      error
	}{
		{"anonymous list", nil, View, KindPayment, apperr.ErrAuthenticationRequired},
		{"employee lists payments", employee, View, KindPayment, nil},
		{"employee creates customer", employee, Create, KindCustomer, nil},
		{"employee registers user", employee, Create, KindUser, apperr.ErrPermissionDenied},
		{"admin registers user", admin, Create, KindUser, nil},
		{"nobody creates logs", admin, Create, KindLog, apperr.ErrPermissionDenied},
		{"employee lists logs", employee, View, KindLog, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := AuthorizeKind(tc.principal, tc.action, tc.kind); !errors.Is(err, tc.want) {
				t.Errorf("AuthorizeKind() = %v, want %v", err, tc.want)
			}
		})
	}
}
