package filters

import (
	"net/url"
	"slices"
	"strconv"
	"testing"
	"time"

	"payment-tracker-api/apperr"
	"payment-tracker-api/models"
	"payment-tracker-api/testutil"

	"gorm.io/gorm"
)

type paymentFixture struct {
	db       *gorm.DB
	admin    *models.User
	employee *models.User
	other    *models.User
	acme     *models.Customer
	globex   *models.Customer
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &paymentFixture{db: db}
	f.admin = testutil.CreateUser(t, db, "admin", models.UserTypeAdmin)
	f.employee = testutil.CreateUser(t, db, "emp", models.UserTypeEmployee)
	f.other = testutil.CreateUser(t, db, "other", models.UserTypeEmployee)
	f.acme = testutil.CreateCustomer(t, db, "Acme Co", "billing@acme.com", f.admin)
	f.globex = testutil.CreateCustomer(t, db, "Globex", "ap@globex.io", f.other)

	day := func(d int, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }
	testutil.CreatePayment(t, db, f.acme, "500.00", "March retainer", f.employee, day(1, 9))
	testutil.CreatePayment(t, db, f.globex, "120.50", "setup fee", f.employee, day(5, 23))
	testutil.CreatePayment(t, db, f.globex, "75.00", "ACME referral bonus", f.other, day(10, 12))
	testutil.CreatePayment(t, db, f.acme, "42.00", "misc", f.admin, day(20, 0))
	return f
}

func listPayments(t *testing.T, db *gorm.DB, principal *models.User, q url.Values) []models.Payment {
	t.Helper()
	p, err := Payments(principal, PaymentParamsFrom(q))
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}
	var out []models.Payment
	if err := p.Apply(db.Model(&models.Payment{})).Preload("Customer").Find(&out).Error; err != nil {
		t.Fatalf("query payments: %v", err)
	}
	return out
}

func amounts(ps []models.Payment) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Amount.StringFixed(2)
	}
	return out
}

func TestPaymentVisibility(t *testing.T) {
	f := newPaymentFixture(t)

	got := listPayments(t, f.db, f.employee, url.Values{})
	if len(got) != 2 {
		t.Fatalf("employee sees %v, want 2 payments", amounts(got))
	}
	for _, p := range got {
		if p.CreatedByID == nil || *p.CreatedByID != f.employee.ID {
			t.Errorf("employee sees payment %d recorded by someone else", p.ID)
		}
	}

	if got := listPayments(t, f.db, f.admin, url.Values{}); len(got) != 4 {
		t.Errorf("admin sees %d payments, want 4", len(got))
	}
}

func TestPaymentOwnerFilter(t *testing.T) {
	f := newPaymentFixture(t)
	id := func(u *models.User) string { return strconv.FormatUint(uint64(u.ID), 10) }

	cases := []struct {
		name      string
		principal *models.User
		createdBy string
		extra     url.Values
		want      int
	}{
		{"admin filters by employee", f.admin, id(f.employee), nil, 2},
		{"admin filters by other", f.admin, id(f.other), nil, 1},
		{"admin all is a no-op", f.admin, OwnerAll, nil, 4},
		{"employee own id", f.employee, id(f.employee), nil, 2},
		{"employee all is a no-op", f.employee, OwnerAll, nil, 2},
		{"employee peeking is empty", f.employee, id(f.other), nil, 0},
		{"peeking stays empty with search", f.employee, id(f.admin), url.Values{"search": {"acme"}}, 0},
		{"garbage id is empty", f.admin, "abc", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := url.Values{"created_by": {tc.createdBy}}
			for k, v := range tc.extra {
				q[k] = v
			}
			if got := listPayments(t, f.db, tc.principal, q); len(got) != tc.want {
				t.Errorf("got %v, want %d payments", amounts(got), tc.want)
			}
		})
	}
}

func TestPaymentDateRange(t *testing.T) {
	f := newPaymentFixture(t)

	cases := []struct {
		name       string
		start, end string
		want       int
	}{
		{"inclusive of end day's last hour", "2024-03-01", "2024-03-05", 2},
		{"single day", "2024-03-20", "2024-03-20", 1},
		{"empty range", "2024-04-01", "2024-04-30", 0},
		{"malformed start ignored", "03/01/2024", "2024-03-05", 4},
		{"malformed end ignored", "2024-03-01", "soon", 4},
		{"only start ignored", "2024-03-01", "", 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := url.Values{"start_date": {tc.start}, "end_date": {tc.end}}
			got := listPayments(t, f.db, f.admin, q)
			if len(got) != tc.want {
				t.Fatalf("got %v, want %d payments", amounts(got), tc.want)
			}
			if tc.want == 0 || tc.want == 4 {
				return
			}
			from, _ := time.Parse(dateLayout, tc.start)
			to, _ := time.Parse(dateLayout, tc.end)
			to = to.Add(24*time.Hour - time.Microsecond)
			for _, p := range got {
				if p.Date.Before(from) || p.Date.After(to) {
					t.Errorf("payment dated %v outside [%v, %v]", p.Date, from, to)
				}
			}
		})
	}
}

func TestPaymentSearch(t *testing.T) {
	f := newPaymentFixture(t)

	cases := []struct {
		term string
		want []string
	}{
		// customer name, or description
		{"acme", []string{"42.00", "75.00", "500.00"}},
		{"GLOBEX.IO", []string{"75.00", "120.50"}},
		{"setup", []string{"120.50"}},
		{"nothing matches", []string{}},
		{"100%", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			got := amounts(listPayments(t, f.db, f.admin, url.Values{"search": {tc.term}, "ordering": {"amount"}}))
			if len(got) != len(tc.want) {
				t.Fatalf("search %q got %v, want %v", tc.term, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("search %q got %v, want %v", tc.term, got, tc.want)
					break
				}
			}
		})
	}
}

func TestPaymentOrdering(t *testing.T) {
	f := newPaymentFixture(t)

	got := amounts(listPayments(t, f.db, f.admin, url.Values{}))
	want := []string{"42.00", "75.00", "120.50", "500.00"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("default ordering got %v, want %v (newest first)", got, want)
		}
	}

	got = amounts(listPayments(t, f.db, f.admin, url.Values{"ordering": {"-amount"}}))
	if got[0] != "500.00" || got[3] != "42.00" {
		t.Errorf("-amount ordering got %v", got)
	}

	_, err := Payments(f.admin, PaymentParams{Ordering: "customer__secret"})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error for unknown ordering, got %v", err)
	}
}

func TestCustomersPipeline(t *testing.T) {
	db := testutil.NewDB(t)
	employee := testutil.CreateUser(t, db, "emp", models.UserTypeEmployee)
	other := testutil.CreateUser(t, db, "other", models.UserTypeEmployee)
	testutil.CreateCustomer(t, db, "Acme Co", "a@acme.com", other)
	inactive := testutil.CreateCustomer(t, db, "Initech", "pay@initech.com", employee)
	if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}

	run := func(q url.Values) []models.Customer {
		p, err := Customers(employee, CustomerParamsFrom(q))
		if err != nil {
			t.Fatalf("build pipeline: %v", err)
		}
		var out []models.Customer
		if err := p.Apply(db.Model(&models.Customer{})).Find(&out).Error; err != nil {
			t.Fatal(err)
		}
		return out
	}

	if got := run(url.Values{}); len(got) != 2 {
		t.Errorf("non-admin should list every customer, got %d", len(got))
	}
	if got := run(url.Values{"is_active": {"false"}}); len(got) != 1 || got[0].ID != inactive.ID {
		t.Errorf("is_active=false got %+v", got)
	}
	if got := run(url.Values{"is_active": {"maybe"}}); len(got) != 2 {
		t.Errorf("malformed is_active should be ignored, got %d", len(got))
	}
	if got := run(url.Values{"search": {"INITECH"}}); len(got) != 1 {
		t.Errorf("search got %d customers, want 1", len(got))
	}
	if got := run(url.Values{"ordering": {"name"}}); got[0].Name != "Acme Co" {
		t.Errorf("ordering=name got %s first", got[0].Name)
	}
	if _, err := Customers(employee, CustomerParams{Ordering: "-package_fee"}); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUsersPipeline(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "admin", models.UserTypeAdmin)
	employee := testutil.CreateUser(t, db, "emp", models.UserTypeEmployee)
	testutil.CreateUser(t, db, "other", models.UserTypeEmployee)
	testutil.CreateSystemUser(t, db)
	testutil.CreateUser(t, db, "audit-bot", models.UserTypeEmployee)
	reserved := []string{testutil.SystemUsername, "audit-bot"}

	run := func(principal *models.User, q url.Values) []models.User {
		p, err := Users(principal, reserved, UserParamsFrom(q))
		if err != nil {
			t.Fatalf("build pipeline: %v", err)
		}
		var out []models.User
		if err := p.Apply(db.Model(&models.User{})).Find(&out).Error; err != nil {
			t.Fatal(err)
		}
		return out
	}

	got := run(admin, url.Values{})
	if len(got) != 3 {
		t.Fatalf("admin sees %d users, want 3", len(got))
	}
	for _, u := range got {
		if slices.Contains(reserved, u.Username) {
			t.Errorf("reserved account %q listed", u.Username)
		}
	}

	got = run(employee, url.Values{})
	if len(got) != 1 || got[0].ID != employee.ID {
		t.Errorf("employee should only see self, got %+v", got)
	}

	if got := run(admin, url.Values{"user_type": {"admin"}}); len(got) != 1 {
		t.Errorf("user_type=admin got %d users", len(got))
	}
}

func TestLogsPipeline(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "admin", models.UserTypeAdmin)
	employee := testutil.CreateUser(t, db, "emp", models.UserTypeEmployee)
	logs := []models.Log{
		{UserID: admin.ID, Action: models.ActionUserCreated, Description: `User "emp" was created`},
		{UserID: employee.ID, Action: models.ActionCustomerCreated, Description: `Customer "Acme Co" (a@acme.com) was created`},
		{UserID: employee.ID, Action: models.ActionUserLogin, Description: `User "emp" logged in`},
	}
	if err := db.Create(&logs).Error; err != nil {
		t.Fatal(err)
	}

	run := func(principal *models.User, q url.Values) []models.Log {
		p, err := Logs(principal, LogParamsFrom(q))
		if err != nil {
			t.Fatalf("build pipeline: %v", err)
		}
		var out []models.Log
		if err := p.Apply(db.Model(&models.Log{})).Find(&out).Error; err != nil {
			t.Fatal(err)
		}
		return out
	}

	if got := run(employee, url.Values{}); len(got) != 2 {
		t.Errorf("employee sees %d logs, want own 2", len(got))
	}
	if got := run(admin, url.Values{}); len(got) != 3 {
		t.Errorf("admin sees %d logs, want 3", len(got))
	}
	if got := run(admin, url.Values{"search": {"ADMIN"}}); len(got) != 1 {
		t.Errorf("search by username got %d logs, want 1", len(got))
	}
	if got := run(admin, url.Values{"action": {"user_login"}}); len(got) != 1 {
		t.Errorf("action filter got %d logs, want 1", len(got))
	}
	got := run(admin, url.Values{"ordering": {"user__username"}})
	if got[0].UserID != admin.ID {
		t.Errorf("ordering by username should put admin first, got user %d", got[0].UserID)
	}
}

func TestPipelineStageCount(t *testing.T) {
	employee := &models.User{ID: 7}
	p, err := Payments(employee, PaymentParams{
		CreatedBy: "7",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Search:    "acme",
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 4 {
		t.Errorf("expected visibility, owner, date and search stages, got %d", p.Len())
	}

	p, _ = Payments(&models.User{ID: 1, IsSuperuser: true}, PaymentParams{StartDate: "bad", EndDate: "2024-01-31"})
	if p.Len() != 0 {
		t.Errorf("admin with malformed dates should have no stages, got %d", p.Len())
	}
}
