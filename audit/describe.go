package audit

import (
	"fmt"

	"payment-tracker-api/models"
)

func UserCreated(u *models.User) string { return fmt.Sprintf("User %q was created", u.Username) }
func UserUpdated(u *models.User) string { return fmt.Sprintf("User %q was updated", u.Username) }
func UserDeleted(u *models.User) string { return fmt.Sprintf("User %q was deleted", u.Username) }
func UserLogin(u *models.User) string   { return fmt.Sprintf("User %q logged in", u.Username) }
func UserLogout(u *models.User) string  { return fmt.Sprintf("User %q logged out", u.Username) }

func CustomerCreated(c *models.Customer) string { return customer(c, "created") }
func CustomerUpdated(c *models.Customer) string { return customer(c, "updated") }
func CustomerDeleted(c *models.Customer) string { return customer(c, "deleted") }

func customer(c *models.Customer, verb string) string {
	return fmt.Sprintf("Customer %q (%s) was %s", c.Name, c.Email, verb)
}

// Payment descriptions name the customer and the amount in rupees.
// p.Customer must be loaded.

func PaymentCreated(p *models.Payment) string {
	return fmt.Sprintf("Customer %q was paid %s rupees.", p.Customer.Name, p.Amount.StringFixed(2))
}

func PaymentUpdated(p *models.Payment) string {
	return fmt.Sprintf("Payment of %s rupees to customer %q was updated.", p.Amount.StringFixed(2), p.Customer.Name)
}

func PaymentDeleted(p *models.Payment) string {
	return fmt.Sprintf("Customer %q payment of %s rupees was deleted.", p.Customer.Name, p.Amount.StringFixed(2))
}
