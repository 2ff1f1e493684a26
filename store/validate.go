package store

import (
	"payment-tracker-api/apperr"

	"github.com/go-playground/validator/v10"
)

// validate checks inputs that reach the store without passing through
// request binding.
var validate = validator.New()

// checkEmail accepts a bare address only; display names and dotless
// domains are rejected so the stored value is the address itself.
func checkEmail(field, email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return apperr.Validation(field, "enter a valid email address")
	}
	return nil
}
