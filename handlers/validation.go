package handlers

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"payment-tracker-api/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var maxAmount = decimal.New(1, 8)

var registerOnce sync.Once

// RegisterValidations installs the custom binding tags on gin's validator:
// user_type (admin or employee) and money (at most two decimal places,
// below 10^8). Field errors report the JSON name.
func RegisterValidations() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		if err = v.RegisterValidation("user_type", validUserType); err != nil {
			return
		}
		err = v.RegisterValidation("money", validMoney)
	})
	return err
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func validUserType(fl validator.FieldLevel) bool {
	return models.UserType(fl.Field().String()).Valid()
}

func validMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	if !d.Equal(d.Round(2)) {
		return false
	}
	return d.Abs().LessThan(maxAmount)
}
