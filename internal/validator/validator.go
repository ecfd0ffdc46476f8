package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("date", validateDate)
	validator.RegisterValidation("payment_method", validatePaymentMethod)
	validator.RegisterValidation("positive_points", validatePositivePoints)

	return validator
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())

	return err == nil
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "card", "cash", "bonus", "subscription":
		return true
	}

	return false
}

func validatePositivePoints(fl validator.FieldLevel) bool {
	points, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}

	return points.IsPositive()
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "payment_method":
		return "must be one of: card, cash, bonus, subscription"
	case "positive_points":
		return "must be a positive amount of points"
	default:
		return "is invalid"
	}
}
