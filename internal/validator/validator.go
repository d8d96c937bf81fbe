package validator

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	// prices are compared as floats so the numeric tags (gte, lte) apply
	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	validator.RegisterValidation("screening_type", validateScreeningType)
	validator.RegisterValidation("seat_type", validateSeatType)
	validator.RegisterValidation("seat_status", validateSeatStatus)
	validator.RegisterValidation("clock_time", validateClockTime)
	validator.RegisterValidation("date_only", validateDateOnly)
	validator.RegisterValidation("cents", validateCents)

	return validator
}

func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	f, _ := d.Float64()
	return f
}

// validateCents rejects amounts with more than two decimal places, which the
// NUMERIC(12,2) price columns would otherwise round.
func validateCents(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}

	return decimal.NewFromFloat(fl.Field().Float()).Exponent() >= -2
}

func validateScreeningType(fl validator.FieldLevel) bool {
	return domain.ScreeningType(fl.Field().String()).Valid()
}

func validateSeatType(fl validator.FieldLevel) bool {
	return domain.SeatType(fl.Field().String()).Valid()
}

func validateSeatStatus(fl validator.FieldLevel) bool {
	return domain.SeatStatus(fl.Field().String()).Valid()
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := domain.ParseClockTime(fl.Field().String())
	return err == nil
}

func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", err.Param())
		}
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", err.Param())
	case "cents":
		return "must have at most two decimal places"
	case "screening_type":
		return "must be a known screening type"
	case "seat_type":
		return "must be one of standard, wheelchair, companion"
	case "seat_status":
		return "must be one of availableSeat, reservedSeat, unavailableSeat"
	case "clock_time":
		return "must be a time of day in HH:MM format"
	case "date_only":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
