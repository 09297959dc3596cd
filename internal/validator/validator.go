// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pharmaledger/internal/models"
	"pharmaledger/internal/money"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	_ = v.RegisterValidation("role", validateRole)
	_ = v.RegisterValidation("shift_type", validateShiftType)
	_ = v.RegisterValidation("personal_type", validatePersonalType)
	_ = v.RegisterValidation("money_gt0", validatePositiveMoney)
	_ = v.RegisterValidation("money_gte0", validateNonNegativeMoney)
}

// decimalValue lets validator see decimals as their canonical string form.
// A null decimal reads as empty, so "required" rejects it.
func decimalValue(field reflect.Value) any {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.String()
	case decimal.NullDecimal:
		if !d.Valid {
			return ""
		}
		return d.Decimal.String()
	}
	return nil
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func validateShiftType(fl validator.FieldLevel) bool {
	return models.ShiftType(fl.Field().String()).Valid()
}

func validatePersonalType(fl validator.FieldLevel) bool {
	return models.PersonalType(fl.Field().String()).Valid()
}

// validatePositiveMoney judges the amount as it will be stored, at currency
// scale.
func validatePositiveMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && money.IsPositive(money.Round(d))
}

func validateNonNegativeMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.Sign() >= 0
}
