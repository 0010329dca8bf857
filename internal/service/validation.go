package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/ismart-schedule-api/internal/planner"
)

// NewValidator returns a validator with the planner's custom tags registered.
func NewValidator() *validator.Validate {
	return withPlannerValidations(validator.New())
}

// withPlannerValidations registers the "weekday" tag, accepting names such as
// "monday", "MON" or "wed".
func withPlannerValidations(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	mustRegisterValidation(v, "weekday", func(fl validator.FieldLevel) bool {
		_, ok := planner.ParseWeekday(fl.Field().String())
		return ok
	})
	return v
}

func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}
