package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestNewValidatorWeekdayTag(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Var("wed", "weekday"))
	assert.NoError(t, v.Var("MONDAY", "weekday"))
	assert.Error(t, v.Var("someday", "weekday"))
}

func TestMustRegisterValidationPanicsOnBadTag(t *testing.T) {
	assert.Panics(t, func() {
		mustRegisterValidation(validator.New(), "", func(validator.FieldLevel) bool { return true })
	})
}
