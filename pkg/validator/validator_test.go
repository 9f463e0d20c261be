package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type promoForm struct {
	Title           string  `validate:"required,min=1,max=255"`
	DiscountPercent float64 `validate:"gte=0,lte=100"`
	MaxDiscount     int64   `validate:"gte=0"`
	CategoryID      string  `validate:"omitempty,uuid"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(promoForm{
		Title:           "Summer Sale",
		DiscountPercent: 25,
		MaxDiscount:     100_000,
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	err := Validate(promoForm{
		Title:           "",
		DiscountPercent: 120,
		MaxDiscount:     -1,
		CategoryID:      "not-a-uuid",
	})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["Title"])
	assert.Equal(t, "must be less than or equal to 100", fields["DiscountPercent"])
	assert.Equal(t, "must be greater than or equal to 0", fields["MaxDiscount"])
	assert.Equal(t, "must be a valid UUID", fields["CategoryID"])
}

func TestValidationError_MessageListsAllFields(t *testing.T) {
	err := Validate(promoForm{DiscountPercent: -5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Title")
	assert.Contains(t, err.Error(), "DiscountPercent")
}
