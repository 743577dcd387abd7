package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("hanako@example.com"))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("   "))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("a@b"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@example.com"))
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("customer_name", "Hanako", 255))

	err := ValidateRequired("customer_name", "  ", 255)
	assert.EqualError(t, err, "customer_name is required")

	err = ValidateRequired("customer_name", strings.Repeat("x", 256), 255)
	assert.EqualError(t, err, "customer_name is too long")
}

func TestValidatePaymentMethod(t *testing.T) {
	assert.NoError(t, ValidatePaymentMethod("credit_card"))
	assert.NoError(t, ValidatePaymentMethod("bank_transfer"))
	assert.NoError(t, ValidatePaymentMethod("cash_on_delivery"))

	assert.Error(t, ValidatePaymentMethod(""))
	assert.Error(t, ValidatePaymentMethod("paypal"))
	assert.Error(t, ValidatePaymentMethod("CREDIT_CARD"))
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(1))
	assert.Error(t, ValidateQuantity(0))
	assert.Error(t, ValidateQuantity(-3))
}
