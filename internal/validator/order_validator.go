package validator

import (
	"errors"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// 決済方法はこの中から
var paymentMethods = map[string]bool{
	"credit_card":   true,
	"bank_transfer": true,
	"cash_on_delivery": true,
}

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}
	if len(email) > 255 || !emailRe.MatchString(email) {
		return errors.New("invalid email")
	}
	return nil
}

func ValidateRequired(field, v string, max int) error {
	if strings.TrimSpace(v) == "" {
		return errors.New(field + " is required")
	}
	if max > 0 && len(v) > max {
		return errors.New(field + " is too long")
	}
	return nil
}

func ValidatePaymentMethod(m string) error {
	if !paymentMethods[m] {
		return errors.New("invalid payment_method")
	}
	return nil
}

func ValidateQuantity(q int64) error {
	if q < 1 {
		return errors.New("quantity must be >= 1")
	}
	return nil
}
