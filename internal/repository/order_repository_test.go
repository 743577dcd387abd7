package repository

import (
	"testing"

	"giftbloom/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestOrderUpdateIsEmpty(t *testing.T) {
	assert.True(t, OrderUpdate{}.IsEmpty())

	status := model.OrderStatusProcessing
	assert.False(t, OrderUpdate{OrderStatus: &status}.IsEmpty())

	paid := model.PaymentStatusPaid
	assert.False(t, OrderUpdate{PaymentStatus: &paid}.IsEmpty())

	notes := ""
	assert.False(t, OrderUpdate{Notes: &notes}.IsEmpty())

	tn := "GB-ABC123"
	assert.False(t, OrderUpdate{TrackingNumber: &tn}.IsEmpty())
}
