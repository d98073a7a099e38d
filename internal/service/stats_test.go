package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assohub/assohub-backend/internal/service"
)

func TestRates(t *testing.T) {
	rates := service.Rates(100, 120, 50, 10)

	assert.Equal(t, 83.33, rates.DeliveryRate)
	assert.Equal(t, 50.00, rates.OpenRate)
	assert.Equal(t, 10.00, rates.ClickRate)
}

func TestRatesZeroDenominators(t *testing.T) {
	rates := service.Rates(0, 0, 0, 0)

	assert.Equal(t, 0.0, rates.DeliveryRate)
	assert.Equal(t, 0.0, rates.OpenRate)
	assert.Equal(t, 0.0, rates.ClickRate)
}

func TestRatesOpenAgainstDelivered(t *testing.T) {
	// Nothing delivered: open/click rates stay 0 even with recorded opens.
	rates := service.Rates(0, 10, 3, 1)

	assert.Equal(t, 0.0, rates.DeliveryRate)
	assert.Equal(t, 0.0, rates.OpenRate)
	assert.Equal(t, 0.0, rates.ClickRate)
}
