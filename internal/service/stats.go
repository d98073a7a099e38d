package service

import "math"

type RateSet struct {
	DeliveryRate float64 `json:"delivery_rate"`
	OpenRate     float64 `json:"open_rate"`
	ClickRate    float64 `json:"click_rate"`
}

// Rates computes delivery/open/click percentages rounded to 2 decimals.
// Delivery is measured against everything sent; open and click against
// what was actually delivered. Zero denominators yield 0.
func Rates(delivered, total, opened, clicked int) RateSet {
	return RateSet{
		DeliveryRate: percentage(delivered, total),
		OpenRate:     percentage(opened, delivered),
		ClickRate:    percentage(clicked, delivered),
	}
}

func percentage(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return math.Round(float64(numerator)/float64(denominator)*100*100) / 100
}
