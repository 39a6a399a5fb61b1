package cart

import (
	"strings"

	"github.com/naijagasonline/ngo-storefront/pkg/config"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Pricing holds the delivery fee and the coupon registry used for totals.
type Pricing struct {
	DeliveryFee int64
	// Coupons maps an upper-cased code to a percentage off the subtotal.
	Coupons map[string]int
}

// NewPricing builds pricing rules from checkout config.
func NewPricing(cfg config.CheckoutConfig) Pricing {
	coupons := make(map[string]int, len(cfg.Coupons))
	for code, pct := range cfg.Coupons {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		coupons[code] = pct
	}
	return Pricing{DeliveryFee: cfg.DeliveryFee, Coupons: coupons}
}

// Subtotal sums price times quantity over every line.
func Subtotal(lines []Line) int64 {
	var total int64
	for _, line := range lines {
		total += line.Subtotal()
	}
	return total
}

// Fee is the fixed delivery fee for a non-empty cart and zero otherwise.
func (p Pricing) Fee(lines []Line) int64 {
	if len(lines) == 0 {
		return 0
	}
	return p.DeliveryFee
}

// CouponPercent looks the code up case-insensitively. Unknown codes report false.
func (p Pricing) CouponPercent(code string) (int, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, false
	}
	pct, ok := p.Coupons[code]
	return pct, ok
}

// Discount is the coupon percentage of subtotal rounded to the nearest whole amount.
func (p Pricing) Discount(subtotal int64, coupon string) int64 {
	pct, ok := p.CouponPercent(coupon)
	if !ok || pct <= 0 || subtotal <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(hundred).
		Round(0).
		IntPart()
}

// Quote computes every derived amount for the given lines and coupon.
func (p Pricing) Quote(lines []Line, coupon string) Totals {
	subtotal := Subtotal(lines)
	fee := p.Fee(lines)
	discount := p.Discount(subtotal, coupon)
	total := subtotal + fee - discount
	if total < 0 {
		total = 0
	}
	_, applied := p.CouponPercent(coupon)
	return Totals{
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Discount:      discount,
		Total:         total,
		Coupon:        strings.TrimSpace(coupon),
		CouponApplied: applied,
	}
}
