package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	ShippingBasra = 3000
	ShippingOther = 5000
)

// Order bounds. Any order inside them prices without overflowing int64.
const (
	MaxOrderLines   = 100
	MaxLineQuantity = 10000
	MaxUnitPrice    = 1000000000
)

// PricedLine is one order line with the catalog cost resolved
type PricedLine struct {
	SellingPrice   int64
	WholesalePrice int64
	Quantity       int
}

// Quote is the full price breakdown of an order
type Quote struct {
	ItemsTotal    int64
	ItemsCost     int64
	PromoDiscount int64
	ShippingCost  int64
	TotalProfit   int64
	CustomerTotal int64
}

// ShippingCost returns the flat delivery fee for a province
func ShippingCost(province string) int64 {
	if strings.Contains(province, "البصرة") || strings.Contains(strings.ToLower(province), "basra") {
		return ShippingBasra
	}
	return ShippingOther
}

// PromoDiscount returns percent% of amount rounded to whole dinar
func PromoDiscount(amount, percent int64) int64 {
	if percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// WithinBounds reports whether the line's prices and quantity are in range
func (l PricedLine) WithinBounds() bool {
	return l.Quantity >= 1 && l.Quantity <= MaxLineQuantity &&
		l.SellingPrice >= 0 && l.SellingPrice <= MaxUnitPrice &&
		l.WholesalePrice >= 0 && l.WholesalePrice <= MaxUnitPrice
}

// LinesWithinBounds reports whether an order of lines can be priced safely
func LinesWithinBounds(lines []PricedLine) bool {
	if len(lines) > MaxOrderLines {
		return false
	}
	for _, line := range lines {
		if !line.WithinBounds() {
			return false
		}
	}
	return true
}

// CalculateQuote prices an order of lines that pass LinesWithinBounds.
// discountPercent is 0 when no active promo applies.
func CalculateQuote(lines []PricedLine, province string, discountPercent int64) Quote {
	var q Quote
	for _, line := range lines {
		qty := int64(line.Quantity)
		q.ItemsTotal += line.SellingPrice * qty
		q.ItemsCost += line.WholesalePrice * qty
	}

	q.PromoDiscount = PromoDiscount(q.ItemsTotal, discountPercent)
	q.ShippingCost = ShippingCost(province)
	q.TotalProfit = q.ItemsTotal - q.ItemsCost - q.PromoDiscount
	q.CustomerTotal = q.ItemsTotal + q.ShippingCost - q.PromoDiscount
	return q
}

// NormalizePromoCode trims and upper-cases a promo code
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
