package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PromoCode struct {
	Id                 uuid.UUID
	Code               string
	DiscountPercentage *decimal.Decimal
	DiscountAmount     *decimal.Decimal
	IsActive           bool
	CreatedAt          time.Time
}

// Discount returns the amount taken off subtotal, never more than subtotal.
func (p *PromoCode) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch {
	case p.DiscountPercentage != nil:
		d = subtotal.Mul(*p.DiscountPercentage).Div(decimal.NewFromInt(100))
	case p.DiscountAmount != nil:
		d = *p.DiscountAmount
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d.Round(2)
}
