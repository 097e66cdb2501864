// Package commission computes referral commission amounts from a booking value
// and the referrer's level parameters.
package commission

import (
	"strings"

	"cleaning-booking-be/internal/entity"

	"github.com/shopspring/decimal"
)

type ReferralType string

const (
	ReferralTypeStandard  ReferralType = "standard"
	ReferralTypePremium   ReferralType = "premium"
	ReferralTypeVIP       ReferralType = "vip"
	ReferralTypeFirstTime ReferralType = "first_time"
)

var (
	MinCommission = decimal.NewFromInt(5)
	MaxCommission = decimal.NewFromInt(200)

	DefaultPercentage = decimal.NewFromInt(5)
	DefaultFixed      = decimal.NewFromInt(25)

	hundred = decimal.NewFromInt(100)
)

var multipliers = map[ReferralType]decimal.Decimal{
	ReferralTypeStandard:  decimal.NewFromInt(1),
	ReferralTypePremium:   decimal.RequireFromString("1.5"),
	ReferralTypeVIP:       decimal.NewFromInt(2),
	ReferralTypeFirstTime: decimal.RequireFromString("1.2"),
}

// LevelParams is the commission part of a referral level.
type LevelParams struct {
	CommissionType       entity.CommissionType
	CommissionPercentage *decimal.Decimal
	CommissionFixed      *decimal.Decimal
}

func ParamsFromLevel(level *entity.ReferralLevel) *LevelParams {
	if level == nil {
		return nil
	}
	return &LevelParams{
		CommissionType:       level.CommissionType,
		CommissionPercentage: level.CommissionPercentage,
		CommissionFixed:      level.CommissionFixed,
	}
}

// Multiplier returns the factor for a referral type. Unknown types count as standard.
func Multiplier(referralType ReferralType) decimal.Decimal {
	if m, ok := multipliers[ReferralType(strings.ToLower(string(referralType)))]; ok {
		return m
	}
	return multipliers[ReferralTypeStandard]
}

// Calculate returns the commission for a booking, clamped to
// [MinCommission, MaxCommission] and rounded half-up to cents. Invalid input
// yields zero.
func Calculate(bookingValue decimal.Decimal, level *LevelParams, referralType ReferralType) decimal.Decimal {
	if !bookingValue.IsPositive() || level == nil {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch level.CommissionType {
	case entity.CommissionTypePercentage:
		pct := DefaultPercentage
		if level.CommissionPercentage != nil {
			pct = *level.CommissionPercentage
		}
		amount = Percentage(bookingValue, pct)
	case entity.CommissionTypeFixed:
		amount = DefaultFixed
		if level.CommissionFixed != nil {
			amount = *level.CommissionFixed
		}
	default:
		return decimal.Zero
	}

	amount = amount.Mul(Multiplier(referralType))
	amount = decimal.Max(MinCommission, decimal.Min(MaxCommission, amount))
	return RoundMoney(amount)
}

// Percentage returns value * pct / 100 without rounding.
func Percentage(value, pct decimal.Decimal) decimal.Decimal {
	return value.Mul(pct).Div(hundred)
}

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
