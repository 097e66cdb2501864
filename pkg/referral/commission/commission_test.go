package commission

import (
	"testing"

	"cleaning-booking-be/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		level        *LevelParams
		referralType ReferralType
		want         string
	}{
		{
			name:         "percentage standard",
			value:        "1000",
			level:        &LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10")},
			referralType: ReferralTypeStandard,
			want:         "100.00",
		},
		{
			name:         "fixed vip",
			value:        "500",
			level:        &LevelParams{CommissionType: entity.CommissionTypeFixed, CommissionFixed: decPtr("25")},
			referralType: ReferralTypeVIP,
			want:         "50.00",
		},
		{
			name:         "percentage defaults to five",
			value:        "400",
			level:        &LevelParams{CommissionType: entity.CommissionTypePercentage},
			referralType: ReferralTypeStandard,
			want:         "20.00",
		},
		{
			name:         "fixed defaults to twenty five",
			value:        "80",
			level:        &LevelParams{CommissionType: entity.CommissionTypeFixed},
			referralType: ReferralTypeStandard,
			want:         "25.00",
		},
		{
			name:         "premium multiplier",
			value:        "200",
			level:        &LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10")},
			referralType: ReferralTypePremium,
			want:         "30.00",
		},
		{
			name:         "first time multiplier",
			value:        "250",
			level:        &LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10")},
			referralType: ReferralTypeFirstTime,
			want:         "30.00",
		},
		{
			name:         "clamped to floor",
			value:        "20",
			level:        &LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10")},
			referralType: ReferralTypeStandard,
			want:         "5.00",
		},
		{
			name:         "clamped to ceiling",
			value:        "5000",
			level:        &LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10")},
			referralType: ReferralTypeVIP,
			want:         "200.00",
		},
		{
			name:         "rounds half up",
			value:        "123.45",
			level:        &LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10")},
			referralType: ReferralTypeStandard,
			want:         "12.35",
		},
		{
			name:         "zero value",
			value:        "0",
			level:        &LevelParams{CommissionType: entity.CommissionTypeFixed},
			referralType: ReferralTypeStandard,
			want:         "0",
		},
		{
			name:         "negative value",
			value:        "-100",
			level:        &LevelParams{CommissionType: entity.CommissionTypeFixed},
			referralType: ReferralTypeStandard,
			want:         "0",
		},
		{
			name:         "nil level",
			value:        "100",
			level:        nil,
			referralType: ReferralTypeStandard,
			want:         "0",
		},
		{
			name:         "unknown commission type",
			value:        "100",
			level:        &LevelParams{CommissionType: "tiered"},
			referralType: ReferralTypeStandard,
			want:         "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(dec(tt.value), tt.level, tt.referralType)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestCalculate_UnknownTypeMatchesStandard(t *testing.T) {
	level := &LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("7.5")}

	for _, v := range []string{"10", "333.33", "1000", "9999"} {
		standard := Calculate(dec(v), level, ReferralTypeStandard)
		unknown := Calculate(dec(v), level, "platinum")
		assert.True(t, standard.Equal(unknown), "value %s", v)
	}
}

func TestCalculate_AlwaysWithinBounds(t *testing.T) {
	levels := []*LevelParams{
		{CommissionType: entity.CommissionTypePercentage},
		{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("0.1")},
		{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("50")},
		{CommissionType: entity.CommissionTypeFixed},
		{CommissionType: entity.CommissionTypeFixed, CommissionFixed: decPtr("1")},
		{CommissionType: entity.CommissionTypeFixed, CommissionFixed: decPtr("500")},
	}
	types := []ReferralType{ReferralTypeStandard, ReferralTypePremium, ReferralTypeVIP, ReferralTypeFirstTime, "other"}
	values := []string{"0.01", "1", "49.99", "100", "250.50", "1000", "100000"}

	for _, level := range levels {
		for _, rt := range types {
			for _, v := range values {
				got := Calculate(dec(v), level, rt)
				assert.True(t, got.GreaterThanOrEqual(MinCommission), "%s %s %s => %s", level.CommissionType, rt, v, got)
				assert.True(t, got.LessThanOrEqual(MaxCommission), "%s %s %s => %s", level.CommissionType, rt, v, got)
			}
		}
	}
}

func TestMultiplier_CaseInsensitive(t *testing.T) {
	assert.True(t, Multiplier("VIP").Equal(dec("2")))
	assert.True(t, Multiplier("").Equal(dec("1")))
}
