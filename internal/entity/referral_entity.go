package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionType string
type ReferralStatus string
type ReferralPaymentType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFixed      CommissionType = "fixed"

	ReferralStatusPending      ReferralStatus = "pending"
	ReferralStatusPaid         ReferralStatus = "paid"
	ReferralStatusActive       ReferralStatus = "active"
	ReferralStatusNegotiating  ReferralStatus = "negotiating"
	ReferralStatusUnsuccessful ReferralStatus = "unsuccessful"

	ReferralPaymentInitial   ReferralPaymentType = "initial"
	ReferralPaymentRecurring ReferralPaymentType = "recurring"
)

type ReferralUser struct {
	Id             uuid.UUID
	ReferralCode   string
	Name           string
	Email          string
	TotalEarned    decimal.Decimal
	TotalReferrals int
	CurrentLevelId *uuid.UUID
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReferralLevel is one commission tier. MaxEarnings nil marks the top tier.
type ReferralLevel struct {
	Id                   uuid.UUID
	LevelName            string
	MinEarnings          decimal.Decimal
	MaxEarnings          *decimal.Decimal
	CommissionType       CommissionType
	CommissionPercentage *decimal.Decimal
	CommissionFixed      *decimal.Decimal
	SortOrder            int
	IsActive             bool
}

// Contains reports whether total falls inside [MinEarnings, MaxEarnings).
func (l *ReferralLevel) Contains(total decimal.Decimal) bool {
	if total.LessThan(l.MinEarnings) {
		return false
	}
	return l.MaxEarnings == nil || total.LessThan(*l.MaxEarnings)
}

type Referral struct {
	Id               uuid.UUID
	ReferrerId       uuid.UUID
	BookingId        uuid.UUID
	InvoiceId        *string
	CustomerName     string
	CustomerEmail    string
	BookingValue     decimal.Decimal
	CommissionEarned decimal.Decimal
	Status           ReferralStatus
	PaymentType      ReferralPaymentType
	CreatedAt        time.Time
}

// ReferrerTotals is the SUM/COUNT aggregate over a referrer's referral rows.
type ReferrerTotals struct {
	TotalEarned    decimal.Decimal
	TotalReferrals int
}
