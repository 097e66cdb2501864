package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string
type PaymentStatus string
type BookingFrequency string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"

	FrequencyOneTime     BookingFrequency = "one_time"
	FrequencyWeekly      BookingFrequency = "weekly"
	FrequencyFortnightly BookingFrequency = "fortnightly"
	FrequencyMonthly     BookingFrequency = "monthly"
)

// IsRecurring reports whether the booking is billed through a gateway subscription.
func (f BookingFrequency) IsRecurring() bool {
	return f == FrequencyWeekly || f == FrequencyFortnightly || f == FrequencyMonthly
}

type Booking struct {
	Id            uuid.UUID
	BookingCode   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	ServiceType   string
	Frequency     BookingFrequency
	Bedrooms      int
	Bathrooms     int
	Extras        []string
	ScheduledDate time.Time
	ScheduledTime string

	BasePrice      decimal.Decimal
	ExtrasPrice    decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal

	Status        BookingStatus
	PaymentStatus PaymentStatus

	ReferralCode                 *string
	PromoCode                    *string
	ReferredBy                   *uuid.UUID
	ReferralCommissionCalculated bool

	GatewayCustomerId     *string
	GatewaySubscriptionId *string
	GatewaySessionId      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EligibleForCommission mirrors the processor's eligibility gate without the
// existence check against the referrals table.
func (b *Booking) EligibleForCommission() bool {
	return b.ReferralCode != nil &&
		*b.ReferralCode != "" &&
		b.Status == BookingStatusCompleted &&
		b.PaymentStatus == PaymentStatusPaid &&
		!b.ReferralCommissionCalculated
}
