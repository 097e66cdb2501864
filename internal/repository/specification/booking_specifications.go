package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByBookingCode filters bookings by their public code
type ByBookingCode struct {
	Code string
}

func (s ByBookingCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("booking_code = ?", s.Code)
}

// BookingStatusIs filters by lifecycle status
type BookingStatusIs struct {
	Status string
}

func (s BookingStatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// PaymentStatusIs filters by payment status
type PaymentStatusIs struct {
	Status string
}

func (s PaymentStatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payment_status = ?", s.Status)
}

// ScheduledBetween filters by scheduled date (inclusive)
type ScheduledBetween struct {
	From time.Time
	To   time.Time
}

func (s ScheduledBetween) Apply(db *gorm.DB) *gorm.DB {
	if !s.From.IsZero() {
		db = db.Where("scheduled_date >= ?", s.From)
	}
	if !s.To.IsZero() {
		db = db.Where("scheduled_date <= ?", s.To)
	}
	return db
}

// PendingCommission selects bookings that passed every eligibility gate of the
// commission processor except the referrals existence check.
type PendingCommission struct{}

func (s PendingCommission) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("referral_code IS NOT NULL AND referral_code <> ''").
		Where("status = ?", "completed").
		Where("payment_status = ?", "paid").
		Where("referral_commission_calculated = ?", false)
}
