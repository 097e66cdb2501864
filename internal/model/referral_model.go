package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReferralUser struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReferralCode   string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name           string          `gorm:"type:varchar(255);not null"`
	Email          string          `gorm:"type:varchar(255);uniqueIndex;not null"`
	TotalEarned    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TotalReferrals int             `gorm:"not null;default:0"`
	CurrentLevelId *uuid.UUID      `gorm:"type:uuid;index"`
	IsActive       bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`

	CurrentLevel *ReferralLevel `gorm:"foreignKey:CurrentLevelId"`
}

func (ReferralUser) TableName() string {
	return "referral_users"
}

type ReferralLevel struct {
	Id                   uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LevelName            string           `gorm:"type:varchar(100);not null"`
	MinEarnings          decimal.Decimal  `gorm:"type:decimal(10,2);not null;uniqueIndex"`
	MaxEarnings          *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CommissionType       string           `gorm:"type:varchar(20);not null;default:'percentage'"`
	CommissionPercentage *decimal.Decimal `gorm:"type:decimal(5,2)"`
	CommissionFixed      *decimal.Decimal `gorm:"type:decimal(10,2)"`
	SortOrder            int              `gorm:"default:0"`
	IsActive             bool             `gorm:"not null;default:true"`
}

func (ReferralLevel) TableName() string {
	return "referral_levels"
}

// Referral rows are unique per booking for the initial payment and per
// gateway invoice for recurring ones.
type Referral struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReferrerId       uuid.UUID       `gorm:"type:uuid;not null;index"`
	BookingId        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_referrals_initial_booking,where:payment_type = 'initial'"`
	InvoiceId        *string         `gorm:"type:varchar(255);uniqueIndex"`
	CustomerName     string          `gorm:"type:varchar(255)"`
	CustomerEmail    string          `gorm:"type:varchar(255)"`
	BookingValue     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CommissionEarned decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status           string          `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentType      string          `gorm:"type:varchar(20);not null;default:'initial'"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`

	Referrer ReferralUser `gorm:"foreignKey:ReferrerId"`
	Booking  Booking      `gorm:"foreignKey:BookingId"`
}

func (Referral) TableName() string {
	return "referrals"
}
