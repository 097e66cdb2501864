package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Booking struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingCode   string         `gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerName  string         `gorm:"type:varchar(255);not null"`
	CustomerEmail string         `gorm:"type:varchar(255);not null;index"`
	CustomerPhone string         `gorm:"type:varchar(50)"`
	Address       string         `gorm:"type:text"`
	ServiceType   string         `gorm:"type:varchar(50);not null"`
	Frequency     string         `gorm:"type:varchar(20);not null;default:'one_time'"`
	Bedrooms      int            `gorm:"default:0"`
	Bathrooms     int            `gorm:"default:0"`
	Extras        datatypes.JSON `gorm:"type:jsonb"`
	ScheduledDate time.Time      `gorm:"type:date;not null"`
	ScheduledTime string         `gorm:"type:varchar(10)"`

	BasePrice      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ExtrasPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	Status        string `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'pending';index"`

	ReferralCode                 *string    `gorm:"type:varchar(50);index"`
	PromoCode                    *string    `gorm:"type:varchar(50)"`
	ReferredBy                   *uuid.UUID `gorm:"type:uuid;index"`
	ReferralCommissionCalculated bool       `gorm:"not null;default:false"`

	GatewayCustomerId     *string `gorm:"type:varchar(255)"`
	GatewaySubscriptionId *string `gorm:"type:varchar(255);index"`
	GatewaySessionId      *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}
