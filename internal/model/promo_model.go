package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PromoCode struct {
	Id                 uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code               string           `gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountPercentage *decimal.Decimal `gorm:"type:decimal(5,2)"`
	DiscountAmount     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsActive           bool             `gorm:"not null;default:true"`
	CreatedAt          time.Time        `gorm:"autoCreateTime"`
}

func (PromoCode) TableName() string {
	return "promo_codes"
}
