package dto

import (
	"time"

	"github.com/google/uuid"
)

type ValidateCodeRequest struct {
	Code string `json:"code"`
}

// ValidateCodeResponse is returned with HTTP 200 for every outcome.
type ValidateCodeResponse struct {
	Success            bool    `json:"success"`
	Valid              bool    `json:"valid"`
	Type               string  `json:"type"`
	DiscountPercentage *string `json:"discount_percentage,omitempty"`
	DiscountAmount     *string `json:"discount_amount,omitempty"`
	Message            string  `json:"message,omitempty"`
}

type RegisterReferrerRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
}

type ReferrerResponse struct {
	Id             uuid.UUID `json:"id"`
	ReferralCode   string    `json:"referral_code"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	TotalEarned    string    `json:"total_earned"`
	TotalReferrals int       `json:"total_referrals"`
	LevelName      string    `json:"level_name,omitempty"`
}

type LevelResponse struct {
	Id                   uuid.UUID `json:"id"`
	LevelName            string    `json:"level_name"`
	MinEarnings          string    `json:"min_earnings"`
	MaxEarnings          *string   `json:"max_earnings"`
	CommissionType       string    `json:"commission_type"`
	CommissionPercentage *string   `json:"commission_percentage,omitempty"`
	CommissionFixed      *string   `json:"commission_fixed,omitempty"`
}

type LevelProgressResponse struct {
	ProgressPercentage string         `json:"progress_percentage"`
	RemainingAmount    string         `json:"remaining_amount"`
	NextLevel          *LevelResponse `json:"next_level"`
}

type ReferralHistoryItem struct {
	Id               uuid.UUID `json:"id"`
	CustomerName     string    `json:"customer_name"`
	BookingValue     string    `json:"booking_value"`
	CommissionEarned string    `json:"commission_earned"`
	Status           string    `json:"status"`
	PaymentType      string    `json:"payment_type"`
	CreatedAt        time.Time `json:"created_at"`
}

type ReferralDashboardResponse struct {
	Referrer        ReferrerResponse      `json:"referrer"`
	CurrentLevel    *LevelResponse        `json:"current_level"`
	Progress        LevelProgressResponse `json:"progress"`
	RecentReferrals []ReferralHistoryItem `json:"recent_referrals"`
}

type CreatePromoCodeRequest struct {
	Code               string   `json:"code" validate:"required,min=3,max=50,alphanum"`
	DiscountPercentage *float64 `json:"discount_percentage" validate:"omitempty,gt=0,lte=100"`
	DiscountAmount     *float64 `json:"discount_amount" validate:"omitempty,gt=0"`
}

type PromoCodeResponse struct {
	Id                 uuid.UUID `json:"id"`
	Code               string    `json:"code"`
	DiscountPercentage *string   `json:"discount_percentage,omitempty"`
	DiscountAmount     *string   `json:"discount_amount,omitempty"`
	IsActive           bool      `json:"is_active"`
}
