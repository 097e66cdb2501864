package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	CustomerName  string   `json:"customer_name" validate:"required,max=255"`
	CustomerEmail string   `json:"customer_email" validate:"required,email"`
	CustomerPhone string   `json:"customer_phone" validate:"required,max=50"`
	Address       string   `json:"address" validate:"required"`
	ServiceType   string   `json:"service_type" validate:"required"`
	Frequency     string   `json:"frequency" validate:"required,oneof=one_time weekly fortnightly monthly"`
	Bedrooms      int      `json:"bedrooms" validate:"min=0,max=20"`
	Bathrooms     int      `json:"bathrooms" validate:"min=0,max=20"`
	Extras        []string `json:"extras"`
	ScheduledDate string   `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime string   `json:"scheduled_time" validate:"required"`
	Code          string   `json:"code,omitempty" validate:"omitempty,max=50"`
}

type BookingResponse struct {
	Id            uuid.UUID `json:"id"`
	BookingCode   string    `json:"booking_code"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	ServiceType   string    `json:"service_type"`
	Frequency     string    `json:"frequency"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Extras        []string  `json:"extras"`
	ScheduledDate string    `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time"`

	BasePrice      string `json:"base_price"`
	ExtrasPrice    string `json:"extras_price"`
	DiscountAmount string `json:"discount_amount"`
	TotalAmount    string `json:"total_amount"`

	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	ReferralCode  *string `json:"referral_code,omitempty"`
	PromoCode     *string `json:"promo_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type CheckoutResponse struct {
	BookingCode     string `json:"booking_code"`
	SnapToken       string `json:"snap_token"`
	SnapRedirectUrl string `json:"snap_redirect_url"`
}

type BookingListRequest struct {
	Status        string `query:"status"`
	PaymentStatus string `query:"payment_status"`
	From          string `query:"from"`
	To            string `query:"to"`
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled"`
}
