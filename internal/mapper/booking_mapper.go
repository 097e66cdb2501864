package mapper

import (
	"encoding/json"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/model"

	"gorm.io/datatypes"
)

type BookingMapper struct{}

func NewBookingMapper() *BookingMapper {
	return &BookingMapper{}
}

func (m *BookingMapper) ToEntity(b *model.Booking) *entity.Booking {
	if b == nil {
		return nil
	}
	var extras []string
	if len(b.Extras) > 0 {
		// Malformed rows degrade to no extras rather than failing the read.
		_ = json.Unmarshal(b.Extras, &extras)
	}
	return &entity.Booking{
		Id:                           b.Id,
		BookingCode:                  b.BookingCode,
		CustomerName:                 b.CustomerName,
		CustomerEmail:                b.CustomerEmail,
		CustomerPhone:                b.CustomerPhone,
		Address:                      b.Address,
		ServiceType:                  b.ServiceType,
		Frequency:                    entity.BookingFrequency(b.Frequency),
		Bedrooms:                     b.Bedrooms,
		Bathrooms:                    b.Bathrooms,
		Extras:                       extras,
		ScheduledDate:                b.ScheduledDate,
		ScheduledTime:                b.ScheduledTime,
		BasePrice:                    b.BasePrice,
		ExtrasPrice:                  b.ExtrasPrice,
		DiscountAmount:               b.DiscountAmount,
		TotalAmount:                  b.TotalAmount,
		Status:                       entity.BookingStatus(b.Status),
		PaymentStatus:                entity.PaymentStatus(b.PaymentStatus),
		ReferralCode:                 b.ReferralCode,
		PromoCode:                    b.PromoCode,
		ReferredBy:                   b.ReferredBy,
		ReferralCommissionCalculated: b.ReferralCommissionCalculated,
		GatewayCustomerId:            b.GatewayCustomerId,
		GatewaySubscriptionId:        b.GatewaySubscriptionId,
		GatewaySessionId:             b.GatewaySessionId,
		CreatedAt:                    b.CreatedAt,
		UpdatedAt:                    b.UpdatedAt,
	}
}

func (m *BookingMapper) ToModel(b *entity.Booking) *model.Booking {
	if b == nil {
		return nil
	}
	extras, _ := json.Marshal(b.Extras)
	if b.Extras == nil {
		extras = []byte("[]")
	}
	return &model.Booking{
		Id:                           b.Id,
		BookingCode:                  b.BookingCode,
		CustomerName:                 b.CustomerName,
		CustomerEmail:                b.CustomerEmail,
		CustomerPhone:                b.CustomerPhone,
		Address:                      b.Address,
		ServiceType:                  b.ServiceType,
		Frequency:                    string(b.Frequency),
		Bedrooms:                     b.Bedrooms,
		Bathrooms:                    b.Bathrooms,
		Extras:                       datatypes.JSON(extras),
		ScheduledDate:                b.ScheduledDate,
		ScheduledTime:                b.ScheduledTime,
		BasePrice:                    b.BasePrice,
		ExtrasPrice:                  b.ExtrasPrice,
		DiscountAmount:               b.DiscountAmount,
		TotalAmount:                  b.TotalAmount,
		Status:                       string(b.Status),
		PaymentStatus:                string(b.PaymentStatus),
		ReferralCode:                 b.ReferralCode,
		PromoCode:                    b.PromoCode,
		ReferredBy:                   b.ReferredBy,
		ReferralCommissionCalculated: b.ReferralCommissionCalculated,
		GatewayCustomerId:            b.GatewayCustomerId,
		GatewaySubscriptionId:        b.GatewaySubscriptionId,
		GatewaySessionId:             b.GatewaySessionId,
		CreatedAt:                    b.CreatedAt,
		UpdatedAt:                    b.UpdatedAt,
	}
}
