package service

import (
	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/entity"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

func toBookingResponse(b *entity.Booking) *dto.BookingResponse {
	extras := b.Extras
	if extras == nil {
		extras = []string{}
	}
	return &dto.BookingResponse{
		Id:             b.Id,
		BookingCode:    b.BookingCode,
		CustomerName:   b.CustomerName,
		CustomerEmail:  b.CustomerEmail,
		ServiceType:    b.ServiceType,
		Frequency:      string(b.Frequency),
		Bedrooms:       b.Bedrooms,
		Bathrooms:      b.Bathrooms,
		Extras:         extras,
		ScheduledDate:  b.ScheduledDate.Format(dateLayout),
		ScheduledTime:  b.ScheduledTime,
		BasePrice:      money(b.BasePrice),
		ExtrasPrice:    money(b.ExtrasPrice),
		DiscountAmount: money(b.DiscountAmount),
		TotalAmount:    money(b.TotalAmount),
		Status:         string(b.Status),
		PaymentStatus:  string(b.PaymentStatus),
		ReferralCode:   b.ReferralCode,
		PromoCode:      b.PromoCode,
		CreatedAt:      b.CreatedAt,
	}
}

func toLevelResponse(l *entity.ReferralLevel) *dto.LevelResponse {
	if l == nil {
		return nil
	}
	return &dto.LevelResponse{
		Id:                   l.Id,
		LevelName:            l.LevelName,
		MinEarnings:          money(l.MinEarnings),
		MaxEarnings:          moneyPtr(l.MaxEarnings),
		CommissionType:       string(l.CommissionType),
		CommissionPercentage: moneyPtr(l.CommissionPercentage),
		CommissionFixed:      moneyPtr(l.CommissionFixed),
	}
}

func toReferrerResponse(u *entity.ReferralUser, level *entity.ReferralLevel) dto.ReferrerResponse {
	res := dto.ReferrerResponse{
		Id:             u.Id,
		ReferralCode:   u.ReferralCode,
		Name:           u.Name,
		Email:          u.Email,
		TotalEarned:    money(u.TotalEarned),
		TotalReferrals: u.TotalReferrals,
	}
	if level != nil {
		res.LevelName = level.LevelName
	}
	return res
}

func toPromoResponse(p *entity.PromoCode) *dto.PromoCodeResponse {
	return &dto.PromoCodeResponse{
		Id:                 p.Id,
		Code:               p.Code,
		DiscountPercentage: moneyPtr(p.DiscountPercentage),
		DiscountAmount:     moneyPtr(p.DiscountAmount),
		IsActive:           p.IsActive,
	}
}
