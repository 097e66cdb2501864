package mapper

import (
	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/model"
)

type ReferralMapper struct{}

func NewReferralMapper() *ReferralMapper {
	return &ReferralMapper{}
}

func (m *ReferralMapper) UserToEntity(u *model.ReferralUser) *entity.ReferralUser {
	if u == nil {
		return nil
	}
	return &entity.ReferralUser{
		Id:             u.Id,
		ReferralCode:   u.ReferralCode,
		Name:           u.Name,
		Email:          u.Email,
		TotalEarned:    u.TotalEarned,
		TotalReferrals: u.TotalReferrals,
		CurrentLevelId: u.CurrentLevelId,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (m *ReferralMapper) UserToModel(u *entity.ReferralUser) *model.ReferralUser {
	if u == nil {
		return nil
	}
	return &model.ReferralUser{
		Id:             u.Id,
		ReferralCode:   u.ReferralCode,
		Name:           u.Name,
		Email:          u.Email,
		TotalEarned:    u.TotalEarned,
		TotalReferrals: u.TotalReferrals,
		CurrentLevelId: u.CurrentLevelId,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (m *ReferralMapper) LevelToEntity(l *model.ReferralLevel) *entity.ReferralLevel {
	if l == nil {
		return nil
	}
	return &entity.ReferralLevel{
		Id:                   l.Id,
		LevelName:            l.LevelName,
		MinEarnings:          l.MinEarnings,
		MaxEarnings:          l.MaxEarnings,
		CommissionType:       entity.CommissionType(l.CommissionType),
		CommissionPercentage: l.CommissionPercentage,
		CommissionFixed:      l.CommissionFixed,
		SortOrder:            l.SortOrder,
		IsActive:             l.IsActive,
	}
}

func (m *ReferralMapper) LevelToModel(l *entity.ReferralLevel) *model.ReferralLevel {
	if l == nil {
		return nil
	}
	return &model.ReferralLevel{
		Id:                   l.Id,
		LevelName:            l.LevelName,
		MinEarnings:          l.MinEarnings,
		MaxEarnings:          l.MaxEarnings,
		CommissionType:       string(l.CommissionType),
		CommissionPercentage: l.CommissionPercentage,
		CommissionFixed:      l.CommissionFixed,
		SortOrder:            l.SortOrder,
		IsActive:             l.IsActive,
	}
}

func (m *ReferralMapper) ReferralToEntity(r *model.Referral) *entity.Referral {
	if r == nil {
		return nil
	}
	return &entity.Referral{
		Id:               r.Id,
		ReferrerId:       r.ReferrerId,
		BookingId:        r.BookingId,
		InvoiceId:        r.InvoiceId,
		CustomerName:     r.CustomerName,
		CustomerEmail:    r.CustomerEmail,
		BookingValue:     r.BookingValue,
		CommissionEarned: r.CommissionEarned,
		Status:           entity.ReferralStatus(r.Status),
		PaymentType:      entity.ReferralPaymentType(r.PaymentType),
		CreatedAt:        r.CreatedAt,
	}
}

func (m *ReferralMapper) ReferralToModel(r *entity.Referral) *model.Referral {
	if r == nil {
		return nil
	}
	return &model.Referral{
		Id:               r.Id,
		ReferrerId:       r.ReferrerId,
		BookingId:        r.BookingId,
		InvoiceId:        r.InvoiceId,
		CustomerName:     r.CustomerName,
		CustomerEmail:    r.CustomerEmail,
		BookingValue:     r.BookingValue,
		CommissionEarned: r.CommissionEarned,
		Status:           string(r.Status),
		PaymentType:      string(r.PaymentType),
		CreatedAt:        r.CreatedAt,
	}
}

func (m *ReferralMapper) PromoToEntity(p *model.PromoCode) *entity.PromoCode {
	if p == nil {
		return nil
	}
	return &entity.PromoCode{
		Id:                 p.Id,
		Code:               p.Code,
		DiscountPercentage: p.DiscountPercentage,
		DiscountAmount:     p.DiscountAmount,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
}

func (m *ReferralMapper) PromoToModel(p *entity.PromoCode) *model.PromoCode {
	if p == nil {
		return nil
	}
	return &model.PromoCode{
		Id:                 p.Id,
		Code:               p.Code,
		DiscountPercentage: p.DiscountPercentage,
		DiscountAmount:     p.DiscountAmount,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
}
