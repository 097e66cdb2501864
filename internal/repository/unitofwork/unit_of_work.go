package unitofwork

import (
	"context"

	"cleaning-booking-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BookingRepository() contract.BookingRepository
	ReferralUserRepository() contract.ReferralUserRepository
	ReferralLevelRepository() contract.ReferralLevelRepository
	ReferralRepository() contract.ReferralRepository
	PromoCodeRepository() contract.PromoCodeRepository
	WebhookEventRepository() contract.WebhookEventRepository
}
