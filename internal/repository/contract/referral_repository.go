package contract

import (
	"context"

	"cleaning-booking-be/internal/entity"

	"github.com/google/uuid"
)

type ReferralUserRepository interface {
	Create(ctx context.Context, user *entity.ReferralUser) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ReferralUser, error)
	// FindActiveByCode matches case-insensitively and skips deactivated users.
	FindActiveByCode(ctx context.Context, code string) (*entity.ReferralUser, error)
	FindByEmail(ctx context.Context, email string) (*entity.ReferralUser, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, totals entity.ReferrerTotals) error
	UpdateLevel(ctx context.Context, id uuid.UUID, levelId uuid.UUID) error
}

type ReferralLevelRepository interface {
	Create(ctx context.Context, level *entity.ReferralLevel) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ReferralLevel, error)
	// FindAllActive returns active levels ordered by min_earnings ascending.
	FindAllActive(ctx context.Context) ([]*entity.ReferralLevel, error)
}

type ReferralRepository interface {
	// Create returns ErrDuplicate when an initial row already exists for the
	// booking, or a row already exists for the invoice.
	Create(ctx context.Context, referral *entity.Referral) error
	ExistsInitialForBooking(ctx context.Context, bookingId uuid.UUID) (bool, error)
	AggregateByReferrer(ctx context.Context, referrerId uuid.UUID) (*entity.ReferrerTotals, error)
	FindByReferrer(ctx context.Context, referrerId uuid.UUID, limit int) ([]*entity.Referral, error)
}

type PromoCodeRepository interface {
	Create(ctx context.Context, promo *entity.PromoCode) error
	FindActiveByCode(ctx context.Context, code string) (*entity.PromoCode, error)
}
