package contract

import (
	"context"
	"time"

	"cleaning-booking-be/internal/entity"

	"github.com/google/uuid"
)

type BookingFilter struct {
	Status        string
	PaymentStatus string
	From          time.Time
	To            time.Time
	Limit         int
	Offset        int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	Update(ctx context.Context, booking *entity.Booking) error
	// UpdateGatewaySession writes only gateway_session_id so a concurrent
	// webhook status change is never overwritten.
	UpdateGatewaySession(ctx context.Context, id uuid.UUID, sessionId string) error

	// Finders return (nil, nil) when no row matches.
	FindById(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCode(ctx context.Context, code string) (*entity.Booking, error)
	// FindByCodeForUpdate locks the row until the surrounding transaction ends.
	FindByCodeForUpdate(ctx context.Context, code string) (*entity.Booking, error)
	FindByGatewaySubscriptionId(ctx context.Context, subscriptionId string) (*entity.Booking, error)

	FindPendingCommission(ctx context.Context) ([]*entity.Booking, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]*entity.Booking, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}
