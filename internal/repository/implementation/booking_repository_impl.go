package implementation

import (
	"context"
	"errors"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/mapper"
	"cleaning-booking-be/internal/model"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/scope"
	"cleaning-booking-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookingMapper
}

func NewBookingRepository(db *gorm.DB) contract.BookingRepository {
	return &BookingRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookingMapper(),
	}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *entity.Booking) error {
	m := r.mapper.ToModel(booking)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*booking = *r.mapper.ToEntity(m)
	return nil
}

func (r *BookingRepositoryImpl) Update(ctx context.Context, booking *entity.Booking) error {
	m := r.mapper.ToModel(booking)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateError(err)
	}
	*booking = *r.mapper.ToEntity(m)
	return nil
}

func (r *BookingRepositoryImpl) UpdateGatewaySession(ctx context.Context, id uuid.UUID, sessionId string) error {
	return r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ?", id).
		Update("gateway_session_id", sessionId).Error
}

func (r *BookingRepositoryImpl) findOne(ctx context.Context, query *gorm.DB) (*entity.Booking, error) {
	var m model.Booking
	if err := query.WithContext(ctx).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookingRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, specification.ByID{ID: id}.Apply(r.db))
}

func (r *BookingRepositoryImpl) FindByCode(ctx context.Context, code string) (*entity.Booking, error) {
	return r.findOne(ctx, specification.ByBookingCode{Code: code}.Apply(r.db))
}

func (r *BookingRepositoryImpl) FindByCodeForUpdate(ctx context.Context, code string) (*entity.Booking, error) {
	return r.findOne(ctx, r.db.Scopes(scope.ForUpdate).Where("booking_code = ?", code))
}

func (r *BookingRepositoryImpl) FindByGatewaySubscriptionId(ctx context.Context, subscriptionId string) (*entity.Booking, error) {
	query := specification.Filter("gateway_subscription_id", subscriptionId).Apply(r.db)
	return r.findOne(ctx, query.Scopes(scope.OrderByCreatedAsc))
}

func (r *BookingRepositoryImpl) FindPendingCommission(ctx context.Context) ([]*entity.Booking, error) {
	var models []*model.Booking
	query := applySpecifications(r.db.WithContext(ctx),
		specification.PendingCommission{},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *BookingRepositoryImpl) FindAll(ctx context.Context, filter contract.BookingFilter) ([]*entity.Booking, error) {
	var specs []specification.Specification
	if filter.Status != "" {
		specs = append(specs, specification.BookingStatusIs{Status: filter.Status})
	}
	if filter.PaymentStatus != "" {
		specs = append(specs, specification.PaymentStatusIs{Status: filter.PaymentStatus})
	}
	specs = append(specs, specification.ScheduledBetween{From: filter.From, To: filter.To})
	if filter.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: filter.Limit, Offset: filter.Offset})
	}

	query := applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)

	var models []*model.Booking
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *BookingRepositoryImpl) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Booking{}).Where("booking_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *BookingRepositoryImpl) toEntities(models []*model.Booking) []*entity.Booking {
	bookings := make([]*entity.Booking, 0, len(models))
	for _, m := range models {
		bookings = append(bookings, r.mapper.ToEntity(m))
	}
	return bookings
}
