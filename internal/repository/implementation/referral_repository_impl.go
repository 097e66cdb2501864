package implementation

import (
	"context"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/mapper"
	"cleaning-booking-be/internal/model"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type referralRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferralMapper
}

func NewReferralRepository(db *gorm.DB) contract.ReferralRepository {
	return &referralRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferralMapper(),
	}
}

func (r *referralRepositoryImpl) Create(ctx context.Context, referral *entity.Referral) error {
	m := r.mapper.ReferralToModel(referral)
	if err := r.db.WithContext(ctx).Omit("Referrer", "Booking").Create(m).Error; err != nil {
		return translateError(err)
	}
	*referral = *r.mapper.ReferralToEntity(m)
	return nil
}

func (r *referralRepositoryImpl) ExistsInitialForBooking(ctx context.Context, bookingId uuid.UUID) (bool, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Referral{}),
		specification.Filter("booking_id", bookingId),
		specification.InitialPayment{},
	)
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *referralRepositoryImpl) AggregateByReferrer(ctx context.Context, referrerId uuid.UUID) (*entity.ReferrerTotals, error) {
	var row struct {
		Total decimal.NullDecimal
		Count int
	}
	err := r.db.WithContext(ctx).Model(&model.Referral{}).
		Select("COALESCE(SUM(commission_earned), 0) AS total, COUNT(*) AS count").
		Where("referrer_id = ?", referrerId).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	if row.Total.Valid {
		total = row.Total.Decimal
	}
	return &entity.ReferrerTotals{TotalEarned: total.Round(2), TotalReferrals: row.Count}, nil
}

func (r *referralRepositoryImpl) FindByReferrer(ctx context.Context, referrerId uuid.UUID, limit int) ([]*entity.Referral, error) {
	specs := []specification.Specification{
		specification.Filter("referrer_id", referrerId),
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit})
	}
	var models []*model.Referral
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	referrals := make([]*entity.Referral, 0, len(models))
	for _, m := range models {
		referrals = append(referrals, r.mapper.ReferralToEntity(m))
	}
	return referrals, nil
}
