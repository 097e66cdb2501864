package implementation

import (
	"context"
	"errors"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/mapper"
	"cleaning-booking-be/internal/model"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type referralUserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferralMapper
}

func NewReferralUserRepository(db *gorm.DB) contract.ReferralUserRepository {
	return &referralUserRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferralMapper(),
	}
}

func (r *referralUserRepositoryImpl) Create(ctx context.Context, user *entity.ReferralUser) error {
	m := r.mapper.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*user = *r.mapper.UserToEntity(m)
	return nil
}

func (r *referralUserRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.ReferralUser, error) {
	var m model.ReferralUser
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserToEntity(&m), nil
}

func (r *referralUserRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ReferralUser, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *referralUserRepositoryImpl) FindActiveByCode(ctx context.Context, code string) (*entity.ReferralUser, error) {
	return r.findOne(ctx,
		specification.ByCodeInsensitive{Column: "referral_code", Code: code},
		specification.ActiveOnly{},
	)
}

func (r *referralUserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.ReferralUser, error) {
	return r.findOne(ctx, specification.ByCodeInsensitive{Column: "email", Code: email})
}

func (r *referralUserRepositoryImpl) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	query := specification.ByCodeInsensitive{Column: "referral_code", Code: code}.
		Apply(r.db.WithContext(ctx).Model(&model.ReferralUser{}))
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *referralUserRepositoryImpl) UpdateTotals(ctx context.Context, id uuid.UUID, totals entity.ReferrerTotals) error {
	return r.db.WithContext(ctx).Model(&model.ReferralUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_earned":    totals.TotalEarned,
			"total_referrals": totals.TotalReferrals,
		}).Error
}

func (r *referralUserRepositoryImpl) UpdateLevel(ctx context.Context, id uuid.UUID, levelId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ReferralUser{}).
		Where("id = ?", id).
		Update("current_level_id", levelId).Error
}
