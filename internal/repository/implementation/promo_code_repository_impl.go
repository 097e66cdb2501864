package implementation

import (
	"context"
	"errors"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/mapper"
	"cleaning-booking-be/internal/model"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/specification"

	"gorm.io/gorm"
)

type promoCodeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferralMapper
}

func NewPromoCodeRepository(db *gorm.DB) contract.PromoCodeRepository {
	return &promoCodeRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferralMapper(),
	}
}

func (r *promoCodeRepositoryImpl) Create(ctx context.Context, promo *entity.PromoCode) error {
	m := r.mapper.PromoToModel(promo)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*promo = *r.mapper.PromoToEntity(m)
	return nil
}

func (r *promoCodeRepositoryImpl) FindActiveByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	var m model.PromoCode
	query := applySpecifications(r.db.WithContext(ctx),
		specification.Filter("code", code),
		specification.ActiveOnly{},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PromoToEntity(&m), nil
}
