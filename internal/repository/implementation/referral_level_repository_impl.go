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

type referralLevelRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferralMapper
}

func NewReferralLevelRepository(db *gorm.DB) contract.ReferralLevelRepository {
	return &referralLevelRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferralMapper(),
	}
}

func (r *referralLevelRepositoryImpl) Create(ctx context.Context, level *entity.ReferralLevel) error {
	m := r.mapper.LevelToModel(level)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*level = *r.mapper.LevelToEntity(m)
	return nil
}

func (r *referralLevelRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ReferralLevel, error) {
	var m model.ReferralLevel
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LevelToEntity(&m), nil
}

func (r *referralLevelRepositoryImpl) FindAllActive(ctx context.Context) ([]*entity.ReferralLevel, error) {
	var models []*model.ReferralLevel
	query := applySpecifications(r.db.WithContext(ctx),
		specification.ActiveOnly{},
		specification.OrderBy{Field: "min_earnings"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	levels := make([]*entity.ReferralLevel, 0, len(models))
	for _, m := range models {
		levels = append(levels, r.mapper.LevelToEntity(m))
	}
	return levels, nil
}
