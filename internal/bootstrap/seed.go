package bootstrap

import (
	"context"
	"fmt"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/pkg/referral/progress"

	"github.com/shopspring/decimal"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// DefaultLevels is the ladder installed on an empty database.
func DefaultLevels() []*entity.ReferralLevel {
	return []*entity.ReferralLevel{
		{LevelName: "Bronze", MinEarnings: decimal.Zero, MaxEarnings: decPtr("500"), CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10"), SortOrder: 1, IsActive: true},
		{LevelName: "Silver", MinEarnings: decimal.RequireFromString("500"), MaxEarnings: decPtr("2000"), CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("15"), SortOrder: 2, IsActive: true},
		{LevelName: "Gold", MinEarnings: decimal.RequireFromString("2000"), CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("20"), SortOrder: 3, IsActive: true},
	}
}

// SeedLevels inserts levels when no active level exists. It returns the
// number of rows written.
func SeedLevels(ctx context.Context, uowFactory unitofwork.RepositoryFactory, levels []*entity.ReferralLevel) (int, error) {
	if err := progress.ValidateLadder(levels); err != nil {
		return 0, fmt.Errorf("invalid level ladder: %w", err)
	}

	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	existing, err := uow.ReferralLevelRepository().FindAllActive(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, level := range levels {
		if err := uow.ReferralLevelRepository().Create(ctx, level); err != nil {
			return 0, fmt.Errorf("create level %s: %w", level.LevelName, err)
		}
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return len(levels), nil
}
