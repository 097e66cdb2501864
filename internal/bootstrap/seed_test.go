package bootstrap

import (
	"context"
	"testing"

	"cleaning-booking-be/internal/repository/memory"
	"cleaning-booking-be/pkg/referral/progress"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLevels(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())

	n, err := SeedLevels(ctx, factory, DefaultLevels())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = SeedLevels(ctx, factory, DefaultLevels())
	require.NoError(t, err)
	assert.Zero(t, n, "second run must not duplicate the ladder")

	uow := factory.NewUnitOfWork(ctx)
	levels, err := uow.ReferralLevelRepository().FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, "Bronze", levels[0].LevelName)
}

func TestSeedLevels_RejectsBrokenLadder(t *testing.T) {
	levels := DefaultLevels()
	levels[1].MinEarnings = decimal.NewFromInt(600)

	_, err := SeedLevels(context.Background(), memory.NewRepositoryFactory(memory.NewStore()), levels)
	assert.ErrorIs(t, err, progress.ErrLevelsOverlap)
}

func TestDefaultLevelsFormALadder(t *testing.T) {
	assert.NoError(t, progress.ValidateLadder(DefaultLevels()))
}
