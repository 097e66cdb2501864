package progress

import (
	"context"
	"errors"
	"testing"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func level(name, min string, max *string) *entity.ReferralLevel {
	l := &entity.ReferralLevel{Id: uuid.New(), LevelName: name, MinEarnings: dec(min), IsActive: true}
	if max != nil {
		m := dec(*max)
		l.MaxEarnings = &m
	}
	return l
}

func strPtr(s string) *string { return &s }

func ladder() []*entity.ReferralLevel {
	return []*entity.ReferralLevel{
		level("Bronze", "0", strPtr("500")),
		level("Silver", "500", strPtr("2000")),
		level("Gold", "2000", nil),
	}
}

type staticLevels struct {
	levels []*entity.ReferralLevel
	err    error
}

func (s staticLevels) ActiveLevels(ctx context.Context) ([]*entity.ReferralLevel, error) {
	return s.levels, s.err
}

func TestCompute(t *testing.T) {
	levels := ladder()
	bronze, silver, gold := levels[0], levels[1], levels[2]

	tests := []struct {
		name          string
		current, next *entity.ReferralLevel
		total         string
		wantPct       string
		wantRemaining string
	}{
		{"halfway", bronze, silver, "250", "50", "250"},
		{"start of range", bronze, silver, "0", "0", "500"},
		{"exactly at next min", bronze, silver, "500", "100", "0"},
		{"above next min", bronze, silver, "750", "100", "0"},
		{"rounded to one place", silver, gold, "1000", "33.3", "1000"},
		{"below current min clamps to zero", silver, gold, "100", "0", "1900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.current, tt.next, dec(tt.total))
			assert.True(t, dec(tt.wantPct).Equal(got.ProgressPercentage), "pct %s", got.ProgressPercentage)
			assert.True(t, dec(tt.wantRemaining).Equal(got.RemainingAmount), "remaining %s", got.RemainingAmount)
			assert.Equal(t, tt.next, got.NextLevel)
		})
	}
}

func TestCompute_TopTier(t *testing.T) {
	got := Compute(ladder()[2], nil, dec("5000"))

	assert.True(t, dec("100").Equal(got.ProgressPercentage))
	assert.True(t, got.RemainingAmount.IsZero())
	assert.Nil(t, got.NextLevel)
}

func TestEvaluator_NextLevelProgress(t *testing.T) {
	levels := ladder()
	e := NewEvaluator(staticLevels{levels: levels}, logger.NewNopLogger())

	got := e.NextLevelProgress(context.Background(), levels[0], dec("125"))
	assert.Equal(t, "Silver", got.NextLevel.LevelName)
	assert.True(t, dec("25").Equal(got.ProgressPercentage))
	assert.True(t, dec("375").Equal(got.RemainingAmount))

	top := e.NextLevelProgress(context.Background(), levels[2], dec("2500"))
	assert.Nil(t, top.NextLevel)
	assert.True(t, dec("100").Equal(top.ProgressPercentage))
}

func TestEvaluator_FallbackOnError(t *testing.T) {
	e := NewEvaluator(staticLevels{err: errors.New("connection refused")}, logger.NewNopLogger())

	got := e.NextLevelProgress(context.Background(), ladder()[0], dec("100"))

	assert.True(t, got.ProgressPercentage.IsZero())
	assert.True(t, dec("1000").Equal(got.RemainingAmount))
	assert.Nil(t, got.NextLevel)
}

func TestEvaluator_CurrentLevel(t *testing.T) {
	levels := ladder()
	e := NewEvaluator(staticLevels{levels: levels}, logger.NewNopLogger())

	byId, err := e.CurrentLevel(context.Background(), &levels[1].Id, dec("0"))
	require.NoError(t, err)
	assert.Equal(t, "Silver", byId.LevelName)

	byTotal, err := e.CurrentLevel(context.Background(), nil, dec("2000"))
	require.NoError(t, err)
	assert.Equal(t, "Gold", byTotal.LevelName)
}

func TestLevelFor(t *testing.T) {
	levels := ladder()

	assert.Equal(t, "Bronze", LevelFor(levels, dec("499.99")).LevelName)
	assert.Equal(t, "Silver", LevelFor(levels, dec("500")).LevelName)
	assert.Equal(t, "Gold", LevelFor(levels, dec("100000")).LevelName)
	assert.Nil(t, LevelFor(levels, dec("-1")))
}

func TestNextAbove(t *testing.T) {
	levels := ladder()

	assert.Equal(t, levels[1], NextAbove(levels, levels[0]))
	assert.Nil(t, NextAbove(levels, levels[2]))
	assert.Equal(t, levels[0], NextAbove(levels, nil))
}

func TestValidateLadder(t *testing.T) {
	assert.NoError(t, ValidateLadder(ladder()))
	assert.ErrorIs(t, ValidateLadder(nil), ErrNoLevels)

	noTop := ladder()[:2]
	assert.ErrorIs(t, ValidateLadder(noTop), ErrNoTopLevel)

	twoTops := []*entity.ReferralLevel{level("A", "0", nil), level("B", "100", nil)}
	assert.ErrorIs(t, ValidateLadder(twoTops), ErrNoTopLevel)

	gap := []*entity.ReferralLevel{level("A", "0", strPtr("100")), level("B", "150", nil)}
	assert.ErrorIs(t, ValidateLadder(gap), ErrLevelsOverlap)

	dup := []*entity.ReferralLevel{level("A", "0", strPtr("0")), level("B", "0", nil)}
	assert.ErrorIs(t, ValidateLadder(dup), ErrDuplicateLevel)
}
