// Package progress evaluates how far a referrer is from the next level.
package progress

import (
	"context"
	"errors"
	"fmt"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	fallbackRemaining = decimal.NewFromInt(1000)
	hundred           = decimal.NewFromInt(100)
)

type Progress struct {
	ProgressPercentage decimal.Decimal
	RemainingAmount    decimal.Decimal
	NextLevel          *entity.ReferralLevel
}

// LevelSource yields active levels ordered by min_earnings ascending.
type LevelSource interface {
	ActiveLevels(ctx context.Context) ([]*entity.ReferralLevel, error)
}

// Compute is the pure progress rule. next nil means current is the top tier.
func Compute(current, next *entity.ReferralLevel, total decimal.Decimal) Progress {
	if next == nil {
		return Progress{ProgressPercentage: hundred, RemainingAmount: decimal.Zero}
	}
	if total.GreaterThanOrEqual(next.MinEarnings) {
		return Progress{ProgressPercentage: hundred, RemainingAmount: decimal.Zero, NextLevel: next}
	}

	currentMin := decimal.Zero
	if current != nil {
		currentMin = current.MinEarnings
	}

	span := next.MinEarnings.Sub(currentMin)
	pct := hundred
	if span.IsPositive() {
		pct = total.Sub(currentMin).Div(span).Mul(hundred)
	}
	pct = decimal.Max(decimal.Zero, decimal.Min(hundred, pct)).Round(1)

	return Progress{
		ProgressPercentage: pct,
		RemainingAmount:    next.MinEarnings.Sub(total).Round(2),
		NextLevel:          next,
	}
}

// NextAbove returns the first level strictly above current in min_earnings
// order. With no current level the lowest level is returned.
func NextAbove(levels []*entity.ReferralLevel, current *entity.ReferralLevel) *entity.ReferralLevel {
	for _, l := range levels {
		if current == nil || l.MinEarnings.GreaterThan(current.MinEarnings) {
			return l
		}
	}
	return nil
}

// LevelFor returns the level whose range contains total, or nil.
func LevelFor(levels []*entity.ReferralLevel, total decimal.Decimal) *entity.ReferralLevel {
	var found *entity.ReferralLevel
	for _, l := range levels {
		if l.Contains(total) {
			found = l
		}
	}
	return found
}

var (
	ErrNoLevels       = errors.New("no active levels")
	ErrNoTopLevel     = errors.New("ladder has no unbounded top level")
	ErrLevelsOverlap  = errors.New("level ranges overlap or leave a gap")
	ErrDuplicateLevel = errors.New("two levels share min_earnings")
)

// ValidateLadder checks that levels (sorted ascending) form contiguous
// non-overlapping ranges ending in exactly one unbounded level.
func ValidateLadder(levels []*entity.ReferralLevel) error {
	if len(levels) == 0 {
		return ErrNoLevels
	}
	for i, l := range levels {
		last := i == len(levels)-1
		if l.MaxEarnings == nil {
			if !last {
				return fmt.Errorf("%w: %s", ErrNoTopLevel, l.LevelName)
			}
			continue
		}
		if last {
			return ErrNoTopLevel
		}
		next := levels[i+1]
		if next.MinEarnings.Equal(l.MinEarnings) {
			return fmt.Errorf("%w: %s and %s", ErrDuplicateLevel, l.LevelName, next.LevelName)
		}
		if !l.MaxEarnings.Equal(next.MinEarnings) {
			return fmt.Errorf("%w: %s ends at %s, %s starts at %s",
				ErrLevelsOverlap, l.LevelName, l.MaxEarnings, next.LevelName, next.MinEarnings)
		}
	}
	return nil
}

type Evaluator struct {
	levels LevelSource
	logger logger.ILogger
}

func NewEvaluator(levels LevelSource, logger logger.ILogger) *Evaluator {
	return &Evaluator{levels: levels, logger: logger}
}

// NextLevelProgress never fails. Data-access errors are logged and replaced by
// a display fallback of 0% with 1000 remaining.
func (e *Evaluator) NextLevelProgress(ctx context.Context, current *entity.ReferralLevel, total decimal.Decimal) Progress {
	levels, err := e.levels.ActiveLevels(ctx)
	if err != nil {
		e.logger.Warn("REFERRAL", "Level progress fallback", map[string]interface{}{
			"error": err.Error(),
			"total": total.String(),
		})
		return Progress{ProgressPercentage: decimal.Zero, RemainingAmount: fallbackRemaining}
	}

	return Compute(current, NextAbove(levels, current), total)
}

// CurrentLevel resolves a referrer's level by id, falling back to the range
// that contains total when the id is unset or unknown.
func (e *Evaluator) CurrentLevel(ctx context.Context, levelId *uuid.UUID, total decimal.Decimal) (*entity.ReferralLevel, error) {
	levels, err := e.levels.ActiveLevels(ctx)
	if err != nil {
		return nil, err
	}
	if levelId != nil {
		for _, l := range levels {
			if l.Id == *levelId {
				return l, nil
			}
		}
	}
	return LevelFor(levels, total), nil
}
