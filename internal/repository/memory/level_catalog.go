package memory

import (
	"context"
	"fmt"
	"time"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

const activeLevelsKey = "levels:active"

// LevelCatalog caches the active level ladder. Levels change only through
// migrations and admin seeding, so a short expiry is enough.
type LevelCatalog struct {
	cache      *cache.Cache
	uowFactory unitofwork.RepositoryFactory
}

func NewLevelCatalog(uowFactory unitofwork.RepositoryFactory, ttl time.Duration) *LevelCatalog {
	return &LevelCatalog{
		cache:      cache.New(ttl, 2*ttl),
		uowFactory: uowFactory,
	}
}

// ActiveLevels returns the active levels ordered by min_earnings ascending.
func (c *LevelCatalog) ActiveLevels(ctx context.Context) ([]*entity.ReferralLevel, error) {
	if x, found := c.cache.Get(activeLevelsKey); found {
		return x.([]*entity.ReferralLevel), nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	levels, err := uow.ReferralLevelRepository().FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load referral levels: %w", err)
	}

	c.cache.Set(activeLevelsKey, levels, cache.DefaultExpiration)
	return levels, nil
}

func (c *LevelCatalog) Invalidate() {
	c.cache.Delete(activeLevelsKey)
}
