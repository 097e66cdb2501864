package unitofwork_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/model"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real database only when DB_CONNECTION_STRING is set.
func newPostgresFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}
	db, err := database.NewGormDBFromDSN(dsn, database.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error)
	require.NoError(t, db.AutoMigrate(
		&model.ReferralLevel{},
		&model.ReferralUser{},
		&model.Booking{},
		&model.Referral{},
		&model.PromoCode{},
		&model.WebhookEvent{},
	))
	return unitofwork.NewRepositoryFactory(db)
}

func suffix() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func TestPostgres_ReferralLifecycle(t *testing.T) {
	factory := newPostgresFactory(t)
	ctx := context.Background()
	s := suffix()

	referrer := &entity.ReferralUser{
		ReferralCode: "IT" + s,
		Name:         "Integration",
		Email:        strings.ToLower("it-" + s + "@example.com"),
		TotalEarned:  decimal.Zero,
		IsActive:     true,
	}
	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.ReferralUserRepository().Create(ctx, referrer))
	require.NotEqual(t, uuid.Nil, referrer.Id)

	code := referrer.ReferralCode
	booking := &entity.Booking{
		BookingCode:   "BK-" + s,
		CustomerName:  "Customer",
		CustomerEmail: "customer@example.com",
		ServiceType:   "standard",
		Frequency:     entity.FrequencyOneTime,
		Bedrooms:      2,
		Bathrooms:     1,
		ScheduledDate: time.Now().Add(48 * time.Hour).Truncate(24 * time.Hour),
		ScheduledTime: "09:00",
		BasePrice:     decimal.RequireFromString("150"),
		ExtrasPrice:   decimal.Zero,
		TotalAmount:   decimal.RequireFromString("150"),
		Status:        entity.BookingStatusCompleted,
		PaymentStatus: entity.PaymentStatusPaid,
		ReferralCode:  &code,
	}
	require.NoError(t, uow.BookingRepository().Create(ctx, booking))

	dupe := *booking
	dupe.Id = uuid.Nil
	err := factory.NewUnitOfWork(ctx).BookingRepository().Create(ctx, &dupe)
	assert.ErrorIs(t, err, contract.ErrDuplicate)

	pending, err := uow.BookingRepository().FindPendingCommission(ctx)
	require.NoError(t, err)
	var found bool
	for _, b := range pending {
		if b.BookingCode == booking.BookingCode {
			found = true
		}
	}
	assert.True(t, found, "completed paid booking with a code is pending commission")

	initial := func() *entity.Referral {
		return &entity.Referral{
			ReferrerId:       referrer.Id,
			BookingId:        booking.Id,
			BookingValue:     booking.TotalAmount,
			CommissionEarned: decimal.RequireFromString("15"),
			Status:           entity.ReferralStatusPaid,
			PaymentType:      entity.ReferralPaymentInitial,
		}
	}

	tx := factory.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	require.NoError(t, tx.ReferralRepository().Create(ctx, initial()))
	require.NoError(t, tx.Commit())

	err = factory.NewUnitOfWork(ctx).ReferralRepository().Create(ctx, initial())
	assert.ErrorIs(t, err, contract.ErrDuplicate, "one initial commission per booking")

	exists, err := uow.ReferralRepository().ExistsInitialForBooking(ctx, booking.Id)
	require.NoError(t, err)
	assert.True(t, exists)

	totals, err := uow.ReferralRepository().AggregateByReferrer(ctx, referrer.Id)
	require.NoError(t, err)
	assert.True(t, totals.TotalEarned.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, 1, totals.TotalReferrals)
}

func TestPostgres_WebhookEventDedupe(t *testing.T) {
	factory := newPostgresFactory(t)
	ctx := context.Background()
	id := "evt_" + suffix()

	repo := factory.NewUnitOfWork(ctx).WebhookEventRepository()
	created, err := repo.CreateIfAbsent(ctx, &entity.WebhookEvent{EventId: id, EventType: "invoice.paid", Payload: []byte(`{}`)})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &entity.WebhookEvent{EventId: id, EventType: "invoice.paid", Payload: []byte(`{}`)})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestPostgres_RollbackDiscardsWrites(t *testing.T) {
	factory := newPostgresFactory(t)
	ctx := context.Background()
	code := "RB" + suffix()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.ReferralUserRepository().Create(ctx, &entity.ReferralUser{
		ReferralCode: code,
		Name:         "Rollback",
		Email:        strings.ToLower(code + "@example.com"),
		IsActive:     true,
	}))
	require.NoError(t, uow.Rollback())

	got, err := factory.NewUnitOfWork(ctx).ReferralUserRepository().FindActiveByCode(ctx, code)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgres_LevelFindById(t *testing.T) {
	factory := newPostgresFactory(t)
	ctx := context.Background()
	repo := factory.NewUnitOfWork(ctx).ReferralLevelRepository()

	pct := decimal.RequireFromString("7.5")
	level := &entity.ReferralLevel{
		LevelName:            "Level " + suffix(),
		MinEarnings:          decimal.NewFromInt(1_000_000 + time.Now().UnixNano()%1_000_000),
		CommissionType:       entity.CommissionTypePercentage,
		CommissionPercentage: &pct,
		SortOrder:            99,
		IsActive:             true,
	}
	require.NoError(t, repo.Create(ctx, level))

	got, err := repo.FindById(ctx, level.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, level.LevelName, got.LevelName)
	assert.True(t, pct.Equal(*got.CommissionPercentage))

	missing, err := repo.FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
