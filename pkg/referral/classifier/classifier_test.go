package classifier

import (
	"context"
	"testing"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*Classifier, *entity.ReferralLevel) {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	uow := factory.NewUnitOfWork(ctx)

	pct := decimal.NewFromInt(10)
	level := &entity.ReferralLevel{
		LevelName:            "Bronze",
		MinEarnings:          decimal.Zero,
		CommissionType:       entity.CommissionTypePercentage,
		CommissionPercentage: &pct,
		IsActive:             true,
	}
	require.NoError(t, uow.ReferralLevelRepository().Create(ctx, level))

	users := []*entity.ReferralUser{
		{ReferralCode: "JANE1234", Name: "Jane", Email: "jane@example.com", CurrentLevelId: &level.Id, IsActive: true},
		{ReferralCode: "BOTH10", Name: "Both", Email: "both@example.com", IsActive: true},
		{ReferralCode: "GONE1234", Name: "Gone", Email: "gone@example.com", IsActive: false},
	}
	for _, u := range users {
		require.NoError(t, uow.ReferralUserRepository().Create(ctx, u))
	}

	off := decimal.NewFromInt(15)
	promos := []*entity.PromoCode{
		{Code: "WELCOME15", DiscountPercentage: &off, IsActive: true},
		{Code: "BOTH10", DiscountPercentage: &off, IsActive: true},
		{Code: "EXPIRED5", DiscountPercentage: &off, IsActive: false},
	}
	for _, p := range promos {
		require.NoError(t, uow.PromoCodeRepository().Create(ctx, p))
	}

	return New(factory), level
}

func TestClassify_Referral(t *testing.T) {
	c, level := seed(t)

	got, err := c.Classify(context.Background(), "  jane1234 ")
	require.NoError(t, err)

	assert.Equal(t, TypeReferral, got.Type)
	assert.Equal(t, SourceDatabase, got.Source)
	assert.Equal(t, "JANE1234", got.Code)
	require.NotNil(t, got.Referrer)
	require.NotNil(t, got.Level)
	assert.Equal(t, level.Id, got.Level.Id)
	assert.True(t, got.Authoritative())
}

func TestClassify_ReferralBeatsPromo(t *testing.T) {
	c, _ := seed(t)

	got, err := c.Classify(context.Background(), "BOTH10")
	require.NoError(t, err)

	assert.Equal(t, TypeReferral, got.Type)
	assert.Nil(t, got.Promo)
}

func TestClassify_Promo(t *testing.T) {
	c, _ := seed(t)

	got, err := c.Classify(context.Background(), "welcome15")
	require.NoError(t, err)

	assert.Equal(t, TypePromo, got.Type)
	assert.Equal(t, SourceDatabase, got.Source)
	require.NotNil(t, got.Promo)
	assert.Equal(t, "WELCOME15", got.Promo.Code)
}

func TestClassify_InactiveRecordsFallToHeuristic(t *testing.T) {
	c, _ := seed(t)

	got, err := c.Classify(context.Background(), "EXPIRED5")
	require.NoError(t, err)
	assert.Equal(t, TypePromo, got.Type)
	assert.Equal(t, SourceHeuristic, got.Source)
	assert.False(t, got.Authoritative())

	got, err = c.Classify(context.Background(), "GONE1234")
	require.NoError(t, err)
	assert.Equal(t, TypeNone, got.Type)
}

func TestClassify_ShortInput(t *testing.T) {
	c, _ := seed(t)

	for _, in := range []string{"", " ", "AB", " a1 "} {
		got, err := c.Classify(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, TypeNone, got.Type, in)
		assert.Equal(t, SourceNone, got.Source, in)
	}
}

func TestClassify_UnknownCode(t *testing.T) {
	c, _ := seed(t)

	got, err := c.Classify(context.Background(), "NOTHINGHERE")
	require.NoError(t, err)
	assert.Equal(t, TypeNone, got.Type)
	assert.Nil(t, got.Referrer)
}

func TestHint(t *testing.T) {
	tests := []struct {
		code string
		want CodeType
	}{
		{"FRIEND2024", TypeReferral},
		{"ref-abc", TypeReferral},
		{"USERJOHN", TypeReferral},
		{"MEMBER99", TypeReferral},
		{"SUMMER2025", TypePromo},
		{"SALE", TypePromo},
		{"PROMOX", TypePromo},
		{"SAVE20", TypePromo},
		{"JOHN1234", TypeNone},
		{"ABC", TypeNone},
		{"12345", TypeNone},
		{"XY", TypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Hint(tt.code))
		})
	}
}

func TestClassify_DoesNotWrite(t *testing.T) {
	store := memory.NewStore()
	c := New(memory.NewRepositoryFactory(store))

	_, err := c.Classify(context.Background(), "FRIENDABC")
	require.NoError(t, err)
	assert.Equal(t, 0, store.ReferralCount())
}
