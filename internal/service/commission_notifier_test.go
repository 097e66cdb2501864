package service

import (
	"context"
	"testing"

	"cleaning-booking-be/pkg/referral/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommissionMailer(t *testing.T) {
	m := &fakeMailer{}
	n := NewCommissionMailer(m, "https://clean.example.com/")

	err := n.NotifyCommissionEarned(context.Background(), &processor.Commission{
		ReferrerCode:     "JANE1234",
		ReferrerName:     "Jane",
		ReferrerEmail:    "jane@example.com",
		BookingCode:      "BK-AAAA0001",
		PaymentType:      "initial",
		CommissionAmount: dec("150"),
		TotalEarned:      dec("650.5"),
		TotalReferrals:   4,
		LevelName:        "Silver",
		Promoted:         true,
	})
	require.NoError(t, err)

	require.Len(t, m.commissions, 1)
	assert.Equal(t, []string{"jane@example.com"}, m.recipients)
	sent := m.commissions[0]
	assert.Equal(t, "150.00", sent.Amount)
	assert.Equal(t, "650.50", sent.TotalEarned)
	assert.True(t, sent.Promoted)
	assert.Equal(t, "https://clean.example.com/referral/dashboard?code=JANE1234", sent.DashboardURL)

	require.NoError(t, n.NotifyCommissionEarned(context.Background(), &processor.Commission{}))
	assert.Len(t, m.commissions, 1)
}
