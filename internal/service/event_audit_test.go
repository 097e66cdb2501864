package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cleaning-booking-be/internal/pkg/logger"
	pkgEvents "cleaning-booking-be/pkg/events"
	pktNats "cleaning-booking-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSubscriber struct {
	durables map[string]string
	handlers map[string]pktNats.EventHandler
	err      error
}

func (s *capturingSubscriber) Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error {
	if s.err != nil {
		return s.err
	}
	s.durables[eventType] = durableName
	s.handlers[eventType] = handler
	return nil
}

func TestEventAuditor(t *testing.T) {
	sub := &capturingSubscriber{durables: map[string]string{}, handlers: map[string]pktNats.EventHandler{}}
	auditLog := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "audit.log"))

	require.NoError(t, NewEventAuditor(sub, auditLog).Start(context.Background()))
	assert.Len(t, sub.handlers, 3)
	assert.Equal(t, "audit-referral-commission-earned", sub.durables[pkgEvents.TypeReferralCommissionEarned])

	err := sub.handlers[pkgEvents.TypeReferralCommissionEarned](context.Background(), pkgEvents.BaseEvent{
		Type:       pkgEvents.TypeReferralCommissionEarned,
		Data:       map[string]interface{}{"booking_code": "BK-AAAA0001", "amount": "100.00"},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, auditLog.Sync())

	entries, err := auditLog.GetLogs(logger.LogQuery{Module: "AUDIT"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, pkgEvents.TypeReferralCommissionEarned, entries[0].Message)
	assert.Equal(t, "BK-AAAA0001", entries[0].Details["booking_code"])
}

func TestEventAuditor_SubscribeError(t *testing.T) {
	sub := &capturingSubscriber{err: errors.New("no stream")}
	err := NewEventAuditor(sub, logger.NewNopLogger()).Start(context.Background())
	assert.ErrorContains(t, err, "no stream")
}
