package service

import (
	"context"
	"fmt"
	"strings"

	"cleaning-booking-be/internal/pkg/logger"
	pkgEvents "cleaning-booking-be/pkg/events"
	pktNats "cleaning-booking-be/pkg/nats"
)

// EventSubscriber is the part of pkg/nats.Subscriber the auditor needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

type IEventAuditor interface {
	Start(ctx context.Context) error
}

// eventAuditor copies every booking and referral event from the bus into the
// audit log so the commission trail survives bus retention.
type eventAuditor struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

var auditedEvents = []string{
	pkgEvents.TypeBookingCreated,
	pkgEvents.TypeBookingStatusChanged,
	pkgEvents.TypeReferralCommissionEarned,
}

func NewEventAuditor(subscriber EventSubscriber, auditLogger logger.ILogger) IEventAuditor {
	return &eventAuditor{subscriber: subscriber, logger: auditLogger}
}

func (a *eventAuditor) Start(ctx context.Context) error {
	for _, eventType := range auditedEvents {
		durable := "audit-" + strings.ToLower(strings.ReplaceAll(eventType, "_", "-"))
		if err := a.subscriber.Subscribe(ctx, eventType, durable, a.record); err != nil {
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	return nil
}

func (a *eventAuditor) record(ctx context.Context, event pkgEvents.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()
	a.logger.Info("AUDIT", event.EventType(), details)
	return nil
}
