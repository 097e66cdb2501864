// Package events publishes booking and referral events to the event bus.
package events

import (
	"context"
	"time"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"
	pkgEvents "cleaning-booking-be/pkg/events"
	"cleaning-booking-be/pkg/referral/processor"
)

type Publisher interface {
	PublishBookingCreated(ctx context.Context, booking *entity.Booking)
	PublishBookingStatusChanged(ctx context.Context, booking *entity.Booking, previous entity.BookingStatus, previousPayment entity.PaymentStatus)
	NotifyCommissionEarned(ctx context.Context, c *processor.Commission) error
}

// BusPublisher publishes through any pkg/events publisher. A nil bus turns
// every call into a no-op so the service runs without NATS.
type BusPublisher struct {
	bus    pkgEvents.Publisher
	logger logger.ILogger
}

func NewBusPublisher(bus pkgEvents.Publisher, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{bus: bus, logger: logger}
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) error {
	if p.bus == nil {
		return nil
	}
	evt := pkgEvents.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (p *BusPublisher) PublishBookingCreated(ctx context.Context, booking *entity.Booking) {
	data := map[string]interface{}{
		"booking_id":     booking.Id.String(),
		"booking_code":   booking.BookingCode,
		"customer_email": booking.CustomerEmail,
		"service_type":   booking.ServiceType,
		"frequency":      string(booking.Frequency),
		"total_amount":   booking.TotalAmount.StringFixed(2),
		"entity_type":    "booking",
		"entity_id":      booking.Id.String(),
	}
	if booking.ReferralCode != nil {
		data["referral_code"] = *booking.ReferralCode
	}
	if booking.PromoCode != nil {
		data["promo_code"] = *booking.PromoCode
	}
	_ = p.publish(ctx, pkgEvents.TypeBookingCreated, data)
}

func (p *BusPublisher) PublishBookingStatusChanged(ctx context.Context, booking *entity.Booking, previous entity.BookingStatus, previousPayment entity.PaymentStatus) {
	_ = p.publish(ctx, pkgEvents.TypeBookingStatusChanged, map[string]interface{}{
		"booking_id":              booking.Id.String(),
		"booking_code":            booking.BookingCode,
		"previous_status":         string(previous),
		"status":                  string(booking.Status),
		"previous_payment_status": string(previousPayment),
		"payment_status":          string(booking.PaymentStatus),
		"entity_type":             "booking",
		"entity_id":               booking.Id.String(),
	})
}

// NotifyCommissionEarned satisfies processor.Notifier.
func (p *BusPublisher) NotifyCommissionEarned(ctx context.Context, c *processor.Commission) error {
	return p.publish(ctx, pkgEvents.TypeReferralCommissionEarned, map[string]interface{}{
		"referral_id":       c.ReferralId.String(),
		"referrer_id":       c.ReferrerId.String(),
		"referrer_code":     c.ReferrerCode,
		"booking_id":        c.BookingId.String(),
		"booking_code":      c.BookingCode,
		"invoice_id":        c.InvoiceId,
		"payment_type":      c.PaymentType,
		"commission_amount": c.CommissionAmount.StringFixed(2),
		"total_earned":      c.TotalEarned.StringFixed(2),
		"total_referrals":   c.TotalReferrals,
		"level_name":        c.LevelName,
		"promoted":          c.Promoted,
		"entity_type":       "referral",
		"entity_id":         c.ReferralId.String(),
	})
}
