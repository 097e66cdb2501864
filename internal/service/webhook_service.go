package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/repository/unitofwork"
	referralEvents "cleaning-booking-be/pkg/referral/events"
	"cleaning-booking-be/pkg/referral/processor"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventInvoicePaid           = "invoice.payment_succeeded"
	EventInvoiceFailed         = "invoice.payment_failed"
	EventSubscriptionUpdated   = "customer.subscription.updated"
	EventSubscriptionDeleted   = "customer.subscription.deleted"
	EventChargeRefunded        = "charge.refunded"
	subscriptionStatusCanceled = "canceled"
	billingReasonCreate        = "subscription_create"
)

type IWebhookService interface {
	VerifyGatewaySignature(payload []byte, signature string) error
	HandleGatewayEvent(ctx context.Context, payload []byte) (*dto.WebhookResponse, error)
	HandleMidtransNotification(ctx context.Context, req *dto.MidtransWebhookRequest) (*dto.WebhookResponse, error)
}

// transition is what a handler changed inside the transaction. Side effects
// run from it after commit.
type transition struct {
	booking         *entity.Booking
	previous        entity.BookingStatus
	previousPayment entity.PaymentStatus
	recurring       *processor.RecurringInvoice
	message         string
}

func (t *transition) changed() bool {
	return t.booking != nil && (t.booking.Status != t.previous || t.booking.PaymentStatus != t.previousPayment)
}

type eventHandler func(ctx context.Context, uow unitofwork.UnitOfWork, object json.RawMessage) (*transition, error)

type webhookService struct {
	uowFactory        unitofwork.RepositoryFactory
	processor         CommissionProcessor
	dispatcher        CommissionDispatcher
	publisher         referralEvents.Publisher
	logger            logger.ILogger
	gatewaySecret     string
	midtransServerKey string
	handlers          map[string]eventHandler
}

type WebhookServiceDeps struct {
	UowFactory        unitofwork.RepositoryFactory
	Processor         CommissionProcessor
	Dispatcher        CommissionDispatcher
	Publisher         referralEvents.Publisher
	Logger            logger.ILogger
	GatewaySecret     string
	MidtransServerKey string
}

func NewWebhookService(deps WebhookServiceDeps) IWebhookService {
	s := &webhookService{
		uowFactory:        deps.UowFactory,
		processor:         deps.Processor,
		dispatcher:        deps.Dispatcher,
		publisher:         deps.Publisher,
		logger:            deps.Logger,
		gatewaySecret:     deps.GatewaySecret,
		midtransServerKey: deps.MidtransServerKey,
	}
	s.handlers = map[string]eventHandler{
		EventCheckoutCompleted:   s.onCheckoutCompleted,
		EventInvoicePaid:         s.onInvoicePaid,
		EventInvoiceFailed:       s.onInvoiceFailed,
		EventSubscriptionUpdated: s.onSubscriptionUpdated,
		EventSubscriptionDeleted: s.onSubscriptionDeleted,
		EventChargeRefunded:      s.onChargeRefunded,
	}
	return s
}

// VerifyGatewaySignature checks a hex HMAC-SHA256 of the raw body. An empty
// secret disables the check.
func (s *webhookService) VerifyGatewaySignature(payload []byte, signature string) error {
	if s.gatewaySecret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(s.gatewaySecret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || !hmac.Equal(expected, got) {
		return ErrInvalidSignature
	}
	return nil
}

func (s *webhookService) HandleGatewayEvent(ctx context.Context, payload []byte) (*dto.WebhookResponse, error) {
	var evt dto.GatewayEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: malformed event", ErrInvalidRequest)
	}
	if evt.Id == "" || evt.Type == "" {
		return nil, fmt.Errorf("%w: event id and type are required", ErrInvalidRequest)
	}

	handler, ok := s.handlers[evt.Type]
	if !ok {
		s.logger.Debug("WEBHOOK", "Ignoring event type", map[string]interface{}{"event_id": evt.Id, "type": evt.Type})
		return &dto.WebhookResponse{Received: true, Message: "Event type ignored"}, nil
	}

	return s.apply(ctx, &entity.WebhookEvent{EventId: evt.Id, EventType: evt.Type, Payload: payload}, func(ctx context.Context, uow unitofwork.UnitOfWork) (*transition, error) {
		return handler(ctx, uow, evt.Data.Object)
	})
}

// apply records the event and runs fn in one transaction. A failed handler
// rolls the record back so the redelivery is processed.
func (s *webhookService) apply(ctx context.Context, event *entity.WebhookEvent, fn func(context.Context, unitofwork.UnitOfWork) (*transition, error)) (*dto.WebhookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	fresh, err := uow.WebhookEventRepository().CreateIfAbsent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("record webhook event: %w", err)
	}
	if !fresh {
		s.logger.Info("WEBHOOK", "Duplicate delivery ignored", map[string]interface{}{"event_id": event.EventId, "type": event.EventType})
		return &dto.WebhookResponse{Received: true, Message: "Duplicate event"}, nil
	}

	t, err := fn(ctx, uow)
	if err != nil {
		s.logger.Error("WEBHOOK", "Webhook handling failed", map[string]interface{}{
			"event_id": event.EventId,
			"type":     event.EventType,
			"error":    err.Error(),
		})
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, t)
	return &dto.WebhookResponse{Received: true, Handled: t.changed() || t.recurring != nil, Message: t.message}, nil
}

// afterCommit runs the best-effort side effects. None of them can fail the
// webhook.
func (s *webhookService) afterCommit(ctx context.Context, t *transition) {
	if t.booking == nil {
		s.logger.Info("WEBHOOK", t.message, nil)
		return
	}
	fields := map[string]interface{}{
		"booking_code":   t.booking.BookingCode,
		"status":         t.booking.Status,
		"payment_status": t.booking.PaymentStatus,
	}
	s.logger.Info("WEBHOOK", t.message, fields)

	if t.changed() {
		s.publisher.PublishBookingStatusChanged(ctx, t.booking, t.previous, t.previousPayment)
		dispatchIfEligible(ctx, s.dispatcher, s.logger, t.booking)
	}

	if t.recurring != nil {
		result, err := s.processor.ProcessRecurring(ctx, *t.recurring)
		if err != nil {
			return
		}
		s.logger.Info("WEBHOOK", "Recurring commission "+string(result.Outcome), map[string]interface{}{
			"booking_code": t.booking.BookingCode,
			"invoice_id":   t.recurring.InvoiceId,
		})
	}
}

func lockBooking(ctx context.Context, uow unitofwork.UnitOfWork, code string) (*transition, error) {
	booking, err := uow.BookingRepository().FindByCodeForUpdate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return &transition{message: "Booking not found"}, nil
	}
	return &transition{booking: booking, previous: booking.Status, previousPayment: booking.PaymentStatus}, nil
}

func lockBookingBySubscription(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId string) (*transition, error) {
	if subscriptionId == "" {
		return &transition{message: "Event has no subscription"}, nil
	}
	booking, err := uow.BookingRepository().FindByGatewaySubscriptionId(ctx, subscriptionId)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return &transition{message: "No booking for subscription"}, nil
	}
	return lockBooking(ctx, uow, booking.BookingCode)
}

// lockBookingByMetadata resolves booking_code first, then booking_id.
func lockBookingByMetadata(ctx context.Context, uow unitofwork.UnitOfWork, metadata map[string]string) (*transition, error) {
	if code := strings.TrimSpace(metadata["booking_code"]); code != "" {
		return lockBooking(ctx, uow, strings.ToUpper(code))
	}
	id, err := uuid.Parse(metadata["booking_id"])
	if err != nil {
		return &transition{message: "Event has no booking reference"}, nil
	}
	booking, err := uow.BookingRepository().FindById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return &transition{message: "Booking not found"}, nil
	}
	return lockBooking(ctx, uow, booking.BookingCode)
}

func markPaid(b *entity.Booking) {
	b.PaymentStatus = entity.PaymentStatusPaid
	if b.Status == entity.BookingStatusPending {
		b.Status = entity.BookingStatusConfirmed
	}
}

func markCancelled(b *entity.Booking) {
	if b.Status != entity.BookingStatusCompleted {
		b.Status = entity.BookingStatusCancelled
	}
}

func save(ctx context.Context, uow unitofwork.UnitOfWork, t *transition, message string) (*transition, error) {
	t.message = message
	if err := uow.BookingRepository().Update(ctx, t.booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return t, nil
}

func (s *webhookService) onCheckoutCompleted(ctx context.Context, uow unitofwork.UnitOfWork, object json.RawMessage) (*transition, error) {
	var session dto.CheckoutSessionObject
	if err := json.Unmarshal(object, &session); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session", ErrInvalidRequest)
	}

	t, err := lockBookingByMetadata(ctx, uow, session.Metadata)
	if err != nil || t.booking == nil {
		return t, err
	}
	b := t.booking

	if session.Id != "" {
		b.GatewaySessionId = &session.Id
	}
	if session.Customer != "" {
		b.GatewayCustomerId = &session.Customer
	}
	if session.Mode == "subscription" && session.Subscription != "" {
		b.GatewaySubscriptionId = &session.Subscription
	}

	// The code was validated at booking time; a code attached only at
	// checkout must still name an active referrer.
	if code := strings.TrimSpace(session.Metadata["referral_code"]); code != "" && b.ReferralCode == nil {
		referrer, err := uow.ReferralUserRepository().FindActiveByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("load referrer: %w", err)
		}
		if referrer != nil {
			referralCode := referrer.ReferralCode
			b.ReferralCode = &referralCode
		}
	}

	markPaid(b)
	return save(ctx, uow, t, "Checkout completed")
}

func (s *webhookService) onInvoicePaid(ctx context.Context, uow unitofwork.UnitOfWork, object json.RawMessage) (*transition, error) {
	var invoice dto.InvoiceObject
	if err := json.Unmarshal(object, &invoice); err != nil {
		return nil, fmt.Errorf("%w: malformed invoice", ErrInvalidRequest)
	}

	t, err := lockBookingBySubscription(ctx, uow, invoice.Subscription)
	if err != nil || t.booking == nil {
		return t, err
	}

	markPaid(t.booking)
	// The first invoice is covered by the initial commission.
	if invoice.BillingReason != billingReasonCreate && invoice.Id != "" && t.booking.ReferralCommissionCalculated {
		t.recurring = &processor.RecurringInvoice{
			InvoiceId:      invoice.Id,
			SubscriptionId: invoice.Subscription,
			AmountPaid:     decimal.New(invoice.AmountPaid, -2),
		}
	}
	return save(ctx, uow, t, "Invoice paid")
}

func (s *webhookService) onInvoiceFailed(ctx context.Context, uow unitofwork.UnitOfWork, object json.RawMessage) (*transition, error) {
	var invoice dto.InvoiceObject
	if err := json.Unmarshal(object, &invoice); err != nil {
		return nil, fmt.Errorf("%w: malformed invoice", ErrInvalidRequest)
	}

	t, err := lockBookingBySubscription(ctx, uow, invoice.Subscription)
	if err != nil || t.booking == nil {
		return t, err
	}
	t.booking.PaymentStatus = entity.PaymentStatusFailed
	return save(ctx, uow, t, "Invoice payment failed")
}

func (s *webhookService) onSubscriptionUpdated(ctx context.Context, uow unitofwork.UnitOfWork, object json.RawMessage) (*transition, error) {
	var sub dto.SubscriptionObject
	if err := json.Unmarshal(object, &sub); err != nil {
		return nil, fmt.Errorf("%w: malformed subscription", ErrInvalidRequest)
	}
	if sub.Status != subscriptionStatusCanceled {
		return &transition{message: "Subscription status " + sub.Status + " needs no action"}, nil
	}

	t, err := lockBookingBySubscription(ctx, uow, sub.Id)
	if err != nil || t.booking == nil {
		return t, err
	}
	markCancelled(t.booking)
	return save(ctx, uow, t, "Subscription cancelled")
}

func (s *webhookService) onSubscriptionDeleted(ctx context.Context, uow unitofwork.UnitOfWork, object json.RawMessage) (*transition, error) {
	var sub dto.SubscriptionObject
	if err := json.Unmarshal(object, &sub); err != nil {
		return nil, fmt.Errorf("%w: malformed subscription", ErrInvalidRequest)
	}

	t, err := lockBookingBySubscription(ctx, uow, sub.Id)
	if err != nil || t.booking == nil {
		return t, err
	}
	markCancelled(t.booking)
	return save(ctx, uow, t, "Subscription deleted")
}

func (s *webhookService) onChargeRefunded(ctx context.Context, uow unitofwork.UnitOfWork, object json.RawMessage) (*transition, error) {
	var charge dto.ChargeObject
	if err := json.Unmarshal(object, &charge); err != nil {
		return nil, fmt.Errorf("%w: malformed charge", ErrInvalidRequest)
	}

	t, err := lockBookingByMetadata(ctx, uow, charge.Metadata)
	if err != nil || t.booking == nil {
		return t, err
	}
	t.booking.PaymentStatus = entity.PaymentStatusRefunded
	return save(ctx, uow, t, "Charge refunded")
}

// MidtransSignature is SHA512(order_id + status_code + gross_amount + server_key), hex encoded.
func MidtransSignature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (s *webhookService) HandleMidtransNotification(ctx context.Context, req *dto.MidtransWebhookRequest) (*dto.WebhookResponse, error) {
	if s.midtransServerKey == "" {
		return nil, fmt.Errorf("midtrans server key not configured")
	}
	expected := MidtransSignature(req.OrderId, req.StatusCode, req.GrossAmount, s.midtransServerKey)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(req.SignatureKey))) {
		s.logger.Warn("WEBHOOK", "Midtrans signature mismatch", map[string]interface{}{"order_id": req.OrderId})
		return nil, ErrInvalidSignature
	}

	var apply func(*entity.Booking)
	var message string
	switch req.TransactionStatus {
	case "capture", "settlement":
		apply, message = markPaid, "Payment settled"
	case "deny", "cancel", "expire":
		apply, message = func(b *entity.Booking) { b.PaymentStatus = entity.PaymentStatusFailed }, "Payment failed"
	case "refund", "partial_refund":
		apply, message = func(b *entity.Booking) { b.PaymentStatus = entity.PaymentStatusRefunded }, "Payment refunded"
	default:
		return &dto.WebhookResponse{Received: true, Message: "Status " + req.TransactionStatus + " needs no action"}, nil
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	event := &entity.WebhookEvent{
		EventId:   "midtrans:" + req.OrderId + ":" + req.TransactionStatus + ":" + req.StatusCode,
		EventType: "midtrans." + req.TransactionStatus,
		Payload:   payload,
	}

	return s.apply(ctx, event, func(ctx context.Context, uow unitofwork.UnitOfWork) (*transition, error) {
		t, err := lockBooking(ctx, uow, strings.ToUpper(strings.TrimSpace(req.OrderId)))
		if err != nil || t.booking == nil {
			return t, err
		}
		apply(t.booking)
		return save(ctx, uow, t, message)
	})
}
