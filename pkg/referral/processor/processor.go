// Package processor credits referrers for completed, paid bookings. Each
// booking is credited at most once for its initial payment and at most once
// per subscription invoice.
package processor

import (
	"context"
	"errors"
	"fmt"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/pkg/referral/commission"
	"cleaning-booking-be/pkg/referral/progress"

	"github.com/shopspring/decimal"
)

const logModule = "REFERRAL"

// Notifier is told about each commission after its transaction commits.
// Failures are logged and never undo the commission.
type Notifier interface {
	NotifyCommissionEarned(ctx context.Context, c *Commission) error
}

type Options struct {
	// DefaultRate applies when the referrer's level has no percentage.
	DefaultRate decimal.Decimal
	// UseCalculator routes amounts through commission.Calculate, applying
	// multipliers and clamps. Off by default.
	UseCalculator bool
	ReferralType  commission.ReferralType
}

func DefaultOptions() Options {
	return Options{
		DefaultRate:  decimal.NewFromInt(10),
		ReferralType: commission.ReferralTypeStandard,
	}
}

type Processor struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	opts       Options
	notifiers  []Notifier
}

func New(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger, opts Options, notifiers ...Notifier) *Processor {
	return &Processor{
		uowFactory: uowFactory,
		logger:     logger,
		opts:       opts,
		notifiers:  notifiers,
	}
}

// ProcessBooking credits the initial commission for a booking. Declines are
// reported through Result; the error is reserved for storage failures.
func (p *Processor) ProcessBooking(ctx context.Context, bookingCode string) (*Result, error) {
	result, err := p.processBooking(ctx, bookingCode)
	if err != nil {
		p.logger.Error(logModule, "Commission processing failed", map[string]interface{}{
			"booking_code": bookingCode,
			"error":        err.Error(),
		})
		return nil, err
	}
	p.finish(ctx, result)
	return result, nil
}

func (p *Processor) processBooking(ctx context.Context, bookingCode string) (*Result, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	booking, err := uow.BookingRepository().FindByCodeForUpdate(ctx, bookingCode)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return skipped(bookingCode, OutcomeNotFound, "Booking not found"), nil
	}
	if booking.ReferralCode == nil || *booking.ReferralCode == "" {
		return skipped(bookingCode, OutcomeNoReferralCode, "Booking has no referral code"), nil
	}
	if booking.Status != entity.BookingStatusCompleted || booking.PaymentStatus != entity.PaymentStatusPaid {
		return skipped(bookingCode, OutcomeNotEligible, fmt.Sprintf(
			"Booking is not completed and paid (status %s, payment %s)", booking.Status, booking.PaymentStatus)), nil
	}
	if booking.ReferralCommissionCalculated {
		return skipped(bookingCode, OutcomeAlreadyProcessed, "Commission already processed"), nil
	}

	exists, err := uow.ReferralRepository().ExistsInitialForBooking(ctx, booking.Id)
	if err != nil {
		return nil, fmt.Errorf("check existing referral: %w", err)
	}
	if exists {
		return skipped(bookingCode, OutcomeAlreadyProcessed, "Commission already processed"), nil
	}

	referrer, level, err := p.loadReferrer(ctx, uow, *booking.ReferralCode)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return skipped(bookingCode, OutcomeReferrerNotFound, "Referrer not found or inactive"), nil
	}

	referral := &entity.Referral{
		ReferrerId:       referrer.Id,
		BookingId:        booking.Id,
		CustomerName:     booking.CustomerName,
		CustomerEmail:    booking.CustomerEmail,
		BookingValue:     booking.TotalAmount,
		CommissionEarned: p.amount(booking.TotalAmount, level),
		Status:           entity.ReferralStatusPaid,
		PaymentType:      entity.ReferralPaymentInitial,
	}
	if err := uow.ReferralRepository().Create(ctx, referral); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return skipped(bookingCode, OutcomeAlreadyProcessed, "Commission already processed"), nil
		}
		return nil, fmt.Errorf("insert referral: %w", err)
	}

	booking.ReferralCommissionCalculated = true
	booking.ReferredBy = &referrer.Id
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("mark booking processed: %w", err)
	}

	c, err := p.settle(ctx, uow, referrer, level, referral)
	if err != nil {
		return nil, err
	}
	c.BookingCode = booking.BookingCode

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &Result{
		Success:     true,
		Outcome:     OutcomeProcessed,
		Message:     "Commission processed",
		BookingCode: bookingCode,
		Data:        c,
	}, nil
}

// ProcessAllPending runs ProcessBooking for every eligible booking. Bookings
// are independent: a failure is recorded and the batch carries on.
func (p *Processor) ProcessAllPending(ctx context.Context) (*BatchResult, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	bookings, err := uow.BookingRepository().FindPendingCommission(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending bookings: %w", err)
	}

	batch := &BatchResult{Results: make([]*Result, 0, len(bookings))}
	for _, b := range bookings {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		result, err := p.ProcessBooking(ctx, b.BookingCode)
		if err != nil {
			result = &Result{Outcome: OutcomeFailed, Message: err.Error(), BookingCode: b.BookingCode}
		}
		batch.add(result)
	}

	p.logger.Info(logModule, "Pending commissions processed", map[string]interface{}{
		"total":     batch.Total,
		"processed": batch.Processed,
		"skipped":   batch.Skipped,
		"failed":    batch.Failed,
	})
	return batch, nil
}

// ProcessRecurring credits a commission for a paid subscription invoice. The
// invoice id is unique on referrals, so redelivered invoices are declined.
func (p *Processor) ProcessRecurring(ctx context.Context, invoice RecurringInvoice) (*Result, error) {
	result, err := p.processRecurring(ctx, invoice)
	if err != nil {
		p.logger.Error(logModule, "Recurring commission processing failed", map[string]interface{}{
			"invoice_id":      invoice.InvoiceId,
			"subscription_id": invoice.SubscriptionId,
			"error":           err.Error(),
		})
		return nil, err
	}
	p.finish(ctx, result)
	return result, nil
}

func (p *Processor) processRecurring(ctx context.Context, invoice RecurringInvoice) (*Result, error) {
	if invoice.InvoiceId == "" || invoice.SubscriptionId == "" {
		return skipped("", OutcomeNotEligible, "Invoice id and subscription id are required"), nil
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	booking, err := uow.BookingRepository().FindByGatewaySubscriptionId(ctx, invoice.SubscriptionId)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return skipped("", OutcomeNotFound, "No booking for subscription"), nil
	}
	code := booking.BookingCode
	if booking.ReferralCode == nil || *booking.ReferralCode == "" {
		return skipped(code, OutcomeNoReferralCode, "Booking has no referral code"), nil
	}
	// The first invoice of a subscription is covered by the initial commission.
	if !booking.ReferralCommissionCalculated {
		return skipped(code, OutcomeNotEligible, "Initial commission not yet credited"), nil
	}

	referrer, level, err := p.loadReferrer(ctx, uow, *booking.ReferralCode)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return skipped(code, OutcomeReferrerNotFound, "Referrer not found or inactive"), nil
	}

	value := invoice.AmountPaid
	if !value.IsPositive() {
		value = booking.TotalAmount
	}
	invoiceId := invoice.InvoiceId
	referral := &entity.Referral{
		ReferrerId:       referrer.Id,
		BookingId:        booking.Id,
		InvoiceId:        &invoiceId,
		CustomerName:     booking.CustomerName,
		CustomerEmail:    booking.CustomerEmail,
		BookingValue:     value,
		CommissionEarned: p.amount(value, level),
		Status:           entity.ReferralStatusPaid,
		PaymentType:      entity.ReferralPaymentRecurring,
	}
	if err := uow.ReferralRepository().Create(ctx, referral); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return skipped(code, OutcomeAlreadyProcessed, "Invoice already credited"), nil
		}
		return nil, fmt.Errorf("insert referral: %w", err)
	}

	c, err := p.settle(ctx, uow, referrer, level, referral)
	if err != nil {
		return nil, err
	}
	c.BookingCode = code
	c.InvoiceId = invoiceId

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &Result{
		Success:     true,
		Outcome:     OutcomeProcessed,
		Message:     "Recurring commission processed",
		BookingCode: code,
		Data:        c,
	}, nil
}

func (p *Processor) loadReferrer(ctx context.Context, uow unitofwork.UnitOfWork, code string) (*entity.ReferralUser, *entity.ReferralLevel, error) {
	referrer, err := uow.ReferralUserRepository().FindActiveByCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("load referrer: %w", err)
	}
	if referrer == nil || referrer.CurrentLevelId == nil {
		return referrer, nil, nil
	}
	level, err := uow.ReferralLevelRepository().FindById(ctx, *referrer.CurrentLevelId)
	if err != nil {
		return nil, nil, fmt.Errorf("load referrer level: %w", err)
	}
	return referrer, level, nil
}

// amount is the flat level percentage unless UseCalculator is set.
func (p *Processor) amount(value decimal.Decimal, level *entity.ReferralLevel) decimal.Decimal {
	if p.opts.UseCalculator {
		params := commission.ParamsFromLevel(level)
		if params == nil {
			rate := p.opts.DefaultRate
			params = &commission.LevelParams{CommissionType: entity.CommissionTypePercentage, CommissionPercentage: &rate}
		}
		return commission.Calculate(value, params, p.opts.ReferralType)
	}

	rate := p.opts.DefaultRate
	if level != nil && level.CommissionPercentage != nil {
		rate = *level.CommissionPercentage
	}
	return commission.RoundMoney(commission.Percentage(value, rate))
}

// settle recomputes the referrer's totals from their referral rows and moves
// them up a level when the new total crosses into a higher range.
func (p *Processor) settle(ctx context.Context, uow unitofwork.UnitOfWork, referrer *entity.ReferralUser, level *entity.ReferralLevel, referral *entity.Referral) (*Commission, error) {
	totals, err := uow.ReferralRepository().AggregateByReferrer(ctx, referrer.Id)
	if err != nil {
		return nil, fmt.Errorf("aggregate referrer totals: %w", err)
	}
	if err := uow.ReferralUserRepository().UpdateTotals(ctx, referrer.Id, *totals); err != nil {
		return nil, fmt.Errorf("update referrer totals: %w", err)
	}

	c := &Commission{
		ReferralId:       referral.Id,
		ReferrerId:       referrer.Id,
		ReferrerCode:     referrer.ReferralCode,
		ReferrerName:     referrer.Name,
		ReferrerEmail:    referrer.Email,
		BookingId:        referral.BookingId,
		PaymentType:      string(referral.PaymentType),
		BookingValue:     referral.BookingValue,
		CommissionAmount: referral.CommissionEarned,
		TotalEarned:      totals.TotalEarned,
		TotalReferrals:   totals.TotalReferrals,
	}
	if level != nil {
		c.LevelName = level.LevelName
	}

	levels, err := uow.ReferralLevelRepository().FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	target := progress.LevelFor(levels, totals.TotalEarned)
	if target != nil && (level == nil || target.MinEarnings.GreaterThan(level.MinEarnings)) {
		if err := uow.ReferralUserRepository().UpdateLevel(ctx, referrer.Id, target.Id); err != nil {
			return nil, fmt.Errorf("promote referrer: %w", err)
		}
		c.LevelName = target.LevelName
		c.Promoted = level != nil
	}
	return c, nil
}

func (p *Processor) finish(ctx context.Context, result *Result) {
	details := map[string]interface{}{
		"booking_code": result.BookingCode,
		"outcome":      result.Outcome,
	}
	if !result.Success {
		details["message"] = result.Message
		p.logger.Info(logModule, "Commission not applied", details)
		return
	}

	details["referrer_code"] = result.Data.ReferrerCode
	details["amount"] = result.Data.CommissionAmount.StringFixed(2)
	details["payment_type"] = result.Data.PaymentType
	p.logger.Info(logModule, "Commission applied", details)

	for _, n := range p.notifiers {
		if err := n.NotifyCommissionEarned(ctx, result.Data); err != nil {
			p.logger.Warn(logModule, "Commission notification failed", map[string]interface{}{
				"booking_code": result.BookingCode,
				"error":        err.Error(),
			})
		}
	}
}
