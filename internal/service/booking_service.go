package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cleaning-booking-be/internal/dto"
	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/pkg/mailer"
	"cleaning-booking-be/internal/repository/contract"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/pkg/pricing"
	"cleaning-booking-be/pkg/referral/classifier"
	referralEvents "cleaning-booking-be/pkg/referral/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	dateLayout           = "2006-01-02"
	bookingCodeAttempts  = 5
	defaultBookingsLimit = 20
)

var allowedTransitions = map[entity.BookingStatus][]entity.BookingStatus{
	entity.BookingStatusPending:    {entity.BookingStatusConfirmed, entity.BookingStatusCancelled},
	entity.BookingStatusConfirmed:  {entity.BookingStatusInProgress, entity.BookingStatusCompleted, entity.BookingStatusCancelled},
	entity.BookingStatusInProgress: {entity.BookingStatusCompleted, entity.BookingStatusCancelled},
}

func canTransition(from, to entity.BookingStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type IBookingService interface {
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, code string) (*dto.BookingResponse, error)
	Checkout(ctx context.Context, code string) (*dto.CheckoutResponse, error)
	UpdateStatus(ctx context.Context, code string, status entity.BookingStatus) (*dto.BookingResponse, error)
	ListBookings(ctx context.Context, req *dto.BookingListRequest) ([]*dto.BookingResponse, error)
}

type bookingService struct {
	uowFactory  unitofwork.RepositoryFactory
	rates       *pricing.RateCard
	classifier  *classifier.Classifier
	gateway     PaymentGateway
	publisher   referralEvents.Publisher
	dispatcher  CommissionDispatcher
	mailer      mailer.IEmailService
	logger      logger.ILogger
	referralPct decimal.Decimal
}

type BookingServiceDeps struct {
	UowFactory  unitofwork.RepositoryFactory
	Rates       *pricing.RateCard
	Classifier  *classifier.Classifier
	Gateway     PaymentGateway
	Publisher   referralEvents.Publisher
	Dispatcher  CommissionDispatcher
	Mailer      mailer.IEmailService
	Logger      logger.ILogger
	ReferralPct int
}

func NewBookingService(deps BookingServiceDeps) IBookingService {
	return &bookingService{
		uowFactory:  deps.UowFactory,
		rates:       deps.Rates,
		classifier:  deps.Classifier,
		gateway:     deps.Gateway,
		publisher:   deps.Publisher,
		dispatcher:  deps.Dispatcher,
		mailer:      deps.Mailer,
		logger:      deps.Logger,
		referralPct: decimal.NewFromInt(int64(deps.ReferralPct)),
	}
}

func newBookingCode() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *bookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	scheduled, err := time.Parse(dateLayout, req.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled_date must be YYYY-MM-DD", ErrInvalidRequest)
	}

	frequency := entity.BookingFrequency(req.Frequency)
	quote, err := s.rates.Quote(pricing.Request{
		ServiceType: req.ServiceType,
		Frequency:   frequency,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Extras:      req.Extras,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	booking := &entity.Booking{
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		Address:        strings.TrimSpace(req.Address),
		ServiceType:    req.ServiceType,
		Frequency:      frequency,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		Extras:         req.Extras,
		ScheduledDate:  scheduled,
		ScheduledTime:  req.ScheduledTime,
		BasePrice:      quote.BasePrice,
		ExtrasPrice:    quote.ExtrasPrice,
		DiscountAmount: quote.FrequencyDiscount,
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.PaymentStatusPending,
	}

	if strings.TrimSpace(req.Code) != "" {
		codeDiscount, err := s.applyCode(ctx, booking, req.Code, quote.Subtotal)
		if err != nil {
			return nil, err
		}
		booking.DiscountAmount = booking.DiscountAmount.Add(codeDiscount)
	}

	gross := booking.BasePrice.Add(booking.ExtrasPrice)
	if booking.DiscountAmount.GreaterThan(gross) {
		booking.DiscountAmount = gross
	}
	booking.TotalAmount = gross.Sub(booking.DiscountAmount).Round(2)

	if err := s.insertWithUniqueCode(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("BOOKING", "Booking created", map[string]interface{}{
		"booking_code": booking.BookingCode,
		"total":        money(booking.TotalAmount),
		"code":         req.Code,
	})
	s.publisher.PublishBookingCreated(ctx, booking)
	if s.mailer != nil {
		err := s.mailer.SendBookingConfirmation(booking.CustomerEmail, mailer.BookingEmail{
			CustomerName:  booking.CustomerName,
			BookingCode:   booking.BookingCode,
			ScheduledDate: req.ScheduledDate,
			ScheduledTime: booking.ScheduledTime,
			TotalAmount:   money(booking.TotalAmount),
		})
		if err != nil {
			s.logger.Warn("BOOKING", "Booking confirmation email failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return toBookingResponse(booking), nil
}

// applyCode attaches a stored referral or promo code to the booking and
// returns the discount it grants on subtotal. Codes that only look valid are
// rejected.
func (s *bookingService) applyCode(ctx context.Context, booking *entity.Booking, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	result, err := s.classifier.Classify(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if !result.Authoritative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidCode, result.Code)
	}

	switch result.Type {
	case classifier.TypeReferral:
		if strings.EqualFold(result.Referrer.Email, booking.CustomerEmail) {
			return decimal.Zero, fmt.Errorf("%w: referrers cannot use their own code", ErrInvalidCode)
		}
		referralCode := result.Referrer.ReferralCode
		booking.ReferralCode = &referralCode
		return subtotal.Mul(s.referralPct).Div(decimal.NewFromInt(100)).Round(2), nil
	case classifier.TypePromo:
		promoCode := result.Promo.Code
		booking.PromoCode = &promoCode
		return result.Promo.Discount(subtotal), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidCode, result.Code)
}

func (s *bookingService) insertWithUniqueCode(ctx context.Context, booking *entity.Booking) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	for attempt := 0; attempt < bookingCodeAttempts; attempt++ {
		booking.BookingCode = newBookingCode()
		err := uow.BookingRepository().Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, contract.ErrDuplicate) {
			return fmt.Errorf("create booking: %w", err)
		}
	}
	return fmt.Errorf("create booking: no free booking code after %d attempts", bookingCodeAttempts)
}

func (s *bookingService) findByCode(ctx context.Context, code string) (*entity.Booking, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	booking, err := uow.BookingRepository().FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, code string) (*dto.BookingResponse, error) {
	booking, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toBookingResponse(booking), nil
}

func (s *bookingService) Checkout(ctx context.Context, code string) (*dto.CheckoutResponse, error) {
	booking, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == entity.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking is cancelled", ErrInvalidTransition)
	}

	session, err := s.gateway.CreateCheckout(ctx, booking)
	if err != nil {
		return nil, err
	}

	// The gateway call is slow and a webhook may settle the booking meanwhile,
	// so only the session column is written.
	if err := s.uowFactory.NewUnitOfWork(ctx).BookingRepository().UpdateGatewaySession(ctx, booking.Id, session.Token); err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		BookingCode:     booking.BookingCode,
		SnapToken:       session.Token,
		SnapRedirectUrl: session.RedirectURL,
	}, nil
}

// UpdateStatus is the admin-driven status change. Completing a paid booking
// queues its referral commission.
func (s *bookingService) UpdateStatus(ctx context.Context, code string, status entity.BookingStatus) (*dto.BookingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	booking, err := uow.BookingRepository().FindByCodeForUpdate(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !canTransition(booking.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, booking.Status, status)
	}

	previous := booking.Status
	booking.Status = status
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("BOOKING", "Booking status updated", map[string]interface{}{
		"booking_code": booking.BookingCode,
		"from":         previous,
		"to":           status,
	})
	s.publisher.PublishBookingStatusChanged(ctx, booking, previous, booking.PaymentStatus)
	dispatchIfEligible(ctx, s.dispatcher, s.logger, booking)

	return toBookingResponse(booking), nil
}

func (s *bookingService) ListBookings(ctx context.Context, req *dto.BookingListRequest) ([]*dto.BookingResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultBookingsLimit
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	filter := contract.BookingFilter{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}
	if req.From != "" {
		from, err := time.Parse(dateLayout, req.From)
		if err != nil {
			return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidRequest)
		}
		filter.From = from
	}
	if req.To != "" {
		to, err := time.Parse(dateLayout, req.To)
		if err != nil {
			return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidRequest)
		}
		filter.To = to
	}

	bookings, err := s.uowFactory.NewUnitOfWork(ctx).BookingRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		res = append(res, toBookingResponse(b))
	}
	return res, nil
}

// dispatchIfEligible queues commission processing. Dispatch failures are
// logged only; the batch run catches anything missed.
func dispatchIfEligible(ctx context.Context, dispatcher CommissionDispatcher, log logger.ILogger, booking *entity.Booking) {
	if dispatcher == nil || !booking.EligibleForCommission() {
		return
	}
	if err := dispatcher.Dispatch(ctx, booking.BookingCode); err != nil {
		log.Warn("COMMISSION", "Failed to queue commission", map[string]interface{}{
			"booking_code": booking.BookingCode,
			"error":        err.Error(),
		})
	}
}
