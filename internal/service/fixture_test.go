package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/pkg/mailer"
	"cleaning-booking-be/internal/repository/memory"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/pkg/pricing"
	"cleaning-booking-be/pkg/referral/classifier"
	"cleaning-booking-be/pkg/referral/processor"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	err   error
	// during runs while the checkout call is in flight.
	during func(booking *entity.Booking)
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, booking *entity.Booking) (*CheckoutSession, error) {
	g.mu.Lock()
	g.calls++
	err, during := g.err, g.during
	g.mu.Unlock()

	if during != nil {
		during(booking)
	}
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{Token: "snap-" + booking.BookingCode, RedirectURL: "https://pay.example.com/" + booking.BookingCode}, nil
}

type statusChange struct {
	code            string
	previous        entity.BookingStatus
	previousPayment entity.PaymentStatus
	status          entity.BookingStatus
	payment         entity.PaymentStatus
}

type recordingPublisher struct {
	mu          sync.Mutex
	created     []string
	changes     []statusChange
	commissions []*processor.Commission
}

func (p *recordingPublisher) PublishBookingCreated(ctx context.Context, booking *entity.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, booking.BookingCode)
}

func (p *recordingPublisher) PublishBookingStatusChanged(ctx context.Context, booking *entity.Booking, previous entity.BookingStatus, previousPayment entity.PaymentStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, statusChange{
		code:            booking.BookingCode,
		previous:        previous,
		previousPayment: previousPayment,
		status:          booking.Status,
		payment:         booking.PaymentStatus,
	})
}

func (p *recordingPublisher) NotifyCommissionEarned(ctx context.Context, c *processor.Commission) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commissions = append(p.commissions, c)
	return nil
}

func (p *recordingPublisher) changeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.changes)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, bookingCode string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codes = append(d.codes, bookingCode)
	return d.err
}

func (d *recordingDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.codes...)
}

type fakeMailer struct {
	mu          sync.Mutex
	bookings    []mailer.BookingEmail
	commissions []mailer.CommissionEmail
	recipients  []string
	err         error
}

func (m *fakeMailer) SendCommissionEarned(toEmail string, data mailer.CommissionEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients = append(m.recipients, toEmail)
	m.commissions = append(m.commissions, data)
	return m.err
}

func (m *fakeMailer) SendBookingConfirmation(toEmail string, data mailer.BookingEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients = append(m.recipients, toEmail)
	m.bookings = append(m.bookings, data)
	return m.err
}

type serviceFixture struct {
	store      *memory.Store
	factory    unitofwork.RepositoryFactory
	levels     []*entity.ReferralLevel
	referrer   *entity.ReferralUser
	catalog    *memory.LevelCatalog
	classifier *classifier.Classifier
	processor  *processor.Processor
	gateway    *fakeGateway
	publisher  *recordingPublisher
	dispatcher *recordingDispatcher
	mailer     *fakeMailer
	log        logger.ILogger
}

// newServiceFixture seeds Bronze (0-500, 10%), Silver (500-2000, 15%) and
// Gold (2000+, 20%), referrer JANE1234 on Bronze, and promo codes SUMMER10
// (10%) and FLAT25 (25 off).
func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	uow := factory.NewUnitOfWork(ctx)

	levels := []*entity.ReferralLevel{
		{LevelName: "Bronze", MinEarnings: dec("0"), MaxEarnings: decPtr("500"), CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("10"), SortOrder: 1, IsActive: true},
		{LevelName: "Silver", MinEarnings: dec("500"), MaxEarnings: decPtr("2000"), CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("15"), SortOrder: 2, IsActive: true},
		{LevelName: "Gold", MinEarnings: dec("2000"), CommissionType: entity.CommissionTypePercentage, CommissionPercentage: decPtr("20"), SortOrder: 3, IsActive: true},
	}
	for _, l := range levels {
		require.NoError(t, uow.ReferralLevelRepository().Create(ctx, l))
	}

	referrer := &entity.ReferralUser{
		ReferralCode:   "JANE1234",
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		CurrentLevelId: &levels[0].Id,
		IsActive:       true,
	}
	require.NoError(t, uow.ReferralUserRepository().Create(ctx, referrer))

	require.NoError(t, uow.PromoCodeRepository().Create(ctx, &entity.PromoCode{Code: "SUMMER10", DiscountPercentage: decPtr("10"), IsActive: true}))
	require.NoError(t, uow.PromoCodeRepository().Create(ctx, &entity.PromoCode{Code: "FLAT25", DiscountAmount: decPtr("25"), IsActive: true}))

	log := logger.NewNopLogger()
	publisher := &recordingPublisher{}
	return &serviceFixture{
		store:      store,
		factory:    factory,
		levels:     levels,
		referrer:   referrer,
		catalog:    memory.NewLevelCatalog(factory, time.Minute),
		classifier: classifier.New(factory),
		processor:  processor.New(factory, log, processor.DefaultOptions(), publisher),
		gateway:    &fakeGateway{},
		publisher:  publisher,
		dispatcher: &recordingDispatcher{},
		mailer:     &fakeMailer{},
		log:        log,
	}
}

func (f *serviceFixture) bookingService() IBookingService {
	return NewBookingService(BookingServiceDeps{
		UowFactory:  f.factory,
		Rates:       pricing.DefaultRateCard(),
		Classifier:  f.classifier,
		Gateway:     f.gateway,
		Publisher:   f.publisher,
		Dispatcher:  f.dispatcher,
		Mailer:      f.mailer,
		Logger:      f.log,
		ReferralPct: 10,
	})
}

func (f *serviceFixture) referralService() IReferralService {
	return NewReferralService(f.factory, f.classifier, f.catalog, f.processor, f.log, 10)
}

func (f *serviceFixture) webhookService(secret, serverKey string) IWebhookService {
	return NewWebhookService(WebhookServiceDeps{
		UowFactory:        f.factory,
		Processor:         f.processor,
		Dispatcher:        f.dispatcher,
		Publisher:         f.publisher,
		Logger:            f.log,
		GatewaySecret:     secret,
		MidtransServerKey: serverKey,
	})
}

// seedBooking stores a pending, unpaid booking referred by JANE1234 with a
// total of 1000.
func (f *serviceFixture) seedBooking(t *testing.T, code string, mutate ...func(*entity.Booking)) *entity.Booking {
	t.Helper()
	ref := f.referrer.ReferralCode
	b := &entity.Booking{
		BookingCode:   code,
		CustomerName:  "Customer " + code,
		CustomerEmail: "customer@example.com",
		ServiceType:   "standard",
		Frequency:     entity.FrequencyOneTime,
		ScheduledDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		BasePrice:     dec("1000"),
		TotalAmount:   dec("1000"),
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
		ReferralCode:  &ref,
	}
	for _, m := range mutate {
		m(b)
	}
	require.NoError(t, f.factory.NewUnitOfWork(context.Background()).BookingRepository().Create(context.Background(), b))
	return b
}

func (f *serviceFixture) reload(t *testing.T, code string) *entity.Booking {
	t.Helper()
	b, err := f.factory.NewUnitOfWork(context.Background()).BookingRepository().FindByCode(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

func completedAndPaid(b *entity.Booking) {
	b.Status = entity.BookingStatusCompleted
	b.PaymentStatus = entity.PaymentStatusPaid
}
