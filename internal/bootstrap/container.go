package bootstrap

import (
	"context"
	"fmt"
	"log"

	"cleaning-booking-be/internal/config"
	"cleaning-booking-be/internal/controller"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/internal/pkg/mailer"
	"cleaning-booking-be/internal/pkg/serverutils"
	"cleaning-booking-be/internal/repository/memory"
	"cleaning-booking-be/internal/repository/unitofwork"
	"cleaning-booking-be/internal/service"
	pkgEvents "cleaning-booking-be/pkg/events"
	pktNats "cleaning-booking-be/pkg/nats"
	"cleaning-booking-be/pkg/pricing"
	"cleaning-booking-be/pkg/referral/classifier"
	"cleaning-booking-be/pkg/referral/commission"
	referralEvents "cleaning-booking-be/pkg/referral/events"
	"cleaning-booking-be/pkg/referral/processor"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	BookingController  controller.IBookingController
	ReferralController controller.IReferralController
	WebhookController  controller.IWebhookController
	AdminController    controller.IAdminController

	// Background services, started by main.go
	CommissionConsumer service.ICommissionConsumer
	EventAuditor       service.IEventAuditor

	ReferralService service.IReferralService
	Logger          logger.ILogger

	closers []func()
}

// NewRepositoryFactory picks the storage backend. db is ignored for the
// memory driver, which is seeded with the default level ladder.
func NewRepositoryFactory(ctx context.Context, cfg *config.Config, db *gorm.DB) (unitofwork.RepositoryFactory, error) {
	if cfg.App.StorageDriver == "memory" {
		factory := memory.NewRepositoryFactory(memory.NewStore())
		if _, err := SeedLevels(ctx, factory, DefaultLevels()); err != nil {
			return nil, err
		}
		return factory, nil
	}
	if db == nil {
		return nil, fmt.Errorf("storage driver %q needs a database connection", cfg.App.StorageDriver)
	}
	return unitofwork.NewRepositoryFactory(db), nil
}

func NewProcessor(cfg *config.Config, uowFactory unitofwork.RepositoryFactory, commissionLogger logger.ILogger, notifiers ...processor.Notifier) *processor.Processor {
	opts := processor.DefaultOptions()
	opts.DefaultRate = decimal.NewFromInt(int64(cfg.Referral.DefaultCommissionRate))
	opts.UseCalculator = cfg.Referral.UseCalculator
	opts.ReferralType = commission.ReferralType(cfg.Referral.CalculatorType)
	return processor.New(uowFactory, commissionLogger, opts, notifiers...)
}

func NewContainer(uowFactory unitofwork.RepositoryFactory, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	commissionLogger := logger.NewIsolatedLogger(cfg.App.CommissionLogPath)
	c.Logger = sysLogger

	var emailService mailer.IEmailService
	if cfg.SMTP.Enabled() {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	} else {
		log.Printf("[WARN] SMTP_HOST not set, emails are disabled")
	}

	// 2. Event buses. The in-process channel carries commission jobs; NATS
	// carries domain events to other services when configured.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	var bus pkgEvents.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] NATS publisher: %v", err)
		}
		if natsPub != nil {
			bus = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.EventAuditor = service.NewEventAuditor(natsSub, commissionLogger)
			c.closers = append(c.closers, natsSub.Close)
		}
	}
	eventPublisher := referralEvents.NewBusPublisher(bus, sysLogger)

	// 3. Rate limiting backend
	var counter serverutils.Counter
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		counter = serverutils.NewRedisCounter(rdb)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	validateLimiter := serverutils.RateLimit(counter, "validate-code", cfg.Referral.ValidateRateLimit, cfg.Referral.ValidateRateWindow, sysLogger)

	// 4. Referral engine
	levelCatalog := memory.NewLevelCatalog(uowFactory, cfg.Referral.LevelCacheTTL)
	codeClassifier := classifier.New(uowFactory)

	notifiers := []processor.Notifier{eventPublisher}
	if emailService != nil {
		notifiers = append(notifiers, service.NewCommissionMailer(emailService, cfg.App.ClientURL))
	}
	commissionProcessor := NewProcessor(cfg, uowFactory, commissionLogger, notifiers...)

	dispatcher := service.NewCommissionDispatcher(pubSub, cfg.Referral.CommissionTopic)
	c.CommissionConsumer = service.NewCommissionConsumer(pubSub, cfg.Referral.CommissionTopic, commissionProcessor, commissionLogger)

	// 5. Services
	gateway := service.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.MidtransEnvironment, cfg.App.ClientURL)

	bookingService := service.NewBookingService(service.BookingServiceDeps{
		UowFactory:  uowFactory,
		Rates:       pricing.DefaultRateCard(),
		Classifier:  codeClassifier,
		Gateway:     gateway,
		Publisher:   eventPublisher,
		Dispatcher:  dispatcher,
		Mailer:      emailService,
		Logger:      sysLogger,
		ReferralPct: cfg.Referral.CustomerDiscountPct,
	})
	referralService := service.NewReferralService(
		uowFactory,
		codeClassifier,
		levelCatalog,
		commissionProcessor,
		sysLogger,
		cfg.Referral.CustomerDiscountPct,
	)
	webhookService := service.NewWebhookService(service.WebhookServiceDeps{
		UowFactory:        uowFactory,
		Processor:         commissionProcessor,
		Dispatcher:        dispatcher,
		Publisher:         eventPublisher,
		Logger:            sysLogger,
		GatewaySecret:     cfg.Payment.GatewayWebhookSecret,
		MidtransServerKey: cfg.Payment.MidtransServerKey,
	})
	adminService := service.NewAdminService(cfg.Admin, sysLogger)
	c.ReferralService = referralService

	// 6. Controllers
	c.BookingController = controller.NewBookingController(bookingService)
	c.ReferralController = controller.NewReferralController(referralService, validateLimiter, sysLogger)
	c.WebhookController = controller.NewWebhookController(webhookService)
	c.AdminController = controller.NewAdminController(adminService, bookingService, referralService, cfg.Admin.JWTSecret)

	return c
}

// Close releases bus and cache connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
