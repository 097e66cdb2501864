// Command commission credits referrers for completed, paid bookings that
// the webhook path missed. Safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cleaning-booking-be/internal/bootstrap"
	"cleaning-booking-be/internal/config"
	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/pkg/database"
	pkgEvents "cleaning-booking-be/pkg/events"
	pktNats "cleaning-booking-be/pkg/nats"
	referralEvents "cleaning-booking-be/pkg/referral/events"
	"cleaning-booking-be/pkg/referral/processor"

	"github.com/fatih/color"
)

func main() {
	bookingCode := flag.String("booking", "", "process a single booking code instead of the pending batch")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.StorageDriver == "memory" {
		color.Red("The commission runner needs STORAGE_DRIVER=postgres")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.DefaultOptions())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	ctx := context.Background()

	uowFactory, err := bootstrap.NewRepositoryFactory(ctx, cfg, db)
	if err != nil {
		log.Fatal(err)
	}

	commissionLogger := logger.NewIsolatedLogger(cfg.App.CommissionLogPath)
	defer commissionLogger.Sync()

	var bus pkgEvents.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if natsPub != nil {
			if err != nil {
				color.Yellow("NATS stream not ready: %v", err)
			}
			bus = natsPub
			defer natsPub.Close()
		} else {
			color.Yellow("NATS unavailable, commission events will not be published: %v", err)
		}
	}
	p := bootstrap.NewProcessor(cfg, uowFactory, commissionLogger, referralEvents.NewBusPublisher(bus, commissionLogger))

	if *bookingCode != "" {
		result, err := p.ProcessBooking(ctx, *bookingCode)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		printResult(result)
		return
	}

	color.Cyan("Processing pending referral commissions...\n")
	batch, err := p.ProcessAllPending(ctx)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	for _, r := range batch.Results {
		printResult(r)
	}

	color.Cyan("\nTotal: %d  Processed: %d  Skipped: %d  Failed: %d",
		batch.Total, batch.Processed, batch.Skipped, batch.Failed)
	if batch.Failed > 0 {
		os.Exit(2)
	}
}

func printResult(r *processor.Result) {
	switch {
	case r.Success && r.Data != nil:
		color.Green("[%s] %s: %s credited to %s",
			r.BookingCode, r.Outcome, r.Data.CommissionAmount.StringFixed(2), r.Data.ReferrerCode)
	case r.Outcome == processor.OutcomeFailed:
		color.Red("[%s] %s: %s", r.BookingCode, r.Outcome, r.Message)
	default:
		color.Yellow("[%s] %s: %s", r.BookingCode, r.Outcome, r.Message)
	}
}
