package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cleaning-booking-be/internal/bootstrap"
	"cleaning-booking-be/internal/config"
	"cleaning-booking-be/internal/server"
	"cleaning-booking-be/internal/tracer"
	"cleaning-booking-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	var gormDB *gorm.DB
	if cfg.App.StorageDriver != "memory" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.DefaultOptions())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		log.Println("[WARN] STORAGE_DRIVER=memory, data is lost on restart")
	}

	uowFactory, err := bootstrap.NewRepositoryFactory(ctx, cfg, gormDB)
	if err != nil {
		log.Panicf("Unable to prepare storage: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(uowFactory, cfg)
	defer container.Close()

	// 5. Start Background Services
	log.Println("Background: Starting Commission Consumer...")
	if err := container.CommissionConsumer.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}
	if container.EventAuditor != nil {
		if err := container.EventAuditor.Start(ctx); err != nil {
			log.Printf("Event auditor disabled: %v", err)
		}
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
