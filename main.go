package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"academy/config"
	"academy/database"
	"academy/mailer"
	"academy/payments"
	"academy/routers"
	"academy/scheduler"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sender, err := mailer.NewSender(cfg)
	if err != nil {
		log.Fatalf("Failed to configure mailer: %v", err)
	}

	app := routers.NewApp(routers.Deps{
		Config:   cfg,
		DB:       db,
		Notifier: mailer.NewNotifier(sender, cfg.AppURL),
		Payments: payments.NewClient(cfg, nil),
	})

	jobs, err := scheduler.Start(db, cfg.WebhookEventRetention)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		<-jobs.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
