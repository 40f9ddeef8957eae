package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trademax/academy-enrollment/internal/api"
	"github.com/trademax/academy-enrollment/internal/app"
	"github.com/trademax/academy-enrollment/internal/config"
)

// checkPortAvailable fails fast when something already listens on addr.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s is already in use: %v", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config/config.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	deps := api.Deps{
		Reminders:  a.Job,
		Enrollment: a.Enrollment,
		Counselors: a.Counselors,
		Builder:    a.Builder,
		Sender:     a.Sender,
		From:       cfg.Mail.SenderAddress(),
		CronSecret: cfg.Reminders.CronSecret,
	}
	if a.Store != nil {
		deps.Runs = a.Store
		deps.Payments = a.Store
	}
	router := api.SetupRoutes(api.NewHandlers(deps), api.NewHealthChecker(a.DB, a.Redis), cfg.Server.AllowedOrigins)

	if interval := cfg.Reminders.Interval(); interval > 0 {
		go a.Job.Start(ctx, interval)
		log.Printf("Reminder scheduler running every %s", interval)
	} else {
		log.Println("Reminder scheduler disabled; trigger POST /api/schedule-reminders from cron")
	}

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatal(err)
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Reminder runs are synchronous and may take minutes on large sheets.
		WriteTimeout: 10 * time.Minute,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
