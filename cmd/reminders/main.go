// Command reminders runs one reminder pass and prints the result as JSON.
// It exits non-zero when the run aborts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trademax/academy-enrollment/internal/app"
	"github.com/trademax/academy-enrollment/internal/config"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	res, runErr := a.Job.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Printf("encode result: %v", err)
	}
	if runErr != nil {
		a.Close()
		log.Fatalf("Reminder run failed: %v", runErr)
	}
}
