// Package app wires configuration into the services shared by the server
// and the one-shot reminder command.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trademax/academy-enrollment/internal/archive"
	"github.com/trademax/academy-enrollment/internal/config"
	"github.com/trademax/academy-enrollment/internal/counselors"
	"github.com/trademax/academy-enrollment/internal/enrollment"
	"github.com/trademax/academy-enrollment/internal/mailer"
	"github.com/trademax/academy-enrollment/internal/mailing"
	"github.com/trademax/academy-enrollment/internal/pkg/distlock"
	"github.com/trademax/academy-enrollment/internal/pkg/httpretry"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
	"github.com/trademax/academy-enrollment/internal/reminder"
	"github.com/trademax/academy-enrollment/internal/sheets"
	"github.com/trademax/academy-enrollment/internal/store"
)

// App holds the wired services. DB, Redis, Store and Sender are nil when
// not configured.
type App struct {
	Config     *config.Config
	DB         *sql.DB
	Redis      *redis.Client
	Store      *store.Store
	Sheets     *sheets.Client
	Sender     mailer.Sender
	Builder    *mailing.Builder
	Job        *reminder.Job
	Enrollment *enrollment.Service
	Counselors *counselors.Directory
}

// New connects the configured backends and builds the services. Optional
// backends that fail to connect are logged and left nil.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	a := &App{Config: cfg}

	builder, err := mailing.NewBuilder()
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	a.Builder = builder

	if cfg.Database.URL != "" {
		db, err := store.Open(ctx, cfg.Database.URL)
		if err != nil {
			log.Printf("WARNING: database unavailable, run history and enrollment records disabled: %v", err)
		} else {
			a.DB = db
			a.Store = store.New(db)
			if err := a.Store.Migrate(ctx); err != nil {
				log.Printf("WARNING: schema migration failed: %v", err)
			}
			log.Println("Connected to PostgreSQL")
		}
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Printf("WARNING: invalid REDIS_URL: %v", err)
		} else {
			client := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := client.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				log.Printf("WARNING: redis unavailable, using database run lock: %v", err)
				client.Close()
			} else {
				a.Redis = client
				log.Println("Connected to Redis")
			}
		}
	}

	sender, err := mailer.New(ctx, cfg.Mail)
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		log.Printf("WARNING: %s mail transport not configured, emails disabled", cfg.Mail.Provider)
	case err != nil:
		return nil, fmt.Errorf("mail transport: %w", err)
	default:
		a.Sender = sender
	}

	// Reminder marks and submissions must not be retried; only the
	// counselor roster read goes through the retrying client.
	a.Sheets = sheets.NewClient(cfg.Sheets)
	rosterClient := sheets.NewClient(cfg.Sheets, sheets.WithRetries(3, httpretry.WithBackoff(500*time.Millisecond, 5*time.Second)))
	a.Counselors = counselors.NewDirectory(cfg.Sheets.CounselorsCSVURL, rosterClient)

	a.Job = a.newJob(ctx)
	a.Enrollment = a.newEnrollmentService()
	return a, nil
}

func (a *App) newJob(ctx context.Context) *reminder.Job {
	cfg := a.Config
	deps := reminder.Deps{
		SourceURL: cfg.Sheets.EnrollmentsCSVURL,
		From:      cfg.Mail.SenderAddress(),
		Fetcher:   a.Sheets,
		Sender:    a.Sender,
		Marker:    a.Sheets,
		Builder:   a.Builder,
	}
	if cfg.Archive.Enabled() {
		arch, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			log.Printf("WARNING: CSV archive disabled: %v", err)
		} else {
			deps.Archiver = arch
		}
	}

	newLock := distlock.NewFactory(a.Redis, a.DB, reminder.LockKey, cfg.Reminders.LockTTL())
	var recorder reminder.RunRecorder
	if a.Store != nil {
		recorder = a.Store
	}
	return reminder.NewJob(reminder.NewDispatcher(deps), newLock, recorder)
}

func (a *App) newEnrollmentService() *enrollment.Service {
	deps := enrollment.Deps{
		Sheets:  a.Sheets,
		Sender:  a.Sender,
		From:    a.Config.Mail.SenderAddress(),
		Builder: a.Builder,
	}
	if a.Store != nil {
		deps.Recorder = a.Store
	}
	return enrollment.NewService(deps)
}

// Close releases backend connections.
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
