package api

import (
	"context"
	"time"

	"github.com/trademax/academy-enrollment/internal/counselors"
	"github.com/trademax/academy-enrollment/internal/enrollment"
	"github.com/trademax/academy-enrollment/internal/mailer"
	"github.com/trademax/academy-enrollment/internal/mailing"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
	"github.com/trademax/academy-enrollment/internal/reminder"
	"github.com/trademax/academy-enrollment/internal/store"
)

// ReminderRunner runs one reminder pass.
type ReminderRunner interface {
	Run(ctx context.Context) (reminder.Result, error)
}

// RunHistory lists past reminder runs.
type RunHistory interface {
	RecentRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// PaymentUpdater changes an enrollment's payment status.
type PaymentUpdater interface {
	UpdatePaymentStatus(ctx context.Context, enrollmentID, status string) error
}

// EnrollmentSubmitter accepts enrollment form submissions.
type EnrollmentSubmitter interface {
	Submit(ctx context.Context, sub enrollment.Submission) (enrollment.Result, error)
}

// CounselorLister lists counselors and reports their source.
type CounselorLister interface {
	List(ctx context.Context) ([]counselors.Counselor, string, error)
}

// ContentBuilder renders an email.
type ContentBuilder interface {
	Build(p mailing.EmailParams, now time.Time) (mailing.Content, error)
}

// Deps wires Handlers. Runs and Payments are nil without a database.
type Deps struct {
	Reminders  ReminderRunner
	Runs       RunHistory
	Payments   PaymentUpdater
	Enrollment EnrollmentSubmitter
	Counselors CounselorLister
	Builder    ContentBuilder
	Sender     mailer.Sender
	From       string
	CronSecret string
	Now        func() time.Time
}

// Handlers serves the enrollment API.
type Handlers struct {
	deps Deps
	log  *logger.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(deps Deps) *Handlers {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handlers{deps: deps, log: logger.New("api")}
}
