package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trademax/academy-enrollment/internal/datanorm"
	"github.com/trademax/academy-enrollment/internal/mailer"
	"github.com/trademax/academy-enrollment/internal/mailing"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
)

var (
	// ErrSourceNotConfigured means no enrollments CSV URL is set.
	ErrSourceNotConfigured = errors.New("ENROLLMENTS_SHEET_CSV_URL is not configured")
	// ErrMailerNotConfigured means there is no transport or sender address.
	ErrMailerNotConfigured = errors.New("SMTP is not configured")
)

// Fetcher downloads CSV text.
type Fetcher interface {
	FetchCSV(ctx context.Context, url string) (string, error)
}

// Marker records that a tier was sent for an enrollment.
type Marker interface {
	MarkReminderSent(ctx context.Context, enrollmentID string, tier mailing.ReminderType) error
}

// ContentBuilder renders an email.
type ContentBuilder interface {
	Build(p mailing.EmailParams, now time.Time) (mailing.Content, error)
}

// Archiver keeps a copy of the CSV a run worked from.
type Archiver interface {
	Archive(ctx context.Context, runID string, at time.Time, csv string) error
}

// Result summarizes one run. Errors is never nil so it encodes as [].
type Result struct {
	RunID       string             `json:"runId"`
	StartedAt   time.Time          `json:"startedAt"`
	FinishedAt  time.Time          `json:"finishedAt"`
	Total       int                `json:"total"`
	Sent        int                `json:"sent"`
	Skipped     int                `json:"skipped"`
	Errors      []string           `json:"errors"`
	SkipReasons map[SkipReason]int `json:"skipReasons,omitempty"`
}

// Deps wires a Dispatcher. Archiver is optional.
type Deps struct {
	SourceURL string
	From      string
	Fetcher   Fetcher
	Sender    mailer.Sender
	Marker    Marker
	Builder   ContentBuilder
	Archiver  Archiver
	Now       func() time.Time
}

// Dispatcher runs the reminder pipeline over the enrollments sheet. Rows are
// processed one at a time in sheet order.
type Dispatcher struct {
	deps Deps
	log  *logger.Logger
}

// NewDispatcher creates a dispatcher. A nil Now uses time.Now.
func NewDispatcher(deps Deps) *Dispatcher {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Dispatcher{deps: deps, log: logger.New("reminder")}
}

// Run fetches the sheet and sends every reminder that is due. A returned
// error means the run aborted before any row was processed; per-row send
// failures are reported in Result.Errors instead.
func (d *Dispatcher) Run(ctx context.Context) (Result, error) {
	now := d.deps.Now()
	res := Result{
		RunID:       uuid.NewString(),
		StartedAt:   now,
		Errors:      []string{},
		SkipReasons: map[SkipReason]int{},
	}
	finish := func(err error) (Result, error) {
		res.FinishedAt = d.deps.Now()
		return res, err
	}

	if strings.TrimSpace(d.deps.SourceURL) == "" {
		return finish(ErrSourceNotConfigured)
	}
	if d.deps.Sender == nil || strings.TrimSpace(d.deps.From) == "" {
		return finish(ErrMailerNotConfigured)
	}

	text, err := d.deps.Fetcher.FetchCSV(ctx, d.deps.SourceURL)
	if err != nil {
		d.log.Error("enrollments fetch failed", "run_id", res.RunID, "error", err)
		return finish(fmt.Errorf("fetch enrollments: %w", err))
	}

	if d.deps.Archiver != nil {
		if err := d.deps.Archiver.Archive(ctx, res.RunID, now, text); err != nil {
			d.log.Warn("csv snapshot failed", "run_id", res.RunID, "error", err)
		}
	}

	rows := datanorm.ParseCSV(text)
	if len(rows) <= 1 {
		return finish(nil)
	}

	header := datanorm.ResolveHeaders(rows[0], datanorm.EnrollmentColumns)
	for _, row := range rows[1:] {
		res.Total++
		e, reject := Normalize(row, header)
		dec := Decide(e, reject, now)
		if !dec.Send {
			res.Skipped++
			res.SkipReasons[dec.Skip]++
			continue
		}

		if err := d.dispatch(ctx, e, dec.Tier, now); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", e.EnrollmentID, err))
			continue
		}
		res.Sent++

		if d.deps.Marker == nil {
			continue
		}
		if err := d.deps.Marker.MarkReminderSent(ctx, e.EnrollmentID, dec.Tier); err != nil {
			d.log.Warn("reminder sent but not marked", "enrollment_id", e.EnrollmentID, "tier", string(dec.Tier), "error", err)
			res.Errors = append(res.Errors, fmt.Sprintf("%s: mark reminder sent: %v", e.EnrollmentID, err))
		}
	}

	d.log.Info("reminder run finished",
		"run_id", res.RunID, "rows", res.Total, "sent", res.Sent,
		"skipped", res.Skipped, "errors", len(res.Errors))
	return finish(nil)
}

func (d *Dispatcher) dispatch(ctx context.Context, e Enrollment, tier mailing.ReminderType, now time.Time) error {
	content, err := d.deps.Builder.Build(e.EmailParams(tier), now)
	if err != nil {
		return err
	}
	receipt, err := d.deps.Sender.Send(ctx, mailer.Message{
		From:    d.deps.From,
		To:      e.Email,
		Subject: content.Subject,
		HTML:    content.HTML,
	})
	if err != nil {
		d.log.Warn("reminder send failed", "enrollment_id", e.EnrollmentID, "tier", string(tier), "error", err)
		return err
	}
	d.log.Info("reminder sent", "enrollment_id", e.EnrollmentID, "tier", string(tier), "email", e.Email, "message_id", receipt.MessageID)
	return nil
}
