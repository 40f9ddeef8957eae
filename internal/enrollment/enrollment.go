// Package enrollment accepts enrollment form submissions: it validates them,
// appends them to the enrollments sheet and sends the confirmation email.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/trademax/academy-enrollment/internal/counselors"
	"github.com/trademax/academy-enrollment/internal/mailer"
	"github.com/trademax/academy-enrollment/internal/mailing"
	"github.com/trademax/academy-enrollment/internal/pkg/ist"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
	"github.com/trademax/academy-enrollment/internal/pricing"
	"github.com/trademax/academy-enrollment/internal/sheets"
	"github.com/trademax/academy-enrollment/internal/store"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[\d\s-]{10,}$`)
)

// ErrEmailNotConfigured is reported when no sender address is available.
var ErrEmailNotConfigured = errors.New("SMTP is not configured")

// Submission is the enrollment payload. It is forwarded to the sheet webhook
// as JSON, so the field names follow the sheet's columns.
type Submission struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Mode        string `json:"mode"`
	BatchMonth  string `json:"batch_month"`
	TimeSlot    string `json:"time_slot"`
	PaymentMode string `json:"payment_mode"`
	Counselor   string `json:"counselor"`

	CourseName        string `json:"courseName,omitempty"`
	BatchMonthLabel   string `json:"batchMonth,omitempty"`
	TrainingMode      string `json:"trainingMode,omitempty"`
	PaymentModeLabel  string `json:"paymentModeLabel,omitempty"`
	PreferredTimeSlot string `json:"preferredTimeSlot,omitempty"`
	TotalFee          *int   `json:"totalFee,omitempty"`
	DiscountFee       *int   `json:"discountFee,omitempty"`
	FinalFee          *int   `json:"finalFee,omitempty"`

	Timestamp    string `json:"timestamp"`
	EnrollmentID string `json:"enrollmentId"`
}

// ValidationError lists invalid fields by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid enrollment: " + strings.Join(parts, "; ")
}

// Validate checks the fields the sheet and the confirmation email need.
func (s Submission) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(s.Name) == "" {
		fields["name"] = "Full name is required"
	}
	switch email := strings.TrimSpace(s.Email); {
	case email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fields["email"] = "Please enter a valid email address"
	}
	if phone := strings.TrimSpace(s.Mobile); phone != "" && !phonePattern.MatchString(phone) {
		fields["mobile"] = "Please enter a valid phone number"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Result is returned to the form after a successful submission.
type Result struct {
	Message      string   `json:"message"`
	EnrollmentID string   `json:"enrollmentId"`
	RowNumber    *int     `json:"rowNumber,omitempty"`
	TokenNumber  *float64 `json:"tokenNumber,omitempty"`
	EmailSent    bool     `json:"emailSent"`
	EmailError   *string  `json:"emailError"`
}

// Submitter appends rows to the enrollments sheet.
type Submitter interface {
	WebhookConfigured() bool
	Submit(ctx context.Context, payload any) (sheets.SubmitResult, error)
}

// ContentBuilder renders an email.
type ContentBuilder interface {
	Build(p mailing.EmailParams, now time.Time) (mailing.Content, error)
}

// Recorder keeps a relational copy of enrollments.
type Recorder interface {
	InsertEnrollment(ctx context.Context, e store.EnrollmentRecord) error
}

// Deps wires a Service. Sender and Recorder may be nil.
type Deps struct {
	Sheets   Submitter
	Sender   mailer.Sender
	From     string
	Builder  ContentBuilder
	Recorder Recorder
	Now      func() time.Time
	// NewID generates enrollment IDs; defaults to TMA<year><4 digits>.
	NewID func(now time.Time) string
}

// Service handles enrollment submissions.
type Service struct {
	deps Deps
	log  *logger.Logger
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = NewEnrollmentID
	}
	return &Service{deps: deps, log: logger.New("enrollment")}
}

// NewEnrollmentID returns TMA followed by the IST year and four random digits.
func NewEnrollmentID(now time.Time) string {
	return fmt.Sprintf("TMA%d%04d", ist.In(now).Year(), rand.Intn(10000))
}

// Submit validates sub, appends it to the sheet and sends the confirmation.
// Only the sheet append can fail the submission; email and database
// problems are logged and reported in the result.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	if !s.deps.Sheets.WebhookConfigured() {
		return Result{}, sheets.ErrWebhookNotConfigured
	}
	if err := sub.Validate(); err != nil {
		return Result{}, err
	}

	now := s.deps.Now()
	sub = s.fillDefaults(sub, now)

	reply, err := s.deps.Sheets.Submit(ctx, sub)
	if err != nil {
		s.log.Error("sheet submission failed", "enrollment_id", sub.EnrollmentID, "error", err)
		return Result{}, err
	}
	s.log.Info("enrollment submitted", "enrollment_id", sub.EnrollmentID, "email", sub.Email)

	res := Result{
		Message:      "Enrollment data submitted successfully",
		EnrollmentID: sub.EnrollmentID,
		RowNumber:    reply.RowNumber,
		TokenNumber:  reply.TokenNumber,
	}

	if err := s.sendConfirmation(ctx, sub, reply.TokenNumber, now); err != nil {
		msg := err.Error()
		res.EmailError = &msg
		s.log.Warn("confirmation email failed", "enrollment_id", sub.EnrollmentID, "error", err)
	} else {
		res.EmailSent = true
	}

	if s.deps.Recorder != nil {
		rec := store.EnrollmentRecord{
			EnrollmentID:      sub.EnrollmentID,
			FullName:          sub.Name,
			Email:             sub.Email,
			Phone:             sub.Mobile,
			PaymentStatus:     store.PaymentPending,
			PaymentMode:       sub.PaymentMode,
			SelectedCounselor: sub.Counselor,
		}
		if err := s.deps.Recorder.InsertEnrollment(ctx, rec); err != nil {
			s.log.Warn("enrollment record not stored", "enrollment_id", sub.EnrollmentID, "error", err)
		}
	}
	return res, nil
}

func (s *Service) fillDefaults(sub Submission, now time.Time) Submission {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	if sub.EnrollmentID == "" {
		sub.EnrollmentID = s.deps.NewID(now)
	}
	if sub.Timestamp == "" {
		sub.Timestamp = ist.FormatSheet(now)
	}
	if sub.TimeSlot == "" {
		sub.TimeSlot = "N/A"
	}
	sub.Counselor = counselors.Display(sub.Counselor, false)

	// Older form builds post only the raw mode and payment choice.
	if sub.TotalFee == nil && sub.FinalFee == nil {
		selected := sub.Counselor != counselors.NotSelected
		if q, err := pricing.QuoteFor(sub.Mode, sub.PaymentMode, selected, now); err == nil {
			sub.TotalFee, sub.DiscountFee, sub.FinalFee = &q.TotalFee, &q.DiscountFee, &q.FinalFee
			if sub.PaymentModeLabel == "" {
				sub.PaymentModeLabel = q.Label
			}
		}
	}
	return sub
}

func (s *Service) sendConfirmation(ctx context.Context, sub Submission, token *float64, now time.Time) error {
	if s.deps.Sender == nil || s.deps.From == "" {
		return ErrEmailNotConfigured
	}
	counselor := sub.Counselor
	if counselor == "" {
		counselor = mailing.CounselorNotSelected
	}
	content, err := s.deps.Builder.Build(mailing.EmailParams{
		Email:             sub.Email,
		FullName:          sub.Name,
		EnrollmentID:      sub.EnrollmentID,
		Type:              mailing.Confirmation,
		CounselorName:     counselor,
		TokenNumber:       token,
		CourseName:        sub.CourseName,
		BatchMonth:        firstNonEmpty(sub.BatchMonthLabel, sub.BatchMonth),
		TrainingMode:      firstNonEmpty(sub.TrainingMode, sub.Mode),
		PaymentModeLabel:  sub.PaymentModeLabel,
		PreferredTimeSlot: firstNonEmpty(sub.PreferredTimeSlot, sub.TimeSlot),
		TotalFee:          sub.TotalFee,
		DiscountFee:       sub.DiscountFee,
		FinalFee:          sub.FinalFee,
	}, now)
	if err != nil {
		return err
	}
	_, err = s.deps.Sender.Send(ctx, mailer.Message{
		From:    s.deps.From,
		To:      sub.Email,
		Subject: content.Subject,
		HTML:    content.HTML,
	})
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
