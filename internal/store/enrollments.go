package store

import (
	"context"
	"fmt"
)

// Payment statuses accepted by UpdatePaymentStatus.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// PaymentStatuses lists the valid payment statuses.
var PaymentStatuses = []string{PaymentPending, PaymentCompleted, PaymentFailed}

// EnrollmentRecord is the relational copy of a submitted enrollment.
type EnrollmentRecord struct {
	EnrollmentID      string
	FullName          string
	Email             string
	Phone             string
	PaymentStatus     string
	PaymentMode       string
	SelectedCounselor string
}

// InsertEnrollment stores a submission. Re-submitting an ID is a no-op.
func (s *Store) InsertEnrollment(ctx context.Context, e EnrollmentRecord) error {
	status := e.PaymentStatus
	if status == "" {
		status = PaymentPending
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrollments (enrollment_id, full_name, email, phone, payment_status, payment_mode, selected_counselor)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (enrollment_id) DO NOTHING
	`, e.EnrollmentID, e.FullName, e.Email, e.Phone, status, e.PaymentMode, e.SelectedCounselor)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// UpdatePaymentStatus sets the payment status of an enrollment.
func (s *Store) UpdatePaymentStatus(ctx context.Context, enrollmentID, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE enrollments SET payment_status = $2, updated_at = NOW()
		WHERE enrollment_id = $1
	`, enrollmentID, status)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func validStatus(s string) bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}
