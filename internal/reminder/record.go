// Package reminder decides which unpaid enrollments are due a payment
// reminder and sends them.
package reminder

import (
	"math"
	"strconv"
	"time"

	"github.com/trademax/academy-enrollment/internal/datanorm"
	"github.com/trademax/academy-enrollment/internal/mailing"
)

// RejectReason says why a row could not be normalized.
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectMissingField RejectReason = "missing_field"
	RejectBadTimestamp RejectReason = "bad_timestamp"
)

// SentFlags records which reminder tiers the sheet already marks as sent.
type SentFlags struct {
	Day5   bool `json:"day5"`
	Day9   bool `json:"day9"`
	Day10  bool `json:"day10"`
	Expiry bool `json:"expiry"`
}

// Has reports whether tier is already marked. Confirmation is never tracked
// in the sheet.
func (f SentFlags) Has(tier mailing.ReminderType) bool {
	switch tier {
	case mailing.Day5:
		return f.Day5
	case mailing.Day9:
		return f.Day9
	case mailing.Day10:
		return f.Day10
	case mailing.Expiry:
		return f.Expiry
	}
	return false
}

// Enrollment is one sheet row after normalization.
type Enrollment struct {
	Email         string
	FullName      string
	EnrollmentID  string
	TimestampRaw  string
	EnrolledAt    time.Time
	PaymentStatus string
	Paid          bool
	CounselorName string
	TokenNumber   *float64
	Sent          SentFlags
}

// Normalize builds an Enrollment from a CSV row. Rows missing email, name,
// enrollment id or a parsable timestamp are rejected.
func Normalize(row []string, hm datanorm.HeaderMap) (Enrollment, RejectReason) {
	e := Enrollment{
		Email:         hm.Value(row, datanorm.FieldEmail),
		FullName:      hm.Value(row, datanorm.FieldFullName),
		EnrollmentID:  hm.Value(row, datanorm.FieldEnrollmentID),
		TimestampRaw:  hm.Value(row, datanorm.FieldTimestamp),
		PaymentStatus: hm.Value(row, datanorm.FieldPaymentStatus),
		CounselorName: hm.Value(row, datanorm.FieldCounselor),
		TokenNumber:   parseToken(hm.Value(row, datanorm.FieldTokenNumber)),
		Sent: SentFlags{
			Day5:   datanorm.IsTruthy(hm.Value(row, datanorm.FieldDay5Sent)),
			Day9:   datanorm.IsTruthy(hm.Value(row, datanorm.FieldDay9Sent)),
			Day10:  datanorm.IsTruthy(hm.Value(row, datanorm.FieldDay10Sent)),
			Expiry: datanorm.IsTruthy(hm.Value(row, datanorm.FieldExpirySent)),
		},
	}
	e.Paid = datanorm.IsPaid(e.PaymentStatus)
	if e.CounselorName == "" {
		e.CounselorName = mailing.CounselorNotSelected
	}

	if e.Email == "" || e.FullName == "" || e.EnrollmentID == "" || e.TimestampRaw == "" {
		return e, RejectMissingField
	}
	at, ok := ParseTimestamp(e.TimestampRaw)
	if !ok {
		return e, RejectBadTimestamp
	}
	e.EnrolledAt = at
	return e, RejectNone
}

// parseToken reads any finite number. Non-numeric text is treated as absent.
func parseToken(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// EmailParams returns the template inputs for tier.
func (e Enrollment) EmailParams(tier mailing.ReminderType) mailing.EmailParams {
	return mailing.EmailParams{
		Email:         e.Email,
		FullName:      e.FullName,
		EnrollmentID:  e.EnrollmentID,
		Type:          tier,
		CounselorName: e.CounselorName,
		TokenNumber:   e.TokenNumber,
	}
}
