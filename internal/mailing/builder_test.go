package mailing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder()
	require.NoError(t, err)
	return b
}

// 2026-03-01 06:00 UTC is 11:30 IST the same day.
var testNow = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func TestParseReminderType(t *testing.T) {
	for _, rt := range AllReminderTypes {
		got, err := ParseReminderType(string(rt))
		require.NoError(t, err)
		assert.Equal(t, rt, got)
	}

	for _, bad := range []string{"", "Day5", "day11", "reminder"} {
		_, err := ParseReminderType(bad)
		assert.True(t, errors.Is(err, ErrUnknownReminderType), bad)
	}
}

func TestBuild_Subjects(t *testing.T) {
	b := newTestBuilder(t)

	want := map[ReminderType]string{
		Confirmation: "✅ TradeMax Academy Pre-Booking Confirmation",
		Day5:         "⏳ Reminder: Payment Due in 5 Days - TradeMax Academy",
		Day9:         "⚠️ Reminder: Payment Due Tomorrow - TradeMax Academy",
		Day10:        "🚨 FINAL REMINDER: Payment Deadline TODAY - TradeMax Academy",
		Expiry:       "✅ Enrollment Expired - TradeMax Academy",
	}
	for rt, subject := range want {
		t.Run(string(rt), func(t *testing.T) {
			c, err := b.Build(EmailParams{FullName: "Asha", EnrollmentID: "TMA20261234", Type: rt}, testNow)
			require.NoError(t, err)
			assert.Equal(t, subject, c.Subject)
			assert.Contains(t, c.HTML, "Dear Asha,")
			assert.Contains(t, c.HTML, "© 2026 TradeMax Academy. All rights reserved.")
		})
	}
}

func TestBuild_UnknownTypeFails(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: "day11"}, testNow)
	assert.ErrorIs(t, err, ErrUnknownReminderType)
}

func TestBuild_DeadlineIsTenDaysOutInIST(t *testing.T) {
	b := newTestBuilder(t)

	// 20:00 UTC on Feb 28 is already Mar 1 in IST.
	now := time.Date(2026, 2, 28, 20, 0, 0, 0, time.UTC)
	c, err := b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Day5}, now)
	require.NoError(t, err)
	assert.Contains(t, c.HTML, "March 11, 2026")
}

func TestBuild_CounselorFallback(t *testing.T) {
	b := newTestBuilder(t)

	c, err := b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Day9, CounselorName: "  "}, testNow)
	require.NoError(t, err)
	assert.Contains(t, c.HTML, CounselorNotSelected)

	c, err = b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Day9, CounselorName: "Priya Sharma"}, testNow)
	require.NoError(t, err)
	assert.Contains(t, c.HTML, "Priya Sharma")
	assert.NotContains(t, c.HTML, CounselorNotSelected)
}

func TestBuild_TokenNumberOptional(t *testing.T) {
	b := newTestBuilder(t)

	c, err := b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Confirmation, TokenNumber: floatPtr(42)}, testNow)
	require.NoError(t, err)
	assert.Contains(t, c.HTML, "Your Token Number: #42<")

	c, err = b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Day5, TokenNumber: floatPtr(12.5)}, testNow)
	require.NoError(t, err)
	assert.Contains(t, c.HTML, "Your Token Number: #12.5<")

	c, err = b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Confirmation}, testNow)
	require.NoError(t, err)
	assert.NotContains(t, c.HTML, "Your Token Number")
}

func TestBuild_ConfirmationDetails(t *testing.T) {
	b := newTestBuilder(t)

	c, err := b.Build(EmailParams{
		FullName:         "Asha",
		EnrollmentID:     "TMA20261234",
		Type:             Confirmation,
		CourseName:       "Offline Trading Program",
		TrainingMode:     "offline",
		PaymentModeLabel: "Full Payment",
		TotalFee:         intPtr(47000),
		DiscountFee:      intPtr(17000),
		FinalFee:         intPtr(30000),
	}, testNow)
	require.NoError(t, err)

	assert.Contains(t, c.HTML, "Offline Trading Program")
	assert.Contains(t, c.HTML, "₹47,000")
	assert.Contains(t, c.HTML, "₹17,000")
	assert.Contains(t, c.HTML, "₹30,000")
	// Batch and time slot were left blank.
	assert.Contains(t, c.HTML, "Batch: <strong>Not specified</strong>")
	assert.Contains(t, c.HTML, "Preferred Time Slot: <strong>Not specified</strong>")
}

func TestBuild_FeesDefaultIndependently(t *testing.T) {
	b := newTestBuilder(t)

	c, err := b.Build(EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Confirmation, FinalFee: intPtr(12000)}, testNow)
	require.NoError(t, err)
	assert.Contains(t, c.HTML, "Total Fee: <strong>Not specified</strong>")
	assert.Contains(t, c.HTML, "Counselor Discount: <strong>Not specified</strong>")
	assert.Contains(t, c.HTML, "Final Fee: <strong>₹12,000</strong>")
}

func TestBuild_EscapesUserInput(t *testing.T) {
	b := newTestBuilder(t)

	c, err := b.Build(EmailParams{FullName: `<script>alert("x")</script>`, EnrollmentID: "X&Y", Type: Day10}, testNow)
	require.NoError(t, err)
	assert.NotContains(t, c.HTML, "<script>")
	assert.Contains(t, c.HTML, "&lt;script&gt;")
	assert.Contains(t, c.HTML, "X&amp;Y")
}

func TestBuild_Deterministic(t *testing.T) {
	b := newTestBuilder(t)
	p := EmailParams{FullName: "Asha", EnrollmentID: "X", Type: Expiry, CounselorName: "Amit Patel"}

	first, err := b.Build(p, testNow)
	require.NoError(t, err)
	second, err := b.Build(p, testNow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNumberWithDelimiter(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		47000:    "47,000",
		1234567:  "1,234,567",
		-23500:   "-23,500",
	}
	for n, want := range tests {
		assert.Equal(t, want, NumberWithDelimiter(n))
	}
}
