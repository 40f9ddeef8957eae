// Package mailing builds the enrollment lifecycle emails: one pre-booking
// confirmation and four payment reminders, rendered from Liquid templates.
package mailing

import (
	"errors"
	"fmt"
	"strings"
)

// ReminderType is the lifecycle stage an email belongs to. The string values
// are the ones exchanged with the spreadsheet webhook and the HTTP API.
type ReminderType string

const (
	Confirmation ReminderType = "confirmation"
	Day5         ReminderType = "day5"
	Day9         ReminderType = "day9"
	Day10        ReminderType = "day10"
	Expiry       ReminderType = "expiry"
)

// AllReminderTypes lists every valid type in lifecycle order.
var AllReminderTypes = []ReminderType{Confirmation, Day5, Day9, Day10, Expiry}

// ErrUnknownReminderType is returned for any value outside AllReminderTypes.
var ErrUnknownReminderType = errors.New("unknown reminder type")

// Valid reports whether t is one of the five known types.
func (t ReminderType) Valid() bool {
	switch t {
	case Confirmation, Day5, Day9, Day10, Expiry:
		return true
	}
	return false
}

// ParseReminderType accepts only the exact lowercase literals.
func ParseReminderType(s string) (ReminderType, error) {
	t := ReminderType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownReminderType, s)
	}
	return t, nil
}

// Sentinels shown when optional fields are blank.
const (
	CounselorNotSelected = "Not Selected"
	NotSpecified         = "Not specified"
)

// EmailParams carries everything a template can show. Pointer fields are
// optional; a nil fee renders as NotSpecified.
type EmailParams struct {
	Email         string       `json:"email"`
	FullName      string       `json:"fullName"`
	EnrollmentID  string       `json:"enrollmentId"`
	Type          ReminderType `json:"reminderType"`
	CounselorName string       `json:"counselorName"`
	TokenNumber   *float64     `json:"tokenNumber,omitempty"`

	// Confirmation only.
	CourseName        string `json:"courseName,omitempty"`
	BatchMonth        string `json:"batchMonth,omitempty"`
	TrainingMode      string `json:"trainingMode,omitempty"`
	PaymentModeLabel  string `json:"paymentModeLabel,omitempty"`
	PreferredTimeSlot string `json:"preferredTimeSlot,omitempty"`
	TotalFee          *int   `json:"totalFee,omitempty"`
	DiscountFee       *int   `json:"discountFee,omitempty"`
	FinalFee          *int   `json:"finalFee,omitempty"`
}

// Content is a rendered email.
type Content struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

var subjects = map[ReminderType]string{
	Confirmation: "✅ TradeMax Academy Pre-Booking Confirmation",
	Day5:         "⏳ Reminder: Payment Due in 5 Days - TradeMax Academy",
	Day9:         "⚠️ Reminder: Payment Due Tomorrow - TradeMax Academy",
	Day10:        "🚨 FINAL REMINDER: Payment Deadline TODAY - TradeMax Academy",
	Expiry:       "✅ Enrollment Expired - TradeMax Academy",
}

// Subject returns the fixed subject line for t.
func Subject(t ReminderType) (string, error) {
	s, ok := subjects[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReminderType, string(t))
	}
	return s, nil
}
