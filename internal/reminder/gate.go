package reminder

import (
	"time"

	"github.com/trademax/academy-enrollment/internal/mailing"
)

// SkipReason says why a row was not sent a reminder.
type SkipReason string

const (
	SkipInvalid     SkipReason = "invalid"
	SkipPaid        SkipReason = "paid"
	SkipNoTier      SkipReason = "no_tier"
	SkipAlreadySent SkipReason = "already_sent"
)

// Decision is the gate's verdict for one row.
type Decision struct {
	Send bool
	Tier mailing.ReminderType
	Days int
	Skip SkipReason
}

// Decide applies the checks in order: invalid row, paid, no tier due, tier
// already sent. The first failing check is the skip reason.
func Decide(e Enrollment, reject RejectReason, now time.Time) Decision {
	if reject != RejectNone {
		return Decision{Skip: SkipInvalid}
	}
	if e.Paid {
		return Decision{Skip: SkipPaid}
	}

	days := ElapsedDays(e.EnrolledAt, now)
	tier, ok := TierForDays(days)
	if !ok {
		return Decision{Days: days, Skip: SkipNoTier}
	}
	if e.Sent.Has(tier) {
		return Decision{Tier: tier, Days: days, Skip: SkipAlreadySent}
	}
	return Decision{Send: true, Tier: tier, Days: days}
}

// ShouldSend reports whether a row with an already computed tier passes the
// gate. An empty tier means none applies.
func ShouldSend(e Enrollment, reject RejectReason, tier mailing.ReminderType) bool {
	switch {
	case reject != RejectNone, e.Paid, tier == "":
		return false
	}
	return !e.Sent.Has(tier)
}
