package reminder

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trademax/academy-enrollment/internal/mailing"
	"github.com/trademax/academy-enrollment/internal/pkg/ist"
)

const day = 24 * time.Hour

var sheetTimestamp = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4}),?\s*(\d{2}):(\d{2}):(\d{2})$`)

// ISO layouts accepted when the value contains a "T". The zone-less forms
// are read as IST wall-clock time.
var (
	isoZoned = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}
	isoLocal = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"}
)

// ParseTimestamp reads an enrollment timestamp. Two shapes are accepted:
// ISO-8601 ("2026-03-05T08:37:09.000Z") and the sheet's own
// "05/03/2026, 14:07:09 IST". Impossible calendar dates are rejected.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "IST"))
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "T") {
		for _, layout := range isoZoned {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, layout := range isoLocal {
			if t, err := time.ParseInLocation(layout, s, ist.Location); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	m := sheetTimestamp.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	var f [6]int
	for i := range f {
		f[i], _ = strconv.Atoi(m[i+1])
	}
	dd, mm, yyyy, hh, mi, ss := f[0], f[1], f[2], f[3], f[4], f[5]
	if hh > 23 || mi > 59 || ss > 59 {
		return time.Time{}, false
	}

	t := ist.Date(yyyy, time.Month(mm), dd, hh, mi, ss)
	// time.Date normalizes 31/02 into March; a changed field means the
	// input was not a real date.
	if t.Day() != dd || int(t.Month()) != mm || t.Year() != yyyy {
		return time.Time{}, false
	}
	return t, true
}

// civil projects t onto IST wall-clock fields, expressed as a UTC instant,
// so differences count IST calendar time.
func civil(t time.Time) time.Time {
	w := ist.In(t)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
}

// ElapsedDays is the number of whole IST days from enrolled to now. It is
// negative when enrolled lies in the future.
func ElapsedDays(enrolled, now time.Time) int {
	d := civil(now).Sub(civil(enrolled))
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days-- // floor, not truncation
	}
	return days
}

// TierForDays maps elapsed days to a reminder tier. Thresholds are inclusive
// lower bounds checked from the highest down.
func TierForDays(days int) (mailing.ReminderType, bool) {
	switch {
	case days >= 11:
		return mailing.Expiry, true
	case days >= 10:
		return mailing.Day10, true
	case days >= 9:
		return mailing.Day9, true
	case days >= 5:
		return mailing.Day5, true
	}
	return "", false
}

// Classify returns the tier for an enrollment made at enrolled, as seen at now.
func Classify(enrolled, now time.Time) (mailing.ReminderType, bool) {
	return TierForDays(ElapsedDays(enrolled, now))
}
