// Package ist holds the India Standard Time helpers shared by the reminder
// pipeline, email templates and enrollment submission. IST is UTC+05:30 with
// no daylight saving, so a fixed zone is exact.
package ist

import (
	"fmt"
	"time"
)

// Location is India Standard Time.
var Location = time.FixedZone("IST", 5*60*60+30*60)

// SheetLayout is the wall-clock layout written to the enrollments sheet,
// followed by a literal " IST" suffix.
const SheetLayout = "02/01/2006, 15:04:05"

// DeadlineLayout renders dates as "January 2, 2006".
const DeadlineLayout = "January 2, 2006"

// In converts t to IST.
func In(t time.Time) time.Time { return t.In(Location) }

// Date builds an instant from IST wall-clock fields.
func Date(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, Location)
}

// FormatSheet renders t the way enrollment rows store it, e.g.
// "05/03/2026, 14:07:09 IST".
func FormatSheet(t time.Time) string {
	return fmt.Sprintf("%s IST", In(t).Format(SheetLayout))
}

// FormatDeadline renders t as a long IST date.
func FormatDeadline(t time.Time) string {
	return In(t).Format(DeadlineLayout)
}
