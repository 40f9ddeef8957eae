package datanorm

import "strings"

// CanonicalField is the service-side name of a spreadsheet column.
type CanonicalField string

const (
	FieldEmail         CanonicalField = "email"
	FieldFullName      CanonicalField = "full_name"
	FieldEnrollmentID  CanonicalField = "enrollment_id"
	FieldTimestamp     CanonicalField = "timestamp"
	FieldPaymentStatus CanonicalField = "payment_status"
	FieldDay5Sent      CanonicalField = "day5_sent"
	FieldDay9Sent      CanonicalField = "day9_sent"
	FieldDay10Sent     CanonicalField = "day10_sent"
	FieldExpirySent    CanonicalField = "expiry_sent"
	FieldCounselor     CanonicalField = "counselor"
	FieldTokenNumber   CanonicalField = "token_number"

	FieldCounselorID     CanonicalField = "counselor_id"
	FieldSpecialization  CanonicalField = "specialization"
	FieldCounselorActive CanonicalField = "active"
)

// FieldAliases lists the normalized header spellings accepted for a field,
// most preferred first.
type FieldAliases struct {
	Field   CanonicalField
	Aliases []string
}

// EnrollmentColumns is the alias table for the enrollments sheet.
var EnrollmentColumns = []FieldAliases{
	{FieldEmail, []string{"email"}},
	{FieldFullName, []string{"fullname", "name"}},
	{FieldEnrollmentID, []string{"enrollmentid"}},
	{FieldTimestamp, []string{"timestamp"}},
	{FieldPaymentStatus, []string{"paymentstatus", "status"}},
	{FieldDay5Sent, []string{"day5sent", "reminderday5", "day5reminder"}},
	{FieldDay9Sent, []string{"day9sent", "reminderday9", "day9reminder"}},
	{FieldDay10Sent, []string{"day10sent", "reminderday10", "day10reminder"}},
	{FieldExpirySent, []string{"expirysent", "reminderexpiry", "day11sent", "day11reminder"}},
	{FieldCounselor, []string{"counselor"}},
	{FieldTokenNumber, []string{"tokennumber", "token"}},
}

// CounselorColumns is the alias table for the counselors sheet.
var CounselorColumns = []FieldAliases{
	{FieldCounselorID, []string{"id"}},
	{FieldFullName, []string{"name"}},
	{FieldSpecialization, []string{"specialization"}},
	{FieldCounselorActive, []string{"active"}},
}

// HeaderMap maps a canonical field to its column index. Fields without a
// matching column are absent.
type HeaderMap map[CanonicalField]int

// Has reports whether the field was found in the header row.
func (m HeaderMap) Has(f CanonicalField) bool {
	_, ok := m[f]
	return ok
}

// Value returns the trimmed cell for f, or "" when the field is unmapped or
// the row is too short.
func (m HeaderMap) Value(row []string, f CanonicalField) string {
	idx, ok := m[f]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// NormalizeHeader lowercases h and drops everything but ASCII letters and
// digits, so "Day 5 Sent", "day_5_sent" and "Day-5-Sent" compare equal.
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for i := 0; i < len(h); i++ {
		c := h[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ResolveHeaders locates each field of table in header. For every field the
// aliases are tried in order and, for a given alias, the leftmost matching
// column wins.
func ResolveHeaders(header []string, table []FieldAliases) HeaderMap {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		n := NormalizeHeader(h)
		if n == "" {
			continue
		}
		if _, seen := positions[n]; !seen {
			positions[n] = i
		}
	}

	m := make(HeaderMap, len(table))
	for _, fa := range table {
		for _, alias := range fa.Aliases {
			if idx, ok := positions[NormalizeHeader(alias)]; ok {
				m[fa.Field] = idx
				break
			}
		}
	}
	return m
}
