package datanorm

import "strings"

// Spreadsheet users fill status columns by hand, so only these exact words
// (case-insensitive, trimmed) count. Anything else is false.
var (
	truthyWords = map[string]struct{}{
		"true": {}, "yes": {}, "1": {}, "y": {}, "sent": {}, "done": {},
	}
	paidWords = map[string]struct{}{
		"paid": {}, "completed": {}, "success": {}, "done": {}, "yes": {}, "true": {},
	}
	inactiveWords = map[string]struct{}{
		"false": {}, "no": {}, "0": {},
	}
)

func inSet(set map[string]struct{}, raw string) bool {
	_, ok := set[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// IsTruthy reports whether a reminder-sent style cell is set.
func IsTruthy(raw string) bool { return inSet(truthyWords, raw) }

// IsPaid reports whether a payment status cell means the enrollment is paid.
func IsPaid(raw string) bool { return inSet(paidWords, raw) }

// IsInactive reports whether an "active" cell explicitly disables a row.
// Blank cells are not inactive.
func IsInactive(raw string) bool { return inSet(inactiveWords, raw) }
