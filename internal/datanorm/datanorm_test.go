package datanorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{"quoted comma", "a,\"b,c\",d\n", [][]string{{"a", "b,c", "d"}}},
		{"escaped quote", "\"x\"\"y\"", [][]string{{`x"y`}}},
		{"no trailing newline", "a,b\nc,d", [][]string{{"a", "b"}, {"c", "d"}}},
		{"crlf", "a,b\r\nc,d\r\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"bare cr", "a\rb", [][]string{{"a"}, {"b"}}},
		{"blank comma row suppressed", "a,b\n,,\nc,d\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"empty lines suppressed", "\n\na\n\n", [][]string{{"a"}}},
		{"cells trimmed", "  a , b  \n", [][]string{{"a", "b"}}},
		{"quoted newline", "\"line1\nline2\",x\n", [][]string{{"line1\nline2", "x"}}},
		{"unterminated quote", "a,\"b,c\nd", [][]string{{"a", "b,c\nd"}}},
		{"trailing empty cell kept", "a,\n", [][]string{{"a", ""}}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCSV(tt.in))
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	for _, h := range []string{"Day 5 Sent", "day5sent", "Day-5-Sent", "DAY_5_SENT"} {
		assert.Equal(t, "day5sent", NormalizeHeader(h), h)
	}
	assert.Equal(t, "", NormalizeHeader("  --  "))
}

func TestResolveHeaders_OrderAndCaseIndependent(t *testing.T) {
	a := ResolveHeaders([]string{"Day5Sent", "email", "Name"}, EnrollmentColumns)
	b := ResolveHeaders([]string{"NAME", "EMAIL", "day_5_sent"}, EnrollmentColumns)

	assert.Equal(t, HeaderMap{FieldDay5Sent: 0, FieldEmail: 1, FieldFullName: 2}, a)
	assert.Equal(t, HeaderMap{FieldFullName: 0, FieldEmail: 1, FieldDay5Sent: 2}, b)
}

func TestResolveHeaders_AliasPriority(t *testing.T) {
	m := ResolveHeaders([]string{"Name", "Full Name", "Status", "Payment Status"}, EnrollmentColumns)
	assert.Equal(t, 1, m[FieldFullName])
	assert.Equal(t, 3, m[FieldPaymentStatus])
}

func TestResolveHeaders_LeftmostDuplicateWins(t *testing.T) {
	m := ResolveHeaders([]string{"Email", "E-mail", "email"}, EnrollmentColumns)
	assert.Equal(t, 0, m[FieldEmail])
}

func TestResolveHeaders_MissingFieldsAbsent(t *testing.T) {
	m := ResolveHeaders([]string{"email"}, EnrollmentColumns)
	assert.True(t, m.Has(FieldEmail))
	assert.False(t, m.Has(FieldTokenNumber))
	assert.Equal(t, "", m.Value([]string{"x"}, FieldTokenNumber))
}

func TestHeaderMapValue(t *testing.T) {
	m := HeaderMap{FieldEmail: 0, FieldFullName: 3}
	row := []string{" a@b.co ", "x"}
	assert.Equal(t, "a@b.co", m.Value(row, FieldEmail))
	assert.Equal(t, "", m.Value(row, FieldFullName))
}

func TestTruthyAndPaid(t *testing.T) {
	for _, v := range []string{"true", "YES", " 1 ", "y", "Sent", "done"} {
		assert.True(t, IsTruthy(v), v)
	}
	for _, v := range []string{"", "no", "false", "0", "x", "pending", "ok"} {
		assert.False(t, IsTruthy(v), v)
	}
	for _, v := range []string{"Paid", "completed", "SUCCESS", "done", "yes", "true"} {
		assert.True(t, IsPaid(v), v)
	}
	for _, v := range []string{"", "pending", "1", "y", "sent", "failed"} {
		assert.False(t, IsPaid(v), v)
	}
}

func TestIsInactive(t *testing.T) {
	assert.True(t, IsInactive("FALSE"))
	assert.True(t, IsInactive("no"))
	assert.True(t, IsInactive("0"))
	assert.False(t, IsInactive(""))
	assert.False(t, IsInactive("true"))
}
