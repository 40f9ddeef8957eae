package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(INFO)
		SetRedactPII(true)
	})
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}

func TestLogRedactsEmails(t *testing.T) {
	buf := capture(t)

	New("reminder").Info("sent", "to", "asha.k@example.com", "detail", "failed for ravi@example.org today", "count", 3)
	e := lastEntry(t, buf)

	assert.Equal(t, "INFO", e["level"])
	assert.Equal(t, "reminder", e["component"])
	assert.Equal(t, "as***@example.com", e["to"])
	assert.Equal(t, "failed for ra***@example.org today", e["detail"])
	assert.Equal(t, float64(3), e["count"])
}

func TestLogRedactionDisabled(t *testing.T) {
	buf := capture(t)
	SetRedactPII(false)

	Info("sent", "email", "asha@example.com")
	assert.Equal(t, "asha@example.com", lastEntry(t, buf)["email"])
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(WARN)

	Info("dropped")
	assert.Empty(t, buf.String())

	Error("kept", "error", errors.New("boom"))
	e := lastEntry(t, buf)
	assert.Equal(t, "ERROR", e["level"])
	assert.Equal(t, "boom", e["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}
