package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorWithDetails(rec, http.StatusBadGateway, "Failed to submit enrollment", "upstream said no")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"error":"Failed to submit enrollment","details":"upstream said no"}`, rec.Body.String())
}

func TestInternalErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, "Failed to send email", errors.New("dial tcp: secret-host:465"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-host")
}

func TestDecode(t *testing.T) {
	var dst struct{ Name string }

	rec := httptest.NewRecorder()
	ok := Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":"x"}`)), &dst)
	assert.True(t, ok)
	assert.Equal(t, "x", dst.Name)

	rec = httptest.NewRecorder()
	ok = Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`)), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON body")

	rec = httptest.NewRecorder()
	ok = Decode(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &dst)
	assert.False(t, ok)
	assert.Contains(t, rec.Body.String(), "Request body is required")
}
