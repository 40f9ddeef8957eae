package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/trademax/academy-enrollment/internal/pkg/httputil"
	"github.com/trademax/academy-enrollment/internal/reminder"
	"github.com/trademax/academy-enrollment/internal/sheets"
	"github.com/trademax/academy-enrollment/internal/store"
)

type runResponse struct {
	Success bool     `json:"success"`
	RunID   string   `json:"runId"`
	Total   int      `json:"total"`
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ScheduleReminders runs the reminder pipeline once. Cron callers
// authenticate with the configured bearer secret.
//
//	POST /api/schedule-reminders
func (h *Handlers) ScheduleReminders(w http.ResponseWriter, r *http.Request) {
	if !h.cronAuthorized(r) {
		httputil.Unauthorized(w)
		return
	}

	res, err := h.deps.Reminders.Run(r.Context())
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	httputil.OK(w, runResponse{
		Success: true,
		RunID:   res.RunID,
		Total:   res.Total,
		Sent:    res.Sent,
		Skipped: res.Skipped,
		Errors:  res.Errors,
	})
}

func (h *Handlers) cronAuthorized(r *http.Request) bool {
	if h.deps.CronSecret == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(h.deps.CronSecret)) == 1
}

func (h *Handlers) writeRunError(w http.ResponseWriter, err error) {
	var se *sheets.StatusError
	switch {
	case errors.Is(err, reminder.ErrRunInProgress):
		httputil.Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &se):
		httputil.Error(w, se.StatusCode, fmt.Sprintf("Failed to fetch enrollments (%d)", se.StatusCode))
	case errors.Is(err, reminder.ErrSourceNotConfigured), errors.Is(err, reminder.ErrMailerNotConfigured):
		httputil.Error(w, http.StatusInternalServerError, err.Error())
	default:
		h.log.Error("reminder run failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// ListReminderRuns returns recent runs, newest first.
//
//	GET /api/reminder-runs?limit=20
func (h *Handlers) ListReminderRuns(w http.ResponseWriter, r *http.Request) {
	if h.deps.Runs == nil {
		httputil.ServiceUnavailable(w, "Database is not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.deps.Runs.RecentRuns(r.Context(), limit)
	if err != nil {
		httputil.InternalError(w, "Failed to list reminder runs", err)
		return
	}
	httputil.OK(w, struct {
		Success bool        `json:"success"`
		Runs    []store.Run `json:"runs"`
	}{true, runs})
}
