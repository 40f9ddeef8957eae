package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trademax/academy-enrollment/internal/enrollment"
	"github.com/trademax/academy-enrollment/internal/pkg/httputil"
	"github.com/trademax/academy-enrollment/internal/sheets"
	"github.com/trademax/academy-enrollment/internal/store"
)

// SubmitEnrollment appends a submission to the enrollments sheet and sends
// the confirmation email.
//
//	POST /api/submit-enrollment
func (h *Handlers) SubmitEnrollment(w http.ResponseWriter, r *http.Request) {
	var sub enrollment.Submission
	if !httputil.Decode(w, r, &sub) {
		return
	}

	res, err := h.deps.Enrollment.Submit(r.Context(), sub)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	httputil.OK(w, struct {
		Success bool `json:"success"`
		enrollment.Result
	}{true, res})
}

func (h *Handlers) writeSubmitError(w http.ResponseWriter, err error) {
	var (
		ve       *enrollment.ValidationError
		se       *sheets.StatusError
		invalid  *sheets.InvalidResponseError
		rejected *sheets.RejectedError
	)
	switch {
	case errors.As(err, &ve):
		httputil.JSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid enrollment data",
			"fields":  ve.Fields,
		})
	case errors.Is(err, sheets.ErrWebhookNotConfigured):
		httputil.Error(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, sheets.ErrSubmitTimeout):
		httputil.Error(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &se):
		httputil.ErrorWithDetails(w, se.StatusCode, fmt.Sprintf("Google Sheets request failed with status %d", se.StatusCode), se.Body)
	case errors.As(err, &invalid):
		httputil.ErrorWithDetails(w, http.StatusInternalServerError, invalid.Error(), invalid.Snippet)
	case errors.As(err, &rejected):
		httputil.Error(w, http.StatusInternalServerError, rejected.Message)
	default:
		httputil.InternalError(w, "Failed to submit to Google Sheets", err)
	}
}

// UpdatePaymentStatus sets an enrollment's payment status.
//
//	POST /api/enrollments/{enrollmentID}/payment-status
func (h *Handlers) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	if h.deps.Payments == nil {
		httputil.ServiceUnavailable(w, "Database is not configured")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}

	id := chi.URLParam(r, "enrollmentID")
	err := h.deps.Payments.UpdatePaymentStatus(r.Context(), id, body.Status)
	switch {
	case errors.Is(err, store.ErrInvalidStatus):
		httputil.BadRequest(w, "status must be one of pending, completed, failed")
	case errors.Is(err, store.ErrNotFound):
		httputil.NotFound(w, "Enrollment not found")
	case err != nil:
		httputil.InternalError(w, "Failed to update payment status", err)
	default:
		h.log.Info("payment status updated", "enrollment_id", id, "status", body.Status)
		httputil.OK(w, map[string]any{"success": true, "enrollmentId": id, "status": body.Status})
	}
}
