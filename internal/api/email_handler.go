package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trademax/academy-enrollment/internal/mailer"
	"github.com/trademax/academy-enrollment/internal/mailing"
	"github.com/trademax/academy-enrollment/internal/pkg/httputil"
)

// SendEmail renders and sends one enrollment email.
//
//	POST /api/send-email
func (h *Handlers) SendEmail(w http.ResponseWriter, r *http.Request) {
	var p mailing.EmailParams
	if !httputil.Decode(w, r, &p) {
		return
	}
	if p.Email == "" || p.FullName == "" || p.EnrollmentID == "" || p.Type == "" {
		httputil.BadRequest(w, "Missing required email fields")
		return
	}
	if !p.Type.Valid() {
		httputil.BadRequest(w, mailing.ErrUnknownReminderType.Error())
		return
	}
	if h.deps.Sender == nil || h.deps.From == "" {
		httputil.Error(w, http.StatusInternalServerError, "SMTP is not configured")
		return
	}
	if p.CounselorName == "" {
		p.CounselorName = mailing.CounselorNotSelected
	}

	content, err := h.deps.Builder.Build(p, h.deps.Now())
	if err != nil {
		httputil.InternalError(w, "Failed to build email", err)
		return
	}
	receipt, err := h.deps.Sender.Send(r.Context(), mailer.Message{
		From:    h.deps.From,
		To:      p.Email,
		Subject: content.Subject,
		HTML:    content.HTML,
	})
	if err != nil {
		h.log.Error("email send failed", "enrollment_id", p.EnrollmentID, "type", string(p.Type), "error", err)
		httputil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.OK(w, map[string]any{
		"success": true,
		"message": string(p.Type) + " email sent successfully",
		"emailId": receipt.MessageID,
	})
}

var previewTokenNumber = 12.0

func previewParams(t mailing.ReminderType) mailing.EmailParams {
	total, discount, final := 30000, 10000, 20000
	return mailing.EmailParams{
		Email:         "preview@example.com",
		FullName:      "Preview User",
		EnrollmentID:  "TMA20260001",
		Type:          t,
		CounselorName: "Asha Menon",
		TokenNumber:   &previewTokenNumber,
		CourseName:    "Full Payment",
		BatchMonth:    "march-2026",
		TrainingMode:  "online",
		TotalFee:      &total,
		DiscountFee:   &discount,
		FinalFee:      &final,
	}
}

// EmailPreview renders a template with sample data.
//
//	GET /email-preview/{type}
func (h *Handlers) EmailPreview(w http.ResponseWriter, r *http.Request) {
	t := mailing.ReminderType(chi.URLParam(r, "type"))
	content, err := h.deps.Builder.Build(previewParams(t), h.deps.Now())
	if errors.Is(err, mailing.ErrUnknownReminderType) {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalError(w, "Failed to render preview", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content.HTML))
}
