package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/trademax/academy-enrollment/internal/counselors"
	"github.com/trademax/academy-enrollment/internal/pkg/httputil"
	"github.com/trademax/academy-enrollment/internal/pricing"
	"github.com/trademax/academy-enrollment/internal/sheets"
)

// ListCounselors returns the active counselor roster.
//
//	GET /api/counselors
func (h *Handlers) ListCounselors(w http.ResponseWriter, r *http.Request) {
	list, source, err := h.deps.Counselors.List(r.Context())
	if err != nil {
		var se *sheets.StatusError
		if errors.As(err, &se) {
			httputil.Error(w, se.StatusCode, fmt.Sprintf("Failed to fetch counselors (%d)", se.StatusCode))
			return
		}
		httputil.InternalError(w, "Failed to fetch counselors", err)
		return
	}
	httputil.OK(w, struct {
		Success    bool                   `json:"success"`
		Source     string                 `json:"source"`
		Counselors []counselors.Counselor `json:"counselors"`
	}{true, source, list})
}

// GetPricing lists the payment options for a learning mode or, when payment
// is given, quotes that option.
//
//	GET /api/pricing?mode=online&payment=full-payment&counselor=2
func (h *Handlers) GetPricing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("mode")
	if mode == "" {
		mode = pricing.ModeOnline
	}
	now := h.deps.Now()

	payment := q.Get("payment")
	if payment == "" {
		httputil.OK(w, map[string]any{
			"success":   true,
			"mode":      mode,
			"earlyBird": pricing.IsEarlyBirdWindow(now),
			"options":   pricing.Options(mode),
		})
		return
	}

	quote, err := pricing.QuoteFor(mode, payment, q.Get("counselor") != "", now)
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Unknown payment option %q for %s mode", payment, mode))
		return
	}
	httputil.OK(w, map[string]any{"success": true, "quote": quote})
}
