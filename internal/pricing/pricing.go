// Package pricing holds the course fee table and the early-bird window.
package pricing

import (
	"errors"
	"time"

	"github.com/trademax/academy-enrollment/internal/pkg/ist"
)

// Learning modes.
const (
	ModeOffline = "offline"
	ModeOnline  = "online"
)

// Early-bird window, inclusive days of the month in IST.
const (
	EarlyBirdStartDay = 19
	EarlyBirdEndDay   = 27
)

// ErrUnknownOption is returned by Quote for a payment mode not offered in
// the learning mode.
var ErrUnknownOption = errors.New("unknown payment option")

// Installments describes a part-payment plan in display form.
type Installments struct {
	Regular    string `json:"regular"`
	Discounted string `json:"discounted"`
}

// Option is one payment option. Zero DiscountedPrice means no discount.
type Option struct {
	Value                    string        `json:"value"`
	Label                    string        `json:"label"`
	Price                    int           `json:"price"`
	DiscountedPrice          int           `json:"discountedPrice,omitempty"`
	EarlyBirdDiscountedPrice int           `json:"earlyBirdDiscountedPrice,omitempty"`
	Installments             *Installments `json:"installments,omitempty"`
}

var offline = []Option{
	{Value: "full-payment", Label: "Full Payment", Price: 47000, DiscountedPrice: 30000, EarlyBirdDiscountedPrice: 27500},
	{Value: "part-payment", Label: "Part Payment", Price: 47000, DiscountedPrice: 35600, Installments: &Installments{
		Regular:    "₹23,500 Phase 1 + ₹23,500 Phase 2",
		Discounted: "₹17,800 Phase 1 + ₹17,800 Phase 2",
	}},
}

var online = []Option{
	{Value: "full-payment", Label: "Full Payment", Price: 30000, DiscountedPrice: 20000, EarlyBirdDiscountedPrice: 17500},
	{Value: "part-payment", Label: "Part Payment", Price: 36000, DiscountedPrice: 23600, Installments: &Installments{
		Regular:    "₹12,000 Phase 1 + ₹12,000 Phase 2 + ₹12,000 Phase 3",
		Discounted: "₹5,900 Phase 1 + ₹8,850 Phase 2 + ₹8,850 Phase 3",
	}},
	{Value: "decoding-technical-analysis", Label: "Only Decoding Technical Analysis (Phase 1)", Price: 12000},
}

// Options returns the payment options for a learning mode. Anything other
// than offline gets the online table.
func Options(mode string) []Option {
	if mode == ModeOffline {
		return offline
	}
	return online
}

// Find looks up a payment option by value.
func Find(mode, payment string) (Option, bool) {
	for _, o := range Options(mode) {
		if o.Value == payment {
			return o, true
		}
	}
	return Option{}, false
}

// IsEarlyBirdWindow reports whether at falls on day 19..27 of the month in IST.
func IsEarlyBirdWindow(at time.Time) bool {
	d := ist.In(at).Day()
	return d >= EarlyBirdStartDay && d <= EarlyBirdEndDay
}

// Quote is the fee breakdown recorded with an enrollment.
type Quote struct {
	Mode         string `json:"mode"`
	Payment      string `json:"payment"`
	Label        string `json:"label"`
	TotalFee     int    `json:"totalFee"`
	DiscountFee  int    `json:"discountFee"`
	FinalFee     int    `json:"finalFee"`
	Installments string `json:"installments,omitempty"`
	EarlyBird    bool   `json:"earlyBird"`
}

// QuoteFor prices a payment option. The discounted price applies only when a
// counselor was selected. The early-bird window selects the installment text.
func QuoteFor(mode, payment string, counselorSelected bool, at time.Time) (Quote, error) {
	o, ok := Find(mode, payment)
	if !ok {
		return Quote{}, ErrUnknownOption
	}
	q := Quote{
		Mode:      mode,
		Payment:   payment,
		Label:     o.Label,
		TotalFee:  o.Price,
		FinalFee:  o.Price,
		EarlyBird: IsEarlyBirdWindow(at),
	}
	if counselorSelected && o.DiscountedPrice > 0 {
		q.FinalFee = o.DiscountedPrice
		q.DiscountFee = o.Price - o.DiscountedPrice
	}
	if o.Installments != nil {
		q.Installments = o.Installments.Regular
		if q.EarlyBird {
			q.Installments = o.Installments.Discounted
		}
	}
	return q, nil
}
