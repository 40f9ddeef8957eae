package mailing

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trademax/academy-enrollment/internal/pkg/ist"
)

//go:embed templates/*.liquid
var templateFS embed.FS

// PaymentWindow is how long after "now" the rendered deadline falls.
const PaymentWindow = 10 * 24 * time.Hour

const layoutKey = "layout"

type theme struct {
	title, subtitle string
	from, to        string
	box, accent     string
}

var themes = map[ReminderType]theme{
	Confirmation: {title: "🎓 TradeMax Academy", subtitle: "Pre-Booking Confirmed", from: "#10b981", to: "#0f766e", box: "#e0f2fe", accent: "#0ea5e9"},
	Day5:         {title: "TradeMax Academy", subtitle: "Payment Reminder", from: "#0A84FF", to: "#0f766e", box: "#e0f2fe", accent: "#0ea5e9"},
	Day9:         {title: "⏰ Payment Reminder", from: "#f59e0b", to: "#dc2626", box: "#fef3c7", accent: "#f59e0b"},
	Day10:        {title: "🚨 FINAL PAYMENT REMINDER", from: "#dc2626", to: "#991b1b", box: "#fee2e2", accent: "#dc2626"},
	Expiry:       {title: "Enrollment Expired", from: "#64748b", to: "#334155", box: "#e2e8f0", accent: "#334155"},
}

// Builder renders lifecycle emails. It is safe for concurrent use.
type Builder struct {
	templates *TemplateService
}

// NewBuilder parses the embedded templates. A parse failure is a programming
// error and is returned rather than deferred to the first send.
func NewBuilder() (*Builder, error) {
	ts := NewTemplateService()
	keys := append([]string{layoutKey}, typeKeys()...)
	for _, key := range keys {
		src, err := templateFS.ReadFile("templates/" + key + ".liquid")
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", key, err)
		}
		if err := ts.Parse(key, string(src)); err != nil {
			return nil, err
		}
	}
	return &Builder{templates: ts}, nil
}

func typeKeys() []string {
	keys := make([]string, len(AllReminderTypes))
	for i, t := range AllReminderTypes {
		keys[i] = string(t)
	}
	return keys
}

// Build renders the subject and HTML for p.Type. now only feeds the displayed
// payment deadline.
func (b *Builder) Build(p EmailParams, now time.Time) (Content, error) {
	subject, err := Subject(p.Type)
	if err != nil {
		return Content{}, err
	}

	th := themes[p.Type]
	if th.subtitle == "" {
		th.subtitle = "Enrollment ID: " + p.EnrollmentID
	}
	vars := templateVars(p, th, now)

	body, err := b.templates.Render(string(p.Type), vars)
	if err != nil {
		return Content{}, err
	}
	vars["body"] = strings.TrimRight(body, "\n")

	page, err := b.templates.Render(layoutKey, vars)
	if err != nil {
		return Content{}, err
	}
	return Content{Subject: subject, HTML: page}, nil
}

func templateVars(p EmailParams, th theme, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"full_name":           p.FullName,
		"enrollment_id":       p.EnrollmentID,
		"counselor_name":      p.CounselorName,
		"token_number":        optionalToken(p.TokenNumber),
		"deadline":            ist.FormatDeadline(now.Add(PaymentWindow)),
		"course_name":         p.CourseName,
		"batch_month":         p.BatchMonth,
		"training_mode":       p.TrainingMode,
		"payment_mode_label":  p.PaymentModeLabel,
		"preferred_time_slot": p.PreferredTimeSlot,
		"total_fee":           optionalInt(p.TotalFee),
		"discount_fee":        optionalInt(p.DiscountFee),
		"final_fee":           optionalInt(p.FinalFee),
		"theme": map[string]interface{}{
			"title":    th.title,
			"subtitle": th.subtitle,
			"from":     th.from,
			"to":       th.to,
			"box":      th.box,
			"accent":   th.accent,
		},
	}
}

// optionalToken renders 12 as "12" and 12.5 as "12.5".
func optionalToken(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
