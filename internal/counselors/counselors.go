// Package counselors lists the admissions counselors students can pick
// during enrollment.
package counselors

import (
	"context"
	"fmt"
	"strings"

	"github.com/trademax/academy-enrollment/internal/datanorm"
)

// Sources reported by Directory.List.
const (
	SourceSheet   = "sheet"
	SourceDefault = "default"
)

// NotSelected is shown when no counselor was chosen.
const NotSelected = "Not selected"

// Counselor is one roster entry.
type Counselor struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
}

// Defaults is the built-in roster.
var Defaults = []Counselor{
	{ID: "1", Name: "Rajesh Kumar", Specialization: "Technical Analysis"},
	{ID: "2", Name: "Priya Sharma", Specialization: "Options Trading"},
	{ID: "3", Name: "Amit Patel", Specialization: "Futures & Derivatives"},
	{ID: "4", Name: "Sneha Reddy", Specialization: "Price Action"},
	{ID: "5", Name: "Vikram Singh", Specialization: "Risk Management"},
}

// Fetcher downloads CSV text.
type Fetcher interface {
	FetchCSV(ctx context.Context, url string) (string, error)
}

// Directory reads the roster from a published sheet.
type Directory struct {
	url     string
	fetcher Fetcher
}

// NewDirectory creates a directory. An empty url serves Defaults.
func NewDirectory(url string, fetcher Fetcher) *Directory {
	return &Directory{url: strings.TrimSpace(url), fetcher: fetcher}
}

// List returns the active counselors and where they came from.
func (d *Directory) List(ctx context.Context) ([]Counselor, string, error) {
	if d.url == "" {
		return append([]Counselor(nil), Defaults...), SourceDefault, nil
	}
	text, err := d.fetcher.FetchCSV(ctx, d.url)
	if err != nil {
		return nil, SourceSheet, fmt.Errorf("fetch counselors: %w", err)
	}
	return Parse(text), SourceSheet, nil
}

// Parse reads a counselors CSV. Headers id, name, specialization and active
// are matched case-insensitively. Rows without a name or marked inactive are
// dropped.
func Parse(text string) []Counselor {
	out := []Counselor{}
	rows := datanorm.ParseCSV(text)
	if len(rows) == 0 {
		return out
	}
	hm := datanorm.ResolveHeaders(rows[0], datanorm.CounselorColumns)
	for _, row := range rows[1:] {
		name := hm.Value(row, datanorm.FieldFullName)
		if name == "" || datanorm.IsInactive(hm.Value(row, datanorm.FieldCounselorActive)) {
			continue
		}
		out = append(out, Counselor{
			ID:             hm.Value(row, datanorm.FieldCounselorID),
			Name:           name,
			Specialization: hm.Value(row, datanorm.FieldSpecialization),
		})
	}
	return out
}

// Display resolves a roster id to a name. Unknown values are returned as
// given, since the form also accepts free-text names.
func Display(idOrName string, withSpecialization bool) string {
	if idOrName == "" {
		return NotSelected
	}
	for _, c := range Defaults {
		if c.ID != idOrName {
			continue
		}
		if withSpecialization && c.Specialization != "" {
			return c.Name + " - " + c.Specialization
		}
		return c.Name
	}
	return idOrName
}
