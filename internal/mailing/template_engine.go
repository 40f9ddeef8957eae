package mailing

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// TemplateService renders Liquid templates with a per-key parse cache.
type TemplateService struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewTemplateService creates a template service with the email filters
// registered.
func NewTemplateService() *TemplateService {
	ts := &TemplateService{engine: liquid.NewEngine()}
	ts.registerFilters()
	return ts
}

func (ts *TemplateService) registerFilters() {
	// {{ counselor_name | default: "Not Selected" }}
	ts.engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil {
			return fallback
		}
		if s := strings.TrimSpace(fmt.Sprintf("%v", value)); s == "" || s == "<nil>" {
			return fallback
		}
		return value
	})

	// {{ full_name | escape }}
	ts.engine.RegisterFilter("escape", func(value interface{}) string {
		if value == nil {
			return ""
		}
		return html.EscapeString(fmt.Sprintf("%v", value))
	})

	// {{ total_fee | rupees }} renders 47000 as ₹47,000 and nil as "".
	ts.engine.RegisterFilter("rupees", func(value interface{}) string {
		n, ok := toInt64(value)
		if !ok {
			return ""
		}
		return "₹" + NumberWithDelimiter(n)
	})

	// {{ count | number_with_delimiter }}
	ts.engine.RegisterFilter("number_with_delimiter", func(value interface{}) string {
		n, ok := toInt64(value)
		if !ok {
			return fmt.Sprintf("%v", value)
		}
		return NumberWithDelimiter(n)
	})
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case *int:
		if v == nil {
			return 0, false
		}
		return int64(*v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// NumberWithDelimiter groups digits in threes: 1234567 -> "1,234,567".
func NumberWithDelimiter(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Parse compiles a template and stores it under key.
func (ts *TemplateService) Parse(key, src string) error {
	tpl, err := ts.engine.ParseString(src)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", key, err)
	}
	ts.cache.Store(key, tpl)
	return nil
}

// Render executes the template stored under key.
func (ts *TemplateService) Render(key string, vars map[string]interface{}) (string, error) {
	cached, ok := ts.cache.Load(key)
	if !ok {
		return "", fmt.Errorf("template %s not loaded", key)
	}
	out, err := cached.(*liquid.Template).RenderString(vars)
	if err != nil {
		return "", fmt.Errorf("render template %s: %w", key, err)
	}
	return out, nil
}
