package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"daybook/internal/core"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser reads form-encoded or JSON request bodies, falling back
// to the query string for values the body does not carry.
type RequestBodyParser struct {
	body     []byte
	query    url.Values
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once, up to 64 KiB.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{query: r.URL.Query()}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		p.err = json.Unmarshal(p.body, &p.jsonData)
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized value from the body, or from the query string.
func (p *RequestBodyParser) Get(key string) string {
	if val, ok := p.jsonData[key]; ok {
		return sanitizeInput(stringValue(val))
	}
	if p.formData != nil && p.formData.Has(key) {
		return sanitizeInput(p.formData.Get(key))
	}
	return sanitizeInput(p.query.Get(key))
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDateValue parses an ISO date input. Empty input means today.
func ParseDateValue(v string) (core.Date, error) {
	if strings.TrimSpace(v) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(v)
}

// ParseMonthValue parses a month input. Empty input means the current month.
func ParseMonthValue(v string) (core.YearMonth, error) {
	if strings.TrimSpace(v) == "" {
		return core.CurrentMonth(), nil
	}
	return core.ParseYearMonth(v)
}

// ParseFlag reads checkbox-style booleans: "true", "on", "1" and "yes".
func ParseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// sanitizeInput removes control characters except tab and newlines, then trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}
