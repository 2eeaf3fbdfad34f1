package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the ISO calendar-day layout used on the wire and in forms.
	DateLayout = "2006-01-02"
	// MonthLayout is the layout of a month selector value.
	MonthLayout = "2006-01"
)

type (
	// Identity is the normalized email-shaped string identifying the user.
	Identity string

	// Date is a calendar day without time-of-day.
	Date struct {
		time.Time
	}

	// YearMonth selects one month for the monthly report.
	YearMonth struct {
		Year  int
		Month int // 1-12
	}

	Task struct {
		ID        string `json:"_id"`
		Title     string `json:"title"`
		Email     string `json:"email,omitempty"`
		Date      Date   `json:"date"`
		Completed bool   `json:"completed"`
	}

	Expense struct {
		ID          string  `json:"_id"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description,omitempty"`
		Email       string  `json:"email,omitempty"`
		Date        Date    `json:"date"`
	}
)

// ValidationError is a user-facing rejection raised before any network call.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var (
	ErrEmptyTitle      = ValidationError("Please enter a task title")
	ErrInvalidAmount   = ValidationError("Please enter a valid amount")
	ErrMissingIdentity = ValidationError("Please set your email first")
	ErrEmptyIdentity   = ValidationError("Please enter an email to load your data")
	ErrNotConfirmed    = ValidationError("Deletion was not confirmed")
	ErrInvalidDate     = ValidationError("Please enter a valid date")
	ErrInvalidMonth    = ValidationError("Please enter a valid month")
	ErrMissingID       = ValidationError("Missing item id")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// NormalizeIdentity trims and lowercases raw. The boolean is false when nothing remains.
func NormalizeIdentity(raw string) (Identity, bool) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if id == "" {
		return "", false
	}
	return Identity(id), true
}

func (i Identity) String() string { return string(i) }

// IsZero returns true when no identity is set.
func (i Identity) IsZero() bool { return i == "" }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in the local time zone.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO day. Longer ISO timestamps are accepted and cut to their day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String returns the ISO representation, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Long returns the date as "Monday, January 2, 2006".
func (d Date) Long() string {
	return d.Format("Monday, January 2, 2006")
}

// YearMonth returns the month containing d.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: int(d.Time.Month())}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CurrentMonth returns the month of today.
func CurrentMonth() YearMonth {
	return Today().YearMonth()
}

// ParseYearMonth parses a "YYYY-MM" month selector value.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

func (ym YearMonth) Validate() error {
	if ym.Month < 1 || ym.Month > 12 || ym.Year < 1 {
		return ErrInvalidMonth
	}
	return nil
}

// String returns "YYYY-MM".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Parts returns the year and zero-padded month path components.
func (ym YearMonth) Parts() (string, string) {
	return strconv.Itoa(ym.Year), fmt.Sprintf("%02d", ym.Month)
}

// Long returns the month as "January 2006".
func (ym YearMonth) Long() string {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

func (e Expense) Validate() error {
	if !ValidAmount(e.Amount) {
		return ErrInvalidAmount
	}
	return nil
}
