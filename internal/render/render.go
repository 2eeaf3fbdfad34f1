// Package render turns entities and reports into display-ready view-models.
// Nothing here performs I/O; the HTML templates and the terminal Markdown
// output both consume the same view-models.
package render

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"daybook/internal/core"
)

// Placeholder and status messages shown in place of data.
const (
	NoTasks         = "No tasks for this date"
	NoExpenses      = "No expenses for this date"
	NeedIdentity    = "Set your email to view reports."
	ReportFailed    = "Error loading report"
	TasksFailed     = "Error loading tasks"
	ExpensesFailed  = "Error loading expenses"
	NoIdentityBadge = "No email set"
)

const maxStars = 5

type (
	TaskItem struct {
		ID        string
		Title     string
		Completed bool
	}

	TaskList struct {
		Date        string
		Items       []TaskItem
		Placeholder string
		Error       string
	}

	ExpenseItem struct {
		ID          string
		Amount      string
		Description string
	}

	ExpenseList struct {
		Date        string
		Items       []ExpenseItem
		Total       string
		Placeholder string
		Error       string
	}

	// DailyReport is the daily report card. Message is set instead of the
	// figures when there is nothing to show.
	DailyReport struct {
		Date           string
		Heading        string
		TasksCreated   int
		TasksCompleted int
		Rating         string
		Stars          string
		DaySpend       string
		Message        string
		Failed         bool
	}

	MonthlyReport struct {
		Period              string
		Heading             string
		TotalSpend          string
		AverageSpend        string
		TotalCompletedTasks int
		AverageProductivity string
		TotalTasksCreated   int
		DaysWithData        int
		Message             string
		Failed              bool
	}
)

// Renderer formats amounts with one currency symbol.
type Renderer struct {
	symbol string
}

// New returns a Renderer for the ISO currency code. Unknown codes fall back
// to the code itself followed by a space.
func New(currencyCode string) *Renderer {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		code = money.USD
	}
	if c := money.GetCurrency(code); c != nil && c.Grapheme != "" {
		return &Renderer{symbol: c.Grapheme}
	}
	return &Renderer{symbol: code + " "}
}

// Symbol returns the currency symbol used as prefix.
func (r *Renderer) Symbol() string { return r.symbol }

// Currency formats amount with exactly two decimals, e.g. "$12.50".
func (r *Renderer) Currency(amount float64) string {
	return r.currency(decimal.NewFromFloat(amount))
}

func (r *Renderer) currency(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + r.symbol + d.Neg().StringFixed(2)
	}
	return r.symbol + d.StringFixed(2)
}

// Rating formats a 0-5 rating as "x.xx / 5".
func Rating(rating float64) string {
	return decimal.NewFromFloat(rating).StringFixed(2) + " / 5"
}

// Stars draws a rating on a five glyph scale: one ★ per whole point, a ½
// when the fraction is at least one half, and ☆ for the remainder.
//
//	Stars(3.5) == "★★★½☆"
//	Stars(4.2) == "★★★★☆"
func Stars(rating float64) string {
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	if rating > maxStars {
		rating = maxStars
	}
	full := int(math.Floor(rating))
	half := 0
	if rating-float64(full) >= 0.5 {
		half = 1
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("★", full))
	b.WriteString(strings.Repeat("½", half))
	b.WriteString(strings.Repeat("☆", maxStars-full-half))
	return b.String()
}

// Tasks builds the task list for one date. A non-nil err replaces the items
// with an error message.
func (r *Renderer) Tasks(date core.Date, tasks []core.Task, err error) TaskList {
	v := TaskList{Date: date.String()}
	if err != nil {
		v.Error = TasksFailed
		return v
	}
	if len(tasks) == 0 {
		v.Placeholder = NoTasks
		return v
	}
	v.Items = make([]TaskItem, 0, len(tasks))
	for _, t := range tasks {
		v.Items = append(v.Items, TaskItem{ID: t.ID, Title: t.Title, Completed: t.Completed})
	}
	return v
}

// Expenses builds the expense list and its total for one date.
func (r *Renderer) Expenses(date core.Date, expenses []core.Expense, err error) ExpenseList {
	v := ExpenseList{Date: date.String(), Total: r.currency(decimal.Zero)}
	if err != nil {
		v.Error = ExpensesFailed
		return v
	}
	if len(expenses) == 0 {
		v.Placeholder = NoExpenses
		return v
	}
	v.Items = make([]ExpenseItem, 0, len(expenses))
	for _, e := range expenses {
		v.Items = append(v.Items, ExpenseItem{ID: e.ID, Amount: r.Currency(e.Amount), Description: e.Description})
	}
	v.Total = r.currency(core.ExpensesTotal(expenses))
	return v
}

// Daily builds the daily report card. report is nil when nothing was fetched.
func (r *Renderer) Daily(identity core.Identity, date core.Date, report *core.DailyReport, err error) DailyReport {
	v := DailyReport{Date: date.String(), Heading: date.Long()}
	switch {
	case identity.IsZero():
		v.Message = NeedIdentity
	case err != nil:
		v.Message, v.Failed = ReportFailed, true
	case report == nil:
	default:
		v.TasksCreated = report.TasksCreated
		v.TasksCompleted = report.TasksCompleted
		v.Rating = Rating(report.ProductivityRating)
		v.Stars = Stars(report.ProductivityRating)
		v.DaySpend = r.Currency(report.DaySpend)
	}
	return v
}

// Monthly builds the monthly report card for the selected period.
func (r *Renderer) Monthly(identity core.Identity, period core.YearMonth, report *core.MonthlyReport, err error) MonthlyReport {
	v := MonthlyReport{Period: period.String(), Heading: period.Long()}
	switch {
	case identity.IsZero():
		v.Message = NeedIdentity
	case err != nil:
		v.Message, v.Failed = ReportFailed, true
	case report == nil:
	default:
		ym := core.YearMonth{Year: report.Year, Month: report.Month}
		if ym.Validate() == nil {
			v.Heading = ym.Long()
		}
		v.TotalSpend = r.Currency(report.TotalSpend)
		v.AverageSpend = r.Currency(report.AverageSpend)
		v.TotalCompletedTasks = report.TotalCompletedTasks
		v.AverageProductivity = Rating(report.AverageProductivity)
		v.TotalTasksCreated = report.TotalTasksCreated
		v.DaysWithData = report.DaysWithData
	}
	return v
}

// Loaded reports whether the card carries figures.
func (d DailyReport) Loaded() bool { return d.Message == "" && d.Rating != "" }

// Loaded reports whether the card carries figures.
func (m MonthlyReport) Loaded() bool { return m.Message == "" && m.TotalSpend != "" }

// IdentityBadge returns the identity line shown in the header.
func IdentityBadge(identity core.Identity) string {
	if identity.IsZero() {
		return NoIdentityBadge
	}
	return "Current Email: " + identity.String()
}
