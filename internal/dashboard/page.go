package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"daybook/internal/core"
)

// Page is one of the mutually exclusive dashboard sections.
type Page string

const (
	PageDashboard     Page = "dashboard"
	PageTasks         Page = "tasks"
	PageExpenses      Page = "expenses"
	PageDailyReport   Page = "daily-report"
	PageMonthlyReport Page = "monthly-report"
)

// Pages lists every page in navigation order.
var Pages = []Page{PageDashboard, PageTasks, PageExpenses, PageDailyReport, PageMonthlyReport}

var ErrUnknownPage = errors.New("unknown page")

// ParsePage validates a page name.
func ParsePage(name string) (Page, error) {
	p := Page(strings.TrimSpace(name))
	for _, known := range Pages {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, name)
}

// Title is the navigation label of the page.
func (p Page) Title() string {
	switch p {
	case PageDashboard:
		return "Dashboard"
	case PageTasks:
		return "Tasks"
	case PageExpenses:
		return "Expenses"
	case PageDailyReport:
		return "Daily Report"
	case PageMonthlyReport:
		return "Monthly Report"
	}
	return string(p)
}

// Selection holds the independently chosen date or month of each view.
type Selection struct {
	TaskDate    core.Date
	ExpenseDate core.Date
	ReportDate  core.Date
	ReportMonth core.YearMonth
}

// DefaultSelection selects today for every date and the current month.
func DefaultSelection() Selection {
	today := core.Today()
	return Selection{
		TaskDate:    today,
		ExpenseDate: today,
		ReportDate:  today,
		ReportMonth: today.YearMonth(),
	}
}
