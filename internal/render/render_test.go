package render

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"daybook/internal/core"
)

func TestStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{1, "★☆☆☆☆"},
		{2.4, "★★☆☆☆"},
		{3.5, "★★★½☆"},
		{4.2, "★★★★☆"},
		{4.7, "★★★★½"},
		{5, "★★★★★"},
		{7, "★★★★★"},
		{-1, "☆☆☆☆☆"},
	}
	for _, tt := range tests {
		got := Stars(tt.rating)
		if got != tt.want {
			t.Errorf("Stars(%v) = %q, want %q", tt.rating, got, tt.want)
		}
		if n := utf8.RuneCountInString(got); n != 5 {
			t.Errorf("Stars(%v) has %d glyphs, want 5", tt.rating, n)
		}
	}
}

func TestRating(t *testing.T) {
	if got := Rating(3.456); got != "3.46 / 5" {
		t.Errorf("Rating = %q", got)
	}
	if got := Rating(0); got != "0.00 / 5" {
		t.Errorf("Rating = %q", got)
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		code   string
		amount float64
		want   string
	}{
		{"USD", 12.5, "$12.50"},
		{"", 0, "$0.00"},
		{"EUR", 7.255, "€7.26"},
		{"usd", 1000, "$1000.00"},
		{"USD", -3, "-$3.00"},
		{"XYZ", 1, "XYZ 1.00"},
	}
	for _, tt := range tests {
		if got := New(tt.code).Currency(tt.amount); got != tt.want {
			t.Errorf("Currency(%q, %v) = %q, want %q", tt.code, tt.amount, got, tt.want)
		}
	}
}

func TestExpensesTotal(t *testing.T) {
	r := New("USD")
	day := core.NewDate(2025, 1, 2)
	v := r.Expenses(day, []core.Expense{
		{ID: "1", Amount: 12.50, Description: "lunch"},
		{ID: "2", Amount: 7.25},
	}, nil)
	if v.Total != "$19.75" {
		t.Errorf("Total = %q, want $19.75", v.Total)
	}
	if len(v.Items) != 2 || v.Items[0].Amount != "$12.50" || v.Placeholder != "" {
		t.Errorf("unexpected items %+v", v)
	}
	if !strings.Contains(v.Markdown(), "**Total:** $19.75") {
		t.Errorf("markdown missing total:\n%s", v.Markdown())
	}
}

func TestEmptyListsShowPlaceholder(t *testing.T) {
	r := New("USD")
	day := core.NewDate(2025, 1, 2)

	tasks := r.Tasks(day, nil, nil)
	if tasks.Placeholder != NoTasks || len(tasks.Items) != 0 {
		t.Errorf("tasks = %+v", tasks)
	}
	expenses := r.Expenses(day, []core.Expense{}, nil)
	if expenses.Placeholder != NoExpenses || expenses.Total != "$0.00" {
		t.Errorf("expenses = %+v", expenses)
	}
	failed := r.Tasks(day, nil, errors.New("boom"))
	if failed.Error != TasksFailed || failed.Placeholder != "" {
		t.Errorf("failed = %+v", failed)
	}
}

func TestReports(t *testing.T) {
	r := New("USD")
	day := core.NewDate(2025, 1, 2)

	noID := r.Daily("", day, nil, nil)
	if noID.Message != NeedIdentity || noID.Loaded() {
		t.Errorf("daily without identity = %+v", noID)
	}

	failed := r.Monthly("a@b.c", core.YearMonth{Year: 2025, Month: 1}, nil, errors.New("down"))
	if failed.Message != ReportFailed || !failed.Failed {
		t.Errorf("monthly failure = %+v", failed)
	}

	daily := r.Daily("a@b.c", day, &core.DailyReport{TasksCreated: 4, TasksCompleted: 3, ProductivityRating: 3.75, DaySpend: 19.75}, nil)
	if daily.Heading != "Thursday, January 2, 2025" || daily.Rating != "3.75 / 5" || daily.Stars != "★★★½☆" || daily.DaySpend != "$19.75" {
		t.Errorf("daily = %+v", daily)
	}
	if !daily.Loaded() {
		t.Errorf("expected loaded daily report")
	}

	monthly := r.Monthly("a@b.c", core.YearMonth{Year: 2025, Month: 2}, &core.MonthlyReport{Year: 2025, Month: 2, TotalSpend: 100, AverageSpend: 12.5, DaysWithData: 8}, nil)
	if monthly.Heading != "February 2025" || monthly.TotalSpend != "$100.00" || monthly.AverageSpend != "$12.50" || monthly.DaysWithData != 8 {
		t.Errorf("monthly = %+v", monthly)
	}
	if !strings.Contains(monthly.Markdown(), "| Days with Data | 8 |") {
		t.Errorf("monthly markdown:\n%s", monthly.Markdown())
	}
}

func TestTaskMarkdown(t *testing.T) {
	v := New("USD").Tasks(core.NewDate(2025, 1, 2), []core.Task{
		{ID: "t1", Title: "Write", Completed: true},
		{ID: "t2", Title: "Read"},
	}, nil)
	md := v.Markdown()
	for _, want := range []string{"# Tasks for 2025-01-02", "- [x] Write `t1`", "- [ ] Read `t2`"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestIdentityBadge(t *testing.T) {
	if IdentityBadge("") != "No email set" {
		t.Error("empty badge")
	}
	if IdentityBadge("a@b.c") != "Current Email: a@b.c" {
		t.Error("badge")
	}
}

func TestActivities(t *testing.T) {
	if v := Activities(nil); v.Placeholder != NoActivity || !strings.Contains(v.Markdown(), NoActivity) {
		t.Fatalf("empty log = %+v", v)
	}

	at := time.Date(2025, 1, 2, 9, 30, 0, 0, time.Local)
	v := Activities([]core.Activity{
		{Kind: core.TaskCompleted, Identity: "a@b.c", EntityID: "t1", Date: core.NewDate(2025, 1, 2), At: at},
		{Kind: core.IdentityActivated, Identity: "a@b.c", At: at},
	})
	if got := v.Items[0].Line(); got != "2025-01-02 09:30:00  task.completed  a@b.c  t1  (2025-01-02)" {
		t.Errorf("Line() = %q", got)
	}
	if got := v.Items[1].Line(); got != "2025-01-02 09:30:00  identity.activated  a@b.c" {
		t.Errorf("Line() = %q", got)
	}
	if md := v.Markdown(); !strings.Contains(md, "| 2025-01-02 09:30:00 | task.completed | a@b.c | t1 | 2025-01-02 |") {
		t.Errorf("Markdown() = %q", md)
	}
}
