package memory

import (
	"context"
	"math"
	"testing"

	"daybook/internal/core"
)

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := core.Identity("foo@bar.com")
	day := core.NewDate(2025, 1, 2)

	if err := s.CreateTask(ctx, id, "Write", day); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateTask(ctx, "other@x.y", "Hidden", day); err != nil {
		t.Fatalf("create other: %v", err)
	}
	tasks, _ := s.ListTasks(ctx, id, day)
	if len(tasks) != 1 || tasks[0].Title != "Write" {
		t.Fatalf("expected only own task, got %+v", tasks)
	}

	// Completion is idempotent.
	for i := 0; i < 2; i++ {
		if err := s.SetTaskCompletion(ctx, tasks[0].ID, true); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	tasks, _ = s.ListTasks(ctx, id, day)
	if !tasks[0].Completed {
		t.Fatalf("expected completed task")
	}

	if err := s.DeleteTask(ctx, tasks[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, _ = s.ListTasks(ctx, id, day)
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks after delete, got %+v", tasks)
	}
	if err := s.DeleteTask(ctx, "missing"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := core.Identity("a@b.c")
	d1 := core.NewDate(2025, 3, 1)
	d2 := core.NewDate(2025, 3, 2)

	_ = s.CreateTask(ctx, id, "one", d1)
	_ = s.CreateTask(ctx, id, "two", d1)
	tasks, _ := s.ListTasks(ctx, id, d1)
	_ = s.SetTaskCompletion(ctx, tasks[0].ID, true)
	_ = s.CreateExpense(ctx, id, 12.50, "lunch", d1)
	_ = s.CreateExpense(ctx, id, 7.25, "", d1)
	_ = s.CreateExpense(ctx, id, 10, "taxi", d2)
	_ = s.CreateExpense(ctx, id, 99, "april", core.NewDate(2025, 4, 1))

	daily, err := s.DailyReport(ctx, id, d1)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if daily.TasksCreated != 2 || daily.TasksCompleted != 1 || daily.ProductivityRating != 2.5 || daily.DaySpend != 19.75 {
		t.Fatalf("unexpected daily report %+v", daily)
	}

	monthly, err := s.MonthlyReport(ctx, id, core.YearMonth{Year: 2025, Month: 3})
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if monthly.DaysWithData != 2 || monthly.TotalSpend != 29.75 || monthly.TotalTasksCreated != 2 || monthly.TotalCompletedTasks != 1 {
		t.Fatalf("unexpected monthly report %+v", monthly)
	}
	if monthly.AverageProductivity != 1.25 {
		t.Fatalf("expected average productivity 1.25, got %v", monthly.AverageProductivity)
	}

	empty, _ := s.DailyReport(ctx, id, core.NewDate(2025, 5, 5))
	if empty != (core.DailyReport{}) {
		t.Fatalf("expected zero report for empty day, got %+v", empty)
	}
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateTask(ctx, "a@b.c", "", core.Today()); err != core.ErrEmptyTitle {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if err := s.CreateExpense(ctx, "a@b.c", 0, "", core.Today()); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := s.CreateExpense(ctx, "a@b.c", math.Inf(1), "", core.Today()); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for +Inf, got %v", err)
	}
}
