// Package memory is an in-process stand-in for the tracking service, used
// for local development (DATA_BACKEND=memory) and tests.
//
// Report figures follow a simple rule set: a day's productivity rating is
// completed/created scaled to 5, and monthly averages are taken over the days
// that have at least one task or expense.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"daybook/internal/core"
	"daybook/internal/remote"
)

var _ remote.Gateway = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	tasks    []core.Task
	expenses []core.Expense
}

func New() *Store {
	return &Store{}
}

// ErrNotFound is returned for unknown task or expense IDs.
type ErrNotFound struct{ Kind, ID string }

func (e ErrNotFound) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }

func (s *Store) ListTasks(_ context.Context, identity core.Identity, date core.Date) ([]core.Task, error) {
	if identity.IsZero() {
		return nil, core.ErrMissingIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Task{}
	for _, t := range s.tasks {
		if t.Email == identity.String() && t.Date.Equal(date.Time) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CreateTask(_ context.Context, identity core.Identity, title string, date core.Date) error {
	t := core.Task{ID: uuid.NewString(), Title: title, Email: identity.String(), Date: date}
	if err := t.Validate(); err != nil {
		return err
	}
	if identity.IsZero() {
		return core.ErrMissingIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	return nil
}

func (s *Store) SetTaskCompletion(_ context.Context, taskID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			s.tasks[i].Completed = completed
			return nil
		}
	}
	return ErrNotFound{Kind: "task", ID: taskID}
}

func (s *Store) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound{Kind: "task", ID: taskID}
}

func (s *Store) ListExpenses(_ context.Context, identity core.Identity, date core.Date) ([]core.Expense, error) {
	if identity.IsZero() {
		return nil, core.ErrMissingIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Expense{}
	for _, e := range s.expenses {
		if e.Email == identity.String() && e.Date.Equal(date.Time) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, identity core.Identity, amount float64, description string, date core.Date) error {
	e := core.Expense{ID: uuid.NewString(), Amount: amount, Description: description, Email: identity.String(), Date: date}
	if err := e.Validate(); err != nil {
		return err
	}
	if identity.IsZero() {
		return core.ErrMissingIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == expenseID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound{Kind: "expense", ID: expenseID}
}

// dayStats accumulates one identity's figures for one day.
type dayStats struct {
	created, completed int
	spend              []float64
}

func (d dayStats) rating() float64 {
	if d.created == 0 {
		return 0
	}
	return float64(d.completed) / float64(d.created) * 5
}

func (s *Store) statsLocked(identity core.Identity, match func(core.Date) bool) map[string]*dayStats {
	days := map[string]*dayStats{}
	get := func(d core.Date) *dayStats {
		k := d.String()
		if days[k] == nil {
			days[k] = &dayStats{}
		}
		return days[k]
	}
	for _, t := range s.tasks {
		if t.Email != identity.String() || !match(t.Date) {
			continue
		}
		st := get(t.Date)
		st.created++
		if t.Completed {
			st.completed++
		}
	}
	for _, e := range s.expenses {
		if e.Email != identity.String() || !match(e.Date) {
			continue
		}
		st := get(e.Date)
		st.spend = append(st.spend, e.Amount)
	}
	return days
}

func (s *Store) DailyReport(_ context.Context, identity core.Identity, date core.Date) (core.DailyReport, error) {
	if identity.IsZero() {
		return core.DailyReport{}, core.ErrMissingIdentity
	}
	s.mu.Lock()
	days := s.statsLocked(identity, func(d core.Date) bool { return d.Equal(date.Time) })
	s.mu.Unlock()

	st, ok := days[date.String()]
	if !ok {
		return core.DailyReport{}, nil
	}
	spend, _ := core.SumAmounts(st.spend...).Float64()
	return core.DailyReport{
		TasksCreated:       st.created,
		TasksCompleted:     st.completed,
		ProductivityRating: st.rating(),
		DaySpend:           spend,
	}, nil
}

func (s *Store) MonthlyReport(_ context.Context, identity core.Identity, month core.YearMonth) (core.MonthlyReport, error) {
	report := core.MonthlyReport{Year: month.Year, Month: month.Month}
	if identity.IsZero() {
		return report, core.ErrMissingIdentity
	}
	if err := month.Validate(); err != nil {
		return report, err
	}
	s.mu.Lock()
	days := s.statsLocked(identity, func(d core.Date) bool { return d.YearMonth() == month })
	s.mu.Unlock()

	var spend []float64
	var ratingSum float64
	for _, st := range days {
		report.TotalTasksCreated += st.created
		report.TotalCompletedTasks += st.completed
		spend = append(spend, st.spend...)
		ratingSum += st.rating()
	}
	report.DaysWithData = len(days)
	report.TotalSpend, _ = core.SumAmounts(spend...).Float64()
	if report.DaysWithData > 0 {
		report.AverageSpend = report.TotalSpend / float64(report.DaysWithData)
		report.AverageProductivity = ratingSum / float64(report.DaysWithData)
	}
	return report, nil
}
