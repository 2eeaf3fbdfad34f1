package remote

import (
	"context"

	"daybook/internal/core"
)

// Ports for the remote tracking service. Mutations return only an error: the
// caller decides which view to reload afterwards.
type (
	TaskGateway interface {
		// ListTasks returns the tasks of identity for date, in server order.
		ListTasks(ctx context.Context, identity core.Identity, date core.Date) ([]core.Task, error)
		CreateTask(ctx context.Context, identity core.Identity, title string, date core.Date) error
		SetTaskCompletion(ctx context.Context, taskID string, completed bool) error
		DeleteTask(ctx context.Context, taskID string) error
	}

	ExpenseGateway interface {
		// ListExpenses returns the expenses of identity for date, in server order.
		ListExpenses(ctx context.Context, identity core.Identity, date core.Date) ([]core.Expense, error)
		CreateExpense(ctx context.Context, identity core.Identity, amount float64, description string, date core.Date) error
		DeleteExpense(ctx context.Context, expenseID string) error
	}

	ReportGateway interface {
		DailyReport(ctx context.Context, identity core.Identity, date core.Date) (core.DailyReport, error)
		MonthlyReport(ctx context.Context, identity core.Identity, month core.YearMonth) (core.MonthlyReport, error)
	}

	// Gateway is the full surface of the remote service.
	Gateway interface {
		TaskGateway
		ExpenseGateway
		ReportGateway
	}
)
