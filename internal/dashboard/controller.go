// Package dashboard holds the application state shared by the web dashboard
// and the CLI: the active page, the per-view date selection and the last
// result of every data view.
//
// Every operation that changes what a view shows goes through the Controller,
// which calls the remote gateway outside its lock and commits results with
// per-view request fencing. Mutations never patch local state: on success
// the affected list is reloaded once from the server.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"daybook/internal/core"
	"daybook/internal/identity"
	"daybook/internal/log"
	"daybook/internal/remote"
	"daybook/internal/render"
)

// Notifier receives successful mutations. Failures are logged and never
// fail the mutation.
type Notifier interface {
	PublishActivity(ctx context.Context, a core.Activity) error
}

// View names used in logs.
const (
	viewTasks    = "tasks"
	viewExpenses = "expenses"
	viewDaily    = "daily-report"
	viewMonthly  = "monthly-report"
)

type Controller struct {
	gw       remote.Gateway
	ids      *identity.Store
	renderer *render.Renderer
	notifier Notifier
	logger   *log.Logger

	mu       sync.Mutex
	page     Page
	sel      Selection
	tasks    view[[]core.Task]
	expenses view[[]core.Expense]
	daily    view[*core.DailyReport]
	monthly  view[*core.MonthlyReport]
}

// New creates a controller on the dashboard page with today selected
// everywhere. notifier and logger may be nil.
func New(gw remote.Gateway, ids *identity.Store, renderer *render.Renderer, notifier Notifier, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Discard()
	}
	return &Controller{
		gw:       gw,
		ids:      ids,
		renderer: renderer,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentDashboard),
		page:     PageDashboard,
		sel:      DefaultSelection(),
	}
}

// Start loads tasks and expenses when an identity is already stored. Without
// one nothing is fetched.
func (c *Controller) Start(ctx context.Context) error {
	id := c.ids.Get()
	c.logger.InfoContext(ctx, "Dashboard starting", log.FieldIdentity, id.String(), "has_identity", !id.IsZero())
	if id.IsZero() {
		return nil
	}
	return c.reloadLists(ctx)
}

// Identity returns the active identity.
func (c *Controller) Identity() core.Identity {
	return c.ids.Get()
}

// SetIdentity normalizes and stores raw, then reloads tasks and expenses for
// their selected dates. Empty input keeps the stored identity; with none
// stored it fails with core.ErrEmptyIdentity.
func (c *Controller) SetIdentity(ctx context.Context, raw string) error {
	id, changed, err := c.ids.Set(ctx, raw)
	if err != nil {
		c.logger.Fields(ctx, slog.LevelError, "Failed to store identity", log.NewFields().
			WithOperation(log.OpUpdate).
			WithError(err).
			WithErrorType(log.ErrorTypeDatabase))
		return err
	}
	if id.IsZero() {
		return core.ErrEmptyIdentity
	}
	if changed {
		c.mu.Lock()
		c.daily.reset()
		c.monthly.reset()
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "Identity changed", log.FieldIdentity, id.String())
		c.publish(ctx, core.Activity{Kind: core.IdentityActivated, Identity: id})
	}
	return c.reloadLists(ctx)
}

func (c *Controller) reloadLists(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.LoadTasks(ctx) })
	g.Go(func() error { return c.LoadExpenses(ctx) })
	return g.Wait()
}

// Page returns the visible page.
func (c *Controller) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Selection returns a copy of the current date selection.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Activate makes page the visible page. Report pages fetch their report for
// the current selection; the other pages never fetch.
func (c *Controller) Activate(ctx context.Context, page Page) error {
	p, err := ParsePage(string(page))
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.page = p
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "Page activated", log.FieldPage, string(p))

	switch p {
	case PageDailyReport:
		return c.LoadDailyReport(ctx)
	case PageMonthlyReport:
		return c.LoadMonthlyReport(ctx)
	}
	return nil
}

// SetTaskDate selects the task date and reloads the task list.
func (c *Controller) SetTaskDate(ctx context.Context, date core.Date) error {
	if err := c.SelectTaskDate(date); err != nil {
		return err
	}
	return c.LoadTasks(ctx)
}

// SelectTaskDate selects the task date without fetching. Task mutations
// then apply to that date and reload it themselves.
func (c *Controller) SelectTaskDate(date core.Date) error {
	if date.IsZero() {
		return core.ErrInvalidDate
	}
	c.mu.Lock()
	c.sel.TaskDate = date
	c.mu.Unlock()
	return nil
}

// SetExpenseDate selects the expense date and reloads the expense list.
func (c *Controller) SetExpenseDate(ctx context.Context, date core.Date) error {
	if err := c.SelectExpenseDate(date); err != nil {
		return err
	}
	return c.LoadExpenses(ctx)
}

// SelectExpenseDate selects the expense date without fetching.
func (c *Controller) SelectExpenseDate(date core.Date) error {
	if date.IsZero() {
		return core.ErrInvalidDate
	}
	c.mu.Lock()
	c.sel.ExpenseDate = date
	c.mu.Unlock()
	return nil
}

// SetDailyReportDate selects the daily report date. Nothing is fetched until
// the report page is activated or refreshed.
func (c *Controller) SetDailyReportDate(date core.Date) error {
	if date.IsZero() {
		return core.ErrInvalidDate
	}
	c.mu.Lock()
	c.sel.ReportDate = date
	c.mu.Unlock()
	return nil
}

// SetReportMonth selects the monthly report period. Nothing is fetched until
// the report page is activated or refreshed.
func (c *Controller) SetReportMonth(month core.YearMonth) error {
	if err := month.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sel.ReportMonth = month
	c.mu.Unlock()
	return nil
}

func scopeKey(id core.Identity, period string) string {
	return id.String() + "|" + period
}

// LoadTasks fetches the task list for the selected task date. It does
// nothing without an identity.
func (c *Controller) LoadTasks(ctx context.Context) error {
	c.mu.Lock()
	id, date := c.ids.Get(), c.sel.TaskDate
	if id.IsZero() {
		c.mu.Unlock()
		return nil
	}
	seq := c.tasks.begin()
	c.mu.Unlock()

	items, err := c.gw.ListTasks(ctx, id, date)
	c.settle(ctx, viewTasks, seq, err, func() bool {
		return c.tasks.commit(seq, scopeKey(id, date.String()), items, err)
	})
	return err
}

// LoadExpenses fetches the expense list for the selected expense date. It
// does nothing without an identity.
func (c *Controller) LoadExpenses(ctx context.Context) error {
	c.mu.Lock()
	id, date := c.ids.Get(), c.sel.ExpenseDate
	if id.IsZero() {
		c.mu.Unlock()
		return nil
	}
	seq := c.expenses.begin()
	c.mu.Unlock()

	items, err := c.gw.ListExpenses(ctx, id, date)
	c.settle(ctx, viewExpenses, seq, err, func() bool {
		return c.expenses.commit(seq, scopeKey(id, date.String()), items, err)
	})
	return err
}

// LoadDailyReport fetches the daily report for the selected report date.
func (c *Controller) LoadDailyReport(ctx context.Context) error {
	c.mu.Lock()
	id, date := c.ids.Get(), c.sel.ReportDate
	if id.IsZero() {
		c.mu.Unlock()
		return nil
	}
	seq := c.daily.begin()
	c.mu.Unlock()

	report, err := c.gw.DailyReport(ctx, id, date)
	var value *core.DailyReport
	if err == nil {
		value = &report
	}
	c.settle(ctx, viewDaily, seq, err, func() bool {
		return c.daily.commit(seq, scopeKey(id, date.String()), value, err)
	})
	return err
}

// LoadMonthlyReport fetches the monthly report for the selected period.
func (c *Controller) LoadMonthlyReport(ctx context.Context) error {
	c.mu.Lock()
	id, month := c.ids.Get(), c.sel.ReportMonth
	if id.IsZero() {
		c.mu.Unlock()
		return nil
	}
	seq := c.monthly.begin()
	c.mu.Unlock()

	report, err := c.gw.MonthlyReport(ctx, id, month)
	var value *core.MonthlyReport
	if err == nil {
		value = &report
	}
	c.settle(ctx, viewMonthly, seq, err, func() bool {
		return c.monthly.commit(seq, scopeKey(id, month.String()), value, err)
	})
	return err
}

// settle commits a finished request under the lock and logs the outcome.
func (c *Controller) settle(ctx context.Context, name string, seq uint64, err error, commit func() bool) {
	c.mu.Lock()
	kept := commit()
	c.mu.Unlock()

	if !kept {
		c.logger.Fields(ctx, slog.LevelDebug, "Dropped stale response", log.NewFields().WithView(name, seq))
		return
	}
	if err != nil {
		c.logger.Fields(ctx, slog.LevelWarn, "View load failed", log.NewFields().
			WithView(name, seq).
			WithOperation(log.OpList).
			WithError(err).
			WithErrorType(errorType(err)))
	}
}

// AddTask creates a task for the selected task date, then reloads the list.
func (c *Controller) AddTask(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return core.ErrEmptyTitle
	}
	id, date := c.ids.Get(), c.Selection().TaskDate
	if id.IsZero() {
		return core.ErrMissingIdentity
	}
	if err := c.gw.CreateTask(ctx, id, title, date); err != nil {
		c.mutationFailed(ctx, log.OpCreate, viewTasks, err)
		return err
	}
	c.publish(ctx, core.Activity{Kind: core.TaskCreated, Identity: id, Date: date})
	_ = c.LoadTasks(ctx)
	return nil
}

// ToggleTask sets the completion flag of a task, then reloads the list.
func (c *Controller) ToggleTask(ctx context.Context, taskID string, completed bool) error {
	if strings.TrimSpace(taskID) == "" {
		return core.ErrMissingID
	}
	if err := c.gw.SetTaskCompletion(ctx, taskID, completed); err != nil {
		c.mutationFailed(ctx, log.OpUpdate, viewTasks, err)
		return err
	}
	kind := core.TaskReopened
	if completed {
		kind = core.TaskCompleted
	}
	c.publish(ctx, core.Activity{Kind: kind, Identity: c.ids.Get(), EntityID: taskID, Date: c.Selection().TaskDate})
	_ = c.LoadTasks(ctx)
	return nil
}

// DeleteTask removes a task once confirmed, then reloads the list.
func (c *Controller) DeleteTask(ctx context.Context, taskID string, confirmed bool) error {
	if !confirmed {
		return core.ErrNotConfirmed
	}
	if strings.TrimSpace(taskID) == "" {
		return core.ErrMissingID
	}
	if err := c.gw.DeleteTask(ctx, taskID); err != nil {
		c.mutationFailed(ctx, log.OpDelete, viewTasks, err)
		return err
	}
	c.publish(ctx, core.Activity{Kind: core.TaskDeleted, Identity: c.ids.Get(), EntityID: taskID, Date: c.Selection().TaskDate})
	_ = c.LoadTasks(ctx)
	return nil
}

// AddExpense parses amount, creates an expense for the selected expense
// date, then reloads the list. The amount is checked before the identity.
func (c *Controller) AddExpense(ctx context.Context, amount, description string) error {
	value, err := core.ParseAmount(amount)
	if err != nil {
		return err
	}
	id, date := c.ids.Get(), c.Selection().ExpenseDate
	if id.IsZero() {
		return core.ErrMissingIdentity
	}
	if err := c.gw.CreateExpense(ctx, id, value, strings.TrimSpace(description), date); err != nil {
		c.mutationFailed(ctx, log.OpCreate, viewExpenses, err)
		return err
	}
	c.publish(ctx, core.Activity{Kind: core.ExpenseCreated, Identity: id, Date: date})
	_ = c.LoadExpenses(ctx)
	return nil
}

// DeleteExpense removes an expense once confirmed, then reloads the list.
func (c *Controller) DeleteExpense(ctx context.Context, expenseID string, confirmed bool) error {
	if !confirmed {
		return core.ErrNotConfirmed
	}
	if strings.TrimSpace(expenseID) == "" {
		return core.ErrMissingID
	}
	if err := c.gw.DeleteExpense(ctx, expenseID); err != nil {
		c.mutationFailed(ctx, log.OpDelete, viewExpenses, err)
		return err
	}
	c.publish(ctx, core.Activity{Kind: core.ExpenseDeleted, Identity: c.ids.Get(), EntityID: expenseID, Date: c.Selection().ExpenseDate})
	_ = c.LoadExpenses(ctx)
	return nil
}

func (c *Controller) mutationFailed(ctx context.Context, op, name string, err error) {
	c.logger.Fields(ctx, slog.LevelError, "Mutation failed", log.NewFields().
		WithOperation(op).
		WithView(name, 0).
		WithError(err).
		WithErrorType(errorType(err)))
}

func (c *Controller) publish(ctx context.Context, a core.Activity) {
	if c.notifier == nil {
		return
	}
	if a.At.IsZero() {
		a.At = time.Now()
	}
	if err := c.notifier.PublishActivity(ctx, a); err != nil {
		c.logger.WarnContext(ctx, "Failed to publish activity",
			log.FieldOperation, log.OpPublish,
			"kind", string(a.Kind),
			log.FieldError, err.Error())
	}
}

func errorType(err error) string {
	switch {
	case core.IsValidation(err):
		return log.ErrorTypeValidation
	case remote.IsNetwork(err):
		return log.ErrorTypeNetwork
	default:
		return log.ErrorTypeInternal
	}
}

// Snapshot is the rendered state of every view.
type Snapshot struct {
	Page          Page
	Today         string
	Identity      core.Identity
	IdentityBadge string
	Selection     Selection
	Tasks         render.TaskList
	Expenses      render.ExpenseList
	Daily         render.DailyReport
	Monthly       render.MonthlyReport
}

// Snapshot renders the committed state of every view for the current
// identity and selection. Results fetched for another scope are not shown.
func (c *Controller) Snapshot() Snapshot {
	id := c.ids.Get()

	c.mu.Lock()
	page, sel := c.page, c.sel
	tasks, tasksErr := c.tasks.current(scopeKey(id, sel.TaskDate.String()))
	expenses, expensesErr := c.expenses.current(scopeKey(id, sel.ExpenseDate.String()))
	daily, dailyErr := c.daily.current(scopeKey(id, sel.ReportDate.String()))
	monthly, monthlyErr := c.monthly.current(scopeKey(id, sel.ReportMonth.String()))
	c.mu.Unlock()

	return Snapshot{
		Page:          page,
		Today:         core.Today().Long(),
		Identity:      id,
		IdentityBadge: render.IdentityBadge(id),
		Selection:     sel,
		Tasks:         c.renderer.Tasks(sel.TaskDate, tasks, tasksErr),
		Expenses:      c.renderer.Expenses(sel.ExpenseDate, expenses, expensesErr),
		Daily:         c.renderer.Daily(id, sel.ReportDate, daily, dailyErr),
		Monthly:       c.renderer.Monthly(id, sel.ReportMonth, monthly, monthlyErr),
	}
}
