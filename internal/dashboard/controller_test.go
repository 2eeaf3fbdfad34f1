package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"daybook/internal/core"
	"daybook/internal/identity"
	"daybook/internal/remote"
	"daybook/internal/remote/memory"
	"daybook/internal/render"
)

// countingGateway wraps the in-process backend and counts calls per method.
// listTasksHook, when set, runs before ListTasks returns.
type countingGateway struct {
	*memory.Store

	mu            sync.Mutex
	calls         map[string]int
	failNext      map[string]error
	listTasksHook func(date core.Date)
}

func newCountingGateway() *countingGateway {
	return &countingGateway{Store: memory.New(), calls: map[string]int{}, failNext: map[string]error{}}
}

func (g *countingGateway) record(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[name]++
	err := g.failNext[name]
	delete(g.failNext, name)
	return err
}

func (g *countingGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *countingGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func (g *countingGateway) fail(name string, err error) {
	g.mu.Lock()
	g.failNext[name] = err
	g.mu.Unlock()
}

func (g *countingGateway) ListTasks(ctx context.Context, id core.Identity, date core.Date) ([]core.Task, error) {
	if err := g.record("ListTasks"); err != nil {
		return nil, err
	}
	items, err := g.Store.ListTasks(ctx, id, date)
	if g.listTasksHook != nil {
		g.listTasksHook(date)
	}
	return items, err
}

func (g *countingGateway) CreateTask(ctx context.Context, id core.Identity, title string, date core.Date) error {
	if err := g.record("CreateTask"); err != nil {
		return err
	}
	return g.Store.CreateTask(ctx, id, title, date)
}

func (g *countingGateway) SetTaskCompletion(ctx context.Context, taskID string, completed bool) error {
	if err := g.record("SetTaskCompletion"); err != nil {
		return err
	}
	return g.Store.SetTaskCompletion(ctx, taskID, completed)
}

func (g *countingGateway) DeleteTask(ctx context.Context, taskID string) error {
	if err := g.record("DeleteTask"); err != nil {
		return err
	}
	return g.Store.DeleteTask(ctx, taskID)
}

func (g *countingGateway) ListExpenses(ctx context.Context, id core.Identity, date core.Date) ([]core.Expense, error) {
	if err := g.record("ListExpenses"); err != nil {
		return nil, err
	}
	return g.Store.ListExpenses(ctx, id, date)
}

func (g *countingGateway) CreateExpense(ctx context.Context, id core.Identity, amount float64, desc string, date core.Date) error {
	if err := g.record("CreateExpense"); err != nil {
		return err
	}
	return g.Store.CreateExpense(ctx, id, amount, desc, date)
}

func (g *countingGateway) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := g.record("DeleteExpense"); err != nil {
		return err
	}
	return g.Store.DeleteExpense(ctx, expenseID)
}

func (g *countingGateway) DailyReport(ctx context.Context, id core.Identity, date core.Date) (core.DailyReport, error) {
	if err := g.record("DailyReport"); err != nil {
		return core.DailyReport{}, err
	}
	return g.Store.DailyReport(ctx, id, date)
}

func (g *countingGateway) MonthlyReport(ctx context.Context, id core.Identity, month core.YearMonth) (core.MonthlyReport, error) {
	if err := g.record("MonthlyReport"); err != nil {
		return core.MonthlyReport{}, err
	}
	return g.Store.MonthlyReport(ctx, id, month)
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []core.ActivityKind
	err   error
}

func (n *recordingNotifier) PublishActivity(_ context.Context, a core.Activity) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, a.Kind)
	return n.err
}

func newController(t *testing.T, email string) (*Controller, *countingGateway) {
	t.Helper()
	gw := newCountingGateway()
	ids, err := identity.Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("open identity: %v", err)
	}
	if email != "" {
		if _, _, err := ids.Set(context.Background(), email); err != nil {
			t.Fatalf("set identity: %v", err)
		}
	}
	return New(gw, ids, render.New("USD"), nil, nil), gw
}

func TestStartWithoutIdentityFetchesNothing(t *testing.T) {
	c, gw := newController(t, "")
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if gw.total() != 0 {
		t.Fatalf("expected no calls, got %v", gw.calls)
	}
	snap := c.Snapshot()
	if snap.Page != PageDashboard || snap.IdentityBadge != "No email set" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStartWithIdentityLoadsLists(t *testing.T) {
	c, gw := newController(t, "a@b.c")
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if gw.count("ListTasks") != 1 || gw.count("ListExpenses") != 1 {
		t.Fatalf("expected one load of each list, got %v", gw.calls)
	}
}

func TestSetIdentityNormalizesAndReloads(t *testing.T) {
	c, gw := newController(t, "")
	ctx := context.Background()

	if err := c.SetIdentity(ctx, "   "); !errors.Is(err, core.ErrEmptyIdentity) {
		t.Fatalf("expected ErrEmptyIdentity, got %v", err)
	}
	if gw.total() != 0 {
		t.Fatalf("empty identity must not fetch, got %v", gw.calls)
	}

	if err := c.SetIdentity(ctx, " Foo@Bar.com "); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if c.Identity() != "foo@bar.com" {
		t.Fatalf("identity = %q", c.Identity())
	}
	if gw.count("ListTasks") != 1 || gw.count("ListExpenses") != 1 {
		t.Fatalf("expected both lists reloaded once, got %v", gw.calls)
	}

	// Empty input keeps the identity and just reloads.
	if err := c.SetIdentity(ctx, ""); err != nil {
		t.Fatalf("empty with identity stored: %v", err)
	}
	if c.Identity() != "foo@bar.com" || gw.count("ListTasks") != 2 {
		t.Fatalf("unexpected state: %q %v", c.Identity(), gw.calls)
	}
}

func TestActivateOnlyReportPagesFetch(t *testing.T) {
	c, gw := newController(t, "a@b.c")
	ctx := context.Background()

	for _, p := range []Page{PageDashboard, PageTasks, PageExpenses} {
		if err := c.Activate(ctx, p); err != nil {
			t.Fatalf("activate %s: %v", p, err)
		}
		if c.Page() != p {
			t.Fatalf("page = %s, want %s", c.Page(), p)
		}
	}
	if gw.total() != 0 {
		t.Fatalf("non-report pages must not fetch, got %v", gw.calls)
	}

	if err := c.Activate(ctx, PageDailyReport); err != nil {
		t.Fatalf("activate daily: %v", err)
	}
	if err := c.Activate(ctx, PageMonthlyReport); err != nil {
		t.Fatalf("activate monthly: %v", err)
	}
	if gw.count("DailyReport") != 1 || gw.count("MonthlyReport") != 1 {
		t.Fatalf("expected one fetch per report, got %v", gw.calls)
	}

	if err := c.Activate(ctx, "settings"); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
	if c.Page() != PageMonthlyReport {
		t.Fatalf("unknown page must not change the visible page")
	}
}

func TestReportPagesWithoutIdentity(t *testing.T) {
	c, gw := newController(t, "")
	if err := c.Activate(context.Background(), PageDailyReport); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if gw.total() != 0 {
		t.Fatalf("expected no calls, got %v", gw.calls)
	}
	if msg := c.Snapshot().Daily.Message; msg != render.NeedIdentity {
		t.Fatalf("daily message = %q", msg)
	}
}

func TestDateChangeFetchesExactlyOnce(t *testing.T) {
	c, gw := newController(t, "a@b.c")
	ctx := context.Background()
	day := core.NewDate(2025, 1, 2)

	if err := c.SetTaskDate(ctx, day); err != nil {
		t.Fatalf("set task date: %v", err)
	}
	if gw.count("ListTasks") != 1 || gw.total() != 1 {
		t.Fatalf("expected exactly one ListTasks, got %v", gw.calls)
	}
	if err := c.SetExpenseDate(ctx, day); err != nil {
		t.Fatalf("set expense date: %v", err)
	}
	if gw.count("ListExpenses") != 1 || gw.total() != 2 {
		t.Fatalf("expected exactly one ListExpenses, got %v", gw.calls)
	}
	if got := c.Snapshot().Tasks.Date; got != "2025-01-02" {
		t.Fatalf("task list date = %q", got)
	}
}

func TestSelectDateDoesNotFetch(t *testing.T) {
	c, gw := newController(t, "a@b.c")
	ctx := context.Background()
	day := core.NewDate(2025, 1, 2)

	if err := c.SelectTaskDate(day); err != nil {
		t.Fatalf("select task date: %v", err)
	}
	if err := c.SelectExpenseDate(day); err != nil {
		t.Fatalf("select expense date: %v", err)
	}
	if err := c.SelectTaskDate(core.Date{}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if gw.total() != 0 {
		t.Fatalf("selecting a date must not fetch, got %v", gw.calls)
	}

	if err := c.AddExpense(ctx, "4.25", "coffee"); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if gw.count("CreateExpense") != 1 || gw.count("ListExpenses") != 1 {
		t.Fatalf("expected one create and one reload, got %v", gw.calls)
	}
	snap := c.Snapshot()
	if snap.Expenses.Date != "2025-01-02" || len(snap.Expenses.Items) != 1 {
		t.Fatalf("expenses = %+v", snap.Expenses)
	}
}

func TestReportSelectionDoesNotFetch(t *testing.T) {
	c, gw := newController(t, "a@b.c")
	ctx := context.Background()

	if err := c.SetDailyReportDate(core.NewDate(2025, 3, 1)); err != nil {
		t.Fatalf("set report date: %v", err)
	}
	if err := c.SetReportMonth(core.YearMonth{Year: 2025, Month: 3}); err != nil {
		t.Fatalf("set report month: %v", err)
	}
	if err := c.SetReportMonth(core.YearMonth{Year: 2025, Month: 13}); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if gw.total() != 0 {
		t.Fatalf("report selection must not fetch, got %v", gw.calls)
	}

	if err := c.LoadMonthlyReport(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap := c.Snapshot(); snap.Monthly.Heading != "March 2025" || !snap.Monthly.Loaded() {
		t.Fatalf("monthly = %+v", snap.Monthly)
	}
}

func TestAddTaskValidationNeverCallsNetwork(t *testing.T) {
	ctx := context.Background()

	c, gw := newController(t, "a@b.c")
	if err := c.AddTask(ctx, "   "); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if err := c.AddExpense(ctx, "0", "nothing"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := c.AddExpense(ctx, "abc", ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := c.AddExpense(ctx, "1e400", ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for an overflowing amount, got %v", err)
	}
	if err := c.DeleteTask(ctx, "t1", false); !errors.Is(err, core.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if err := c.DeleteExpense(ctx, "e1", false); !errors.Is(err, core.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if gw.total() != 0 {
		t.Fatalf("expected no network calls, got %v", gw.calls)
	}

	anon, anonGW := newController(t, "")
	if err := anon.AddTask(ctx, "Write"); !errors.Is(err, core.ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
	if err := anon.AddExpense(ctx, "5", ""); !errors.Is(err, core.ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
	if anonGW.total() != 0 {
		t.Fatalf("expected no network calls, got %v", anonGW.calls)
	}
}

func TestMutationsReloadOnce(t *testing.T) {
	ctx := context.Background()
	c, gw := newController(t, "a@b.c")
	notifier := &recordingNotifier{}
	c.notifier = notifier

	if err := c.AddTask(ctx, "  Write report "); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if gw.count("CreateTask") != 1 || gw.count("ListTasks") != 1 {
		t.Fatalf("expected create then one reload, got %v", gw.calls)
	}
	tasks := c.Snapshot().Tasks
	if len(tasks.Items) != 1 || tasks.Items[0].Title != "Write report" {
		t.Fatalf("tasks = %+v", tasks)
	}
	taskID := tasks.Items[0].ID

	// Completing twice leaves the task completed.
	for i := 0; i < 2; i++ {
		if err := c.ToggleTask(ctx, taskID, true); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	if !c.Snapshot().Tasks.Items[0].Completed {
		t.Fatalf("expected completed task")
	}

	if err := c.DeleteTask(ctx, taskID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snap := c.Snapshot(); len(snap.Tasks.Items) != 0 || snap.Tasks.Placeholder != render.NoTasks {
		t.Fatalf("expected empty list, got %+v", snap.Tasks)
	}

	if err := c.AddExpense(ctx, "12.50", "lunch"); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if err := c.AddExpense(ctx, "7,25", ""); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if total := c.Snapshot().Expenses.Total; total != "$19.75" {
		t.Fatalf("total = %q", total)
	}
	if gw.count("ListExpenses") != 2 {
		t.Fatalf("expected one reload per add, got %v", gw.calls)
	}

	want := []core.ActivityKind{core.TaskCreated, core.TaskCompleted, core.TaskCompleted, core.TaskDeleted, core.ExpenseCreated, core.ExpenseCreated}
	if len(notifier.kinds) != len(want) {
		t.Fatalf("activities = %v, want %v", notifier.kinds, want)
	}
	for i := range want {
		if notifier.kinds[i] != want[i] {
			t.Fatalf("activities = %v, want %v", notifier.kinds, want)
		}
	}
}

func TestMutationFailureSkipsReload(t *testing.T) {
	ctx := context.Background()
	c, gw := newController(t, "a@b.c")
	c.notifier = &recordingNotifier{err: errors.New("broker down")}

	netErr := &remote.NetworkError{Op: "create task", StatusCode: 500}
	gw.fail("CreateTask", netErr)
	if err := c.AddTask(ctx, "Write"); !remote.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if gw.count("ListTasks") != 0 {
		t.Fatalf("failed mutation must not reload, got %v", gw.calls)
	}

	// A failing notifier never fails the mutation.
	if err := c.AddTask(ctx, "Write"); err != nil {
		t.Fatalf("add task: %v", err)
	}
}

func TestListFailureRendersError(t *testing.T) {
	ctx := context.Background()
	c, gw := newController(t, "a@b.c")
	gw.fail("ListExpenses", &remote.NetworkError{Op: "list expenses", Err: errors.New("refused")})

	if err := c.LoadExpenses(ctx); !remote.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if msg := c.Snapshot().Expenses.Error; msg != render.ExpensesFailed {
		t.Fatalf("expenses error = %q", msg)
	}

	gw.fail("DailyReport", &remote.NetworkError{Op: "daily report", StatusCode: 502})
	_ = c.Activate(ctx, PageDailyReport)
	if daily := c.Snapshot().Daily; daily.Message != render.ReportFailed {
		t.Fatalf("daily = %+v", daily)
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	ctx := context.Background()
	c, gw := newController(t, "a@b.c")
	early := core.NewDate(2025, 1, 1)
	late := core.NewDate(2025, 1, 2)
	_ = gw.Store.CreateTask(ctx, "a@b.c", "old day", early)
	_ = gw.Store.CreateTask(ctx, "a@b.c", "new day", late)

	release := make(chan struct{})
	entered := make(chan struct{})
	gw.listTasksHook = func(date core.Date) {
		if date.Equal(early.Time) {
			close(entered)
			<-release
		}
	}

	done := make(chan error)
	go func() { done <- c.SetTaskDate(ctx, early) }()
	<-entered

	// The later request completes first.
	if err := c.SetTaskDate(ctx, late); err != nil {
		t.Fatalf("set late: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("set early: %v", err)
	}

	c.mu.Lock()
	applied, key := c.tasks.applied, c.tasks.key
	c.mu.Unlock()
	if applied != 2 || key != scopeKey("a@b.c", late.String()) {
		t.Fatalf("stale response committed: applied=%d key=%q", applied, key)
	}
	tasks := c.Snapshot().Tasks
	if len(tasks.Items) != 1 || tasks.Items[0].Title != "new day" {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestViewFencing(t *testing.T) {
	var v view[int]
	first := v.begin()
	second := v.begin()

	if !v.commit(second, "k", 2, nil) {
		t.Fatal("newest request must commit")
	}
	if v.commit(first, "k", 1, nil) {
		t.Fatal("older request must be dropped")
	}
	if got, _ := v.current("k"); got != 2 {
		t.Fatalf("current = %d", got)
	}
	if got, _ := v.current("other"); got != 0 {
		t.Fatalf("other key must read zero, got %d", got)
	}

	third := v.begin()
	v.reset()
	if v.commit(third, "k", 3, nil) {
		t.Fatal("requests issued before reset must be dropped")
	}
}

func TestParsePage(t *testing.T) {
	for _, p := range Pages {
		got, err := ParsePage(string(p))
		if err != nil || got != p {
			t.Errorf("ParsePage(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := ParsePage("nope"); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("expected ErrUnknownPage, got %v", err)
	}
}
