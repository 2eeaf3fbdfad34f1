package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"daybook/internal/core"
	"daybook/internal/log"
	"daybook/internal/remote"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
	auth   string
}

func newTestClient(t *testing.T, token string, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.EscapedPath(), auth: r.Header.Get("Authorization")}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{BaseURL: srv.URL + "/api/", Token: token, Logger: log.Discard()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, &calls
}

func TestListTasksPreservesServerOrder(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"2","title":"b","date":"2025-01-02"},{"_id":"1","title":"a","date":"2025-01-02","completed":true}]`)
	})

	tasks, err := c.ListTasks(context.Background(), "foo@bar.com", core.NewDate(2025, 1, 2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "2" || tasks[1].ID != "1" || !tasks[1].Completed {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	got := (*calls)[0]
	if got.method != http.MethodGet || got.path != "/api/tasks/foo@bar.com/2025-01-02" {
		t.Fatalf("unexpected call %s %s", got.method, got.path)
	}
}

func TestListNullBodyYieldsEmptySlice(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})
	expenses, err := c.ListExpenses(context.Background(), "a@b.c", core.NewDate(2025, 1, 2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if expenses == nil || len(expenses) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", expenses)
	}
}

func TestMutationsSendContractBodies(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	})
	ctx := context.Background()
	day := core.NewDate(2025, 3, 9)

	if err := c.CreateTask(ctx, "a@b.c", " Write report ", day); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := c.SetTaskCompletion(ctx, "t1", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := c.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := c.CreateExpense(ctx, "a@b.c", 12.5, "lunch", day); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if err := c.DeleteExpense(ctx, "e/1"); err != nil {
		t.Fatalf("delete expense: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/t1"},
		{http.MethodDelete, "/api/tasks/t1"},
		{http.MethodPost, "/api/expenses"},
		{http.MethodDelete, "/api/expenses/e%2F1"},
	}
	if len(*calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(*calls))
	}
	for i, w := range want {
		if (*calls)[i].method != w.method || (*calls)[i].path != w.path {
			t.Errorf("call %d: got %s %s, want %s %s", i, (*calls)[i].method, (*calls)[i].path, w.method, w.path)
		}
	}

	task := (*calls)[0].body
	if task["email"] != "a@b.c" || task["title"] != "Write report" || task["date"] != "2025-03-09" {
		t.Errorf("unexpected task body %v", task)
	}
	if (*calls)[1].body["completed"] != true {
		t.Errorf("unexpected toggle body %v", (*calls)[1].body)
	}
	exp := (*calls)[3].body
	if exp["amount"] != 12.5 || exp["description"] != "lunch" || exp["email"] != "a@b.c" {
		t.Errorf("unexpected expense body %v", exp)
	}
}

func TestLocalValidationNeverCallsServer(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	ctx := context.Background()
	day := core.NewDate(2025, 1, 1)

	if err := c.CreateTask(ctx, "a@b.c", "   ", day); err != core.ErrEmptyTitle {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if err := c.CreateExpense(ctx, "a@b.c", 0, "", day); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := c.CreateExpense(ctx, "a@b.c", -4, "", day); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if err := c.CreateExpense(ctx, "a@b.c", math.Inf(1), "", day); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for +Inf, got %v", err)
	}
	if _, err := c.ListTasks(ctx, "", day); err != core.ErrMissingIdentity {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no network calls, got %d", hits)
	}
}

func TestNonSuccessStatusIsNetworkError(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	err := c.CreateTask(context.Background(), "a@b.c", "x", core.NewDate(2025, 1, 1))
	var ne *remote.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.StatusCode != http.StatusInternalServerError || ne.Op != "create task" {
		t.Fatalf("unexpected error %+v", ne)
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(context.Background(), Options{BaseURL: base, Logger: log.Discard()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = c.DailyReport(context.Background(), "a@b.c", core.NewDate(2025, 1, 1))
	if !remote.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestReportsAndBearerToken(t *testing.T) {
	c, calls := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports/daily/a@b.c/2025-03-09":
			_, _ = io.WriteString(w, `{"tasksCreated":4,"tasksCompleted":3,"productivityRating":3.75,"daySpend":19.75}`)
		case "/api/reports/monthly/a@b.c/2025/03":
			_, _ = io.WriteString(w, `{"year":2025,"month":3,"totalSpend":100,"averageSpend":10,"totalCompletedTasks":7,"averageProductivity":2.5,"totalTasksCreated":9,"daysWithData":10}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	daily, err := c.DailyReport(ctx, "a@b.c", core.NewDate(2025, 3, 9))
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if daily.TasksCreated != 4 || daily.ProductivityRating != 3.75 || daily.DaySpend != 19.75 {
		t.Fatalf("unexpected daily report %+v", daily)
	}

	monthly, err := c.MonthlyReport(ctx, "a@b.c", core.YearMonth{Year: 2025, Month: 3})
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if monthly.DaysWithData != 10 || monthly.TotalTasksCreated != 9 || monthly.Month != 3 {
		t.Fatalf("unexpected monthly report %+v", monthly)
	}

	for _, call := range *calls {
		if call.auth != "Bearer secret" {
			t.Fatalf("expected bearer token on %s, got %q", call.path, call.auth)
		}
	}
}

func TestNewLeavesCallerClientUntouched(t *testing.T) {
	shared := &http.Client{Timeout: 5 * time.Second}
	for _, token := range []string{"", "secret"} {
		c, err := New(context.Background(), Options{
			BaseURL:    "http://api.example.test",
			Token:      token,
			Timeout:    time.Second,
			HTTPClient: shared,
			Logger:     log.Discard(),
		})
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		if shared.Timeout != 5*time.Second {
			t.Fatalf("caller client timeout changed to %v", shared.Timeout)
		}
		if c.http == shared {
			t.Fatalf("client should not share the caller's *http.Client")
		}
		if c.http.Timeout != time.Second {
			t.Fatalf("expected 1s timeout on own client, got %v", c.http.Timeout)
		}
	}
}
