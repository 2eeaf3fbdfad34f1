// Package httpapi implements the remote gateway over the tracking service's
// REST/JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"daybook/internal/core"
	"daybook/internal/log"
	"daybook/internal/remote"
)

var _ remote.Gateway = (*Client)(nil)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Token, when set, is sent as a bearer token on every call.
	Token string
	// Timeout bounds each call. Zero leaves calls unbounded.
	Timeout time.Duration
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
	Logger     *log.Logger
}

type Client struct {
	base   *url.URL
	http   *http.Client
	logger *log.Logger
}

// New creates a gateway client for the API rooted at opts.BaseURL.
func New(ctx context.Context, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", opts.BaseURL)
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	}
	if opts.Token != "" {
		inner := hc
		ctx = context.WithValue(ctx, oauth2.HTTPClient, inner)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
		hc.Timeout = inner.Timeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	return &Client{
		base:   base,
		http:   hc,
		logger: logger.WithComponent(log.ComponentRemote),
	}, nil
}

type createTaskRequest struct {
	Email string `json:"email"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type updateTaskRequest struct {
	Completed bool `json:"completed"`
}

type createExpenseRequest struct {
	Email       string  `json:"email"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (c *Client) ListTasks(ctx context.Context, identity core.Identity, date core.Date) ([]core.Task, error) {
	if identity.IsZero() {
		return nil, core.ErrMissingIdentity
	}
	var tasks []core.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, nil, &tasks, "tasks", identity.String(), date.String()); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []core.Task{}
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, identity core.Identity, title string, date core.Date) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return core.ErrEmptyTitle
	}
	if identity.IsZero() {
		return core.ErrMissingIdentity
	}
	body := createTaskRequest{Email: identity.String(), Title: title, Date: date.String()}
	return c.do(ctx, "create task", http.MethodPost, body, nil, "tasks")
}

func (c *Client) SetTaskCompletion(ctx context.Context, taskID string, completed bool) error {
	return c.do(ctx, "update task", http.MethodPut, updateTaskRequest{Completed: completed}, nil, "tasks", taskID)
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, "delete task", http.MethodDelete, nil, nil, "tasks", taskID)
}

func (c *Client) ListExpenses(ctx context.Context, identity core.Identity, date core.Date) ([]core.Expense, error) {
	if identity.IsZero() {
		return nil, core.ErrMissingIdentity
	}
	var expenses []core.Expense
	if err := c.do(ctx, "list expenses", http.MethodGet, nil, &expenses, "expenses", identity.String(), date.String()); err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return expenses, nil
}

func (c *Client) CreateExpense(ctx context.Context, identity core.Identity, amount float64, description string, date core.Date) error {
	if !core.ValidAmount(amount) {
		return core.ErrInvalidAmount
	}
	if identity.IsZero() {
		return core.ErrMissingIdentity
	}
	body := createExpenseRequest{
		Email:       identity.String(),
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        date.String(),
	}
	return c.do(ctx, "create expense", http.MethodPost, body, nil, "expenses")
}

func (c *Client) DeleteExpense(ctx context.Context, expenseID string) error {
	return c.do(ctx, "delete expense", http.MethodDelete, nil, nil, "expenses", expenseID)
}

func (c *Client) DailyReport(ctx context.Context, identity core.Identity, date core.Date) (core.DailyReport, error) {
	var report core.DailyReport
	if identity.IsZero() {
		return report, core.ErrMissingIdentity
	}
	err := c.do(ctx, "daily report", http.MethodGet, nil, &report, "reports", "daily", identity.String(), date.String())
	return report, err
}

func (c *Client) MonthlyReport(ctx context.Context, identity core.Identity, month core.YearMonth) (core.MonthlyReport, error) {
	var report core.MonthlyReport
	if identity.IsZero() {
		return report, core.ErrMissingIdentity
	}
	if err := month.Validate(); err != nil {
		return report, err
	}
	year, mm := month.Parts()
	err := c.do(ctx, "monthly report", http.MethodGet, nil, &report, "reports", "monthly", identity.String(), year, mm)
	return report, err
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.base.String() + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, op, method string, in, out any, segments ...string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	target := c.endpoint(segments...)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, &remote.NetworkError{Op: op, Err: err}, method, target)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(ctx, &remote.NetworkError{Op: op, StatusCode: resp.StatusCode}, method, target)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return c.fail(ctx, &remote.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}, method, target)
		}
	}

	c.logger.DebugContext(ctx, "Remote call completed",
		log.FieldOperation, op,
		log.FieldMethod, method,
		log.FieldURL, target,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (c *Client) fail(ctx context.Context, err *remote.NetworkError, method, target string) error {
	c.logger.ErrorContext(ctx, "Remote call failed",
		log.FieldOperation, err.Op,
		log.FieldMethod, method,
		log.FieldURL, target,
		log.FieldStatusCode, err.StatusCode,
		log.FieldErrorType, log.ErrorTypeNetwork,
		log.FieldError, err.Error())
	return err
}
