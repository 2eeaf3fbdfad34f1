package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"daybook/internal/amqp"
	"daybook/internal/backend"
	"daybook/internal/config"
	"daybook/internal/core"
	"daybook/internal/dashboard"
	"daybook/internal/identity"
	"daybook/internal/log"
	"daybook/internal/remote"
	"daybook/internal/render"
	"daybook/internal/storage"
)

// Env is what every subcommand shares: configuration, logging and the
// output streams.
type Env struct {
	Config *config.Config
	Logger *log.Logger
	Out    io.Writer
	Err    io.Writer
	// Raw prints Markdown as is instead of rendering it for the terminal.
	Raw bool

	gwOnce sync.Once
	gw     remote.Gateway
	gwErr  error
}

// Register adds every daybook subcommand to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&serveCmd{env: env}, "")

	c.Register(&identityCmd{env: env}, "identity")

	c.Register(&tasksCmd{env: env}, "tasks")
	c.Register(&addTaskCmd{env: env}, "tasks")
	c.Register(&toggleTaskCmd{env: env}, "tasks")
	c.Register(&rmTaskCmd{env: env}, "tasks")

	c.Register(&expensesCmd{env: env}, "expenses")
	c.Register(&addExpenseCmd{env: env}, "expenses")
	c.Register(&rmExpenseCmd{env: env}, "expenses")

	c.Register(&dailyCmd{env: env}, "reports")
	c.Register(&monthlyCmd{env: env}, "reports")

	c.Register(&activityCmd{env: env}, "activity")
	c.Register(&watchCmd{env: env}, "activity")
}

// gateway builds the configured backend once per process.
func (e *Env) gateway(ctx context.Context) (remote.Gateway, error) {
	e.gwOnce.Do(func() {
		e.gw, e.gwErr = backend.New(ctx, backend.Config{
			Type:           backend.Type(e.Config.DataBackend),
			APIBaseURL:     e.Config.APIBaseURL,
			APIToken:       e.Config.APIToken,
			RequestTimeout: e.Config.RequestTimeout,
		}, e.Logger)
	})
	return e.gw, e.gwErr
}

// session is one command's view of the dashboard.
type session struct {
	ctrl     *dashboard.Controller
	repo     *storage.SQLiteRepository
	notifier *amqp.Client
}

func (e *Env) open(ctx context.Context) (*session, error) {
	gw, err := e.gateway(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}
	repo, err := InitSQLite(e.Logger, e.Config.SQLiteDBPath)
	if err != nil {
		return nil, err
	}
	ids, err := identity.Open(ctx, repo)
	if err != nil {
		repo.Close()
		return nil, err
	}

	s := &session{repo: repo}
	var notifier dashboard.Notifier
	if e.Config.AMQPURL != "" {
		s.notifier = amqp.NewClient(e.Config.AMQPURL, e.Config.AMQPExchange, e.Config.AMQPQueue, e.Logger)
		notifier = s.notifier
	}
	s.ctrl = dashboard.New(gw, ids, render.New(e.Config.Currency), notifier, e.Logger)
	return s, nil
}

func (s *session) Close() {
	if s.notifier != nil {
		_ = s.notifier.Close()
	}
	_ = s.repo.Close()
}

// withSession opens a session, runs fn and maps its error to an exit status.
func (e *Env) withSession(ctx context.Context, fn func(*session) error) subcommands.ExitStatus {
	s, err := e.open(ctx)
	if err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()
	if err := fn(s); err != nil {
		return e.fail(err)
	}
	return subcommands.ExitSuccess
}

// fail reports err. Input mistakes exit with a usage error.
func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: %v\n", err)
	if core.IsValidation(err) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

func (e *Env) printMarkdown(md string) {
	if e.Raw {
		fmt.Fprint(e.Out, md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprint(e.Out, md)
		return
	}
	fmt.Fprint(e.Out, out)
}

func dateFlag(v string) (core.Date, error) {
	if strings.TrimSpace(v) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(v)
}

// NewEnv returns an Env writing to the process streams.
func NewEnv(cfg *config.Config, logger *log.Logger) *Env {
	return &Env{Config: cfg, Logger: logger, Out: os.Stdout, Err: os.Stderr}
}
