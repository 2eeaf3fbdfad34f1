package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type identityCmd struct{ env *Env }

func (*identityCmd) Name() string     { return "identity" }
func (*identityCmd) Synopsis() string { return "show or set the email your data is stored under" }
func (*identityCmd) Usage() string {
	return `daybook identity [<email>]

  Without an argument, prints the current email. With one, stores it and
  lists today's tasks and expenses for it.
`
}
func (*identityCmd) SetFlags(*flag.FlagSet) {}

func (c *identityCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		if f.NArg() > 0 {
			if err := s.ctrl.SetIdentity(ctx, f.Arg(0)); err != nil {
				return err
			}
		}
		snap := s.ctrl.Snapshot()
		fmt.Fprintln(c.env.Out, snap.IdentityBadge)
		if f.NArg() > 0 {
			c.env.printMarkdown(snap.Tasks.Markdown() + "\n" + snap.Expenses.Markdown())
		}
		return nil
	})
}

type tasksCmd struct {
	env  *Env
	date string
}

func (*tasksCmd) Name() string     { return "tasks" }
func (*tasksCmd) Synopsis() string { return "list the tasks of a day" }
func (*tasksCmd) Usage() string {
	return `daybook tasks [-d <date>]

  Lists the tasks recorded for a day (defaults to today).
`
}

func (c *tasksCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "day to list, YYYY-MM-DD (defaults to today)")
}

func (c *tasksCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		loadErr := s.ctrl.SetTaskDate(ctx, date)
		c.env.printMarkdown(s.ctrl.Snapshot().Tasks.Markdown())
		return loadErr
	})
}

type addTaskCmd struct {
	env  *Env
	date string
}

func (*addTaskCmd) Name() string     { return "add-task" }
func (*addTaskCmd) Synopsis() string { return "record a task" }
func (*addTaskCmd) Usage() string {
	return `daybook add-task [-d <date>] <title>

  Records a task for a day (defaults to today) and lists the day's tasks.
`
}

func (c *addTaskCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "day of the task, YYYY-MM-DD (defaults to today)")
}

func (c *addTaskCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		if err := s.ctrl.SelectTaskDate(date); err != nil {
			return err
		}
		if err := s.ctrl.AddTask(ctx, strings.Join(f.Args(), " ")); err != nil {
			return err
		}
		c.env.printMarkdown(s.ctrl.Snapshot().Tasks.Markdown())
		return nil
	})
}

type toggleTaskCmd struct {
	env    *Env
	date   string
	reopen bool
}

func (*toggleTaskCmd) Name() string     { return "toggle-task" }
func (*toggleTaskCmd) Synopsis() string { return "mark a task completed, or open again with -reopen" }
func (*toggleTaskCmd) Usage() string {
	return `daybook toggle-task [-reopen] [-d <date>] <id>

  Marks the task completed. With -reopen, marks it not completed.
`
}

func (c *toggleTaskCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "day listed afterwards, YYYY-MM-DD (defaults to today)")
	f.BoolVar(&c.reopen, "reopen", false, "mark the task as not completed")
}

func (c *toggleTaskCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		if err := s.ctrl.SelectTaskDate(date); err != nil {
			return err
		}
		if err := s.ctrl.ToggleTask(ctx, f.Arg(0), !c.reopen); err != nil {
			return err
		}
		c.env.printMarkdown(s.ctrl.Snapshot().Tasks.Markdown())
		return nil
	})
}

type rmTaskCmd struct {
	env  *Env
	date string
	yes  bool
}

func (*rmTaskCmd) Name() string     { return "rm-task" }
func (*rmTaskCmd) Synopsis() string { return "delete a task" }
func (*rmTaskCmd) Usage() string {
	return `daybook rm-task -yes [-d <date>] <id>

  Deletes a task. -yes confirms the deletion.
`
}

func (c *rmTaskCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "day listed afterwards, YYYY-MM-DD (defaults to today)")
	f.BoolVar(&c.yes, "yes", false, "confirm the deletion")
}

func (c *rmTaskCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		if err := s.ctrl.SelectTaskDate(date); err != nil {
			return err
		}
		if err := s.ctrl.DeleteTask(ctx, f.Arg(0), c.yes); err != nil {
			return err
		}
		c.env.printMarkdown(s.ctrl.Snapshot().Tasks.Markdown())
		return nil
	})
}

type expensesCmd struct {
	env  *Env
	date string
}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "list the expenses of a day with their total" }
func (*expensesCmd) Usage() string {
	return `daybook expenses [-d <date>]

  Lists the expenses recorded for a day (defaults to today) and their total.
`
}

func (c *expensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "day to list, YYYY-MM-DD (defaults to today)")
}

func (c *expensesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		loadErr := s.ctrl.SetExpenseDate(ctx, date)
		c.env.printMarkdown(s.ctrl.Snapshot().Expenses.Markdown())
		return loadErr
	})
}

type addExpenseCmd struct {
	env  *Env
	date string
}

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record an expense" }
func (*addExpenseCmd) Usage() string {
	return `daybook add-expense [-d <date>] <amount> [<description>]

  Records an expense for a day (defaults to today). The amount must be
  positive; "12.50" and "12,50" are both accepted.
`
}

func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "day of the expense, YYYY-MM-DD (defaults to today)")
}

func (c *addExpenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		if err := s.ctrl.SelectExpenseDate(date); err != nil {
			return err
		}
		var description string
		if f.NArg() > 1 {
			description = strings.Join(f.Args()[1:], " ")
		}
		if err := s.ctrl.AddExpense(ctx, f.Arg(0), description); err != nil {
			return err
		}
		c.env.printMarkdown(s.ctrl.Snapshot().Expenses.Markdown())
		return nil
	})
}

type rmExpenseCmd struct {
	env  *Env
	date string
	yes  bool
}

func (*rmExpenseCmd) Name() string     { return "rm-expense" }
func (*rmExpenseCmd) Synopsis() string { return "delete an expense" }
func (*rmExpenseCmd) Usage() string {
	return `daybook rm-expense -yes [-d <date>] <id>

  Deletes an expense. -yes confirms the deletion.
`
}

func (c *rmExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "day listed afterwards, YYYY-MM-DD (defaults to today)")
	f.BoolVar(&c.yes, "yes", false, "confirm the deletion")
}

func (c *rmExpenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		if err := s.ctrl.SelectExpenseDate(date); err != nil {
			return err
		}
		if err := s.ctrl.DeleteExpense(ctx, f.Arg(0), c.yes); err != nil {
			return err
		}
		c.env.printMarkdown(s.ctrl.Snapshot().Expenses.Markdown())
		return nil
	})
}
