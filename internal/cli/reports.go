package cli

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"daybook/internal/core"
	"daybook/internal/dashboard"
)

type dailyCmd struct {
	env  *Env
	date string
}

func (*dailyCmd) Name() string     { return "daily" }
func (*dailyCmd) Synopsis() string { return "display the daily productivity and spend report" }
func (*dailyCmd) Usage() string {
	return `daybook daily [-d <date>]

  Displays tasks created and completed, the productivity rating and the
  spend of a day (defaults to today).
`
}

func (c *dailyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "report day, YYYY-MM-DD (defaults to today)")
}

func (c *dailyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		date, err := dateFlag(c.date)
		if err != nil {
			return err
		}
		if err := s.ctrl.SetDailyReportDate(date); err != nil {
			return err
		}
		loadErr := s.ctrl.Activate(ctx, dashboard.PageDailyReport)
		c.env.printMarkdown(s.ctrl.Snapshot().Daily.Markdown())
		return loadErr
	})
}

type monthlyCmd struct {
	env   *Env
	month string
}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "display the monthly productivity and spend report" }
func (*monthlyCmd) Usage() string {
	return `daybook monthly [-m <YYYY-MM>]

  Displays the spend and productivity totals and averages of a month
  (defaults to the current month).
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "report month, YYYY-MM (defaults to the current month)")
}

func (c *monthlyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withSession(ctx, func(s *session) error {
		month := core.CurrentMonth()
		if strings.TrimSpace(c.month) != "" {
			var err error
			if month, err = core.ParseYearMonth(c.month); err != nil {
				return err
			}
		}
		if err := s.ctrl.SetReportMonth(month); err != nil {
			return err
		}
		loadErr := s.ctrl.Activate(ctx, dashboard.PageMonthlyReport)
		c.env.printMarkdown(s.ctrl.Snapshot().Monthly.Markdown())
		return loadErr
	})
}
