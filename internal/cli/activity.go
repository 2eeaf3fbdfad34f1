package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"daybook/internal/amqp"
	"daybook/internal/core"
	"daybook/internal/render"
	"daybook/internal/worker"
)

var errNoFeed = errors.New("AMQP_URL is not set; the activity feed is disabled")

type activityCmd struct {
	env   *Env
	limit int
}

func (*activityCmd) Name() string     { return "activity" }
func (*activityCmd) Synopsis() string { return "list the locally recorded activity" }
func (*activityCmd) Usage() string {
	return `daybook activity [-n <count>]

  Lists the most recent activities recorded by "daybook watch", newest first.
`
}

func (c *activityCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "number of entries to show")
}

func (c *activityCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit < 1 {
		fmt.Fprintln(c.env.Err, "Error: -n must be at least 1")
		return subcommands.ExitUsageError
	}
	repo, err := InitSQLite(c.env.Logger, c.env.Config.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer repo.Close()

	list, err := repo.RecentActivity(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.env.printMarkdown(render.Activities(list).Markdown())
	return subcommands.ExitSuccess
}

type watchCmd struct{ env *Env }

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "follow the activity feed and record it locally" }
func (*watchCmd) Usage() string {
	return `daybook watch

  Consumes the activity feed from AMQP_URL until interrupted, printing and
  recording each activity.
`
}
func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := c.env.Config
	if cfg.AMQPURL == "" {
		fmt.Fprintf(c.env.Err, "Error: %v\n", errNoFeed)
		return subcommands.ExitUsageError
	}
	repo, err := InitSQLite(c.env.Logger, cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer repo.Close()

	client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, c.env.Logger)
	defer client.Close()

	w := worker.NewActivityWorker(repo, func(a core.Activity) {
		fmt.Fprintln(c.env.Out, render.Activities([]core.Activity{a}).Items[0].Line())
	}, c.env.Logger)

	ctx, stop := ShutdownContext(ctx)
	defer stop()
	if err := w.Run(ctx, client); err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
