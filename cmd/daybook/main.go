package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"daybook/internal/cli"
)

var raw = flag.Bool("raw", false, "print Markdown output without terminal styling")

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		os.Exit(int(subcommands.ExitFailure))
	}
	env := cli.NewEnv(cfg, logger)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, env)

	flag.Parse()
	env.Raw = *raw
	os.Exit(int(commander.Execute(context.Background())))
}
