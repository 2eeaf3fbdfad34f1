package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/google/subcommands"

	apphttp "daybook/internal/http"
	"daybook/internal/log"
)

const shutdownTimeout = 30 * time.Second

type serveCmd struct {
	env  *Env
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the web dashboard" }
func (*serveCmd) Usage() string {
	return `daybook serve [-port <port>]

  Serves the dashboard until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "listen port (defaults to PORT)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.serve(ctx); err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) serve(ctx context.Context) error {
	cfg, logger := c.env.Config, c.env.Logger
	port := c.port
	if port == "" {
		port = cfg.Port
	}

	s, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctrl.Start(ctx); err != nil {
		logger.Warn("Initial load failed", log.FieldError, err.Error())
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + port,
		Controller:         s.ctrl,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              s.repo.Ping,
	})
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := ShutdownContext(ctx)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting daybook server",
			"port", port,
			"backend", cfg.DataBackend,
			"activity_feed", cfg.AMQPURL != "")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", port, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err.Error())
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
