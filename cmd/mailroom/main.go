// Command mailroom renders and delivers transactional emails.
//
// Usage:
//
//	mailroom serve [-worker]       HTTP API, optionally working the queue in-process
//	mailroom worker                queue worker only
//	mailroom render <kind> <file>  render a kind against a JSON variables file ("-" reads stdin)
//
// Configuration is read from the environment and an optional .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/mailroom/internal/config"
	"github.com/dmitrymomot/mailroom/pkg/logger"
)

const usage = `usage: mailroom <command> [arguments]

commands:
  serve [-worker]       run the HTTP API
  worker                run the queue worker
  render <kind> <file>  render a kind to stdout
`

var errUsage = errors.New("invalid arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()

	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "mailroom:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log, logger.DefaultExtractors()...)
	defer logger.Flush(2 * time.Second)

	switch args[0] {
	case "serve":
		return serve(ctx, cfg, log, args[1:])
	case "worker":
		return worker(ctx, cfg, log)
	case "render":
		return render(ctx, cfg, log, args[1:], stdin, stdout)
	case "help", "-h", "--help":
		_, _ = fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}
