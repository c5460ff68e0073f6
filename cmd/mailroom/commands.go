package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrymomot/mailroom/internal/config"
	"github.com/dmitrymomot/mailroom/internal/httpapi"
	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	withWorker := fs.Bool("worker", false, "work the queue in-process")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	a, err := newApp(ctx, cfg, log, appOptions{sender: true, database: true})
	if err != nil {
		return err
	}

	serverOpts := []httpapi.ServerOption{httpapi.WithServerLogger(log)}
	if *withWorker && a.pool != nil {
		m, err := a.newWorker()
		if err != nil {
			return errors.Join(err, a.close(context.WithoutCancel(ctx)))
		}
		serverOpts = append(serverOpts,
			httpapi.WithStartupHook(m.StartFunc()),
			httpapi.WithShutdownHook(m.Shutdown()),
		)
	}
	serverOpts = append(serverOpts, httpapi.WithShutdownHook(a.close))

	handler := httpapi.NewHandler(a.mailer, a.service, cfg.HTTP,
		httpapi.WithLogger(log),
		httpapi.WithChecks(a.checks),
		httpapi.WithKinds(a.kinds),
	)

	log.InfoContext(ctx, "starting mailroom",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("provider", cfg.Provider),
		slog.Bool("async", a.service.Async()),
		slog.Bool("worker", *withWorker && a.pool != nil),
	)
	return httpapi.NewServer(handler.Router(), cfg.HTTP, serverOpts...).Run(ctx)
}

func worker(ctx context.Context, cfg *config.Config, log *slog.Logger) (err error) {
	a, err := newApp(ctx, cfg, log, appOptions{sender: true, database: true})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
	}()

	m, err := a.newWorker()
	if err != nil {
		return err
	}
	if err := m.Start(ctx); err != nil {
		return err
	}
	log.InfoContext(ctx, "worker started", slog.String("queue", cfg.Jobs.Queue))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return m.Stop(stopCtx)
}

func render(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("format", "html", "output: html, text or json")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: render needs <kind> <file>", errUsage)
	}

	vars, err := readVariables(fs.Arg(1), stdin)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log, appOptions{})
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx)) //nolint:errcheck

	r, err := a.mailer.Render(ctx, fs.Arg(0), vars)
	if err != nil {
		return err
	}
	if r.Degraded {
		log.WarnContext(ctx, "render degraded", slog.String("kind", r.Kind))
	}

	switch *format {
	case "text":
		_, err = fmt.Fprintln(stdout, r.Text)
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	default:
		_, err = fmt.Fprintln(stdout, r.HTML)
	}
	return err
}

// readVariables decodes a JSON object from path, or from stdin when path is "-".
func readVariables(path string, stdin io.Reader) (tmpl.Map, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var raw map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode variables: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return tmpl.MapFromAny(raw), nil
}
